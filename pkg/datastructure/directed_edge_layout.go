package datastructure

import (
	"encoding/binary"
	"fmt"
	"sort"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// record size is part of the tile format. growing it breaks every tile on disk.
var _ [DirectedEdgeSize - unsafe.Sizeof(DirectedEdge{})]struct{}
var _ [unsafe.Sizeof(DirectedEdge{}) - DirectedEdgeSize]struct{}

// RecordWord. one packed word of a fixed size record, at a byte offset.
type RecordWord struct {
	Name   string
	Offset int
	Size   int // bytes
}

// BitField. named bit window inside a RecordWord.
type BitField struct {
	Word  string
	Name  string
	Shift uint
	Width uint
}

var directedEdgeWords = []RecordWord{
	{"endnode", 0, 8},
	{"dataoffsets", 8, 4},
	{"geoattributes", 12, 4},
	{"attributes", 16, 8},
	{"forwardaccess", 24, 1},
	{"reverseaccess", 25, 1},
	{"speed", 26, 1},
	{"classification", 27, 1},
	{"turntypes", 28, 4},
	{"stopimpact", 32, 4},
	{"hierarchy", 36, 4},
}

var directedEdgeFields = []BitField{
	{"endnode", "value", 0, 64},

	{"dataoffsets", "edgeinfo_offset", edgeInfoOffsetShift, edgeInfoOffsetBits},
	{"dataoffsets", "access_conditions", accessConditionsBit, 1},
	{"dataoffsets", "start_ttr", startTTRBit, 1},
	{"dataoffsets", "start_mer", startMERBit, 1},
	{"dataoffsets", "end_mer", endMERBit, 1},
	{"dataoffsets", "exitsign", exitSignBit, 1},
	{"dataoffsets", "spare", dataOffsetsSpareShift, dataOffsetsSpareBits},

	{"geoattributes", "length", lengthShift, lengthBits},
	{"geoattributes", "elevation", elevationShift, elevationBits},
	{"geoattributes", "curvature", curvatureShift, curvatureBits},

	{"attributes", "drive_on_right", driveOnRightBit, 1},
	{"attributes", "ferry", ferryBit, 1},
	{"attributes", "railferry", railFerryBit, 1},
	{"attributes", "toll", tollBit, 1},
	{"attributes", "seasonal", seasonalBit, 1},
	{"attributes", "dest_only", destOnlyBit, 1},
	{"attributes", "tunnel", tunnelBit, 1},
	{"attributes", "bridge", bridgeBit, 1},
	{"attributes", "roundabout", roundaboutBit, 1},
	{"attributes", "unreachable", unreachableBit, 1},
	{"attributes", "traffic_signal", trafficSignalBit, 1},
	{"attributes", "forward", forwardBit, 1},
	{"attributes", "not_thru", notThruBit, 1},
	{"attributes", "opp_index", oppIndexShift, oppIndexBits},
	{"attributes", "cycle_lane", cycleLaneShift, cycleLaneBits},
	{"attributes", "bikenetwork", bikeNetworkShift, bikeNetworkBits},
	{"attributes", "lanecount", laneCountShift, laneCountBits},
	{"attributes", "restrictions", restrictionsShift, restrictionsBits},
	{"attributes", "use", useShift, useBits},
	{"attributes", "speed_type", speedTypeShift, speedTypeBits},
	{"attributes", "ctry_crossing", ctryCrossingBit, 1},
	{"attributes", "spare", attributesSpareShift, attributesSpareBits},

	{"forwardaccess", "value", 0, 8},
	{"reverseaccess", "value", 0, 8},
	{"speed", "value", 0, 8},

	{"classification", "classification", classificationShift, classificationBits},
	{"classification", "surface", surfaceShift, surfaceBits},
	{"classification", "link", linkBit, 1},
	{"classification", "internal", internalBit, 1},

	{"turntypes", "turntype", 0, transitionTableBits},
	{"turntypes", "edge_to_left", adjacencyShift, adjacencyBits},

	// union: stopimpact + edge_to_right, or lineid over the whole word.
	{"stopimpact", "stopimpact", 0, transitionTableBits},
	{"stopimpact", "edge_to_right", adjacencyShift, adjacencyBits},

	{"hierarchy", "localedgeidx", localEdgeIdxShift, localEdgeIdxBits},
	{"hierarchy", "opp_local_idx", oppLocalIdxShift, oppLocalIdxBits},
	{"hierarchy", "shortcut", shortcutShift, shortcutBits},
	{"hierarchy", "superseded", supersededShift, supersededBits},
	{"hierarchy", "trans_up", transUpBit, 1},
	{"hierarchy", "trans_down", transDownBit, 1},
	{"hierarchy", "is_shortcut", isShortcutBit, 1},
	{"hierarchy", "spare", hierarchySpareShift, hierarchySpareBits},
}

var directedEdgeVersion = layoutVersion("directededge", DirectedEdgeSize, directedEdgeWords, directedEdgeFields)

func init() {
	mustValidateLayout("directededge", DirectedEdgeSize, directedEdgeWords, directedEdgeFields)
	mustValidateLayout("sign", SignSize, signWords, signFields)
}

// mustValidateLayout. a broken descriptor would stamp tiles with a version no reader can trust.
func mustValidateLayout(record string, size int, words []RecordWord, fields []BitField) {
	if err := ValidateLayout(size, words, fields); err != nil {
		panic(fmt.Sprintf("%s layout: %v", record, err))
	}
}

// DirectedEdgeInternalVersion. fingerprint of the record layout. a tile stamped with a
// different value was built against another layout and must not be decoded.
func DirectedEdgeInternalVersion() uint64 {
	return directedEdgeVersion
}

// DirectedEdgeLayout. copy of the word and field descriptors of the record.
func DirectedEdgeLayout() ([]RecordWord, []BitField) {
	words := make([]RecordWord, len(directedEdgeWords))
	copy(words, directedEdgeWords)
	fields := make([]BitField, len(directedEdgeFields))
	copy(fields, directedEdgeFields)
	return words, fields
}

func layoutVersion(record string, size int, words []RecordWord, fields []BitField) uint64 {
	d := xxhash.New()
	fmt.Fprintf(d, "%s:%d;", record, size)
	for _, w := range words {
		fmt.Fprintf(d, "%s@%d+%d;", w.Name, w.Offset, w.Size)
	}
	for _, f := range fields {
		fmt.Fprintf(d, "%s.%s@%d+%d;", f.Word, f.Name, f.Shift, f.Width)
	}
	return d.Sum64()
}

// ValidateLayout. words must tile [0,size) without gaps, fields must fit inside their word
// and must not overlap each other.
func ValidateLayout(size int, words []RecordWord, fields []BitField) error {
	sorted := make([]RecordWord, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	wordBits := make(map[string]uint, len(words))
	next := 0
	for _, w := range sorted {
		if w.Offset != next {
			return fmt.Errorf("word %s at offset %d, expected %d", w.Name, w.Offset, next)
		}
		wordBits[w.Name] = uint(w.Size * 8)
		next += w.Size
	}
	if next != size {
		return fmt.Errorf("words cover %d bytes, record is %d", next, size)
	}

	used := make(map[string]uint64, len(words))
	for _, f := range fields {
		bits, ok := wordBits[f.Word]
		if !ok {
			return fmt.Errorf("field %s refers to unknown word %s", f.Name, f.Word)
		}
		if f.Width == 0 || f.Shift+f.Width > bits {
			return fmt.Errorf("field %s.%s [%d,%d) does not fit %d bit word", f.Word, f.Name, f.Shift, f.Shift+f.Width, bits)
		}
		var mask uint64
		if f.Width == 64 {
			mask = ^uint64(0)
		} else {
			mask = (uint64(1)<<f.Width - 1) << f.Shift
		}
		if used[f.Word]&mask != 0 {
			return fmt.Errorf("field %s.%s overlaps another field", f.Word, f.Name)
		}
		used[f.Word] |= mask
	}
	for name, bits := range wordBits {
		full := ^uint64(0)
		if bits < 64 {
			full = uint64(1)<<bits - 1
		}
		if used[name] != full {
			return fmt.Errorf("word %s has unassigned bits %#x", name, full&^used[name])
		}
	}
	return nil
}

// SerializeTo. write the 40 byte little endian record into buf[:40].
func (e DirectedEdge) SerializeTo(buf []byte) {
	_ = buf[DirectedEdgeSize-1]
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.endnode))
	binary.LittleEndian.PutUint32(buf[8:12], e.dataoffsets)
	binary.LittleEndian.PutUint32(buf[12:16], e.geoattributes)
	binary.LittleEndian.PutUint64(buf[16:24], e.attributes)
	buf[24] = e.forwardaccess
	buf[25] = e.reverseaccess
	buf[26] = e.speed
	buf[27] = e.classification
	binary.LittleEndian.PutUint32(buf[28:32], e.turntypes)
	binary.LittleEndian.PutUint32(buf[32:36], e.stopimpact)
	binary.LittleEndian.PutUint32(buf[36:40], e.hierarchy)
}

func (e DirectedEdge) Serialize() []byte {
	buf := make([]byte, DirectedEdgeSize)
	e.SerializeTo(buf)
	return buf
}

// DeserializeDirectedEdge. decode the record at buf[:40]. never fails, the bits are trusted.
func DeserializeDirectedEdge(buf []byte) DirectedEdge {
	_ = buf[DirectedEdgeSize-1]
	return DirectedEdge{
		endnode:        GraphID(binary.LittleEndian.Uint64(buf[0:8])),
		dataoffsets:    binary.LittleEndian.Uint32(buf[8:12]),
		geoattributes:  binary.LittleEndian.Uint32(buf[12:16]),
		attributes:     binary.LittleEndian.Uint64(buf[16:24]),
		forwardaccess:  buf[24],
		reverseaccess:  buf[25],
		speed:          buf[26],
		classification: buf[27],
		turntypes:      binary.LittleEndian.Uint32(buf[28:32]),
		stopimpact:     binary.LittleEndian.Uint32(buf[32:36]),
		hierarchy:      binary.LittleEndian.Uint32(buf[36:40]),
	}
}

package graphtile

import (
	"encoding/binary"
	"errors"
	"fmt"

	kbinary "github.com/kelindar/binary"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
)

var (
	ErrInvalidTile          = errors.New("invalid tile")
	ErrFormatMismatch       = errors.New("tile built with a different record layout")
	ErrEdgeIndexOutOfRange  = errors.New("directed edge index out of range")
	ErrInvalidTextOffset    = errors.New("invalid text offset")
	ErrInvalidText          = errors.New("text contains NUL")
	ErrSignWithoutExitSign  = errors.New("signs stored for an edge without the exitsign flag")
	ErrExitSignWithoutSigns = errors.New("exitsign flag set on an edge without signs")
	ErrEdgeInfoOffset       = errors.New("edge info offset does not start an edge info")
)

const (
	tileMagic       = "GTIL"
	tilePreambleLen = len(tileMagic) + 4
)

// TileHeader. fixed part of a tile. the layout versions gate decoding of the record sections.
type TileHeader struct {
	GraphID           uint64
	EdgeLayoutVersion uint64
	SignLayoutVersion uint64
	DirectedEdgeCount uint32
	SignCount         uint32
	EdgeInfoSize      uint32
	TextListSize      uint32
}

func newTileHeader(id datastructure.GraphID) TileHeader {
	return TileHeader{
		GraphID:           id.Value(),
		EdgeLayoutVersion: datastructure.DirectedEdgeInternalVersion(),
		SignLayoutVersion: datastructure.SignInternalVersion(),
	}
}

func (h TileHeader) ID() datastructure.GraphID {
	return datastructure.GraphID(h.GraphID)
}

// checkLayout. reject a tile whose record layouts differ from the running binary's.
func (h TileHeader) checkLayout() error {
	if h.EdgeLayoutVersion != datastructure.DirectedEdgeInternalVersion() {
		return fmt.Errorf("tile %s: directed edge layout %#x, expected %#x: %w", h.ID(),
			h.EdgeLayoutVersion, datastructure.DirectedEdgeInternalVersion(), ErrFormatMismatch)
	}
	if h.SignLayoutVersion != datastructure.SignInternalVersion() {
		return fmt.Errorf("tile %s: sign layout %#x, expected %#x: %w", h.ID(),
			h.SignLayoutVersion, datastructure.SignInternalVersion(), ErrFormatMismatch)
	}
	return nil
}

func (h TileHeader) bodySize() int {
	return int(h.DirectedEdgeCount)*datastructure.DirectedEdgeSize + int(h.SignCount)*datastructure.SignSize +
		int(h.EdgeInfoSize) + int(h.TextListSize)
}

// marshal. magic | header length u32 | header.
func (h TileHeader) marshal() ([]byte, error) {
	hb, err := kbinary.Marshal(h)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, tilePreambleLen, tilePreambleLen+len(hb))
	copy(buf, tileMagic)
	binary.LittleEndian.PutUint32(buf[len(tileMagic):], uint32(len(hb)))
	return append(buf, hb...), nil
}

// unmarshalHeader. returns the header and the number of bytes it occupied.
func unmarshalHeader(blob []byte) (TileHeader, int, error) {
	var h TileHeader
	if len(blob) < tilePreambleLen || string(blob[:len(tileMagic)]) != tileMagic {
		return h, 0, fmt.Errorf("bad magic: %w", ErrInvalidTile)
	}
	hlen := int(binary.LittleEndian.Uint32(blob[len(tileMagic):tilePreambleLen]))
	if hlen > len(blob)-tilePreambleLen {
		return h, 0, fmt.Errorf("header length %d exceeds %d byte tile: %w", hlen, len(blob), ErrInvalidTile)
	}
	if err := kbinary.Unmarshal(blob[tilePreambleLen:tilePreambleLen+hlen], &h); err != nil {
		return h, 0, fmt.Errorf("header: %v: %w", err, ErrInvalidTile)
	}
	return h, tilePreambleLen + hlen, nil
}

// ReadHeader. decode only the header of a tile blob, layouts are not checked.
func ReadHeader(blob []byte) (TileHeader, error) {
	h, _, err := unmarshalHeader(blob)
	return h, err
}

package datastructure

import (
	"encoding/binary"
	"fmt"
)

const edgeInfoFixedSize = 8 + 4 + 4

/*
EdgeInfo. attributes shared by both directions of one road segment, addressed by
DirectedEdge.EdgeInfoOffset.

	wayID u64 | nameCount u32 | shapeSize u32 | nameOffsets u32*nameCount | encoded polyline
*/
type EdgeInfo struct {
	WayID       uint64       `json:"way_id"`
	NameOffsets []uint32     `json:"name_offsets"`
	Shape       []Coordinate `json:"shape"`
}

func NewEdgeInfo(wayID uint64, nameOffsets []uint32, shape []Coordinate) EdgeInfo {
	return EdgeInfo{
		WayID:       wayID,
		NameOffsets: nameOffsets,
		Shape:       shape,
	}
}

func (ei *EdgeInfo) Serialize() []byte {
	shapeBuf := serializeCoordinates(ei.Shape)
	buf := make([]byte, edgeInfoFixedSize+4*len(ei.NameOffsets)+len(shapeBuf))

	binary.LittleEndian.PutUint64(buf[0:8], ei.WayID)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(ei.NameOffsets)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(shapeBuf)))
	pos := edgeInfoFixedSize
	for _, off := range ei.NameOffsets {
		binary.LittleEndian.PutUint32(buf[pos:pos+4], off)
		pos += 4
	}
	copy(buf[pos:], shapeBuf)
	return buf
}

// DeserializeEdgeInfo. decode the edge info at the start of buf. returns the number of
// bytes consumed.
func DeserializeEdgeInfo(buf []byte) (EdgeInfo, int, error) {
	if len(buf) < edgeInfoFixedSize {
		return EdgeInfo{}, 0, fmt.Errorf("%d byte header: %w", len(buf), ErrInvalidEdgeInfo)
	}
	wayID := binary.LittleEndian.Uint64(buf[0:8])
	nameCount := int(binary.LittleEndian.Uint32(buf[8:12]))
	shapeSize := int(binary.LittleEndian.Uint32(buf[12:16]))

	size := edgeInfoFixedSize + 4*nameCount + shapeSize
	if nameCount < 0 || shapeSize < 0 || size > len(buf) {
		return EdgeInfo{}, 0, fmt.Errorf("names=%d shape=%d exceeds %d bytes: %w", nameCount, shapeSize, len(buf), ErrInvalidEdgeInfo)
	}

	names := make([]uint32, nameCount)
	pos := edgeInfoFixedSize
	for i := range names {
		names[i] = binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
	}

	shape, err := deserializeCoordinates(buf[pos : pos+shapeSize])
	if err != nil {
		return EdgeInfo{}, 0, fmt.Errorf("shape: %v: %w", err, ErrInvalidEdgeInfo)
	}
	return NewEdgeInfo(wayID, names, shape), size, nil
}

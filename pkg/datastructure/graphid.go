package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/graphtile/pkg/util"
)

/*
GraphID. opaque graph-wide handle of a node or directed edge.

	bit:   0-21      22-24     25-45      46-63
	      tileID     level       id       unused
*/
type GraphID uint64

const (
	graphIDTileShift  = 0
	graphIDTileBits   = 22
	graphIDLevelShift = 22
	graphIDLevelBits  = 3
	graphIDIDShift    = 25
	graphIDIDBits     = 21

	MaxGraphTileID    = 1<<graphIDTileBits - 1
	MaxGraphHierarchy = 1<<graphIDLevelBits - 1
	MaxGraphID        = 1<<graphIDIDBits - 1

	InvalidGraphID GraphID = 0x3fffffffffff
)

func NewGraphID(tileID, level, id uint32) (GraphID, error) {
	if tileID > MaxGraphTileID || level > MaxGraphHierarchy || id > MaxGraphID {
		return InvalidGraphID, fmt.Errorf("tileID=%d level=%d id=%d: %w", tileID, level, id, ErrInvalidGraphID)
	}
	v := uint64(0)
	v = util.SetBits(v, graphIDTileShift, graphIDTileBits, uint64(tileID))
	v = util.SetBits(v, graphIDLevelShift, graphIDLevelBits, uint64(level))
	v = util.SetBits(v, graphIDIDShift, graphIDIDBits, uint64(id))
	if GraphID(v) == InvalidGraphID {
		return InvalidGraphID, fmt.Errorf("tileID=%d level=%d id=%d is the invalid handle: %w", tileID, level, id,
			ErrInvalidGraphID)
	}
	return GraphID(v), nil
}

func (g GraphID) TileID() uint32 {
	return uint32(util.GetBits(uint64(g), graphIDTileShift, graphIDTileBits))
}

func (g GraphID) Level() uint32 {
	return uint32(util.GetBits(uint64(g), graphIDLevelShift, graphIDLevelBits))
}

// ID. index of the node/edge within its tile.
func (g GraphID) ID() uint32 {
	return uint32(util.GetBits(uint64(g), graphIDIDShift, graphIDIDBits))
}

func (g GraphID) IsValid() bool {
	return g != InvalidGraphID
}

// TileBase. same tile and level with id 0, used as the key of a tile.
func (g GraphID) TileBase() GraphID {
	return GraphID(util.SetBits(uint64(g), graphIDIDShift, graphIDIDBits, 0))
}

// WithID. handle of another element inside the same tile.
func (g GraphID) WithID(id uint32) GraphID {
	return GraphID(util.SetBits(uint64(g), graphIDIDShift, graphIDIDBits, uint64(id)))
}

func (g GraphID) Value() uint64 {
	return uint64(g)
}

func (g GraphID) String() string {
	if !g.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d/%d/%d", g.Level(), g.TileID(), g.ID())
}

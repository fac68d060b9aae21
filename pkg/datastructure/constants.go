package datastructure

import "errors"

// Bicycle network bits.
const (
	NCN uint32 = 1 // national
	RCN uint32 = 2 // regional
	LCN uint32 = 4 // local
	MCN uint32 = 8 // mountain

	MaxBicycleNetwork uint32 = 15
)

const (
	MaxEdgeInfoOffset        uint32 = 1<<25 - 1 // bytes
	MaxEdgeLength            uint32 = 1<<24 - 1 // meters
	MaxTurnRestrictionEdges  uint32 = 8
	MaxSpeed                 uint32 = 255 // kph
	MaxDrivingSpeed          uint32 = 250 // above this the speed is a special case (closure, construction)
	MaxLaneCount             uint32 = 15
	NumberOfEdgeTransitions  uint32 = 8
	MaxShortcutsFromNode     uint32 = 7
	MaxStopImpact            uint32 = 7
	MaxElevationFactor       uint32 = 15
	MaxCurvatureFactor       uint32 = 15
	MaxLocalEdgeIndex        uint32 = 127
	MaxSignEdgeIndex         uint32 = 1<<22 - 1
	DirectedEdgeSize                = 40
	SignSize                        = 8
)

var (
	ErrFieldOverflow     = errors.New("value exceeds field ceiling")
	ErrInvalidLocalIndex = errors.New("local edge index out of range")
	ErrUnionMode         = errors.New("stop impact / line id written under the wrong use")
	ErrInvalidShortcut   = errors.New("invalid shortcut index")
	ErrInvalidGraphID    = errors.New("invalid graph id")
	ErrInvalidEdgeInfo   = errors.New("invalid edge info block")
)

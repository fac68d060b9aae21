package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/graphtile/pkg/util"
)

// DirectedEdgeBuilder. writer side of DirectedEdge. every bounded setter checks the
// field ceiling and leaves the record untouched on error.
type DirectedEdgeBuilder struct {
	edge DirectedEdge
}

func NewDirectedEdgeBuilder() *DirectedEdgeBuilder {
	return &DirectedEdgeBuilder{}
}

// Edge. the finished record, copied by value.
func (b *DirectedEdgeBuilder) Edge() DirectedEdge {
	return b.edge
}

func overflow(field string, val, max uint64) error {
	return fmt.Errorf("%s=%d (max %d): %w", field, val, max, ErrFieldOverflow)
}

func (b *DirectedEdgeBuilder) SetEndNode(endnode GraphID) {
	b.edge.endnode = endnode
}

func (b *DirectedEdgeBuilder) SetEdgeInfoOffset(offset uint32) error {
	if offset > MaxEdgeInfoOffset {
		return overflow("edgeinfo_offset", uint64(offset), uint64(MaxEdgeInfoOffset))
	}
	b.edge.dataoffsets = util.SetBits(b.edge.dataoffsets, edgeInfoOffsetShift, edgeInfoOffsetBits, offset)
	return nil
}

func (b *DirectedEdgeBuilder) SetAccessConditions(v bool) {
	b.edge.dataoffsets = util.SetFlag(b.edge.dataoffsets, accessConditionsBit, v)
}

func (b *DirectedEdgeBuilder) SetStartTTR(v bool) {
	b.edge.dataoffsets = util.SetFlag(b.edge.dataoffsets, startTTRBit, v)
}

func (b *DirectedEdgeBuilder) SetStartMER(v bool) {
	b.edge.dataoffsets = util.SetFlag(b.edge.dataoffsets, startMERBit, v)
}

func (b *DirectedEdgeBuilder) SetEndMER(v bool) {
	b.edge.dataoffsets = util.SetFlag(b.edge.dataoffsets, endMERBit, v)
}

func (b *DirectedEdgeBuilder) SetExitSign(v bool) {
	b.edge.dataoffsets = util.SetFlag(b.edge.dataoffsets, exitSignBit, v)
}

func (b *DirectedEdgeBuilder) SetLength(length uint32) error {
	if length > MaxEdgeLength {
		return overflow("length", uint64(length), uint64(MaxEdgeLength))
	}
	b.edge.geoattributes = util.SetBits(b.edge.geoattributes, lengthShift, lengthBits, length)
	return nil
}

func (b *DirectedEdgeBuilder) SetElevation(factor uint32) error {
	if factor > MaxElevationFactor {
		return overflow("elevation", uint64(factor), uint64(MaxElevationFactor))
	}
	b.edge.geoattributes = util.SetBits(b.edge.geoattributes, elevationShift, elevationBits, factor)
	return nil
}

func (b *DirectedEdgeBuilder) SetCurvature(factor uint32) error {
	if factor > MaxCurvatureFactor {
		return overflow("curvature", uint64(factor), uint64(MaxCurvatureFactor))
	}
	b.edge.geoattributes = util.SetBits(b.edge.geoattributes, curvatureShift, curvatureBits, factor)
	return nil
}

func (b *DirectedEdgeBuilder) setAttributeFlag(bit uint, v bool) {
	b.edge.attributes = util.SetFlag(b.edge.attributes, bit, v)
}

func (b *DirectedEdgeBuilder) SetDriveOnRight(v bool)  { b.setAttributeFlag(driveOnRightBit, v) }
func (b *DirectedEdgeBuilder) SetFerry(v bool)         { b.setAttributeFlag(ferryBit, v) }
func (b *DirectedEdgeBuilder) SetRailFerry(v bool)     { b.setAttributeFlag(railFerryBit, v) }
func (b *DirectedEdgeBuilder) SetToll(v bool)          { b.setAttributeFlag(tollBit, v) }
func (b *DirectedEdgeBuilder) SetSeasonal(v bool)      { b.setAttributeFlag(seasonalBit, v) }
func (b *DirectedEdgeBuilder) SetDestOnly(v bool)      { b.setAttributeFlag(destOnlyBit, v) }
func (b *DirectedEdgeBuilder) SetTunnel(v bool)        { b.setAttributeFlag(tunnelBit, v) }
func (b *DirectedEdgeBuilder) SetBridge(v bool)        { b.setAttributeFlag(bridgeBit, v) }
func (b *DirectedEdgeBuilder) SetRoundabout(v bool)    { b.setAttributeFlag(roundaboutBit, v) }
func (b *DirectedEdgeBuilder) SetUnreachable(v bool)   { b.setAttributeFlag(unreachableBit, v) }
func (b *DirectedEdgeBuilder) SetTrafficSignal(v bool) { b.setAttributeFlag(trafficSignalBit, v) }
func (b *DirectedEdgeBuilder) SetForward(v bool)       { b.setAttributeFlag(forwardBit, v) }
func (b *DirectedEdgeBuilder) SetNotThru(v bool)       { b.setAttributeFlag(notThruBit, v) }
func (b *DirectedEdgeBuilder) SetCtryCrossing(v bool)  { b.setAttributeFlag(ctryCrossingBit, v) }

func (b *DirectedEdgeBuilder) setAttributeBits(field string, shift, width uint, val uint64) error {
	if !util.FitsBits(val, width) {
		return overflow(field, val, uint64(util.Mask[uint64](width)))
	}
	b.edge.attributes = util.SetBits(b.edge.attributes, shift, width, val)
	return nil
}

func (b *DirectedEdgeBuilder) SetOppIndex(idx uint32) error {
	return b.setAttributeBits("opp_index", oppIndexShift, oppIndexBits, uint64(idx))
}

func (b *DirectedEdgeBuilder) SetCycleLane(c CycleLane) error {
	return b.setAttributeBits("cycle_lane", cycleLaneShift, cycleLaneBits, uint64(c))
}

func (b *DirectedEdgeBuilder) SetBikeNetwork(mask uint32) error {
	return b.setAttributeBits("bikenetwork", bikeNetworkShift, bikeNetworkBits, uint64(mask))
}

func (b *DirectedEdgeBuilder) SetLaneCount(lanes uint32) error {
	return b.setAttributeBits("lanecount", laneCountShift, laneCountBits, uint64(lanes))
}

// SetRestrictions. mask of restricted local edge indexes at the end node.
func (b *DirectedEdgeBuilder) SetRestrictions(mask uint32) error {
	return b.setAttributeBits("restrictions", restrictionsShift, restrictionsBits, uint64(mask))
}

// SetUse. switching between a transit and a non transit use clears the stop-or-line word,
// its old contents mean something else under the new use.
func (b *DirectedEdgeBuilder) SetUse(use Use) error {
	wasTransit := b.edge.IsTransitLine()
	if err := b.setAttributeBits("use", useShift, useBits, uint64(use)); err != nil {
		return err
	}
	if wasTransit != use.IsTransitLine() {
		b.edge.stopimpact = 0
	}
	return nil
}

func (b *DirectedEdgeBuilder) SetSpeedType(s SpeedType) error {
	return b.setAttributeBits("speed_type", speedTypeShift, speedTypeBits, uint64(s))
}

func (b *DirectedEdgeBuilder) SetForwardAccess(a Access) {
	b.edge.forwardaccess = uint8(a)
}

func (b *DirectedEdgeBuilder) SetReverseAccess(a Access) {
	b.edge.reverseaccess = uint8(a)
}

func (b *DirectedEdgeBuilder) SetSpeed(kph uint32) error {
	if kph > MaxSpeed {
		return overflow("speed", uint64(kph), uint64(MaxSpeed))
	}
	b.edge.speed = uint8(kph)
	return nil
}

func (b *DirectedEdgeBuilder) SetClassification(rc RoadClass) error {
	if !util.FitsBits(uint8(rc), classificationBits) {
		return overflow("classification", uint64(rc), uint64(RoadClassServiceOther))
	}
	b.edge.classification = util.SetBits(b.edge.classification, classificationShift, classificationBits, uint8(rc))
	return nil
}

func (b *DirectedEdgeBuilder) SetSurface(s Surface) error {
	if !util.FitsBits(uint8(s), surfaceBits) {
		return overflow("surface", uint64(s), uint64(SurfaceImpassable))
	}
	b.edge.classification = util.SetBits(b.edge.classification, surfaceShift, surfaceBits, uint8(s))
	return nil
}

func (b *DirectedEdgeBuilder) SetLink(v bool) {
	b.edge.classification = util.SetFlag(b.edge.classification, linkBit, v)
}

func (b *DirectedEdgeBuilder) SetInternal(v bool) {
	b.edge.classification = util.SetFlag(b.edge.classification, internalBit, v)
}

func checkTransitionIdx(localIdx uint32) error {
	if localIdx >= NumberOfEdgeTransitions {
		return fmt.Errorf("local index %d: %w", localIdx, ErrInvalidLocalIndex)
	}
	return nil
}

func (b *DirectedEdgeBuilder) SetTurnType(localIdx uint32, t TurnType) error {
	if err := checkTransitionIdx(localIdx); err != nil {
		return err
	}
	if !util.FitsBits(uint32(t), transitionSlotBits) {
		return overflow("turntype", uint64(t), uint64(TurnSlightLeft))
	}
	b.edge.turntypes = util.SetBits(b.edge.turntypes, uint(localIdx*transitionSlotBits), transitionSlotBits, uint32(t))
	return nil
}

func (b *DirectedEdgeBuilder) SetEdgeToLeft(localIdx uint32, v bool) error {
	if err := checkTransitionIdx(localIdx); err != nil {
		return err
	}
	b.edge.turntypes = util.SetFlag(b.edge.turntypes, uint(adjacencyShift+localIdx), v)
	return nil
}

func (b *DirectedEdgeBuilder) checkStopImpactMode() error {
	if b.edge.IsTransitLine() {
		return fmt.Errorf("use=%s is a transit line: %w", b.edge.Use(), ErrUnionMode)
	}
	return nil
}

func (b *DirectedEdgeBuilder) SetStopImpact(localIdx uint32, impact uint32) error {
	if err := checkTransitionIdx(localIdx); err != nil {
		return err
	}
	if err := b.checkStopImpactMode(); err != nil {
		return err
	}
	if impact > MaxStopImpact {
		return overflow("stopimpact", uint64(impact), uint64(MaxStopImpact))
	}
	b.edge.stopimpact = util.SetBits(b.edge.stopimpact, uint(localIdx*transitionSlotBits), transitionSlotBits, impact)
	return nil
}

func (b *DirectedEdgeBuilder) SetEdgeToRight(localIdx uint32, v bool) error {
	if err := checkTransitionIdx(localIdx); err != nil {
		return err
	}
	if err := b.checkStopImpactMode(); err != nil {
		return err
	}
	b.edge.stopimpact = util.SetFlag(b.edge.stopimpact, uint(adjacencyShift+localIdx), v)
	return nil
}

// SetLineID. the use must already be a transit line use.
func (b *DirectedEdgeBuilder) SetLineID(lineID uint32) error {
	if !b.edge.IsTransitLine() {
		return fmt.Errorf("use=%s is not a transit line: %w", b.edge.Use(), ErrUnionMode)
	}
	b.edge.stopimpact = lineID
	return nil
}

func (b *DirectedEdgeBuilder) setHierarchyBits(field string, shift, width uint, val uint32) error {
	if !util.FitsBits(val, width) {
		return overflow(field, uint64(val), uint64(util.Mask[uint32](width)))
	}
	b.edge.hierarchy = util.SetBits(b.edge.hierarchy, shift, width, val)
	return nil
}

func (b *DirectedEdgeBuilder) SetLocalEdgeIdx(idx uint32) error {
	return b.setHierarchyBits("localedgeidx", localEdgeIdxShift, localEdgeIdxBits, idx)
}

func (b *DirectedEdgeBuilder) SetOppLocalIdx(idx uint32) error {
	return b.setHierarchyBits("opp_local_idx", oppLocalIdxShift, oppLocalIdxBits, idx)
}

// SetShortcut. n is the 1-based index of the shortcut among the node's shortcuts. only the
// first MaxShortcutsFromNode get a mask bit, every shortcut gets the is_shortcut flag.
func (b *DirectedEdgeBuilder) SetShortcut(n uint32) error {
	if n == 0 {
		return fmt.Errorf("shortcut=0: %w", ErrInvalidShortcut)
	}
	if n <= MaxShortcutsFromNode {
		b.edge.hierarchy = util.SetBits(b.edge.hierarchy, shortcutShift, shortcutBits, uint32(1)<<(n-1))
	}
	b.edge.hierarchy = util.SetFlag(b.edge.hierarchy, isShortcutBit, true)
	return nil
}

// SetSuperseded. n is the 1-based index of the shortcut that supersedes this edge.
func (b *DirectedEdgeBuilder) SetSuperseded(n uint32) error {
	if n == 0 || n > MaxShortcutsFromNode {
		return fmt.Errorf("superseded=%d: %w", n, ErrInvalidShortcut)
	}
	b.edge.hierarchy = util.SetBits(b.edge.hierarchy, supersededShift, supersededBits, uint32(1)<<(n-1))
	return nil
}

func (b *DirectedEdgeBuilder) SetTransUp(v bool) {
	b.edge.hierarchy = util.SetFlag(b.edge.hierarchy, transUpBit, v)
}

func (b *DirectedEdgeBuilder) SetTransDown(v bool) {
	b.edge.hierarchy = util.SetFlag(b.edge.hierarchy, transDownBit, v)
}

package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/graphtile/pkg/util"
)

/*
DirectedEdge. fixed 40 byte record of one directed edge inside a tile.

	offset  size  content
	0       8     end node (GraphID)
	8       4     data offsets: edgeinfo offset + extended data flags
	12      4     geometry: length, elevation, curvature
	16      8     attributes
	24      1     forward access
	25      1     reverse access
	26      1     speed (kph)
	27      1     classification
	28      4     turn types + edge to left
	32      4     stop impact + edge to right, or transit line id
	36      4     hierarchy / shortcut

the stop-or-line word has no tag of its own. Use() decides which reading is valid.
*/
type DirectedEdge struct {
	endnode        GraphID
	dataoffsets    uint32
	geoattributes  uint32
	attributes     uint64
	forwardaccess  uint8
	reverseaccess  uint8
	speed          uint8
	classification uint8
	turntypes      uint32
	stopimpact     uint32
	hierarchy      uint32
}

// data offsets word
const (
	edgeInfoOffsetShift   = 0
	edgeInfoOffsetBits    = 25
	accessConditionsBit   = 25
	startTTRBit           = 26
	startMERBit           = 27
	endMERBit             = 28
	exitSignBit           = 29
	dataOffsetsSpareShift = 30
	dataOffsetsSpareBits  = 2
)

// geometry word
const (
	lengthShift    = 0
	lengthBits     = 24
	elevationShift = 24
	elevationBits  = 4
	curvatureShift = 28
	curvatureBits  = 4
)

// attributes word
const (
	driveOnRightBit      = 0
	ferryBit             = 1
	railFerryBit         = 2
	tollBit              = 3
	seasonalBit          = 4
	destOnlyBit          = 5
	tunnelBit            = 6
	bridgeBit            = 7
	roundaboutBit        = 8
	unreachableBit       = 9
	trafficSignalBit     = 10
	forwardBit           = 11
	notThruBit           = 12
	oppIndexShift        = 13
	oppIndexBits         = 7
	cycleLaneShift       = 20
	cycleLaneBits        = 2
	bikeNetworkShift     = 22
	bikeNetworkBits      = 4
	laneCountShift       = 26
	laneCountBits        = 4
	restrictionsShift    = 30
	restrictionsBits     = 8
	useShift             = 38
	useBits              = 6
	speedTypeShift       = 44
	speedTypeBits        = 2
	ctryCrossingBit      = 46
	attributesSpareShift = 47
	attributesSpareBits  = 17
)

// classification byte
const (
	classificationShift = 0
	classificationBits  = 3
	surfaceShift        = 3
	surfaceBits         = 3
	linkBit             = 6
	internalBit         = 7
)

// turn type word and stop impact word share the slot layout
const (
	transitionSlotBits  = 3
	transitionTableBits = 24
	adjacencyShift      = 24
	adjacencyBits       = 8
	lineIDShift         = 0
	lineIDBits          = 32
)

// hierarchy word
const (
	localEdgeIdxShift   = 0
	localEdgeIdxBits    = 7
	oppLocalIdxShift    = 7
	oppLocalIdxBits     = 7
	shortcutShift       = 14
	shortcutBits        = 7
	supersededShift     = 21
	supersededBits      = 7
	transUpBit          = 28
	transDownBit        = 29
	isShortcutBit       = 30
	hierarchySpareShift = 31
	hierarchySpareBits  = 1
)

// checkLocalIdx. traps on a local index outside the 8 transition slots.
func checkLocalIdx(localIdx uint32) {
	if localIdx >= NumberOfEdgeTransitions {
		panic(fmt.Sprintf("directed edge: local edge index %d out of range [0,%d)", localIdx, NumberOfEdgeTransitions))
	}
}

// EndNode. node at the end of this directed edge.
func (e DirectedEdge) EndNode() GraphID {
	return e.endnode
}

// EdgeInfoOffset. offset of the shared edge info from the start of the tile's edge info block.
func (e DirectedEdge) EdgeInfoOffset() uint32 {
	return util.GetBits(e.dataoffsets, edgeInfoOffsetShift, edgeInfoOffsetBits)
}

// AccessConditions. true if general access conditions exist for this edge.
func (e DirectedEdge) AccessConditions() bool {
	return util.GetFlag(e.dataoffsets, accessConditionsBit)
}

// StartTTR. edge starts a simple timed turn restriction.
func (e DirectedEdge) StartTTR() bool {
	return util.GetFlag(e.dataoffsets, startTTRBit)
}

// StartMER. edge starts a multi-edge restriction.
func (e DirectedEdge) StartMER() bool {
	return util.GetFlag(e.dataoffsets, startMERBit)
}

// EndMER. edge ends a multi-edge restriction.
func (e DirectedEdge) EndMER() bool {
	return util.GetFlag(e.dataoffsets, endMERBit)
}

// ExitSign. true if Sign records exist for this edge index.
func (e DirectedEdge) ExitSign() bool {
	return util.GetFlag(e.dataoffsets, exitSignBit)
}

// Length in meters.
func (e DirectedEdge) Length() uint32 {
	return util.GetBits(e.geoattributes, lengthShift, lengthBits)
}

// Elevation factor 0-15.
func (e DirectedEdge) Elevation() uint32 {
	return util.GetBits(e.geoattributes, elevationShift, elevationBits)
}

// Curvature factor 0-15.
func (e DirectedEdge) Curvature() uint32 {
	return util.GetBits(e.geoattributes, curvatureShift, curvatureBits)
}

func (e DirectedEdge) DriveOnRight() bool {
	return util.GetFlag(e.attributes, driveOnRightBit)
}

func (e DirectedEdge) Ferry() bool {
	return util.GetFlag(e.attributes, ferryBit)
}

func (e DirectedEdge) RailFerry() bool {
	return util.GetFlag(e.attributes, railFerryBit)
}

func (e DirectedEdge) Toll() bool {
	return util.GetFlag(e.attributes, tollBit)
}

func (e DirectedEdge) Seasonal() bool {
	return util.GetFlag(e.attributes, seasonalBit)
}

// DestOnly. private or no-through access, allowed only to reach a destination.
func (e DirectedEdge) DestOnly() bool {
	return util.GetFlag(e.attributes, destOnlyBit)
}

func (e DirectedEdge) Tunnel() bool {
	return util.GetFlag(e.attributes, tunnelBit)
}

func (e DirectedEdge) Bridge() bool {
	return util.GetFlag(e.attributes, bridgeBit)
}

func (e DirectedEdge) Roundabout() bool {
	return util.GetFlag(e.attributes, roundaboutBit)
}

// Unreachable. edge cannot be reached by driving.
func (e DirectedEdge) Unreachable() bool {
	return util.GetFlag(e.attributes, unreachableBit)
}

// TrafficSignal. a signal sits at the end node of this edge.
func (e DirectedEdge) TrafficSignal() bool {
	return util.GetFlag(e.attributes, trafficSignalBit)
}

// Forward. true if the shared edge info shape is stored in this edge's direction.
func (e DirectedEdge) Forward() bool {
	return util.GetFlag(e.attributes, forwardBit)
}

// NotThru. edge leads into a region with no exit other than this edge.
func (e DirectedEdge) NotThru() bool {
	return util.GetFlag(e.attributes, notThruBit)
}

// OppIndex. index of the opposing directed edge among the end node's edges.
func (e DirectedEdge) OppIndex() uint32 {
	return uint32(util.GetBits(e.attributes, oppIndexShift, oppIndexBits))
}

func (e DirectedEdge) CycleLane() CycleLane {
	return CycleLane(util.GetBits(e.attributes, cycleLaneShift, cycleLaneBits))
}

// BikeNetwork. mask of NCN, RCN, LCN, MCN.
func (e DirectedEdge) BikeNetwork() uint32 {
	return uint32(util.GetBits(e.attributes, bikeNetworkShift, bikeNetworkBits))
}

func (e DirectedEdge) LaneCount() uint32 {
	return uint32(util.GetBits(e.attributes, laneCountShift, laneCountBits))
}

// Restrictions. bit i set means turning onto local edge i at the end node is
// restricted for all vehicles at all times.
func (e DirectedEdge) Restrictions() uint32 {
	return uint32(util.GetBits(e.attributes, restrictionsShift, restrictionsBits))
}

func (e DirectedEdge) Use() Use {
	return Use(util.GetBits(e.attributes, useShift, useBits))
}

// IsTransitLine. true for bus and rail line edges. decides the meaning of the
// stop-or-line word.
func (e DirectedEdge) IsTransitLine() bool {
	return e.Use().IsTransitLine()
}

func (e DirectedEdge) SpeedType() SpeedType {
	return SpeedType(util.GetBits(e.attributes, speedTypeShift, speedTypeBits))
}

// CtryCrossing. edge crosses into another country.
func (e DirectedEdge) CtryCrossing() bool {
	return util.GetFlag(e.attributes, ctryCrossingBit)
}

func (e DirectedEdge) ForwardAccess() Access {
	return Access(e.forwardaccess)
}

func (e DirectedEdge) ReverseAccess() Access {
	return Access(e.reverseaccess)
}

// Speed in kph. values above MaxDrivingSpeed mark special cases.
func (e DirectedEdge) Speed() uint32 {
	return uint32(e.speed)
}

func (e DirectedEdge) Classification() RoadClass {
	return RoadClass(util.GetBits(e.classification, classificationShift, classificationBits))
}

func (e DirectedEdge) Surface() Surface {
	return Surface(util.GetBits(e.classification, surfaceShift, surfaceBits))
}

func (e DirectedEdge) Unpaved() bool {
	return e.Surface() >= SurfaceCompacted
}

// Link. ramp or turn channel.
func (e DirectedEdge) Link() bool {
	return util.GetFlag(e.classification, linkBit)
}

// Internal. edge is internal to an intersection.
func (e DirectedEdge) Internal() bool {
	return util.GetFlag(e.classification, internalBit)
}

// TurnType. turn type from the inbound edge with local index localIdx onto this edge.
func (e DirectedEdge) TurnType(localIdx uint32) TurnType {
	checkLocalIdx(localIdx)
	return TurnType(util.GetBits(e.turntypes, uint(localIdx*transitionSlotBits), transitionSlotBits))
}

// EdgeToLeft. an edge lies to the left between the inbound edge localIdx and this edge.
func (e DirectedEdge) EdgeToLeft(localIdx uint32) bool {
	checkLocalIdx(localIdx)
	return util.GetFlag(e.turntypes, uint(adjacencyShift+localIdx))
}

// StopImpact. relative stop impact 0-7 when coming from inbound edge localIdx.
// only valid when IsTransitLine is false.
func (e DirectedEdge) StopImpact(localIdx uint32) uint32 {
	checkLocalIdx(localIdx)
	assertStopImpactMode(e)
	return util.GetBits(e.stopimpact, uint(localIdx*transitionSlotBits), transitionSlotBits)
}

// EdgeToRight. an edge lies to the right between the inbound edge localIdx and this edge.
// only valid when IsTransitLine is false.
func (e DirectedEdge) EdgeToRight(localIdx uint32) bool {
	checkLocalIdx(localIdx)
	assertStopImpactMode(e)
	return util.GetFlag(e.stopimpact, uint(adjacencyShift+localIdx))
}

// LineID. transit line id for departure lookups. only valid when IsTransitLine is true.
func (e DirectedEdge) LineID() uint32 {
	assertLineMode(e)
	return util.GetBits(e.stopimpact, lineIDShift, lineIDBits)
}

// LocalEdgeIdx. index of this edge on the local hierarchy level.
func (e DirectedEdge) LocalEdgeIdx() uint32 {
	return util.GetBits(e.hierarchy, localEdgeIdxShift, localEdgeIdxBits)
}

// OppLocalIdx. local level index of the opposing edge at the end node.
func (e DirectedEdge) OppLocalIdx() uint32 {
	return util.GetBits(e.hierarchy, oppLocalIdxShift, oppLocalIdxBits)
}

// Shortcut. mask of the superseded edge this shortcut bypasses. 0 if not a masked shortcut.
func (e DirectedEdge) Shortcut() uint32 {
	return util.GetBits(e.hierarchy, shortcutShift, shortcutBits)
}

// Superseded. mask of the shortcut that supersedes this edge. 0 if not superseded.
func (e DirectedEdge) Superseded() uint32 {
	return util.GetBits(e.hierarchy, supersededShift, supersededBits)
}

func (e DirectedEdge) TransUp() bool {
	return util.GetFlag(e.hierarchy, transUpBit)
}

func (e DirectedEdge) TransDown() bool {
	return util.GetFlag(e.hierarchy, transDownBit)
}

// IsShortcut. set for every shortcut, also those beyond MaxShortcutsFromNode that carry no mask.
func (e DirectedEdge) IsShortcut() bool {
	return util.GetFlag(e.hierarchy, isShortcutBit)
}

// AllowsTurn. false if the simple restriction mask forbids turning onto local edge localIdx.
func (e DirectedEdge) AllowsTurn(localIdx uint32) bool {
	if localIdx >= MaxTurnRestrictionEdges {
		return true
	}
	return e.Restrictions()&(1<<localIdx) == 0
}

package datastructure

// Access. bit field of travel modes allowed along one direction of an edge.
type Access uint8

const (
	AutoAccess       Access = 1
	PedestrianAccess Access = 2
	BicycleAccess    Access = 4
	TruckAccess      Access = 8
	EmergencyAccess  Access = 16
	TaxiAccess       Access = 32
	BusAccess        Access = 64
	HOVAccess        Access = 128

	AllAccess     Access = 255
	VehicleAccess        = AutoAccess | TruckAccess | EmergencyAccess | TaxiAccess | BusAccess | HOVAccess
)

func (a Access) Allows(mode Access) bool {
	return a&mode != 0
}

// RoadClass. classification / importance of a road (3 bits).
type RoadClass uint8

const (
	RoadClassMotorway RoadClass = iota
	RoadClassTrunk
	RoadClassPrimary
	RoadClassSecondary
	RoadClassTertiary
	RoadClassUnclassified
	RoadClassResidential
	RoadClassServiceOther
)

var roadClassStrings = [...]string{"motorway", "trunk", "primary", "secondary", "tertiary",
	"unclassified", "residential", "service_other"}

func (rc RoadClass) String() string {
	if int(rc) < len(roadClassStrings) {
		return roadClassStrings[rc]
	}
	return "unknown"
}

// Surface. general indication of smoothness (3 bits).
type Surface uint8

const (
	SurfacePavedSmooth Surface = iota
	SurfacePaved
	SurfacePavedRough
	SurfaceCompacted
	SurfaceDirt
	SurfaceGravel
	SurfacePath
	SurfaceImpassable
)

var surfaceStrings = [...]string{"paved_smooth", "paved", "paved_rough", "compacted", "dirt",
	"gravel", "path", "impassable"}

func (s Surface) String() string {
	if int(s) < len(surfaceStrings) {
		return surfaceStrings[s]
	}
	return "unknown"
}

// CycleLane. bicycle lane type along an edge (2 bits).
type CycleLane uint8

const (
	CycleLaneNone CycleLane = iota
	CycleLaneShared
	CycleLaneDedicated
	CycleLaneSeparated
)

var cycleLaneStrings = [...]string{"none", "shared", "dedicated", "separated"}

func (c CycleLane) String() string {
	if int(c) < len(cycleLaneStrings) {
		return cycleLaneStrings[c]
	}
	return "unknown"
}

// SpeedType. how the edge speed was obtained (2 bits).
type SpeedType uint8

const (
	SpeedTypeTagged SpeedType = iota
	SpeedTypeClassified
)

func (s SpeedType) String() string {
	switch s {
	case SpeedTypeTagged:
		return "tagged"
	case SpeedTypeClassified:
		return "classified"
	}
	return "unknown"
}

// Use. specialized use of an edge (6 bits).
type Use uint8

const (
	UseRoad            Use = 0
	UseRamp            Use = 1
	UseTurnChannel     Use = 2
	UseTrack           Use = 3
	UseDriveway        Use = 4
	UseAlley           Use = 5
	UseParkingAisle    Use = 6
	UseEmergencyAccess Use = 7
	UseDriveThru       Use = 8
	UseCuldesac        Use = 9

	UseCycleway     Use = 20
	UseMountainBike Use = 21

	UseSidewalk Use = 24
	UseFootway  Use = 25
	UseSteps    Use = 26

	UseOther     Use = 40
	UseFerry     Use = 41
	UseRailFerry Use = 42

	UseRail              Use = 50
	UseBus               Use = 51
	UseRailConnection    Use = 52
	UseBusConnection     Use = 53
	UseTransitConnection Use = 54

	MaxUse Use = 63
)

// transitLineUses. uses whose stop-or-line word holds a line id.
var transitLineUses = [MaxUse + 1]bool{
	UseRail: true,
	UseBus:  true,
}

// IsTransitLine. sole discriminant of the stop-or-line union.
func (u Use) IsTransitLine() bool {
	return u <= MaxUse && transitLineUses[u]
}

var useStrings = map[Use]string{
	UseRoad: "road", UseRamp: "ramp", UseTurnChannel: "turn_channel", UseTrack: "track",
	UseDriveway: "driveway", UseAlley: "alley", UseParkingAisle: "parking_aisle",
	UseEmergencyAccess: "emergency_access", UseDriveThru: "drive_through", UseCuldesac: "culdesac",
	UseCycleway: "cycleway", UseMountainBike: "mountain_bike", UseSidewalk: "sidewalk",
	UseFootway: "footway", UseSteps: "steps", UseOther: "other", UseFerry: "ferry",
	UseRailFerry: "rail_ferry", UseRail: "rail", UseBus: "bus", UseRailConnection: "rail_connection",
	UseBusConnection: "bus_connection", UseTransitConnection: "transit_connection",
}

func (u Use) String() string {
	if s, ok := useStrings[u]; ok {
		return s
	}
	return "unknown"
}

// TurnType. turn category from an inbound edge onto this edge (3 bits).
type TurnType uint8

const (
	TurnStraight TurnType = iota
	TurnSlightRight
	TurnRight
	TurnSharpRight
	TurnReverse
	TurnSharpLeft
	TurnLeft
	TurnSlightLeft
)

var turnTypeStrings = [...]string{"straight", "slight_right", "right", "sharp_right", "reverse",
	"sharp_left", "left", "slight_left"}

func (t TurnType) String() string {
	if int(t) < len(turnTypeStrings) {
		return turnTypeStrings[t]
	}
	return "unknown"
}

// SignType. kind of text carried by a Sign record.
type SignType uint8

const (
	SignExitNumber SignType = iota
	SignExitBranch
	SignExitToward
	SignExitName
	SignGuideBranch
	SignGuideToward
	SignJunctionName
)

var signTypeStrings = [...]string{"exit_number", "exit_branch", "exit_toward", "exit_name",
	"guide_branch", "guide_toward", "junction_name"}

func (s SignType) String() string {
	if int(s) < len(signTypeStrings) {
		return signTypeStrings[s]
	}
	return "unknown"
}

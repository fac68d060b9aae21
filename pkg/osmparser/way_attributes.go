package osmparser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/paulmach/osm"
)

// WayAttributes. edge attributes derived from the tags of one osm way.
type WayAttributes struct {
	RoadClass     datastructure.RoadClass
	Use           datastructure.Use
	Surface       datastructure.Surface
	Link          bool
	CycleLane     datastructure.CycleLane
	BikeNetwork   uint32
	Lanes         uint32
	Speed         uint32 // kph
	SpeedType     datastructure.SpeedType
	Toll          bool
	Tunnel        bool
	Bridge        bool
	Roundabout    bool
	Ferry         bool
	RailFerry     bool
	Seasonal      bool
	DestOnly      bool
	Names         []string
	ForwardAccess datastructure.Access
	ReverseAccess datastructure.Access
}

var (
	skipHighway = map[string]struct{}{
		"construction":           {},
		"proposed":               {},
		"abandoned":              {},
		"platform":               {},
		"bus_stop":               {},
		"crossing":               {},
		"elevator":               {},
		"emergency_access_point": {},
		"give_way":               {},
		"milestone":              {},
		"speed_camera":           {},
		"stop":                   {},
		"street_lamp":            {},
		"traffic_signals":        {},
		"corridor":               {},
		"bridleway":              {},
	}

	roadClasses = map[string]datastructure.RoadClass{
		"motorway":      datastructure.RoadClassMotorway,
		"trunk":         datastructure.RoadClassTrunk,
		"primary":       datastructure.RoadClassPrimary,
		"secondary":     datastructure.RoadClassSecondary,
		"tertiary":      datastructure.RoadClassTertiary,
		"unclassified":  datastructure.RoadClassUnclassified,
		"road":          datastructure.RoadClassUnclassified,
		"residential":   datastructure.RoadClassResidential,
		"living_street": datastructure.RoadClassResidential,
	}

	highwayUses = map[string]datastructure.Use{
		"track":      datastructure.UseTrack,
		"cycleway":   datastructure.UseCycleway,
		"footway":    datastructure.UseFootway,
		"pedestrian": datastructure.UseFootway,
		"path":       datastructure.UseFootway,
		"steps":      datastructure.UseSteps,
	}

	serviceUses = map[string]datastructure.Use{
		"driveway":         datastructure.UseDriveway,
		"alley":            datastructure.UseAlley,
		"parking_aisle":    datastructure.UseParkingAisle,
		"drive-through":    datastructure.UseDriveThru,
		"emergency_access": datastructure.UseEmergencyAccess,
	}

	surfaces = map[string]datastructure.Surface{
		"asphalt":       datastructure.SurfacePavedSmooth,
		"concrete":      datastructure.SurfacePavedSmooth,
		"paved":         datastructure.SurfacePaved,
		"paving_stones": datastructure.SurfacePaved,
		"sett":          datastructure.SurfacePavedRough,
		"cobblestone":   datastructure.SurfacePavedRough,
		"compacted":     datastructure.SurfaceCompacted,
		"fine_gravel":   datastructure.SurfaceCompacted,
		"dirt":          datastructure.SurfaceDirt,
		"earth":         datastructure.SurfaceDirt,
		"ground":        datastructure.SurfaceDirt,
		"unpaved":       datastructure.SurfaceDirt,
		"gravel":        datastructure.SurfaceGravel,
		"pebblestone":   datastructure.SurfaceGravel,
		"grass":         datastructure.SurfacePath,
		"sand":          datastructure.SurfacePath,
		"mud":           datastructure.SurfaceImpassable,
	}

	cycleLanes = map[string]datastructure.CycleLane{
		"shared_lane":    datastructure.CycleLaneShared,
		"share_busway":   datastructure.CycleLaneShared,
		"lane":           datastructure.CycleLaneDedicated,
		"opposite_lane":  datastructure.CycleLaneDedicated,
		"track":          datastructure.CycleLaneSeparated,
		"opposite_track": datastructure.CycleLaneSeparated,
	}

	restricted = map[string]struct{}{
		"no":         {},
		"restricted": {},
	}
)

const (
	motorAccess = datastructure.AutoAccess | datastructure.TruckAccess | datastructure.TaxiAccess |
		datastructure.BusAccess | datastructure.HOVAccess
	roadAccess = datastructure.AllAccess
)

func RoadTypeMaxSpeed(roadType string) uint32 {
	switch roadType {
	case "motorway":
		return 100
	case "trunk":
		return 70
	case "primary":
		return 65
	case "secondary":
		return 60
	case "tertiary":
		return 50
	case "unclassified":
		return 30
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 70
	case "trunk_link":
		return 65
	case "primary_link":
		return 60
	case "secondary_link":
		return 50
	case "tertiary_link":
		return 40
	case "living_street":
		return 10
	case "road":
		return 20
	case "track":
		return 15
	case "cycleway":
		return 20
	default:
		return 5
	}
}

// acceptOsmWay. highways minus the non routable values, ferries and shuttle trains.
func acceptOsmWay(tags osm.Tags) bool {
	highway := tags.Find("highway")
	if highway != "" {
		_, skip := skipHighway[highway]
		return !skip
	}
	switch tags.Find("route") {
	case "ferry", "shuttle_train", "road":
		return true
	}
	return tags.Find("junction") != ""
}

// ClassifyWay. derive edge attributes from way tags. ok is false for ways that never become edges.
func ClassifyWay(tags osm.Tags) (WayAttributes, bool) {
	if !acceptOsmWay(tags) {
		return WayAttributes{}, false
	}

	a := WayAttributes{
		RoadClass:     datastructure.RoadClassServiceOther,
		Use:           datastructure.UseRoad,
		Surface:       datastructure.SurfacePaved,
		SpeedType:     datastructure.SpeedTypeClassified,
		ForwardAccess: roadAccess,
		ReverseAccess: roadAccess,
	}

	highway := tags.Find("highway")
	base := strings.TrimSuffix(highway, "_link")
	if rc, ok := roadClasses[base]; ok {
		a.RoadClass = rc
	}
	if base != highway {
		a.Link = true
		a.Use = datastructure.UseRamp
	}
	if use, ok := highwayUses[highway]; ok {
		a.Use = use
	}
	if highway == "service" {
		if use, ok := serviceUses[tags.Find("service")]; ok {
			a.Use = use
		}
	}
	if highway == "living_street" {
		a.Surface = datastructure.SurfacePavedSmooth
	}

	switch tags.Find("route") {
	case "ferry":
		a.Ferry = true
		a.Use = datastructure.UseFerry
	case "shuttle_train":
		a.RailFerry = true
		a.Use = datastructure.UseRailFerry
	}

	a.Speed = RoadTypeMaxSpeed(highway)
	if a.Ferry || a.RailFerry {
		a.Speed = 10
	}
	if kph, ok := parseMaxSpeed(tags.Find("maxspeed")); ok {
		a.Speed = kph
		a.SpeedType = datastructure.SpeedTypeTagged
	}

	if s, ok := surfaces[tags.Find("surface")]; ok {
		a.Surface = s
	} else if a.Use == datastructure.UseTrack {
		a.Surface = datastructure.SurfaceDirt
	}

	a.CycleLane = cycleLane(tags)
	a.BikeNetwork = bikeNetwork(tags)

	if lanes, err := strconv.Atoi(tags.Find("lanes")); err == nil && lanes > 0 {
		a.Lanes = min(uint32(lanes), datastructure.MaxLaneCount)
	} else {
		a.Lanes = 1
	}

	a.Toll = tags.Find("toll") == "yes"
	a.Tunnel = tags.Find("tunnel") == "yes"
	a.Bridge = tags.Find("bridge") == "yes"
	a.Seasonal = tags.Find("seasonal") == "yes"
	junction := tags.Find("junction")
	a.Roundabout = junction == "roundabout" || junction == "circular"

	if name := tags.Find("name"); name != "" {
		a.Names = append(a.Names, name)
	}
	for _, ref := range strings.Split(tags.Find("ref"), ";") {
		if ref = strings.TrimSpace(ref); ref != "" {
			a.Names = append(a.Names, ref)
		}
	}

	applyAccess(&a, tags)
	return a, true
}

func applyAccess(a *WayAttributes, tags osm.Tags) {
	access := roadAccess
	switch a.Use {
	case datastructure.UseFootway, datastructure.UseSteps:
		access = datastructure.PedestrianAccess
		if tags.Find("bicycle") == "yes" || tags.Find("bicycle") == "designated" {
			access |= datastructure.BicycleAccess
		}
	case datastructure.UseCycleway:
		access = datastructure.BicycleAccess | datastructure.PedestrianAccess
	}
	if a.RoadClass == datastructure.RoadClassMotorway {
		access &^= datastructure.PedestrianAccess | datastructure.BicycleAccess
	}

	switch tags.Find("access") {
	case "no":
		access = 0
	case "private", "destination", "delivery":
		a.DestOnly = true
	}
	if isRestricted(tags.Find("motor_vehicle")) || isRestricted(tags.Find("vehicle")) {
		access &^= motorAccess
	}
	if isRestricted(tags.Find("foot")) {
		access &^= datastructure.PedestrianAccess
	}
	if isRestricted(tags.Find("bicycle")) {
		access &^= datastructure.BicycleAccess
	}
	if tags.Find("motor_vehicle") == "destination" {
		a.DestOnly = true
	}

	fwd, rev := access, access
	oneway := tags.Find("oneway")
	if a.Roundabout && oneway == "" {
		oneway = "yes"
	}
	if a.RoadClass == datastructure.RoadClassMotorway && oneway == "" && !a.Link {
		oneway = "yes"
	}
	switch oneway {
	case "yes", "true", "1":
		rev &^= motorAccess | datastructure.EmergencyAccess
		if tags.Find("oneway:bicycle") != "no" {
			rev &^= datastructure.BicycleAccess
		}
	case "-1", "reverse":
		fwd &^= motorAccess | datastructure.EmergencyAccess
		if tags.Find("oneway:bicycle") != "no" {
			fwd &^= datastructure.BicycleAccess
		}
	}

	if isRestricted(tags.Find("vehicle:forward")) || isRestricted(tags.Find("motor_vehicle:forward")) {
		fwd &^= motorAccess
	}
	if isRestricted(tags.Find("vehicle:backward")) || isRestricted(tags.Find("motor_vehicle:backward")) {
		rev &^= motorAccess
	}
	a.ForwardAccess, a.ReverseAccess = fwd, rev
}

func isRestricted(value string) bool {
	_, ok := restricted[value]
	return ok
}

// parseMaxSpeed. "50", "50 km/h", "30 mph". none/signals/walk are not numeric speeds.
func parseMaxSpeed(v string) (uint32, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	mph := false
	if strings.HasSuffix(v, "mph") {
		mph = true
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
	}
	v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	if mph {
		speed *= 1.609344
	}
	kph := uint32(speed + 0.5)
	return min(kph, datastructure.MaxDrivingSpeed), true
}

func cycleLane(tags osm.Tags) datastructure.CycleLane {
	best := datastructure.CycleLaneNone
	for _, key := range []string{"cycleway", "cycleway:both", "cycleway:left", "cycleway:right"} {
		if c, ok := cycleLanes[tags.Find(key)]; ok && c > best {
			best = c
		}
	}
	return best
}

func bikeNetwork(tags osm.Tags) uint32 {
	var mask uint32
	if tags.Find("ncn") == "yes" {
		mask |= datastructure.NCN
	}
	if tags.Find("rcn") == "yes" {
		mask |= datastructure.RCN
	}
	if tags.Find("lcn") == "yes" {
		mask |= datastructure.LCN
	}
	if tags.Find("mtb") == "yes" {
		mask |= datastructure.MCN
	}
	return mask
}

// ApplyWayAttributes. write the way attributes into the edge builder. forward is false for
// the edge running against the way's node order, its access directions are swapped.
func ApplyWayAttributes(b *datastructure.DirectedEdgeBuilder, a WayAttributes, forward bool) error {
	b.SetForward(forward)
	if forward {
		b.SetForwardAccess(a.ForwardAccess)
		b.SetReverseAccess(a.ReverseAccess)
	} else {
		b.SetForwardAccess(a.ReverseAccess)
		b.SetReverseAccess(a.ForwardAccess)
	}
	b.SetLink(a.Link)
	b.SetToll(a.Toll)
	b.SetTunnel(a.Tunnel)
	b.SetBridge(a.Bridge)
	b.SetRoundabout(a.Roundabout)
	b.SetFerry(a.Ferry)
	b.SetRailFerry(a.RailFerry)
	b.SetSeasonal(a.Seasonal)
	b.SetDestOnly(a.DestOnly)

	return errors.Join(
		b.SetClassification(a.RoadClass),
		b.SetUse(a.Use),
		b.SetSurface(a.Surface),
		b.SetCycleLane(a.CycleLane),
		b.SetBikeNetwork(a.BikeNetwork),
		b.SetLaneCount(a.Lanes),
		b.SetSpeed(a.Speed),
		b.SetSpeedType(a.SpeedType),
	)
}

package datastructure

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectedEdgeSize(t *testing.T) {
	assert.Equal(t, uintptr(DirectedEdgeSize), unsafe.Sizeof(DirectedEdge{}))
	e := DirectedEdge{}
	assert.Len(t, e.Serialize(), DirectedEdgeSize)
}

// snapshot. every readable attribute of the edge, keyed by field name.
func snapshot(e DirectedEdge) map[string]any {
	s := map[string]any{
		"endnode":           e.EndNode(),
		"edgeinfo_offset":   e.EdgeInfoOffset(),
		"access_conditions": e.AccessConditions(),
		"start_ttr":         e.StartTTR(),
		"start_mer":         e.StartMER(),
		"end_mer":           e.EndMER(),
		"exitsign":          e.ExitSign(),
		"length":            e.Length(),
		"elevation":         e.Elevation(),
		"curvature":         e.Curvature(),
		"drive_on_right":    e.DriveOnRight(),
		"ferry":             e.Ferry(),
		"railferry":         e.RailFerry(),
		"toll":              e.Toll(),
		"seasonal":          e.Seasonal(),
		"dest_only":         e.DestOnly(),
		"tunnel":            e.Tunnel(),
		"bridge":            e.Bridge(),
		"roundabout":        e.Roundabout(),
		"unreachable":       e.Unreachable(),
		"traffic_signal":    e.TrafficSignal(),
		"forward":           e.Forward(),
		"not_thru":          e.NotThru(),
		"opp_index":         e.OppIndex(),
		"cycle_lane":        e.CycleLane(),
		"bikenetwork":       e.BikeNetwork(),
		"lanecount":         e.LaneCount(),
		"restrictions":      e.Restrictions(),
		"use":               e.Use(),
		"speed_type":        e.SpeedType(),
		"ctry_crossing":     e.CtryCrossing(),
		"forwardaccess":     e.ForwardAccess(),
		"reverseaccess":     e.ReverseAccess(),
		"speed":             e.Speed(),
		"classification":    e.Classification(),
		"surface":           e.Surface(),
		"link":              e.Link(),
		"internal":          e.Internal(),
		"localedgeidx":      e.LocalEdgeIdx(),
		"opp_local_idx":     e.OppLocalIdx(),
		"shortcut":          e.Shortcut(),
		"superseded":        e.Superseded(),
		"trans_up":          e.TransUp(),
		"trans_down":        e.TransDown(),
		"is_shortcut":       e.IsShortcut(),
	}
	for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
		s[fmt.Sprintf("turntype%d", i)] = e.TurnType(i)
		s[fmt.Sprintf("edge_to_left%d", i)] = e.EdgeToLeft(i)
	}
	if e.IsTransitLine() {
		s["lineid"] = e.LineID()
	} else {
		for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
			s[fmt.Sprintf("stopimpact%d", i)] = e.StopImpact(i)
			s[fmt.Sprintf("edge_to_right%d", i)] = e.EdgeToRight(i)
		}
	}
	return s
}

// fullBuilder. non transit edge with every field at its ceiling.
func fullBuilder(t *testing.T) *DirectedEdgeBuilder {
	t.Helper()
	b := NewDirectedEdgeBuilder()
	end, err := NewGraphID(MaxGraphTileID, MaxGraphHierarchy, MaxGraphID)
	require.NoError(t, err)
	b.SetEndNode(end)
	require.NoError(t, b.SetEdgeInfoOffset(MaxEdgeInfoOffset))
	b.SetAccessConditions(true)
	b.SetStartTTR(true)
	b.SetStartMER(true)
	b.SetEndMER(true)
	b.SetExitSign(true)
	require.NoError(t, b.SetLength(MaxEdgeLength))
	require.NoError(t, b.SetElevation(MaxElevationFactor))
	require.NoError(t, b.SetCurvature(MaxCurvatureFactor))
	for _, set := range []func(bool){b.SetDriveOnRight, b.SetFerry, b.SetRailFerry, b.SetToll,
		b.SetSeasonal, b.SetDestOnly, b.SetTunnel, b.SetBridge, b.SetRoundabout, b.SetUnreachable,
		b.SetTrafficSignal, b.SetForward, b.SetNotThru, b.SetCtryCrossing, b.SetLink, b.SetInternal,
		b.SetTransUp, b.SetTransDown} {
		set(true)
	}
	require.NoError(t, b.SetOppIndex(MaxLocalEdgeIndex))
	require.NoError(t, b.SetCycleLane(CycleLaneSeparated))
	require.NoError(t, b.SetBikeNetwork(MaxBicycleNetwork))
	require.NoError(t, b.SetLaneCount(MaxLaneCount))
	require.NoError(t, b.SetRestrictions(0xff))
	require.NoError(t, b.SetUse(UseCuldesac))
	require.NoError(t, b.SetSpeedType(3))
	b.SetForwardAccess(AllAccess)
	b.SetReverseAccess(AllAccess)
	require.NoError(t, b.SetSpeed(MaxSpeed))
	require.NoError(t, b.SetClassification(RoadClassServiceOther))
	require.NoError(t, b.SetSurface(SurfaceImpassable))
	for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
		require.NoError(t, b.SetTurnType(i, TurnSlightLeft))
		require.NoError(t, b.SetEdgeToLeft(i, true))
		require.NoError(t, b.SetStopImpact(i, MaxStopImpact))
		require.NoError(t, b.SetEdgeToRight(i, true))
	}
	require.NoError(t, b.SetLocalEdgeIdx(MaxLocalEdgeIndex))
	require.NoError(t, b.SetOppLocalIdx(MaxLocalEdgeIndex))
	require.NoError(t, b.SetShortcut(MaxShortcutsFromNode))
	require.NoError(t, b.SetSuperseded(MaxShortcutsFromNode))
	return b
}

func TestRoundTripAtCeilings(t *testing.T) {
	e := fullBuilder(t).Edge()

	assert.Equal(t, MaxEdgeInfoOffset, e.EdgeInfoOffset())
	assert.Equal(t, MaxEdgeLength, e.Length())
	assert.Equal(t, MaxElevationFactor, e.Elevation())
	assert.Equal(t, MaxCurvatureFactor, e.Curvature())
	assert.Equal(t, MaxLocalEdgeIndex, e.OppIndex())
	assert.Equal(t, CycleLaneSeparated, e.CycleLane())
	assert.Equal(t, MaxBicycleNetwork, e.BikeNetwork())
	assert.Equal(t, MaxLaneCount, e.LaneCount())
	assert.Equal(t, uint32(0xff), e.Restrictions())
	assert.Equal(t, UseCuldesac, e.Use())
	assert.Equal(t, SpeedType(3), e.SpeedType())
	assert.Equal(t, AllAccess, e.ForwardAccess())
	assert.Equal(t, AllAccess, e.ReverseAccess())
	assert.Equal(t, MaxSpeed, e.Speed())
	assert.Equal(t, RoadClassServiceOther, e.Classification())
	assert.Equal(t, SurfaceImpassable, e.Surface())
	assert.True(t, e.Unpaved())
	assert.Equal(t, MaxLocalEdgeIndex, e.LocalEdgeIdx())
	assert.Equal(t, MaxLocalEdgeIndex, e.OppLocalIdx())
	assert.Equal(t, uint32(1)<<(MaxShortcutsFromNode-1), e.Shortcut())
	assert.Equal(t, uint32(1)<<(MaxShortcutsFromNode-1), e.Superseded())
	assert.True(t, e.IsShortcut())
	for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
		assert.Equal(t, TurnSlightLeft, e.TurnType(i))
		assert.Equal(t, MaxStopImpact, e.StopImpact(i))
		assert.True(t, e.EdgeToLeft(i))
		assert.True(t, e.EdgeToRight(i))
		assert.False(t, e.AllowsTurn(i))
	}

	decoded := DeserializeDirectedEdge(e.Serialize())
	assert.Equal(t, e, decoded)
	assert.Equal(t, snapshot(e), snapshot(decoded))
}

func TestFieldIndependence(t *testing.T) {
	cases := []struct {
		name    string
		apply   func(b *DirectedEdgeBuilder) error
		changed []string
	}{
		{"endnode", func(b *DirectedEdgeBuilder) error { b.SetEndNode(0); return nil }, []string{"endnode"}},
		{"edgeinfo_offset", func(b *DirectedEdgeBuilder) error { return b.SetEdgeInfoOffset(0) }, []string{"edgeinfo_offset"}},
		{"access_conditions", func(b *DirectedEdgeBuilder) error { b.SetAccessConditions(false); return nil }, []string{"access_conditions"}},
		{"start_ttr", func(b *DirectedEdgeBuilder) error { b.SetStartTTR(false); return nil }, []string{"start_ttr"}},
		{"start_mer", func(b *DirectedEdgeBuilder) error { b.SetStartMER(false); return nil }, []string{"start_mer"}},
		{"end_mer", func(b *DirectedEdgeBuilder) error { b.SetEndMER(false); return nil }, []string{"end_mer"}},
		{"exitsign", func(b *DirectedEdgeBuilder) error { b.SetExitSign(false); return nil }, []string{"exitsign"}},
		{"length", func(b *DirectedEdgeBuilder) error { return b.SetLength(0) }, []string{"length"}},
		{"elevation", func(b *DirectedEdgeBuilder) error { return b.SetElevation(0) }, []string{"elevation"}},
		{"curvature", func(b *DirectedEdgeBuilder) error { return b.SetCurvature(0) }, []string{"curvature"}},
		{"drive_on_right", func(b *DirectedEdgeBuilder) error { b.SetDriveOnRight(false); return nil }, []string{"drive_on_right"}},
		{"ferry", func(b *DirectedEdgeBuilder) error { b.SetFerry(false); return nil }, []string{"ferry"}},
		{"railferry", func(b *DirectedEdgeBuilder) error { b.SetRailFerry(false); return nil }, []string{"railferry"}},
		{"toll", func(b *DirectedEdgeBuilder) error { b.SetToll(false); return nil }, []string{"toll"}},
		{"seasonal", func(b *DirectedEdgeBuilder) error { b.SetSeasonal(false); return nil }, []string{"seasonal"}},
		{"dest_only", func(b *DirectedEdgeBuilder) error { b.SetDestOnly(false); return nil }, []string{"dest_only"}},
		{"tunnel", func(b *DirectedEdgeBuilder) error { b.SetTunnel(false); return nil }, []string{"tunnel"}},
		{"bridge", func(b *DirectedEdgeBuilder) error { b.SetBridge(false); return nil }, []string{"bridge"}},
		{"roundabout", func(b *DirectedEdgeBuilder) error { b.SetRoundabout(false); return nil }, []string{"roundabout"}},
		{"unreachable", func(b *DirectedEdgeBuilder) error { b.SetUnreachable(false); return nil }, []string{"unreachable"}},
		{"traffic_signal", func(b *DirectedEdgeBuilder) error { b.SetTrafficSignal(false); return nil }, []string{"traffic_signal"}},
		{"forward", func(b *DirectedEdgeBuilder) error { b.SetForward(false); return nil }, []string{"forward"}},
		{"not_thru", func(b *DirectedEdgeBuilder) error { b.SetNotThru(false); return nil }, []string{"not_thru"}},
		{"opp_index", func(b *DirectedEdgeBuilder) error { return b.SetOppIndex(0) }, []string{"opp_index"}},
		{"cycle_lane", func(b *DirectedEdgeBuilder) error { return b.SetCycleLane(CycleLaneNone) }, []string{"cycle_lane"}},
		{"bikenetwork", func(b *DirectedEdgeBuilder) error { return b.SetBikeNetwork(0) }, []string{"bikenetwork"}},
		{"lanecount", func(b *DirectedEdgeBuilder) error { return b.SetLaneCount(0) }, []string{"lanecount"}},
		{"restrictions", func(b *DirectedEdgeBuilder) error { return b.SetRestrictions(0) }, []string{"restrictions"}},
		{"use", func(b *DirectedEdgeBuilder) error { return b.SetUse(UseRoad) }, []string{"use"}},
		{"speed_type", func(b *DirectedEdgeBuilder) error { return b.SetSpeedType(SpeedTypeTagged) }, []string{"speed_type"}},
		{"ctry_crossing", func(b *DirectedEdgeBuilder) error { b.SetCtryCrossing(false); return nil }, []string{"ctry_crossing"}},
		{"forwardaccess", func(b *DirectedEdgeBuilder) error { b.SetForwardAccess(0); return nil }, []string{"forwardaccess"}},
		{"reverseaccess", func(b *DirectedEdgeBuilder) error { b.SetReverseAccess(0); return nil }, []string{"reverseaccess"}},
		{"speed", func(b *DirectedEdgeBuilder) error { return b.SetSpeed(0) }, []string{"speed"}},
		{"classification", func(b *DirectedEdgeBuilder) error { return b.SetClassification(RoadClassMotorway) }, []string{"classification"}},
		{"surface", func(b *DirectedEdgeBuilder) error { return b.SetSurface(SurfacePavedSmooth) }, []string{"surface"}},
		{"link", func(b *DirectedEdgeBuilder) error { b.SetLink(false); return nil }, []string{"link"}},
		{"internal", func(b *DirectedEdgeBuilder) error { b.SetInternal(false); return nil }, []string{"internal"}},
		{"localedgeidx", func(b *DirectedEdgeBuilder) error { return b.SetLocalEdgeIdx(0) }, []string{"localedgeidx"}},
		{"opp_local_idx", func(b *DirectedEdgeBuilder) error { return b.SetOppLocalIdx(0) }, []string{"opp_local_idx"}},
		{"superseded", func(b *DirectedEdgeBuilder) error { return b.SetSuperseded(1) }, []string{"superseded"}},
		{"trans_up", func(b *DirectedEdgeBuilder) error { b.SetTransUp(false); return nil }, []string{"trans_up"}},
		{"trans_down", func(b *DirectedEdgeBuilder) error { b.SetTransDown(false); return nil }, []string{"trans_down"}},
	}
	for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
		idx := i
		cases = append(cases,
			struct {
				name    string
				apply   func(b *DirectedEdgeBuilder) error
				changed []string
			}{fmt.Sprintf("turntype%d", idx), func(b *DirectedEdgeBuilder) error { return b.SetTurnType(idx, TurnStraight) }, []string{fmt.Sprintf("turntype%d", idx)}},
			struct {
				name    string
				apply   func(b *DirectedEdgeBuilder) error
				changed []string
			}{fmt.Sprintf("edge_to_left%d", idx), func(b *DirectedEdgeBuilder) error { return b.SetEdgeToLeft(idx, false) }, []string{fmt.Sprintf("edge_to_left%d", idx)}},
			struct {
				name    string
				apply   func(b *DirectedEdgeBuilder) error
				changed []string
			}{fmt.Sprintf("stopimpact%d", idx), func(b *DirectedEdgeBuilder) error { return b.SetStopImpact(idx, 0) }, []string{fmt.Sprintf("stopimpact%d", idx)}},
			struct {
				name    string
				apply   func(b *DirectedEdgeBuilder) error
				changed []string
			}{fmt.Sprintf("edge_to_right%d", idx), func(b *DirectedEdgeBuilder) error { return b.SetEdgeToRight(idx, false) }, []string{fmt.Sprintf("edge_to_right%d", idx)}},
		)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := fullBuilder(t)
			before := snapshot(b.Edge())
			require.NoError(t, tc.apply(b))
			after := snapshot(b.Edge())

			changed := make(map[string]bool, len(tc.changed))
			for _, k := range tc.changed {
				changed[k] = true
				assert.NotEqual(t, before[k], after[k], "field %s did not change", k)
			}
			for k, v := range before {
				if !changed[k] {
					assert.Equal(t, v, after[k], "field %s changed when writing %s", k, tc.name)
				}
			}
		})
	}
}

func TestTurnSlotsIndependent(t *testing.T) {
	b := NewDirectedEdgeBuilder()
	types := []TurnType{TurnRight, TurnSlightLeft, TurnStraight, TurnReverse, TurnSharpLeft, TurnLeft, TurnSharpRight, TurnSlightRight}
	for i, tt := range types {
		require.NoError(t, b.SetTurnType(uint32(i), tt))
	}
	require.NoError(t, b.SetEdgeToLeft(2, true))
	require.NoError(t, b.SetEdgeToRight(5, true))
	require.NoError(t, b.SetStopImpact(3, 6))

	e := b.Edge()
	for i, tt := range types {
		assert.Equal(t, tt, e.TurnType(uint32(i)))
		assert.Equal(t, i == 2, e.EdgeToLeft(uint32(i)))
		assert.Equal(t, i == 5, e.EdgeToRight(uint32(i)))
		if i == 3 {
			assert.Equal(t, uint32(6), e.StopImpact(uint32(i)))
		} else {
			assert.Zero(t, e.StopImpact(uint32(i)))
		}
	}
}

func TestTransitLineEdge(t *testing.T) {
	for _, use := range []Use{UseRail, UseBus} {
		t.Run(use.String(), func(t *testing.T) {
			b := NewDirectedEdgeBuilder()
			require.NoError(t, b.SetLength(1000))
			require.NoError(t, b.SetSpeed(50))
			require.NoError(t, b.SetUse(use))
			require.NoError(t, b.SetLineID(42))

			e := DeserializeDirectedEdge(b.Edge().Serialize())
			assert.True(t, e.IsTransitLine())
			assert.Equal(t, uint32(42), e.LineID())
			assert.Equal(t, uint32(1000), e.Length())
			assert.Equal(t, uint32(50), e.Speed())
			assert.Equal(t, use, e.Use())
		})
	}
}

func TestUnionModeErrors(t *testing.T) {
	b := NewDirectedEdgeBuilder()
	require.NoError(t, b.SetStopImpact(1, 4))
	assert.ErrorIs(t, b.SetLineID(7), ErrUnionMode)

	require.NoError(t, b.SetUse(UseBus))
	assert.Equal(t, uint32(0), b.Edge().LineID(), "switching to a transit use clears the word")
	assert.ErrorIs(t, b.SetStopImpact(0, 1), ErrUnionMode)
	assert.ErrorIs(t, b.SetEdgeToRight(0, true), ErrUnionMode)

	require.NoError(t, b.SetLineID(0xdeadbeef))
	require.NoError(t, b.SetUse(UseRail))
	assert.Equal(t, uint32(0xdeadbeef), b.Edge().LineID(), "rail and bus share the line reading")

	require.NoError(t, b.SetUse(UseRoad))
	e := b.Edge()
	for i := uint32(0); i < NumberOfEdgeTransitions; i++ {
		assert.Zero(t, e.StopImpact(i))
		assert.False(t, e.EdgeToRight(i))
	}
}

func TestSetterOverflow(t *testing.T) {
	cases := []struct {
		name  string
		apply func(b *DirectedEdgeBuilder) error
	}{
		{"edgeinfo_offset", func(b *DirectedEdgeBuilder) error { return b.SetEdgeInfoOffset(MaxEdgeInfoOffset + 1) }},
		{"length", func(b *DirectedEdgeBuilder) error { return b.SetLength(MaxEdgeLength + 1) }},
		{"elevation", func(b *DirectedEdgeBuilder) error { return b.SetElevation(MaxElevationFactor + 1) }},
		{"curvature", func(b *DirectedEdgeBuilder) error { return b.SetCurvature(MaxCurvatureFactor + 1) }},
		{"opp_index", func(b *DirectedEdgeBuilder) error { return b.SetOppIndex(MaxLocalEdgeIndex + 1) }},
		{"cycle_lane", func(b *DirectedEdgeBuilder) error { return b.SetCycleLane(4) }},
		{"bikenetwork", func(b *DirectedEdgeBuilder) error { return b.SetBikeNetwork(MaxBicycleNetwork + 1) }},
		{"lanecount", func(b *DirectedEdgeBuilder) error { return b.SetLaneCount(MaxLaneCount + 1) }},
		{"restrictions", func(b *DirectedEdgeBuilder) error { return b.SetRestrictions(0x100) }},
		{"use", func(b *DirectedEdgeBuilder) error { return b.SetUse(MaxUse + 1) }},
		{"speed_type", func(b *DirectedEdgeBuilder) error { return b.SetSpeedType(4) }},
		{"speed", func(b *DirectedEdgeBuilder) error { return b.SetSpeed(MaxSpeed + 1) }},
		{"classification", func(b *DirectedEdgeBuilder) error { return b.SetClassification(8) }},
		{"surface", func(b *DirectedEdgeBuilder) error { return b.SetSurface(8) }},
		{"turntype", func(b *DirectedEdgeBuilder) error { return b.SetTurnType(0, 8) }},
		{"stopimpact", func(b *DirectedEdgeBuilder) error { return b.SetStopImpact(0, MaxStopImpact+1) }},
		{"localedgeidx", func(b *DirectedEdgeBuilder) error { return b.SetLocalEdgeIdx(MaxLocalEdgeIndex + 1) }},
		{"opp_local_idx", func(b *DirectedEdgeBuilder) error { return b.SetOppLocalIdx(MaxLocalEdgeIndex + 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewDirectedEdgeBuilder()
			assert.ErrorIs(t, tc.apply(b), ErrFieldOverflow)
			assert.Equal(t, DirectedEdge{}, b.Edge(), "rejected write must leave the record untouched")
		})
	}
}

func TestLocalIndexOutOfRange(t *testing.T) {
	b := NewDirectedEdgeBuilder()
	assert.ErrorIs(t, b.SetTurnType(NumberOfEdgeTransitions, TurnLeft), ErrInvalidLocalIndex)
	assert.ErrorIs(t, b.SetEdgeToLeft(NumberOfEdgeTransitions, true), ErrInvalidLocalIndex)
	assert.ErrorIs(t, b.SetStopImpact(NumberOfEdgeTransitions, 1), ErrInvalidLocalIndex)
	assert.ErrorIs(t, b.SetEdgeToRight(NumberOfEdgeTransitions, true), ErrInvalidLocalIndex)

	e := b.Edge()
	assert.Panics(t, func() { e.TurnType(8) })
	assert.Panics(t, func() { e.EdgeToLeft(8) })
	assert.Panics(t, func() { e.StopImpact(8) })
	assert.Panics(t, func() { e.EdgeToRight(8) })
	assert.True(t, e.AllowsTurn(MaxTurnRestrictionEdges))
}

func TestShortcutMask(t *testing.T) {
	cases := []struct {
		n          uint32
		mask       uint32
		isShortcut bool
		err        error
	}{
		{n: 0, err: ErrInvalidShortcut},
		{n: 1, mask: 1, isShortcut: true},
		{n: 4, mask: 8, isShortcut: true},
		{n: 7, mask: 64, isShortcut: true},
		{n: 8, mask: 0, isShortcut: true},
		{n: 20, mask: 0, isShortcut: true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.n), func(t *testing.T) {
			b := NewDirectedEdgeBuilder()
			err := b.SetShortcut(tc.n)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.False(t, b.Edge().IsShortcut())
				return
			}
			require.NoError(t, err)
			e := b.Edge()
			assert.Equal(t, tc.mask, e.Shortcut())
			assert.Equal(t, tc.isShortcut, e.IsShortcut())
			assert.Zero(t, e.Superseded())
		})
	}

	b := NewDirectedEdgeBuilder()
	assert.ErrorIs(t, b.SetSuperseded(0), ErrInvalidShortcut)
	assert.ErrorIs(t, b.SetSuperseded(8), ErrInvalidShortcut)
	require.NoError(t, b.SetSuperseded(3))
	assert.Equal(t, uint32(4), b.Edge().Superseded())
	assert.False(t, b.Edge().IsShortcut())
}

func TestWireFormat(t *testing.T) {
	b := NewDirectedEdgeBuilder()
	end, err := NewGraphID(5, 2, 9)
	require.NoError(t, err)
	b.SetEndNode(end)
	require.NoError(t, b.SetLength(0x010203))
	require.NoError(t, b.SetSpeed(90))
	b.SetForwardAccess(AutoAccess | BicycleAccess)
	require.NoError(t, b.SetLocalEdgeIdx(3))

	e := b.Edge()
	buf := e.Serialize()
	assert.Equal(t, []byte{0x03, 0x02, 0x01, 0x00}, buf[12:16], "geometry word is little endian")
	assert.Equal(t, byte(AutoAccess|BicycleAccess), buf[24])
	assert.Equal(t, byte(90), buf[26])
	assert.Equal(t, byte(3), buf[36])
	assert.Equal(t, end, DeserializeDirectedEdge(buf).EndNode())
}

func TestValidateLayout(t *testing.T) {
	words, fields := DirectedEdgeLayout()
	require.NoError(t, ValidateLayout(DirectedEdgeSize, words, fields))

	overlap := append(fields, BitField{"hierarchy", "bogus", 3, 2})
	assert.Error(t, ValidateLayout(DirectedEdgeSize, words, overlap))

	tooWide := append([]BitField{}, fields...)
	tooWide = append(tooWide, BitField{"speed", "bogus", 7, 2})
	assert.Error(t, ValidateLayout(DirectedEdgeSize, words, tooWide))

	assert.Error(t, ValidateLayout(DirectedEdgeSize+8, words, fields))

	gap := append([]BitField{}, fields[:len(fields)-1]...)
	assert.Error(t, ValidateLayout(DirectedEdgeSize, words, gap), "hierarchy spare bit left unassigned")

	assert.NotPanics(t, func() { mustValidateLayout("directededge", DirectedEdgeSize, words, fields) })
	assert.Panics(t, func() { mustValidateLayout("directededge", DirectedEdgeSize, words, gap) })
}

func TestInternalVersionStable(t *testing.T) {
	words, fields := DirectedEdgeLayout()
	assert.Equal(t, DirectedEdgeInternalVersion(), layoutVersion("directededge", DirectedEdgeSize, words, fields))

	fields[len(fields)-2].Shift--
	assert.NotEqual(t, DirectedEdgeInternalVersion(), layoutVersion("directededge", DirectedEdgeSize, words, fields))
	assert.NotEqual(t, DirectedEdgeInternalVersion(), SignInternalVersion())
}

package osmparser

import (
	"testing"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSegment(t *testing.T, tags ...string) WaySegment {
	t.Helper()
	start, err := datastructure.NewGraphID(100, 2, 0)
	require.NoError(t, err)
	return WaySegment{
		WayID: 123,
		Tags:  tagsOf(tags...),
		Shape: []datastructure.Coordinate{
			datastructure.NewCoordinate(-7.0, 110.0),
			datastructure.NewCoordinate(-7.0, 110.0005),
			datastructure.NewCoordinate(-7.0, 110.001),
		},
		Start: start,
		End:   start.WithID(1),
	}
}

func TestAddWayEdges(t *testing.T) {
	seg := testSegment(t, "highway", "residential", "name", "Jalan Kaliurang")
	tb := graphtile.NewTileBuilder(seg.Start.TileBase(), zap.NewNop())

	idxs, err := AddWayEdges(tb, seg)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, idxs)

	tile, err := tb.Build()
	require.NoError(t, err)

	fwd, err := tile.DirectedEdge(0)
	require.NoError(t, err)
	rev, err := tile.DirectedEdge(1)
	require.NoError(t, err)

	assert.True(t, fwd.Forward())
	assert.False(t, rev.Forward())
	assert.Equal(t, seg.End, fwd.EndNode())
	assert.Equal(t, seg.Start, rev.EndNode())
	assert.Equal(t, fwd.EdgeInfoOffset(), rev.EdgeInfoOffset())
	assert.InDelta(t, 110, float64(fwd.Length()), 2)
	assert.Equal(t, datastructure.RoadClassResidential, fwd.Classification())

	info, err := tile.EdgeInfo(fwd.EdgeInfoOffset())
	require.NoError(t, err)
	assert.Equal(t, uint64(123), info.WayID)
	assert.Len(t, info.Shape, 2, "collinear point simplified away")

	names, err := tile.EdgeNames(rev)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jalan Kaliurang"}, names)

	shape, err := tile.EdgeShape(rev)
	require.NoError(t, err)
	assert.InDelta(t, 110.001, shape[0].Lon, 1e-5)
}

func TestAddWayEdgesOneway(t *testing.T) {
	seg := testSegment(t, "highway", "motorway")
	tb := graphtile.NewTileBuilder(seg.Start.TileBase(), zap.NewNop())
	idxs, err := AddWayEdges(tb, seg)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, idxs)

	idxs, err = AddWayEdges(tb, testSegment(t, "highway", "proposed"))
	require.NoError(t, err)
	assert.Empty(t, idxs)
	assert.Equal(t, uint32(1), tb.DirectedEdgeCount())
}

func TestSetTurnTypes(t *testing.T) {
	node := datastructure.NewCoordinate(-7.0, 110.0)
	out := []datastructure.Coordinate{node, datastructure.NewCoordinate(-7.0, 110.001)}
	inbound := [][]datastructure.Coordinate{
		{datastructure.NewCoordinate(-7.001, 110.0), node}, // heading north
		{datastructure.NewCoordinate(-7.0, 109.999), node}, // heading east
		{datastructure.NewCoordinate(-6.999, 110.0), node}, // heading south
	}

	b := datastructure.NewDirectedEdgeBuilder()
	require.NoError(t, SetTurnTypes(b, inbound, out))
	e := b.Edge()
	assert.Equal(t, datastructure.TurnRight, e.TurnType(0))
	assert.Equal(t, datastructure.TurnStraight, e.TurnType(1))
	assert.Equal(t, datastructure.TurnLeft, e.TurnType(2))

	tooMany := make([][]datastructure.Coordinate, 9)
	assert.ErrorIs(t, SetTurnTypes(b, tooMany, out), datastructure.ErrInvalidLocalIndex)
}

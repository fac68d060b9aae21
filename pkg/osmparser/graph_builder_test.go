package osmparser

import (
	"testing"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wayOf(id osm.WayID, nodes []osm.NodeID, tags ...string) *osm.Way {
	w := &osm.Way{ID: id, Tags: tagsOf(tags...)}
	for _, n := range nodes {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: n})
	}
	return w
}

func TestTileGrid(t *testing.T) {
	g := DefaultTileGrid
	assert.Equal(t, uint32(331*1440+1160), g.TileID(datastructure.NewCoordinate(-7.1, 110.1)))
	assert.Equal(t, uint32(0), g.TileID(datastructure.NewCoordinate(-90, -180)))
	assert.Equal(t, uint32(720*1440-1), g.TileID(datastructure.NewCoordinate(90, 180)))

	_, err := NewGraphBuilder(TileGrid{Level: 2, Size: 0.01}, zap.NewNop())
	assert.ErrorIs(t, err, datastructure.ErrInvalidGraphID)
	_, err = NewGraphBuilder(TileGrid{Level: 9, Size: 1}, zap.NewNop())
	assert.ErrorIs(t, err, datastructure.ErrInvalidGraphID)
}

func TestGraphBuilder(t *testing.T) {
	g, err := NewGraphBuilder(DefaultTileGrid, zap.NewNop())
	require.NoError(t, err)

	// way 10 stays in one tile, way 11 leaves it eastwards
	assert.True(t, g.AddWay(wayOf(10, []osm.NodeID{1, 2, 3}, "highway", "residential", "name", "Jalan Pemuda")))
	assert.True(t, g.AddWay(wayOf(11, []osm.NodeID{3, 4}, "highway", "secondary")))
	assert.True(t, g.AddWay(wayOf(12, []osm.NodeID{4, 99}, "highway", "service")))
	assert.False(t, g.AddWay(wayOf(13, []osm.NodeID{1, 4}, "building", "yes")))
	assert.False(t, g.AddWay(wayOf(14, []osm.NodeID{1}, "highway", "residential")))

	for _, n := range []*osm.Node{
		{ID: 1, Lat: -7.1, Lon: 110.10},
		{ID: 2, Lat: -7.11, Lon: 110.12},
		{ID: 3, Lat: -7.1, Lon: 110.14},
		{ID: 4, Lat: -7.1, Lon: 110.26},
		{ID: 500, Lat: -7.1, Lon: 110.11},
	} {
		g.AddNode(n)
	}
	assert.NotContains(t, g.coords, osm.NodeID(500))
	assert.Equal(t, JUNCTION_NODE, g.wayNodes[3])
	assert.Equal(t, BETWEEN_NODE, g.wayNodes[2])

	tiles, err := g.Build()
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, 1, g.skipped)

	west, err := datastructure.NewGraphID(331*1440+1160, 2, 0)
	require.NoError(t, err)
	east, err := datastructure.NewGraphID(331*1440+1161, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, west.WithID(1), g.nodeIDs[3])
	assert.Equal(t, east, g.nodeIDs[4])
	assert.NotContains(t, g.nodeIDs, osm.NodeID(2))

	require.Contains(t, tiles, west)
	wt, err := tiles[west].Build()
	require.NoError(t, err)
	require.Equal(t, uint32(3), wt.DirectedEdgeCount())

	e0, err := wt.DirectedEdge(0)
	require.NoError(t, err)
	assert.Equal(t, g.nodeIDs[3], e0.EndNode())
	assert.True(t, e0.Forward())
	shape, err := wt.EdgeShape(e0)
	require.NoError(t, err)
	assert.Len(t, shape, 3, "between node stays in the shape")

	e1, err := wt.DirectedEdge(1)
	require.NoError(t, err)
	assert.Equal(t, g.nodeIDs[1], e1.EndNode())
	assert.Equal(t, e0.Length(), e1.Length())

	e2, err := wt.DirectedEdge(2)
	require.NoError(t, err)
	assert.Equal(t, east, e2.EndNode())

	require.Contains(t, tiles, east)
	et, err := tiles[east].Build()
	require.NoError(t, err)
	require.Equal(t, uint32(1), et.DirectedEdgeCount())
	back, err := et.DirectedEdge(0)
	require.NoError(t, err)
	assert.Equal(t, g.nodeIDs[3], back.EndNode())
	assert.Equal(t, e2.Length(), back.Length())
	backShape, err := et.EdgeShape(back)
	require.NoError(t, err)
	assert.Equal(t, datastructure.NewCoordinate(-7.1, 110.26), backShape[0])
}

func TestWithOneway(t *testing.T) {
	tags := withOneway(tagsOf("highway", "primary", "oneway", "-1", "oneway:bicycle", "no"))
	assert.Equal(t, "yes", tags.Find("oneway"))
	assert.Empty(t, tags.Find("oneway:bicycle"))
	assert.Equal(t, "primary", tags.Find("highway"))
}

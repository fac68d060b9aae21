package osmparser

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

const (
	END_NODE uint8 = iota + 1
	BETWEEN_NODE
	JUNCTION_NODE
)

// TileGrid. fixed lat/lon grid on one hierarchy level, tiles numbered row major from (-90, -180).
type TileGrid struct {
	Level uint32
	Size  float64
}

// DefaultTileGrid. quarter degree tiles on the local level.
var DefaultTileGrid = TileGrid{Level: 2, Size: 0.25}

func (g TileGrid) columns() int {
	return int(math.Ceil(360 / g.Size))
}

func (g TileGrid) TileID(c datastructure.Coordinate) uint32 {
	rows := int(math.Ceil(180 / g.Size))
	row := clampInt(int(math.Floor((c.Lat+90)/g.Size)), 0, rows-1)
	col := clampInt(int(math.Floor((c.Lon+180)/g.Size)), 0, g.columns()-1)
	return uint32(row*g.columns() + col)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

type wayRef struct {
	id    osm.WayID
	tags  osm.Tags
	nodes []osm.NodeID
}

// GraphBuilder. turns routable osm ways into graph tiles. ways are split at junctions and way
// ends, each split becomes a WaySegment whose edges go to the tile of the node they leave.
type GraphBuilder struct {
	grid     TileGrid
	log      *zap.Logger
	ways     []wayRef
	wayNodes map[osm.NodeID]uint8
	coords   map[osm.NodeID]datastructure.Coordinate
	nodeIDs  map[osm.NodeID]datastructure.GraphID
	tiles    map[uint32]*graphtile.TileBuilder
	skipped  int
}

func NewGraphBuilder(grid TileGrid, log *zap.Logger) (*GraphBuilder, error) {
	if grid.Size <= 0 || grid.Level > datastructure.MaxGraphHierarchy {
		return nil, fmt.Errorf("tile grid level %d size %v: %w", grid.Level, grid.Size, datastructure.ErrInvalidGraphID)
	}
	if n := int(math.Ceil(180/grid.Size)) * grid.columns(); n > datastructure.MaxGraphTileID {
		return nil, fmt.Errorf("tile grid of %d tiles: %w", n, datastructure.ErrInvalidGraphID)
	}
	return &GraphBuilder{
		grid:     grid,
		log:      log,
		wayNodes: make(map[osm.NodeID]uint8),
		coords:   make(map[osm.NodeID]datastructure.Coordinate),
		nodeIDs:  make(map[osm.NodeID]datastructure.GraphID),
		tiles:    make(map[uint32]*graphtile.TileBuilder),
	}, nil
}

// ScanPBF. ways are read in a first pass, coordinates of their nodes in a second.
func (g *GraphBuilder) ScanPBF(ctx context.Context, f io.ReadSeeker, workers int) error {
	countWays := 0
	err := scanPBF(ctx, f, workers, func(o osm.Object) {
		if way, ok := o.(*osm.Way); ok && g.AddWay(way) {
			countWays++
			if countWays%50000 == 0 {
				g.log.Info("reading openstreetmap ways", zap.Int("ways", countWays))
			}
		}
	})
	if err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	err = scanPBF(ctx, f, workers, func(o osm.Object) {
		if node, ok := o.(*osm.Node); ok {
			g.AddNode(node)
		}
	})
	if err != nil {
		return err
	}
	g.log.Info("openstreetmap read", zap.Int("ways", len(g.ways)), zap.Int("nodes", len(g.coords)))
	return nil
}

func scanPBF(ctx context.Context, f io.Reader, workers int, fn func(osm.Object)) error {
	scanner := osmpbf.New(ctx, f, workers)
	defer scanner.Close()
	for scanner.Scan() {
		fn(scanner.Object())
	}
	return scanner.Err()
}

// AddWay. reports whether the way is routable and was kept.
func (g *GraphBuilder) AddWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 || !acceptOsmWay(way.Tags) {
		return false
	}
	ref := wayRef{id: way.ID, tags: way.Tags, nodes: way.Nodes.NodeIDs()}
	for i, id := range ref.nodes {
		if _, ok := g.wayNodes[id]; ok {
			g.wayNodes[id] = JUNCTION_NODE
		} else if i == 0 || i == len(ref.nodes)-1 {
			g.wayNodes[id] = END_NODE
		} else {
			g.wayNodes[id] = BETWEEN_NODE
		}
	}
	g.ways = append(g.ways, ref)
	return true
}

// AddNode. only nodes of kept ways are remembered.
func (g *GraphBuilder) AddNode(node *osm.Node) {
	if _, ok := g.wayNodes[node.ID]; ok {
		g.coords[node.ID] = datastructure.NewCoordinate(node.Lat, node.Lon)
	}
}

func (g *GraphBuilder) isGraphNode(id osm.NodeID) bool {
	kind := g.wayNodes[id]
	return kind == END_NODE || kind == JUNCTION_NODE
}

// assignNodes. graph nodes get ids within their tile in osm node id order.
func (g *GraphBuilder) assignNodes() error {
	var ids []osm.NodeID
	for id := range g.wayNodes {
		if _, ok := g.coords[id]; ok && g.isGraphNode(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	next := make(map[uint32]uint32)
	for _, id := range ids {
		tileID := g.grid.TileID(g.coords[id])
		gid, err := datastructure.NewGraphID(tileID, g.grid.Level, next[tileID])
		if err != nil {
			return fmt.Errorf("node %d: %w", id, err)
		}
		next[tileID]++
		g.nodeIDs[id] = gid
	}
	return nil
}

func (g *GraphBuilder) tileBuilder(id datastructure.GraphID) *graphtile.TileBuilder {
	tb, ok := g.tiles[id.TileID()]
	if !ok {
		tb = graphtile.NewTileBuilder(id.TileBase(), g.log)
		g.tiles[id.TileID()] = tb
	}
	return tb
}

// Build. returns the tile builders keyed by tile base id. ways with a node missing from the
// extract are dropped.
func (g *GraphBuilder) Build() (map[datastructure.GraphID]*graphtile.TileBuilder, error) {
	if err := g.assignNodes(); err != nil {
		return nil, err
	}

	for _, way := range g.ways {
		segs, ok := g.splitWay(way)
		if !ok {
			g.skipped++
			continue
		}
		for _, seg := range segs {
			if err := g.addSegment(seg); err != nil {
				return nil, err
			}
		}
	}
	if g.skipped > 0 {
		g.log.Warn("ways with missing nodes dropped", zap.Int("ways", g.skipped))
	}

	out := make(map[datastructure.GraphID]*graphtile.TileBuilder, len(g.tiles))
	for _, tb := range g.tiles {
		out[tb.ID()] = tb
	}
	g.log.Info("graph tiles built", zap.Int("tiles", len(out)))
	return out, nil
}

func (g *GraphBuilder) splitWay(way wayRef) ([]WaySegment, bool) {
	var (
		segs  []WaySegment
		shape []datastructure.Coordinate
		start datastructure.GraphID
	)
	for i, id := range way.nodes {
		c, ok := g.coords[id]
		if !ok {
			return nil, false
		}
		shape = append(shape, c)
		if i != 0 && i != len(way.nodes)-1 && !g.isGraphNode(id) {
			continue
		}
		gid := g.nodeIDs[id]
		if i > 0 {
			segs = append(segs, WaySegment{WayID: way.id, Tags: way.tags, Shape: shape, Start: start, End: gid})
			shape = []datastructure.Coordinate{c}
		}
		start = gid
	}
	return segs, true
}

// addSegment. a segment between two tiles is added once per direction, each direction to the
// tile of its start node.
func (g *GraphBuilder) addSegment(seg WaySegment) error {
	if seg.Start.TileID() == seg.End.TileID() {
		_, err := AddWayEdges(g.tileBuilder(seg.Start), seg)
		return err
	}

	attrs, ok := ClassifyWay(seg.Tags)
	if !ok {
		return nil
	}
	if attrs.ForwardAccess != 0 {
		fwd := seg
		fwd.Tags = withOneway(seg.Tags)
		if _, err := AddWayEdges(g.tileBuilder(fwd.Start), fwd); err != nil {
			return err
		}
	}
	if attrs.ReverseAccess != 0 {
		rev := seg
		rev.Tags = withOneway(seg.Tags)
		rev.Start, rev.End = seg.End, seg.Start
		rev.Shape = make([]datastructure.Coordinate, len(seg.Shape))
		for i, c := range seg.Shape {
			rev.Shape[len(seg.Shape)-1-i] = c
		}
		if _, err := AddWayEdges(g.tileBuilder(rev.Start), rev); err != nil {
			return err
		}
	}
	return nil
}

func withOneway(tags osm.Tags) osm.Tags {
	out := make(osm.Tags, 0, len(tags)+1)
	for _, t := range tags {
		if t.Key != "oneway" && t.Key != "oneway:bicycle" {
			out = append(out, t)
		}
	}
	return append(out, osm.Tag{Key: "oneway", Value: "yes"})
}

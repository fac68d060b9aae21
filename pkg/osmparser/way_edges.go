package osmparser

import (
	"fmt"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/geo"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/paulmach/osm"
)

// WaySegment. part of an osm way between two graph nodes, shape in way order.
type WaySegment struct {
	WayID osm.WayID
	Tags  osm.Tags
	Shape []datastructure.Coordinate
	Start datastructure.GraphID
	End   datastructure.GraphID
}

// AddWayEdges. classify the segment and add a directed edge for every direction with access.
// returns the tile indexes of the added edges, none when the way is not routable.
func AddWayEdges(tb *graphtile.TileBuilder, seg WaySegment) ([]uint32, error) {
	attrs, ok := ClassifyWay(seg.Tags)
	if !ok || len(seg.Shape) < 2 {
		return nil, nil
	}

	shape := geo.SimplifyShape(seg.Shape, geo.DOUGLAS_PEUCKER_THRESHOLDS)
	length := geo.ShapeLength(shape)
	if length > datastructure.MaxEdgeLength {
		return nil, fmt.Errorf("way %d: %d meters: %w", seg.WayID, length, datastructure.ErrFieldOverflow)
	}

	info, err := tb.AddEdgeInfo(uint64(seg.WayID), attrs.Names, shape)
	if err != nil {
		return nil, fmt.Errorf("way %d: %w", seg.WayID, err)
	}

	var idxs []uint32
	for _, forward := range []bool{true, false} {
		access, endNode := attrs.ForwardAccess, seg.End
		if !forward {
			access, endNode = attrs.ReverseAccess, seg.Start
		}
		if access == 0 {
			continue
		}

		b := datastructure.NewDirectedEdgeBuilder()
		b.SetEndNode(endNode)
		if err := b.SetEdgeInfoOffset(info); err != nil {
			return nil, err
		}
		if err := b.SetLength(length); err != nil {
			return nil, err
		}
		if err := ApplyWayAttributes(b, attrs, forward); err != nil {
			return nil, fmt.Errorf("way %d: %w", seg.WayID, err)
		}
		idx, err := tb.AddDirectedEdge(b.Edge())
		if err != nil {
			return nil, fmt.Errorf("way %d: %w", seg.WayID, err)
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

// SetTurnTypes. turn type from each inbound edge, by local index, onto the outbound edge.
// inbound shapes end at the node the outbound shape starts from.
func SetTurnTypes(b *datastructure.DirectedEdgeBuilder, inbound [][]datastructure.Coordinate,
	outbound []datastructure.Coordinate) error {
	if len(inbound) > int(datastructure.NumberOfEdgeTransitions) {
		return fmt.Errorf("%d inbound edges: %w", len(inbound), datastructure.ErrInvalidLocalIndex)
	}
	outHeading := geo.BeginHeading(outbound)
	for i, in := range inbound {
		deg := geo.TurnDegree(geo.EndHeading(in), outHeading)
		if err := b.SetTurnType(uint32(i), geo.TurnTypeFromDegree(deg)); err != nil {
			return err
		}
	}
	return nil
}

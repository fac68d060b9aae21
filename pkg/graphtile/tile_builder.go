package graphtile

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"go.uber.org/zap"
)

// TileBuilder. collects directed edges, signs, edge infos and text for one tile.
type TileBuilder struct {
	id        datastructure.GraphID
	edges     []datastructure.DirectedEdge
	signs     []datastructure.Sign
	edgeInfo  bytes.Buffer
	infoStart map[uint32]struct{}
	textList  bytes.Buffer
	textIndex map[string]uint32
	log       *zap.Logger
}

func NewTileBuilder(id datastructure.GraphID, log *zap.Logger) *TileBuilder {
	b := &TileBuilder{
		id:        id.TileBase(),
		infoStart: make(map[uint32]struct{}),
		textIndex: map[string]uint32{"": 0},
		log:       log,
	}
	b.textList.WriteByte(0)
	return b
}

func (b *TileBuilder) ID() datastructure.GraphID {
	return b.id
}

// AddText. interned offset of s in the text list.
func (b *TileBuilder) AddText(s string) (uint32, error) {
	if off, ok := b.textIndex[s]; ok {
		return off, nil
	}
	if strings.IndexByte(s, 0) >= 0 {
		b.log.Warn("rejected text", zap.String("tile", b.id.String()), zap.String("text", s))
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidText)
	}
	off := uint32(b.textList.Len())
	b.textList.WriteString(s)
	b.textList.WriteByte(0)
	b.textIndex[s] = off
	return off, nil
}

// AddEdgeInfo. store the shared info of one road segment, returns its offset for both directed edges.
func (b *TileBuilder) AddEdgeInfo(wayID uint64, names []string, shape []datastructure.Coordinate) (uint32, error) {
	off := uint32(b.edgeInfo.Len())
	if off > datastructure.MaxEdgeInfoOffset {
		b.log.Warn("edge info block full", zap.String("tile", b.id.String()), zap.Uint32("offset", off))
		return 0, fmt.Errorf("tile %s offset %d: %w", b.id, off, datastructure.ErrFieldOverflow)
	}
	nameOffsets := make([]uint32, 0, len(names))
	for _, name := range names {
		no, err := b.AddText(name)
		if err != nil {
			return 0, err
		}
		nameOffsets = append(nameOffsets, no)
	}
	ei := datastructure.NewEdgeInfo(wayID, nameOffsets, shape)
	b.edgeInfo.Write(ei.Serialize())
	b.infoStart[off] = struct{}{}
	return off, nil
}

// AddDirectedEdge. append the edge, returns its index inside the tile.
func (b *TileBuilder) AddDirectedEdge(e datastructure.DirectedEdge) (uint32, error) {
	if len(b.edges) > datastructure.MaxGraphID {
		return 0, fmt.Errorf("tile %s is full: %w", b.id, ErrEdgeIndexOutOfRange)
	}
	if _, ok := b.infoStart[e.EdgeInfoOffset()]; !ok {
		b.log.Warn("rejected directed edge", zap.String("tile", b.id.String()),
			zap.Uint32("edgeinfo_offset", e.EdgeInfoOffset()))
		return 0, fmt.Errorf("tile %s offset %d: %w", b.id, e.EdgeInfoOffset(), ErrEdgeInfoOffset)
	}
	b.edges = append(b.edges, e)
	return uint32(len(b.edges) - 1), nil
}

func (b *TileBuilder) DirectedEdgeCount() uint32 {
	return uint32(len(b.edges))
}

// AddSigns. signs of the directed edge at idx. the edge needs the exitsign flag.
func (b *TileBuilder) AddSigns(idx uint32, signs []datastructure.SignInfo) error {
	if int(idx) >= len(b.edges) {
		return fmt.Errorf("tile %s edge %d of %d: %w", b.id, idx, len(b.edges), ErrEdgeIndexOutOfRange)
	}
	added := make([]datastructure.Sign, 0, len(signs))
	for _, si := range signs {
		off, err := b.AddText(si.Text)
		if err != nil {
			return err
		}
		s, err := datastructure.NewSign(idx, si.Type, off)
		if err != nil {
			return err
		}
		added = append(added, s)
	}
	b.signs = append(b.signs, added...)
	return nil
}

// Build. serialize and reopen the tile.
func (b *TileBuilder) Build() (*GraphTile, error) {
	blob, err := b.Serialize()
	if err != nil {
		return nil, err
	}
	return Deserialize(blob)
}

// Serialize. signs are sorted stably by edge index. every edge with the exitsign flag needs
// at least one sign and every sign needs an edge with the flag.
func (b *TileBuilder) Serialize() ([]byte, error) {
	sort.SliceStable(b.signs, func(i, j int) bool {
		return b.signs[i].EdgeIndex() < b.signs[j].EdgeIndex()
	})

	hasSigns := make(map[uint32]bool, len(b.signs))
	for _, s := range b.signs {
		hasSigns[s.EdgeIndex()] = true
	}
	for i, e := range b.edges {
		idx := uint32(i)
		switch {
		case e.ExitSign() && !hasSigns[idx]:
			b.log.Warn("exitsign without signs", zap.String("tile", b.id.String()), zap.Uint32("edge", idx))
			return nil, fmt.Errorf("tile %s edge %d: %w", b.id, idx, ErrExitSignWithoutSigns)
		case !e.ExitSign() && hasSigns[idx]:
			b.log.Warn("signs without exitsign", zap.String("tile", b.id.String()), zap.Uint32("edge", idx))
			return nil, fmt.Errorf("tile %s edge %d: %w", b.id, idx, ErrSignWithoutExitSign)
		}
	}

	h := newTileHeader(b.id)
	h.DirectedEdgeCount = uint32(len(b.edges))
	h.SignCount = uint32(len(b.signs))
	h.EdgeInfoSize = uint32(b.edgeInfo.Len())
	h.TextListSize = uint32(b.textList.Len())

	buf, err := h.marshal()
	if err != nil {
		return nil, fmt.Errorf("tile %s header: %w", b.id, err)
	}
	out := bytes.NewBuffer(buf)
	out.Grow(h.bodySize())

	rec := make([]byte, datastructure.DirectedEdgeSize)
	for i := range b.edges {
		b.edges[i].SerializeTo(rec)
		out.Write(rec)
	}
	for _, s := range b.signs {
		out.Write(s.Serialize())
	}
	out.Write(b.edgeInfo.Bytes())
	out.Write(b.textList.Bytes())
	return out.Bytes(), nil
}

package graphtile

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
)

/*
GraphTile. read only view over one serialized tile.

	magic "GTIL" | header length u32 | header | directed edges 40*n | signs 8*m | edge info | text list

directed edges are decoded on access straight from the edge section. signs are sorted by
edge index and associated to an edge only through that index.
*/
type GraphTile struct {
	header   TileHeader
	edges    []byte
	signs    []byte
	edgeInfo []byte
	textList []byte
	size     int
}

// Deserialize. the layout versions are checked before any record is touched, a tile from
// another layout is rejected as a whole.
func Deserialize(blob []byte) (*GraphTile, error) {
	h, pos, err := unmarshalHeader(blob)
	if err != nil {
		return nil, err
	}
	if err := h.checkLayout(); err != nil {
		return nil, err
	}
	if h.DirectedEdgeCount > datastructure.MaxGraphID+1 {
		return nil, fmt.Errorf("tile %s: %d directed edges: %w", h.ID(), h.DirectedEdgeCount, ErrInvalidTile)
	}
	if body := len(blob) - pos; body != h.bodySize() {
		return nil, fmt.Errorf("tile %s: body is %d bytes, header describes %d: %w", h.ID(), body, h.bodySize(), ErrInvalidTile)
	}

	t := &GraphTile{header: h, size: len(blob)}
	next := func(n int) []byte {
		s := blob[pos : pos+n : pos+n]
		pos += n
		return s
	}
	t.edges = next(int(h.DirectedEdgeCount) * datastructure.DirectedEdgeSize)
	t.signs = next(int(h.SignCount) * datastructure.SignSize)
	t.edgeInfo = next(int(h.EdgeInfoSize))
	t.textList = next(int(h.TextListSize))

	if len(t.textList) > 0 && (t.textList[0] != 0 || t.textList[len(t.textList)-1] != 0) {
		return nil, fmt.Errorf("tile %s: text list is not NUL delimited: %w", h.ID(), ErrInvalidTile)
	}
	return t, nil
}

func (t *GraphTile) ID() datastructure.GraphID {
	return t.header.ID()
}

func (t *GraphTile) Header() TileHeader {
	return t.header
}

// Size. serialized size in bytes.
func (t *GraphTile) Size() int {
	return t.size
}

func (t *GraphTile) DirectedEdgeCount() uint32 {
	return t.header.DirectedEdgeCount
}

func (t *GraphTile) DirectedEdge(idx uint32) (datastructure.DirectedEdge, error) {
	if idx >= t.header.DirectedEdgeCount {
		return datastructure.DirectedEdge{}, fmt.Errorf("tile %s edge %d of %d: %w", t.ID(), idx,
			t.header.DirectedEdgeCount, ErrEdgeIndexOutOfRange)
	}
	off := int(idx) * datastructure.DirectedEdgeSize
	return datastructure.DeserializeDirectedEdge(t.edges[off : off+datastructure.DirectedEdgeSize]), nil
}

func (t *GraphTile) SignCount() uint32 {
	return t.header.SignCount
}

func (t *GraphTile) Sign(i uint32) datastructure.Sign {
	off := int(i) * datastructure.SignSize
	return datastructure.DeserializeSign(t.signs[off : off+datastructure.SignSize])
}

// GetSigns. resolved signs of the directed edge at idx, in stored order. no signs is not an error.
func (t *GraphTile) GetSigns(idx uint32) ([]datastructure.SignInfo, error) {
	if idx >= t.header.DirectedEdgeCount {
		return nil, fmt.Errorf("tile %s edge %d: %w", t.ID(), idx, ErrEdgeIndexOutOfRange)
	}
	n := int(t.header.SignCount)
	first := sort.Search(n, func(i int) bool {
		return t.Sign(uint32(i)).EdgeIndex() >= idx
	})

	var signs []datastructure.SignInfo
	for i := first; i < n; i++ {
		s := t.Sign(uint32(i))
		if s.EdgeIndex() != idx {
			break
		}
		text, err := t.GetName(s.TextOffset())
		if err != nil {
			return nil, err
		}
		signs = append(signs, datastructure.SignInfo{Type: s.Type(), Text: text})
	}
	return signs, nil
}

// GetName. NUL terminated string at offset in the text list. offset 0 is the empty string.
func (t *GraphTile) GetName(offset uint32) (string, error) {
	if int(offset) >= len(t.textList) {
		return "", fmt.Errorf("tile %s text offset %d of %d: %w", t.ID(), offset, len(t.textList), ErrInvalidTextOffset)
	}
	end := bytes.IndexByte(t.textList[offset:], 0)
	return string(t.textList[offset : int(offset)+end]), nil
}

func (t *GraphTile) EdgeInfo(offset uint32) (datastructure.EdgeInfo, error) {
	if int(offset) >= len(t.edgeInfo) {
		return datastructure.EdgeInfo{}, fmt.Errorf("tile %s edge info offset %d of %d: %w", t.ID(), offset,
			len(t.edgeInfo), ErrEdgeInfoOffset)
	}
	ei, _, err := datastructure.DeserializeEdgeInfo(t.edgeInfo[offset:])
	if err != nil {
		return datastructure.EdgeInfo{}, fmt.Errorf("tile %s edge info offset %d: %w", t.ID(), offset, err)
	}
	return ei, nil
}

// EdgeNames. names of the road the edge belongs to.
func (t *GraphTile) EdgeNames(e datastructure.DirectedEdge) ([]string, error) {
	ei, err := t.EdgeInfo(e.EdgeInfoOffset())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ei.NameOffsets))
	for _, off := range ei.NameOffsets {
		name, err := t.GetName(off)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// EdgeShape. shape of the edge in its own direction of travel.
func (t *GraphTile) EdgeShape(e datastructure.DirectedEdge) ([]datastructure.Coordinate, error) {
	ei, err := t.EdgeInfo(e.EdgeInfoOffset())
	if err != nil {
		return nil, err
	}
	if e.Forward() {
		return ei.Shape, nil
	}
	shape := make([]datastructure.Coordinate, len(ei.Shape))
	for i, c := range ei.Shape {
		shape[len(shape)-1-i] = c
	}
	return shape, nil
}

// Check. cross-check the exitsign flag of every edge against the sign table and the sign order.
func (t *GraphTile) Check() error {
	n := t.header.SignCount
	hasSigns := make(map[uint32]bool)
	prev := uint32(0)
	for i := uint32(0); i < n; i++ {
		s := t.Sign(i)
		if s.EdgeIndex() < prev {
			return fmt.Errorf("tile %s: sign %d out of order: %w", t.ID(), i, ErrInvalidTile)
		}
		prev = s.EdgeIndex()
		if s.EdgeIndex() >= t.header.DirectedEdgeCount {
			return fmt.Errorf("tile %s: sign %d for edge %d: %w", t.ID(), i, s.EdgeIndex(), ErrEdgeIndexOutOfRange)
		}
		if _, err := t.GetName(s.TextOffset()); err != nil {
			return err
		}
		hasSigns[s.EdgeIndex()] = true
	}
	for i := uint32(0); i < t.header.DirectedEdgeCount; i++ {
		e, _ := t.DirectedEdge(i)
		switch {
		case e.ExitSign() && !hasSigns[i]:
			return fmt.Errorf("tile %s edge %d: %w", t.ID(), i, ErrExitSignWithoutSigns)
		case !e.ExitSign() && hasSigns[i]:
			return fmt.Errorf("tile %s edge %d: %w", t.ID(), i, ErrSignWithoutExitSign)
		}
	}
	return nil
}

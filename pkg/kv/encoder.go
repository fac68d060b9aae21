package kv

import (
	"github.com/kelindar/binary"
)

// TileManifest. summary of a stored tile, kept next to the blob so listing tiles never
// decodes them.
type TileManifest struct {
	GraphID           uint64
	EdgeLayoutVersion uint64
	SignLayoutVersion uint64
	DirectedEdgeCount uint32
	SignCount         uint32
	Size              uint32
}

// EdgeRef. directed edge whose shape starts inside an h3 cell.
type EdgeRef struct {
	GraphID uint64
	Lat     float64
	Lon     float64
}

func encodeManifest(m TileManifest) ([]byte, error) {
	return binary.Marshal(m)
}

func decodeManifest(bb []byte) (TileManifest, error) {
	var m TileManifest
	err := binary.Unmarshal(bb, &m)
	return m, err
}

func encodeEdges(refs []EdgeRef) ([]byte, error) {
	return binary.Marshal(refs)
}

func loadEdges(bb []byte) ([]EdgeRef, error) {
	var refs []EdgeRef
	err := binary.Unmarshal(bb, &refs)
	return refs, err
}

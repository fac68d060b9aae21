package kv

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/lintang-b-s/graphtile/pkg/storage"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

const (
	tilePrefix     = "tile/"
	manifestPrefix = "meta/"
	h3Prefix       = "h3/"

	h3Resolution = 9
	batchSize    = 1000
)

// KVDB. tile store over an embedded key value engine plus an h3 index of edge start points.
type KVDB struct {
	db  backend
	log *zap.Logger
}

func NewBadgerKVDB(db *badger.DB, log *zap.Logger) *KVDB {
	return &KVDB{db: &badgerBackend{db}, log: log}
}

func NewPebbleKVDB(db *pebble.DB, log *zap.Logger) *KVDB {
	return &KVDB{db: &pebbleBackend{db}, log: log}
}

// Open. kind is "badger" or "pebble".
func Open(kind, path string, log *zap.Logger) (*KVDB, error) {
	switch kind {
	case "badger":
		db, err := OpenBadger(path, false)
		if err != nil {
			return nil, fmt.Errorf("open badger %s: %w", path, err)
		}
		return NewBadgerKVDB(db, log), nil
	case "pebble":
		db, err := OpenPebble(path, false)
		if err != nil {
			return nil, fmt.Errorf("open pebble %s: %w", path, err)
		}
		return NewPebbleKVDB(db, log), nil
	}
	return nil, fmt.Errorf("unknown kv store %q", kind)
}

func tileKey(id datastructure.GraphID) []byte {
	return []byte(fmt.Sprintf("%s%016x", tilePrefix, id.TileBase().Value()))
}

func manifestKey(id datastructure.GraphID) []byte {
	return []byte(fmt.Sprintf("%s%016x", manifestPrefix, id.TileBase().Value()))
}

func cellKey(cell h3.Cell) []byte {
	return []byte(h3Prefix + cell.String())
}

// TileBlob. serialized tile waiting to be stored.
type TileBlob struct {
	ID   datastructure.GraphID
	Blob []byte
}

func (k *KVDB) PutTile(ctx context.Context, id datastructure.GraphID, blob []byte) error {
	return k.PutTiles(ctx, []TileBlob{{ID: id, Blob: blob}})
}

// PutTiles. store tiles and their manifests in batches.
func (k *KVDB) PutTiles(ctx context.Context, tiles []TileBlob) error {
	batches := make([]kvPair, 0, batchSize)
	for _, t := range tiles {
		h, err := graphtile.ReadHeader(t.Blob)
		if err != nil {
			return fmt.Errorf("tile %s: %w", t.ID, err)
		}
		if h.ID().TileBase() != t.ID.TileBase() {
			return fmt.Errorf("blob of tile %s stored under %s: %w", h.ID(), t.ID, graphtile.ErrInvalidTile)
		}
		m, err := encodeManifest(TileManifest{
			GraphID:           t.ID.TileBase().Value(),
			EdgeLayoutVersion: h.EdgeLayoutVersion,
			SignLayoutVersion: h.SignLayoutVersion,
			DirectedEdgeCount: h.DirectedEdgeCount,
			SignCount:         h.SignCount,
			Size:              uint32(len(t.Blob)),
		})
		if err != nil {
			return err
		}
		batches = append(batches,
			kvPair{key: tileKey(t.ID), value: t.Blob},
			kvPair{key: manifestKey(t.ID), value: m})

		if len(batches) >= batchSize {
			if err := k.db.putBatch(ctx, batches); err != nil {
				return err
			}
			batches = make([]kvPair, 0, batchSize)
		}
	}
	if len(batches) > 0 {
		if err := k.db.putBatch(ctx, batches); err != nil {
			return err
		}
	}
	k.log.Info("tiles saved", zap.Int("count", len(tiles)))
	return nil
}

func (k *KVDB) GetTile(ctx context.Context, id datastructure.GraphID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blob, err := k.db.get(tileKey(id))
	if errors.Is(err, errKeyNotFound) {
		return nil, fmt.Errorf("tile %s: %w", id.TileBase(), storage.ErrTileNotFound)
	}
	return blob, err
}

func (k *KVDB) Manifests(ctx context.Context) ([]TileManifest, error) {
	var ms []TileManifest
	err := k.db.scanPrefix(ctx, []byte(manifestPrefix), func(key, value []byte) error {
		m, err := decodeManifest(value)
		if err != nil {
			return fmt.Errorf("manifest %s: %w", key, err)
		}
		ms = append(ms, m)
		return nil
	})
	return ms, err
}

func (k *KVDB) TileIDs(ctx context.Context) ([]datastructure.GraphID, error) {
	ms, err := k.Manifests(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]datastructure.GraphID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, datastructure.GraphID(m.GraphID))
	}
	return ids, nil
}

// IndexTileEdges. add the start point of every directed edge of the tile to the h3 index.
func (k *KVDB) IndexTileEdges(ctx context.Context, tile *graphtile.GraphTile) error {
	cells := make(map[h3.Cell][]EdgeRef)
	for i := uint32(0); i < tile.DirectedEdgeCount(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := tile.DirectedEdge(i)
		if err != nil {
			return err
		}
		shape, err := tile.EdgeShape(e)
		if err != nil {
			return err
		}
		if len(shape) == 0 {
			continue
		}
		cell := h3.LatLngToCell(h3.NewLatLng(shape[0].Lat, shape[0].Lon), h3Resolution)
		cells[cell] = append(cells[cell], EdgeRef{
			GraphID: tile.ID().WithID(i).Value(),
			Lat:     shape[0].Lat,
			Lon:     shape[0].Lon,
		})
	}

	pairs := make([]kvPair, 0, len(cells))
	for cell, refs := range cells {
		existing, err := k.cellEdges(cell)
		if err != nil {
			return err
		}
		merged := mergeEdgeRefs(existing, refs)
		val, err := encodeEdges(merged)
		if err != nil {
			return err
		}
		pairs = append(pairs, kvPair{key: cellKey(cell), value: val})
	}
	if err := k.db.putBatch(ctx, pairs); err != nil {
		return err
	}
	k.log.Info("tile edges indexed", zap.String("tile", tile.ID().String()), zap.Int("cells", len(cells)))
	return nil
}

// mergeEdgeRefs. re-indexing a tile replaces its earlier entries.
func mergeEdgeRefs(existing, refs []EdgeRef) []EdgeRef {
	seen := make(map[uint64]struct{}, len(refs))
	for _, r := range refs {
		seen[r.GraphID] = struct{}{}
	}
	merged := make([]EdgeRef, 0, len(existing)+len(refs))
	for _, r := range existing {
		if _, ok := seen[r.GraphID]; !ok {
			merged = append(merged, r)
		}
	}
	return append(merged, refs...)
}

func (k *KVDB) cellEdges(cell h3.Cell) ([]EdgeRef, error) {
	val, err := k.db.get(cellKey(cell))
	if errors.Is(err, errKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return loadEdges(val)
}

// EdgesNear. directed edges starting within roughly radiusKm of the point.
func (k *KVDB) EdgesNear(ctx context.Context, lat, lon, radiusKm float64) ([]EdgeRef, error) {
	var edges []EdgeRef
	for _, cell := range kRingIndexesArea(lat, lon, radiusKm) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs, err := k.cellEdges(cell)
		if err != nil {
			return nil, err
		}
		edges = append(edges, refs...)
	}
	if len(edges) == 0 {
		return nil, ErrEdgesNotFound
	}
	return edges, nil
}

func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	home := h3.NewLatLng(lat, lon)
	origin := h3.LatLngToCell(home, h3Resolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}

func (k *KVDB) Close() error {
	return k.db.close()
}


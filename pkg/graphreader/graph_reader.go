package graphreader

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/lintang-b-s/graphtile/pkg/concurrent"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/lintang-b-s/graphtile/pkg/storage"
	"go.uber.org/zap"
)

type CacheConfig struct {
	MaxCost     int64 // bytes of serialized tiles
	NumCounters int64
}

// GraphReader. resolves GraphIDs to records through a cache of decoded tiles.
type GraphReader struct {
	store   storage.TileStore
	cache   *ristretto.Cache[uint64, *graphtile.GraphTile]
	workers int
	log     *zap.Logger
}

func NewGraphReader(store storage.TileStore, cfg CacheConfig, workers int, log *zap.Logger) (*GraphReader, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, *graphtile.GraphTile]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}
	return &GraphReader{store: store, cache: cache, workers: workers, log: log}, nil
}

// GetGraphTile. tiles built against another record layout, or with an inconsistent sign table,
// are rejected and never cached.
func (r *GraphReader) GetGraphTile(ctx context.Context, id datastructure.GraphID) (*graphtile.GraphTile, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%s: %w", id, datastructure.ErrInvalidGraphID)
	}
	base := id.TileBase()
	if tile, ok := r.cache.Get(base.Value()); ok {
		return tile, nil
	}

	blob, err := r.store.GetTile(ctx, base)
	if err != nil {
		return nil, err
	}
	tile, err := graphtile.Deserialize(blob)
	if err != nil {
		if errors.Is(err, graphtile.ErrFormatMismatch) {
			r.log.Error("tile rejected", zap.String("tile", base.String()), zap.Error(err))
		}
		return nil, err
	}
	if tile.ID() != base {
		return nil, fmt.Errorf("stored under %s but header says %s: %w", base, tile.ID(), graphtile.ErrInvalidTile)
	}
	if err := tile.Check(); err != nil {
		r.log.Error("tile rejected", zap.String("tile", base.String()), zap.Error(err))
		return nil, err
	}
	r.cache.Set(base.Value(), tile, int64(tile.Size()))
	r.log.Info("tile loaded", zap.String("tile", base.String()), zap.Uint32("edges", tile.DirectedEdgeCount()),
		zap.Int("bytes", tile.Size()))
	return tile, nil
}

func (r *GraphReader) DirectedEdge(ctx context.Context, id datastructure.GraphID) (datastructure.DirectedEdge, error) {
	tile, err := r.GetGraphTile(ctx, id)
	if err != nil {
		return datastructure.DirectedEdge{}, err
	}
	return tile.DirectedEdge(id.ID())
}

func (r *GraphReader) Signs(ctx context.Context, id datastructure.GraphID) ([]datastructure.SignInfo, error) {
	tile, err := r.GetGraphTile(ctx, id)
	if err != nil {
		return nil, err
	}
	return tile.GetSigns(id.ID())
}

// EdgeInfo. shared info of the directed edge id.
func (r *GraphReader) EdgeInfo(ctx context.Context, id datastructure.GraphID) (datastructure.EdgeInfo, error) {
	tile, err := r.GetGraphTile(ctx, id)
	if err != nil {
		return datastructure.EdgeInfo{}, err
	}
	e, err := tile.DirectedEdge(id.ID())
	if err != nil {
		return datastructure.EdgeInfo{}, err
	}
	return tile.EdgeInfo(e.EdgeInfoOffset())
}

// WarmCache. load tiles concurrently. returns the first error after every tile was tried.
func (r *GraphReader) WarmCache(ctx context.Context, ids []datastructure.GraphID) error {
	if len(ids) == 0 {
		return nil
	}
	workers := concurrent.NewWorkerPool[datastructure.GraphID, error](r.workers, len(ids))
	for _, id := range ids {
		workers.AddJob(id)
	}
	workers.Close()
	workers.Start(func(id datastructure.GraphID) error {
		_, err := r.GetGraphTile(ctx, id)
		return err
	})
	workers.Wait()

	var errs []error
	for err := range workers.CollectResults() {
		if err != nil {
			errs = append(errs, err)
		}
	}
	r.cache.Wait()
	if len(errs) > 0 {
		r.log.Warn("cache warm up incomplete", zap.Int("failed", len(errs)), zap.Int("tiles", len(ids)))
		return errs[0]
	}
	return nil
}

func (r *GraphReader) TileIDs(ctx context.Context) ([]datastructure.GraphID, error) {
	return r.store.TileIDs(ctx)
}

func (r *GraphReader) Close() error {
	r.cache.Close()
	return r.store.Close()
}

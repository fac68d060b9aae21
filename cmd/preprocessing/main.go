package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/lintang-b-s/graphtile/pkg/concurrent"
	"github.com/lintang-b-s/graphtile/pkg/config"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/lintang-b-s/graphtile/pkg/kv"
	"github.com/lintang-b-s/graphtile/pkg/osmparser"
	"github.com/lintang-b-s/graphtile/pkg/storage/disk"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "yaml config file")
	srcDir     = flag.String("src", "", "directory of tile files, overrides tile_dir of the config")
	mapFile    = flag.String("f", "", "openstreetmap pbf file, tiles are built from it into the tile dir before import")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

type loadedTile struct {
	id   datastructure.GraphID
	blob []byte
	tile *graphtile.GraphTile
	err  error
}

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Fatal("cpu profile", zap.Error(err))
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if *srcDir != "" {
		cfg.TileDir = *srcDir
	}
	if cfg.Store.Kind == config.StoreDisk {
		logger.Fatal("preprocessing imports into a kv store, set store.kind to badger or pebble")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	src, err := disk.NewTileStore(cfg.TileDir, cfg.Compressed, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	if *mapFile != "" {
		if err := buildTiles(ctx, *mapFile, src, cfg.Workers, logger); err != nil {
			return fmt.Errorf("build tiles from %s: %w", *mapFile, err)
		}
	}

	kvDB, err := kv.Open(cfg.Store.Kind, cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer kvDB.Close()

	ids, err := src.TileIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no tiles under %s", cfg.TileDir)
	}
	logger.Info("reading tiles", zap.String("dir", cfg.TileDir), zap.Int("count", len(ids)))

	workers := concurrent.NewWorkerPool[datastructure.GraphID, loadedTile](cfg.Workers, len(ids))
	for _, id := range ids {
		workers.AddJob(id)
	}
	workers.Close()
	workers.Start(func(id datastructure.GraphID) loadedTile {
		blob, err := src.GetTile(ctx, id)
		if err != nil {
			return loadedTile{id: id, err: err}
		}
		tile, err := graphtile.Deserialize(blob)
		if err == nil {
			err = tile.Check()
		}
		return loadedTile{id: id, blob: blob, tile: tile, err: err}
	})
	workers.Wait()

	var (
		blobs    []kv.TileBlob
		tiles    []*graphtile.GraphTile
		rejected int
	)
	for lt := range workers.CollectResults() {
		if lt.err != nil {
			rejected++
			logger.Error("tile rejected", zap.String("tile", lt.id.String()), zap.Error(lt.err))
			continue
		}
		blobs = append(blobs, kv.TileBlob{ID: lt.id, Blob: lt.blob})
		tiles = append(tiles, lt.tile)
	}

	if err := kvDB.PutTiles(ctx, blobs); err != nil {
		return err
	}
	for _, tile := range tiles {
		if err := kvDB.IndexTileEdges(ctx, tile); err != nil {
			return fmt.Errorf("index tile %s: %w", tile.ID(), err)
		}
	}

	logger.Info("import done", zap.Int("imported", len(blobs)), zap.Int("rejected", rejected))
	if rejected > 0 {
		return fmt.Errorf("%d of %d tiles rejected", rejected, len(ids))
	}
	return nil
}

func buildTiles(ctx context.Context, path string, dst *disk.TileStore, workers int, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	g, err := osmparser.NewGraphBuilder(osmparser.DefaultTileGrid, logger)
	if err != nil {
		return err
	}
	if err := g.ScanPBF(ctx, f, workers); err != nil {
		return err
	}
	builders, err := g.Build()
	if err != nil {
		return err
	}
	for id, tb := range builders {
		blob, err := tb.Serialize()
		if err != nil {
			return err
		}
		if err := dst.PutTile(ctx, id, blob); err != nil {
			return err
		}
	}
	logger.Info("tiles written", zap.String("map", path), zap.Int("tiles", len(builders)))
	return nil
}

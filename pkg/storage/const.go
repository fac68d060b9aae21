package storage

import (
	"context"
	"errors"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
)

const (
	MAX_TILE_SIZE_IN_MB = 256
	MAX_TILE_SIZE       = MAX_TILE_SIZE_IN_MB * 1024 * 1024

	DB_DIR        = "graphtile-db"
	TILE_DIR      = "tiles"
	TILE_EXT      = ".gph"
	TILE_ZSTD_EXT = ".gph.zst"
)

var (
	ErrTileNotFound = errors.New("tile not found")
	ErrTileTooLarge = errors.New("tile exceeds size limit")
)

// TileStore. persistent blob storage of serialized tiles keyed by tile base GraphID.
type TileStore interface {
	PutTile(ctx context.Context, id datastructure.GraphID, blob []byte) error
	GetTile(ctx context.Context, id datastructure.GraphID) ([]byte, error)
	TileIDs(ctx context.Context) ([]datastructure.GraphID, error)
	Close() error
}

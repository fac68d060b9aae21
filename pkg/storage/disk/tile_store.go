package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/storage"
	"go.uber.org/zap"
)

// TileStore. one file per tile under root/<level>/AAA/BBB/CCC.gph, zstd framed when compressed.
type TileStore struct {
	root       string
	compressed bool
	log        *zap.Logger
}

func NewTileStore(root string, compressed bool, log *zap.Logger) (*TileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("tile dir %s: %w", root, err)
	}
	return &TileStore{root: root, compressed: compressed, log: log}, nil
}

// TilePath. relative file path of the tile: level, then the tile id zero padded to 9 digits in
// groups of three.
func TilePath(id datastructure.GraphID, compressed bool) string {
	digits := fmt.Sprintf("%09d", id.TileID())
	ext := storage.TILE_EXT
	if compressed {
		ext = storage.TILE_ZSTD_EXT
	}
	return filepath.Join(strconv.Itoa(int(id.Level())), digits[0:3], digits[3:6], digits[6:9]+ext)
}

// ParseTilePath. inverse of TilePath.
func ParseTilePath(rel string) (datastructure.GraphID, bool, error) {
	rel = filepath.ToSlash(rel)
	compressed := strings.HasSuffix(rel, storage.TILE_ZSTD_EXT)
	rel = strings.TrimSuffix(strings.TrimSuffix(rel, storage.TILE_ZSTD_EXT), storage.TILE_EXT)
	parts := strings.Split(rel, "/")
	if len(parts) != 4 {
		return datastructure.InvalidGraphID, false, fmt.Errorf("tile path %s", rel)
	}
	level, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return datastructure.InvalidGraphID, false, fmt.Errorf("tile path %s: %w", rel, err)
	}
	tileID, err := strconv.ParseUint(parts[1]+parts[2]+parts[3], 10, 32)
	if err != nil {
		return datastructure.InvalidGraphID, false, fmt.Errorf("tile path %s: %w", rel, err)
	}
	id, err := datastructure.NewGraphID(uint32(tileID), uint32(level), 0)
	return id, compressed, err
}

func (s *TileStore) PutTile(ctx context.Context, id datastructure.GraphID, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page := NewPage(0)
	if err := page.WriteTile(blob, s.compressed); err != nil {
		return fmt.Errorf("tile %s: %w", id, err)
	}

	path := filepath.Join(s.root, TilePath(id, s.compressed))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, page.Contents(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.log.Debug("tile written", zap.String("tile", id.String()), zap.String("path", path),
		zap.Int("bytes", len(page.Contents())))
	return nil
}

// GetTile. reads either the compressed or the plain file of the tile.
func (s *TileStore) GetTile(ctx context.Context, id datastructure.GraphID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, compressed := range []bool{s.compressed, !s.compressed} {
		b, err := os.ReadFile(filepath.Join(s.root, TilePath(id.TileBase(), compressed)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		blob, err := NewPageFromByteSlice(b).ReadTile(compressed)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", id.TileBase(), err)
		}
		return blob, nil
	}
	return nil, fmt.Errorf("tile %s: %w", id.TileBase(), storage.ErrTileNotFound)
}

func (s *TileStore) TileIDs(ctx context.Context) ([]datastructure.GraphID, error) {
	seen := make(map[datastructure.GraphID]struct{})
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, storage.TILE_EXT) || strings.HasSuffix(path, storage.TILE_ZSTD_EXT)) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		id, _, err := ParseTilePath(rel)
		if err != nil {
			s.log.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		seen[id] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]datastructure.GraphID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *TileStore) Close() error {
	return nil
}

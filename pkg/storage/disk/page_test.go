package disk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPage(t *testing.T) {
	page := NewPage(30)
	page.PutInt(0, 1)
	page.PutInt(4, 2)
	page.PutInt(8, 3)
	page.PutInt(20, 6)

	assert.Equal(t, uint32(1), page.GetInt(0))
	assert.Equal(t, uint32(2), page.GetInt(4))
	assert.Equal(t, uint32(3), page.GetInt(8))
	assert.Equal(t, uint32(6), page.GetInt(20))

	page = NewPage(20)
	page.PutString(0, "lintang") // 7 + 4
	page.PutString(11, "birda")  // 5 + 4
	page.PutString(20, "saputra")

	for offset, want := range map[int]string{0: "lintang", 11: "birda", 20: "saputra"} {
		got, err := page.GetString(offset)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := page.GetBytes(28)
	assert.Error(t, err)
}

func TestTilePage(t *testing.T) {
	blob := bytes.Repeat([]byte("GTIL tile body "), 500)

	for _, compressed := range []bool{false, true} {
		page := NewPage(0)
		require.NoError(t, page.WriteTile(blob, compressed))
		if compressed {
			assert.Less(t, len(page.Contents()), len(blob))
		}

		reread := NewPageFromByteSlice(append([]byte{}, page.Contents()...))
		got, err := reread.ReadTile(compressed)
		require.NoError(t, err)
		assert.Equal(t, blob, got)
	}
}

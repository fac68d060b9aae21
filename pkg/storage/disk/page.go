package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/lintang-b-s/graphtile/pkg/storage"
)

/*
Page. in memory image of one tile file.

	uncompressed: | blob length u32 | blob |
	compressed:   | zstd frame length u32 | zstd(| blob length u32 | blob |) |
*/
type Page struct {
	bb           *bytes.Buffer
	decompressed bool
}

func NewPage(blockSize int) *Page {
	bb := bytes.NewBuffer(make([]byte, blockSize))
	return &Page{bb, false}
}

func NewPageFromByteSlice(b []byte) *Page {
	return &Page{bytes.NewBuffer(b), false}
}

func (p *Page) GetInt(offset int) uint32 {
	return binary.LittleEndian.Uint32(p.bb.Bytes()[offset:])
}

// PutInt. set a u32 at offset.
func (p *Page) PutInt(offset int, val uint32) {
	binary.LittleEndian.PutUint32(p.bb.Bytes()[offset:], val)
}

// GetBytes. length prefixed byte slice at offset.
func (p *Page) GetBytes(offset int) ([]byte, error) {
	if offset+4 > p.bb.Len() {
		return nil, fmt.Errorf("page offset %d beyond %d bytes", offset, p.bb.Len())
	}
	length := int(p.GetInt(offset))
	if offset+4+length > p.bb.Len() {
		return nil, fmt.Errorf("page entry of %d bytes at %d beyond %d bytes", length, offset, p.bb.Len())
	}
	b := make([]byte, length)
	copy(b, p.bb.Bytes()[offset+4:offset+4+length])
	return b, nil
}

// PutBytes. write b length prefixed at offset, growing the page when needed.
func (p *Page) PutBytes(offset int, b []byte) int {
	if offset+len(b)+4 > p.bb.Len() {
		padding := make([]byte, offset+len(b)+4-p.bb.Len())
		p.bb.Write(padding)
	}
	p.PutInt(offset, uint32(len(b)))
	copy(p.bb.Bytes()[offset+4:], b)
	return len(b) + 4
}

func (p *Page) GetString(offset int) (string, error) {
	b, err := p.GetBytes(offset)
	return string(b), err
}

func (p *Page) PutString(offset int, s string) {
	p.PutBytes(offset, []byte(s))
}

func (p *Page) Contents() []byte {
	return p.bb.Bytes()
}

// Compress. replace the page contents with a length prefixed zstd frame.
func (p *Page) Compress() error {
	inputBuf := bytes.NewBuffer(append([]byte{}, p.Contents()...))
	out := bytes.NewBuffer(make([]byte, 4, 4+p.bb.Len()/2))
	encoder, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, inputBuf)
	if err != nil {
		encoder.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(out.Bytes()[:4], uint32(out.Len()-4))
	p.bb = out
	return nil
}

func (p *Page) Decompress() error {
	if p.bb.Len() < 4 {
		return fmt.Errorf("compressed page of %d bytes", p.bb.Len())
	}
	compressedSize := int(p.GetInt(0))
	if compressedSize+4 > p.bb.Len() {
		return fmt.Errorf("compressed frame of %d bytes beyond %d byte page", compressedSize, p.bb.Len())
	}
	in := bytes.NewBuffer(p.Contents()[4 : compressedSize+4])
	d, err := zstd.NewReader(in, zstd.WithDecoderMaxMemory(storage.MAX_TILE_SIZE))
	if err != nil {
		return err
	}
	defer d.Close()

	bufOut := bytes.NewBuffer(make([]byte, 0, compressedSize*4))
	_, err = io.Copy(bufOut, d)
	if err != nil {
		return err
	}

	p.bb = bufOut
	p.decompressed = true
	return nil
}

// WriteTile. place the tile blob into the page, compressing it when asked.
func (p *Page) WriteTile(blob []byte, compressed bool) error {
	if len(blob) > storage.MAX_TILE_SIZE {
		return fmt.Errorf("%d bytes: %w", len(blob), storage.ErrTileTooLarge)
	}
	p.bb.Reset()
	p.PutBytes(0, blob)
	if compressed {
		return p.Compress()
	}
	return nil
}

// ReadTile. the tile blob stored in the page.
func (p *Page) ReadTile(compressed bool) ([]byte, error) {
	if compressed && !p.decompressed {
		if err := p.Decompress(); err != nil {
			return nil, err
		}
	}
	return p.GetBytes(0)
}

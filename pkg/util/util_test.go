package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitPacking(t *testing.T) {
	word := uint32(0)
	word = SetBits(word, 0, 8, uint32(125))
	word = SetBits(word, 8, 6, uint32(4))
	word = SetBits(word, 14, 6, uint32(8))
	word = SetFlag(word, 20, false)
	word = SetFlag(word, 21, true)
	word = SetFlag(word, 31, true)

	assert.Equal(t, uint32(125), GetBits(word, 0, 8))
	assert.Equal(t, uint32(4), GetBits(word, 8, 6))
	assert.Equal(t, uint32(8), GetBits(word, 14, 6))
	assert.False(t, GetFlag(word, 20))
	assert.True(t, GetFlag(word, 21))
	assert.True(t, GetFlag(word, 31))

	word = SetFlag(word, 31, false)
	assert.False(t, GetFlag(word, 31))
	assert.Equal(t, uint32(125), GetBits(word, 0, 8))
}

func TestSetBitsDropsOverflow(t *testing.T) {
	word := SetBits(uint32(0), 4, 3, uint32(0xff))
	assert.Equal(t, uint32(0x70), word)
	assert.Equal(t, uint32(7), GetBits(word, 4, 3))
}

func TestFullWidthWindow(t *testing.T) {
	assert.Equal(t, uint32(0xffffffff), Mask[uint32](32))
	assert.Equal(t, uint64(0xffffffffffffffff), Mask[uint64](64))

	word := SetBits(uint32(0), 0, 32, uint32(0xdeadbeef))
	assert.Equal(t, uint32(0xdeadbeef), GetBits(word, 0, 32))
}

func TestFitsBits(t *testing.T) {
	assert.True(t, FitsBits(uint32(1<<24-1), 24))
	assert.False(t, FitsBits(uint32(1<<24), 24))
	assert.True(t, FitsBits(uint64(0), 1))
	assert.True(t, FitsBits(uint32(255), 8))
	assert.False(t, FitsBits(uint32(256), 8))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2345, 2))
	assert.Equal(t, 2.0, RoundFloat(1.99999, 3))
}

package datastructure

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	assert.Equal(t, uintptr(SignSize), unsafe.Sizeof(Sign{}))

	s, err := NewSign(7, SignExitNumber, 128)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), s.EdgeIndex())
	assert.Equal(t, SignExitNumber, s.Type())
	assert.Equal(t, uint32(128), s.TextOffset())

	buf := s.Serialize()
	require.Len(t, buf, SignSize)
	assert.Equal(t, s, DeserializeSign(buf))

	s, err = NewSign(MaxSignEdgeIndex, SignJunctionName, 1<<32-1)
	require.NoError(t, err)
	assert.Equal(t, MaxSignEdgeIndex, s.EdgeIndex())
	assert.Equal(t, SignJunctionName, s.Type())
	assert.Equal(t, uint32(1<<32-1), s.TextOffset())

	_, err = NewSign(MaxSignEdgeIndex+1, SignExitName, 0)
	assert.ErrorIs(t, err, ErrFieldOverflow)
}

func TestSignLayout(t *testing.T) {
	words, fields := SignLayout()
	require.NoError(t, ValidateLayout(SignSize, words, fields))
	assert.Equal(t, SignInternalVersion(), layoutVersion("sign", SignSize, words, fields))
}

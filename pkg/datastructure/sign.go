package datastructure

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/lintang-b-s/graphtile/pkg/util"
)

/*
Sign. 8 byte exit / guide sign record, stored in tiles sorted by edge index.

	word0: edgeindex (bits 0-21) | type (22-29) | spare (30-31)
	word1: offset of the sign text in the tile's text list
*/
type Sign struct {
	data       uint32
	textOffset uint32
}

var _ [SignSize - unsafe.Sizeof(Sign{})]struct{}
var _ [unsafe.Sizeof(Sign{}) - SignSize]struct{}

const (
	signEdgeIndexShift = 0
	signEdgeIndexBits  = 22
	signTypeShift      = 22
	signTypeBits       = 8
	signSpareShift     = 30
	signSpareBits      = 2
)

var signWords = []RecordWord{
	{"data", 0, 4},
	{"textoffset", 4, 4},
}

var signFields = []BitField{
	{"data", "edgeindex", signEdgeIndexShift, signEdgeIndexBits},
	{"data", "type", signTypeShift, signTypeBits},
	{"data", "spare", signSpareShift, signSpareBits},
	{"textoffset", "value", 0, 32},
}

var signVersion = layoutVersion("sign", SignSize, signWords, signFields)

func SignInternalVersion() uint64 {
	return signVersion
}

func SignLayout() ([]RecordWord, []BitField) {
	words := make([]RecordWord, len(signWords))
	copy(words, signWords)
	fields := make([]BitField, len(signFields))
	copy(fields, signFields)
	return words, fields
}

// NewSign. idx is the index of the directed edge inside its tile.
func NewSign(idx uint32, t SignType, textOffset uint32) (Sign, error) {
	if idx > MaxSignEdgeIndex {
		return Sign{}, fmt.Errorf("sign edgeindex=%d (max %d): %w", idx, MaxSignEdgeIndex, ErrFieldOverflow)
	}
	var data uint32
	data = util.SetBits(data, signEdgeIndexShift, signEdgeIndexBits, idx)
	data = util.SetBits(data, signTypeShift, signTypeBits, uint32(t))
	return Sign{data: data, textOffset: textOffset}, nil
}

func (s Sign) EdgeIndex() uint32 {
	return util.GetBits(s.data, signEdgeIndexShift, signEdgeIndexBits)
}

func (s Sign) Type() SignType {
	return SignType(util.GetBits(s.data, signTypeShift, signTypeBits))
}

func (s Sign) TextOffset() uint32 {
	return s.textOffset
}

func (s Sign) SerializeTo(buf []byte) {
	_ = buf[SignSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], s.data)
	binary.LittleEndian.PutUint32(buf[4:8], s.textOffset)
}

func (s Sign) Serialize() []byte {
	buf := make([]byte, SignSize)
	s.SerializeTo(buf)
	return buf
}

func DeserializeSign(buf []byte) Sign {
	_ = buf[SignSize-1]
	return Sign{
		data:       binary.LittleEndian.Uint32(buf[0:4]),
		textOffset: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// SignInfo. sign with its text resolved from the tile.
type SignInfo struct {
	Type SignType `json:"type"`
	Text string   `json:"text"`
}

package util

import (
	"math"

	"golang.org/x/exp/constraints"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Mask. return the low width bits set. width == bit size of T gives all ones.
func Mask[T constraints.Unsigned](width uint) T {
	return T(1)<<width - 1
}

// GetBits. return the width-bit window of word starting at bit shift.
func GetBits[T constraints.Unsigned](word T, shift, width uint) T {
	return (word >> shift) & Mask[T](width)
}

// SetBits. overwrite the width-bit window of word starting at bit shift with val.
// bits of val above width are dropped; the caller validates the range.
func SetBits[T constraints.Unsigned](word T, shift, width uint, val T) T {
	mask := Mask[T](width) << shift
	return (word &^ mask) | ((val << shift) & mask)
}

func GetFlag[T constraints.Unsigned](word T, bit uint) bool {
	return (word>>bit)&1 != 0
}

func SetFlag[T constraints.Unsigned](word T, bit uint, on bool) T {
	return SetBits(word, bit, 1, BoolToUint[T](on))
}

// FitsBits. true if val can be stored in width bits without truncation.
func FitsBits[T constraints.Unsigned](val T, width uint) bool {
	return val&^Mask[T](width) == 0
}

func BoolToUint[T constraints.Unsigned](b bool) T {
	if b {
		return 1
	}
	return 0
}

package geo

import (
	"container/list"

	"github.com/lintang-b-s/graphtile/pkg/datastructure"
)

const (
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0 // 7 meter
)

// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/

// SimplifyShape. drop shape points closer than threshold meters to the simplified line.
// first and last points are always kept.
func SimplifyShape(coords []datastructure.Coordinate, threshold float64) []datastructure.Coordinate {
	size := len(coords)
	if size < 3 {
		return coords
	}

	kepts := make([]bool, size)
	kepts[0] = true
	kepts[size-1] = true

	stack := list.New()
	stack.PushBack([2]int{0, size - 1})

	for stack.Len() > 0 {
		pair := stack.Remove(stack.Back()).([2]int)
		left, right := pair[0], pair[1]
		var maxDist float64
		farthestIndex := left

		// farthest point from the segment (left,right)
		for i := left + 1; i < right; i++ {
			dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i])
			if dist > maxDist {
				maxDist = dist
				farthestIndex = i
			}
		}

		if maxDist > threshold {
			kepts[farthestIndex] = true
			stack.PushBack([2]int{left, farthestIndex})
			stack.PushBack([2]int{farthestIndex, right})
		}
	}

	simplified := make([]datastructure.Coordinate, 0, size)
	for i, necessary := range kepts {
		if necessary {
			simplified = append(simplified, coords[i])
		}
	}
	return simplified
}

// TurnDegree. clockwise angle turned going from inHeading to outHeading, in [0,360).
func TurnDegree(inHeading, outHeading float64) uint32 {
	d := int(outHeading-inHeading+720) % 360
	return uint32(d)
}

// TurnTypeFromDegree. bucket a turn degree into a TurnType.
func TurnTypeFromDegree(turnDegree uint32) datastructure.TurnType {
	switch {
	case turnDegree > 348 || turnDegree < 12:
		return datastructure.TurnStraight
	case turnDegree < 44:
		return datastructure.TurnSlightRight
	case turnDegree < 136:
		return datastructure.TurnRight
	case turnDegree < 170:
		return datastructure.TurnSharpRight
	case turnDegree < 191:
		return datastructure.TurnReverse
	case turnDegree < 225:
		return datastructure.TurnSharpLeft
	case turnDegree < 316:
		return datastructure.TurnLeft
	default:
		return datastructure.TurnSlightLeft
	}
}

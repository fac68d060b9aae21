package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

func angleToMeters(a s1.Angle) float64 {
	return a.Radians() * earthRadiusM
}

// ShapeLength. length of the shape in meters, rounded to the nearest meter.
func ShapeLength(shape []datastructure.Coordinate) uint32 {
	if len(shape) < 2 {
		return 0
	}
	line := make(s2.Polyline, 0, len(shape))
	for _, c := range shape {
		line = append(line, toS2Point(c))
	}
	return uint32(math.Round(angleToMeters(line.Length())))
}

// PointLinePerpendicularDistance. distance in meters from p to the segment (a,b).
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	return angleToMeters(s2.DistanceFromSegment(toS2Point(p), toS2Point(a), toS2Point(b)))
}

// BeginHeading. heading of the shape leaving its first point.
func BeginHeading(shape []datastructure.Coordinate) float64 {
	if len(shape) < 2 {
		return 0
	}
	return Heading(shape[0].Lat, shape[0].Lon, shape[1].Lat, shape[1].Lon)
}

// EndHeading. heading of the shape arriving at its last point.
func EndHeading(shape []datastructure.Coordinate) float64 {
	n := len(shape)
	if n < 2 {
		return 0
	}
	return Heading(shape[n-2].Lat, shape[n-2].Lon, shape[n-1].Lat, shape[n-1].Lon)
}

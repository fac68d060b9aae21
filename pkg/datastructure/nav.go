package datastructure

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func serializeCoordinates(coords []Coordinate) []byte {
	pts := make([][]float64, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, []float64{c.Lat, c.Lon})
	}
	return polyline.EncodeCoords(pts)
}

func deserializeCoordinates(data []byte) ([]Coordinate, error) {
	pts, rest, err := polyline.DecodeCoords(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after polyline", len(rest))
	}
	coords := make([]Coordinate, 0, len(pts))
	for _, p := range pts {
		coords = append(coords, NewCoordinate(p[0], p[1]))
	}
	return coords, nil
}

// CreatePolyline. encoded polyline string of the path, 5 digit precision.
func CreatePolyline(path []Coordinate) string {
	return string(serializeCoordinates(path))
}

package geo

import "math"

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func radiansToDegree(angle float64) float64 {
	return angle * (180.0 / math.Pi)
}

// CalculateHaversineDistance. great circle distance in km.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// Heading. initial bearing from the first to the second point, degrees clockwise from north in [0,360).
func Heading(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	latTwo = degreeToRadians(latTwo)
	dLon := degreeToRadians(longTwo - longOne)

	y := math.Sin(dLon) * math.Cos(latTwo)
	x := math.Cos(latOne)*math.Sin(latTwo) - math.Sin(latOne)*math.Cos(latTwo)*math.Cos(dLon)
	return math.Mod(radiansToDegree(math.Atan2(y, x))+360, 360)
}

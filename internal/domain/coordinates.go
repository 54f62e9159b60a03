package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Report whether both components are finite and inside their ranges.
// The engine does not validate; callers check at the boundary.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Offset returns a copy shifted by the given degree deltas.
func (c Coordinates) Offset(dLat, dLon float64) Coordinates {
	return Coordinates{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}

// Return coordinates as [lat, lon] for map polylines.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }

package domain

import "strings"

// Coordinates is a WGS 84 position. Ranges are not validated; values come
// from the geocoding API or the catalog.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoPointType is the GeoJSON geometry type used for store locations.
const GeoPointType = "Point"

// GeoPoint is a GeoJSON point. Coordinates are in [longitude, latitude]
// order, as GeoJSON, PostGIS ST_MakePoint and Elasticsearch expect.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds the GeoJSON point for lat/lng.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: GeoPointType, Coordinates: [2]float64{lng, lat}}
}

// Lat returns the latitude component.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Lng returns the longitude component.
func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }

// TravelMetric is the road distance and duration from one origin to one
// destination. Lists of TravelMetric are positionally aligned with the
// destinations that produced them.
type TravelMetric struct {
	DistanceText    string
	DistanceMeters  int
	DurationText    string
	DurationSeconds int
	Status          string
}

// PostalAddress is the structured address behind a postal code (CEP).
type PostalAddress struct {
	RawCode      string
	Street       string
	Complement   string
	Neighborhood string
	Locality     string
	State        string
	StateName    string
	Region       string
}

// NormalizePostalCode strips every non-digit from code.
func NormalizePostalCode(code string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
}

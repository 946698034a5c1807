// Package model defines the shared types for the pricing template pipeline.
package model

// Coordinates is a geographic point in WGS84 decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CentreRecord is one row of the reference pricing workbook. Numeric
// fields are pointers so that a missing or malformed cell stays
// distinguishable from a real zero; the comps filter excludes records
// with any nil field or a coordinate of exactly 0.
type CentreRecord struct {
	CentreID   string   `json:"centre_id"`
	Region     string   `json:"region"`
	Address    string   `json:"address,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	MarketRate *float64 `json:"market_rate,omitempty"`
}

// HasLocation reports whether the record carries usable coordinates.
// A coordinate of exactly 0 is the workbook's "unknown location"
// sentinel, not a real position.
func (r CentreRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil && *r.Latitude != 0 && *r.Longitude != 0
}

// AreaUnit selects the area unit the analyst is pricing in.
type AreaUnit string

const (
	AreaSqFt AreaUnit = "SqFt"
	AreaSqM  AreaUnit = "SqM"
)

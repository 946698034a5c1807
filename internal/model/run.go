package model

import "time"

// RunStatus represents the current state of a template fill run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusGeocoding RunStatus = "geocoding"
	RunStatusComps     RunStatus = "comps"
	RunStatusCoworking RunStatus = "coworking"
	RunStatusWriting   RunStatus = "writing"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// FillRequest holds the analyst's form input for one submission.
type FillRequest struct {
	CentreID            string       `json:"centre_id"`
	Address             string       `json:"address"`
	ManualCoordinates   *Coordinates `json:"manual_coordinates,omitempty"`
	Currency            string       `json:"currency"`
	AreaUnits           AreaUnit     `json:"area_units"`
	TotalArea           float64      `json:"total_area"`
	MonthlyRentOverride float64      `json:"monthly_rent_override"`
	RentSource          string       `json:"rent_source"`
	ServiceCharges      float64      `json:"service_charges"`
	PropertyTax         float64      `json:"property_tax"`
	TotalCashflow       float64      `json:"total_cashflow"`
}

// FillResult holds the computed outcome of a fill run.
type FillResult struct {
	OutputPath         string       `json:"output_path,omitempty"`
	Coordinates        *Coordinates `json:"coordinates,omitempty"`
	CompIDs            []string     `json:"comp_ids"`
	CompDistances      []string     `json:"comp_distances"`
	CompQualities      []string     `json:"comp_qualities"`
	CompDiffs          []string     `json:"comp_diffs"`
	AveragePrice       float64      `json:"average_price"`
	MarketRent         float64      `json:"market_rent"`
	CoworkingNames     []string     `json:"coworking_names"`
	CoworkingDistances []string     `json:"coworking_distances"`
	CoworkingEstimate  float64      `json:"coworking_estimate"`
	City               string       `json:"city,omitempty"`
	Warnings           []string     `json:"warnings,omitempty"`
	Error              string       `json:"error,omitempty"`
}

// Run represents one recorded fill run.
type Run struct {
	ID        string      `json:"id"`
	Request   FillRequest `json:"request"`
	Status    RunStatus   `json:"status"`
	Result    *FillResult `json:"result,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

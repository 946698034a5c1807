// Package fill orchestrates one template fill run: geocode the centre,
// pick comparables, find coworking spaces, and write the workbook.
package fill

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/comps"
	"github.com/sells-group/pricing-cli/internal/geo"
	"github.com/sells-group/pricing-cli/internal/model"
	"github.com/sells-group/pricing-cli/internal/poi"
	"github.com/sells-group/pricing-cli/internal/store"
	"github.com/sells-group/pricing-cli/internal/template"
	"github.com/sells-group/pricing-cli/pkg/geocode"
)

// Config carries the tunables for the comps and coworking legs.
type Config struct {
	Comps comps.Options
	POI   poi.Options
}

// RentAverager supplies the mean market rent for a set of centre ids.
type RentAverager interface {
	AverageMarketRent(centreIDs []string) float64
}

// Estimator prices a coworking office for a city.
type Estimator interface {
	Estimate(city string, unit model.AreaUnit) float64
}

// TemplateWriter persists a filled template and returns its path.
type TemplateWriter interface {
	Write(rec template.Record) (string, error)
}

// Pipeline runs fills against a loaded reference dataset. The store is
// optional; a nil store skips run recording.
type Pipeline struct {
	cfg       Config
	records   []model.CentreRecord
	rents     RentAverager
	geocoder  geocode.Client
	query     poi.QueryFunc
	estimator Estimator
	writer    TemplateWriter
	store     store.Store
}

// New creates a Pipeline with all dependencies.
func New(
	cfg Config,
	records []model.CentreRecord,
	rents RentAverager,
	geocoder geocode.Client,
	query poi.QueryFunc,
	estimator Estimator,
	writer TemplateWriter,
	st store.Store,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		records:   records,
		rents:     rents,
		geocoder:  geocoder,
		query:     query,
		estimator: estimator,
		writer:    writer,
		store:     st,
	}
}

// Run executes one fill. The returned result is populated as far as the
// run got, even on error.
func (p *Pipeline) Run(ctx context.Context, req model.FillRequest) (*model.FillResult, error) {
	log := zap.L().With(zap.String("centre_id", req.CentreID))
	log.Info("fill: starting run", zap.String("address", req.Address))

	result := &model.FillResult{}

	runID := ""
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, req)
		if err != nil {
			return nil, eris.Wrap(err, "fill: create run")
		}
		runID = run.ID
	}
	setStatus := func(status model.RunStatus) {
		if p.store == nil {
			return
		}
		if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
			log.Warn("fill: failed to update status", zap.Error(err))
		}
	}
	fail := func(err error) (*model.FillResult, error) {
		result.Error = err.Error()
		if p.store != nil {
			if storeErr := p.store.UpdateRunResult(ctx, runID, model.RunStatusFailed, result); storeErr != nil {
				log.Warn("fill: failed to record failure", zap.Error(storeErr))
			}
		}
		return result, err
	}

	// Geocode, falling back to manually entered coordinates.
	setStatus(model.RunStatusGeocoding)
	coords, err := p.resolveCoordinates(ctx, req, result, log)
	if err != nil {
		return fail(err)
	}
	result.Coordinates = &coords

	// Nearest comparables. A comps failure leaves the comp slots blank
	// and the run continues; the coworking leg is independent.
	setStatus(model.RunStatusComps)
	compsResult, err := comps.Find(coords, p.records, p.cfg.Comps)
	if err != nil {
		log.Warn("fill: comps failed", zap.Error(err))
		result.Warnings = append(result.Warnings, "comparables unavailable: "+err.Error())
	} else {
		for _, e := range compsResult.Entries {
			result.CompIDs = append(result.CompIDs, e.CentreID)
			result.CompDistances = append(result.CompDistances, e.DistanceLabel)
			result.CompQualities = append(result.CompQualities, e.Quality)
			result.CompDiffs = append(result.CompDiffs, e.DiffLabel)
		}
		result.AveragePrice = compsResult.AveragePrice
		result.MarketRent = p.rents.AverageMarketRent(result.CompIDs)
	}

	// Coworking spaces and the city-based price estimate.
	setStatus(model.RunStatusCoworking)
	spaces := poi.Find(ctx, coords, p.query, p.cfg.POI)
	for _, s := range spaces {
		result.CoworkingNames = append(result.CoworkingNames, s.Name)
		// Sentinel entries carry distance 0 and label as "0.0 mi".
		result.CoworkingDistances = append(result.CoworkingDistances, geo.FormatMiles(s.Distance))
	}
	result.City = p.resolveCity(ctx, coords, result, log)
	result.CoworkingEstimate = p.estimator.Estimate(result.City, req.AreaUnits)

	// Fill and save the workbook.
	setStatus(model.RunStatusWriting)
	outPath, err := p.writer.Write(p.buildRecord(req, result))
	if err != nil {
		return fail(eris.Wrap(err, "fill: write template"))
	}
	result.OutputPath = outPath

	if p.store != nil {
		if err := p.store.UpdateRunResult(ctx, runID, model.RunStatusComplete, result); err != nil {
			log.Warn("fill: failed to record result", zap.Error(err))
		}
	}

	log.Info("fill: run complete",
		zap.String("output", outPath),
		zap.Strings("comps", result.CompIDs),
		zap.String("city", result.City),
	)
	return result, nil
}

// resolveCoordinates geocodes the address, preferring the provider hit
// and falling back to manual coordinates when the provider cannot place
// the address.
func (p *Pipeline) resolveCoordinates(ctx context.Context, req model.FillRequest, result *model.FillResult, log *zap.Logger) (model.Coordinates, error) {
	r, err := p.geocoder.Geocode(ctx, req.Address)
	if err == nil && r.Matched {
		return r.Coordinates(), nil
	}

	if err != nil {
		log.Warn("fill: geocode failed", zap.Error(err))
		result.Warnings = append(result.Warnings, "geocoding failed: "+err.Error())
	} else {
		result.Warnings = append(result.Warnings, "address not matched by geocoder")
	}

	if req.ManualCoordinates != nil {
		log.Info("fill: using manual coordinates")
		return *req.ManualCoordinates, nil
	}
	return model.Coordinates{}, eris.Errorf("fill: could not resolve coordinates for %q", req.Address)
}

// resolveCity reverse geocodes the centre location. Failure degrades to
// an empty city, which the estimator prices at the default rate.
func (p *Pipeline) resolveCity(ctx context.Context, coords model.Coordinates, result *model.FillResult, log *zap.Logger) string {
	rev, err := p.geocoder.ReverseGeocode(ctx, coords)
	if err != nil {
		log.Warn("fill: reverse geocode failed", zap.Error(err))
		result.Warnings = append(result.Warnings, "reverse geocoding failed: "+err.Error())
		return ""
	}
	return rev.City
}

func (p *Pipeline) buildRecord(req model.FillRequest, result *model.FillResult) template.Record {
	monthlyRent := result.MarketRent
	if req.MonthlyRentOverride > 0 {
		monthlyRent = req.MonthlyRentOverride
	}

	rec := template.Record{
		CentreID:        req.CentreID,
		Address:         req.Address,
		Currency:        req.Currency,
		AreaUnits:       req.AreaUnits,
		TotalArea:       req.TotalArea,
		MonthlyRent:     monthlyRent,
		RentSource:      req.RentSource,
		ServiceCharges:  req.ServiceCharges,
		PropertyTax:     req.PropertyTax,
		MonthlyCashflow: req.TotalCashflow,
	}
	copy(rec.CompIDs[:], result.CompIDs)
	copy(rec.CompDistances[:], result.CompDistances)
	copy(rec.CompQualities[:], result.CompQualities)
	copy(rec.CompDiffs[:], result.CompDiffs)
	copy(rec.CoworkingNames[:], result.CoworkingNames)
	copy(rec.CoworkingDistances[:], result.CoworkingDistances)
	return rec
}

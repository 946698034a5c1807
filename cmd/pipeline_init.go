package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/comps"
	"github.com/sells-group/pricing-cli/internal/dataset"
	"github.com/sells-group/pricing-cli/internal/fill"
	"github.com/sells-group/pricing-cli/internal/poi"
	"github.com/sells-group/pricing-cli/internal/rates"
	"github.com/sells-group/pricing-cli/internal/store"
	"github.com/sells-group/pricing-cli/internal/template"
	"github.com/sells-group/pricing-cli/pkg/geocode"
	"github.com/sells-group/pricing-cli/pkg/overpass"
)

// pipelineEnv holds the initialized clients, dataset, and pipeline
// needed by the fill/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Dataset   *dataset.Dataset
	Geocoder  geocode.Client
	Overpass  *overpass.Client
	Estimator *rates.Estimator
	Pipeline  *fill.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initGeocoder() geocode.Client {
	return geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(cfg.Geocode.RatePerSecond),
		geocode.WithCacheTTL(time.Duration(cfg.Geocode.CacheTTLHours)*time.Hour),
	)
}

func loadDataset() (*dataset.Dataset, error) {
	ds, err := dataset.Load(cfg.Dataset.Path, dataset.Options{
		RegionSheets:    cfg.Dataset.RegionSheets,
		MarketRentSheet: cfg.Dataset.MarketRentSheet,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("dataset loaded",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("records", len(ds.Records)),
	)
	return ds, nil
}

func compsOptions() comps.Options {
	return comps.Options{Window: cfg.Comps.Window, Report: cfg.Comps.Report}
}

func poiOptions() poi.Options {
	return poi.Options{
		StartRadius: cfg.POI.StartRadius,
		Step:        cfg.POI.Step,
		MaxRadius:   cfg.POI.MaxRadius,
		Target:      cfg.POI.Target,
	}
}

// initPipeline sets up the store, clients, and dataset, and builds the
// fill Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := loadDataset()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	estimator, err := rates.NewEstimator(cfg.Rates)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	geocoder := initGeocoder()
	overpassClient := overpass.NewClient(
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Overpass.TimeoutSecs) * time.Second}),
	)
	writer := template.NewWriter(cfg.Template.Path, cfg.Template.OutDir)

	p := fill.New(
		fill.Config{Comps: compsOptions(), POI: poiOptions()},
		ds.Records,
		ds,
		geocoder,
		overpassClient.Query,
		estimator,
		writer,
		st,
	)

	return &pipelineEnv{
		Store:     st,
		Dataset:   ds,
		Geocoder:  geocoder,
		Overpass:  overpassClient,
		Estimator: estimator,
		Pipeline:  p,
	}, nil
}

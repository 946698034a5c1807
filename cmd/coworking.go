package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricing-cli/internal/model"
	"github.com/sells-group/pricing-cli/internal/poi"
	"github.com/sells-group/pricing-cli/internal/rates"
	"github.com/sells-group/pricing-cli/pkg/overpass"
)

var coworkingFlags struct {
	address string
	units   string
}

var coworkingCmd = &cobra.Command{
	Use:   "coworking",
	Short: "Find nearby coworking spaces and estimate the local office rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		geocoder := initGeocoder()
		r, err := geocoder.Geocode(ctx, coworkingFlags.address)
		if err != nil {
			return eris.Wrap(err, "geocode address")
		}
		if !r.Matched {
			return eris.Errorf("address not matched: %q", coworkingFlags.address)
		}
		coords := r.Coordinates()

		overpassClient := overpass.NewClient(
			overpass.WithBaseURL(cfg.Overpass.BaseURL),
			overpass.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Overpass.TimeoutSecs) * time.Second}),
		)
		spaces := poi.Find(ctx, coords, overpassClient.Query, poiOptions())

		city := ""
		if rev, revErr := geocoder.ReverseGeocode(ctx, coords); revErr == nil {
			city = rev.City
		}

		estimator, err := rates.NewEstimator(cfg.Rates)
		if err != nil {
			return err
		}

		out := struct {
			Coordinates model.Coordinates `json:"coordinates"`
			City        string            `json:"city"`
			Spaces      []poi.Space       `json:"spaces"`
			Estimate    float64           `json:"estimate"`
		}{
			Coordinates: coords,
			City:        city,
			Spaces:      spaces,
			Estimate:    estimator.Estimate(city, model.AreaUnit(coworkingFlags.units)),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	coworkingCmd.Flags().StringVar(&coworkingFlags.address, "address", "", "centre address (required)")
	coworkingCmd.Flags().StringVar(&coworkingFlags.units, "units", string(model.AreaSqFt), "area units for the estimate (SqFt or SqM)")
	_ = coworkingCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(coworkingCmd)
}

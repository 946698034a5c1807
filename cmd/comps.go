package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricing-cli/internal/comps"
	"github.com/sells-group/pricing-cli/internal/model"
)

var compsFlags struct {
	address string
	lat     float64
	lon     float64
}

var compsCmd = &cobra.Command{
	Use:   "comps",
	Short: "Show the nearest comparable centres for an address or point",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ds, err := loadDataset()
		if err != nil {
			return err
		}

		var coords model.Coordinates
		switch {
		case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
			coords = model.Coordinates{Latitude: compsFlags.lat, Longitude: compsFlags.lon}
		case compsFlags.address != "":
			geocoder := initGeocoder()
			r, err := geocoder.Geocode(ctx, compsFlags.address)
			if err != nil {
				return eris.Wrap(err, "geocode address")
			}
			if !r.Matched {
				return eris.Errorf("address not matched: %q", compsFlags.address)
			}
			coords = r.Coordinates()
		default:
			return eris.New("either --address or --lat/--lon is required")
		}

		result, err := comps.Find(coords, ds.Records, compsOptions())
		if err != nil {
			return eris.Wrap(err, "find comparables")
		}

		var ids []string
		for _, e := range result.Entries {
			if e.Populated {
				ids = append(ids, e.CentreID)
			}
		}
		out := struct {
			Coordinates model.Coordinates `json:"coordinates"`
			Result      *comps.Result     `json:"result"`
			MarketRent  float64           `json:"market_rent"`
		}{
			Coordinates: coords,
			Result:      result,
			MarketRent:  ds.AverageMarketRent(ids),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	compsCmd.Flags().StringVar(&compsFlags.address, "address", "", "centre address")
	compsCmd.Flags().Float64Var(&compsFlags.lat, "lat", 0, "latitude, bypasses geocoding")
	compsCmd.Flags().Float64Var(&compsFlags.lon, "lon", 0, "longitude, bypasses geocoding")
	rootCmd.AddCommand(compsCmd)
}

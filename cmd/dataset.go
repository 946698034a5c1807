package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pricing-cli/internal/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect and maintain the reference pricing workbook",
}

// -- dataset validate --

var datasetValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report rows unusable for comparable selection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		var usable, noLocation, noPrice int
		for _, r := range ds.Records {
			switch {
			case !r.HasLocation():
				noLocation++
			case r.Price == nil:
				noPrice++
			default:
				usable++
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Total records:\t%d\n", len(ds.Records))
		fmt.Fprintf(w, "Usable:\t%d\n", usable)
		fmt.Fprintf(w, "Missing location:\t%d\n", noLocation)
		fmt.Fprintf(w, "Missing price:\t%d\n", noPrice)
		w.Flush()

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			for _, r := range ds.Records {
				if !r.HasLocation() || r.Price == nil {
					fmt.Printf("  %s (%s): %s\n", r.CentreID, r.Region, r.Address)
				}
			}
		}
		return nil
	},
}

// -- dataset backfill --

var datasetBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Geocode rows missing coordinates and write an updated workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ds, err := loadDataset()
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		geocoder := initGeocoder()
		records := ds.Records

		var resolved, skipped atomic.Int64
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for i := range records {
			if records[i].HasLocation() || records[i].Address == "" {
				continue
			}
			i := i
			g.Go(func() error {
				r, err := geocoder.Geocode(gCtx, records[i].Address)
				if err != nil {
					return eris.Wrapf(err, "geocode %s", records[i].CentreID)
				}
				if !r.Matched {
					skipped.Add(1)
					zap.L().Warn("backfill: address not matched",
						zap.String("centre_id", records[i].CentreID),
						zap.String("address", records[i].Address),
					)
					return nil
				}
				records[i].Latitude = &r.Latitude
				records[i].Longitude = &r.Longitude
				resolved.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := dataset.WriteWorkbook(out, records); err != nil {
			return err
		}

		zap.L().Info("backfill complete",
			zap.String("out", out),
			zap.Int64("resolved", resolved.Load()),
			zap.Int64("unmatched", skipped.Load()),
		)
		return nil
	},
}

func init() {
	datasetValidateCmd.Flags().Bool("verbose", false, "list each unusable row")

	datasetBackfillCmd.Flags().String("out", "Global Pricing.backfilled.xlsx", "output workbook path")
	datasetBackfillCmd.Flags().Int("concurrency", 2, "concurrent geocode requests")

	datasetCmd.AddCommand(datasetValidateCmd)
	datasetCmd.AddCommand(datasetBackfillCmd)
	rootCmd.AddCommand(datasetCmd)
}

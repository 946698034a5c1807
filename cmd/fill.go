package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/finmodel"
	"github.com/sells-group/pricing-cli/internal/model"
)

var fillFlags struct {
	centreID       string
	address        string
	lat            float64
	lon            float64
	modelPath      string
	currency       string
	areaUnits      string
	totalArea      float64
	monthlyRent    float64
	rentSource     string
	serviceCharges float64
	propertyTax    float64
	cashflow       float64
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the pricing template for a single centre",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req := model.FillRequest{
			CentreID:            fillFlags.centreID,
			Address:             fillFlags.address,
			Currency:            fillFlags.currency,
			AreaUnits:           model.AreaUnit(fillFlags.areaUnits),
			TotalArea:           fillFlags.totalArea,
			MonthlyRentOverride: fillFlags.monthlyRent,
			RentSource:          fillFlags.rentSource,
			ServiceCharges:      fillFlags.serviceCharges,
			PropertyTax:         fillFlags.propertyTax,
			TotalCashflow:       fillFlags.cashflow,
		}

		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			req.ManualCoordinates = &model.Coordinates{
				Latitude:  fillFlags.lat,
				Longitude: fillFlags.lon,
			}
		}

		// Values extracted from a financial model fill the gaps the
		// flags left open; explicit flags always win.
		if fillFlags.modelPath != "" {
			extractor := finmodel.NewExtractor(cfg.Finmodel.PdfToTextPath)
			m, err := extractor.Extract(ctx, fillFlags.modelPath)
			if err != nil {
				return eris.Wrap(err, "extract financial model")
			}
			zap.L().Info("financial model extracted",
				zap.String("path", fillFlags.modelPath),
				zap.String("currency", m.Currency),
				zap.Float64("total_area", m.TotalArea),
			)
			if !cmd.Flags().Changed("currency") && m.Currency != "" {
				req.Currency = m.Currency
			}
			if !cmd.Flags().Changed("area") && m.TotalArea > 0 {
				req.TotalArea = m.TotalArea
			}
			if !cmd.Flags().Changed("rent") && m.MonthlyRent > 0 {
				req.MonthlyRentOverride = m.MonthlyRent
			}
			if !cmd.Flags().Changed("cashflow") && m.MonthlyCashflow > 0 {
				req.TotalCashflow = m.MonthlyCashflow
			}
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "fill run")
		}

		zap.L().Info("fill complete",
			zap.String("centre_id", req.CentreID),
			zap.String("output", result.OutputPath),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	f := fillCmd.Flags()
	f.StringVar(&fillFlags.centreID, "centre-id", "", "centre number (required)")
	f.StringVar(&fillFlags.address, "address", "", "centre address (required)")
	f.Float64Var(&fillFlags.lat, "lat", 0, "manual latitude, used when geocoding fails")
	f.Float64Var(&fillFlags.lon, "lon", 0, "manual longitude, used when geocoding fails")
	f.StringVar(&fillFlags.modelPath, "model", "", "financial model file (xlsx or pdf) to auto-extract values from")
	f.StringVar(&fillFlags.currency, "currency", "USD", "pricing currency (USD or CAD)")
	f.StringVar(&fillFlags.areaUnits, "units", string(model.AreaSqFt), "area units (SqFt or SqM)")
	f.Float64Var(&fillFlags.totalArea, "area", 0, "total area contracted")
	f.Float64Var(&fillFlags.monthlyRent, "rent", 0, "monthly market rent override (0 = use comparable average)")
	f.StringVar(&fillFlags.rentSource, "rent-source", "LL or Partner Provided", "source of market rent")
	f.Float64Var(&fillFlags.serviceCharges, "service-charges", 0, "service charges")
	f.Float64Var(&fillFlags.propertyTax, "property-tax", 0, "property tax")
	f.Float64Var(&fillFlags.cashflow, "cashflow", 0, "monthly net partner cashflow")
	_ = fillCmd.MarkFlagRequired("centre-id")
	_ = fillCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(fillCmd)
}

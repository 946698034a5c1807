package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pricing-cli",
	Short: "Pricing template filler for new centres",
	Long:  "Geocodes a centre address, selects comparable centres from the reference pricing workbook, finds nearby coworking spaces, and fills the pricing template.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aibeh/order-management/internal/config"
	"github.com/aibeh/order-management/internal/seed"
	"github.com/aibeh/order-management/internal/store"
)

func newSeedCmd() *cobra.Command {
	var (
		configPath string
		file       string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the record store from the sales dataset CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			st, err := store.OpenPostgres(ctx, cfg.Database.DSN())
			cancel()
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer st.Close()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			summary, err := seed.NewSeeder(st, logger).Run(cmd.Context(), f, reset)
			if err != nil {
				return err
			}

			fmt.Printf("customers: %d inserted, %d skipped\n", summary.Customers.Inserted, summary.Customers.Skipped)
			fmt.Printf("products:  %d inserted, %d skipped\n", summary.Products.Inserted, summary.Products.Skipped)
			fmt.Printf("orders:    %d inserted, %d skipped\n", summary.Orders.Inserted, summary.Orders.Skipped)
			if summary.BadRows > 0 {
				fmt.Printf("skipped %d malformed rows\n", summary.BadRows)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (optional)")
	cmd.Flags().StringVar(&file, "file", "train.csv", "path to the sales dataset CSV")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear all three collections before seeding")
	return cmd
}

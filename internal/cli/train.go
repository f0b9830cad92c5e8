package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aibeh/order-management/internal/predict"
	"github.com/aibeh/order-management/internal/seed"
)

func newTrainCmd() *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the sales regression model from the dataset CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, badRows, err := seed.ParseDataset(f, logger)
			if err != nil {
				return err
			}
			if badRows > 0 {
				logger.WithField("bad_rows", badRows).Warn("Some dataset rows were skipped")
			}

			samples := make([]predict.Sample, len(rows))
			for i, row := range rows {
				samples[i] = predict.Sample{
					Country:  row.Country,
					State:    row.State,
					Category: row.Category,
					Sales:    row.Sales,
				}
				if row.PostalCode != nil {
					samples[i].PostalCode = float64(*row.PostalCode)
				}
			}

			result, err := predict.Train(samples)
			if err != nil {
				return err
			}
			if err := result.Model.Save(out); err != nil {
				return fmt.Errorf("save model: %w", err)
			}

			fmt.Printf("trained on %d samples, tested on %d, R² = %.4f\n", result.TrainLen, result.TestLen, result.R2)
			fmt.Printf("model written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "train.csv", "path to the sales dataset CSV")
	cmd.Flags().StringVar(&out, "out", "trained_model.json", "output path for the model and encoders")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aibeh/order-management/internal/predict"
)

func newPredictCmd() *cobra.Command {
	var (
		modelPath string
		baseURL   string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the sales value of the latest order",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			model, err := predict.LoadModel(modelPath)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}

			client := predict.NewClient(baseURL, logger)
			features, err := client.LatestOrderFeatures(cmd.Context())
			if err != nil {
				return err
			}

			sample := predict.SampleFromFeatures(features)
			for _, label := range model.UnknownLabels(sample) {
				logger.WithField("label", label).Warn("Value not seen at training time, encoding as class 0")
			}

			fmt.Printf("Predicted sales value for order %s: %.2f\n", features.Order.ID, model.Predict(sample))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "trained_model.json", "path to the trained model file")
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8080", "base URL of the running order service")
	return cmd
}

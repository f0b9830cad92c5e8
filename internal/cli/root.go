// Package cli implements the salesctl command tree: the offline companions
// to the order service (dataset seeding, model training, sales prediction).
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Offline tooling for the order-management service",
		Long:          "salesctl seeds the record store from the sales dataset, trains the sales regression model and predicts the sales value of the latest order.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newTrainCmd())
	cmd.AddCommand(newPredictCmd())
	return cmd
}

func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

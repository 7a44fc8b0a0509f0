package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quanta",
	Short: "Quanta - volume and price breakout analysis",
	Long: `Quanta fetches daily price history for a ticker, finds days where both
volume and price broke out, and simulates buying on each breakout day and
selling a fixed number of business days later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

// loadConfig reads --config (or defaults plus environment) and validates it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// userMessage renders one line per error kind
func userMessage(err error) string {
	var ce *core.Error
	switch {
	case errors.Is(err, core.ErrNoData):
		return "No data found for the given ticker and date range."
	case errors.Is(err, core.ErrDataUnavailable) && errors.As(err, &ce):
		// Transport failures carry no provider message; show the cause instead
		if ce.Message == core.ErrDataUnavailable.Message && ce.Cause != nil {
			return "Error fetching data: " + ce.Cause.Error()
		}
		return "Error fetching data: " + ce.Message
	default:
		return "An error occurred: " + err.Error()
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/quanta/internal/app"
	"github.com/newthinker/quanta/internal/logger"
	"github.com/newthinker/quanta/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// autoOutput is the --output value when the flag is given without a file name
const autoOutput = "auto"

var (
	analyzeSymbol          string
	analyzeFrom            string
	analyzeTo              string
	analyzeVolumeThreshold float64
	analyzePriceThreshold  float64
	analyzeHoldingPeriod   int
	analyzeProvider        string
	analyzeFormat          string
	analyzeOutput          string
	analyzeSave            bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the breakout analysis for a ticker",
	Long: `Fetch daily bars for a ticker, flag days where volume exceeds its 20-day
average by the volume threshold and the close rose by more than the price
threshold, and report one simulated trade per breakout day.`,
	Example: `  quanta analyze --symbol IBM
  quanta analyze --symbol AAPL --from 2023-01-01 --holding-period 5 --format json
  quanta analyze --symbol MSFT --format csv --output`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeSymbol, "symbol", "s", "", "Ticker symbol (required)")
	f.StringVar(&analyzeFrom, "from", "2024-01-01", "Start date YYYY-MM-DD")
	f.StringVar(&analyzeTo, "to", "", "End date YYYY-MM-DD (default today)")
	f.Float64Var(&analyzeVolumeThreshold, "volume-threshold", 200.0, "Volume breakout threshold, percent of the 20-day average")
	f.Float64Var(&analyzePriceThreshold, "price-threshold", 2.0, "Price breakout threshold, percent daily change")
	f.IntVar(&analyzeHoldingPeriod, "holding-period", 10, "Business days to hold each trade")
	f.StringVarP(&analyzeProvider, "provider", "p", "", "Data provider: alphavantage, yahoo, alpaca or eastmoney (default from config)")
	f.StringVarP(&analyzeFormat, "format", "f", report.FormatTable, "Output format: table, json, yaml or csv")
	f.StringVarP(&analyzeOutput, "output", "o", "", "Write output to file; without a value uses {ticker}_strategy_analysis.{ext}")
	f.BoolVar(&analyzeSave, "save", false, "Save the CSV report to export storage")

	f.Lookup("output").NoOptDefVal = autoOutput
	analyzeCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := app.Input{
		Symbol:   analyzeSymbol,
		End:      analyzeTo,
		Provider: analyzeProvider,
	}
	// Unset flags fall through to configured defaults
	flags := cmd.Flags()
	if flags.Changed("from") {
		in.Start = analyzeFrom
	}
	if flags.Changed("volume-threshold") {
		in.VolumeThreshold = &analyzeVolumeThreshold
	}
	if flags.Changed("price-threshold") {
		in.PriceThreshold = &analyzePriceThreshold
	}
	if flags.Changed("holding-period") {
		in.HoldingPeriod = &analyzeHoldingPeriod
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, log)
	result, err := a.Analyze(ctx, in)
	if err != nil {
		return err
	}

	// Render fully first so a failure never leaves partial output
	var buf bytes.Buffer
	if err := report.Write(&buf, analyzeFormat, result); err != nil {
		return err
	}

	if analyzeOutput == "" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		path := outputPath(analyzeOutput, result.Symbol, analyzeFormat)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", path)
	}

	if analyzeSave {
		path, err := a.Save(ctx, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report archived at %s\n", path)
	}

	log.Debug("analyze finished", zap.String("run_id", result.RunID))
	return nil
}

// outputPath resolves --output. The bare flag names the file after the ticker.
func outputPath(output, symbol, format string) string {
	if output != autoOutput {
		return output
	}
	switch format {
	case report.FormatCSV:
		return report.Filename(symbol)
	case report.FormatJSON, report.FormatYAML:
		return symbol + "_strategy_analysis." + format
	default:
		return symbol + "_strategy_analysis.txt"
	}
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chartpatterns/internal/dataprovider"
	"chartpatterns/internal/models"
	"chartpatterns/internal/pipeline"
	"chartpatterns/internal/sink"
)

// ErrInvalidArgs marks a command-line validation failure, distinct
// from a run-time pipeline error. Main maps it to exit code 2.
var ErrInvalidArgs = errors.New("invalid arguments")

// newPatternsCmd is the single operational command: scan the
// requested (ticker, interval, strategy) tuples for the requested
// pattern families and write accepted candidates to CSV.
func newPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan price series for chart patterns",
		Example: `  patternminer scan --tickers RELIANCE,TCS --intervals 1d --strategies swing_short --output out/run1
  patternminer scan --tickers INFY --intervals 1d,1h --strategies swing_long --patterns HNS --data-dir ./data --output out/infy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			tickers, _ := cmd.Flags().GetStringSlice("tickers")
			intervals, _ := cmd.Flags().GetStringSlice("intervals")
			strategies, _ := cmd.Flags().GetStringSlice("strategies")
			period, _ := cmd.Flags().GetString("period")
			patternsFlag, _ := cmd.Flags().GetString("patterns")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			outPath, _ := cmd.Flags().GetString("output")

			if len(tickers) == 0 || len(intervals) == 0 || len(strategies) == 0 {
				return fmt.Errorf("%w: --tickers, --intervals and --strategies are all required", ErrInvalidArgs)
			}
			families, err := parseFamilies(patternsFlag)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
			}

			tuples := buildTuples(tickers, intervals, strategies, period)

			driver := &pipeline.Driver{
				Provider: dataprovider.NewCSVProvider(dataDir),
				Sink:     sink.NewCSVSink(outPath),
				Config:   *app.Config,
				Logger:   app.Logger,
				Families: families,
			}

			output.Info("scanning %d tuples across %d pattern families", len(tuples), len(families))
			if err := driver.Run(cmd.Context(), tuples); err != nil {
				output.Error("run failed: %v", err)
				return err
			}
			output.Success("wrote results to %s_*.csv", strings.TrimSuffix(outPath, ".csv"))
			return nil
		},
	}

	cmd.Flags().StringSlice("tickers", nil, "comma-separated list of tickers to scan")
	cmd.Flags().StringSlice("intervals", nil, "comma-separated list of timeframes (e.g. 1d,1h)")
	cmd.Flags().StringSlice("strategies", nil, "comma-separated list of configured zigzag strategies")
	cmd.Flags().String("period", "", "trailing window to load (e.g. 2y, 180d); empty loads the whole file")
	cmd.Flags().String("patterns", "ALL", "pattern families to scan: HNS, DTB, TTB, or ALL")
	cmd.Flags().String("data-dir", ".", "directory holding <ticker>_<interval>.csv price files")
	cmd.Flags().String("output", "patterns", "output path prefix for the per-family CSV files")

	return cmd
}

func parseFamilies(flag string) ([]models.Family, error) {
	if strings.EqualFold(flag, "ALL") || flag == "" {
		return []models.Family{models.FamilyHNS, models.FamilyDTB, models.FamilyTTB}, nil
	}
	var out []models.Family
	for _, name := range strings.Split(flag, ",") {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "HNS":
			out = append(out, models.FamilyHNS)
		case "DTB":
			out = append(out, models.FamilyDTB)
		case "TTB":
			out = append(out, models.FamilyTTB)
		default:
			return nil, fmt.Errorf("unknown pattern family %q (want HNS, DTB, TTB, or ALL)", name)
		}
	}
	return out, nil
}

func buildTuples(tickers, intervals, strategies []string, period string) []pipeline.Tuple {
	tuples := make([]pipeline.Tuple, 0, len(tickers)*len(intervals)*len(strategies))
	for _, ticker := range tickers {
		for _, interval := range intervals {
			for _, strategy := range strategies {
				tuples = append(tuples, pipeline.Tuple{
					Ticker: ticker, Interval: interval, Strategy: strategy, Period: period,
				})
			}
		}
	}
	return tuples
}

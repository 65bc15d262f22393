// Package dataprovider implements the PriceSeriesProvider contract
// (spec §6) backed by per-(ticker, interval) OHLCV CSV files on disk.
package dataprovider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"chartpatterns/internal/models"
	"chartpatterns/pkg/utils"
)

// barRow is the on-disk shape of one OHLCV line.
type barRow struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    int64   `csv:"volume"`
}

// CSVProvider loads PriceSeries from files named
// "<dir>/<ticker>_<interval>.csv". Period is a trailing-window spec
// ("90d", "2y", or "" for the whole file) applied after loading.
type CSVProvider struct {
	Dir   string
	Retry utils.RetryConfig
}

// NewCSVProvider returns a provider rooted at dir, using the
// teacher's default backoff policy for the read at the I/O boundary.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{Dir: dir, Retry: utils.DefaultRetryConfig()}
}

// Fetch implements pipeline.PriceSeriesProvider.
func (p *CSVProvider) Fetch(ctx context.Context, ticker, interval, period string) (models.PriceSeries, error) {
	path := filepath.Join(p.Dir, fmt.Sprintf("%s_%s.csv", ticker, interval))

	series, err := utils.RetryWithResult(ctx, p.Retry, func() (models.PriceSeries, error) {
		return p.load(path, ticker, interval)
	})
	if err != nil {
		return models.PriceSeries{}, err
	}

	series.Bars = trimToPeriod(series.Bars, period)
	return series, nil
}

func (p *CSVProvider) load(path, ticker, interval string) (models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []barRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return models.PriceSeries{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, r := range rows {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("%s: %w", path, err)
		}
		bars = append(bars, models.Bar{
			Timestamp: ts, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	return models.PriceSeries{Ticker: ticker, Interval: interval, Bars: bars}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// trimToPeriod keeps only the trailing window named by period (a
// digit count plus a d/mo/y unit). An empty or unparsable period keeps
// the whole series.
func trimToPeriod(bars []models.Bar, period string) []models.Bar {
	if period == "" || len(bars) == 0 {
		return bars
	}
	d, ok := parsePeriod(period)
	if !ok {
		return bars
	}
	cutoff := bars[len(bars)-1].Timestamp.Add(-d)
	for i, b := range bars {
		if !b.Timestamp.Before(cutoff) {
			return bars[i:]
		}
	}
	return bars
}

func parsePeriod(period string) (time.Duration, bool) {
	period = strings.TrimSpace(period)
	var n int
	var unit string
	if _, err := fmt.Sscanf(period, "%d%s", &n, &unit); err != nil {
		return 0, false
	}
	day := 24 * time.Hour
	switch strings.ToLower(unit) {
	case "d":
		return time.Duration(n) * day, true
	case "mo":
		return time.Duration(n) * 30 * day, true
	case "y":
		return time.Duration(n) * 365 * day, true
	default:
		return 0, false
	}
}

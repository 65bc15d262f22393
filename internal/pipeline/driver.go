// Package pipeline is the driver (C7): for each requested
// (ticker, interval, strategy) tuple, fetch a series, enrich it,
// extract pivots, enumerate and validate candidates per family,
// deduplicate, and hand the survivors to a sink. Tuples are
// independent and embarrassingly parallel; the only suspension point
// is the fetch at the I/O boundary (spec §5).
package pipeline

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"chartpatterns/internal/analysis/candidates"
	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/validators"
	"chartpatterns/internal/analysis/zigzag"
	"chartpatterns/internal/config"
	cperrors "chartpatterns/internal/errors"
	"chartpatterns/internal/logging"
	"chartpatterns/internal/models"
)

// PriceSeriesProvider is the external producer boundary (spec §6): the
// only suspension point in the whole pipeline.
type PriceSeriesProvider interface {
	Fetch(ctx context.Context, ticker, interval, period string) (models.PriceSeries, error)
}

// RecordSink is the external consumer boundary (spec §6).
type RecordSink interface {
	Emit(record models.PatternRecord) error
	Finalize() error
}

// Tuple is one requested (ticker, interval, strategy) unit of work.
type Tuple struct {
	Ticker   string
	Interval string
	Strategy string
	Period   string
}

// Driver wires the provider, sink, and configuration together. A
// Driver holds no mutable state beyond what's set at construction and
// is safe to reuse across runs.
type Driver struct {
	Provider    PriceSeriesProvider
	Sink        RecordSink
	Config      config.Config
	Logger      zerolog.Logger
	Families    []models.Family
	Concurrency int // 0 or less means at most 8 goroutines
}

// Run processes every tuple, optionally in parallel, and emits every
// accepted record in tuple order. Per-tuple failures (FetchError,
// InsufficientData, PivotStarvation, CandidateRejected) are recovered
// and logged; a SinkError aborts the run (spec §7).
func (d *Driver) Run(ctx context.Context, tuples []Tuple) error {
	results := make([][]models.PatternRecord, len(tuples))

	p := pool.New().WithMaxGoroutines(maxGoroutines(d.Concurrency))
	for i, tuple := range tuples {
		i, tuple := i, tuple
		p.Go(func() {
			records, err := d.processTuple(ctx, tuple)
			if err != nil {
				d.logTupleError(tuple, err)
				return
			}
			results[i] = records
		})
	}
	p.Wait()

	var sinkErr error
	for _, records := range results {
		for _, record := range records {
			if err := d.Sink.Emit(record); err != nil {
				sinkErr = multierr.Append(sinkErr, cperrors.NewSinkError("emit", err))
			}
		}
	}
	if sinkErr != nil {
		return sinkErr
	}
	if err := d.Sink.Finalize(); err != nil {
		return cperrors.NewSinkError("finalize", err)
	}
	return nil
}

func maxGoroutines(n int) int {
	if n <= 0 {
		return 8
	}
	return n
}

func (d *Driver) logTupleError(tuple Tuple, err error) {
	logger := logging.WithTuple(d.Logger, tuple.Ticker, tuple.Interval, tuple.Strategy)
	var fetchErr *cperrors.FetchError
	if cperrors.As(err, &fetchErr) {
		logger.Warn().Err(err).Msg("fetch failed, skipping tuple")
		return
	}
	logger.Debug().Err(err).Msg("tuple yielded zero records")
}

// processTuple runs one tuple end to end and returns its accepted,
// deduplicated records in non-decreasing end_idx order.
func (d *Driver) processTuple(ctx context.Context, tuple Tuple) ([]models.PatternRecord, error) {
	series, err := d.Provider.Fetch(ctx, tuple.Ticker, tuple.Interval, tuple.Period)
	if err != nil {
		return nil, cperrors.NewFetchError(tuple.Ticker, tuple.Interval, err)
	}
	if series.Len() == 0 {
		return nil, nil
	}

	cols := indicators.Enrich(series, d.Config)

	deviation, ok := d.Config.ZigZag.Strategies[tuple.Strategy]
	if !ok {
		return nil, cperrors.Wrapf(cperrors.ErrConfigInvalid, "unknown strategy %q", tuple.Strategy)
	}
	pivots := zigzag.Extract(series.Closes(), deviation, d.Config.ZigZag)
	if len(pivots) < 7 {
		return nil, cperrors.ErrPivotStarvation
	}
	avgSeparation := averagePivotSeparation(pivots)

	var records []models.PatternRecord
	for _, family := range d.Families {
		switch family {
		case models.FamilyHNS:
			records = append(records, d.validateHNS(series, cols, pivots, avgSeparation, tuple.Strategy)...)
		case models.FamilyDTB:
			records = append(records, d.validateDTB(series, cols, pivots, avgSeparation, tuple.Strategy)...)
		case models.FamilyTTB:
			records = append(records, d.validateTTB(series, cols, pivots, avgSeparation, tuple.Strategy)...)
		}
	}

	records = dedup(records)
	sort.SliceStable(records, func(i, j int) bool { return records[i].EndIdx < records[j].EndIdx })
	return records, nil
}

func (d *Driver) validateHNS(series models.PriceSeries, cols indicators.Columns, pivots []models.Pivot, avgSeparation float64, strategy string) []models.PatternRecord {
	var out []models.PatternRecord
	for _, cand := range candidates.EnumerateHNS(pivots, d.Config.Recency.RecentPatternsLookbackCount) {
		record, accepted := validators.ValidateHNS(series, cols, cand, d.Config, avgSeparation, strategy)
		d.debugLog(models.FamilyHNS, record, accepted)
		if accepted {
			out = append(out, record)
		}
	}
	return out
}

func (d *Driver) validateDTB(series models.PriceSeries, cols indicators.Columns, pivots []models.Pivot, avgSeparation float64, strategy string) []models.PatternRecord {
	var out []models.PatternRecord
	for _, cand := range candidates.EnumerateDTB(pivots, d.Config.Recency.RecentPatternsLookbackCount) {
		prior := priorPivots(pivots, cand.Pivots[0].Idx)
		record, accepted := validators.ValidateDTB(series, cols, cand, d.Config, avgSeparation, prior, strategy)
		d.debugLog(models.FamilyDTB, record, accepted)
		if accepted {
			out = append(out, record)
		}
	}
	return out
}

func (d *Driver) validateTTB(series models.PriceSeries, cols indicators.Columns, pivots []models.Pivot, avgSeparation float64, strategy string) []models.PatternRecord {
	var out []models.PatternRecord
	for _, cand := range candidates.EnumerateTTB(pivots, d.Config.Recency.RecentPatternsLookbackCount) {
		prior := priorPivots(pivots, cand.Pivots[0].Idx)
		record, accepted := validators.ValidateTTB(series, cols, cand, d.Config, avgSeparation, prior, strategy)
		d.debugLog(models.FamilyTTB, record, accepted)
		if accepted {
			out = append(out, record)
		}
	}
	return out
}

func (d *Driver) debugLog(family models.Family, record models.PatternRecord, accepted bool) {
	enabled := false
	switch family {
	case models.FamilyHNS:
		enabled = d.Config.Debug.HNSDebug
	case models.FamilyDTB:
		enabled = d.Config.Debug.DTBDebug
	case models.FamilyTTB:
		enabled = d.Config.Debug.TTBDebug
	}
	if !enabled {
		return
	}
	logger := logging.NewFamilyDebugLogger(d.Config.Debug.Dir, string(family))
	logger.Debug().
		Str("ticker", record.Identity.Ticker).
		Str("interval", record.Identity.Interval).
		Str("strategy", record.Identity.Strategy).
		Str("kind", string(record.Identity.Kind)).
		Int("key_idx", record.KeyIdx).
		Int("score_total", record.ScoreTotal).
		Bool("accepted", accepted).
		Interface("valid", record.Valid).
		Msg("candidate evaluated")
}

// priorPivots returns up to three raw pivots strictly preceding
// beforeIdx, used by trend_context.
func priorPivots(pivots []models.Pivot, beforeIdx int) []models.Pivot {
	cut := 0
	for i, p := range pivots {
		if p.Idx >= beforeIdx {
			break
		}
		cut = i + 1
	}
	from := cut - 3
	if from < 0 {
		from = 0
	}
	return pivots[from:cut]
}

func averagePivotSeparation(pivots []models.Pivot) float64 {
	if len(pivots) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(pivots); i++ {
		total += pivots[i].Idx - pivots[i-1].Idx
	}
	return float64(total) / float64(len(pivots)-1)
}

// dedup keeps, for each identity key, the highest score_total, breaking
// ties by later end_idx then stable input order (spec §4.7, §8
// invariant 6).
func dedup(records []models.PatternRecord) []models.PatternRecord {
	type key struct {
		ticker, interval, strategy string
		kind                       models.Kind
		keyIdx                     int
	}
	best := make(map[key]int, len(records))
	order := make([]key, 0, len(records))

	for i, r := range records {
		k := key{r.Identity.Ticker, r.Identity.Interval, r.Identity.Strategy, r.Identity.Kind, r.KeyIdx}
		prevIdx, seen := best[k]
		if !seen {
			best[k] = i
			order = append(order, k)
			continue
		}
		if wins(r, records[prevIdx]) {
			best[k] = i
		}
	}

	out := make([]models.PatternRecord, 0, len(order))
	for _, k := range order {
		out = append(out, records[best[k]])
	}
	return out
}

func wins(candidate, incumbent models.PatternRecord) bool {
	if candidate.ScoreTotal != incumbent.ScoreTotal {
		return candidate.ScoreTotal > incumbent.ScoreTotal
	}
	return candidate.EndIdx > incumbent.EndIdx
}

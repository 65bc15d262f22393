// Package sink implements the RecordSink contract (spec §6): a CSV
// writer with one file per pattern family, since each family's
// mandatory/optional rule set — and therefore its column layout —
// differs.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"

	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// hnsRow is the CSV row shape for head-and-shoulders records. Field
// order matches struct field order, which gocsv preserves as column
// order.
type hnsRow struct {
	Ticker    string `csv:"ticker"`
	Timeframe string `csv:"timeframe"`
	Strategy  string `csv:"strategy"`
	Tipo      string `csv:"padrao_tipo"`
	ScoreTotal int   `csv:"score_total"`

	ValidStructure            bool `csv:"valid_structure"`
	ValidHeadExtremity        bool `csv:"valid_head_extremity"`
	ValidShoulderSymmetry     bool `csv:"valid_shoulder_symmetry"`
	ValidNecklineFlatness     bool `csv:"valid_neckline_flatness"`
	ValidBaseTrend            bool `csv:"valid_base_trend"`
	ValidBreakoutFound        bool `csv:"valid_breakout_found"`
	ValidNecklineRetest       bool `csv:"valid_neckline_retest"`
	ValidRSIDivergence        bool `csv:"valid_rsi_divergence"`
	ValidMACDSignalCross      bool `csv:"valid_macd_signal_cross"`
	ValidMACDHistDivergence   bool `csv:"valid_macd_histogram_divergence"`
	ValidStochasticConfirm    bool `csv:"valid_stochastic_confirmation"`
	ValidOBVDivergence        bool `csv:"valid_obv_divergence"`
	ValidVolumeBreakout       bool `csv:"valid_volume_breakout"`
	ValidVolumeProfile        bool `csv:"valid_volume_profile"`

	pivotCols

	Tipo2 string `csv:"tipo"`
	Score int    `csv:"score"`
	Pivos string `csv:"pivos"`
}

// dtbRow is the CSV row shape for double top/bottom records.
type dtbRow struct {
	Ticker     string `csv:"ticker"`
	Timeframe  string `csv:"timeframe"`
	Strategy   string `csv:"strategy"`
	Tipo       string `csv:"padrao_tipo"`
	ScoreTotal int    `csv:"score_total"`

	ValidStructure          bool `csv:"valid_structure"`
	ValidContextExtremityP1 bool `csv:"valid_context_extremity_p1"`
	ValidContextExtremityP3 bool `csv:"valid_context_extremity_p3"`
	ValidContextoTendencia  bool `csv:"valid_contexto_tendencia"`
	ValidSimetriaExtremos   bool `csv:"valid_simetria_extremos"`
	ValidNecklineFlatness   bool `csv:"valid_neckline_flatness"`
	ValidBreakoutFound      bool `csv:"valid_breakout_found"`
	ValidNecklineRetestP4   bool `csv:"valid_neckline_retest_p4"`
	ValidRSIDivergence      bool `csv:"valid_rsi_divergence"`
	ValidMACDSignalCross    bool `csv:"valid_macd_signal_cross"`
	ValidMACDHistDivergence bool `csv:"valid_macd_histogram_divergence"`
	ValidStochasticConfirm  bool `csv:"valid_stochastic_confirmation"`
	ValidOBVDivergence      bool `csv:"valid_obv_divergence"`
	ValidVolumeBreakout     bool `csv:"valid_volume_breakout"`
	ValidVolumeProfile      bool `csv:"valid_volume_profile"`

	P0Idx   int     `csv:"p0_idx"`
	P0Preco float64 `csv:"p0_preco"`
	P0Tipo  string  `csv:"p0_tipo"`
	P1Idx   int     `csv:"p1_idx"`
	P1Preco float64 `csv:"p1_preco"`
	P1Tipo  string  `csv:"p1_tipo"`
	P2Idx   int     `csv:"p2_idx"`
	P2Preco float64 `csv:"p2_preco"`
	P2Tipo  string  `csv:"p2_tipo"`
	P3Idx   int     `csv:"p3_idx"`
	P3Preco float64 `csv:"p3_preco"`
	P3Tipo  string  `csv:"p3_tipo"`
	P4Idx   int     `csv:"p4_idx"`
	P4Preco float64 `csv:"p4_preco"`
	P4Tipo  string  `csv:"p4_tipo"`

	Tipo2 string `csv:"tipo"`
	Score int    `csv:"score"`
	Pivos string `csv:"pivos"`
}

// ttbRow is the CSV row shape for triple top/bottom records.
type ttbRow struct {
	Ticker     string `csv:"ticker"`
	Timeframe  string `csv:"timeframe"`
	Strategy   string `csv:"strategy"`
	Tipo       string `csv:"padrao_tipo"`
	ScoreTotal int    `csv:"score_total"`

	ValidStructure          bool `csv:"valid_structure"`
	ValidContextExtremityP1 bool `csv:"valid_context_extremity_p1"`
	ValidContextoTendencia  bool `csv:"valid_contexto_tendencia"`
	ValidSimetriaExtremos   bool `csv:"valid_simetria_extremos"`
	ValidNecklineFlatness   bool `csv:"valid_neckline_flatness"`
	ValidBreakoutFound      bool `csv:"valid_breakout_found"`
	ValidNecklineRetestP6   bool `csv:"valid_neckline_retest_p6"`
	ValidRSIDivergence      bool `csv:"valid_rsi_divergence"`
	ValidMACDSignalCross    bool `csv:"valid_macd_signal_cross"`
	ValidMACDHistDivergence bool `csv:"valid_macd_histogram_divergence"`
	ValidStochasticConfirm  bool `csv:"valid_stochastic_confirmation"`
	ValidOBVDivergence      bool `csv:"valid_obv_divergence"`
	ValidVolumeBreakout     bool `csv:"valid_volume_breakout"`
	ValidVolumeProfile      bool `csv:"valid_volume_profile"`

	pivotCols

	Tipo2 string `csv:"tipo"`
	Score int    `csv:"score"`
	Pivos string `csv:"pivos"`
}

// pivotCols is the shared p0..p6 column block used by both the HNS and
// TTB (7-pivot) row shapes.
type pivotCols struct {
	P0Idx   int     `csv:"p0_idx"`
	P0Preco float64 `csv:"p0_preco"`
	P0Tipo  string  `csv:"p0_tipo"`
	P1Idx   int     `csv:"p1_idx"`
	P1Preco float64 `csv:"p1_preco"`
	P1Tipo  string  `csv:"p1_tipo"`
	P2Idx   int     `csv:"p2_idx"`
	P2Preco float64 `csv:"p2_preco"`
	P2Tipo  string  `csv:"p2_tipo"`
	P3Idx   int     `csv:"p3_idx"`
	P3Preco float64 `csv:"p3_preco"`
	P3Tipo  string  `csv:"p3_tipo"`
	P4Idx   int     `csv:"p4_idx"`
	P4Preco float64 `csv:"p4_preco"`
	P4Tipo  string  `csv:"p4_tipo"`
	P5Idx   int     `csv:"p5_idx"`
	P5Preco float64 `csv:"p5_preco"`
	P5Tipo  string  `csv:"p5_tipo"`
	P6Idx   int     `csv:"p6_idx"`
	P6Preco float64 `csv:"p6_preco"`
	P6Tipo  string  `csv:"p6_tipo"`
}

func newPivotCols(pivots []models.PivotField) pivotCols {
	var c pivotCols
	set := func(idx int, iIdx *int, price *float64, tipo *string) {
		if idx >= len(pivots) {
			return
		}
		*iIdx = pivots[idx].Idx
		*price = pivots[idx].Price
		*tipo = pivots[idx].Kind.String()
	}
	set(0, &c.P0Idx, &c.P0Preco, &c.P0Tipo)
	set(1, &c.P1Idx, &c.P1Preco, &c.P1Tipo)
	set(2, &c.P2Idx, &c.P2Preco, &c.P2Tipo)
	set(3, &c.P3Idx, &c.P3Preco, &c.P3Tipo)
	set(4, &c.P4Idx, &c.P4Preco, &c.P4Tipo)
	set(5, &c.P5Idx, &c.P5Preco, &c.P5Tipo)
	set(6, &c.P6Idx, &c.P6Preco, &c.P6Tipo)
	return c
}

// CSVSink accumulates accepted records in memory, grouped by family,
// and flushes one file per non-empty family on Finalize. basePath
// without its extension becomes the shared prefix: "<base>_hns.csv",
// "<base>_dtb.csv", "<base>_ttb.csv".
type CSVSink struct {
	basePath string

	mu   sync.Mutex
	hns  []hnsRow
	dtb  []dtbRow
	ttb  []ttbRow
}

// NewCSVSink returns a sink writing to the given base path.
func NewCSVSink(basePath string) *CSVSink {
	return &CSVSink{basePath: strings.TrimSuffix(basePath, ".csv")}
}

// Emit appends one record to its family's in-memory buffer. Safe to
// call concurrently, though the driver currently emits sequentially
// after all tuples complete.
func (s *CSVSink) Emit(record models.PatternRecord) error {
	pivos, err := json.Marshal(record.Pivots)
	if err != nil {
		return fmt.Errorf("marshaling pivots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch record.Family {
	case models.FamilyHNS:
		s.hns = append(s.hns, hnsRow{
			Ticker: record.Identity.Ticker, Timeframe: record.Identity.Interval,
			Strategy: record.Identity.Strategy, Tipo: string(record.Identity.Kind),
			ScoreTotal: record.ScoreTotal,
			ValidStructure: record.Valid[config.RuleStructure], ValidHeadExtremity: record.Valid[config.RuleHeadExtremity],
			ValidShoulderSymmetry: record.Valid[config.RuleShoulderSymmetry], ValidNecklineFlatness: record.Valid[config.RuleNecklineFlatness],
			ValidBaseTrend: record.Valid[config.RuleBaseTrend], ValidBreakoutFound: record.Valid[config.RuleBreakoutFound],
			ValidNecklineRetest: record.Valid[config.RuleNecklineRetest], ValidRSIDivergence: record.Valid[config.RuleRSIDivergence],
			ValidMACDSignalCross: record.Valid[config.RuleMACDSignalCross], ValidMACDHistDivergence: record.Valid[config.RuleMACDHistogramDivergence],
			ValidStochasticConfirm: record.Valid[config.RuleStochasticConfirmation], ValidOBVDivergence: record.Valid[config.RuleOBVDivergence],
			ValidVolumeBreakout: record.Valid[config.RuleVolumeBreakout], ValidVolumeProfile: record.Valid[config.RuleVolumeProfile],
			pivotCols: newPivotCols(record.Pivots),
			Tipo2:     string(record.Tipo), Score: record.Score, Pivos: string(pivos),
		})
	case models.FamilyDTB:
		pc := newPivotCols(record.Pivots)
		s.dtb = append(s.dtb, dtbRow{
			Ticker: record.Identity.Ticker, Timeframe: record.Identity.Interval,
			Strategy: record.Identity.Strategy, Tipo: string(record.Identity.Kind),
			ScoreTotal: record.ScoreTotal,
			ValidStructure: record.Valid[config.RuleStructure], ValidContextExtremityP1: record.Valid[config.RuleContextExtremityP1],
			ValidContextExtremityP3: record.Valid[config.RuleContextExtremityP3], ValidContextoTendencia: record.Valid[config.RuleContextoTendencia],
			ValidSimetriaExtremos: record.Valid[config.RuleSimetriaExtremos], ValidNecklineFlatness: record.Valid[config.RuleNecklineFlatness],
			ValidBreakoutFound: record.Valid[config.RuleBreakoutFound], ValidNecklineRetestP4: record.Valid[config.RuleNecklineRetestP4],
			ValidRSIDivergence: record.Valid[config.RuleRSIDivergence], ValidMACDSignalCross: record.Valid[config.RuleMACDSignalCross],
			ValidMACDHistDivergence: record.Valid[config.RuleMACDHistogramDivergence], ValidStochasticConfirm: record.Valid[config.RuleStochasticConfirmation],
			ValidOBVDivergence: record.Valid[config.RuleOBVDivergence], ValidVolumeBreakout: record.Valid[config.RuleVolumeBreakout],
			ValidVolumeProfile: record.Valid[config.RuleVolumeProfile],
			P0Idx: pc.P0Idx, P0Preco: pc.P0Preco, P0Tipo: pc.P0Tipo,
			P1Idx: pc.P1Idx, P1Preco: pc.P1Preco, P1Tipo: pc.P1Tipo,
			P2Idx: pc.P2Idx, P2Preco: pc.P2Preco, P2Tipo: pc.P2Tipo,
			P3Idx: pc.P3Idx, P3Preco: pc.P3Preco, P3Tipo: pc.P3Tipo,
			P4Idx: pc.P4Idx, P4Preco: pc.P4Preco, P4Tipo: pc.P4Tipo,
			Tipo2: string(record.Tipo), Score: record.Score, Pivos: string(pivos),
		})
	case models.FamilyTTB:
		s.ttb = append(s.ttb, ttbRow{
			Ticker: record.Identity.Ticker, Timeframe: record.Identity.Interval,
			Strategy: record.Identity.Strategy, Tipo: string(record.Identity.Kind),
			ScoreTotal: record.ScoreTotal,
			ValidStructure: record.Valid[config.RuleStructure], ValidContextExtremityP1: record.Valid[config.RuleContextExtremityP1],
			ValidContextoTendencia: record.Valid[config.RuleContextoTendencia], ValidSimetriaExtremos: record.Valid[config.RuleSimetriaExtremos],
			ValidNecklineFlatness: record.Valid[config.RuleNecklineFlatness], ValidBreakoutFound: record.Valid[config.RuleBreakoutFound],
			ValidNecklineRetestP6: record.Valid[config.RuleNecklineRetestP6], ValidRSIDivergence: record.Valid[config.RuleRSIDivergence],
			ValidMACDSignalCross: record.Valid[config.RuleMACDSignalCross], ValidMACDHistDivergence: record.Valid[config.RuleMACDHistogramDivergence],
			ValidStochasticConfirm: record.Valid[config.RuleStochasticConfirmation], ValidOBVDivergence: record.Valid[config.RuleOBVDivergence],
			ValidVolumeBreakout: record.Valid[config.RuleVolumeBreakout], ValidVolumeProfile: record.Valid[config.RuleVolumeProfile],
			pivotCols: newPivotCols(record.Pivots),
			Tipo2:     string(record.Tipo), Score: record.Score, Pivos: string(pivos),
		})
	default:
		return fmt.Errorf("unknown pattern family %q", record.Family)
	}
	return nil
}

// Finalize writes one CSV file per family that received at least one
// record. An empty run produces no files, matching the teacher's
// convention of never writing an empty artifact.
func (s *CSVSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeRows(s.basePath+"_hns.csv", s.hns); err != nil {
		return err
	}
	if err := writeRows(s.basePath+"_dtb.csv", s.dtb); err != nil {
		return err
	}
	if err := writeRows(s.basePath+"_ttb.csv", s.ttb); err != nil {
		return err
	}
	return nil
}

func writeRows[T any](path string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

package validators

import (
	"math"
	"testing"
	"time"

	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

func TestEvaluateScoreDecomposition(t *testing.T) {
	weights := map[string]int{"a": 10, "b": 20, "c": 5}
	outcomes := []ruleOutcome{
		{"a", rules.Result{Pass: true}, true},
		{"b", rules.Result{Pass: false}, false},
		{"c", rules.Result{Pass: true}, false},
	}
	ev := evaluate(outcomes, weights)
	if ev.score != 15 {
		t.Fatalf("expected score 10+5=15, got %d", ev.score)
	}
	if !ev.allMandatory {
		t.Fatalf("expected the only mandatory rule to have passed")
	}
}

func TestAcceptGateRequiresMandatoryAndScore(t *testing.T) {
	ev := evaluation{allMandatory: false, score: 1000}
	if accept(ev, 10) {
		t.Fatalf("expected rejection when a mandatory rule failed regardless of score")
	}
	ev = evaluation{allMandatory: true, score: 5}
	if accept(ev, 10) {
		t.Fatalf("expected rejection when score is below the minimum")
	}
	ev = evaluation{allMandatory: true, score: 10}
	if !accept(ev, 10) {
		t.Fatalf("expected acceptance at exactly the minimum score")
	}
}

func dtbSeries(closes []float64) models.PriceSeries {
	bars := make([]models.Bar, len(closes))
	base := time.Now().Add(-time.Duration(len(closes)) * time.Hour)
	for i, c := range closes {
		bars[i] = models.Bar{Timestamp: base.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return models.PriceSeries{Ticker: "DT1", Interval: "1d", Bars: bars}
}

func flatColumns(n int) indicators.Columns {
	nan := make([]float64, n)
	for i := range nan {
		nan[i] = math.NaN()
	}
	return indicators.Columns{
		RSIClose: nan, RSIHigh: nan, RSILow: nan,
		MACD: nan, MACDSignal: nan, MACDHist: nan,
		StochK: nan, StochD: nan,
		OBV: make([]float64, n), ATR: nan,
	}
}

// hnsCloses traces a canonical inverse head-and-shoulders: a peak
// base at idx0, two equal-depth shoulder valleys at 100 (idx10/50), a
// head valley at 90 (idx30), two near-flat neckline peaks at 115/116
// (idx20/40), a bullish breakout above the neckline at idx54, and a
// retest back down to the neckline at idx60.
func hnsCloses() []float64 {
	return []float64{
		130, 127, 124, 121, 118, 115, 112, 109, 106, 103, 100,
		101.5, 103, 104.5, 106, 107.5, 109, 110.5, 112, 113.5, 115,
		112.5, 110, 107.5, 105, 102.5, 100, 97.5, 95, 92.5, 90,
		92.6, 95.2, 97.8, 100.4, 103, 105.6, 108.2, 110.8, 113.4, 116,
		114.4, 112.8, 111.2, 109.6, 108, 106.4, 104.8, 103.2, 101.6, 100,
		104, 108, 112, 116, 120,
		119.2, 118.4, 117.6, 116.8, 116,
	}
}

// TestValidateHNSAcceptsCanonicalInverse models the S1 scenario: a
// canonical inverse head-and-shoulders with every mandatory rule
// satisfied is accepted, with kind OCOI.
func TestValidateHNSAcceptsCanonicalInverse(t *testing.T) {
	closes := hnsCloses()
	series := dtbSeries(closes)
	cfg := config.Default()

	cand := models.HNSCandidate{
		Kind: models.KindOCOI,
		Pivots: [7]models.Pivot{
			{Idx: 0, Price: 130, Kind: models.Peak},
			{Idx: 10, Price: 100, Kind: models.Valley},
			{Idx: 20, Price: 115, Kind: models.Peak},
			{Idx: 30, Price: 90, Kind: models.Valley},
			{Idx: 40, Price: 116, Kind: models.Peak},
			{Idx: 50, Price: 100, Kind: models.Valley},
			{Idx: 60, Price: 116, Kind: models.Peak},
		},
		BreakoutIdx: -1,
	}

	cols := flatColumns(len(closes))
	record, accepted := ValidateHNS(series, cols, cand, cfg, 10, "swing_short")

	if !accepted {
		t.Fatalf("expected acceptance of a canonical inverse H&S (S1 scenario), got rejection with flags %+v", record.Valid)
	}
	if record.Identity.Kind != models.KindOCOI {
		t.Fatalf("expected kind=OCOI, got %v", record.Identity.Kind)
	}
	for _, rule := range []string{
		config.RuleStructure, config.RuleHeadExtremity, config.RuleShoulderSymmetry,
		config.RuleNecklineFlatness, config.RuleBaseTrend, config.RuleBreakoutFound,
		config.RuleNecklineRetest,
	} {
		if !record.Valid[rule] {
			t.Fatalf("expected mandatory rule %q to pass, flags: %+v", rule, record.Valid)
		}
	}
}

// TestValidateDTBRejectsFailedRetest models the S2 scenario: two peaks
// with a trough between, a breakout below the trough, and a price run
// away that never comes back within the neckline retest tolerance.
func TestValidateDTBRejectsFailedRetest(t *testing.T) {
	closes := []float64{108, 120, 108, 121, 108, 100, 95, 90, 85, 80, 75, 70, 65, 60, 55}
	series := dtbSeries(closes)
	cfg := config.Default()
	cfg.VolumeBreakout.SearchMaxBars = 3

	cand := models.DTBCandidate{
		Kind: models.KindDT,
		Pivots: [5]models.Pivot{
			{Idx: 1, Price: 120, Kind: models.Peak},
			{Idx: 2, Price: 108, Kind: models.Valley},
			{Idx: 3, Price: 121, Kind: models.Peak},
			{Idx: 5, Price: 100, Kind: models.Valley},
			{Idx: 14, Price: 55, Kind: models.Peak},
		},
		BreakoutIdx: -1,
	}

	cols := flatColumns(len(closes))
	record, accepted := ValidateDTB(series, cols, cand, cfg, 4, nil, "swing_short")

	if accepted {
		t.Fatalf("expected rejection when the retest pivot is outside the neckline tolerance")
	}
	if record.Valid[config.RuleNecklineRetestP4] {
		t.Fatalf("expected valid_neckline_retest_p4=false, got true")
	}
}

// TestValidateTTBRejectsSymmetryViolation models S3: three peaks at
// 100, 100, 140 — the third is far beyond the symmetry tolerance.
func TestValidateTTBRejectsSymmetryViolation(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 90
	}
	closes[5] = 100
	closes[10] = 80
	closes[15] = 100
	closes[20] = 80
	closes[25] = 140
	closes[30] = 80
	series := dtbSeries(closes)
	cfg := config.Default()

	cand := models.TTBCandidate{
		Kind: models.KindTT,
		Pivots: [7]models.Pivot{
			{Idx: 0, Price: 90, Kind: models.Valley},
			{Idx: 5, Price: 100, Kind: models.Peak},
			{Idx: 10, Price: 80, Kind: models.Valley},
			{Idx: 15, Price: 100, Kind: models.Peak},
			{Idx: 20, Price: 80, Kind: models.Valley},
			{Idx: 25, Price: 140, Kind: models.Peak},
			{Idx: 30, Price: 80, Kind: models.Valley},
		},
		BreakoutIdx: -1,
	}

	cols := flatColumns(len(closes))
	priorPivots := []models.Pivot{{Idx: -2, Price: 60}, {Idx: -1, Price: 90}}
	record, accepted := ValidateTTB(series, cols, cand, cfg, 5, priorPivots, "swing_short")

	if accepted {
		t.Fatalf("expected rejection on symmetry violation (S3 scenario)")
	}
	if record.Valid[config.RuleSimetriaExtremos] {
		t.Fatalf("expected valid_simetria_extremos=false, got true")
	}
}

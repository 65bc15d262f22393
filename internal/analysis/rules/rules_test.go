package rules

import (
	"math"
	"testing"
	"time"

	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

func seriesOf(closes []float64) models.PriceSeries {
	bars := make([]models.Bar, len(closes))
	base := time.Now().Add(-time.Duration(len(closes)) * time.Hour)
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return models.PriceSeries{Ticker: "T", Interval: "1d", Bars: bars}
}

func TestStructureAlternation(t *testing.T) {
	pivots := []models.Pivot{
		{Idx: 0, Price: 100, Kind: models.Valley},
		{Idx: 1, Price: 110, Kind: models.Peak},
		{Idx: 2, Price: 95, Kind: models.Valley},
	}
	if !Structure(pivots, models.Valley).Pass {
		t.Fatalf("expected alternating structure to pass")
	}
	if Structure(pivots, models.Peak).Pass {
		t.Fatalf("expected mismatched first kind to fail")
	}
}

func TestHeadMoreExtremeThanShoulders(t *testing.T) {
	ls := models.Pivot{Price: 85, Kind: models.Valley}
	head := models.Pivot{Price: 75, Kind: models.Valley}
	rs := models.Pivot{Price: 85, Kind: models.Valley}
	if !HeadMoreExtremeThanShoulders(ls, head, rs).Pass {
		t.Fatalf("expected head to be the strict extreme")
	}
	shallow := models.Pivot{Price: 90, Kind: models.Valley}
	if HeadMoreExtremeThanShoulders(ls, shallow, rs).Pass {
		t.Fatalf("expected shallow head to fail")
	}
}

func TestNecklineFlatness(t *testing.T) {
	n1 := models.Pivot{Price: 100}
	n2 := models.Pivot{Price: 101}
	if !NecklineFlatness(n1, n2, 20, 0.1).Pass {
		t.Fatalf("expected small neckline gap within tolerance to pass")
	}
	if NecklineFlatness(n1, n2, 2, 0.1).Pass {
		t.Fatalf("expected gap exceeding a small reference height to fail")
	}
}

func TestBaseTrend(t *testing.T) {
	base := models.Pivot{Price: 70}
	necklines := []models.Pivot{{Price: 90}, {Price: 92}}
	if !BaseTrend(base, necklines, models.KindOCO).Pass {
		t.Fatalf("expected base below neckline anchors to pass for OCO")
	}
	if BaseTrend(base, necklines, models.KindOCOI).Pass {
		t.Fatalf("expected base below neckline anchors to fail for OCOI")
	}
}

func TestExtremityInContextExcludesOwnBar(t *testing.T) {
	closes := []float64{100, 95, 90, 85, 90, 95, 100}
	series := seriesOf(closes)
	pivot := models.Pivot{Idx: 3, Price: 85, Kind: models.Valley}
	result := ExtremityInContext(series, pivot, 6, 2, 1, false)
	if !result.Pass {
		t.Fatalf("expected strict valley to pass: %s", result.Reason)
	}
}

func TestExtremityInContextFailsWhenNotExtreme(t *testing.T) {
	closes := []float64{100, 95, 80, 85, 90, 95, 100}
	series := seriesOf(closes)
	pivot := models.Pivot{Idx: 3, Price: 85, Kind: models.Valley}
	result := ExtremityInContext(series, pivot, 6, 2, 1, false)
	if result.Pass {
		t.Fatalf("expected a lower bar in the window to fail extremity")
	}
}

func TestSymmetryExtremes(t *testing.T) {
	extremes := []models.Pivot{{Price: 100}, {Price: 100}, {Price: 140}}
	if SymmetryExtremes(extremes, 40, 0.35).Pass {
		t.Fatalf("expected a wide third extreme to violate symmetry (S3 scenario)")
	}
}

func TestBreakoutFoundRespectsSearchWindow(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 120}
	series := seriesOf(closes)
	result, idx := BreakoutFound(series, 105, 0, 3, models.KindOCOI)
	if result.Pass {
		t.Fatalf("expected breakout outside search_max_bars to fail")
	}
	if idx != -1 {
		t.Fatalf("expected no breakout index, got %d", idx)
	}

	result, idx = BreakoutFound(series, 105, 0, 10, models.KindOCOI)
	if !result.Pass || idx != 4 {
		t.Fatalf("expected breakout at idx 4, got pass=%v idx=%d", result.Pass, idx)
	}
}

func TestNecklineRetestFallsBackToPercentage(t *testing.T) {
	result := NecklineRetest(101, 100, math.NaN(), 5, 0.02)
	if !result.Pass {
		t.Fatalf("expected retest within 2%% of neckline to pass when ATR is NaN")
	}
	result = NecklineRetest(110, 100, math.NaN(), 5, 0.02)
	if result.Pass {
		t.Fatalf("expected retest outside the percentage band to fail")
	}
}

func TestVolumeProfileRejectsTooEarlyPivot(t *testing.T) {
	series := seriesOf([]float64{100, 101, 102})
	extremes := []models.Pivot{{Idx: 0, Price: 100}}
	if VolumeProfile(series, extremes).Pass {
		t.Fatalf("expected pivot at series start to fail closed")
	}
}

func TestMACDSignalCrossRequiresRecentCross(t *testing.T) {
	cfg := config.MACDConfig{CrossMaxAgeBars: 1}
	line := []float64{-1, -1, -1, 1, 1}
	signal := []float64{0, 0, 0, 0, 0}
	if !MACDSignalCross(line, signal, 0, 4, models.KindOCOI, cfg).Pass {
		t.Fatalf("expected a bullish cross within the age window to pass")
	}
	cfg.CrossMaxAgeBars = 0
	if MACDSignalCross(line, signal, 0, 4, models.KindOCOI, cfg).Pass {
		t.Fatalf("expected an aged-out cross to fail")
	}
}

package zigzag

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

func closesGen(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.Float64Range(10, 1000))
}

// Property: regardless of input noise, the pivot sequence strictly
// alternates kind and strictly increases in index (spec §8 invariants
// 1-2).
func TestExtractAlternatesAndIsMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	cfg := config.ZigZagConfig{ExtendToLastBar: false}

	properties.Property("pivots alternate kind and strictly increase in index", prop.ForAll(
		func(closes []float64) bool {
			pivots := Extract(closes, 5, cfg)
			for i := 1; i < len(pivots); i++ {
				if pivots[i].Idx <= pivots[i-1].Idx {
					return false
				}
				if pivots[i].Kind == pivots[i-1].Kind {
					return false
				}
			}
			return true
		},
		closesGen(120),
	))

	properties.TestingRun(t)
}

func TestExtractSimpleVShape(t *testing.T) {
	closes := []float64{100, 90, 80, 70, 80, 90, 100, 110}
	pivots := Extract(closes, 5, config.ZigZagConfig{ExtendToLastBar: false})
	if len(pivots) == 0 {
		t.Fatalf("expected at least one pivot, got none")
	}
	if pivots[0].Kind != models.Peak {
		t.Fatalf("expected first pivot to be a peak (anchor at bar 0), got %v", pivots[0].Kind)
	}
	foundValley := false
	for _, p := range pivots {
		if p.Kind == models.Valley && p.Idx == 3 {
			foundValley = true
		}
	}
	if !foundValley {
		t.Fatalf("expected a valley pivot at the trough index 3, got %+v", pivots)
	}
}

func TestExtractFlatSeriesYieldsNoPivots(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100
	}
	pivots := Extract(closes, 5, config.ZigZagConfig{ExtendToLastBar: false})
	if len(pivots) != 0 {
		t.Fatalf("flat series should never reach a reversal threshold, got %+v", pivots)
	}
}

func TestExtractExtendsTrailingProvisionalPivot(t *testing.T) {
	closes := []float64{100, 90, 80, 70, 60, 50, 52, 55, 60, 70, 80}
	cfg := config.ZigZagConfig{ExtendToLastBar: true, ExtensionDeviationFactor: 0.5}
	pivots := Extract(closes, 10, cfg)
	if len(pivots) == 0 {
		t.Fatalf("expected pivots for a strong trend reversal, got none")
	}
	last := pivots[len(pivots)-1]
	if !last.Provisional {
		t.Fatalf("expected trailing provisional pivot when extension threshold is reached, got %+v", last)
	}
	if last.Idx != len(closes)-1 {
		t.Fatalf("expected provisional pivot at the last bar, got idx %d", last.Idx)
	}
}

func TestReversalReachedIsSymmetric(t *testing.T) {
	if !reversalReached(100, 95, 5) {
		t.Fatalf("expected a 5%% drop to reach a 5%% threshold")
	}
	if reversalReached(100, 96, 5) {
		t.Fatalf("did not expect a 4%% drop to reach a 5%% threshold")
	}
	if !reversalReached(100, 105, 5) {
		t.Fatalf("expected a 5%% rise to reach a 5%% threshold")
	}
	if reversalReached(100, 104, 5) {
		t.Fatalf("did not expect a 4%% rise to reach a 5%% threshold")
	}
	if math.Abs(0) != 0 {
		t.Fatalf("sanity check failed")
	}
}

package candidates

import (
	"testing"

	"chartpatterns/internal/models"
)

func pivotSeq(kinds ...models.PivotKind) []models.Pivot {
	out := make([]models.Pivot, len(kinds))
	for i, k := range kinds {
		out[i] = models.Pivot{Idx: i, Price: float64(100 + i), Kind: k}
	}
	return out
}

func TestEnumerateHNSClassifiesByStartingKind(t *testing.T) {
	V, P := models.Valley, models.Peak
	top := pivotSeq(V, P, V, P, V, P, V)
	candidates := EnumerateHNS(top, 0)
	if len(candidates) != 1 || candidates[0].Kind != models.KindOCO {
		t.Fatalf("expected one OCO candidate, got %+v", candidates)
	}

	bottom := pivotSeq(P, V, P, V, P, V, P)
	candidates = EnumerateHNS(bottom, 0)
	if len(candidates) != 1 || candidates[0].Kind != models.KindOCOI {
		t.Fatalf("expected one OCOI candidate, got %+v", candidates)
	}
}

func TestEnumerateDTBClassifiesByStartingKind(t *testing.T) {
	V, P := models.Valley, models.Peak
	top := pivotSeq(P, V, P, V, P)
	candidates := EnumerateDTB(top, 0)
	if len(candidates) != 1 || candidates[0].Kind != models.KindDT {
		t.Fatalf("expected one DT candidate, got %+v", candidates)
	}

	bottom := pivotSeq(V, P, V, P, V)
	candidates = EnumerateDTB(bottom, 0)
	if len(candidates) != 1 || candidates[0].Kind != models.KindDB {
		t.Fatalf("expected one DB candidate, got %+v", candidates)
	}
}

func TestEnumerateRespectsRecencyLookback(t *testing.T) {
	V, P := models.Valley, models.Peak
	pivots := pivotSeq(P, V, P, V, P, V, P, V, P, V)
	all := EnumerateDTB(pivots, 0)
	bounded := EnumerateDTB(pivots, 5)
	if len(bounded) >= len(all) {
		t.Fatalf("expected recency bound to reduce candidate count: all=%d bounded=%d", len(all), len(bounded))
	}
}

func TestEnumerateSkipsNonAlternatingWindows(t *testing.T) {
	pivots := []models.Pivot{
		{Idx: 0, Kind: models.Peak},
		{Idx: 1, Kind: models.Peak},
		{Idx: 2, Kind: models.Valley},
		{Idx: 3, Kind: models.Peak},
		{Idx: 4, Kind: models.Valley},
	}
	if got := EnumerateDTB(pivots, 0); len(got) != 0 {
		t.Fatalf("expected no candidates from a non-alternating window, got %+v", got)
	}
}

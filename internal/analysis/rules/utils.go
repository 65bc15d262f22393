package rules

import "chartpatterns/internal/models"

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// isBullishKind reports whether kind resolves on an upward breakout
// (inverse H&S, double/triple bottom) as opposed to a downward one.
func isBullishKind(kind models.Kind) bool {
	switch kind {
	case models.KindOCOI, models.KindDB, models.KindTB:
		return true
	default:
		return false
	}
}

package validators

import (
	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// ValidateTTB runs the triple top/bottom validator over one candidate
// window: p0 base, p1/p3/p5 the three matched extremes, p2/p4 the
// intervening neckline pivots, p6 the post-breakout retest pivot.
// Differs from ValidateDTB in that p1's context extremity is evaluated
// past-only and no context-extremity rule runs for p3, the neckline is
// the mean of the two anchors p2/p4 (whose flatness is checked), and
// symmetry is checked across all three extremes.
func ValidateTTB(series models.PriceSeries, cols indicators.Columns, cand models.TTBCandidate, cfg config.Config, avgPivotSeparation float64, priorPivots []models.Pivot, strategy string) (models.PatternRecord, bool) {
	p := cand.Pivots
	base, p1, neck1, p3, neck2, p5, retest := p[0], p[1], p[2], p[3], p[4], p[5], p[6]
	_ = base
	necklinePrice := (neck1.Price + neck2.Price) / 2
	patternHeight := (absDiff(p1.Price, necklinePrice) + absDiff(p5.Price, necklinePrice)) / 2

	breakoutResult, breakoutIdx := rules.BreakoutFound(series, necklinePrice, p5.Idx, cfg.VolumeBreakout.SearchMaxBars, cand.Kind)

	var necklineRetestResult rules.Result
	hasRetest := breakoutIdx >= 0 && retest.Idx > breakoutIdx
	if hasRetest {
		necklineRetestResult = rules.NecklineRetest(retest.Price, necklinePrice, atrAt(cols, retest.Idx), cfg.NecklineRetest.ATRMultiplier, cfg.NecklineRetest.PctOfNeckline)
	} else {
		necklineRetestResult = retestFail("no confirmed post-breakout retest pivot")
	}

	mandatory := cfg.ScoringTTB.Mandatory
	outcomes := []ruleOutcome{
		{config.RuleStructure, rules.Structure(p[:], startKindFor(cand.Kind)), mandatory[config.RuleStructure]},
		{config.RuleContextExtremityP1, rules.ExtremityInContext(series, p1, avgPivotSeparation, cfg.ContextExtremity.MinBars, cfg.ContextExtremity.HeadExtremeLookbackFactor, true), mandatory[config.RuleContextExtremityP1]},
		{config.RuleContextoTendencia, rules.TrendContext(priorPivots, dtbEquivalentKind(cand.Kind), patternHeight, cfg.Tolerance.TrendMinDiffFactor), mandatory[config.RuleContextoTendencia]},
		{config.RuleSimetriaExtremos, rules.SymmetryExtremes([]models.Pivot{p1, p3, p5}, patternHeight, cfg.Tolerance.SymmetryToleranceFactor), mandatory[config.RuleSimetriaExtremos]},
		{config.RuleNecklineFlatness, rules.NecklineFlatness(neck1, neck2, patternHeight, cfg.Tolerance.NecklineFlatnessFactor), mandatory[config.RuleNecklineFlatness]},
		{config.RuleBreakoutFound, breakoutResult, mandatory[config.RuleBreakoutFound]},
		{config.RuleNecklineRetestP6, necklineRetestResult, mandatory[config.RuleNecklineRetestP6]},

		{config.RuleRSIDivergence, rules.RSIDivergence(p1, p5, rsiCloseAt(cols, p1.Idx), rsiCloseAt(cols, p5.Idx), cfg.RSI), mandatory[config.RuleRSIDivergence]},
		{config.RuleMACDSignalCross, rules.MACDSignalCross(cols.MACD, cols.MACDSignal, p5.Idx, windowEnd(breakoutIdx, p5.Idx, len(cols.MACD)), cand.Kind, cfg.MACD), mandatory[config.RuleMACDSignalCross]},
		{config.RuleMACDHistogramDivergence, rules.MACDHistogramDivergence(p1, p5, macdHistAt(cols, p1.Idx), macdHistAt(cols, p5.Idx)), mandatory[config.RuleMACDHistogramDivergence]},
		{config.RuleStochasticConfirmation, rules.StochasticConfirmation(p1, p5, stochKAt(cols, p1.Idx), stochKAt(cols, p5.Idx), stochDAt(cols, p5.Idx), cfg.Stochastic), mandatory[config.RuleStochasticConfirmation]},
		{config.RuleOBVDivergence, rules.OBVDivergence(p1, p5, cols.OBV), mandatory[config.RuleOBVDivergence]},
		{config.RuleVolumeBreakout, volumeBreakoutAt(series, breakoutIdx, cfg.VolumeBreakout), mandatory[config.RuleVolumeBreakout]},
		{config.RuleVolumeProfile, rules.VolumeProfile(series, []models.Pivot{p1, p3, p5}), mandatory[config.RuleVolumeProfile]},
	}

	ev := evaluate(outcomes, cfg.ScoringTTB.Weights)
	accepted := accept(ev, cfg.ScoringTTB.MinimumScore)

	record := models.PatternRecord{
		Identity:   models.Identity{Ticker: series.Ticker, Interval: series.Interval, Strategy: strategy, Kind: cand.Kind},
		Family:     models.FamilyTTB,
		StartIdx:   p1.Idx,
		EndIdx:     endIdx(retest.Idx, breakoutIdx, p5.Idx),
		KeyIdx:     p5.Idx,
		RetestIdx:  retest.Idx,
		Valid:      ev.flags,
		ScoreTotal: ev.score,
		Pivots:     toPivotFields(p[:]),
		Tipo:       cand.Kind,
		Score:      ev.score,
	}
	return record, accepted
}

// dtbEquivalentKind maps a TT/TB kind to the DT/DB kind TrendContext
// understands, since trend direction depends only on top-vs-bottom.
func dtbEquivalentKind(kind models.Kind) models.Kind {
	if kind == models.KindTT {
		return models.KindDT
	}
	return models.KindDB
}

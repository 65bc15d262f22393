package validators

import (
	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// ValidateDTB runs the double top/bottom validator over one candidate
// window: p1/p3 the two matched extremes, p2 the intervening neckline
// pivot, p4 the post-breakout retest pivot (spec §4.5-4.6). priorPivots
// are the pivots immediately preceding p1, used by trend_context.
func ValidateDTB(series models.PriceSeries, cols indicators.Columns, cand models.DTBCandidate, cfg config.Config, avgPivotSeparation float64, priorPivots []models.Pivot, strategy string) (models.PatternRecord, bool) {
	p := cand.Pivots
	p1, neckline, p3, _, p4 := p[0], p[1], p[2], p[3], p[4]
	necklinePrice := neckline.Price
	patternHeight := absDiff(p1.Price, necklinePrice)

	breakoutResult, breakoutIdx := rules.BreakoutFound(series, necklinePrice, p3.Idx, cfg.VolumeBreakout.SearchMaxBars, cand.Kind)

	var necklineRetestResult rules.Result
	hasRetest := breakoutIdx >= 0 && p4.Idx > breakoutIdx
	if hasRetest {
		necklineRetestResult = rules.NecklineRetest(p4.Price, necklinePrice, atrAt(cols, p4.Idx), cfg.NecklineRetest.ATRMultiplier, cfg.NecklineRetest.PctOfNeckline)
	} else {
		necklineRetestResult = retestFail("no confirmed post-breakout retest pivot")
	}

	mandatory := cfg.ScoringDTB.Mandatory
	outcomes := []ruleOutcome{
		{config.RuleStructure, rules.Structure(p[:], startKindFor(cand.Kind)), mandatory[config.RuleStructure]},
		{config.RuleContextExtremityP1, rules.ExtremityInContext(series, p1, avgPivotSeparation, cfg.ContextExtremity.MinBars, cfg.ContextExtremity.HeadExtremeLookbackFactor, false), mandatory[config.RuleContextExtremityP1]},
		{config.RuleContextExtremityP3, rules.ExtremityInContext(series, p3, avgPivotSeparation, cfg.ContextExtremity.MinBars, cfg.ContextExtremity.HeadExtremeLookbackFactor, false), mandatory[config.RuleContextExtremityP3]},
		{config.RuleContextoTendencia, rules.TrendContext(priorPivots, cand.Kind, patternHeight, cfg.Tolerance.TrendMinDiffFactor), mandatory[config.RuleContextoTendencia]},
		{config.RuleSimetriaExtremos, rules.SymmetryExtremes([]models.Pivot{p1, p3}, patternHeight, cfg.Tolerance.SymmetryToleranceFactor), mandatory[config.RuleSimetriaExtremos]},
		{config.RuleNecklineFlatness, rules.NecklineFlatness(neckline, neckline, patternHeight, cfg.Tolerance.NecklineFlatnessFactor), mandatory[config.RuleNecklineFlatness]},
		{config.RuleBreakoutFound, breakoutResult, mandatory[config.RuleBreakoutFound]},
		{config.RuleNecklineRetestP4, necklineRetestResult, mandatory[config.RuleNecklineRetestP4]},

		{config.RuleRSIDivergence, rules.RSIDivergence(p1, p3, rsiCloseAt(cols, p1.Idx), rsiCloseAt(cols, p3.Idx), cfg.RSI), mandatory[config.RuleRSIDivergence]},
		{config.RuleMACDSignalCross, rules.MACDSignalCross(cols.MACD, cols.MACDSignal, p3.Idx, windowEnd(breakoutIdx, p3.Idx, len(cols.MACD)), cand.Kind, cfg.MACD), mandatory[config.RuleMACDSignalCross]},
		{config.RuleMACDHistogramDivergence, rules.MACDHistogramDivergence(p1, p3, macdHistAt(cols, p1.Idx), macdHistAt(cols, p3.Idx)), mandatory[config.RuleMACDHistogramDivergence]},
		{config.RuleStochasticConfirmation, rules.StochasticConfirmation(p1, p3, stochKAt(cols, p1.Idx), stochKAt(cols, p3.Idx), stochDAt(cols, p3.Idx), cfg.Stochastic), mandatory[config.RuleStochasticConfirmation]},
		{config.RuleOBVDivergence, rules.OBVDivergence(p1, p3, cols.OBV), mandatory[config.RuleOBVDivergence]},
		{config.RuleVolumeBreakout, volumeBreakoutAt(series, breakoutIdx, cfg.VolumeBreakout), mandatory[config.RuleVolumeBreakout]},
		{config.RuleVolumeProfile, rules.VolumeProfile(series, []models.Pivot{p1, p3}), mandatory[config.RuleVolumeProfile]},
	}

	ev := evaluate(outcomes, cfg.ScoringDTB.Weights)
	accepted := accept(ev, cfg.ScoringDTB.MinimumScore)

	record := models.PatternRecord{
		Identity:   models.Identity{Ticker: series.Ticker, Interval: series.Interval, Strategy: strategy, Kind: cand.Kind},
		Family:     models.FamilyDTB,
		StartIdx:   p1.Idx,
		EndIdx:     endIdx(p4.Idx, breakoutIdx, p3.Idx),
		KeyIdx:     p3.Idx,
		RetestIdx:  p4.Idx,
		Valid:      ev.flags,
		ScoreTotal: ev.score,
		Pivots:     toPivotFields(p[:]),
		Tipo:       cand.Kind,
		Score:      ev.score,
	}
	return record, accepted
}

package validators

import (
	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// ValidateHNS runs the head-and-shoulders (or inverse) validator over
// one candidate window: p0 base, p1/p3/p5 shoulders and head, p2/p4
// neckline anchors, p6 the post-breakout retest pivot already present
// in the enumerated window (spec §4.5-4.6).
func ValidateHNS(series models.PriceSeries, cols indicators.Columns, cand models.HNSCandidate, cfg config.Config, avgPivotSeparation float64, strategy string) (models.PatternRecord, bool) {
	p := cand.Pivots
	base, ls, neck1, head, neck2, rs, retest := p[0], p[1], p[2], p[3], p[4], p[5], p[6]
	necklineAnchors := []models.Pivot{neck1, neck2}
	necklinePrice := (neck1.Price + neck2.Price) / 2
	shoulderHeight := (absDiff(ls.Price, necklinePrice) + absDiff(rs.Price, necklinePrice)) / 2
	patternHeight := absDiff(head.Price, necklinePrice)

	breakoutResult, breakoutIdx := rules.BreakoutFound(series, necklinePrice, rs.Idx, cfg.VolumeBreakout.SearchMaxBars, cand.Kind)

	var necklineRetestResult rules.Result
	hasRetest := breakoutIdx >= 0 && retest.Idx > breakoutIdx
	if hasRetest {
		necklineRetestResult = rules.NecklineRetest(retest.Price, necklinePrice, atrAt(cols, retest.Idx), cfg.NecklineRetest.ATRMultiplier, cfg.NecklineRetest.PctOfNeckline)
	} else {
		necklineRetestResult = retestFail("no confirmed post-breakout retest pivot")
	}

	mandatory := cfg.ScoringHNS.Mandatory
	outcomes := []ruleOutcome{
		{config.RuleStructure, combineStructure(p[:], startKindFor(cand.Kind), ls, head, rs), mandatory[config.RuleStructure]},
		{config.RuleHeadExtremity, rules.ExtremityInContext(series, head, avgPivotSeparation, cfg.ContextExtremity.MinBars, cfg.ContextExtremity.HeadExtremeLookbackFactor, false), mandatory[config.RuleHeadExtremity]},
		{config.RuleShoulderSymmetry, rules.SymmetryExtremes([]models.Pivot{ls, rs}, patternHeight, cfg.Tolerance.SymmetryToleranceFactor), mandatory[config.RuleShoulderSymmetry]},
		{config.RuleNecklineFlatness, rules.NecklineFlatness(neck1, neck2, shoulderHeight, cfg.Tolerance.NecklineFlatnessFactor), mandatory[config.RuleNecklineFlatness]},
		{config.RuleBaseTrend, rules.BaseTrend(base, necklineAnchors, cand.Kind), mandatory[config.RuleBaseTrend]},
		{config.RuleBreakoutFound, breakoutResult, mandatory[config.RuleBreakoutFound]},
		{config.RuleNecklineRetest, necklineRetestResult, mandatory[config.RuleNecklineRetest]},

		{config.RuleRSIDivergence, rsiDivergenceHNS(ls, head, cols, cfg.RSI), mandatory[config.RuleRSIDivergence]},
		{config.RuleMACDSignalCross, rules.MACDSignalCross(cols.MACD, cols.MACDSignal, neck2.Idx, windowEnd(breakoutIdx, rs.Idx, len(cols.MACD)), cand.Kind, cfg.MACD), mandatory[config.RuleMACDSignalCross]},
		{config.RuleMACDHistogramDivergence, rules.MACDHistogramDivergence(ls, head, macdHistAt(cols, ls.Idx), macdHistAt(cols, head.Idx)), mandatory[config.RuleMACDHistogramDivergence]},
		{config.RuleStochasticConfirmation, rules.StochasticConfirmation(ls, head, stochKAt(cols, ls.Idx), stochKAt(cols, head.Idx), stochDAt(cols, head.Idx), cfg.Stochastic), mandatory[config.RuleStochasticConfirmation]},
		{config.RuleOBVDivergence, rules.OBVDivergence(ls, head, cols.OBV), mandatory[config.RuleOBVDivergence]},
		{config.RuleVolumeBreakout, volumeBreakoutAt(series, breakoutIdx, cfg.VolumeBreakout), mandatory[config.RuleVolumeBreakout]},
		{config.RuleVolumeProfile, rules.VolumeProfile(series, []models.Pivot{ls, head, rs}), mandatory[config.RuleVolumeProfile]},
	}

	ev := evaluate(outcomes, cfg.ScoringHNS.Weights)
	accepted := accept(ev, cfg.ScoringHNS.MinimumScore)

	record := models.PatternRecord{
		Identity:   models.Identity{Ticker: series.Ticker, Interval: series.Interval, Strategy: strategy, Kind: cand.Kind},
		Family:     models.FamilyHNS,
		StartIdx:   base.Idx,
		EndIdx:     endIdx(retest.Idx, breakoutIdx, rs.Idx),
		KeyIdx:     head.Idx,
		RetestIdx:  retest.Idx,
		Valid:      ev.flags,
		ScoreTotal: ev.score,
		Pivots:     toPivotFields(p[:]),
		Tipo:       cand.Kind,
		Score:      ev.score,
	}
	return record, accepted
}

func combineStructure(pivots []models.Pivot, firstKind models.PivotKind, ls, head, rs models.Pivot) rules.Result {
	structResult := rules.Structure(pivots, firstKind)
	if !structResult.Pass {
		return structResult
	}
	return rules.HeadMoreExtremeThanShoulders(ls, head, rs)
}

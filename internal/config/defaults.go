package config

import "github.com/spf13/viper"

// Rule name constants. These are the exact keys used in scoring weight
// maps, mandatory sets, and the `valid_<rule>` CSV columns — they must
// match the names the rule library and validators use to look them up.
const (
	RuleStructure          = "structure"
	RuleHeadExtremity      = "head_extremity"
	RuleContextExtremityP1 = "context_extremity_p1"
	RuleContextExtremityP3 = "context_extremity_p3"
	RuleShoulderSymmetry   = "shoulder_symmetry"
	RuleSimetriaExtremos   = "simetria_extremos"
	RuleNecklineFlatness   = "neckline_flatness"
	RuleBaseTrend          = "base_trend"
	RuleContextoTendencia  = "contexto_tendencia"
	RuleBreakoutFound      = "breakout_found"
	RuleNecklineRetestP4   = "neckline_retest_p4"
	RuleNecklineRetestP6   = "neckline_retest_p6"
	RuleNecklineRetest     = "neckline_retest"

	RuleRSIDivergence           = "rsi_divergence"
	RuleMACDSignalCross         = "macd_signal_cross"
	RuleMACDHistogramDivergence = "macd_histogram_divergence"
	RuleStochasticConfirmation  = "stochastic_confirmation"
	RuleOBVDivergence           = "obv_divergence"
	RuleVolumeBreakout          = "volume_breakout"
	RuleVolumeProfile           = "volume_profile"
)

// Default returns the configuration described in spec §4.1, fully
// populated with its documented default values.
func Default() Config {
	return Config{
		RSI: RSIConfig{
			Length:             14,
			Overbought:         70,
			Oversold:           30,
			StrongOverbought:   80,
			StrongOversold:     20,
			DivergenceMinDelta: 5,
		},
		Stochastic: StochasticConfig{
			K:                  14,
			D:                  3,
			SmoothK:            3,
			Overbought:         80,
			Oversold:           20,
			CrossLookbackBars:  5,
			DivergenceMinDelta: 5,
			RequireOBOS:        false,
		},
		MACD: MACDConfig{
			Fast:                    12,
			Slow:                    26,
			Signal:                  9,
			SignalCrossLookbackBars: 10,
			CrossMaxAgeBars:         3,
		},
		VolumeBreakout: VolumeBreakoutConfig{
			LookbackBars:  20,
			Multiplier:    1.5,
			SearchMaxBars: 10,
		},
		NecklineRetest: NecklineRetestConfig{
			ATRMultiplier: 5.0,
			PctOfNeckline: 0.01,
		},
		ZigZag: ZigZagConfig{
			ExtendToLastBar:          true,
			ExtensionDeviationFactor: 0.25,
			Strategies: map[string]float64{
				"swing_short":        5.0,
				"swing_long":         8.0,
				"intraday_momentum":  2.0,
			},
		},
		ContextExtremity: ContextExtremityConfig{
			HeadExtremeLookbackFactor: 2,
			MinBars:                   8,
		},
		Tolerance: ToleranceConfig{
			SymmetryToleranceFactor: 0.35,
			TrendMinDiffFactor:      0.01,
			NecklineFlatnessFactor:  0.10,
		},
		Recency: RecencyConfig{
			RecentPatternsLookbackCount: 40,
		},
		Debug: DebugConfig{
			HNSDebug: false,
			DTBDebug: false,
			TTBDebug: false,
			Dir:      "./debug",
		},
		ScoringHNS: ScoringConfig{
			Weights: map[string]int{
				RuleStructure:               10,
				RuleHeadExtremity:           10,
				RuleShoulderSymmetry:        10,
				RuleNecklineFlatness:        10,
				RuleBaseTrend:               10,
				RuleBreakoutFound:           10,
				RuleNecklineRetest:          10,
				RuleRSIDivergence:           8,
				RuleMACDSignalCross:         8,
				RuleMACDHistogramDivergence: 7,
				RuleStochasticConfirmation:  7,
				RuleOBVDivergence:           5,
				RuleVolumeBreakout:          8,
				RuleVolumeProfile:           7,
			},
			Mandatory: map[string]bool{
				RuleStructure:        true,
				RuleHeadExtremity:    true,
				RuleShoulderSymmetry: true,
				RuleNecklineFlatness: true,
				RuleBaseTrend:        true,
				RuleBreakoutFound:    true,
				RuleNecklineRetest:   true,
			},
			MinimumScore: 65,
		},
		ScoringDTB: ScoringConfig{
			Weights: map[string]int{
				RuleStructure:               10,
				RuleContextExtremityP1:      10,
				RuleContextExtremityP3:      10,
				RuleContextoTendencia:       10,
				RuleSimetriaExtremos:        10,
				RuleNecklineFlatness:        5,
				RuleBreakoutFound:           10,
				RuleNecklineRetestP4:        10,
				RuleRSIDivergence:           8,
				RuleMACDSignalCross:         8,
				RuleMACDHistogramDivergence: 7,
				RuleStochasticConfirmation:  7,
				RuleOBVDivergence:           5,
				RuleVolumeBreakout:          8,
				RuleVolumeProfile:           7,
			},
			Mandatory: map[string]bool{
				RuleStructure:          true,
				RuleContextExtremityP1: true,
				RuleContextExtremityP3: true,
				RuleContextoTendencia:  true,
				RuleSimetriaExtremos:   true,
				RuleNecklineFlatness:   true,
				RuleBreakoutFound:      true,
				RuleNecklineRetestP4:   true,
			},
			MinimumScore: 70,
		},
		ScoringTTB: ScoringConfig{
			Weights: map[string]int{
				RuleStructure:               10,
				RuleContextExtremityP1:      10,
				RuleContextoTendencia:       10,
				RuleSimetriaExtremos:        10,
				RuleNecklineFlatness:        5,
				RuleBreakoutFound:           10,
				RuleNecklineRetestP6:        10,
				RuleRSIDivergence:           8,
				RuleMACDSignalCross:         8,
				RuleMACDHistogramDivergence: 7,
				RuleStochasticConfirmation:  7,
				RuleOBVDivergence:           5,
				RuleVolumeBreakout:          8,
				RuleVolumeProfile:           7,
			},
			Mandatory: map[string]bool{
				RuleStructure:          true,
				RuleContextExtremityP1: true,
				RuleContextoTendencia:  true,
				RuleSimetriaExtremos:   true,
				RuleNecklineFlatness:   true,
				RuleBreakoutFound:      true,
				RuleNecklineRetestP6:   true,
			},
			MinimumScore: 65,
		},
	}
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("rsi.length", d.RSI.Length)
	v.SetDefault("rsi.overbought", d.RSI.Overbought)
	v.SetDefault("rsi.oversold", d.RSI.Oversold)
	v.SetDefault("rsi.strong_overbought", d.RSI.StrongOverbought)
	v.SetDefault("rsi.strong_oversold", d.RSI.StrongOversold)
	v.SetDefault("rsi.divergence_min_delta", d.RSI.DivergenceMinDelta)

	v.SetDefault("stochastic.k", d.Stochastic.K)
	v.SetDefault("stochastic.d", d.Stochastic.D)
	v.SetDefault("stochastic.smooth_k", d.Stochastic.SmoothK)
	v.SetDefault("stochastic.overbought", d.Stochastic.Overbought)
	v.SetDefault("stochastic.oversold", d.Stochastic.Oversold)
	v.SetDefault("stochastic.cross_lookback_bars", d.Stochastic.CrossLookbackBars)
	v.SetDefault("stochastic.divergence_min_delta", d.Stochastic.DivergenceMinDelta)
	v.SetDefault("stochastic.require_obos", d.Stochastic.RequireOBOS)

	v.SetDefault("macd.fast", d.MACD.Fast)
	v.SetDefault("macd.slow", d.MACD.Slow)
	v.SetDefault("macd.signal", d.MACD.Signal)
	v.SetDefault("macd.signal_cross_lookback_bars", d.MACD.SignalCrossLookbackBars)
	v.SetDefault("macd.cross_max_age_bars", d.MACD.CrossMaxAgeBars)

	v.SetDefault("volume_breakout.lookback_bars", d.VolumeBreakout.LookbackBars)
	v.SetDefault("volume_breakout.multiplier", d.VolumeBreakout.Multiplier)
	v.SetDefault("volume_breakout.search_max_bars", d.VolumeBreakout.SearchMaxBars)

	v.SetDefault("neckline_retest.atr_multiplier", d.NecklineRetest.ATRMultiplier)
	v.SetDefault("neckline_retest.pct_of_neckline", d.NecklineRetest.PctOfNeckline)

	v.SetDefault("zigzag.extend_to_last_bar", d.ZigZag.ExtendToLastBar)
	v.SetDefault("zigzag.extension_deviation_factor", d.ZigZag.ExtensionDeviationFactor)
	v.SetDefault("zigzag.strategies", d.ZigZag.Strategies)

	v.SetDefault("context_extremity.head_extreme_lookback_factor", d.ContextExtremity.HeadExtremeLookbackFactor)
	v.SetDefault("context_extremity.min_bars", d.ContextExtremity.MinBars)

	v.SetDefault("tolerance.symmetry_tolerance_factor", d.Tolerance.SymmetryToleranceFactor)
	v.SetDefault("tolerance.trend_min_diff_factor", d.Tolerance.TrendMinDiffFactor)
	v.SetDefault("tolerance.neckline_flatness_factor", d.Tolerance.NecklineFlatnessFactor)

	v.SetDefault("recency.recent_patterns_lookback_count", d.Recency.RecentPatternsLookbackCount)

	v.SetDefault("debug.hns_debug", d.Debug.HNSDebug)
	v.SetDefault("debug.dtb_debug", d.Debug.DTBDebug)
	v.SetDefault("debug.ttb_debug", d.Debug.TTBDebug)
	v.SetDefault("debug.debug_dir", d.Debug.Dir)

	v.SetDefault("scoring_hns.weights", d.ScoringHNS.Weights)
	v.SetDefault("scoring_hns.mandatory", d.ScoringHNS.Mandatory)
	v.SetDefault("scoring_hns.minimum_score", d.ScoringHNS.MinimumScore)

	v.SetDefault("scoring_dtb.weights", d.ScoringDTB.Weights)
	v.SetDefault("scoring_dtb.mandatory", d.ScoringDTB.Mandatory)
	v.SetDefault("scoring_dtb.minimum_score", d.ScoringDTB.MinimumScore)

	v.SetDefault("scoring_ttb.weights", d.ScoringTTB.Weights)
	v.SetDefault("scoring_ttb.mandatory", d.ScoringTTB.Mandatory)
	v.SetDefault("scoring_ttb.minimum_score", d.ScoringTTB.MinimumScore)
}

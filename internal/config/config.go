// Package config holds the immutable configuration consumed by every
// component of the pattern detection pipeline. There is no process-wide
// mutable state: a Config value is constructed once (Load or Default)
// and passed explicitly to every collaborator.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	cperrors "chartpatterns/internal/errors"
)

// RSIConfig controls the RSI family of indicators and the RSI
// divergence rule.
type RSIConfig struct {
	Length             int     `mapstructure:"length"`
	Overbought         float64 `mapstructure:"overbought"`
	Oversold           float64 `mapstructure:"oversold"`
	StrongOverbought   float64 `mapstructure:"strong_overbought"`
	StrongOversold     float64 `mapstructure:"strong_oversold"`
	DivergenceMinDelta float64 `mapstructure:"divergence_min_delta"`
}

// StochasticConfig controls the %K/%D oscillator and its confirmation
// rule.
type StochasticConfig struct {
	K                  int     `mapstructure:"k"`
	D                  int     `mapstructure:"d"`
	SmoothK            int     `mapstructure:"smooth_k"`
	Overbought         float64 `mapstructure:"overbought"`
	Oversold           float64 `mapstructure:"oversold"`
	CrossLookbackBars  int     `mapstructure:"cross_lookback_bars"`
	DivergenceMinDelta float64 `mapstructure:"divergence_min_delta"`
	RequireOBOS        bool    `mapstructure:"require_obos"`
}

// MACDConfig controls MACD and its signal-cross / histogram rules.
type MACDConfig struct {
	Fast                    int `mapstructure:"fast"`
	Slow                    int `mapstructure:"slow"`
	Signal                  int `mapstructure:"signal"`
	SignalCrossLookbackBars int `mapstructure:"signal_cross_lookback_bars"`
	CrossMaxAgeBars         int `mapstructure:"cross_max_age_bars"`
}

// VolumeBreakoutConfig controls the breakout-volume rule.
type VolumeBreakoutConfig struct {
	LookbackBars  int     `mapstructure:"lookback_bars"`
	Multiplier    float64 `mapstructure:"multiplier"`
	SearchMaxBars int     `mapstructure:"search_max_bars"`
}

// NecklineRetestConfig controls the neckline-retest rule.
type NecklineRetestConfig struct {
	ATRMultiplier float64 `mapstructure:"atr_multiplier"`
	PctOfNeckline float64 `mapstructure:"pct_of_neckline"`
}

// ZigZagConfig controls pivot extraction.
type ZigZagConfig struct {
	ExtendToLastBar          bool    `mapstructure:"extend_to_last_bar"`
	ExtensionDeviationFactor float64 `mapstructure:"extension_deviation_factor"`
	// Strategies maps a named strategy (e.g. "swing_short") to its
	// deviation_percent preset.
	Strategies map[string]float64 `mapstructure:"strategies"`
}

// ContextExtremityConfig controls the extremity_in_context rule window.
type ContextExtremityConfig struct {
	HeadExtremeLookbackFactor float64 `mapstructure:"head_extreme_lookback_factor"`
	MinBars                   int     `mapstructure:"min_bars"`
}

// ToleranceConfig holds the structural tolerances shared by the HNS,
// DTB and TTB validators.
type ToleranceConfig struct {
	SymmetryToleranceFactor float64 `mapstructure:"symmetry_tolerance_factor"`
	TrendMinDiffFactor      float64 `mapstructure:"trend_min_diff_factor"`
	NecklineFlatnessFactor  float64 `mapstructure:"neckline_flatness_factor"`
}

// ScoringConfig holds the per-family rule weights, the mandatory subset,
// and the minimum total score required for an accepted candidate.
type ScoringConfig struct {
	Weights      map[string]int  `mapstructure:"weights"`
	Mandatory    map[string]bool `mapstructure:"mandatory"`
	MinimumScore int             `mapstructure:"minimum_score"`
}

// RecencyConfig bounds candidate enumeration to recently formed pivots.
type RecencyConfig struct {
	RecentPatternsLookbackCount int `mapstructure:"recent_patterns_lookback_count"`
}

// DebugConfig controls per-family debug logging.
type DebugConfig struct {
	HNSDebug bool   `mapstructure:"hns_debug"`
	DTBDebug bool   `mapstructure:"dtb_debug"`
	TTBDebug bool   `mapstructure:"ttb_debug"`
	Dir      string `mapstructure:"debug_dir"`
}

// Config is the complete, immutable configuration for one pipeline run.
type Config struct {
	RSI              RSIConfig                `mapstructure:"rsi"`
	Stochastic       StochasticConfig         `mapstructure:"stochastic"`
	MACD             MACDConfig               `mapstructure:"macd"`
	VolumeBreakout   VolumeBreakoutConfig     `mapstructure:"volume_breakout"`
	NecklineRetest   NecklineRetestConfig     `mapstructure:"neckline_retest"`
	ZigZag           ZigZagConfig             `mapstructure:"zigzag"`
	ContextExtremity ContextExtremityConfig   `mapstructure:"context_extremity"`
	Tolerance        ToleranceConfig          `mapstructure:"tolerance"`
	Recency          RecencyConfig            `mapstructure:"recency"`
	Debug            DebugConfig              `mapstructure:"debug"`

	// ScoringHNS, ScoringDTB, ScoringTTB hold each family's weight map,
	// mandatory set and minimum score.
	ScoringHNS ScoringConfig `mapstructure:"scoring_hns"`
	ScoringDTB ScoringConfig `mapstructure:"scoring_dtb"`
	ScoringTTB ScoringConfig `mapstructure:"scoring_ttb"`
}

// DefaultConfigDir returns the default directory searched for config.toml.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/chartpatterns"
	}
	return filepath.Join(home, ".config", "chartpatterns")
}

// Load reads config.toml from configDir (DefaultConfigDir if empty),
// seeding every field with its documented default before the file is
// applied, then validates the result. A missing file is not an error: a
// template is written and Default() is returned.
func Load(configDir string) (Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	applyDefaults(v)

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := writeTemplate(configDir); werr != nil {
				return Config{}, fmt.Errorf("writing default config template: %w", werr)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config.toml: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks internal consistency of the configuration. Every
// failure wraps errors.ErrConfigInvalid.
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", cperrors.ErrConfigInvalid, err)
	}
	return nil
}

func (c Config) validate() error {
	if c.RSI.Length <= 0 {
		return fmt.Errorf("rsi.length must be positive")
	}
	if c.MACD.Fast <= 0 || c.MACD.Slow <= 0 || c.MACD.Signal <= 0 {
		return fmt.Errorf("macd periods must be positive")
	}
	if c.MACD.Fast >= c.MACD.Slow {
		return fmt.Errorf("macd.fast must be less than macd.slow")
	}
	if len(c.ZigZag.Strategies) == 0 {
		return fmt.Errorf("zigzag.strategies must define at least one strategy")
	}
	for name, dev := range c.ZigZag.Strategies {
		if dev <= 0 {
			return fmt.Errorf("zigzag.strategies[%s] deviation_percent must be positive", name)
		}
	}
	for _, sc := range []ScoringConfig{c.ScoringHNS, c.ScoringDTB, c.ScoringTTB} {
		if sc.MinimumScore < 0 {
			return fmt.Errorf("scoring minimum_score must be non-negative")
		}
		for rule := range sc.Mandatory {
			if _, ok := sc.Weights[rule]; !ok {
				return fmt.Errorf("mandatory rule %q has no weight entry", rule)
			}
		}
	}
	return nil
}

// internal/common/config/config.go
package config

import (
	"fmt"
	"math"

	"match-engine/internal/models"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Matching MatchingConfig          `mapstructure:"matching"`
	Tiers    TiersConfig             `mapstructure:"tiers"`
	Training TrainingConfig          `mapstructure:"training"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	MatchIndex string   `mapstructure:"match_index"`
	Enabled    bool     `mapstructure:"enabled"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Matching Configuration ---

// WeightTolerance is the allowed floating-point drift on the weight sum.
const WeightTolerance = 1e-9

// WeightConfig holds the seven component weights. Weights are non-negative
// and must sum to exactly 1.0 within WeightTolerance.
type WeightConfig struct {
	SkillDepth          float64 `mapstructure:"skill_depth"`
	ExperienceRelevance float64 `mapstructure:"experience_relevance"`
	SeniorityMatch      float64 `mapstructure:"seniority_match"`
	IndustryFit         float64 `mapstructure:"industry_fit"`
	EducationMatch      float64 `mapstructure:"education_match"`
	KeywordDensity      float64 `mapstructure:"keyword_density"`
	Recency             float64 `mapstructure:"recency"`
}

// DefaultWeights returns the documented default weighting.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		SkillDepth:          0.30,
		ExperienceRelevance: 0.25,
		SeniorityMatch:      0.15,
		IndustryFit:         0.10,
		EducationMatch:      0.10,
		KeywordDensity:      0.05,
		Recency:             0.05,
	}
}

// AsVector returns the weights in canonical component order.
func (w WeightConfig) AsVector() []float64 {
	return []float64{
		w.SkillDepth,
		w.ExperienceRelevance,
		w.SeniorityMatch,
		w.IndustryFit,
		w.EducationMatch,
		w.KeywordDensity,
		w.Recency,
	}
}

// Apply computes the raw weighted score for a component-score vector.
func (w WeightConfig) Apply(scores models.ComponentScores) float64 {
	var raw float64
	weights := w.AsVector()
	for i, s := range scores.AsVector() {
		raw += weights[i] * s
	}
	return raw
}

// Validate enforces the weight invariants. Failures here are fatal at
// startup.
func (w WeightConfig) Validate() error {
	sum := 0.0
	for i, v := range w.AsVector() {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %f", models.ComponentOrder[i], v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.12f", sum)
	}
	return nil
}

// MatchingConfig holds the scoring and calibration settings.
type MatchingConfig struct {
	Weights WeightConfig `mapstructure:"weights"`

	// Sigmoid calibration: probability = 100 / (1 + e^(-steepness*(raw-midpoint))).
	// Defaults map the documented raw 0.949 anchor to ~91%.
	SigmoidSteepness float64 `mapstructure:"sigmoid_steepness"`
	SigmoidMidpoint  float64 `mapstructure:"sigmoid_midpoint"`

	// HeuristicBlend is the heuristic share when an ensemble is available.
	HeuristicBlend float64 `mapstructure:"heuristic_blend"`

	BatchWorkers   int `mapstructure:"batch_workers"`
	ExtractTimeout int `mapstructure:"extract_timeout"` // milliseconds
	CacheTTL       int `mapstructure:"cache_ttl"`       // seconds
}

// --- Tier Configuration ---

// TierConfig binds one subscription tier to its minimum probability
// threshold.
type TierConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// TiersConfig holds all per-tier thresholds plus the Premium/Elite human
// review margin.
type TiersConfig struct {
	Thresholds   map[string]TierConfig `mapstructure:"thresholds"`
	ReviewMargin float64               `mapstructure:"review_margin"`
}

// Threshold returns the minimum probability for the tier.
func (t TiersConfig) Threshold(tier models.SubscriptionTier) (float64, bool) {
	cfg, ok := t.Thresholds[string(tier)]
	if !ok {
		return 0, false
	}
	return cfg.Threshold, true
}

// Validate enforces that every tier has a threshold in [0,100] and that
// thresholds are non-increasing from Freemium to Elite. Equal adjacent
// thresholds are allowed (Premium and Elite share the documented default).
func (t TiersConfig) Validate() error {
	prev := math.Inf(1)
	for _, tier := range models.TierOrder {
		cfg, ok := t.Thresholds[string(tier)]
		if !ok {
			return fmt.Errorf("missing threshold for tier %q", tier)
		}
		if cfg.Threshold < 0 || cfg.Threshold > 100 {
			return fmt.Errorf("tier %q threshold out of range: %f", tier, cfg.Threshold)
		}
		if cfg.Threshold > prev {
			return fmt.Errorf("tier thresholds must not increase from freemium to elite: %q has %.1f after %.1f",
				tier, cfg.Threshold, prev)
		}
		prev = cfg.Threshold
	}
	if t.ReviewMargin < 0 || t.ReviewMargin > 50 {
		return fmt.Errorf("review_margin out of range: %f", t.ReviewMargin)
	}
	return nil
}

// --- Training Configuration ---

type TrainingConfig struct {
	// Schedule is a standard 5-field cron expression, e.g. "0 3 1 * *" for
	// monthly at 03:00 on the 1st.
	Schedule string `mapstructure:"schedule"`

	MinSamples         int     `mapstructure:"min_samples"`
	HoldoutFraction    float64 `mapstructure:"holdout_fraction"`
	RecencyHalfLife    int     `mapstructure:"recency_half_life_days"`
	MinAccuracy        float64 `mapstructure:"min_accuracy"`
	MaxAccuracyDrop    float64 `mapstructure:"max_accuracy_drop"`
	MaxCalibrationRise float64 `mapstructure:"max_calibration_rise"`

	Alerts struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"alerts"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the operational HTTP listener settings.
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DB_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Training.Alerts.TopicARN == "" {
		if val := os.Getenv("TRAINING_ALERT_TOPIC_ARN"); val != "" {
			cfg.Training.Alerts.TopicARN = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.MatchIndex == "" {
		cfg.Database.Elasticsearch.MatchIndex = "match-results"
	}

	// Matching defaults
	zeroWeights := WeightConfig{}
	if cfg.Matching.Weights == zeroWeights {
		cfg.Matching.Weights = DefaultWeights()
	}
	if cfg.Matching.SigmoidSteepness == 0 {
		cfg.Matching.SigmoidSteepness = 12.0
	}
	if cfg.Matching.SigmoidMidpoint == 0 {
		cfg.Matching.SigmoidMidpoint = 0.76
	}
	if cfg.Matching.HeuristicBlend == 0 {
		cfg.Matching.HeuristicBlend = 0.5
	}
	if cfg.Matching.BatchWorkers == 0 {
		cfg.Matching.BatchWorkers = 8
	}
	if cfg.Matching.ExtractTimeout == 0 {
		cfg.Matching.ExtractTimeout = 5000
	}
	if cfg.Matching.CacheTTL == 0 {
		cfg.Matching.CacheTTL = 900
	}

	// Tier defaults
	if len(cfg.Tiers.Thresholds) == 0 {
		cfg.Tiers.Thresholds = map[string]TierConfig{
			"freemium":     {Threshold: 80},
			"starter":      {Threshold: 70},
			"basic":        {Threshold: 65},
			"professional": {Threshold: 60},
			"premium":      {Threshold: 55},
			"elite":        {Threshold: 55},
		}
	}
	if cfg.Tiers.ReviewMargin == 0 {
		cfg.Tiers.ReviewMargin = 5
	}

	// Training defaults
	if cfg.Training.Schedule == "" {
		cfg.Training.Schedule = "0 3 1 * *"
	}
	if cfg.Training.MinSamples == 0 {
		cfg.Training.MinSamples = 50
	}
	if cfg.Training.HoldoutFraction == 0 {
		cfg.Training.HoldoutFraction = 0.2
	}
	if cfg.Training.RecencyHalfLife == 0 {
		cfg.Training.RecencyHalfLife = 180
	}
	if cfg.Training.MinAccuracy == 0 {
		cfg.Training.MinAccuracy = 0.55
	}
	if cfg.Training.MaxAccuracyDrop == 0 {
		cfg.Training.MaxAccuracyDrop = 0.02
	}
	if cfg.Training.MaxCalibrationRise == 0 {
		cfg.Training.MaxCalibrationRise = 0.05
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = ":9090"
	}

	// Worker defaults
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields. Invalid weights
// or tier thresholds are fatal: failing fast beats scoring with bad
// configuration.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if err := cfg.Matching.Weights.Validate(); err != nil {
		return fmt.Errorf("matching.weights: %w", err)
	}
	if cfg.Matching.SigmoidSteepness <= 0 {
		return fmt.Errorf("matching.sigmoid_steepness must be positive")
	}
	if cfg.Matching.HeuristicBlend < 0 || cfg.Matching.HeuristicBlend > 1 {
		return fmt.Errorf("matching.heuristic_blend must be in [0,1]")
	}

	if err := cfg.Tiers.Validate(); err != nil {
		return fmt.Errorf("tiers: %w", err)
	}

	if cfg.Training.HoldoutFraction <= 0 || cfg.Training.HoldoutFraction >= 1 {
		return fmt.Errorf("training.holdout_fraction must be in (0,1)")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

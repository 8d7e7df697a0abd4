package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DefaultPath is where Load looks for the YAML overrides.
const DefaultPath = "config.yaml"

// DefaultTreasuryURL is the US Treasury fiscal data API
const DefaultTreasuryURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// EngineConfig represents pricing engine configuration
type EngineConfig struct {
	ExecutionMode string  `yaml:"execution_mode"` // newton, rational, auto
	Tolerance     float64 `yaml:"tolerance"`      // absolute price tolerance for Newton-Raphson
	MaxIterations int     `yaml:"max_iterations"` // Newton-Raphson iteration cap
	Workers       int     `yaml:"workers"`        // concurrent contracts per batch
	BatchSize     int     `yaml:"batch_size"`     // max contracts per batch request
}

// RatesConfig controls the risk-free rate used when a request omits one
type RatesConfig struct {
	TreasuryURL  string  `yaml:"treasury_url"`  // empty disables fetching
	FallbackRate float64 `yaml:"fallback_rate"` // used until a fetch succeeds
	CacheMinutes int     `yaml:"cache_minutes"`
}

type Config struct {
	// Server settings
	Port string

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
	// Engine settings
	Engine EngineConfig `yaml:"engine"`
	// Default risk-free rate settings
	Rates RatesConfig `yaml:"rates"`
}

type YAMLConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Rates   struct {
		TreasuryURL  *string  `yaml:"treasury_url"`
		FallbackRate *float64 `yaml:"fallback_rate"`
		CacheMinutes int      `yaml:"cache_minutes"`
	} `yaml:"rates"`
}

// Load reads defaults from the environment, then applies config.yaml if present.
func Load() *Config {
	return LoadFrom(DefaultPath)
}

// LoadFrom is Load with an explicit YAML path.
func LoadFrom(path string) *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "black76.log"),
		},
		Engine: EngineConfig{
			ExecutionMode: getEnv("ENGINE_EXECUTION_MODE", "auto"),
			Tolerance:     getEnvFloat("ENGINE_TOLERANCE", 1e-4),
			MaxIterations: getEnvInt("ENGINE_MAX_ITERATIONS", 500),
			Workers:       getEnvInt("ENGINE_WORKERS", 8),
			BatchSize:     getEnvInt("ENGINE_BATCH_SIZE", 1000),
		},
		Rates: RatesConfig{
			TreasuryURL:  getEnv("RATES_TREASURY_URL", DefaultTreasuryURL),
			FallbackRate: getEnvFloat("RATES_FALLBACK_RATE", 0.04),
			CacheMinutes: getEnvInt("RATES_CACHE_MINUTES", 60),
		},
	}

	yamlCfg := loadYAMLConfig(path)
	if yamlCfg == nil {
		return cfg
	}

	if yamlCfg.Server.Port != "" {
		cfg.Port = yamlCfg.Server.Port
	}
	if yamlCfg.Logging.LogLevel != "" {
		cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
	}
	if yamlCfg.Logging.LogFile != "" {
		cfg.Logging.LogFile = yamlCfg.Logging.LogFile
	}
	if yamlCfg.Engine.ExecutionMode != "" {
		cfg.Engine.ExecutionMode = yamlCfg.Engine.ExecutionMode
	}
	if yamlCfg.Engine.Tolerance > 0 {
		cfg.Engine.Tolerance = yamlCfg.Engine.Tolerance
	}
	if yamlCfg.Engine.MaxIterations > 0 {
		cfg.Engine.MaxIterations = yamlCfg.Engine.MaxIterations
	}
	if yamlCfg.Engine.Workers > 0 {
		cfg.Engine.Workers = yamlCfg.Engine.Workers
	}
	if yamlCfg.Engine.BatchSize > 0 {
		cfg.Engine.BatchSize = yamlCfg.Engine.BatchSize
	}
	// Pointers so that an explicit "" or 0 in YAML is honoured
	if yamlCfg.Rates.TreasuryURL != nil {
		cfg.Rates.TreasuryURL = *yamlCfg.Rates.TreasuryURL
	}
	if yamlCfg.Rates.FallbackRate != nil {
		cfg.Rates.FallbackRate = *yamlCfg.Rates.FallbackRate
	}
	if yamlCfg.Rates.CacheMinutes > 0 {
		cfg.Rates.CacheMinutes = yamlCfg.Rates.CacheMinutes
	}

	return cfg
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Engine.ExecutionMode {
	case "newton", "rational", "auto":
	default:
		return fmt.Errorf("engine.execution_mode must be newton, rational or auto, got %q", c.Engine.ExecutionMode)
	}
	if c.Engine.Tolerance <= 0 {
		return fmt.Errorf("engine.tolerance must be positive, got %g", c.Engine.Tolerance)
	}
	if c.Engine.MaxIterations <= 0 {
		return fmt.Errorf("engine.max_iterations must be positive, got %d", c.Engine.MaxIterations)
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive, got %d", c.Engine.Workers)
	}
	if c.Engine.BatchSize <= 0 {
		return fmt.Errorf("engine.batch_size must be positive, got %d", c.Engine.BatchSize)
	}
	if math.IsNaN(c.Rates.FallbackRate) || math.IsInf(c.Rates.FallbackRate, 0) {
		return fmt.Errorf("rates.fallback_rate must be finite, got %g", c.Rates.FallbackRate)
	}
	if c.Rates.CacheMinutes <= 0 {
		return fmt.Errorf("rates.cache_minutes must be positive, got %d", c.Rates.CacheMinutes)
	}
	return nil
}

func loadYAMLConfig(path string) *YAMLConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		// No config file - environment and defaults only
		return nil
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config file - silently return nil
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

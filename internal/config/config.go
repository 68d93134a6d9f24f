package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// EnvPrefix prefixes every environment override, e.g. ASSESS_SERVER_PORT
const EnvPrefix = "ASSESS"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Scoring   ScoringConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port            int
	Mode            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	MaxBodyBytes    int64
	MaxAnswerLength int
	EnableHSTS      bool
	EnableGzip      bool
	EnableProfiling bool
}

type DatabaseConfig struct {
	DataDir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	PerMinute          int
	BurstMultiplier    int
	CohortReportPerMin int
}

// ModuleWeight is listed rather than keyed by module so that module names
// keep their case
type ModuleWeight struct {
	Module string  `mapstructure:"module"`
	Weight float64 `mapstructure:"weight"`
}

type ScoringConfig struct {
	CompositeStrategy string
	ModuleWeights     []ModuleWeight
	// Battery wins over Keywords when both are set
	Battery  []scoring.BatteryQuestion
	Keywords map[string][]string
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from an optional YAML file, a .env file and
// ASSESS_* environment variables, in increasing precedence. An empty path
// searches ./config.yaml and ./config/config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, apperrors.NewConfigurationError("failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigurationError("failed to unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.requestTimeout", 30*time.Second)
	v.SetDefault("server.maxBodyBytes", 1<<20)
	v.SetDefault("server.maxAnswerLength", 4000)
	v.SetDefault("server.enableHSTS", false)
	v.SetDefault("server.enableGzip", true)
	v.SetDefault("server.enableProfiling", false)

	v.SetDefault("database.dataDir", "./data")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("rateLimit.perMinute", 120)
	v.SetDefault("rateLimit.burstMultiplier", 1)
	v.SetDefault("rateLimit.cohortReportPerMin", 30)

	v.SetDefault("scoring.compositeStrategy", scoring.StrategyMean)

	v.SetDefault("logging.level", "info")
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	problems := map[string]string{}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems["server.port"] = fmt.Sprintf("must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems["server.mode"] = fmt.Sprintf("must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems["server.maxBodyBytes"] = "must be positive"
	}
	if c.Server.MaxAnswerLength <= 0 {
		problems["server.maxAnswerLength"] = "must be positive"
	}
	if c.Database.DataDir == "" {
		problems["database.dataDir"] = "must not be empty"
	}
	if c.Cache.TTL <= 0 {
		problems["cache.ttl"] = "must be positive"
	}
	if c.RateLimit.PerMinute <= 0 {
		problems["rateLimit.perMinute"] = "must be positive"
	}
	if c.RateLimit.CohortReportPerMin <= 0 {
		problems["rateLimit.cohortReportPerMin"] = "must be positive"
	}
	for i, w := range c.Scoring.ModuleWeights {
		if strings.TrimSpace(w.Module) == "" {
			problems[fmt.Sprintf("scoring.moduleWeights[%d].module", i)] = "must not be empty"
		}
	}

	if len(problems) > 0 {
		return apperrors.NewValidationErrorWithMap(problems)
	}

	if _, err := c.Strategy(); err != nil {
		return err
	}
	if _, err := c.Scorer(); err != nil {
		return err
	}
	return nil
}

// Weights returns the configured module weights keyed by module
func (c *Config) Weights() map[string]float64 {
	if len(c.Scoring.ModuleWeights) == 0 {
		return nil
	}
	weights := make(map[string]float64, len(c.Scoring.ModuleWeights))
	for _, w := range c.Scoring.ModuleWeights {
		weights[strings.TrimSpace(w.Module)] = w.Weight
	}
	return weights
}

// Strategy resolves the configured composite strategy
func (c *Config) Strategy() (scoring.CompositeStrategy, error) {
	return scoring.StrategyByName(strings.ToLower(strings.TrimSpace(c.Scoring.CompositeStrategy)), c.Weights())
}

// Scorer builds the keyword scorer from the configured battery, falling back
// to the standard interview
func (c *Config) Scorer() (*scoring.KeywordScorer, error) {
	switch {
	case len(c.Scoring.Battery) > 0:
		return scoring.NewKeywordScorer(c.Scoring.Battery)
	case len(c.Scoring.Keywords) > 0:
		return scoring.NewKeywordScorer(scoring.BatteryFromKeywords(c.Scoring.Keywords))
	default:
		return scoring.NewKeywordScorer(scoring.DefaultBattery())
	}
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

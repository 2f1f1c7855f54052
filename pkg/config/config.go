package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Stats struct {
		BaseURL      string        `yaml:"base_url"`
		Season       string        `yaml:"season"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"10m"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"20s"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Workers      int           `yaml:"workers" default:"4"`
		MaxRPS       float64       `yaml:"max_rps" default:"4"`
	} `yaml:"stats"`
	Schedule struct {
		Path string `yaml:"path"`
	} `yaml:"schedule"`
	Odds struct {
		BaseURL      string        `yaml:"base_url"`
		Sportsbook   string        `yaml:"sportsbook" default:"fanduel"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"15s"`
		DefaultTotal float64       `yaml:"default_total" default:"220"`
	} `yaml:"odds"`
	Scores struct {
		ScoreboardURL string        `yaml:"scoreboard_url"`
		FetchTimeout  time.Duration `yaml:"fetch_timeout" default:"10s"`
	} `yaml:"scores"`
	Models struct {
		Dir           string `yaml:"dir"`
		MoneylineFile string `yaml:"moneyline_file" default:"moneyline.model.json"`
		TotalFile     string `yaml:"total_file" default:"total.model.json"`
	} `yaml:"models"`
	Decision struct {
		MinEdge       float64 `yaml:"min_edge" default:"0.15"`
		MinOdds       float64 `yaml:"min_odds" default:"1.6"`
		KellyFraction float64 `yaml:"kelly_fraction" default:"0.25"`
		MaxStakePct   float64 `yaml:"max_stake_pct" default:"0.05"`
	} `yaml:"decision"`
	Orchestrator struct {
		ReferenceBankroll float64  `yaml:"reference_bankroll" default:"10000"`
		CronSpecs         []string `yaml:"cron_specs"`
	} `yaml:"orchestrator"`
	Advisor struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"advisor"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"courtedge.bundles"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		Compression  string        `yaml:"compression" default:"snappy"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"courtedge"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(c.Orchestrator.CronSpecs) == 0 {
		// twice-daily analysis: morning lines, evening refresh
		c.Orchestrator.CronSpecs = []string{"0 8 * * *", "0 18 * * *"}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STATS_BASE_URL"); v != "" {
		c.Stats.BaseURL = v
	}
	if v := os.Getenv("ODDS_BASE_URL"); v != "" {
		c.Odds.BaseURL = v
	}
	if v := os.Getenv("SCHEDULE_PATH"); v != "" {
		c.Schedule.Path = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = "redis"
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Stats.BaseURL == "" {
		return fmt.Errorf("stats.base_url is required")
	}
	if c.Schedule.Path == "" {
		return fmt.Errorf("schedule.path is required")
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when cache.backend is 'redis'")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Decision.MinOdds <= 1 {
		return fmt.Errorf("decision.min_odds must be greater than 1")
	}
	if c.Decision.KellyFraction <= 0 || c.Decision.KellyFraction > 1 {
		return fmt.Errorf("decision.kelly_fraction must be in (0, 1]")
	}
	if c.Decision.MaxStakePct <= 0 || c.Decision.MaxStakePct > 1 {
		return fmt.Errorf("decision.max_stake_pct must be in (0, 1]")
	}
	if c.Orchestrator.ReferenceBankroll <= 0 {
		return fmt.Errorf("orchestrator.reference_bankroll must be positive")
	}
	return nil
}

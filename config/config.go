// Package config loads service settings from an optional YAML file with
// SLC_* environment overrides, and decodes scenario files for the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"student-loan-sim/domain"
	"student-loan-sim/service"
)

const EnvPrefix = "SLC"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Returns    ReturnsConfig    `mapstructure:"returns"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Explain    ExplainConfig    `mapstructure:"explain"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type SimulationConfig struct {
	// Workers is the size of the path worker pool; 0 uses GOMAXPROCS.
	Workers         int                         `mapstructure:"workers"`
	MaxSimulations  int                         `mapstructure:"max_simulations"`
	MaxPaybackYears int                         `mapstructure:"max_payback_years"`
	HistorySize     int                         `mapstructure:"history_size"`
	Defaults        domain.SimulationParameters `mapstructure:"defaults"`
}

type ReturnsConfig struct {
	// DataDir holds <TICKER>.csv daily price files. Empty disables the
	// price series provider.
	DataDir       string        `mapstructure:"data_dir"`
	LookbackYears int           `mapstructure:"lookback_years"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Capacity int           `mapstructure:"capacity"`
	Refill   time.Duration `mapstructure:"refill"`
}

type ExplainConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	APIURL  string `mapstructure:"api_url"`
	Model   string `mapstructure:"model"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads path when given, otherwise ./config.yaml if present. Every key
// can be overridden from the environment, e.g. SLC_REDIS_ADDR.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.run_timeout", 45*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "slc:")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.max_simulations", service.MaxSimulationCount)
	v.SetDefault("simulation.max_payback_years", service.MaxPaybackYears)
	v.SetDefault("simulation.history_size", 1000)

	d := service.DefaultParameters()
	for key, value := range map[string]any{
		"initial_salary":        d.InitialSalary,
		"current_loan":          d.CurrentLoan,
		"payback_years":         d.PaybackYears,
		"threshold":             d.Threshold,
		"repayment_rate":        d.RepaymentRate,
		"salary_growth":         d.SalaryGrowth,
		"salary_growth_sigma":   d.SalaryGrowthSigma,
		"loan_rate":             d.LoanRate,
		"loan_rate_sigma":       d.LoanRateSigma,
		"investment_rate":       d.InvestmentRate,
		"investment_rate_sigma": d.InvestmentRateSigma,
		"child_prob":            d.ChildProb,
	} {
		v.SetDefault("simulation.defaults."+key, value)
	}

	v.SetDefault("returns.data_dir", "")
	v.SetDefault("returns.lookback_years", service.DefaultLookbackYears)
	v.SetDefault("returns.cache_ttl", 12*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 30)
	v.SetDefault("rate_limit.refill", time.Minute)

	v.SetDefault("explain.enabled", false)
	v.SetDefault("explain.api_key", "")
	v.SetDefault("explain.api_url", "")
	v.SetDefault("explain.model", "gpt-4o-mini")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.Simulation.Workers < 0 {
		return errors.New("simulation.workers must not be negative")
	}
	if c.Simulation.MaxSimulations < 1 {
		return errors.New("simulation.max_simulations must be positive")
	}
	if c.Simulation.MaxPaybackYears < 1 {
		return errors.New("simulation.max_payback_years must be positive")
	}
	if err := service.ValidateParameters(c.Simulation.Defaults); err != nil {
		return fmt.Errorf("simulation.defaults: %w", err)
	}
	if c.Returns.LookbackYears < 1 {
		return errors.New("returns.lookback_years must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Capacity < 1 || c.RateLimit.Refill <= 0) {
		return errors.New("rate_limit needs a positive capacity and refill period")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) Limits() service.Limits {
	return service.Limits{
		MaxSimulations:  c.Simulation.MaxSimulations,
		MaxPaybackYears: c.Simulation.MaxPaybackYears,
	}
}

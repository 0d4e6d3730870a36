package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"AstroPull/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Account     struct {
		Address string `yaml:"address" default:"0x2cf4F9f08AD241B42426107D21Bbf9CBB9E8De90" validate:"required,eth_addr"`
	} `yaml:"account"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format    string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Topic     string        `yaml:"topic" default:"astropull.logs"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Hyperliquid struct {
		InfoURL   string        `yaml:"info_url" default:"https://api.hyperliquid.xyz/info" validate:"url"`
		WSURL     string        `yaml:"ws_url" default:"wss://api.hyperliquid.xyz/ws" validate:"url"`
		Transport string        `yaml:"transport" default:"rest" validate:"oneof=rest websocket"`
		Timeout   time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"hyperliquid"`
	CoinGecko struct {
		BaseURL   string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"url"`
		Timeout   time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"24h" validate:"gt=0"`
		CacheSize int           `yaml:"cache_size" default:"1024" validate:"gt=0"`
	} `yaml:"coingecko"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"astropull"`
		PoolSize int           `yaml:"pool_size" default:"10" validate:"gt=0"`
		MinIdle  int           `yaml:"min_idle" default:"2" validate:"gte=0"`
		PoolWait time.Duration `yaml:"pool_timeout" default:"5s"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		MaxAttempts  int      `yaml:"max_attempts" default:"3"`
	} `yaml:"kafka"`
	Events struct {
		Enabled bool   `yaml:"enabled"`
		Topic   string `yaml:"topic" default:"astropull.sessions"`
	} `yaml:"events"`
	Sessions struct {
		CookieName string        `yaml:"cookie_name" default:"astropull_session"`
		MaxEntries int           `yaml:"max_entries" default:"1024" validate:"gt=0"`
		IdleTTL    time.Duration `yaml:"idle_ttl" default:"30m" validate:"gt=0"`
	} `yaml:"sessions"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"0.5"`
		Burst   int     `yaml:"burst" default:"3"`
	} `yaml:"rate_limit"`
	Pivot struct {
		AllLabels bool `yaml:"all_labels"`
	} `yaml:"pivot"`
}

var validate = validator.New()

// Default returns a config with every default applied and no file read.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env files, then the YAML file (if path is set and exists),
// then applies environment overrides. A missing file is not an error.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env: %w", err)
	}

	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ASTRO_ADDRESS"); v != "" {
		c.Account.Address = v
	}
	if v := os.Getenv("HL_INFO_URL"); v != "" {
		c.Hyperliquid.InfoURL = v
	}
	if v := os.Getenv("HL_TRANSPORT"); v != "" {
		c.Hyperliquid.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("COINGECKO_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks field rules and the cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if (c.Events.Enabled || c.Log.Collector.Enabled) && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when events or log collection are enabled")
	}
	return nil
}

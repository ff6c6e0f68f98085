package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL    string        `yaml:"base_url" validate:"required,url"`
		APIKey     string        `yaml:"api_key"`
		RateLimit  float64       `yaml:"rate_limit" validate:"gte=0"`
		RateBurst  int           `yaml:"rate_burst" validate:"gte=0"`
		Retries    int           `yaml:"retries" validate:"gte=0,lte=10"`
		RetryWait  time.Duration `yaml:"retry_wait"`
		ListingURL string        `yaml:"listing_url" validate:"required,url"`
	} `yaml:"data_source"`
	Cache struct {
		TTL       time.Duration `yaml:"ttl"`
		RedisAddr string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
		RedisPass string        `yaml:"redis_password"`
		RedisDB   int           `yaml:"redis_db" validate:"gte=0"`
	} `yaml:"cache"`
	Schedule struct {
		ScreeningCron string `yaml:"screening_cron" validate:"required,cron"`
		WatchlistCron string `yaml:"watchlist_cron" validate:"omitempty,cron"`
	} `yaml:"schedule"`
	Analysis struct {
		PriceLookbackMonths int      `yaml:"price_lookback_months" validate:"min=1,max=24"`
		Concurrency         int      `yaml:"concurrency" validate:"min=1,max=32"`
		Watchlist           []string `yaml:"watchlist" validate:"dive,required"`
	} `yaml:"analysis"`
	Discovery struct {
		SampleSize int `yaml:"sample_size" validate:"min=1"`
	} `yaml:"discovery"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Anthropic struct {
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		MaxTokens int64  `yaml:"max_tokens" validate:"gte=0"`
	} `yaml:"anthropic"`
	Metrics struct {
		Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy" validate:"omitempty,url"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&cfg.DataSource.APIKey, "FINANCIAL_DATASETS_API_KEY")
	setString(&cfg.DataSource.BaseURL, "FINANCIAL_DATASETS_BASE_URL")
	setString(&cfg.Proxy, "HTTPS_PROXY")
	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Cache.RedisPass, "REDIS_PASSWORD")
	setString(&cfg.Schedule.ScreeningCron, "CRON_SCREENING")
	setString(&cfg.Schedule.WatchlistCron, "CRON_WATCHLIST")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "ANTHROPIC_MODEL")
	setString(&cfg.Metrics.Addr, "METRICS_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Analysis.Watchlist = splitList(v)
	}
	if v := os.Getenv("ANALYSIS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Concurrency = n
		}
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://api.financialdatasets.ai"
	}
	if cfg.DataSource.ListingURL == "" {
		cfg.DataSource.ListingURL = "https://www.nasdaqtrader.com/dynamic/SymDir"
	}
	if cfg.DataSource.RateLimit == 0 {
		cfg.DataSource.RateLimit = 5
	}
	if cfg.DataSource.RateBurst == 0 {
		cfg.DataSource.RateBurst = 5
	}
	if cfg.DataSource.Retries == 0 {
		cfg.DataSource.Retries = 3
	}
	if cfg.DataSource.RetryWait == 0 {
		cfg.DataSource.RetryWait = time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Schedule.ScreeningCron == "" {
		cfg.Schedule.ScreeningCron = "CRON_TZ=Europe/Berlin 0 0 10 1 2 *"
	}
	if cfg.Schedule.WatchlistCron == "" {
		cfg.Schedule.WatchlistCron = "0 0 22 * * 1-5"
	}
	if cfg.Analysis.PriceLookbackMonths == 0 {
		cfg.Analysis.PriceLookbackMonths = 3
	}
	if cfg.Analysis.Concurrency == 0 {
		cfg.Analysis.Concurrency = 4
	}
	if cfg.Discovery.SampleSize == 0 {
		cfg.Discovery.SampleSize = 50
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_screener.db"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-sonnet-4-5"
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = 2048
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cronParser.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field constraints. The financial data API key is always
// required; Telegram credentials are required only when requireTelegram is set.
func (c *Config) Validate(requireTelegram bool) error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required")
	}
	if requireTelegram {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
		out = append(out, strings.ToUpper(part))
	}
	return out
}

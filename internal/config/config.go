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

	"StockScope/internal/indicator"
	"StockScope/internal/logger"
)

const dateLayout = time.DateOnly

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Source            string   `yaml:"source" validate:"oneof=yahoo vstrader mock"`
		BaseURL           string   `yaml:"base_url" validate:"required_if=Source vstrader"`
		APIKey            string   `yaml:"api_key"`
		Symbols           []string `yaml:"symbols" default:"[\"AAPL\"]" validate:"min=1,dive,required"`
		Start             string   `yaml:"start"`
		End               string   `yaml:"end"`
		LookbackDays      int      `yaml:"lookback_days" default:"365" validate:"gt=0"`
		RequestsPerSecond float64  `yaml:"requests_per_second" default:"2" validate:"gt=0"`
	} `yaml:"data_source"`
	Indicators indicator.Config `yaml:"indicators" validate:"-"`
	Batch      struct {
		Workers    int  `yaml:"workers" default:"4" validate:"gt=0"`
		TrimWarmup bool `yaml:"trim_warmup"`
	} `yaml:"batch"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log   logger.Config `yaml:"log"`
	Proxy string        `yaml:"proxy"`
}

// Load applies defaults, then the YAML file (if it exists), then
// environment variable overrides. A .env file in the working directory
// is read first and never overrides variables already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

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
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.DataSource.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Source = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.Workers = n
		}
	}

	if cfg.DataSource.Source == "" {
		cfg.DataSource.Source = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Source = "vstrader"
		}
	}

	return cfg, nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New()

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if err := c.Indicators.Validate(); err != nil {
		return err
	}
	if _, _, err := c.Range(time.Now()); err != nil {
		return err
	}
	return nil
}

// Range resolves the configured date range. A missing end means now; a
// missing start means lookback_days before end.
func (c *Config) Range(now time.Time) (start, end time.Time, err error) {
	end = now
	if c.DataSource.End != "" {
		if end, err = time.Parse(dateLayout, c.DataSource.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("data_source.end: %w", err)
		}
	}
	start = end.AddDate(0, 0, -c.DataSource.LookbackDays)
	if c.DataSource.Start != "" {
		if start, err = time.Parse(dateLayout, c.DataSource.Start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("data_source.start: %w", err)
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("data_source: start %s is not before end %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}
	return start, end, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Report struct {
		Days      int           `yaml:"days" validate:"gt=0"`
		TopN      int           `yaml:"top_n" validate:"gt=0"`
		Workers   int           `yaml:"workers" validate:"gte=1,lte=5"`
		Pace      time.Duration `yaml:"pace" validate:"gte=0"`
		Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
		OutputDir string        `yaml:"output_dir" validate:"required"`
		Sources   []string      `yaml:"sources" validate:"min=1,dive,required"`
		Cron      string        `yaml:"cron" validate:"required"`
	} `yaml:"report"`
	DataSource struct {
		Provider  string        `yaml:"provider" validate:"oneof=yahoo vstrader alpaca"`
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	} `yaml:"data_source"`
	Email struct {
		Recipient string `yaml:"recipient" validate:"omitempty,email"`
		From      string `yaml:"from"`
		SMTPHost  string `yaml:"smtp_host"`
		SMTPPort  int    `yaml:"smtp_port"`
		Username  string `yaml:"username"`
		Password  string `yaml:"password"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Retry struct {
		MaxAttempts     int           `yaml:"max_attempts" validate:"gte=1"`
		InitialInterval time.Duration `yaml:"initial_interval" validate:"gt=0"`
		MaxInterval     time.Duration `yaml:"max_interval" validate:"gtefield=InitialInterval"`
		Multiplier      float64       `yaml:"multiplier" validate:"gte=1"`
	} `yaml:"retry"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// Environment variable overrides
	if v := os.Getenv("REPORT_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REPORT_DAYS value: %w", err)
		}
		cfg.Report.Days = n
	}
	if v := os.Getenv("REPORT_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REPORT_TOP_N value: %w", err)
		}
		cfg.Report.TopN = n
	}
	if v := os.Getenv("REPORT_SOURCES"); v != "" {
		cfg.Report.Sources = strings.Split(v, ",")
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Report.Cron = v
	}
	if v := os.Getenv("REPORT_RECIPIENT"); v != "" {
		cfg.Email.Recipient = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		cfg.DataSource.APISecret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Report.Days == 0 {
		cfg.Report.Days = 90
	}
	if cfg.Report.TopN == 0 {
		cfg.Report.TopN = 10
	}
	if cfg.Report.Workers == 0 {
		cfg.Report.Workers = 1
	}
	if cfg.Report.Pace == 0 {
		cfg.Report.Pace = time.Second
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "outputs"
	}
	if len(cfg.Report.Sources) == 0 {
		cfg.Report.Sources = []string{"data/NASDAQ_sample.txt", "data/NYSE_sample.txt"}
	}
	if cfg.Report.Cron == "" {
		cfg.Report.Cron = "0 0 18 * * 1-5"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "vstrader"
		}
	}
	if cfg.DataSource.CacheTTL == 0 {
		cfg.DataSource.CacheTTL = time.Hour
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Username
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialInterval == 0 {
		cfg.Retry.InitialInterval = 4 * time.Second
	}
	if cfg.Retry.MaxInterval == 0 {
		cfg.Retry.MaxInterval = 10 * time.Second
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market_movers.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
}

// EmailEnabled reports whether a recipient is configured.
func (c *Config) EmailEnabled() bool { return c.Email.Recipient != "" }

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks field constraints and the settings each enabled feature needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.EmailEnabled() {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required when email.recipient is set")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email.recipient is set")
		}
	}
	switch c.DataSource.Provider {
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and api_secret are required for alpaca")
		}
	}
	return nil
}

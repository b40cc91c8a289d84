package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Registry struct {
		// Path is a YAML point system table. Empty uses the built-in table.
		Path string `yaml:"path"`
	} `yaml:"registry"`
	Plan struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"plan"`
	Budget struct {
		FloatCeiling        float64 `yaml:"float_ceiling"`
		HuntYearBudget      float64 `yaml:"hunt_year_budget"`
		CriticalBand        float64 `yaml:"critical_band"`
		PointCreepThreshold int     `yaml:"point_creep_threshold"`
	} `yaml:"budget"`
	Schedule struct {
		DeadlineCron  string `yaml:"deadline_cron"`
		LiquidityCron string `yaml:"liquidity_cron"`
		DigestCron    string `yaml:"digest_cron"`
		ReminderDays  int    `yaml:"reminder_days"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}
	if v := os.Getenv("PLAN_STATE_FILE"); v != "" {
		cfg.Plan.StateFile = v
	}
	if v := os.Getenv("FLOAT_CEILING"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Budget.FloatCeiling = f
		}
	}
	if v := os.Getenv("HUNT_YEAR_BUDGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Budget.HuntYearBudget = f
		}
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Plan.StateFile == "" {
		cfg.Plan.StateFile = "data/plan.json"
	}
	if cfg.Budget.CriticalBand == 0 {
		cfg.Budget.CriticalBand = 0.2
	}
	if cfg.Budget.PointCreepThreshold == 0 {
		cfg.Budget.PointCreepThreshold = 6
	}
	if cfg.Schedule.DeadlineCron == "" {
		cfg.Schedule.DeadlineCron = "0 0 7 * * *"
	}
	if cfg.Schedule.LiquidityCron == "" {
		cfg.Schedule.LiquidityCron = "0 0 8 * * 1"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 1 * *"
	}
	if cfg.Schedule.ReminderDays == 0 {
		cfg.Schedule.ReminderDays = 14
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/draw_planner.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Budget.FloatCeiling <= 0 {
		return fmt.Errorf("budget.float_ceiling must be positive")
	}
	if c.Budget.HuntYearBudget < 0 {
		return fmt.Errorf("budget.hunt_year_budget must not be negative")
	}
	if c.Budget.CriticalBand <= 0 || c.Budget.CriticalBand > 1 {
		return fmt.Errorf("budget.critical_band must be in (0, 1]")
	}
	if c.Budget.PointCreepThreshold < 1 {
		return fmt.Errorf("budget.point_creep_threshold must be at least 1")
	}
	if c.Schedule.ReminderDays < 1 {
		return fmt.Errorf("schedule.reminder_days must be at least 1")
	}
	return nil
}

// FloatCeiling is the most money the hunter can have floated at once.
func (c *Config) FloatCeiling() decimal.Decimal {
	return decimal.NewFromFloat(c.Budget.FloatCeiling)
}

// HuntYearBudget caps a single year's planned spending. Zero disables the check.
func (c *Config) HuntYearBudget() decimal.Decimal {
	return decimal.NewFromFloat(c.Budget.HuntYearBudget)
}

func (c *Config) CriticalBand() decimal.Decimal {
	return decimal.NewFromFloat(c.Budget.CriticalBand)
}

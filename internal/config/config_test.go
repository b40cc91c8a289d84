package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
  chat_id: "42"
budget:
  float_ceiling: 1500
  hunt_year_budget: 6000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.FloatCeiling().Equal(decimal.NewFromInt(1500)))
	assert.True(t, cfg.HuntYearBudget().Equal(decimal.NewFromInt(6000)))
	assert.True(t, cfg.CriticalBand().Equal(decimal.NewFromFloat(0.2)))
	assert.Equal(t, 6, cfg.Budget.PointCreepThreshold)
	assert.Equal(t, "data/plan.json", cfg.Plan.StateFile)
	assert.Equal(t, "0 0 9 1 * *", cfg.Schedule.DigestCron)
	assert.Equal(t, 14, cfg.Schedule.ReminderDays)
	assert.Empty(t, cfg.Registry.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "budget:\n  float_ceiling: 1500\n")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "7")
	t.Setenv("FLOAT_CEILING", "2500.50")
	t.Setenv("REGISTRY_PATH", "/etc/planner/states.yaml")
	t.Setenv("SQLITE_PATH", "/tmp/history.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, 2500.50, cfg.Budget.FloatCeiling)
	assert.Equal(t, "/etc/planner/states.yaml", cfg.Registry.Path)
	assert.Equal(t, "/tmp/history.db", cfg.Database.SQLitePath)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/draw_planner.db", cfg.Database.SQLitePath)
}

func TestLoad_UnsetCeilingFailsValidation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "telegram:\n  bot_token: tok\n  chat_id: \"42\"\n"))
	require.NoError(t, err)
	assert.EqualError(t, cfg.Validate(), "budget.float_ceiling must be positive")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "budget: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.BotToken = "tok"
		c.Telegram.ChatID = "42"
		c.Budget.FloatCeiling = 1500
		c.Budget.CriticalBand = 0.2
		c.Budget.PointCreepThreshold = 6
		c.Schedule.ReminderDays = 14
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"no chat", func(c *Config) { c.Telegram.ChatID = "" }},
		{"negative ceiling", func(c *Config) { c.Budget.FloatCeiling = -1 }},
		{"unset ceiling", func(c *Config) { c.Budget.FloatCeiling = 0 }},
		{"negative hunt budget", func(c *Config) { c.Budget.HuntYearBudget = -100 }},
		{"band above one", func(c *Config) { c.Budget.CriticalBand = 1.5 }},
		{"zero creep threshold", func(c *Config) { c.Budget.PointCreepThreshold = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeAI, c.Game.Mode)
	assert.Equal(t, 16, c.Game.ChatSize)
	assert.Equal(t, 3*time.Second, c.Advisor.Timeout)
	assert.Equal(t, Name, c.Log.AppName)
	assert.Equal(t, 1, c.Game.HumanSeats())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
game:
  mode: local
  players: 3
  think_delay: 250ms
advisor:
  timeout: 2s
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, c.Game.Mode)
	assert.Equal(t, 3, c.Game.HumanSeats())
	assert.Equal(t, 250*time.Millisecond, c.Game.ThinkDelay)
	assert.Equal(t, 2*time.Second, c.Advisor.Timeout)
	// 未填写的字段取默认值
	assert.Equal(t, 100, c.Game.Work.PoolSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LUDO_ADVISOR_API_KEY", "sk-test")
	t.Setenv("LUDO_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("LUDO_MODE", ModeBots)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", c.Advisor.APIKey)
	assert.Equal(t, "127.0.0.1:6379", c.Data.Redis.Addr)
	assert.Equal(t, 0, c.Game.HumanSeats())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "game: [oops"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "game:\n  mode: chess\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Bootstrap)
	}{
		{"local too few", func(c *Bootstrap) { c.Game.Mode, c.Game.Players = ModeLocal, 1 }},
		{"local too many", func(c *Bootstrap) { c.Game.Mode, c.Game.Players = ModeLocal, 5 }},
		{"no matches", func(c *Bootstrap) { c.Game.Matches = 0 }},
		{"negative delay", func(c *Bootstrap) { c.Game.ThinkDelay = -time.Second }},
		{"zero timeout", func(c *Bootstrap) { c.Advisor.Timeout = 0 }},
		{"enabled without url", func(c *Bootstrap) { c.Advisor.Enabled, c.Advisor.BaseURL = true, "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
	c := Default()
	assert.NoError(t, c.Validate())
}

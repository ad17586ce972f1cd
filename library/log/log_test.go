package log

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		c := DefaultConfig()
		c.Level = "loud"
		_, err := NewLogger(c)
		require.Error(t, err)
	})

	t.Run("set level", func(t *testing.T) {
		l, err := NewLogger(DefaultConfig())
		require.NoError(t, err)
		defer l.Close()

		l.SetLevel("warn")
		require.Equal(t, "warn", l.GetLevel())

		l.SetLevel("nope")
		require.Equal(t, "warn", l.GetLevel())
	})

	t.Run("prod writes files", func(t *testing.T) {
		c := DefaultConfig()
		c.Mode = ModeProd
		c.Directory = t.TempDir()
		c.AppName = "ludo"
		c.ErrorFile = true
		l, err := NewLogger(c)
		require.NoError(t, err)

		l.GetZap().Error("boom")
		require.NoError(t, l.Close())
		require.FileExists(t, filepath.Join(c.Directory, "ludo.log"))
		require.FileExists(t, filepath.Join(c.Directory, "ludo_error.log"))
	})
}

func TestGlobal(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	l, err := NewLogger(DefaultConfig())
	require.NoError(t, err)
	SetLogger(l)
	SetLogger(nil)
	require.Same(t, l, GetLogger())

	Infof("hello %s", "ludo")
	Infow("structured", "match", "m-1", "dice", 6)
}

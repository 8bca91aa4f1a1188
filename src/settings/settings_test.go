package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	require := require.New(t)

	s := GetSettings()
	require.Same(s, GetSettings())
	require.Equal(DefaultTimeout, s.Timeout)
	require.Equal(DefaultURI, s.URI)
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	t.Run("must be ok to load and apply", func(t *testing.T) {
		path := filepath.Join(dir, "monkko.yaml")
		require.NoError(os.WriteFile(path, []byte("uri: mongodb://db:27017\ntimeout: 30s\ndebug: true\nschemas: app.yaml\n"), 0644))

		cfg, err := LoadConfigFile(path)
		require.NoError(err)
		require.Equal(30*time.Second, cfg.Timeout)

		args := Arguments{URI: "mongodb://flag:27017", Timeout: DefaultTimeout}
		args.ApplyConfig(cfg, func(flag string) bool { return flag == FlagURI })

		require.Equal("mongodb://flag:27017", args.URI)
		require.Equal(30*time.Second, args.Timeout)
		require.True(args.Debug)
		require.Equal("app.yaml", args.SchemaFile)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(os.WriteFile(path, []byte("port: 1776\n"), 0644))
		_, err := LoadConfigFile(path)
		require.Error(err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
		require.ErrorIs(err, os.ErrNotExist)
	})
}

func TestValidate(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	require.NoError((&Arguments{Timeout: time.Second}).Validate())
	require.ErrorIs((&Arguments{}).Validate(), ErrInvalidSettings)
	require.ErrorIs((&Arguments{Timeout: time.Second, SchemaFile: filepath.Join(dir, "nope.yaml")}).Validate(), ErrInvalidSettings)
	require.ErrorIs((&Arguments{Timeout: time.Second, SchemaFile: dir}).Validate(), ErrInvalidSettings)
}

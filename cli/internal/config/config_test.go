package config

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = prev })
	t.Setenv("HOME", "/home/tester")
	t.Setenv("DATABASE_URL", "")
	return AppFs
}

func TestLoadDefaults(t *testing.T) {
	withFs(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "schema.sqlorm", cfg.SchemaPath)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "sqlite3", cfg.Driver)
	assert.True(t, cfg.Preserve)
	assert.False(t, cfg.History)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestSaveThenLoad(t *testing.T) {
	withFs(t)
	want := &Config{
		SchemaPath:  "db/app.yaml",
		Provider:    "sqlite",
		Driver:      "sqlite",
		DatabaseURL: "file:app.db",
		Preserve:    false,
		History:     true,
	}
	// Viper resolves "." to the absolute working directory.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, Save(want, cwd))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvOverrides(t *testing.T) {
	withFs(t)
	t.Setenv("SQLORM_PROVIDER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Provider)
	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
}

func TestHomeConfig(t *testing.T) {
	fs := withFs(t)
	require.NoError(t, afero.WriteFile(fs, "/home/tester/.config/sqlorm/.sqlorm.yaml", []byte("provider: mysql\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Provider)
}

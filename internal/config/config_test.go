package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10, cfg.App.SearchLimit)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/static/images/image-regular.png", cfg.Storage.DefaultImage)
	assert.True(t, cfg.Auth.UsesDefaultSecret())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9090"
  write_timeout: 30s
database:
  host: db
  dbname: tickets
app:
  search_limit: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("CONCERTS_DATABASE_PASSWORD", "s3cret")
	t.Setenv("CONCERTS_AUTH_SECRET", "from-env")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.False(t, cfg.Auth.UsesDefaultSecret())
	assert.Equal(t, 25, cfg.App.SearchLimit)
	assert.Equal(t,
		"host=db port=5432 user=postgres password=s3cret dbname=tickets sslmode=disable",
		cfg.Database.DSN(),
	)
}

func TestLoadRejectsEmptySecret(t *testing.T) {
	t.Setenv("CONCERTS_AUTH_SECRET", " ")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "auth.secret")
}

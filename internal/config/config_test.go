package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
storage:
  driver: postgres
  seed_file: seed.yaml
cluster:
  threshold_meters: 45.5
jwt:
  secret: s3cret
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 45.5, cfg.Cluster.ThresholdMeters)
	assert.Equal(t, 5000.0, cfg.Cluster.NearbyRadiusMeters)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, -36.8485, cfg.Geolocation.Latitude)
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MEMORYMAP_JWT_SECRET", "from-env")
	t.Setenv("MEMORYMAP_PORT", "7000")
	t.Setenv("MEMORYMAP_CLUSTER_THRESHOLD", "12.5")

	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 12.5, cfg.Cluster.ThresholdMeters)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "MEMORYMAP_JWT_SECRET=dotenv-secret\nMEMORYMAP_STORAGE=memory\n")
	t.Cleanup(func() {
		os.Unsetenv("MEMORYMAP_JWT_SECRET")
		os.Unsetenv("MEMORYMAP_STORAGE")
	})

	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.JWT.Secret)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [port"},
		{"missing secret", "log:\n  level: info\n"},
		{"bad driver", "jwt:\n  secret: x\nstorage:\n  driver: mongo\n"},
		{"bad threshold", "jwt:\n  secret: x\ncluster:\n  threshold_meters: -3\n"},
		{"bad geolocation", "jwt:\n  secret: x\ngeolocation:\n  mode: gps\n"},
		{"bad resolution", "jwt:\n  secret: x\ncluster:\n  area_resolution: 16\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "config.yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())
}

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-map-backend/internal/config"
	"memory-map-backend/internal/models"
	"memory-map-backend/internal/services"
)

func TestClusterCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"cluster", "../testdata/seed.yaml", "--threshold", "60"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		clusterThreshold = 30
	})

	require.NoError(t, rootCmd.Execute())

	var clusters []models.Cluster
	require.NoError(t, json.Unmarshal(out.Bytes(), &clusters))
	require.Len(t, clusters, 4)
	assert.Equal(t, "harbour", clusters[0].Members[0].GroupTag)
	assert.Equal(t, 2, clusters[1].Size)
}

func TestLocalMemories(t *testing.T) {
	repo, err := localMemories("../testdata/seed.yaml")
	require.NoError(t, err)
	all, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 6)

	empty, err := localMemories("")
	require.NoError(t, err)
	all, err = empty.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = localMemories("../testdata/missing.yaml")
	assert.Error(t, err)
}

func TestNewLocator(t *testing.T) {
	cfg := config.Default().Geolocation
	_, ok := newLocator(cfg).(*services.StaticProvider)
	assert.True(t, ok)

	cfg.Mode = "simulated"
	_, ok = newLocator(cfg).(*services.SimulatedProvider)
	assert.True(t, ok)
}

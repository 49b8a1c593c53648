package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/meysamhadeli/codesnap/code_snapshot"
	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedDependencies(t *testing.T) (*RootDependencies, models.Profile) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/src/index.ts", []byte("export {}\n"), 0644))

	cacheManager, err := code_snapshot.NewCacheManager(fs, "/cache")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	profile := *cfg.Profiles["server"]
	profile.Root = "/srv"
	profile.Output = "/server_code_snapshot.txt"

	return &RootDependencies{
		Config:   &cfg,
		Fs:       fs,
		Gatherer: code_snapshot.NewGatherer(fs, cacheManager, nil),
	}, profile
}

func TestHandleCacheStats(t *testing.T) {
	rootDependencies, profile := newCachedDependencies(t)
	_, err := rootDependencies.Gatherer.Gather(context.Background(), profile)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, handleCacheStats(rootDependencies, &out))

	text := out.String()
	assert.Contains(t, text, "Cache Directory: /cache")
	assert.Contains(t, text, "Stored Manifests: 1")
	assert.Contains(t, text, "Newest Manifest: ")
	assert.Contains(t, text, "Total Size: ")
}

func TestHandlePruneCache_DryRunKeepsManifests(t *testing.T) {
	rootDependencies, profile := newCachedDependencies(t)
	_, err := rootDependencies.Gatherer.Gather(context.Background(), profile)
	require.NoError(t, err)

	var out bytes.Buffer
	options := models.CacheCleanupOptions{MaxAge: time.Nanosecond, DryRun: true}
	require.NoError(t, handlePruneCache(rootDependencies, options, &out))
	assert.Contains(t, out.String(), "Would remove 1 of 1 manifests (1 by age, 0 by count).")

	stats, err := rootDependencies.Gatherer.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["cache_files"])

	out.Reset()
	options.DryRun = false
	require.NoError(t, handlePruneCache(rootDependencies, options, &out))
	assert.Contains(t, out.String(), "Removed 1 of 1 manifests")
}

func TestHandleForgetProfile(t *testing.T) {
	rootDependencies, profile := newCachedDependencies(t)
	rootDependencies.Config.Profiles["server"] = &profile

	_, err := rootDependencies.Gatherer.Gather(context.Background(), profile)
	require.NoError(t, err)

	require.NoError(t, handleForgetProfile(rootDependencies, "server", true))

	result, err := rootDependencies.Gatherer.Gather(context.Background(), profile)
	require.NoError(t, err)
	assert.True(t, result.Changes.FirstRun)

	assert.Error(t, handleForgetProfile(rootDependencies, "desktop", true))
}

func TestPrintCacheStats_Disabled(t *testing.T) {
	var out bytes.Buffer
	printCacheStats(map[string]interface{}{"cache_enabled": false}, &out)
	assert.Contains(t, out.String(), "Cache is disabled")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"adzuna_app_id": "app-1",
		"adzuna_country": "ca",
		"evidence_ttl_hours": 48,
		"region": "on"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "app-1", cfg.AdzunaAppID)
	assert.Equal(t, "ca", cfg.AdzunaCountry)
	assert.Equal(t, 48, cfg.EvidenceTTLHours)
	assert.Equal(t, "on", cfg.Region)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, "{not json")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestValidate_PageSizeRange(t *testing.T) {
	cfg := &Config{AdzunaPageSize: 51}
	require.Error(t, cfg.Validate())

	cfg.AdzunaPageSize = 50
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MaxPagesRange(t *testing.T) {
	cfg := &Config{AdzunaMaxPages: 11}
	require.Error(t, cfg.Validate())

	cfg.AdzunaMaxPages = 2
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NegativeTTL(t *testing.T) {
	cfg := &Config{EvidenceTTLHours: -1}
	require.Error(t, cfg.Validate())
}

func TestMergeWithDefaults_FillsEmptyOnly(t *testing.T) {
	cfg := &Config{AdzunaAppID: "explicit", Region: ""}
	merged := cfg.MergeWithDefaults(Config{AdzunaAppID: "default", Region: "on", AdzunaPageSize: 20})

	assert.Equal(t, "explicit", merged.AdzunaAppID)
	assert.Equal(t, "on", merged.Region)
	assert.Equal(t, 20, merged.AdzunaPageSize)
}

func TestEvidenceTTL_DefaultsTo72Hours(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 72*time.Hour, cfg.EvidenceTTL())

	cfg.EvidenceTTLHours = 24
	assert.Equal(t, 24*time.Hour, cfg.EvidenceTTL())
}

func TestFromEnv_ReadsKnobs(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "env-app")
	t.Setenv("ADZUNA_PAGE_SIZE", "30")
	t.Setenv("EVIDENCE_TTL_HOURS", "12")
	t.Setenv("PLANNER_REGION", "bc")

	cfg := FromEnv()
	assert.Equal(t, "env-app", cfg.AdzunaAppID)
	assert.Equal(t, 30, cfg.AdzunaPageSize)
	assert.Equal(t, 12, cfg.EvidenceTTLHours)
	assert.Equal(t, "bc", cfg.Region)
}

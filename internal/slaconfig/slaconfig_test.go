package slaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sla.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	th, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultThresholds(), th)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	th, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultThresholds(), th)
}

func TestLoadPartialOverride(t *testing.T) {
	path := writeFile(t, "thresholds:\n  survey: 5\n")
	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, th[analytics.StageSurvey])
	assert.Equal(t, 3.0, th[analytics.StageScheduling])
	assert.Equal(t, 3.0, th[analytics.StageInstallWait])
}

func TestLoadFullOverride(t *testing.T) {
	path := writeFile(t, "thresholds:\n  survey: 1.5\n  scheduling: 2\n  install_wait: 7\n")
	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, th[analytics.StageSurvey])
	assert.Equal(t, 2.0, th[analytics.StageScheduling])
	assert.Equal(t, 7.0, th[analytics.StageInstallWait])
}

func TestLoadRejectsNegative(t *testing.T) {
	path := writeFile(t, "thresholds:\n  survey: -1\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, "thresholds: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

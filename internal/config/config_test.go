package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/dedupe/internal/match"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DEDUPE_TEST_STR", "value")
	t.Setenv("DEDUPE_TEST_INT", "42")
	t.Setenv("DEDUPE_TEST_BAD_INT", "forty")
	t.Setenv("DEDUPE_TEST_BOOL", "yes")

	assert.Equal(t, "value", GetEnv("DEDUPE_TEST_STR", "x"))
	assert.Equal(t, "x", GetEnv("DEDUPE_TEST_UNSET", "x"))
	assert.Equal(t, 42, GetEnvInt("DEDUPE_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("DEDUPE_TEST_BAD_INT", 1))
	assert.True(t, GetEnvBool("DEDUPE_TEST_BOOL", false))
	assert.True(t, GetEnvBool("DEDUPE_TEST_UNSET", true))
}

func TestLoadEnvDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DEDUPE_FROM_FILE=file\nDEDUPE_PRESET=file\n"), 0644))
	chdir(t, dir)
	t.Setenv("DEDUPE_PRESET", "env")
	t.Setenv("DEDUPE_FROM_FILE", "")
	os.Unsetenv("DEDUPE_FROM_FILE")

	require.NoError(t, LoadEnv())
	assert.Equal(t, "file", os.Getenv("DEDUPE_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("DEDUPE_PRESET"))
}

func TestLoadEnvMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DEDUPE_BROKEN=\"unterminated\n"), 0644))
	chdir(t, dir)

	assert.Error(t, LoadEnv())
}

func TestLoadEnvMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NoError(t, LoadEnv())
}

func TestLoadDetectionConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
overall_threshold: 80
enabled_fields: [email, phone, name, linkedin]
algorithms:
  email: jaro_winkler
phonetic:
  enabled: false
phone_locale:
  name: UK
  national_digits: 10
  prefixes: ["44"]
`), 0644))

	cfg, err := LoadDetectionConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.OverallThreshold)
	assert.Equal(t, 85, cfg.EmailThreshold, "unset keys keep defaults")
	assert.True(t, cfg.FieldEnabled(match.FieldLinkedIn))
	assert.Equal(t, match.AlgorithmJaroWinkler, cfg.AlgorithmFor(match.FieldEmail))
	assert.Equal(t, match.AlgorithmJaroWinkler, cfg.AlgorithmFor(match.FieldName))
	assert.False(t, cfg.Phonetic.Enabled)
	assert.Equal(t, []string{"44"}, cfg.PhoneLocale.Prefixes)
}

func TestLoadDetectionConfigEnvWins(t *testing.T) {
	t.Setenv("DEDUPE_OVERALL_THRESHOLD", "60")
	cfg, err := LoadDetectionConfig("")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.OverallThreshold)
}

func TestLoadDetectionConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDetectionConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading detection config")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("overall_threshold: 150\n"), 0644))
	_, err = LoadDetectionConfig(bad)
	assert.ErrorContains(t, err, "overall_threshold")
}

func TestWriteDetectionConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := match.DefaultConfig().WithOverrides(func(c *match.Config) { c.NameThreshold = 70 })

	require.NoError(t, WriteDetectionConfig(path, want))
	got, err := LoadDetectionConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("merge complete", "primary", "p1")

	assert.Contains(t, stderr.String(), "msg=\"merge complete\"")
	assert.Contains(t, file.String(), `"msg":"merge complete"`)
	assert.NotContains(t, file.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

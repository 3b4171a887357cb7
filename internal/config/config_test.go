package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CXC_API_URL", "CXC_API_KEY", "CXC_API_TIMEOUT", "CXC_TIMEZONE",
		"GOOGLE_SHEET_URL", "GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_CREDENTIALS",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "America/Mexico_City", cfg.Location().String())
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.Error(t, cfg.RequireAPI())

	logCfg := cfg.GetLoggerConfig()
	assert.Equal(t, "info", logCfg.Level)
	assert.Equal(t, "console", logCfg.Format)
}

func TestLoad_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv("CXC_API_URL", "https://api.example.com")
	t.Setenv("CXC_API_KEY", "k")
	t.Setenv("CXC_API_TIMEOUT", "5s")
	t.Setenv("CXC_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.RequireAPI())

	apiCfg := cfg.APIConfig()
	assert.Equal(t, "https://api.example.com", apiCfg.BaseURL)
	assert.Equal(t, "k", apiCfg.APIKey)
	assert.Equal(t, 5*time.Second, apiCfg.Timeout)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"CXC_API_TIMEOUT", "soon"},
		{"CXC_API_TIMEOUT", "-1s"},
		{"CXC_TIMEZONE", "Mars/Olympus_Mons"},
		{"LOG_LEVEL", "loud"},
		{"LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSheetsCredentials(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	_, err = cfg.SheetsCredentials()
	assert.Error(t, err, "sheet URL missing")

	cfg.GoogleSheetURL = "https://docs.google.com/spreadsheets/d/abc"
	_, err = cfg.SheetsCredentials()
	assert.Error(t, err, "credentials missing")

	cfg.GoogleCredentials = `{"type":"service_account"}`
	creds, err := cfg.SheetsCredentials()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(creds))

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))
	cfg.GoogleCredentialsFile = path
	creds, err = cfg.SheetsCredentials()
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"file"}`, string(creds))
}

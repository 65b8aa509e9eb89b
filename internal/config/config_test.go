package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func setFullEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"SESSION_SECRET":    secret,
		"DSN":               "postgres://localhost/dealer",
		"ACCOUNT_ID":        "acc",
		"ACCESS_KEY_ID":     "key",
		"ACCESS_KEY_SECRET": "secret",
		"BUCKET_NAME":       "cars",
		"PUBLIC_URL":        "https://pub-1.r2.dev/%s",
		"RESEND_API_KEY":    "re_123",
		"MAIL_TO":           "sales@dealer.test",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 4, cfg.UploadWorkers)
	assert.False(t, cfg.ProcessImages)
	assert.NoError(t, cfg.Validate(true))
	assert.ErrorContains(t, cfg.Validate(false), "DSN")
}

func TestLoadOverrides(t *testing.T) {
	setFullEnv(t)
	t.Setenv("ADDR", ":8080")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("UPLOAD_WORKERS", "2")
	t.Setenv("PROCESS_IMAGES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2, cfg.UploadWorkers)
	assert.True(t, cfg.ProcessImages)
	assert.NoError(t, cfg.Validate(false))
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		"UPSTREAM_TIMEOUT": "soon",
		"UPLOAD_WORKERS":   "many",
		"SECURE_COOKIES":   "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "at least 32"},
		{"public url without placeholder", map[string]string{"PUBLIC_URL": "https://pub-1.r2.dev/"}, "PUBLIC_URL"},
		{"no workers", map[string]string{"UPLOAD_WORKERS": "0"}, "UPLOAD_WORKERS"},
		{"missing mail destination", map[string]string{"MAIL_TO": ""}, "MAIL_TO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFullEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.NoError(t, err)
			assert.ErrorContains(t, cfg.Validate(false), tt.wantErr)
		})
	}
}

package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"element-locator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_GetDuration(t *testing.T) {
	e := &EnvService{}

	tests := []struct {
		name  string
		value string
		unit  time.Duration
		want  time.Duration
	}{
		{"unset", "", time.Second, 7 * time.Second},
		{"seconds", "2", time.Second, 2 * time.Second},
		{"fractional seconds", "1.5", time.Second, 1500 * time.Millisecond},
		{"milliseconds", "250", time.Millisecond, 250 * time.Millisecond},
		{"go duration", "300ms", time.Second, 300 * time.Millisecond},
		{"garbage", "soon", time.Second, 7 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, e.GetDuration("TEST_DURATION", tt.unit, 7*time.Second))
		})
	}
}

func TestEnvService_GetBoolAndInt(t *testing.T) {
	e := &EnvService{}

	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_INT", "12")
	t.Setenv("TEST_BAD_INT", "x")

	assert.False(t, e.GetBool("TEST_BOOL", true))
	assert.True(t, e.GetBool("TEST_MISSING_BOOL", true))
	assert.Equal(t, 12, e.GetInt("TEST_INT", 1))
	assert.Equal(t, 1, e.GetInt("TEST_BAD_INT", 1))
}

func TestLoadLocateConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(KeyDefaultTimeout, "")
		t.Setenv(KeyRelaxedLocate, "")
		t.Setenv(KeyPollInterval, "")

		assert.Equal(t, entity.DefaultLocateConfig(), LoadLocateConfig(&EnvService{}))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv(KeyDefaultTimeout, "0.5")
		t.Setenv(KeyRelaxedLocate, "false")
		t.Setenv(KeyPollInterval, "20")

		cfg := LoadLocateConfig(&EnvService{})
		assert.Equal(t, 500*time.Millisecond, cfg.DefaultTimeout)
		assert.False(t, cfg.RelaxedLocate)
		assert.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	})
}

func TestNewEnvServiceFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("LOCATOR_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("LOCATOR_TEST_KEY", "")

	e, err := NewEnvServiceFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", e.Get("LOCATOR_TEST_KEY"))

	_, err = NewEnvServiceFrom(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

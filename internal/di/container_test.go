package di

import (
	"bytes"
	"context"
	"testing"
	"time"

	"element-locator/internal/application/port/input"
	"element-locator/internal/domain/entity"
	"element-locator/internal/infrastructure/env"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer_Memory(t *testing.T) {
	var console bytes.Buffer
	c, err := NewContainer(context.Background(), Config{
		Driver:   DriverMemory,
		Locate:   entity.LocateConfig{DefaultTimeout: 20 * time.Millisecond, RelaxedLocate: true},
		LogLevel: "info",
		Console:  &console,
		Pages:    map[string]string{"fixture://p": `<p id="x" class="note">hi</p>`},
	})
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Finder.Find(context.Background(), input.FindRequest{
		URL:   "fixture://p",
		Steps: []input.Step{{Kind: entity.KindElement, Selector: entity.NewSelector("class_name", "note")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Elements, 1)
	assert.Equal(t, "hi", res.Elements[0].Text)
	assert.Contains(t, console.String(), "Find completed")
}

func TestNewContainer_Errors(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{Driver: "selenium", Console: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = NewContainer(context.Background(), Config{Driver: DriverMemory, LogLevel: "chatty", Console: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(env.KeyHeadless, "false")
	t.Setenv(env.KeyBrowserTimeout, "3")
	t.Setenv(env.KeyDefaultTimeout, "2")
	t.Setenv(env.KeyLogLevel, "debug")

	cfg := ConfigFromEnv(&env.EnvService{})
	assert.False(t, cfg.BrowserHeadless)
	assert.Equal(t, 3*time.Second, cfg.BrowserTimeout)
	assert.Equal(t, 2*time.Second, cfg.Locate.DefaultTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

package rod

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"

	"github.com/go-rod/rod/lib/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Headless)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.False(t, cfg.DevTools)
}

func TestClassify(t *testing.T) {
	t.Run("stale cdp error", func(t *testing.T) {
		err := classify(&cdp.Error{Code: -32000, Message: "Could not find object with given id"})
		assert.ErrorIs(t, err, entity.ErrStaleElement)
	})

	t.Run("other cdp error", func(t *testing.T) {
		err := classify(&cdp.Error{Code: -32000, Message: "Invalid parameters"})
		assert.False(t, errors.Is(err, entity.ErrStaleElement))
	})

	t.Run("plain error passes through", func(t *testing.T) {
		base := errors.New("boom")
		assert.Same(t, base, classify(base))
	})
}

func newTestAdapter(t *testing.T, html string) (*BrowserAdapter, context.Context) {
	t.Helper()
	if !Available() {
		t.Skip("no local browser found")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.NoSandbox = true

	adapter, err := NewBrowserAdapter(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(adapter.Close)

	require.NoError(t, adapter.Navigate(ctx, server.URL))
	return adapter, ctx
}

func TestBrowserAdapter_IsReady(t *testing.T) {
	adapter, _ := newTestAdapter(t, FormHTML)

	assert.True(t, adapter.IsReady())
	adapter.Close()
	assert.False(t, adapter.IsReady())
}

func TestBrowserAdapter_FindElements(t *testing.T) {
	adapter, ctx := newTestAdapter(t, NestedHTML)

	items, err := adapter.FindElements(ctx, nil, ".//*[local-name()='li']")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	none, err := adapter.FindElements(ctx, nil, ".//*[local-name()='table']")
	require.NoError(t, err)
	assert.Empty(t, none)

	lists, err := adapter.FindElements(ctx, nil, ".//*[@id='list']")
	require.NoError(t, err)
	require.Len(t, lists, 1)

	scoped, err := adapter.FindElements(ctx, lists[0], "./child::*[2]")
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	class, ok, err := adapter.Attribute(ctx, scoped[0], "class")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item b", class)

	displayed, err := adapter.Displayed(ctx, scoped[0])
	require.NoError(t, err)
	assert.False(t, displayed)

	tag, err := adapter.TagName(ctx, scoped[0])
	require.NoError(t, err)
	assert.Equal(t, "li", tag)
}

func TestBrowserAdapter_FormState(t *testing.T) {
	adapter, ctx := newTestAdapter(t, FormHTML)

	find := func(id string) output.NativeElement {
		found, err := adapter.FindElements(ctx, nil, ".//*[@id='"+id+"']")
		require.NoError(t, err)
		require.Len(t, found, 1)
		return found[0]
	}

	value, err := adapter.Value(ctx, find("username"))
	require.NoError(t, err)
	assert.Equal(t, "alice", value)

	enabled, err := adapter.Enabled(ctx, find("submit"))
	require.NoError(t, err)
	assert.False(t, enabled)

	_, readOnly, err := adapter.Attribute(ctx, find("locked"), "readonly")
	require.NoError(t, err)
	assert.True(t, readOnly)

	_, missing, err := adapter.Attribute(ctx, find("username"), "readonly")
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestBrowserAdapter_ClickAndText(t *testing.T) {
	adapter, ctx := newTestAdapter(t, InteractiveHTML)

	btn, err := adapter.FindElements(ctx, nil, ".//*[@id='btn']")
	require.NoError(t, err)
	require.Len(t, btn, 1)
	require.NoError(t, adapter.Click(ctx, btn[0]))

	result, err := adapter.FindElements(ctx, nil, ".//*[@id='result']")
	require.NoError(t, err)
	require.Len(t, result, 1)

	text, err := adapter.Text(ctx, result[0])
	require.NoError(t, err)
	assert.Equal(t, "Clicked!", text)
}

func TestBrowserAdapter_SendKeysAndClear(t *testing.T) {
	adapter, ctx := newTestAdapter(t, FormHTML)

	found, err := adapter.FindElements(ctx, nil, ".//*[@id='password']")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, adapter.SendKeys(ctx, found[0], "secret"))
	value, err := adapter.Value(ctx, found[0])
	require.NoError(t, err)
	assert.Equal(t, "secret", value)

	require.NoError(t, adapter.Clear(ctx, found[0]))
	value, err = adapter.Value(ctx, found[0])
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestBrowserAdapter_ProbeDetached(t *testing.T) {
	adapter, ctx := newTestAdapter(t, NestedHTML)

	found, err := adapter.FindElements(ctx, nil, ".//*[@id='list']")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NoError(t, adapter.Probe(ctx, found[0]))

	_, err = adapter.page.Eval(`() => document.getElementById('list').remove()`)
	require.NoError(t, err)

	err = adapter.Probe(ctx, found[0])
	assert.ErrorIs(t, err, entity.ErrStaleElement)
}

func TestBrowserAdapter_Screenshot(t *testing.T) {
	adapter, ctx := newTestAdapter(t, NestedHTML)

	data, err := adapter.Screenshot(ctx, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	found, err := adapter.FindElements(ctx, nil, ".//*[@id='outer']")
	require.NoError(t, err)
	require.Len(t, found, 1)

	data, err = adapter.Screenshot(ctx, found[0])
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBrowserAdapter_ForeignElement(t *testing.T) {
	adapter := &BrowserAdapter{}
	_, _, err := adapter.Attribute(context.Background(), "not an element", "id")
	assert.ErrorIs(t, err, entity.ErrInternal)
}

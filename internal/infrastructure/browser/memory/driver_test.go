package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Fixture</title><script>window.x = 1</script></head>
<body>
	<!-- comment -->
	<ul id="list">
		<li class="item a">one</li>
		<li class="item b" style="display: none">two</li>
		<li class="item c">three <b>bold</b></li>
	</ul>
	<form>
		<input id="name" type="text" value="alice">
		<input id="locked" type="text" readonly>
		<input id="agree" type="checkbox">
		<input id="r1" type="radio" name="g" checked>
		<input id="r2" type="radio" name="g">
		<textarea id="notes">hello</textarea>
		<select id="color"><option>red</option><option value="g" selected>green</option></select>
		<button id="off" disabled>Off</button>
	</form>
</body>
</html>`

func loaded(t *testing.T) (*Driver, context.Context) {
	t.Helper()
	d := NewDriver()
	require.NoError(t, d.Load(page))
	return d, context.Background()
}

func byID(t *testing.T, d *Driver, id string) output.NativeElement {
	t.Helper()
	found, err := d.FindElements(context.Background(), nil, ".//*[@id='"+id+"']")
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func TestDriver_FindElements(t *testing.T) {
	d, ctx := loaded(t)

	items, err := d.FindElements(ctx, nil, ".//*[local-name()='li']")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	scoped, err := d.FindElements(ctx, byID(t, d, "list"), ".//*[contains(@class, 'c')]")
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	tag, err := d.TagName(ctx, scoped[0])
	require.NoError(t, err)
	assert.Equal(t, "li", tag)

	scripts, err := d.FindElements(ctx, nil, ".//*[local-name()='script']")
	require.NoError(t, err)
	assert.Empty(t, scripts, "scripts are stripped on load")
}

func TestDriver_FindElements_BadXPath(t *testing.T) {
	d, ctx := loaded(t)

	_, err := d.FindElements(ctx, nil, ".//*[")
	assert.Error(t, err)
}

func ids(t *testing.T, d *Driver, nodes []output.NativeElement) []string {
	t.Helper()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		v, _, err := d.Attribute(context.Background(), n, "id")
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestDriver_FindElements_DocumentOrder(t *testing.T) {
	d, ctx := loaded(t)

	union, err := d.FindElements(ctx, nil, ".//*[@id='agree'] | .//*[@id='name'] | .//*[@id='agree']")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "agree"}, ids(t, d, union))

	items, err := d.FindElements(ctx, byID(t, d, "list"), ".//*[contains(@class, 'c')]")
	require.NoError(t, err)
	require.Len(t, items, 1)

	ancestors, err := d.FindElements(ctx, items[0], "./ancestor::*")
	require.NoError(t, err)
	var tags []string
	for _, a := range ancestors {
		tag, err := d.TagName(ctx, a)
		require.NoError(t, err)
		tags = append(tags, tag)
	}
	assert.Equal(t, []string{"html", "body", "ul"}, tags)
}

func TestDriver_FindElements_Position(t *testing.T) {
	d, ctx := loaded(t)
	union := ".//*[@id='agree'] | .//*[@id='name'] | .//*[@id='off']"

	tests := []struct {
		expr string
		want []string
	}{
		{"(" + union + ")[1]", []string{"name"}},
		{"(" + union + ")[last()]", []string{"off"}},
		{"(" + union + ")[last()-2]", []string{"name"}},
		{"(" + union + ")[4]", []string{}},
		{"(" + union + ")[last()-3]", []string{}},
		{"(.//*[local-name()='input'][@type='radio'])[2]", []string{"r2"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			found, err := d.FindElements(ctx, nil, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(t, d, found))
		})
	}
}

func TestSplitPosition(t *testing.T) {
	inner, position, ok := splitPosition("(.//a | .//b)[last()-1]")
	require.True(t, ok)
	assert.Equal(t, ".//a | .//b", inner)
	assert.Equal(t, "last()-1", position)

	inner, _, ok = splitPosition("(.//*[@id='a)'])[2]")
	require.True(t, ok)
	assert.Equal(t, ".//*[@id='a)']", inner)

	for _, expr := range []string{"(.//a)[1] | (.//b)[2]", ".//a[1]", "(.//a)[position()>1]"} {
		_, _, ok := splitPosition(expr)
		assert.False(t, ok, expr)
	}
}

func TestDriver_DisplayedAndText(t *testing.T) {
	d, ctx := loaded(t)

	items, err := d.FindElements(ctx, nil, ".//*[local-name()='li']")
	require.NoError(t, err)
	require.Len(t, items, 3)

	visible, err := d.Displayed(ctx, items[1])
	require.NoError(t, err)
	assert.False(t, visible)

	text, err := d.Text(ctx, items[2])
	require.NoError(t, err)
	assert.Equal(t, "three bold", text)

	hidden, err := d.Text(ctx, items[1])
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestDriver_Values(t *testing.T) {
	d, ctx := loaded(t)

	tests := []struct {
		id   string
		want string
	}{
		{"name", "alice"},
		{"notes", "hello"},
		{"color", "g"},
		{"locked", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			v, err := d.Value(ctx, byID(t, d, tt.id))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDriver_Attribute(t *testing.T) {
	d, ctx := loaded(t)

	_, ok, err := d.Attribute(ctx, byID(t, d, "locked"), "readonly")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = d.Attribute(ctx, byID(t, d, "name"), "readonly")
	require.NoError(t, err)
	assert.False(t, ok)

	enabled, err := d.Enabled(ctx, byID(t, d, "off"))
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestDriver_Click(t *testing.T) {
	d, ctx := loaded(t)

	agree := byID(t, d, "agree")
	require.NoError(t, d.Click(ctx, agree))
	_, checked, err := d.Attribute(ctx, agree, "checked")
	require.NoError(t, err)
	assert.True(t, checked)

	require.NoError(t, d.Click(ctx, byID(t, d, "r2")))
	_, r1, err := d.Attribute(ctx, byID(t, d, "r1"), "checked")
	require.NoError(t, err)
	assert.False(t, r1)

	err = d.Click(ctx, byID(t, d, "off"))
	assert.ErrorIs(t, err, entity.ErrNotInteractable)

	assert.Len(t, d.Clicks(), 2)
}

func TestDriver_SendKeysAndClear(t *testing.T) {
	d, ctx := loaded(t)

	name := byID(t, d, "name")
	require.NoError(t, d.SendKeys(ctx, name, "!"))
	v, err := d.Value(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "alice!", v)

	require.NoError(t, d.Clear(ctx, name))
	v, err = d.Value(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, v)

	notes := byID(t, d, "notes")
	require.NoError(t, d.SendKeys(ctx, notes, " world"))
	v, err = d.Value(ctx, notes)
	require.NoError(t, err)
	assert.Equal(t, "hello world", v)

	err = d.SendKeys(ctx, byID(t, d, "locked"), "x")
	assert.ErrorIs(t, err, entity.ErrNotInteractable)
}

func TestDriver_Stale(t *testing.T) {
	d, ctx := loaded(t)

	list := byID(t, d, "list")
	require.NoError(t, d.Probe(ctx, list))

	d.Mutate(func(doc *html.Node) {
		n := list.(*html.Node)
		n.Parent.RemoveChild(n)
	})

	assert.ErrorIs(t, d.Probe(ctx, list), entity.ErrStaleElement)
	_, err := d.FindElements(ctx, list, ".//*")
	assert.ErrorIs(t, err, entity.ErrStaleElement)

	// a reload detaches every previous node
	name := byID(t, d, "name")
	require.NoError(t, d.Load(page))
	assert.ErrorIs(t, d.Probe(ctx, name), entity.ErrStaleElement)
}

func TestDriver_ForeignElement(t *testing.T) {
	d, ctx := loaded(t)

	_, err := d.TagName(ctx, "nope")
	assert.ErrorIs(t, err, entity.ErrInternal)
}

func TestDriver_Navigate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p id="served">served</p></body></html>`)
	}))
	defer server.Close()

	d := NewDriver(WithPage("fixture://local", `<p id="local">local</p>`))
	ctx := context.Background()

	require.NoError(t, d.Navigate(ctx, "fixture://local"))
	assert.Equal(t, "fixture://local", d.CurrentURL())
	byID(t, d, "local")

	require.NoError(t, d.Navigate(ctx, server.URL))
	byID(t, d, "served")
	assert.Contains(t, d.Render(), "served")

	err := d.Navigate(ctx, server.URL+"/missing")
	assert.Error(t, err)
}

func TestDriver_Screenshot(t *testing.T) {
	d, ctx := loaded(t)

	_, err := d.Screenshot(ctx, nil)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

// Package memory is a browser-less driver over a parsed HTML document. It
// evaluates XPath with htmlquery, keeps form state in attributes and never
// runs scripts. Tests and the CLI use it when no Chromium is available.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var _ output.BrowserPort = (*Driver)(nil)

type Driver struct {
	mu     sync.Mutex
	doc    *html.Node
	url    string
	pages  map[string]string
	client *http.Client
	cache  map[string]*xpath.Expr
	clicks []*html.Node
	logger output.LoggerPort
}

type Option func(*Driver)

func WithHTTPClient(client *http.Client) Option {
	return func(d *Driver) { d.client = client }
}

func WithLogger(logger output.LoggerPort) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithPage registers a document served for url without any network access.
func WithPage(url, body string) Option {
	return func(d *Driver) { d.pages[url] = body }
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		pages:  make(map[string]string),
		client: http.DefaultClient,
		cache:  make(map[string]*xpath.Expr),
	}
	for _, opt := range opts {
		opt(d)
	}
	// пустой документ, чтобы запросы до Navigate не падали
	_ = d.Load("<html><body></body></html>")
	return d
}

// Load replaces the current document.
func (d *Driver) Load(body string) error {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	sanitize(doc)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
	d.clicks = nil
	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	body, ok := d.pages[url]
	d.mu.Unlock()

	if !ok {
		fetched, err := d.fetch(ctx, url)
		if err != nil {
			return fmt.Errorf("navigation failed: %w", err)
		}
		body = fetched
	}
	if err := d.Load(body); err != nil {
		return err
	}

	d.mu.Lock()
	d.url = url
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Debug("page loaded", "url", url, "registered", ok)
	}
	return nil
}

func (d *Driver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Mutate runs fn against the live document, e.g. to simulate scripts that
// add or remove nodes.
func (d *Driver) Mutate(fn func(doc *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Render serializes the current document.
func (d *Driver) Render() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	_ = html.Render(&sb, d.doc)
	return sb.String()
}

// Clicks returns the clicked nodes in order.
func (d *Driver) Clicks() []*html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*html.Node(nil), d.clicks...)
}

func (d *Driver) CurrentURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *Driver) Close() {}

func (d *Driver) FindElements(_ context.Context, scope output.NativeElement, expr string) ([]output.NativeElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	top := d.doc
	if scope != nil {
		n, err := d.attached(scope)
		if err != nil {
			return nil, err
		}
		top = n
	}

	// htmlquery drops positions on parenthesized unions, so the position
	// is taken here over the sorted result
	inner, position, positioned := splitPosition(expr)
	if positioned {
		expr = inner
	}
	compiled, err := d.compile(expr)
	if err != nil {
		return nil, err
	}

	var nodes []*html.Node
	for _, n := range htmlquery.QuerySelectorAll(top, compiled) {
		if n.Type == html.ElementNode {
			nodes = append(nodes, n)
		}
	}
	nodes = d.documentOrder(nodes)
	if positioned {
		nodes = pick(nodes, position)
	}

	out := make([]output.NativeElement, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}

// documentOrder sorts nodes the way a browser reports them; htmlquery keeps
// union branches and reverse axes in evaluation order.
func (d *Driver) documentOrder(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	order := make(map[*html.Node]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		order[n] = len(order)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.doc)

	sort.SliceStable(nodes, func(i, j int) bool { return order[nodes[i]] < order[nodes[j]] })
	out := nodes[:1]
	for _, n := range nodes[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

var positional = regexp.MustCompile(`^\((.+)\)\[(\d+|last\(\)(?:-(\d+))?)\]$`)

// splitPosition splits "(expr)[pos]" into expr and pos when the outer
// parentheses wrap the whole expression.
func splitPosition(expr string) (string, string, bool) {
	m := positional.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil || !balanced(m[1]) {
		return "", "", false
	}
	return m[1], m[2], true
}

func balanced(expr string) bool {
	depth := 0
	var quote rune
	for _, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && quote == 0
}

// pick applies an XPath position: "3", "last()" or "last()-2".
func pick(nodes []*html.Node, position string) []*html.Node {
	var i int
	if rest, ok := strings.CutPrefix(position, "last()"); ok {
		i = len(nodes) - 1
		if back, ok := strings.CutPrefix(rest, "-"); ok {
			k, _ := strconv.Atoi(back)
			i -= k
		}
	} else {
		k, _ := strconv.Atoi(position)
		i = k - 1
	}
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return nodes[i : i+1]
}

func (d *Driver) compile(expr string) (*xpath.Expr, error) {
	if c, ok := d.cache[expr]; ok {
		return c, nil
	}
	c, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}
	d.cache[expr] = c
	return c, nil
}

func (d *Driver) Attribute(_ context.Context, el output.NativeElement, name string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return "", false, err
	}
	v, ok := attr(n, name)
	return v, ok, nil
}

func (d *Driver) TagName(_ context.Context, el output.NativeElement) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return "", err
	}
	return n.Data, nil
}

func (d *Driver) Probe(_ context.Context, el output.NativeElement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.attached(el)
	return err
}

func (d *Driver) Displayed(_ context.Context, el output.NativeElement) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return false, err
	}
	return displayed(n), nil
}

func (d *Driver) Enabled(_ context.Context, el output.NativeElement) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return false, err
	}
	_, disabled := attr(n, "disabled")
	return !disabled, nil
}

func (d *Driver) Text(_ context.Context, el output.NativeElement) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return "", err
	}
	if !displayed(n) {
		return "", nil
	}
	var sb strings.Builder
	renderedText(n, &sb)
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func (d *Driver) Value(_ context.Context, el output.NativeElement) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return "", err
	}
	return value(n), nil
}

// Click records the click and applies the default action of checkboxes and
// radios.
func (d *Driver) Click(_ context.Context, el output.NativeElement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.attached(el)
	if err != nil {
		return err
	}
	if !displayed(n) {
		return fmt.Errorf("%w: element is not displayed", entity.ErrNotInteractable)
	}
	if _, disabled := attr(n, "disabled"); disabled {
		return fmt.Errorf("%w: element is disabled", entity.ErrNotInteractable)
	}

	d.clicks = append(d.clicks, n)
	if n.Data == "input" {
		typ, _ := attr(n, "type")
		switch strings.ToLower(typ) {
		case "checkbox":
			if _, checked := attr(n, "checked"); checked {
				removeAttr(n, "checked")
			} else {
				setAttr(n, "checked", "")
			}
		case "radio":
			uncheckGroup(d.doc, n)
			setAttr(n, "checked", "")
		}
	}
	return nil
}

func (d *Driver) SendKeys(_ context.Context, el output.NativeElement, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.writable(el)
	if err != nil {
		return err
	}
	setValue(n, value(n)+text)
	return nil
}

func (d *Driver) Clear(_ context.Context, el output.NativeElement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.writable(el)
	if err != nil {
		return err
	}
	setValue(n, "")
	return nil
}

func (d *Driver) Screenshot(context.Context, output.NativeElement) ([]byte, error) {
	return nil, fmt.Errorf("memory driver screenshot: %w", errors.ErrUnsupported)
}

func (d *Driver) writable(el output.NativeElement) (*html.Node, error) {
	n, err := d.attached(el)
	if err != nil {
		return nil, err
	}
	_, disabled := attr(n, "disabled")
	_, readOnly := attr(n, "readonly")
	if disabled || readOnly || !displayed(n) {
		return nil, fmt.Errorf("%w: element is not writable", entity.ErrNotInteractable)
	}
	return n, nil
}

// attached checks that el is one of our nodes and still hangs off the
// current document.
func (d *Driver) attached(el output.NativeElement) (*html.Node, error) {
	n, ok := el.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: not an html node: %T", entity.ErrInternal, el)
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	if root != d.doc {
		return nil, fmt.Errorf("%w: <%s> is detached from the document", entity.ErrStaleElement, n.Data)
	}
	return n, nil
}

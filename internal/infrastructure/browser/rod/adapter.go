package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout     = 10 * time.Second
	defaultSlowMotion  = 0
	maxScreenshotWidth = 1024
)

// staleMessages are CDP error fragments meaning the remote object is gone.
var staleMessages = []string{
	"Could not find object",
	"No node with given id",
	"Cannot find context",
	"does not belong to the document",
	"Node is detached",
}

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds a single CDP round trip; locating retries are handled
	// above the driver.
	Timeout   time.Duration
	NoSandbox bool
	DevTools  bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  false,
		DevTools:   false,
	}
}

// Available reports whether a local Chromium can be found for launching.
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page := b.page.Context(ctx).Timeout(b.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

// FindElements evaluates xpath relative to scope, or to the document when
// scope is nil. No match is an empty slice, not an error.
func (b *BrowserAdapter) FindElements(ctx context.Context, scope output.NativeElement, xpath string) ([]output.NativeElement, error) {
	var (
		found rod.Elements
		err   error
	)
	if scope == nil {
		found, err = b.page.Context(ctx).Timeout(b.timeout).ElementsX(xpath)
	} else {
		el, cerr := b.element(ctx, scope)
		if cerr != nil {
			return nil, cerr
		}
		found, err = el.ElementsX(xpath)
	}
	if err != nil {
		return nil, classify(err)
	}

	out := make([]output.NativeElement, 0, len(found))
	for _, el := range found {
		out = append(out, el)
	}
	return out, nil
}

func (b *BrowserAdapter) Attribute(ctx context.Context, native output.NativeElement, name string) (string, bool, error) {
	el, err := b.element(ctx, native)
	if err != nil {
		return "", false, err
	}
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, classify(err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (b *BrowserAdapter) TagName(ctx context.Context, native output.NativeElement) (string, error) {
	el, err := b.element(ctx, native)
	if err != nil {
		return "", err
	}
	node, err := el.Describe(0, false)
	if err != nil {
		return "", classify(err)
	}
	if node.LocalName != "" {
		return node.LocalName, nil
	}
	return strings.ToLower(node.NodeName), nil
}

func (b *BrowserAdapter) Probe(ctx context.Context, native output.NativeElement) error {
	el, err := b.element(ctx, native)
	if err != nil {
		return err
	}
	res, err := el.Eval(`() => this.isConnected`)
	if err != nil {
		return classify(err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: detached from document", entity.ErrStaleElement)
	}
	return nil
}

func (b *BrowserAdapter) Displayed(ctx context.Context, native output.NativeElement) (bool, error) {
	el, err := b.element(ctx, native)
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil {
		return false, classify(err)
	}
	return visible, nil
}

func (b *BrowserAdapter) Enabled(ctx context.Context, native output.NativeElement) (bool, error) {
	disabled, err := b.property(ctx, native, "disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (b *BrowserAdapter) Text(ctx context.Context, native output.NativeElement) (string, error) {
	el, err := b.element(ctx, native)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", classify(err)
	}
	return text, nil
}

func (b *BrowserAdapter) Value(ctx context.Context, native output.NativeElement) (string, error) {
	v, err := b.property(ctx, native, "value")
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

func (b *BrowserAdapter) Click(ctx context.Context, native output.NativeElement) error {
	el, err := b.element(ctx, native)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", classify(err))
	}
	return nil
}

func (b *BrowserAdapter) SendKeys(ctx context.Context, native output.NativeElement, text string) error {
	el, err := b.element(ctx, native)
	if err != nil {
		return err
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", classify(err))
	}
	return nil
}

func (b *BrowserAdapter) Clear(ctx context.Context, native output.NativeElement) error {
	el, err := b.element(ctx, native)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", classify(err))
	}
	if err := el.Input(""); err != nil {
		return fmt.Errorf("clear failed: %w", classify(err))
	}
	return nil
}

// Screenshot captures native, or the viewport when native is nil. Wide
// captures are scaled down to maxScreenshotWidth.
func (b *BrowserAdapter) Screenshot(ctx context.Context, native output.NativeElement) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if native == nil {
		raw, err = b.page.Context(ctx).Timeout(b.timeout).Screenshot(false, &proto.PageCaptureScreenshot{
			Format:  proto.PageCaptureScreenshotFormatPng,
			Quality: gson.Int(100),
		})
	} else {
		el, cerr := b.element(ctx, native)
		if cerr != nil {
			return nil, cerr
		}
		raw, err = el.Screenshot(proto.PageCaptureScreenshotFormatPng, 100)
	}
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", classify(err))
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() <= maxScreenshotWidth {
		return raw, nil
	}

	img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) element(ctx context.Context, native output.NativeElement) (*rod.Element, error) {
	el, ok := native.(*rod.Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("%w: not a rod element: %T", entity.ErrInternal, native)
	}
	return el.Context(ctx).Timeout(b.timeout), nil
}

func (b *BrowserAdapter) property(ctx context.Context, native output.NativeElement, name string) (gson.JSON, error) {
	el, err := b.element(ctx, native)
	if err != nil {
		return gson.JSON{}, err
	}
	v, err := el.Property(name)
	if err != nil {
		return gson.JSON{}, classify(err)
	}
	return v, nil
}

// classify maps rod and CDP failures onto the domain sentinels.
func classify(err error) error {
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		for _, msg := range staleMessages {
			if strings.Contains(cdpErr.Message, msg) {
				return fmt.Errorf("%w: %s", entity.ErrStaleElement, cdpErr.Message)
			}
		}
	}

	var (
		covered   *rod.CoveredError
		invisible *rod.InvisibleShapeError
		notInter  *rod.NotInteractableError
	)
	if errors.As(err, &covered) || errors.As(err, &invisible) || errors.As(err, &notInter) {
		return fmt.Errorf("%w: %v", entity.ErrNotInteractable, err)
	}
	return err
}

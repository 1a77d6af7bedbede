// Package element holds the caller-facing handles. A handle owns a selector
// and a scope, resolves lazily through the locator, and waits for the page
// under the relaxed-locate rules.
package element

import (
	"context"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/locator"
	"element-locator/internal/locator/selector"
	"element-locator/internal/wait"
)

// Container is a scope elements can be located in: the browser root or
// another element.
type Container interface {
	locator.Scope

	AssertExists(ctx context.Context) error
	WaitForExists(ctx context.Context) error
	WaitForPresent(ctx context.Context) error
	SelectorString() string
	Browser() *Browser
}

// Finder hands out child handles; both the browser and elements are finders.
type Finder interface {
	Find(kind entity.Kind, sel entity.Selector) *Element
	FindAll(kind entity.Kind, sel entity.Selector) *Collection
}

var (
	_ Container = (*Browser)(nil)
	_ Finder    = (*Browser)(nil)
	_ Finder    = (*Element)(nil)
)

// Browser is the root of every handle chain. It owns the driver, the
// shared wait timer and the locate configuration. Handles are not safe for
// concurrent use; the timer itself is.
type Browser struct {
	driver  output.DriverPort
	actions output.ActionPort
	locator *locator.Locator
	timer   *wait.Timer
	cfg     entity.LocateConfig
	logger  output.LoggerPort
}

type Option func(*Browser)

func WithConfig(cfg entity.LocateConfig) Option {
	return func(b *Browser) { b.cfg = cfg }
}

func WithLogger(logger output.LoggerPort) Option {
	return func(b *Browser) { b.logger = logger }
}

func WithActions(actions output.ActionPort) Option {
	return func(b *Browser) { b.actions = actions }
}

func NewBrowser(driver output.DriverPort, opts ...Option) *Browser {
	b := &Browser{
		driver: driver,
		timer:  wait.NewTimer(),
		cfg:    entity.DefaultLocateConfig(),
	}
	if actions, ok := driver.(output.ActionPort); ok {
		b.actions = actions
	}
	for _, opt := range opts {
		opt(b)
	}
	b.locator = locator.New(driver, selector.NewBuilder(b.logger), b.logger)
	return b
}

func (b *Browser) Config() entity.LocateConfig { return b.cfg }

// Override swaps the locate configuration until restore is called.
func (b *Browser) Override(cfg entity.LocateConfig) (restore func()) {
	prev := b.cfg
	b.cfg = cfg
	return func() { b.cfg = prev }
}

func (b *Browser) Timer() *wait.Timer { return b.timer }

func (b *Browser) Driver() output.DriverPort { return b.driver }

func (b *Browser) waiter() *wait.Waiter {
	return wait.NewWaiter(b.timer, b.cfg.PollInterval, b.logger)
}

// The document root always exists.

func (b *Browser) QueryContext(context.Context) (output.NativeElement, error) {
	return nil, nil
}

func (b *Browser) AssertExists(context.Context) error   { return nil }
func (b *Browser) WaitForExists(context.Context) error  { return nil }
func (b *Browser) WaitForPresent(context.Context) error { return nil }
func (b *Browser) SelectorString() string               { return "" }
func (b *Browser) Browser() *Browser                    { return b }

func (b *Browser) Element(sel entity.Selector) *Element {
	return newElement(b, entity.KindElement, sel)
}

func (b *Browser) Find(kind entity.Kind, sel entity.Selector) *Element {
	return newElement(b, kind, sel)
}

func (b *Browser) TextField(sel entity.Selector) *Element {
	return newElement(b, entity.KindTextField, sel)
}

func (b *Browser) Button(sel entity.Selector) *Element {
	return newElement(b, entity.KindButton, sel)
}

func (b *Browser) CheckBox(sel entity.Selector) *Element {
	return newElement(b, entity.KindCheckBox, sel)
}

func (b *Browser) Radio(sel entity.Selector) *Element {
	return newElement(b, entity.KindRadio, sel)
}

func (b *Browser) FileField(sel entity.Selector) *Element {
	return newElement(b, entity.KindFileField, sel)
}

func (b *Browser) Elements(sel entity.Selector) *Collection {
	return newCollection(b, entity.KindElement, sel)
}

func (b *Browser) FindAll(kind entity.Kind, sel entity.Selector) *Collection {
	return newCollection(b, kind, sel)
}

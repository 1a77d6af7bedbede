package element

import (
	"context"
	"errors"
	"fmt"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/wait"
)

var _ Container = (*Element)(nil)

// Element is a lazily resolved handle. The native reference is borrowed from
// the driver session and discarded as soon as it is found stale.
type Element struct {
	scope    Container
	kind     entity.Kind
	selector entity.Selector
	native   output.NativeElement
	// fromNative handles have nothing to re-resolve from
	fromNative bool
}

func newElement(scope Container, kind entity.Kind, sel entity.Selector) *Element {
	sel = sel.Clone()
	if kind == entity.KindRow && !sel.Has(entity.KeyTagName) {
		sel.Set(entity.KeyTagName, "tr")
	}
	return &Element{scope: scope, kind: kind, selector: sel}
}

// FromNative wraps an already resolved driver element. Such a handle has no
// selector and cannot be re-resolved once stale.
func FromNative(scope Container, kind entity.Kind, native output.NativeElement) *Element {
	return &Element{scope: scope, kind: kind, native: native, fromNative: true}
}

func (e *Element) Browser() *Browser         { return e.scope.Browser() }
func (e *Element) Kind() entity.Kind         { return e.kind }
func (e *Element) Selector() entity.Selector { return e.selector.Clone() }
func (e *Element) Located() bool             { return e.native != nil }

func (e *Element) driver() output.DriverPort { return e.Browser().driver }

// QueryContext resolves this element so children can be queried under it.
func (e *Element) QueryContext(ctx context.Context) (output.NativeElement, error) {
	if err := e.AssertExists(ctx); err != nil {
		return nil, err
	}
	return e.native, nil
}

// Locate runs the locator once without touching the cached handle.
func (e *Element) Locate(ctx context.Context) (output.NativeElement, bool, error) {
	if err := e.scope.AssertExists(ctx); err != nil {
		return nil, false, err
	}
	b := e.Browser()
	return b.locator.Locate(ctx, e.scope, e.kind, e.selector)
}

// Stale reports whether the cached handle left the document.
func (e *Element) Stale(ctx context.Context) (bool, error) {
	if e.native == nil {
		return false, errors.New("can not check staleness of unused element")
	}
	err := e.driver().Probe(ctx, e.native)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, entity.ErrStaleElement):
		return true, nil
	default:
		return false, err
	}
}

// Reset drops the cached handle; the next use re-resolves from the selector.
func (e *Element) Reset() {
	e.native = nil
}

// AssertExists resolves the element exactly once, without waiting.
func (e *Element) AssertExists(ctx context.Context) error {
	if e.native != nil {
		if e.selector.IsEmpty() {
			if err := e.scope.AssertExists(ctx); err != nil {
				return err
			}
		}
		stale, err := e.Stale(ctx)
		if err != nil {
			return err
		}
		if !stale {
			return nil
		}
		e.Reset()
	}
	if e.fromNative {
		return e.notFound()
	}

	native, found, err := e.Locate(ctx)
	if err != nil {
		return err
	}
	if !found {
		return e.notFound()
	}
	e.native = native
	return nil
}

func (e *Element) notFound() error {
	return &entity.UnknownObjectError{Selector: e.String()}
}

// Exists reports whether the element can be resolved right now. Errors a
// retry could clear count as false; only the rest are returned.
func (e *Element) Exists(ctx context.Context) (bool, error) {
	err := e.AssertExists(ctx)
	switch {
	case err == nil:
		return true, nil
	case entity.IsRetryable(err):
		return false, nil
	default:
		return false, err
	}
}

func (e *Element) WaitForExists(ctx context.Context) error {
	b := e.Browser()
	cfg := b.cfg
	if !cfg.RelaxedLocate {
		return e.AssertExists(ctx)
	}

	if ok, err := e.Exists(ctx); err != nil || ok {
		return err
	}

	release, _ := b.timer.Acquire(cfg.DefaultTimeout)
	defer release()

	if err := e.scope.WaitForExists(ctx); err != nil {
		return err
	}
	outcome, err := b.waiter().Until(ctx, cfg.DefaultTimeout, e.Exists)
	if err != nil {
		return err
	}
	if outcome == wait.TimedOut {
		e.adviseExists("Exists")
		return &entity.UnknownObjectError{
			Selector: e.String(),
			Msg:      fmt.Sprintf("timed out after %v, waiting for %s to be located", cfg.DefaultTimeout, e),
		}
	}
	return nil
}

func (e *Element) WaitForPresent(ctx context.Context) error {
	b := e.Browser()
	cfg := b.cfg
	if !cfg.RelaxedLocate {
		return e.AssertExists(ctx)
	}

	release, _ := b.timer.Acquire(cfg.DefaultTimeout)
	defer release()

	if err := e.scope.WaitForPresent(ctx); err != nil {
		return err
	}
	outcome, err := b.waiter().Until(ctx, cfg.DefaultTimeout, e.Present)
	if err != nil {
		return err
	}
	if outcome == wait.TimedOut {
		e.adviseExists("Present")
		return &entity.UnknownObjectError{
			Selector: e.String(),
			Msg:      fmt.Sprintf("timed out after %v, waiting for %s to be present", cfg.DefaultTimeout, e),
		}
	}
	return nil
}

func (e *Element) WaitForEnabled(ctx context.Context) error {
	b := e.Browser()
	cfg := b.cfg
	if !cfg.RelaxedLocate {
		return e.assertEnabled(ctx)
	}

	release, _ := b.timer.Acquire(cfg.DefaultTimeout)
	defer release()

	if err := e.WaitForPresent(ctx); err != nil {
		return err
	}
	outcome, err := b.waiter().Until(ctx, cfg.DefaultTimeout, e.enabledNow)
	if err != nil {
		return err
	}
	if outcome == wait.TimedOut {
		return &entity.ObjectDisabledError{
			Msg: fmt.Sprintf("element present, but timed out after %v, waiting for %s to be enabled", cfg.DefaultTimeout, e),
		}
	}
	return nil
}

func (e *Element) WaitForWritable(ctx context.Context) error {
	b := e.Browser()
	cfg := b.cfg
	if !cfg.RelaxedLocate {
		return e.assertWritable(ctx)
	}

	release, _ := b.timer.Acquire(cfg.DefaultTimeout)
	defer release()

	if err := e.WaitForEnabled(ctx); err != nil {
		return err
	}
	outcome, err := b.waiter().Until(ctx, cfg.DefaultTimeout, func(ctx context.Context) (bool, error) {
		readOnly, err := e.readOnlyNow(ctx)
		return !readOnly, err
	})
	if err != nil {
		return err
	}
	if outcome == wait.TimedOut {
		return &entity.ObjectReadOnlyError{
			Msg: fmt.Sprintf("element present and enabled, but timed out after %v, waiting for %s to not be readonly", cfg.DefaultTimeout, e),
		}
	}
	return nil
}

// adviseExists nudges callers towards Exists/Present instead of using the
// timeout error for control flow.
func (e *Element) adviseExists(method string) {
	b := e.Browser()
	if b.cfg.DefaultTimeout == 0 || b.logger == nil {
		return
	}
	b.logger.Warn("slept for the full default timeout waiting for an element; "+
		"if the code still works, consider using Element."+method+
		" instead of checking for UnknownObjectError",
		"timeout", b.cfg.DefaultTimeout.String(),
		"selector", e.SelectorString(),
		"wait_chain", b.timer.Chain(),
	)
}

func (e *Element) assertEnabled(ctx context.Context) error {
	if err := e.AssertExists(ctx); err != nil {
		return err
	}
	enabled, err := e.driver().Enabled(ctx, e.native)
	if err != nil {
		return err
	}
	if !enabled {
		return &entity.ObjectDisabledError{Msg: fmt.Sprintf("object is disabled %s", e)}
	}
	return nil
}

func (e *Element) assertWritable(ctx context.Context) error {
	if err := e.assertEnabled(ctx); err != nil {
		return err
	}
	readOnly, err := e.readOnlyNow(ctx)
	if err != nil {
		return err
	}
	if readOnly {
		return &entity.ObjectReadOnlyError{Msg: fmt.Sprintf("object is read only %s", e)}
	}
	return nil
}

func (e *Element) enabledNow(ctx context.Context) (bool, error) {
	if err := e.AssertExists(ctx); err != nil {
		return false, err
	}
	return e.driver().Enabled(ctx, e.native)
}

func (e *Element) readOnlyNow(ctx context.Context) (bool, error) {
	if err := e.AssertExists(ctx); err != nil {
		return false, err
	}
	_, readOnly, err := e.driver().Attribute(ctx, e.native, "readonly")
	return readOnly, err
}

// call runs method once the check passes. A stale handle during the method
// gets exactly one re-resolution and retry.
func (e *Element) call(ctx context.Context, check func(context.Context) error, method func(context.Context, output.NativeElement) error) error {
	b := e.Browser()
	release, _ := b.timer.Acquire(b.cfg.DefaultTimeout)
	defer release()

	if check == nil {
		check = e.WaitForExists
	}
	if err := check(ctx); err != nil {
		return err
	}
	err := method(ctx, e.native)
	if !errors.Is(err, entity.ErrStaleElement) {
		return err
	}

	if b.logger != nil {
		b.logger.Debug("stale element, relocating", "selector", e.SelectorString())
	}
	if !e.selector.IsEmpty() {
		e.Reset()
	}
	if err := check(ctx); err != nil {
		return err
	}
	return method(ctx, e.native)
}

// SelectorString renders the selector chain from the root, "a --> b".
func (e *Element) SelectorString() string {
	own := e.selector.String()
	if e.selector.IsEmpty() && (e.native != nil || e.fromNative) {
		own = "{element: (native element)}"
	}
	parent := e.scope.SelectorString()
	if parent == "" {
		return own
	}
	return parent + " --> " + own
}

func (e *Element) String() string {
	return fmt.Sprintf("#<%s: located: %t; %s>", e.kind, e.native != nil, e.SelectorString())
}

package element

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/locator/xpath"
)

var errNoActions = errors.New("driver does not support element actions")

func (e *Element) actions() (output.ActionPort, error) {
	if a := e.Browser().actions; a != nil {
		return a, nil
	}
	return nil, errNoActions
}

// Click waits for the element to be enabled, then clicks it.
func (e *Element) Click(ctx context.Context) error {
	actions, err := e.actions()
	if err != nil {
		return err
	}
	return e.call(ctx, e.WaitForEnabled, actions.Click)
}

// SendKeys types text into the element once it is writable.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	actions, err := e.actions()
	if err != nil {
		return err
	}
	return e.call(ctx, e.WaitForWritable, func(ctx context.Context, el output.NativeElement) error {
		return actions.SendKeys(ctx, el, text)
	})
}

func (e *Element) Clear(ctx context.Context) error {
	actions, err := e.actions()
	if err != nil {
		return err
	}
	return e.call(ctx, e.WaitForWritable, actions.Clear)
}

// Set replaces the current value with text.
func (e *Element) Set(ctx context.Context, text string) error {
	actions, err := e.actions()
	if err != nil {
		return err
	}
	return e.call(ctx, e.WaitForWritable, func(ctx context.Context, el output.NativeElement) error {
		if err := actions.Clear(ctx, el); err != nil {
			return err
		}
		return actions.SendKeys(ctx, el, text)
	})
}

func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	actions, err := e.actions()
	if err != nil {
		return nil, err
	}
	var out []byte
	err = e.call(ctx, e.WaitForPresent, func(ctx context.Context, el output.NativeElement) error {
		out, err = actions.Screenshot(ctx, el)
		return err
	})
	return out, err
}

// Text is the rendered text of the element.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.readString(ctx, e.driver().Text)
}

func (e *Element) Value(ctx context.Context) (string, error) {
	return e.readString(ctx, e.driver().Value)
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	tag, err := e.readString(ctx, e.driver().TagName)
	return strings.ToLower(tag), err
}

// AttributeValue returns the attribute, or "" when it is absent.
func (e *Element) AttributeValue(ctx context.Context, name string) (string, error) {
	return e.readString(ctx, func(ctx context.Context, el output.NativeElement) (string, error) {
		v, _, err := e.driver().Attribute(ctx, el, name)
		return v, err
	})
}

// Attr reads a selector-style attribute key, so "data_role" reads
// data-role and "class_name" reads class.
func (e *Element) Attr(ctx context.Context, key string) (string, error) {
	if key != entity.KeyClassName && key != "html_for" && !entity.WildcardAttribute.MatchString(key) {
		return e.AttributeValue(ctx, key)
	}
	return e.AttributeValue(ctx, xpath.AttributeName(key))
}

func (e *Element) readString(ctx context.Context, read func(context.Context, output.NativeElement) (string, error)) (string, error) {
	var out string
	err := e.call(ctx, nil, func(ctx context.Context, el output.NativeElement) error {
		var err error
		out, err = read(ctx, el)
		return err
	})
	return out, err
}

func (e *Element) readBool(ctx context.Context, read func(context.Context, output.NativeElement) (bool, error)) (bool, error) {
	var out bool
	err := e.call(ctx, e.AssertExists, func(ctx context.Context, el output.NativeElement) error {
		var err error
		out, err = read(ctx, el)
		return err
	})
	return out, err
}

// Visible never waits. A missing element is an error.
func (e *Element) Visible(ctx context.Context) (bool, error) {
	return e.readBool(ctx, e.driver().Displayed)
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	return e.readBool(ctx, e.driver().Enabled)
}

func (e *Element) ReadOnly(ctx context.Context) (bool, error) {
	return e.readBool(ctx, func(ctx context.Context, el output.NativeElement) (bool, error) {
		_, ok, err := e.driver().Attribute(ctx, el, "readonly")
		return ok, err
	})
}

// Present is Exists and Visible; a missing or stale element is simply not
// present.
func (e *Element) Present(ctx context.Context) (bool, error) {
	ok, err := e.Exists(ctx)
	if err != nil || !ok {
		return false, err
	}
	displayed, err := e.driver().Displayed(ctx, e.native)
	if errors.Is(err, entity.ErrStaleElement) {
		e.Reset()
		return false, nil
	}
	return displayed, err
}

// ToSubtype returns a handle of the most specific kind for the resolved
// element's tag and type.
func (e *Element) ToSubtype(ctx context.Context) (*Element, error) {
	if err := e.AssertExists(ctx); err != nil {
		return nil, err
	}
	tag, err := e.driver().TagName(ctx, e.native)
	if err != nil {
		return nil, err
	}
	typ, _, err := e.driver().Attribute(ctx, e.native, "type")
	if err != nil {
		return nil, err
	}
	kind := entity.KindFor(strings.ToLower(tag), typ)
	if kind == e.kind {
		return e, nil
	}
	sub := &Element{scope: e.scope, kind: kind, selector: e.selector.Clone(), native: e.native, fromNative: e.fromNative}
	return sub, nil
}

// Is reports whether the resolved element is of the given kind.
func (e *Element) Is(ctx context.Context, kind entity.Kind) (bool, error) {
	if kind == entity.KindElement {
		return true, nil
	}
	sub, err := e.ToSubtype(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve subtype: %w", err)
	}
	return sub.kind == kind, nil
}

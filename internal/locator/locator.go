// Package locator resolves a selector against a scope into native handles.
// It never waits and never reports "no match" as an error; retrying is the
// element layer's job.
package locator

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/locator/selector"
	"element-locator/internal/locator/xpath"
)

// Scope is anything a query can run under.
type Scope interface {
	// QueryContext makes sure the scope exists and returns its native
	// handle, nil for the document.
	QueryContext(ctx context.Context) (output.NativeElement, error)
}

type Locator struct {
	driver    output.DriverPort
	builder   *selector.Builder
	validator Validator
	logger    output.LoggerPort
}

func New(driver output.DriverPort, builder *selector.Builder, logger output.LoggerPort) *Locator {
	return &Locator{
		driver:  driver,
		builder: builder,
		logger:  logger,
	}
}

// Locate returns the single element selected by sel. found is false when
// nothing matched.
func (l *Locator) Locate(ctx context.Context, scope Scope, kind entity.Kind, sel entity.Selector) (output.NativeElement, bool, error) {
	matches, index, hasIndex, err := l.run(ctx, scope, kind, sel, true)
	if err != nil {
		return nil, false, err
	}
	if !hasIndex {
		if len(matches) == 0 {
			return nil, false, nil
		}
		return matches[0], true, nil
	}
	if index < 0 {
		index += len(matches)
	}
	if index < 0 || index >= len(matches) {
		return nil, false, nil
	}
	return matches[index], true, nil
}

// LocateAll returns every element matched by sel in document order, or
// nearest first along a reverse adjacent axis.
func (l *Locator) LocateAll(ctx context.Context, scope Scope, kind entity.Kind, sel entity.Selector) ([]output.NativeElement, error) {
	if sel.Has(entity.KeyIndex) {
		return nil, entity.NewConfigurationError("can not locate a collection by index: %s", sel)
	}
	matches, _, _, err := l.run(ctx, scope, kind, sel, false)
	return matches, err
}

func (l *Locator) run(ctx context.Context, scope Scope, kind entity.Kind, sel entity.Selector, single bool) ([]output.NativeElement, int, bool, error) {
	var (
		native   output.NativeElement
		scopeTag string
		query    entity.CompiledQuery
		err      error
	)

	// rows are the only kind whose query depends on the scope; everything
	// else is compiled before the driver is touched
	if kind == entity.KindRow {
		if native, err = scope.QueryContext(ctx); err != nil {
			return nil, 0, false, err
		}
		if native != nil {
			if scopeTag, err = l.driver.TagName(ctx, native); err != nil {
				return nil, 0, false, err
			}
		}
		if query, err = l.builder.Build(kind, sel, scopeTag); err != nil {
			return nil, 0, false, err
		}
	} else {
		if query, err = l.builder.Build(kind, sel, ""); err != nil {
			return nil, 0, false, err
		}
		if native, err = scope.QueryContext(ctx); err != nil {
			return nil, 0, false, err
		}
	}

	candidates, err := l.driver.FindElements(ctx, native, query.XPath())
	if err != nil {
		return nil, 0, false, fmt.Errorf("find elements %q: %w", query.XPath(), err)
	}
	if query.Reverse {
		candidates = slices.Clone(candidates)
		slices.Reverse(candidates)
	}

	residual := query.Residual.Clone()
	indexValue, hasIndex := residual.Delete(entity.KeyIndex)
	index, _ := indexValue.(int)

	// a folded query with nothing left to check: the first valid candidate wins
	stopAtFirst := single && !hasIndex && residual.IsEmpty()

	matches := make([]output.NativeElement, 0, len(candidates))
	for _, candidate := range candidates {
		ok, err := l.accept(ctx, kind, candidate, residual)
		if err != nil {
			return nil, 0, false, err
		}
		if !ok {
			continue
		}
		matches = append(matches, candidate)
		if stopAtFirst {
			break
		}
	}

	if l.logger != nil {
		l.logger.Debug("located",
			"kind", kind.String(),
			"xpath", query.XPath(),
			"candidates", len(candidates),
			"matches", len(matches),
		)
	}
	return matches, index, hasIndex, nil
}

func (l *Locator) accept(ctx context.Context, kind entity.Kind, el output.NativeElement, residual entity.Selector) (bool, error) {
	if kind != entity.KindElement {
		tag, err := l.driver.TagName(ctx, el)
		if err != nil {
			return false, err
		}
		typ := ""
		if l.validator.NeedsType(kind) {
			if typ, _, err = l.driver.Attribute(ctx, el, "type"); err != nil {
				return false, err
			}
		}
		if !l.validator.Validate(kind, tag, typ) {
			return false, nil
		}
	}

	for _, c := range residual.Constraints() {
		ok, err := l.matches(ctx, kind, el, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (l *Locator) matches(ctx context.Context, kind entity.Kind, el output.NativeElement, c entity.Constraint) (bool, error) {
	switch c.Key {
	case entity.KeyVisible:
		displayed, err := l.driver.Displayed(ctx, el)
		if err != nil {
			return false, err
		}
		return displayed == c.Value.(bool), nil

	case entity.KeyVisibleText:
		text, err := l.driver.Text(ctx, el)
		if err != nil {
			return false, err
		}
		return matchText(c.Value, text), nil

	case entity.KeyText:
		text, err := l.textOf(ctx, kind, el)
		if err != nil {
			return false, err
		}
		return matchText(c.Value, text), nil

	case entity.KeyTagName:
		tag, err := l.driver.TagName(ctx, el)
		if err != nil {
			return false, err
		}
		return matchValue(c.Value, strings.ToLower(tag), true), nil

	case entity.KeyClassName:
		class, present, err := l.driver.Attribute(ctx, el, "class")
		if err != nil {
			return false, err
		}
		if b, ok := c.Value.(bool); ok {
			return present == b, nil
		}
		for _, token := range strings.Fields(class) {
			if matchValue(c.Value, token, true) {
				return true, nil
			}
		}
		return false, nil
	}

	name := xpath.AttributeName(c.Key)
	value, present, err := l.driver.Attribute(ctx, el, name)
	if err != nil {
		return false, err
	}
	if b, ok := c.Value.(bool); ok {
		return present == b, nil
	}
	if !present {
		return false, nil
	}
	return matchValue(c.Value, value, name != "type"), nil
}

// textOf is the text a "text" constraint compares against: the value of
// text fields, the value of input buttons, the rendered text otherwise.
func (l *Locator) textOf(ctx context.Context, kind entity.Kind, el output.NativeElement) (string, error) {
	switch kind {
	case entity.KindTextField:
		return l.driver.Value(ctx, el)
	case entity.KindButton:
		tag, err := l.driver.TagName(ctx, el)
		if err != nil {
			return "", err
		}
		if strings.EqualFold(tag, "input") {
			return l.driver.Value(ctx, el)
		}
	}
	return l.driver.Text(ctx, el)
}

func matchText(want any, text string) bool {
	if s, ok := want.(string); ok {
		return normalizeSpace(s) == normalizeSpace(text)
	}
	return matchValue(want, text, true)
}

func matchValue(want any, got string, caseSensitive bool) bool {
	switch v := want.(type) {
	case *regexp.Regexp:
		return v.MatchString(got)
	case string:
		if caseSensitive {
			return v == got
		}
		return strings.EqualFold(v, got)
	case bool:
		return v
	}
	return false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

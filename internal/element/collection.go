package element

import (
	"context"
	"fmt"

	"element-locator/internal/domain/entity"
)

// Collection is every element matching a selector under one scope. It is
// resolved on each call to All.
type Collection struct {
	scope    Container
	kind     entity.Kind
	selector entity.Selector
}

func newCollection(scope Container, kind entity.Kind, sel entity.Selector) *Collection {
	sel = sel.Clone()
	if kind == entity.KindRow && !sel.Has(entity.KeyTagName) {
		sel.Set(entity.KeyTagName, "tr")
	}
	return &Collection{scope: scope, kind: kind, selector: sel}
}

// All waits for the scope, then returns one handle per match in locate
// order. Handles come pre-resolved and carry selector+index so they can be
// re-resolved after going stale.
func (c *Collection) All(ctx context.Context) ([]*Element, error) {
	b := c.scope.Browser()
	release, _ := b.timer.Acquire(b.cfg.DefaultTimeout)
	defer release()

	var err error
	if b.cfg.RelaxedLocate {
		err = c.scope.WaitForExists(ctx)
	} else {
		err = c.scope.AssertExists(ctx)
	}
	if err != nil {
		return nil, err
	}

	natives, err := b.locator.LocateAll(ctx, c.scope, c.kind, c.selector)
	if err != nil {
		return nil, err
	}

	out := make([]*Element, 0, len(natives))
	for i, native := range natives {
		sel := c.selector.Clone()
		sel.Set(entity.KeyIndex, i)
		el := newElement(c.scope, c.kind, sel)
		el.native = native
		out = append(out, el)
	}
	return out, nil
}

func (c *Collection) Len(ctx context.Context) (int, error) {
	all, err := c.All(ctx)
	return len(all), err
}

// At is a lazy handle on the i-th match; negative i counts from the end.
func (c *Collection) At(i int) *Element {
	sel := c.selector.Clone()
	sel.Set(entity.KeyIndex, i)
	return newElement(c.scope, c.kind, sel)
}

func (c *Collection) First() *Element { return c.At(0) }
func (c *Collection) Last() *Element  { return c.At(-1) }

func (c *Collection) String() string {
	return fmt.Sprintf("#<%sCollection: %s>", c.kind, c.selector)
}

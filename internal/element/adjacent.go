package element

import (
	"element-locator/internal/domain/entity"
)

// Nested handles use the element as their scope.

func (e *Element) Element(sel entity.Selector) *Element {
	return newElement(e, entity.KindElement, sel)
}

func (e *Element) Find(kind entity.Kind, sel entity.Selector) *Element {
	return newElement(e, kind, sel)
}

func (e *Element) TextField(sel entity.Selector) *Element {
	return newElement(e, entity.KindTextField, sel)
}

func (e *Element) Button(sel entity.Selector) *Element {
	return newElement(e, entity.KindButton, sel)
}

func (e *Element) CheckBox(sel entity.Selector) *Element {
	return newElement(e, entity.KindCheckBox, sel)
}

func (e *Element) Radio(sel entity.Selector) *Element {
	return newElement(e, entity.KindRadio, sel)
}

func (e *Element) FileField(sel entity.Selector) *Element {
	return newElement(e, entity.KindFileField, sel)
}

func (e *Element) Row(sel entity.Selector) *Element {
	return newElement(e, entity.KindRow, sel)
}

func (e *Element) Elements(sel entity.Selector) *Collection {
	return newCollection(e, entity.KindElement, sel)
}

func (e *Element) FindAll(kind entity.Kind, sel entity.Selector) *Collection {
	return newCollection(e, kind, sel)
}

func (e *Element) Rows(sel entity.Selector) *Collection {
	return newCollection(e, entity.KindRow, sel)
}

// Parent is the closest ancestor matching sel; with no constraints it is
// the direct parent.
func (e *Element) Parent(sel entity.Selector) *Element {
	if sel.IsEmpty() {
		return e.adjacent("parent", sel)
	}
	return e.adjacent("ancestor", sel)
}

func (e *Element) FollowingSibling(sel entity.Selector) *Element {
	return e.adjacent("following", sel)
}

func (e *Element) PrecedingSibling(sel entity.Selector) *Element {
	return e.adjacent("preceding", sel)
}

func (e *Element) Child(sel entity.Selector) *Element {
	return e.adjacent("child", sel)
}

func (e *Element) FollowingSiblings(sel entity.Selector) *Collection {
	return e.adjacentAll("following", sel)
}

func (e *Element) PrecedingSiblings(sel entity.Selector) *Collection {
	return e.adjacentAll("preceding", sel)
}

func (e *Element) Children(sel entity.Selector) *Collection {
	return e.adjacentAll("child", sel)
}

// Siblings are the children of the parent, this element included.
func (e *Element) Siblings(sel entity.Selector) *Collection {
	return e.Parent(entity.NewSelector()).Children(sel)
}

// adjacent selects a single neighbour. Without an explicit index the first
// one along the axis wins, unless a regexp forces client-side filtering.
func (e *Element) adjacent(axis string, sel entity.Selector) *Element {
	sel = sel.Clone()
	sel.Set(entity.KeyAdjacent, axis)
	if !sel.Has(entity.KeyIndex) && !sel.HasRegexp() {
		sel.Set(entity.KeyIndex, 0)
	}
	return newElement(e, entity.KindElement, sel)
}

func (e *Element) adjacentAll(axis string, sel entity.Selector) *Collection {
	sel = sel.Clone()
	sel.Set(entity.KeyAdjacent, axis)
	return newCollection(e, entity.KindElement, sel)
}

// Ancestors come back nearest first, the same order an index counts in.
func (e *Element) Ancestors(sel entity.Selector) *Collection {
	return e.adjacentAll("ancestor", sel)
}

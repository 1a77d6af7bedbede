package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// Reserved selector keys. Everything else is treated as an HTML attribute.
const (
	KeyTagName     = "tag_name"
	KeyText        = "text"
	KeyLabel       = "label"
	KeyIndex       = "index"
	KeyVisible     = "visible"
	KeyVisibleText = "visible_text"
	KeyAdjacent    = "adjacent"
	KeyClassName   = "class_name"
	KeyType        = "type"
	KeyValue       = "value"
)

// WildcardAttribute matches keys that are rewritten to hyphenated attributes
// (data_foo_bar -> data-foo-bar).
var WildcardAttribute = regexp.MustCompile(`^(aria|data)_(.+)$`)

// Constraint is one key/value pair of a Selector.
type Constraint struct {
	Key   string
	Value any
}

// Selector is an ordered attribute -> constraint mapping. Values are string,
// bool, int or *regexp.Regexp.
type Selector struct {
	items []Constraint
}

// NewSelector builds a selector from alternating key/value arguments:
//
//	entity.NewSelector("id", "foo", "index", 2)
func NewSelector(kv ...any) Selector {
	var s Selector
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		s.Set(key, kv[i+1])
	}
	return s
}

// Set adds or replaces a constraint, keeping the original position on replace.
func (s *Selector) Set(key string, value any) {
	for i := range s.items {
		if s.items[i].Key == key {
			s.items[i].Value = value
			return
		}
	}
	s.items = append(s.items, Constraint{Key: key, Value: value})
}

func (s Selector) Get(key string) (any, bool) {
	for _, c := range s.items {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

func (s Selector) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes key and returns its value.
func (s *Selector) Delete(key string) (any, bool) {
	for i, c := range s.items {
		if c.Key == key {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return c.Value, true
		}
	}
	return nil, false
}

func (s Selector) Len() int      { return len(s.items) }
func (s Selector) IsEmpty() bool { return len(s.items) == 0 }

// Constraints returns a copy of the pairs in insertion order.
func (s Selector) Constraints() []Constraint {
	out := make([]Constraint, len(s.items))
	copy(out, s.items)
	return out
}

func (s Selector) Keys() []string {
	keys := make([]string, len(s.items))
	for i, c := range s.items {
		keys[i] = c.Key
	}
	return keys
}

func (s Selector) Clone() Selector {
	return Selector{items: s.Constraints()}
}

// HasRegexp reports whether any constraint value is a regular expression.
func (s Selector) HasRegexp() bool {
	for _, c := range s.items {
		if _, ok := c.Value.(*regexp.Regexp); ok {
			return true
		}
	}
	return false
}

// Equal compares keys, order and values; regular expressions compare by source.
func (s Selector) Equal(other Selector) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i, c := range s.items {
		o := other.items[i]
		if c.Key != o.Key || !valuesEqual(c.Value, o.Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	ra, okA := a.(*regexp.Regexp)
	rb, okB := b.(*regexp.Regexp)
	if okA || okB {
		return okA && okB && ra.String() == rb.String()
	}
	return a == b
}

func (s Selector) String() string {
	parts := make([]string, 0, len(s.items))
	for _, c := range s.items {
		parts = append(parts, fmt.Sprintf("%q: %s", c.Key, FormatValue(c.Value)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FormatValue renders a constraint value for diagnostics.
func FormatValue(v any) string {
	switch val := v.(type) {
	case *regexp.Regexp:
		return "/" + val.String() + "/"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

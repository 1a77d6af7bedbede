// Package xpath compiles single selector constraints into XPath 1.0
// fragments. It has no state; callers decide how fragments are combined.
package xpath

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"

	"element-locator/internal/domain/entity"
)

// Case folding tables for translate(). XPath 1.0 has no case-insensitive
// comparison, so both tables must stay rune-aligned.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÐÑÒÓÔÕÖØÙÚÛÜÝÞŸŽŠŒ"
	Lowercase = "abcdefghijklmnopqrstuvwxyzàáâãäåæçèéêëìíîïðñòóôõöøùúûüýþÿžšœ"
)

// Axes accepted by the adjacent key.
var axes = map[string]string{
	"ancestor":  "ancestor::*",
	"parent":    "parent::*",
	"child":     "child::*",
	"following": "following-sibling::*",
	"preceding": "preceding-sibling::*",
}

// reverseAxes list their nodes nearest first.
var reverseAxes = map[string]bool{
	"ancestor":  true,
	"preceding": true,
}

// ReverseAxis reports whether axis runs against document order.
func ReverseAxis(axis string) bool {
	return reverseAxes[axis]
}

// caseInsensitive attributes are compared through translate().
var caseInsensitive = map[string]bool{
	"type": true,
}

// Escape quotes s as an XPath string literal.
func Escape(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	default:
		parts := strings.Split(s, "'")
		quoted := make([]string, 0, len(parts)*2)
		for i, p := range parts {
			if i > 0 {
				quoted = append(quoted, `"'"`)
			}
			if p != "" {
				quoted = append(quoted, "'"+p+"'")
			}
		}
		return "concat(" + strings.Join(quoted, ",") + ")"
	}
}

// LowerCase wraps expr in the translate() case fold.
func LowerCase(expr string) string {
	return fmt.Sprintf("translate(%s,'%s','%s')", expr, Uppercase, Lowercase)
}

// AttributeName maps a selector key to the HTML attribute it reads.
func AttributeName(key string) string {
	switch key {
	case entity.KeyClassName:
		return "class"
	case "html_for":
		return "for"
	}
	if entity.WildcardAttribute.MatchString(key) {
		return strings.ReplaceAll(key, "_", "-")
	}
	return key
}

// Predicate compiles one constraint into a predicate body (without brackets).
// ok is false when the constraint cannot be expressed and must be checked
// against each candidate instead.
func Predicate(key string, value any) (expr string, ok bool, err error) {
	switch key {
	case entity.KeyIndex, entity.KeyAdjacent, entity.KeyVisible, entity.KeyVisibleText:
		return "", false, nil
	case entity.KeyTagName:
		return tagNamePredicate(value)
	case entity.KeyText:
		return textPredicate(value)
	case entity.KeyLabel:
		return labelPredicate(value)
	case entity.KeyClassName:
		return classPredicate(value)
	}
	return attributePredicate(AttributeName(key), value)
}

// TypeEquals is the case-insensitive @type comparison.
func TypeEquals(typ string) string {
	return LowerCase("@type") + "=" + Escape(strings.ToLower(typ))
}

// TypeNotEquals is the case-insensitive @type exclusion.
func TypeNotEquals(typ string) string {
	return LowerCase("@type") + "!=" + Escape(strings.ToLower(typ))
}

func tagNamePredicate(value any) (string, bool, error) {
	switch v := value.(type) {
	case string:
		return "local-name()=" + Escape(v), true, nil
	case *regexp.Regexp:
		return "", false, nil
	}
	return "", false, typeMismatch(value, "string", "regexp")
}

func textPredicate(value any) (string, bool, error) {
	switch v := value.(type) {
	case string:
		return "normalize-space()=" + Escape(v), true, nil
	case *regexp.Regexp:
		return "", false, nil
	}
	return "", false, typeMismatch(value, "string", "regexp")
}

// LabelPredicate matches an element whose id is the for= of a label with the
// given text, or one nested inside such a label.
func LabelPredicate(text string) string {
	label := "label[normalize-space()=" + Escape(text) + "]"
	return "@id=//" + label + "/@for or ancestor::" + label
}

func labelPredicate(value any) (string, bool, error) {
	v, ok := value.(string)
	if !ok {
		return "", false, typeMismatch(value, "string")
	}
	return LabelPredicate(v), true, nil
}

func classPredicate(value any) (string, bool, error) {
	switch v := value.(type) {
	case string:
		return classToken(v), true, nil
	case bool:
		return presence("class", v), true, nil
	case *regexp.Regexp:
		expr, ok := classRegexp(v)
		return expr, ok, nil
	}
	return "", false, typeMismatch(value, "string", "bool", "regexp")
}

func classToken(name string) string {
	return "contains(concat(' ', @class, ' '), " + Escape(" "+name+" ") + ")"
}

// classRegexp degrades a literal pattern to contains() and an anchored
// literal to a whole-token match. Everything else is residual.
func classRegexp(re *regexp.Regexp) (string, bool) {
	parsed, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return "", false
	}
	parsed = parsed.Simplify()

	literal := func(r *syntax.Regexp) (string, bool) {
		if r.Op != syntax.OpLiteral || r.Flags&syntax.FoldCase != 0 {
			return "", false
		}
		s := string(r.Rune)
		if s == "" || strings.ContainsAny(s, " \t\r\n\f") {
			return "", false
		}
		return s, true
	}

	switch parsed.Op {
	case syntax.OpLiteral:
		if s, ok := literal(parsed); ok {
			return "contains(@class, " + Escape(s) + ")", true
		}
	case syntax.OpConcat:
		subs := parsed.Sub
		if len(subs) == 3 && subs[0].Op == syntax.OpBeginText && subs[2].Op == syntax.OpEndText {
			if s, ok := literal(subs[1]); ok {
				return classToken(s), true
			}
		}
	}
	return "", false
}

func attributePredicate(name string, value any) (string, bool, error) {
	switch v := value.(type) {
	case string:
		if caseInsensitive[name] {
			return LowerCase("@"+name) + "=" + Escape(strings.ToLower(v)), true, nil
		}
		return "@" + name + "=" + Escape(v), true, nil
	case bool:
		return presence(name, v), true, nil
	case *regexp.Regexp:
		return "", false, nil
	}
	return "", false, typeMismatch(value, "string", "bool", "regexp")
}

func presence(name string, present bool) string {
	if present {
		return "@" + name
	}
	return "not(@" + name + ")"
}

// Position renders the 1-based positional predicate for a Python-style index:
// 4 -> "5", -1 -> "last()", -3 -> "last()-2".
func Position(index int) string {
	switch {
	case index >= 0:
		return strconv.Itoa(index + 1)
	case index == -1:
		return "last()"
	default:
		return "last()-" + strconv.Itoa(-index-1)
	}
}

// WrapIndex applies index to the whole (possibly unioned) expression.
// Index 0 is the identity.
func WrapIndex(expr string, index int) string {
	if index == 0 {
		return expr
	}
	return "(" + expr + ")[" + Position(index) + "]"
}

// Adjacent builds an axis traversal from the scope element. tag may be empty;
// index may be nil for plural lookups.
func Adjacent(axis, tag string, index *int) (string, error) {
	step, ok := axes[axis]
	if !ok {
		return "", entity.NewConfigurationError("unsupported adjacent axis: %q", axis)
	}
	expr := "./" + step
	if tag != "" {
		expr += "[local-name()=" + Escape(tag) + "]"
	}
	if index != nil {
		expr += "[" + Position(*index) + "]"
	}
	return expr, nil
}

// CheckIndex validates the index constraint type.
func CheckIndex(value any) (int, error) {
	i, ok := value.(int)
	if !ok {
		return 0, typeMismatch(value, "int")
	}
	return i, nil
}

func typeMismatch(value any, expected ...string) error {
	return entity.NewConfigurationError("expected one of %v, got %s:%T", expected, entity.FormatValue(value), value)
}

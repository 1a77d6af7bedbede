package locator

import (
	"strings"

	"element-locator/internal/domain/entity"
)

// Validator drops candidates whose tag/type contradict the kind being
// located. XPath matches a superset in a few cases (case folding of @type,
// hand-written adjacent queries), so the check runs after every query.
type Validator struct{}

// NeedsType reports whether Validate looks at the type attribute for kind.
func (Validator) NeedsType(kind entity.Kind) bool {
	return kind != entity.KindElement && kind != entity.KindRow
}

func (Validator) Validate(kind entity.Kind, tag, typ string) bool {
	tag = strings.ToLower(tag)
	typ = strings.ToLower(typ)

	switch kind {
	case entity.KindTextField:
		return tag == "input" && !oneOf(typ, entity.TextFieldExcludedTypes)
	case entity.KindButton:
		return tag == "button" || (tag == "input" && oneOf(typ, entity.ButtonTypes))
	case entity.KindCheckBox:
		return tag == "input" && typ == "checkbox"
	case entity.KindRadio:
		return tag == "input" && typ == "radio"
	case entity.KindFileField:
		return tag == "input" && typ == "file"
	case entity.KindRow:
		return tag == "tr"
	default:
		return true
	}
}

func oneOf(s string, list []string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

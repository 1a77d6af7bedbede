package entity

import "strings"

// Kind is the closed set of element kinds a handle can be located as.
type Kind int

const (
	KindElement Kind = iota
	KindTextField
	KindButton
	KindCheckBox
	KindRadio
	KindFileField
	KindRow
)

var kindNames = map[Kind]string{
	KindElement:   "Element",
	KindTextField: "TextField",
	KindButton:    "Button",
	KindCheckBox:  "CheckBox",
	KindRadio:     "Radio",
	KindFileField: "FileField",
	KindRow:       "Row",
}

var kindKeys = map[string]Kind{
	"element":    KindElement,
	"text_field": KindTextField,
	"button":     KindButton,
	"checkbox":   KindCheckBox,
	"radio":      KindRadio,
	"file_field": KindFileField,
	"row":        KindRow,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Element"
}

// ParseKind accepts the snake_case names used by selector documents and the CLI.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindKeys[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// TextFieldExcludedTypes are input types that are never text fields.
var TextFieldExcludedTypes = []string{
	"file", "radio", "checkbox", "submit", "reset", "image",
	"button", "hidden", "range", "color", "date", "datetime-local",
}

// ButtonTypes are the input types rendered as buttons.
var ButtonTypes = []string{"button", "reset", "submit", "image"}

// KindFor maps a resolved (tag, type) pair to the most specific kind.
func KindFor(tag, typ string) Kind {
	tag = strings.ToLower(tag)
	typ = strings.ToLower(typ)

	switch tag {
	case "input":
		switch {
		case contains(ButtonTypes, typ):
			return KindButton
		case typ == "checkbox":
			return KindCheckBox
		case typ == "radio":
			return KindRadio
		case typ == "file":
			return KindFileField
		case contains(TextFieldExcludedTypes, typ):
			return KindElement
		default:
			return KindTextField
		}
	case "button":
		return KindButton
	case "tr":
		return KindRow
	default:
		return KindElement
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

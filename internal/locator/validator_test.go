package locator

import (
	"testing"

	"element-locator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	tests := []struct {
		kind entity.Kind
		tag  string
		typ  string
		want bool
	}{
		{entity.KindElement, "span", "", true},
		{entity.KindTextField, "input", "", true},
		{entity.KindTextField, "INPUT", "Email", true},
		{entity.KindTextField, "input", "hidden", false},
		{entity.KindTextField, "textarea", "", false},
		{entity.KindButton, "button", "", true},
		{entity.KindButton, "input", "SUBMIT", true},
		{entity.KindButton, "input", "text", false},
		{entity.KindCheckBox, "input", "checkbox", true},
		{entity.KindCheckBox, "input", "radio", false},
		{entity.KindRadio, "input", "radio", true},
		{entity.KindFileField, "input", "file", true},
		{entity.KindFileField, "button", "file", false},
		{entity.KindRow, "TR", "", true},
		{entity.KindRow, "td", "", false},
	}
	var v Validator
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.Validate(tt.kind, tt.tag, tt.typ), "%s <%s type=%q>", tt.kind, tt.tag, tt.typ)
	}
}

func TestValidator_NeedsType(t *testing.T) {
	var v Validator
	assert.False(t, v.NeedsType(entity.KindElement))
	assert.False(t, v.NeedsType(entity.KindRow))
	assert.True(t, v.NeedsType(entity.KindButton))
	assert.True(t, v.NeedsType(entity.KindTextField))
}

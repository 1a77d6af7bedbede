// Package selector turns a Selector into one XPath query plus the residual
// constraints XPath cannot express.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/locator/xpath"
)

type Builder struct {
	logger output.LoggerPort
}

func NewBuilder(logger output.LoggerPort) *Builder {
	return &Builder{logger: logger}
}

// query is the expression under construction. Most kinds have one branch;
// buttons and rows union several.
type query struct {
	branches []branch
}

type branch struct {
	base       string
	predicates []string
}

func (q *query) add(pred string) {
	for i := range q.branches {
		q.branches[i].predicates = append(q.branches[i].predicates, pred)
	}
}

func (q *query) String() string {
	parts := make([]string, len(q.branches))
	for i, b := range q.branches {
		var sb strings.Builder
		sb.WriteString(b.base)
		for _, p := range b.predicates {
			sb.WriteString("[" + p + "]")
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, " | ")
}

// Build compiles sel for the given kind. scopeTag is the lower-cased tag of
// the scope element ("" for the document) and is only consulted for rows.
// sel itself is not modified.
func (b *Builder) Build(kind entity.Kind, sel entity.Selector, scopeTag string) (entity.CompiledQuery, error) {
	work := sel.Clone()

	if err := checkValues(work); err != nil {
		return entity.CompiledQuery{}, err
	}

	if work.Has(entity.KeyAdjacent) {
		return b.buildAdjacent(work)
	}

	index := 0
	hasIndex := false
	if v, ok := work.Delete(entity.KeyIndex); ok {
		index = v.(int)
		hasIndex = true
	}

	var (
		q   *query
		err error
	)
	residual := entity.Selector{}

	switch kind {
	case entity.KindTextField:
		q, err = textFieldQuery(&work, &residual)
	case entity.KindButton:
		q, err = buttonQuery(&work, &residual)
	case entity.KindCheckBox:
		q, err = fixedTypeQuery(kind, "checkbox", &work, &residual)
	case entity.KindRadio:
		q, err = fixedTypeQuery(kind, "radio", &work, &residual)
	case entity.KindFileField:
		q, err = fixedTypeQuery(kind, "file", &work, &residual)
	case entity.KindRow:
		q, err = rowQuery(scopeTag, &work)
	default:
		q, err = elementQuery(&work, &residual)
	}
	if err != nil {
		return entity.CompiledQuery{}, err
	}

	if err := compileRemaining(q, &work, &residual); err != nil {
		return entity.CompiledQuery{}, err
	}

	expr := q.String()
	if hasIndex {
		if residual.IsEmpty() {
			expr = xpath.WrapIndex(expr, index)
		} else {
			residual.Set(entity.KeyIndex, index)
		}
	}

	b.debug(kind, expr, residual)
	return entity.NewCompiledQuery(expr, reorder(residual, sel)), nil
}

func (b *Builder) debug(kind entity.Kind, expr string, residual entity.Selector) {
	if b.logger == nil {
		return
	}
	b.logger.Debug("selector built", "kind", kind.String(), "xpath", expr, "residual", residual.String())
}

func (b *Builder) buildAdjacent(work entity.Selector) (entity.CompiledQuery, error) {
	axisValue, _ := work.Delete(entity.KeyAdjacent)
	axis, ok := axisValue.(string)
	if !ok {
		return entity.CompiledQuery{}, entity.NewConfigurationError("expected one of [string], got %s:%T", entity.FormatValue(axisValue), axisValue)
	}

	tag := ""
	if v, ok := work.Get(entity.KeyTagName); ok {
		if s, isString := v.(string); isString {
			tag = s
			work.Delete(entity.KeyTagName)
		}
	}

	reverse := xpath.ReverseAxis(axis)

	var index *int
	if v, ok := work.Get(entity.KeyIndex); ok {
		i := v.(int)
		// every remaining constraint is residual here; the position can
		// only be taken after those filters ran. Reverse axes keep the
		// index too, so every driver counts it from the nearest node.
		if work.Len() == 1 && !reverse {
			index = &i
			work.Delete(entity.KeyIndex)
		}
	}

	expr, err := xpath.Adjacent(axis, tag, index)
	if err != nil {
		return entity.CompiledQuery{}, err
	}
	b.debug(entity.KindElement, expr, work)
	q := entity.NewCompiledQuery(expr, work)
	q.Reverse = reverse
	return q, nil
}

// checkValues validates constraint types up front so nothing reaches the
// driver with a malformed selector.
func checkValues(sel entity.Selector) error {
	for _, c := range sel.Constraints() {
		switch c.Key {
		case entity.KeyIndex:
			if _, err := xpath.CheckIndex(c.Value); err != nil {
				return err
			}
		case entity.KeyVisible:
			if _, ok := c.Value.(bool); !ok {
				return entity.NewConfigurationError("expected one of [bool], got %s:%T", entity.FormatValue(c.Value), c.Value)
			}
		default:
			switch c.Value.(type) {
			case string, bool, *regexp.Regexp:
			default:
				return entity.NewConfigurationError("expected one of [string bool regexp], got %s:%T for %q", entity.FormatValue(c.Value), c.Value, c.Key)
			}
		}
	}
	return nil
}

func elementQuery(work, residual *entity.Selector) (*query, error) {
	q := &query{branches: []branch{{base: ".//*"}}}
	if v, ok := work.Delete(entity.KeyTagName); ok {
		if err := compileOne(q, entity.KeyTagName, v, residual); err != nil {
			return nil, err
		}
	}
	if v, ok := work.Delete(entity.KeyClassName); ok {
		if err := compileOne(q, entity.KeyClassName, v, residual); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func inputQuery() *query {
	return &query{branches: []branch{{
		base:       ".//*",
		predicates: []string{"local-name()='input'"},
	}}}
}

func textFieldQuery(work, residual *entity.Selector) (*query, error) {
	q := inputQuery()
	if v, ok := work.Delete(entity.KeyClassName); ok {
		if err := compileOne(q, entity.KeyClassName, v, residual); err != nil {
			return nil, err
		}
	}

	negative := make([]string, len(entity.TextFieldExcludedTypes))
	for i, t := range entity.TextFieldExcludedTypes {
		negative[i] = xpath.TypeNotEquals(t)
	}
	negativeTypes := strings.Join(negative, " and ")

	typ, _ := work.Delete(entity.KeyType)
	switch v := typ.(type) {
	case nil:
		q.add("not(@type) or (" + negativeTypes + ")")
	case bool:
		if v {
			q.add(negativeTypes)
		} else {
			q.add("not(@type)")
		}
	case string:
		if containsFold(entity.TextFieldExcludedTypes, v) {
			return nil, invalidType(entity.KindTextField, v)
		}
		q.add(xpath.TypeEquals(v))
	case *regexp.Regexp:
		q.add("not(@type) or (" + negativeTypes + ")")
		residual.Set(entity.KeyType, v)
	}

	// text of a text field is its value; XPath cannot see live values
	if v, ok := work.Delete(entity.KeyText); ok {
		residual.Set(entity.KeyText, v)
	}
	return q, nil
}

func buttonQuery(work, residual *entity.Selector) (*query, error) {
	buttons := branch{base: ".//*", predicates: []string{"local-name()='button'"}}
	inputs := branch{base: ".//*", predicates: []string{"local-name()='input'"}}

	typed := make([]string, len(entity.ButtonTypes))
	for i, t := range entity.ButtonTypes {
		typed[i] = xpath.TypeEquals(t)
	}
	inputTypes := strings.Join(typed, " or ")

	typ, _ := work.Delete(entity.KeyType)
	switch v := typ.(type) {
	case nil:
		inputs.predicates = append(inputs.predicates, inputTypes)
	case bool:
		if v {
			buttons.predicates = append(buttons.predicates, "@type")
			inputs.predicates = append(inputs.predicates, inputTypes)
		} else {
			buttons.predicates = append(buttons.predicates, "not(@type)")
			inputs = branch{}
		}
	case string:
		if !containsFold(entity.ButtonTypes, v) {
			return nil, invalidType(entity.KindButton, v)
		}
		buttons.predicates = append(buttons.predicates, xpath.TypeEquals(v))
		inputs.predicates = append(inputs.predicates, xpath.TypeEquals(v))
	case *regexp.Regexp:
		inputs.predicates = append(inputs.predicates, inputTypes)
		residual.Set(entity.KeyType, v)
	}

	// button text is the rendered text of <button> and @value of <input>
	if v, ok := work.Delete(entity.KeyText); ok {
		switch t := v.(type) {
		case string:
			buttons.predicates = append(buttons.predicates, "normalize-space()="+xpath.Escape(t))
			if inputs.base != "" {
				inputs.predicates = append(inputs.predicates, "@value="+xpath.Escape(t))
			}
		default:
			residual.Set(entity.KeyText, v)
		}
	}

	q := &query{branches: []branch{buttons}}
	if inputs.base != "" {
		q.branches = append(q.branches, inputs)
	}
	return q, nil
}

func fixedTypeQuery(kind entity.Kind, typ string, work, residual *entity.Selector) (*query, error) {
	q := inputQuery()
	if v, ok := work.Delete(entity.KeyClassName); ok {
		if err := compileOne(q, entity.KeyClassName, v, residual); err != nil {
			return nil, err
		}
	}
	if v, ok := work.Delete(entity.KeyType); ok {
		switch t := v.(type) {
		case string:
			if !strings.EqualFold(t, typ) {
				return nil, invalidType(kind, t)
			}
		case bool:
			if !t {
				return nil, invalidType(kind, "false")
			}
		case *regexp.Regexp:
			if !t.MatchString(typ) {
				return nil, invalidType(kind, entity.FormatValue(t))
			}
		}
	}
	q.add(xpath.TypeEquals(typ))
	return q, nil
}

func rowQuery(scopeTag string, work *entity.Selector) (*query, error) {
	if _, ok := work.Delete(entity.KeyTagName); !ok {
		return nil, fmt.Errorf("%w: no tag_name for row selector", entity.ErrInternal)
	}

	q := &query{branches: []branch{{base: "./tr"}}}
	switch strings.ToLower(scopeTag) {
	case "tbody", "thead", "tfoot":
	default:
		q.branches = append(q.branches,
			branch{base: "./tbody/tr"},
			branch{base: "./thead/tr"},
			branch{base: "./tfoot/tr"},
		)
	}
	return q, nil
}

// compileRemaining compiles what the kind did not consume. Label goes last
// so its long predicate does not hide the simpler ones.
func compileRemaining(q *query, work, residual *entity.Selector) error {
	label, hasLabel := work.Delete(entity.KeyLabel)

	if v, ok := work.Delete(entity.KeyClassName); ok {
		if err := compileOne(q, entity.KeyClassName, v, residual); err != nil {
			return err
		}
	}
	for _, c := range work.Constraints() {
		if err := compileOne(q, c.Key, c.Value, residual); err != nil {
			return err
		}
	}
	if hasLabel {
		if err := compileOne(q, entity.KeyLabel, label, residual); err != nil {
			return err
		}
	}
	return nil
}

func compileOne(q *query, key string, value any, residual *entity.Selector) error {
	expr, ok, err := xpath.Predicate(key, value)
	if err != nil {
		return err
	}
	if !ok {
		residual.Set(key, value)
		return nil
	}
	q.add(expr)
	return nil
}

// reorder keeps residual constraints in the caller's original order so the
// locator filters in selector order.
func reorder(residual, original entity.Selector) entity.Selector {
	out := entity.Selector{}
	for _, key := range original.Keys() {
		if v, ok := residual.Get(key); ok {
			out.Set(key, v)
		}
	}
	return out
}

func invalidType(kind entity.Kind, typ string) error {
	return entity.NewConfigurationError("%s Elements can not be located by type: %s", kind, typ)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

package input

import (
	"context"

	"element-locator/internal/domain/entity"
)

type CompileRequest struct {
	Kind     entity.Kind
	Selector entity.Selector
	// ScopeTag is the tag of the scope element; only rows look at it.
	ScopeTag string
}

type CompileResult struct {
	XPath    string
	Residual entity.Selector
}

// SelectorCompiler turns a selector into its query without a browser.
type SelectorCompiler interface {
	Compile(ctx context.Context, req CompileRequest) (*CompileResult, error)
}

// Step is one handle in a scope chain, outermost first.
type Step struct {
	Kind     entity.Kind
	Selector entity.Selector
}

type FindRequest struct {
	// URL is opened first when set; otherwise the current page is used.
	URL   string
	Steps []Step
	// All returns every match of the last step instead of the first one.
	All bool
}

// ElementInfo describes a located element.
type ElementInfo struct {
	Kind     entity.Kind
	TagName  string
	Text     string
	ID       string
	Class    string
	Visible  bool
	Selector string
}

type FindResult struct {
	Elements []ElementInfo
}

// ElementFinder runs a scope chain against a live page.
type ElementFinder interface {
	Find(ctx context.Context, req FindRequest) (*FindResult, error)
}

package usecase

import (
	"context"
	"fmt"

	"element-locator/internal/application/port/input"
	"element-locator/internal/application/port/output"
	"element-locator/internal/locator/selector"
)

var _ input.SelectorCompiler = (*CompileUseCase)(nil)

type CompileUseCase struct {
	builder *selector.Builder
	logger  output.LoggerPort
}

func NewCompileUseCase(builder *selector.Builder, logger output.LoggerPort) *CompileUseCase {
	return &CompileUseCase{builder: builder, logger: logger}
}

func (uc *CompileUseCase) Compile(_ context.Context, req input.CompileRequest) (*input.CompileResult, error) {
	q, err := uc.builder.Build(req.Kind, req.Selector, req.ScopeTag)
	if err != nil {
		uc.logger.Warn("Selector rejected", "kind", req.Kind.String(), "selector", req.Selector.String(), "error", err)
		return nil, fmt.Errorf("compile %s selector: %w", req.Kind, err)
	}
	return &input.CompileResult{XPath: q.XPath(), Residual: q.Residual}, nil
}

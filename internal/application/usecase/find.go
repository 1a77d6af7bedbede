package usecase

import (
	"context"
	"errors"
	"fmt"

	"element-locator/internal/application/port/input"
	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"
	"element-locator/internal/element"
)

var _ input.ElementFinder = (*FindUseCase)(nil)

type FindUseCase struct {
	driver  output.BrowserPort
	browser *element.Browser
	logger  output.LoggerPort
}

func NewFindUseCase(driver output.BrowserPort, cfg entity.LocateConfig, logger output.LoggerPort) *FindUseCase {
	return &FindUseCase{
		driver:  driver,
		browser: element.NewBrowser(driver, element.WithConfig(cfg), element.WithLogger(logger)),
		logger:  logger,
	}
}

func (uc *FindUseCase) Find(ctx context.Context, req input.FindRequest) (*input.FindResult, error) {
	if len(req.Steps) == 0 {
		return nil, errors.New("find: no selector given")
	}

	if req.URL != "" {
		uc.logger.Info("Navigating", "url", req.URL)
		if err := uc.driver.Navigate(ctx, req.URL); err != nil {
			return nil, err
		}
	}

	var scope element.Finder = uc.browser
	for _, step := range req.Steps[:len(req.Steps)-1] {
		scope = scope.Find(step.Kind, step.Selector)
	}
	last := req.Steps[len(req.Steps)-1]

	var handles []*element.Element
	if req.All {
		all, err := scope.FindAll(last.Kind, last.Selector).All(ctx)
		if err != nil {
			return nil, err
		}
		handles = all
	} else {
		el := scope.Find(last.Kind, last.Selector)
		if err := el.WaitForExists(ctx); err != nil {
			return nil, err
		}
		handles = []*element.Element{el}
	}

	result := &input.FindResult{Elements: make([]input.ElementInfo, 0, len(handles))}
	for _, el := range handles {
		info, err := describe(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", el, err)
		}
		result.Elements = append(result.Elements, info)
	}

	uc.logger.Info("Find completed", "url", uc.driver.CurrentURL(), "matches", len(result.Elements))
	return result, nil
}

func describe(ctx context.Context, el *element.Element) (input.ElementInfo, error) {
	sub, err := el.ToSubtype(ctx)
	if err != nil {
		return input.ElementInfo{}, err
	}
	info := input.ElementInfo{Kind: sub.Kind(), Selector: el.SelectorString()}

	if info.TagName, err = el.TagName(ctx); err != nil {
		return info, err
	}
	if info.Text, err = el.Text(ctx); err != nil {
		return info, err
	}
	if info.ID, err = el.AttributeValue(ctx, "id"); err != nil {
		return info, err
	}
	if info.Class, err = el.Attr(ctx, entity.KeyClassName); err != nil {
		return info, err
	}
	if info.Visible, err = el.Visible(ctx); err != nil {
		return info, err
	}
	return info, nil
}

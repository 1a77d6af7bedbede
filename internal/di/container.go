package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"element-locator/internal/application/port/input"
	"element-locator/internal/application/port/output"
	"element-locator/internal/application/usecase"
	"element-locator/internal/domain/entity"
	"element-locator/internal/infrastructure/browser/memory"
	"element-locator/internal/infrastructure/browser/rod"
	"element-locator/internal/infrastructure/env"
	"element-locator/internal/infrastructure/logger"
	"element-locator/internal/locator/selector"
)

const (
	DriverRod    = "rod"
	DriverMemory = "memory"
)

type Container struct {
	Browser  output.BrowserPort
	Logger   output.LoggerPort
	Compiler input.SelectorCompiler
	Finder   input.ElementFinder
	Locate   entity.LocateConfig
}

type Config struct {
	// Driver is DriverRod or DriverMemory. Empty means rod.
	Driver          string
	BrowserHeadless bool
	BrowserTimeout  time.Duration
	Locate          entity.LocateConfig
	LogLevel        string
	LogDir          string
	LogName         string
	// Console receives human readable log lines; nil means stderr.
	Console io.Writer
	// Pages are preloaded into the memory driver by URL.
	Pages map[string]string
}

// ConfigFromEnv reads everything but the driver choice from cfg.
func ConfigFromEnv(cfg output.ConfigPort) Config {
	return Config{
		BrowserHeadless: cfg.GetBool(env.KeyHeadless, true),
		BrowserTimeout:  cfg.GetDuration(env.KeyBrowserTimeout, time.Second, 0),
		Locate:          env.LoadLocateConfig(cfg),
		LogLevel:        cfg.Get(env.KeyLogLevel),
		LogDir:          cfg.Get(env.KeyLogDir),
	}
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	log, err := logger.NewLoggerAdapter(logger.Config{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Name:    cfg.LogName,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browser, err := newBrowser(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	builder := selector.NewBuilder(log)
	return &Container{
		Browser:  browser,
		Logger:   log,
		Compiler: usecase.NewCompileUseCase(builder, log),
		Finder:   usecase.NewFindUseCase(browser, cfg.Locate, log),
		Locate:   cfg.Locate,
	}, nil
}

func newBrowser(ctx context.Context, cfg Config, log output.LoggerPort) (output.BrowserPort, error) {
	switch cfg.Driver {
	case DriverMemory:
		opts := []memory.Option{memory.WithLogger(log)}
		for url, body := range cfg.Pages {
			opts = append(opts, memory.WithPage(url, body))
		}
		return memory.NewDriver(opts...), nil
	case "", DriverRod:
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.BrowserHeadless
		if cfg.BrowserTimeout > 0 {
			browserCfg.Timeout = cfg.BrowserTimeout
		}
		browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		return browser, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

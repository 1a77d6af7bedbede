package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"element-locator/internal/application/port/input"
	"element-locator/internal/application/usecase"
	"element-locator/internal/di"
	"element-locator/internal/infrastructure/env"
	"element-locator/internal/infrastructure/fixtures"
	"element-locator/internal/infrastructure/logger"
	"element-locator/internal/infrastructure/selectorfile"
	"element-locator/internal/locator/selector"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

const fixtureScheme = "fixture://"

func newApp() *cli.App {
	return &cli.App{
		Name:    "locator",
		Usage:   "Compile and run declarative element selectors",
		Version: Version,
		Description: `Selectors are YAML documents:

  kind: text_field
  within:
    selector: {id: signup}
  selector:
    label: First name

Examples:
  locator compile selector.yaml
  locator find --url http://127.0.0.1:8080/pages/forms selector.yaml
  locator --driver memory find --url fixture://forms selector.yaml
  locator serve --addr 127.0.0.1:8080`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "Driver to use (rod, memory)",
				Value:   di.DriverRod,
				EnvVars: []string{"LOCATOR_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{env.KeyLogLevel},
			},
		},
		Commands: []*cli.Command{
			compileCommand,
			findCommand,
			serveCommand,
		},
	}
}

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "Print the XPath and residual filters for a selector file",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "scope-tag",
			Usage: "Tag of the scope element (rows only)",
		},
	},
	Action: func(c *cli.Context) error {
		doc, err := loadDocument(c)
		if err != nil {
			return err
		}

		log, err := logger.NewLoggerAdapter(logger.Config{Level: c.String("log-level"), Console: c.App.ErrWriter})
		if err != nil {
			return err
		}
		defer log.Close()

		uc := usecase.NewCompileUseCase(selector.NewBuilder(log), log)
		res, err := uc.Compile(c.Context, input.CompileRequest{
			Kind:     doc.Kind,
			Selector: doc.Selector,
			ScopeTag: c.String("scope-tag"),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "kind:     %s\n", doc.Kind)
		fmt.Fprintf(c.App.Writer, "xpath:    %s\n", res.XPath)
		fmt.Fprintf(c.App.Writer, "residual: %s\n", selectorfile.Format(res.Residual))
		return nil
	},
}

var findCommand = &cli.Command{
	Name:      "find",
	Usage:     "Open a page and locate the element described by a selector file",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "Page to open; overrides url in the file. fixture://NAME serves a bundled page with the memory driver",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Print every match instead of the first",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Locate timeout; overrides " + env.KeyDefaultTimeout,
		},
	},
	Action: func(c *cli.Context) error {
		doc, err := loadDocument(c)
		if err != nil {
			return err
		}

		cfg := di.ConfigFromEnv(env.NewEnvService())
		cfg.Driver = c.String("driver")
		cfg.Console = c.App.ErrWriter
		cfg.LogName = "find"
		if lvl := c.String("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		if c.IsSet("timeout") {
			cfg.Locate.DefaultTimeout = c.Duration("timeout")
		}
		if cfg.Driver == di.DriverMemory {
			cfg.Pages = fixturePages()
		}

		url := doc.URL
		if c.IsSet("url") {
			url = c.String("url")
		}

		container, err := di.NewContainer(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer container.Close()

		req := input.FindRequest{URL: url, All: c.Bool("all")}
		for _, step := range doc.Chain() {
			req.Steps = append(req.Steps, input.Step{Kind: step.Kind, Selector: step.Selector})
		}

		res, err := container.Finder.Find(c.Context, req)
		if err != nil {
			return err
		}
		for i, el := range res.Elements {
			printElement(c, i, el)
		}
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve the bundled fixture pages over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address",
			Value: "127.0.0.1:8080",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log every request",
		},
	},
	Action: func(c *cli.Context) error {
		log, err := logger.NewLoggerAdapter(logger.Config{Level: c.String("log-level"), Console: c.App.ErrWriter})
		if err != nil {
			return err
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return fixtures.NewServer(log, c.Bool("verbose")).ListenAndServe(ctx, c.String("addr"), func(addr string) {
			fmt.Fprintf(c.App.Writer, "serving %d pages at http://%s\n", len(fixtures.Names()), addr)
		})
	},
}

func loadDocument(c *cli.Context) (*selectorfile.Document, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one selector file, got %d arguments", c.NArg())
	}
	return selectorfile.Load(c.Args().First())
}

func fixturePages() map[string]string {
	pages := make(map[string]string)
	for _, name := range fixtures.Names() {
		if body, err := fixtures.Page(name); err == nil {
			pages[fixtureScheme+name] = body
		}
	}
	return pages
}

func printElement(c *cli.Context, i int, el input.ElementInfo) {
	visibility := "visible"
	if !el.Visible {
		visibility = "hidden"
	}
	fmt.Fprintf(c.App.Writer, "[%d] %s <%s", i, el.Kind, el.TagName)
	if el.ID != "" {
		fmt.Fprintf(c.App.Writer, " id=%q", el.ID)
	}
	if el.Class != "" {
		fmt.Fprintf(c.App.Writer, " class=%q", el.Class)
	}
	fmt.Fprintf(c.App.Writer, "> %s\n", visibility)
	if text := strings.TrimSpace(el.Text); text != "" {
		fmt.Fprintf(c.App.Writer, "    text: %s\n", text)
	}
	fmt.Fprintf(c.App.Writer, "    selector: %s\n", el.Selector)
}

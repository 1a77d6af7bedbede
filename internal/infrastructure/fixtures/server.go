// Package fixtures serves the bundled HTML pages used by tests, the CLI
// and manual checks against a real browser.
package fixtures

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"element-locator/internal/application/port/output"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

//go:embed pages/*.html
var pagesFS embed.FS

// ErrUnknownPage is returned for names without a bundled page.
var ErrUnknownPage = errors.New("unknown fixture page")

// Names lists the bundled pages without extension, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(pagesFS, "pages")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".html"))
	}
	sort.Strings(names)
	return names
}

// Page returns the HTML of a bundled page.
func Page(name string) (string, error) {
	raw, err := pagesFS.ReadFile(path.Join("pages", name+".html"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	return string(raw), nil
}

// URL is the address a page is served at under base.
func URL(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/pages/" + name
}

type Server struct {
	router  chi.Router
	httpLog zerolog.Logger
	logger  output.LoggerPort
	srv     *http.Server
}

func NewServer(logger output.LoggerPort, verbose bool) *Server {
	level := "warn"
	if verbose {
		level = "info"
	}
	httpLog := httplog.NewLogger("fixtures", httplog.Options{
		LogLevel: level,
		Concise:  true,
	})

	s := &Server{httpLog: httpLog, logger: logger}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(httpLog))
	r.Get("/", s.handleIndex)
	r.Get("/pages/{name}", s.handlePage)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until ctx is done, then shuts down gracefully. ready,
// if not nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr().String())
	}
	if s.logger != nil {
		s.logger.Info("fixture server listening", "addr", ln.Addr().String(), "pages", Names())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><body><ul>")
	for _, name := range Names() {
		fmt.Fprintf(&sb, `<li><a href="/pages/%s">%s</a></li>`, name, name)
	}
	sb.WriteString("</ul></body></html>")
	_, _ = w.Write([]byte(sb.String()))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := Page(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// Package cli implements the docportal commands on top of the portal,
// runner and docs packages.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/docportal/internal/config"
	"github.com/studiowebux/docportal/internal/docs"
	"github.com/studiowebux/docportal/internal/history"
	"github.com/studiowebux/docportal/internal/logger"
	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/portal"
	"github.com/studiowebux/docportal/internal/runner"
	"github.com/studiowebux/docportal/internal/session"
	"github.com/studiowebux/docportal/internal/store"
	"github.com/studiowebux/docportal/internal/types"
)

// Options are the global flags shared by every command
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Store      string
}

// App wires configuration, persistence and services for one command run
type App struct {
	Config  *config.Config
	Store   store.Store
	Session *session.Manager
	Portal  *portal.Service
	History *history.Manager
	Runner  *runner.Runner

	In  io.Reader
	Out io.Writer
	Err io.Writer

	closers  []io.Closer
	docCache parser.Cache
}

// Open loads configuration and opens the store and history database
func Open(opts Options) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	if cfg.HistoryEnabled {
		hist, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return nil, err
		}
		app.History = hist
		app.closers = append(app.closers, hist)
	}

	switch {
	case cfg.Store == config.StoreSQLite && app.History != nil:
		app.Store = store.NewSQLiteStore(app.History.DB())
	case cfg.Store == config.StoreSQLite:
		s, err := store.OpenSQLite(config.DatabasePath)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Store = s
		app.closers = append(app.closers, s)
	default:
		s, err := store.Open(cfg.Store, config.StatePath)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Store = s
	}

	app.wire()
	return app, nil
}

// NewApp assembles an App from already opened parts
func NewApp(cfg *config.Config, s store.Store, hist *history.Manager, out io.Writer) *App {
	app := &App{Config: cfg, Store: s, History: hist, In: os.Stdin, Out: out, Err: out}
	app.wire()
	return app
}

func (a *App) wire() {
	a.Session = session.NewManager(a.Store)
	a.Portal = portal.New(a.Config, a.Session)
	a.Runner = &runner.Runner{
		Timeout:     a.Config.RequestTimeout,
		RetryPause:  a.Config.RetryPause,
		Regenerator: a.Portal,
		Session:     a.Session,
		IPEchoURL:   a.Config.IPEchoURL,
	}
	if a.History != nil {
		a.Runner.Recorder = a.History
	}
}

// Close releases the databases opened by Open
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// Source selects the collection and environment to work with
type Source struct {
	File    string
	Env     string
	EnvFile string
}

// Catalog is a parsed collection resolved under one environment
type Catalog struct {
	Document    types.NormalizedDocument
	Environment string
	docs.Result
}

// ReadDocument returns the raw collection YAML. It reads the given file, the
// configured docs_file, or fetches docs_path from the portal.
func (a *App) ReadDocument(ctx context.Context, file string) (string, error) {
	if file == "" {
		file = a.Config.DocsFile
	}
	if file != "" {
		path, err := resolveFilePath(file)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if a.Config.DocsPath != "" {
		if err := a.Config.RequireGraphQL(); err != nil {
			return "", err
		}
		doc, err := a.Portal.FetchDocs(ctx, a.Config.DocsPath)
		if err != nil {
			return "", err
		}
		return doc.Docs, nil
	}

	return "", fmt.Errorf("no documentation source: pass a file or set docs_file / docs_path in %s", config.ConfigFile)
}

// DocumentPath returns the local file a catalog is read from, or "" when the
// collection comes from the portal
func (a *App) DocumentPath(file string) (string, error) {
	if file == "" {
		file = a.Config.DocsFile
	}
	if file == "" {
		return "", nil
	}
	path, err := resolveFilePath(file)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// Catalog loads the collection and extracts endpoints under the selected
// environment
func (a *App) Catalog(ctx context.Context, src Source) (*Catalog, error) {
	text, err := a.ReadDocument(ctx, src.File)
	if err != nil {
		return nil, err
	}
	doc, cached := a.docCache.Normalize(text)
	if cached {
		slog.Debug("collection unchanged, reusing parsed document")
	}

	wanted := src.Env
	if wanted == "" {
		wanted = a.Session.ActiveEnvironment()
	}
	envName := docs.ActiveEnvironment(doc.Envs, wanted)
	if src.Env != "" && envName != src.Env {
		slog.Warn("unknown environment, using default", "requested", src.Env, "using", envName)
	}

	var overrides map[string]any
	if src.EnvFile != "" {
		overrides, err = parser.LoadEnvOverrides(src.EnvFile)
		if err != nil {
			return nil, err
		}
	}

	return &Catalog{
		Document:    doc,
		Environment: envName,
		Result:      docs.Build(doc, envName, overrides),
	}, nil
}

// Endpoint finds an endpoint by id
func (c *Catalog) Endpoint(id string) (types.EndpointData, error) {
	ep, ok := docs.Find(c.Endpoints, id)
	if !ok {
		ids := make([]string, len(c.Endpoints))
		for i, e := range c.Endpoints {
			ids[i] = e.ID
		}
		if matches := fuzzy.Find(id, ids); len(matches) > 0 {
			return types.EndpointData{}, fmt.Errorf("endpoint not found: %s (did you mean %s?)", id, matches[0].Str)
		}
		return types.EndpointData{}, fmt.Errorf("endpoint not found: %s", id)
	}
	return ep, nil
}

// resolveFilePath finds a collection file, trying YAML extensions when the
// exact path does not exist
func resolveFilePath(basePath string) (string, error) {
	extensions := []string{"", ".yaml", ".yml"}

	for _, ext := range extensions {
		candidate := basePath + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if !filepath.IsAbs(basePath) && config.ConfigDir != "" {
		for _, ext := range extensions {
			candidate := filepath.Join(config.ConfigDir, basePath+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("file not found: %s (tried .yaml, .yml extensions)", basePath)
}

// prompt reads one trimmed line after printing label
func (a *App) prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(a.Err, label)
	value, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || value == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

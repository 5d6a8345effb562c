// Package tui is the interactive documentation reader: a navigation sidebar,
// the selected endpoint with its code samples, and try-it-out.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/docportal/internal/cli"
	"github.com/studiowebux/docportal/internal/config"
	"github.com/studiowebux/docportal/internal/keybinds"
	"github.com/studiowebux/docportal/internal/logger"
)

// Options select the collection shown by the reader
type Options struct {
	File    string
	Env     string
	EnvFile string
}

// Run loads the collection and starts the reader
func Run(ctx context.Context, app *cli.App, opts Options) error {
	src := cli.Source{File: opts.File, Env: opts.Env, EnvFile: opts.EnvFile}

	catalog, err := app.Catalog(ctx, src)
	if err != nil {
		return err
	}

	keys, err := keybinds.LoadOrDefault(config.ConfigDir)
	if err != nil {
		return err
	}

	if config.LogFile != "" {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.PrivateFilePermissions)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		if _, err := logger.NewWithWriter(f, app.Config.LogLevel, app.Config.LogFormat); err != nil {
			return err
		}
	}

	m := New(ctx, app, src, catalog, keys)

	path, err := app.DocumentPath(opts.File)
	if err != nil {
		return err
	}
	if path != "" {
		w, err := newWatcher(path)
		if err != nil {
			// Reloading still works with the reload key
			slog.Warn("live reload disabled", "error", err)
		} else {
			m.path = path
			m.watcher = w
			defer w.Close()
		}
	}

	// Pass a pointer since Update uses a pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

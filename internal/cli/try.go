package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/studiowebux/docportal/internal/config"
	"github.com/studiowebux/docportal/internal/executor"
	"github.com/studiowebux/docportal/internal/filter"
	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/runner"
	"github.com/studiowebux/docportal/internal/types"
)

// TryOptions control the try command
type TryOptions struct {
	Source
	ID           string
	Headers      []string // key=value
	QueryParams  []string // key=value
	PathParams   []string // key=value
	BodyOverride string
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(command)
	OutputFormat string // text, json, yaml, body
	ShowFull     bool
	SavePath     string
}

// Try runs an endpoint's request with optional overrides and prints the
// response
func (a *App) Try(ctx context.Context, opts TryOptions) error {
	catalog, err := a.Catalog(ctx, opts.Source)
	if err != nil {
		return err
	}
	ep, err := catalog.Endpoint(opts.ID)
	if err != nil {
		return err
	}

	s := a.NewRequest(catalog, ep)
	if missing := parser.TemplateKeys(s.URL); len(missing) > 0 {
		slog.Warn("unresolved variables in URL", "endpoint", ep.ID, "environment", catalog.Environment, "keys", missing)
	}

	if err := applyPairs(s.Headers, opts.Headers); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	if err := applyPairs(s.QueryParams, opts.QueryParams); err != nil {
		return fmt.Errorf("invalid query parameter: %w", err)
	}
	if err := applyPairs(s.PathParams, opts.PathParams); err != nil {
		return fmt.Errorf("invalid path parameter: %w", err)
	}

	if opts.BodyOverride != "" {
		s.Body = opts.BodyOverride
	} else if a.In == os.Stdin && !isInteractive() {
		if data, err := io.ReadAll(os.Stdin); err == nil && len(data) > 0 {
			s.Body = string(data)
		}
	}

	outcome, err := a.Runner.Execute(ctx, s)
	if err != nil {
		return err
	}

	if (opts.Filter != "" || opts.Query != "") && outcome.Error == "" {
		filtered, err := filter.Apply(ctx, outcome.Body, opts.Filter, opts.Query)
		if err != nil {
			return err
		}
		outcome.Body = filtered
	}

	format := opts.OutputFormat
	if format == "" {
		format = "text"
		if !isInteractive() && opts.SavePath == "" {
			format = "body"
		}
	}

	output, err := formatOutcome(outcome, format, opts.ShowFull)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(a.Err, "Response saved to %s\n", opts.SavePath)
	} else {
		fmt.Fprint(a.Out, output)
	}

	if outcome.IPError != nil {
		return fmt.Errorf("request rejected: %s", outcome.IPError.Message)
	}
	if outcome.Error != "" {
		return fmt.Errorf("request failed: %s", outcome.Error)
	}
	return nil
}

// NewRequest prepares a try-it-out session for an endpoint of the catalog.
// The cached API token is sent unless the endpoint sets its own
// Authorization header.
func (a *App) NewRequest(catalog *Catalog, ep types.EndpointData) *runner.Session {
	s := runner.NewSession(ep)
	s.Environment = catalog.Environment

	if token := a.Session.APIToken(); token != "" && !hasHeader(s.Headers, "Authorization") {
		s.SetBearer(token)
	}
	return s
}

// applyPairs sets key=value pairs into m
func applyPairs(m map[string]string, pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", pair)
		}
		m[key] = value
	}
	return nil
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// formatOutcome renders a try-it-out result
func formatOutcome(outcome *runner.Outcome, format string, showFull bool) (string, error) {
	switch format {
	case "json", "yaml":
		var sb strings.Builder
		if err := encodeTo(&sb, format, outcome); err != nil {
			return "", err
		}
		return sb.String(), nil

	case "body":
		if outcome.Body == "" {
			return "", nil
		}
		return runner.Pretty(outcome.Body) + "\n", nil
	}

	var sb strings.Builder

	if outcome.Status > 0 {
		fmt.Fprintf(&sb, "%s%d %s%s", statusColor(outcome.Status), outcome.Status, outcome.StatusText, colorReset)
		if outcome.Retried {
			fmt.Fprintf(&sb, " %s(retried with a fresh token)%s", colorGray, colorReset)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Duration: %s | Size: %s\n",
		executor.FormatDuration(outcome.DurationMs),
		executor.FormatSize(len(outcome.Body)))

	if showFull {
		fmt.Fprintf(&sb, "URL: %s\n", outcome.URL)
		if len(outcome.Headers) > 0 {
			sb.WriteString("\nHeaders:\n")
			for _, key := range sortedKeys(outcome.Headers) {
				fmt.Fprintf(&sb, "  %s: %s\n", key, outcome.Headers[key])
			}
		}
	}

	if outcome.Body != "" {
		if showFull {
			sb.WriteString("\nBody:")
		}
		sb.WriteString("\n")
		sb.WriteString(runner.Pretty(outcome.Body))
		sb.WriteString("\n")
	}

	if outcome.IPError != nil {
		fmt.Fprintf(&sb, "\n%sIP not whitelisted: %s%s\n", colorRed, outcome.IPError.Message, colorReset)
		if outcome.IPError.PublicIP != "" {
			fmt.Fprintf(&sb, "Your public IP: %s\n", outcome.IPError.PublicIP)
		}
		fmt.Fprintf(&sb, "Hint: %s\n", outcome.IPError.Hint)
	}

	if outcome.Error != "" {
		fmt.Fprintf(&sb, "\n%sError: %s%s\n", colorRed, outcome.Error, colorReset)
	}

	return sb.String(), nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/docportal/internal/codegen"
	"github.com/studiowebux/docportal/internal/docs"
	"github.com/studiowebux/docportal/internal/types"
)

// ListPublished prints the documentation the portal hosts for domain
func (a *App) ListPublished(ctx context.Context, domain, format string) error {
	if err := a.Config.RequireGraphQL(); err != nil {
		return err
	}
	list, err := a.Portal.ListDocs(ctx, domain)
	if err != nil {
		return err
	}

	if format != "" && format != "text" {
		return a.encode(format, list)
	}

	if len(list) == 0 {
		fmt.Fprintln(a.Out, "No documentation published")
		return nil
	}
	for _, d := range list {
		fmt.Fprintf(a.Out, "%-24s %s  %s%s%s\n", d.Path, d.Name, colorGray, d.UpdatedAt, colorReset)
	}
	return nil
}

// ListOptions control the endpoints command
type ListOptions struct {
	Source
	Search string
	Format string // text, json, yaml
}

// ListEndpoints prints the flat endpoint list
func (a *App) ListEndpoints(ctx context.Context, opts ListOptions) error {
	catalog, err := a.Catalog(ctx, opts.Source)
	if err != nil {
		return err
	}

	endpoints := docs.FilterEndpoints(catalog.Endpoints, opts.Search)

	if opts.Format != "" && opts.Format != "text" {
		return a.encode(opts.Format, endpoints)
	}

	if len(endpoints) == 0 {
		fmt.Fprintln(a.Out, "No endpoints found")
		return nil
	}
	for _, ep := range endpoints {
		fmt.Fprintf(a.Out, "%s%-7s%s %-40s %s\n", methodColor(ep.Method), ep.Method, colorReset, ep.ID, ep.URL)
	}

	for _, id := range docs.DuplicateIDs(catalog.Endpoints) {
		fmt.Fprintf(a.Err, "%swarning: endpoint id %q is not unique%s\n", colorYellow, id, colorReset)
	}
	return nil
}

// PrintNav prints the navigation tree
func (a *App) PrintNav(ctx context.Context, src Source, search string) error {
	catalog, err := a.Catalog(ctx, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s%s%s", colorBold, catalog.Document.Title, colorReset)
	if catalog.Environment != "" {
		fmt.Fprintf(a.Out, " (%s)", catalog.Environment)
	}
	fmt.Fprintln(a.Out)

	for _, flat := range docs.Flatten(docs.FilterNav(catalog.Nav, search)) {
		indent := strings.Repeat("  ", flat.Depth+1)
		if flat.Item.IsFolder() {
			fmt.Fprintf(a.Out, "%s%s/\n", indent, flat.Item.Title)
			continue
		}
		fmt.Fprintf(a.Out, "%s%s%s%s %s  %s(%s)%s\n", indent, methodColor(flat.Item.Method), flat.Item.Method, colorReset,
			flat.Item.Title, colorGray, flat.Item.ID, colorReset)
	}
	return nil
}

// ShowEndpoint prints one endpoint as rendered markdown
func (a *App) ShowEndpoint(ctx context.Context, src Source, id string, raw bool) error {
	catalog, err := a.Catalog(ctx, src)
	if err != nil {
		return err
	}
	ep, err := catalog.Endpoint(id)
	if err != nil {
		return err
	}

	md := EndpointMarkdown(ep)
	if raw {
		fmt.Fprint(a.Out, md)
		return nil
	}
	fmt.Fprint(a.Out, RenderMarkdown(md, 80))
	return nil
}

// EndpointMarkdown describes an endpoint as markdown
func EndpointMarkdown(ep types.EndpointData) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", ep.Title)
	fmt.Fprintf(&sb, "`%s %s`\n\n", ep.Method, ep.URL)
	if ep.Description != "" {
		sb.WriteString(strings.TrimSpace(ep.Description))
		sb.WriteString("\n\n")
	}

	writeTable := func(title string, rows [][2]string) {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n| Name | Value |\n| --- | --- |\n", title)
		for _, row := range rows {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", row[0], escapeCell(row[1]))
		}
		sb.WriteString("\n")
	}

	var headers [][2]string
	for _, h := range ep.Headers {
		if !h.Disabled {
			headers = append(headers, [2]string{h.Name, h.Value})
		}
	}
	writeTable("Headers", headers)
	writeTable("Path parameters", paramRows(ep.PathParameters))
	writeTable("Query parameters", paramRows(ep.Parameters))

	if ep.Body != "" {
		lang := ""
		if strings.Contains(ep.BodyMimeType, "json") {
			lang = "json"
		}
		fmt.Fprintf(&sb, "## Body\n\n```%s\n%s\n```\n", lang, strings.TrimSpace(ep.Body))
	}

	return sb.String()
}

func paramRows(params []types.Parameter) [][2]string {
	var rows [][2]string
	for _, p := range params {
		if p.Disabled {
			continue
		}
		value := p.Value
		if p.Description != "" {
			value = strings.TrimSpace(value + " " + p.Description)
		}
		rows = append(rows, [2]string{p.Name, value})
	}
	return rows
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

// RenderMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails
func RenderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// SampleOptions control the samples command
type SampleOptions struct {
	Source
	ID        string
	Languages []string
	Highlight bool
}

// PrintSamples prints code samples for an endpoint
func (a *App) PrintSamples(ctx context.Context, opts SampleOptions) error {
	catalog, err := a.Catalog(ctx, opts.Source)
	if err != nil {
		return err
	}
	ep, err := catalog.Endpoint(opts.ID)
	if err != nil {
		return err
	}

	samples := codegen.Generate(codegen.FromEndpoint(ep))

	langs := codegen.Languages
	if len(opts.Languages) > 0 {
		langs = make([]codegen.Language, 0, len(opts.Languages))
		for _, name := range opts.Languages {
			lang := codegen.Language(name)
			if _, ok := samples.Get(lang); !ok {
				return fmt.Errorf("unknown language: %s", name)
			}
			langs = append(langs, lang)
		}
	}

	for i, lang := range langs {
		sample, _ := samples.Get(lang)
		if len(langs) > 1 {
			if i > 0 {
				fmt.Fprintln(a.Out)
			}
			fmt.Fprintf(a.Out, "%s── %s ──%s\n", colorBold, lang.Canonical().Label(), colorReset)
		}
		if opts.Highlight {
			sample = codegen.Highlight(sample, lang, a.Config.HighlightStyle)
		}
		fmt.Fprintln(a.Out, sample)
	}
	return nil
}

// PrintEnvironments lists the collection's environments, marking the active one
func (a *App) PrintEnvironments(ctx context.Context, src Source) error {
	catalog, err := a.Catalog(ctx, src)
	if err != nil {
		return err
	}

	if len(catalog.Document.Envs) == 0 {
		fmt.Fprintln(a.Out, "No environments defined")
		return nil
	}

	fmt.Fprintf(a.Out, "%s%s%s\n", colorBold, catalog.Document.EnvRootName, colorReset)
	for _, env := range catalog.Document.Envs {
		marker := "  "
		if env.Name == catalog.Environment {
			marker = colorGreen + "* " + colorReset
		}
		keys := make([]string, 0, len(env.Data))
		for k := range env.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(a.Out, "%s%s %s%s%s\n", marker, env.Name, colorGray, strings.Join(keys, ", "), colorReset)
	}
	return nil
}

// UseEnvironment saves the environment used by later commands. An empty name
// opens a picker when stdin is a terminal.
func (a *App) UseEnvironment(ctx context.Context, src Source, name string) error {
	catalog, err := a.Catalog(ctx, src)
	if err != nil {
		return err
	}

	names := catalog.Document.EnvironmentNames()
	if name == "" {
		if !isInteractive() {
			return fmt.Errorf("environment name is required")
		}
		name, err = selectOption("Select environment", names, catalog.Environment)
		if err != nil {
			return err
		}
	}

	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown environment %q (available: %s)", name, strings.Join(names, ", "))
	}

	if err := a.Session.SetActiveEnvironment(name); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Using environment %s\n", name)
	return nil
}

// Lint validates a collection and prints the issues. It fails when any
// error-level issue is found.
func (a *App) Lint(ctx context.Context, file string) error {
	text, err := a.ReadDocument(ctx, file)
	if err != nil {
		return err
	}

	issues := docs.Lint(text)
	if len(issues) == 0 {
		fmt.Fprintf(a.Out, "%sOK%s\n", colorGreen, colorReset)
		return nil
	}

	errCount := 0
	for _, issue := range issues {
		color := colorYellow
		if issue.Severity == docs.SeverityError {
			color = colorRed
			errCount++
		}
		fmt.Fprintf(a.Out, "%s%s%s\n", color, issue, colorReset)
	}
	if errCount > 0 {
		return fmt.Errorf("%d error(s) found", errCount)
	}
	return nil
}

// encode writes v as JSON or YAML
func (a *App) encode(format string, v any) error {
	return encodeTo(a.Out, format, v)
}

func encodeTo(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
		return nil
	}
	return fmt.Errorf("unknown output format: %s", format)
}

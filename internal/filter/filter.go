// Package filter narrows try-it-out response bodies with JMESPath
// expressions or an external shell command.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
)

// ShellTimeout bounds a $(command) query
const ShellTimeout = 30 * time.Second

// $(command)
var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Apply runs filter and then query against a JSON body. filter narrows the
// document (items[?active]); query selects from what is left ([].name). A
// query written as $(command) is run by sh with the body on stdin.
func Apply(ctx context.Context, body, filter, query string) (string, error) {
	result := body

	if filter != "" {
		filtered, err := Search(result, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		result = filtered
	}

	if query == "" {
		return result, nil
	}

	if matches := shellPattern.FindStringSubmatch(query); len(matches) > 1 {
		out, err := runShell(ctx, result, matches[1])
		if err != nil {
			return "", fmt.Errorf("failed to run query command: %w", err)
		}
		return out, nil
	}

	queried, err := Search(result, query)
	if err != nil {
		return "", fmt.Errorf("failed to apply query: %w", err)
	}
	return queried, nil
}

// Search evaluates a JMESPath expression against a JSON document and
// returns the indented JSON result
func Search(body, expression string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := SearchData(data, expression)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "null", nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

// SearchData evaluates a JMESPath expression against decoded JSON
func SearchData(data any, expression string) (any, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	result, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return result, nil
}

func runShell(ctx context.Context, body, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("command '%s' failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsValid reports whether expression compiles as JMESPath
func IsValid(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand reports whether query has the $(command) form
func IsShellCommand(query string) bool {
	return shellPattern.MatchString(query)
}

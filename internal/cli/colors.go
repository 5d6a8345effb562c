package cli

import (
	"sort"
	"strings"

	"github.com/studiowebux/docportal/internal/executor"
)

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

func statusColor(status int) string {
	switch {
	case executor.IsSuccessStatus(status):
		return colorGreen
	case executor.IsClientErrorStatus(status), executor.IsServerErrorStatus(status):
		return colorRed
	}
	return colorYellow
}

func methodColor(method string) string {
	switch strings.ToUpper(method) {
	case "GET":
		return colorGreen
	case "POST":
		return colorBlue
	case "PUT", "PATCH":
		return colorYellow
	case "DELETE":
		return colorRed
	}
	return colorCyan
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

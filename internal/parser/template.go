package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Template placeholder pattern: {{ _.key }}
	templatePattern = regexp.MustCompile(`\{\{\s*_\.\s*([^{}]+?)\s*\}\}`)
)

// ResolveTemplate replaces {{ _.key }} placeholders with values from vars.
// Placeholders whose key is absent are left untouched so they stay visible.
// Substituted values are not scanned again.
func ResolveTemplate(text string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}

	return templatePattern.ReplaceAllStringFunc(text, func(match string) string {
		key := templateKey(match)
		value, ok := vars[key]
		if !ok {
			return match
		}
		return Stringify(value)
	})
}

// ResolveValue resolves placeholders in string values and returns any other
// value unchanged
func ResolveValue(value any, vars map[string]any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return ResolveTemplate(s, vars)
}

// TemplateKeys extracts all unique placeholder keys from a string, in order
func TemplateKeys(text string) []string {
	matches := templatePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var keys []string
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		key := strings.TrimSpace(match[1])
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// UnresolvedKeys returns the placeholder keys of text that vars cannot satisfy
func UnresolvedKeys(text string, vars map[string]any) []string {
	var missing []string
	for _, key := range TemplateKeys(text) {
		if _, ok := vars[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Stringify converts an environment value to the text substituted in templates
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func templateKey(match string) string {
	sub := templatePattern.FindStringSubmatch(match)
	if len(sub) < 2 {
		return ""
	}
	return strings.TrimSpace(sub[1])
}

package codegen

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultStyle is the chroma style used for terminal output
const DefaultStyle = "monokai"

// Lexer returns the chroma lexer name for the language
func (l Language) Lexer() string {
	switch l.Canonical() {
	case Curl:
		return "bash"
	case JavaScript, JavaScriptAxios:
		return "javascript"
	case TypeScript, TypeScriptAxios:
		return "typescript"
	case Python:
		return "python"
	case CSharp:
		return "csharp"
	case Go:
		return "go"
	case Java:
		return "java"
	case PHP:
		return "php"
	case Ruby:
		return "ruby"
	case Swift:
		return "swift"
	}
	return "plaintext"
}

// Highlight colours a sample for a 256-colour terminal. It falls back to the
// plain text when chroma cannot render it.
func Highlight(sample string, lang Language, style string) string {
	if style == "" {
		style = DefaultStyle
	}
	var sb strings.Builder
	if err := quick.Highlight(&sb, sample, lang.Lexer(), "terminal256", style); err != nil {
		return sample
	}
	return sb.String()
}

package docs

import (
	"github.com/studiowebux/docportal/internal/parser"
	"github.com/studiowebux/docportal/internal/types"
)

// ActiveEnvironment picks the environment to use: the stored name when it is
// still available, otherwise the first environment, otherwise "".
func ActiveEnvironment(envs []types.Environment, stored string) string {
	for _, env := range envs {
		if env.Name == stored {
			return stored
		}
	}
	if len(envs) > 0 {
		return envs[0].Name
	}
	return ""
}

// EnvironmentData returns the variables of the named environment layered over
// the document's base data. Unknown names yield the base data alone.
func EnvironmentData(doc types.NormalizedDocument, name string) map[string]any {
	for _, env := range doc.Envs {
		if env.Name == name {
			return parser.MergeData(doc.BaseData, env.Data)
		}
	}
	return parser.MergeData(doc.BaseData)
}

// Build extracts endpoints and navigation for a document under an environment
func Build(doc types.NormalizedDocument, envName string, overrides map[string]any) Result {
	data := EnvironmentData(doc, envName)
	if len(overrides) > 0 {
		data = parser.MergeData(data, overrides)
	}
	return Extract(Root(doc.Sections), data)
}

package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LoadEnvOverrides loads variable overrides from a file.
// .json and .jsonc files may contain comments and trailing commas,
// .yaml/.yml files hold a flat mapping, anything else is read as a dotenv file.
func LoadEnvOverrides(path string) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext != ".json" && ext != ".jsonc" && ext != ".yaml" && ext != ".yml" {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		overrides := make(map[string]any, len(values))
		for k, v := range values {
			overrides[k] = v
		}
		return overrides, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	overrides := make(map[string]any)
	switch ext {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
		}
	}

	return overrides, nil
}

// MergeData returns a new mapping holding base overlaid with each layer in order
func MergeData(base map[string]any, layers ...map[string]any) map[string]any {
	merged := make(map[string]any, len(base))
	for k, v := range base {
		merged[k] = v
	}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

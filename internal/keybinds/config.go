package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding overrides. Each section maps an
// action to a comma separated key list.
type Config struct {
	Global map[string]string `json:"global,omitempty"`
	Normal map[string]string `json:"normal,omitempty"`
	Input  map[string]string `json:"input,omitempty"`
	Search map[string]string `json:"search,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal: c.Global,
		ContextNormal: c.Normal,
		ContextInput:  c.Input,
		ContextSearch: c.Search,
	}
}

// ParseConfig parses JSON with comments and trailing commas.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds format: %w", err)
	}
	return &config, nil
}

// LoadConfig loads keybinding configuration from a JSONC file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// SplitKeys splits a comma separated key list. A lone "," is the comma key.
func SplitKeys(list string) []string {
	if strings.TrimSpace(list) == "," {
		return []string{","}
	}
	var keys []string
	for _, key := range strings.Split(list, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// ApplyConfig applies user configuration to a registry.
// Listed actions lose their default keys in that context.
func ApplyConfig(registry *Registry, config *Config) {
	for context, section := range config.sections() {
		for actionStr, keys := range section {
			action := Action(actionStr)
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, SplitKeys(keys), action)
		}
	}
}

// LoadOrDefault returns the default registry with the file at configPath
// applied over it. A missing file is not an error. Validation warnings are
// returned alongside the registry; errors prevent loading.
func LoadOrDefault(configPath string) (*Registry, *ValidationResult, error) {
	registry := NewDefaultRegistry()

	config, err := LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return registry, &ValidationResult{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}

	result := NewValidator().ValidateConfig(config)
	if result.HasErrors() {
		return nil, result, fmt.Errorf("invalid keybinds in %s:\n%s", configPath, result.String())
	}

	ApplyConfig(registry, config)
	return registry, result, nil
}

package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys are keys that should not be rebound, with their action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateConfig validates a configuration before applying it
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{}

	sections := config.sections()
	contexts := make([]Context, 0, len(sections))
	for ctx := range sections {
		contexts = append(contexts, ctx)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i] < contexts[j] })

	for _, context := range contexts {
		section := sections[context]

		actions := make([]string, 0, len(section))
		for a := range section {
			actions = append(actions, a)
		}
		sort.Strings(actions)

		owner := make(map[string]Action)
		for _, actionStr := range actions {
			action := Action(actionStr)
			if err := ValidateAction(action); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Type: "invalid", Context: context, Key: section[actionStr], Message: err.Error(),
				})
				continue
			}

			keys := SplitKeys(section[actionStr])
			if len(keys) == 0 {
				result.Warnings = append(result.Warnings, ValidationError{
					Type: "warning", Context: context, Message: fmt.Sprintf("action %s left unbound", action),
				})
			}

			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					result.Errors = append(result.Errors, ValidationError{
						Type: "invalid", Context: context, Key: key, Message: err.Error(),
					})
					continue
				}
				if prev, dup := owner[key]; dup {
					result.Errors = append(result.Errors, ValidationError{
						Type: "conflict", Context: context, Key: key,
						Message: fmt.Sprintf("bound to both %s and %s", prev, action),
					})
					continue
				}
				owner[key] = action

				if reserved, ok := v.reservedKeys[key]; ok && reserved != action {
					result.Warnings = append(result.Warnings, ValidationError{
						Type: "warning", Context: context, Key: key,
						Message: "reserved key rebound (may cause issues)",
					})
				}
			}
		}
	}

	return result
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	if strings.Contains(key, " ") {
		return fmt.Errorf("key cannot contain spaces: %q", key)
	}

	return nil
}

// ValidateAction checks that action is one the browser handles
func ValidateAction(action Action) error {
	if action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !KnownActions[action] {
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mergington-activities/internal/common/validation"

	"gopkg.in/yaml.v3"
)

// LoadRegistry reads a seed document. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var reg ActivityRegistry
	if isYAML(path) {
		err = yaml.Unmarshal(data, &reg)
	} else {
		err = json.Unmarshal(data, &reg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes the document in the format implied by the extension.
func SaveRegistry(path string, reg *ActivityRegistry) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(reg)
	} else {
		data, err = json.MarshalIndent(reg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the document against the seed schema and rejects
// duplicate activity names.
func Validate(reg *ActivityRegistry) (*validation.ValidationResult, error) {
	result, err := validation.ValidateDocument(reg, documentSchema)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(reg.Activities))
	for i, a := range reg.Activities {
		if a.Name == "" {
			continue
		}
		if seen[a.Name] {
			result.Valid = false
			result.Errors = append(result.Errors, validation.ValidationError{
				Field:   fmt.Sprintf("activities.%d.name", i),
				Message: fmt.Sprintf("duplicate activity name %q", a.Name),
				Code:    "duplicate_name",
			})
		}
		seen[a.Name] = true
	}
	return result, nil
}

// Load returns the seed at path, or the built-in catalogue when path is
// empty. The result is always validated.
func Load(path string) (*ActivityRegistry, error) {
	reg := DefaultRegistry()
	if path != "" {
		var err error
		if reg, err = LoadRegistry(path); err != nil {
			return nil, err
		}
	}

	result, err := Validate(reg)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid activity registry: %s", result.Error())
	}
	return reg, nil
}

// LoadOrDefault is Load, except that a seed file which does not exist yields
// the built-in catalogue. fellBack reports whether that happened. Unreadable
// or invalid files are still errors.
func LoadOrDefault(path string) (reg *ActivityRegistry, fellBack bool, err error) {
	reg, err = Load(path)
	if err != nil && path != "" && errors.Is(err, fs.ErrNotExist) {
		reg, err = Load("")
		return reg, err == nil, err
	}
	return reg, false, err
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

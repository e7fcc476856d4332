package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryMap translates marketplace category names into the English
// names used in reports. Lookups for unmapped categories return the
// original name unchanged.
type CategoryMap struct {
	entries map[string]string
}

type categoryMapFile struct {
	Categories map[string]string `yaml:"categories"`
}

// LoadCategoryMap reads the category translation table from a YAML file.
func LoadCategoryMap(path string) (*CategoryMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read category map: %w", err)
	}

	var file categoryMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse category map: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("config: category map %s has no entries", path)
	}

	return &CategoryMap{entries: file.Categories}, nil
}

// NewCategoryMap builds a map from an in-memory table. Used by tests
// and as a fallback when no YAML file is configured.
func NewCategoryMap(entries map[string]string) *CategoryMap {
	if entries == nil {
		entries = map[string]string{}
	}
	return &CategoryMap{entries: entries}
}

// Translate returns the English display name for a marketplace category,
// or the original name when no translation is known.
func (m *CategoryMap) Translate(name string) string {
	if en, ok := m.entries[name]; ok {
		return en
	}
	return name
}

// Size returns the number of translation entries.
func (m *CategoryMap) Size() int {
	return len(m.entries)
}

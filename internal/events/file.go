package events

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/concordia/internal/model"
)

// registryFile is the on-disk shape of a registry: a top-level "events" list
type registryFile struct {
	Events []fileEvent `yaml:"events" toml:"events"`
}

type fileEvent struct {
	ID          string   `yaml:"event_id" toml:"event_id"`
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description" toml:"description"`
	Keywords    []string `yaml:"keywords" toml:"keywords"`
}

// LoadFile reads a registry from a YAML (.yaml/.yml) or TOML (.toml) file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}

	var file registryFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse events file %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse events file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported events file extension %q (supported: .yaml, .yml, .toml)", filepath.Ext(path))
	}

	evts := make([]model.Event, 0, len(file.Events))
	for _, e := range file.Events {
		evts = append(evts, model.Event{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Keywords:    e.Keywords,
		})
	}

	r, err := NewRegistry(evts)
	if err != nil {
		return nil, fmt.Errorf("events file %s: %w", path, err)
	}
	return r, nil
}

// Load returns the registry from path, or the builtin registry when path is empty
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

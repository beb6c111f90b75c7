package uischema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/condition"
)

type documentFile struct {
	Forms map[string]formFile `yaml:"forms"`
}

type formFile struct {
	Form   FormConfig             `yaml:"form"`
	Fields map[string]FieldConfig `yaml:"fields"`
}

// LoadFS walks fsys and parses every YAML (or JSON) layout document. A nil
// filesystem yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Layout)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isLayoutFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.Forms {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("uischema: duplicate form %q (file %s)", id, path)
			}
			layout, err := normaliseLayout(raw, id, path)
			if err != nil {
				return err
			}
			store.forms[id] = layout
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Layout returns the layout registered under id.
func (s *Store) Layout(id string) (Layout, bool) {
	if s == nil {
		return Layout{}, false
	}
	layout, ok := s.forms[id]
	return layout, ok
}

// Empty reports whether the store holds any layouts.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if strings.TrimSpace(string(data)) == "" {
		return doc, fmt.Errorf("uischema: file %s is empty", source)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("uischema: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseLayout(raw formFile, id, source string) (Layout, error) {
	layout := Layout{
		ID:     id,
		Source: source,
		Form:   raw.Form,
		Fields: make(map[string]FieldConfig, len(raw.Fields)),
	}
	for key, cfg := range raw.Fields {
		path := strings.TrimSpace(key)
		if path == "" {
			return Layout{}, fmt.Errorf("uischema: form %q (file %s) has an empty field key", id, source)
		}
		if _, err := condition.Compile(cfg.DisabledWhen); err != nil {
			return Layout{}, fmt.Errorf("uischema: form %q (file %s) field %q: %w", id, source, path, err)
		}
		layout.Fields[path] = cfg
	}
	for i, action := range layout.Form.Actions {
		if strings.TrimSpace(action.Name) == "" {
			return Layout{}, fmt.Errorf("uischema: form %q (file %s) action %d has no name", id, source, i)
		}
	}
	return layout, nil
}

func isLayoutFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

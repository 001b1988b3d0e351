package main

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Embedded default templates, one per content type. They are written into
// the project's templates/ directory on first run and can be edited there.
//
//go:embed defaults/templates/*.md
var defaultTemplates embed.FS

// errMissingTemplate is returned when a content type has no template file.
var errMissingTemplate = errors.New("missing template")

// templateStore maps content types to body templates on disk.
type templateStore struct {
	dir string
}

func newTemplateStore(dir string) *templateStore {
	return &templateStore{dir: dir}
}

// Lookup returns the raw template text for a content type.
func (s *templateStore) Lookup(contentType string) (string, error) {
	path := filepath.Join(s.dir, contentType+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errMissingTemplate, contentType)
		}
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}

// ensureTemplates writes the embedded defaults for any content type whose
// template file is missing.
func ensureTemplates(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating templates directory: %w", err)
	}
	for _, ct := range ContentTypes {
		path := filepath.Join(dir, ct+".md")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := defaultTemplates.ReadFile("defaults/templates/" + ct + ".md")
		if err != nil {
			return fmt.Errorf("embedded template for %s: %w", ct, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing default template %s: %w", path, err)
		}
	}
	return nil
}

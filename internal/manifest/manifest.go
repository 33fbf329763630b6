// Package manifest reads YAML change lists and registers them with a changeset.
//
// A manifest looks like:
//
//	changes:
//	  - path: src/main.go
//	    from: proposed/main.go
//	  - path: README.md
//	    content: |
//	      # hello
//	  - path: old.txt
//	    delete: true
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/fileops"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Entry describes one proposed mutation
type Entry struct {
	Path    string  `yaml:"path"`
	Content *string `yaml:"content,omitempty"`
	From    string  `yaml:"from,omitempty"`
	Delete  bool    `yaml:"delete,omitempty"`
	Kind    string  `yaml:"kind,omitempty"`
}

// Manifest is a list of proposed mutations
type Manifest struct {
	Changes []Entry `yaml:"changes"`

	// dir resolves relative "from" paths
	dir string
}

// Registrar receives the changes of a manifest
type Registrar interface {
	AddFileChange(path, newContent string) error
	AddFileChangeAs(path, newContent string, kind diff.ChangeKind) error
	AddFileDeletion(path string) error
}

// Load reads and validates the manifest at path
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest document
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	for i, e := range m.Changes {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("change %d: %w", i+1, err)
		}
	}
	return m, nil
}

func (e Entry) validate() error {
	if e.Path == "" {
		return errors.New("path is required")
	}

	sources := 0
	if e.Content != nil {
		sources++
	}
	if e.From != "" {
		sources++
	}
	if e.deletes() {
		if sources > 0 {
			return fmt.Errorf("%s: a deletion cannot carry content", e.Path)
		}
		return nil
	}
	if sources != 1 {
		return fmt.Errorf("%s: exactly one of content or from is required", e.Path)
	}

	switch diff.ChangeKind(e.Kind) {
	case "", diff.Create, diff.Modify:
		return nil
	default:
		return fmt.Errorf("%s: unknown kind %q", e.Path, e.Kind)
	}
}

func (e Entry) deletes() bool {
	return e.Delete || diff.ChangeKind(e.Kind) == diff.Delete
}

// Register hands every entry to r in manifest order. Content named by "from"
// is read from fs relative to the manifest's directory. Registration stops at
// the first failing entry.
func (m *Manifest) Register(fs afero.Fs, r Registrar) error {
	for _, e := range m.Changes {
		if err := m.register(fs, r, e); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.Path, err)
		}
	}
	return nil
}

func (m *Manifest) register(fs afero.Fs, r Registrar, e Entry) error {
	if e.deletes() {
		return r.AddFileDeletion(e.Path)
	}

	content, err := m.content(fs, e)
	if err != nil {
		return err
	}
	if e.Kind == "" {
		return r.AddFileChange(e.Path, content)
	}
	return r.AddFileChangeAs(e.Path, content, diff.ChangeKind(e.Kind))
}

func (m *Manifest) content(fs afero.Fs, e Entry) (string, error) {
	if e.Content != nil {
		return *e.Content, nil
	}
	from := e.From
	if !filepath.IsAbs(from) && m.dir != "" {
		from = filepath.Join(m.dir, from)
	}
	if fileops.Exists(fs, from) && !fileops.IsFile(fs, from) {
		return "", fmt.Errorf("%s is not a regular file", from)
	}
	data, err := afero.ReadFile(fs, from)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", from, err)
	}
	return string(data), nil
}

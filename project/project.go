// Package project reads and writes stage project files and watches program text for hot swap
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/spritestage/component"
)

var (
	ErrProgramConflict = errors.New("project sets both program and program_file")
	ErrEmptyActorID    = errors.New("actor without id")
)

// File is the on-disk project document
type File struct {
	Name        string             `yaml:"name,omitempty"`
	Program     string             `yaml:"program,omitempty"`
	ProgramFile string             `yaml:"program_file,omitempty"`
	Actors      []component.Record `yaml:"actors"`
}

// Project is a loaded project with its program text resolved
type Project struct {
	Path    string
	File    File
	Program string
}

// Load reads a project file and resolves program_file relative to it
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes project YAML; path anchors relative program files
func Parse(path string, data []byte) (*Project, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	for i, r := range f.Actors {
		if r.ID == "" {
			return nil, fmt.Errorf("actor %d: %w", i, ErrEmptyActorID)
		}
	}

	p := &Project{Path: path, File: f}
	switch {
	case f.Program != "" && f.ProgramFile != "":
		return nil, ErrProgramConflict
	case f.ProgramFile != "":
		text, err := os.ReadFile(p.ProgramPath())
		if err != nil {
			return nil, fmt.Errorf("read program: %w", err)
		}
		p.Program = string(text)
	default:
		p.Program = f.Program
	}
	return p, nil
}

// ProgramPath returns the absolute-or-relative path of the external program, "" when inline
func (p *Project) ProgramPath() string {
	if p.File.ProgramFile == "" {
		return ""
	}
	if filepath.IsAbs(p.File.ProgramFile) {
		return p.File.ProgramFile
	}
	return filepath.Join(filepath.Dir(p.Path), p.File.ProgramFile)
}

// Actors converts the records, applying defaults
func (p *Project) Actors() []component.Actor {
	out := make([]component.Actor, 0, len(p.File.Actors))
	for _, r := range p.File.Actors {
		out = append(out, r.Actor())
	}
	return out
}

// Save writes the project with actors replaced by the given list
// The program stays where it was: inline text or the external file reference
func (p *Project) Save(actors []component.Actor) error {
	f := p.File
	f.Actors = make([]component.Record, len(actors))
	for i, a := range actors {
		f.Actors[i] = component.RecordOf(a)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	p.File = f
	return nil
}

package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// Format is a project file encoding.
type Format string

// Supported project file formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported project file extension %q", filepath.Ext(path))
	}
}

// =============================================================================
// Project Serialization API
// =============================================================================

// ReadProjectFile reads a project from a JSON, TOML or YAML file. The format
// is chosen by extension. A missing name defaults to the file's base name.
func ReadProjectFile(path string) (*Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	p, err := UnmarshalProject(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ReadProject decodes a project in the given format from r.
func ReadProject(r io.Reader, format Format) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalProject(data, format)
}

// UnmarshalProject decodes a project from bytes.
func UnmarshalProject(data []byte, format Format) (*Project, error) {
	var p Project
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	case FormatTOML:
		err = toml.Unmarshal(data, &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode %s", format)
	}
	return &p, nil
}

// MarshalProject encodes a project. JSON output is indented.
func MarshalProject(p *Project, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteProject(p, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteProject encodes a project to w.
func WriteProject(p *Project, w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(p)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(p)
		if err == nil {
			err = enc.Close()
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteProjectFile writes a project to path in the format implied by its
// extension. The file is created with 0644 permissions.
func WriteProjectFile(p *Project, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteProject(p, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

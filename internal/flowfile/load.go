package flowfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gosimple/slug"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a flow file from fs.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Loaded flow %q from %s (%d steps)", f.Title, path, len(f.Steps))
	return f, nil
}

// Parse decodes a flow definition. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("flow file is empty")
		}
		return nil, fmt.Errorf("failed to parse flow file: %w", err)
	}
	return &f, nil
}

// Session returns the journal session name derived from the title.
func (f *File) Session() string {
	if s := slug.Make(f.Title); s != "" {
		return s
	}
	return "flow"
}

// LoadValues reads a YAML mapping of answers, as used by --values.
func LoadValues(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file: %w", err)
	}
	return values, nil
}

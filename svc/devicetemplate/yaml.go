package devicetemplate

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadYAML decodes and validates a template seed document.
func LoadYAML(r io.Reader) ([]Template, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrDecode, err)
	}

	for _, t := range f.Templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Templates, nil
}

// LoadYAMLFile reads a template seed file from path.
func LoadYAMLFile(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	defer f.Close()
	return LoadYAML(f)
}

package schema

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// overrideFile is the YAML shape accepted by LoadOverrides.
type overrideFile struct {
	Fields []FieldSpec `yaml:"fields"`
}

// LoadOverrides reads a YAML file of prompt-hint overrides and applies them
// to the default schema. Overrides may only change hints for fields the
// default schema already declares; the field set itself is fixed.
func LoadOverrides(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read overrides %s", path)
	}

	var of overrideFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return nil, eris.Wrapf(err, "schema: parse overrides %s", path)
	}

	base := Default()
	hints := make(map[string]string, len(of.Fields))
	for _, f := range of.Fields {
		if !base.Has(f.Name) {
			return nil, eris.Errorf("schema: override for unknown field %q", f.Name)
		}
		if f.PromptHint == "" {
			return nil, eris.Errorf("schema: override for %q has empty prompt_hint", f.Name)
		}
		hints[f.Name] = f.PromptHint
	}

	fields := make([]FieldSpec, 0, base.Len())
	for _, f := range base.Fields() {
		if h, ok := hints[f.Name]; ok {
			f.PromptHint = h
		}
		fields = append(fields, f)
	}
	return New(fields)
}

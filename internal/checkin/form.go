// Package checkin defines check-in form schemas and validates them and
// guest submissions locally.
package checkin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
)

// FieldTypes lists every supported field type.
var FieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldNumber,
	FieldDate, FieldSelect, FieldCheckbox, FieldFile,
}

// Form is a property check-in form.
type Form struct {
	ID          string    `yaml:"id,omitempty"          json:"id,omitempty"`
	Name        string    `yaml:"name"                  json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	PropertyIDs []string  `yaml:"propertyIds,omitempty" json:"propertyIds,omitempty"`
	IsActive    bool      `yaml:"isActive"              json:"isActive"`
	Sections    []Section `yaml:"sections"              json:"sections"`
	CreatedAt   time.Time `yaml:"-"                     json:"createdAt,omitempty"`
}

// Section groups related fields.
type Section struct {
	ID          string  `yaml:"id"                    json:"id"`
	Title       string  `yaml:"title"                 json:"title"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []Field `yaml:"fields"                json:"fields"`
}

// Field is a single form input.
type Field struct {
	ID          string    `yaml:"id"                    json:"id"`
	Label       string    `yaml:"label"                 json:"label"`
	Type        FieldType `yaml:"type"                  json:"type"`
	Required    bool      `yaml:"required,omitempty"    json:"required,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Options     []string  `yaml:"options,omitempty"     json:"options,omitempty"`
	Min         *float64  `yaml:"min,omitempty"         json:"min,omitempty"`
	Max         *float64  `yaml:"max,omitempty"         json:"max,omitempty"`
	Pattern     string    `yaml:"pattern,omitempty"     json:"pattern,omitempty"`
}

// Fields returns every field of the form in section order.
func (f Form) Fields() []Field {
	var out []Field
	for _, s := range f.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

// FieldCount returns the number of fields across all sections.
func (f Form) FieldCount() int {
	n := 0
	for _, s := range f.Sections {
		n += len(s.Fields)
	}
	return n
}

// Load reads a form definition from a YAML or JSON file.
func Load(path string) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("read form: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a form definition. ext selects the codec; ".json" is JSON,
// anything else is treated as YAML.
func Parse(data []byte, ext string) (Form, error) {
	var f Form
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return Form{}, fmt.Errorf("parse form json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Form{}, fmt.Errorf("parse form yaml: %w", err)
		}
	}
	return f, nil
}

// Marshal encodes the form as YAML.
func Marshal(f Form) ([]byte, error) {
	return yaml.Marshal(f)
}

// Check returns the joined structural errors of f, or nil.
func Check(f Form) error {
	errs := Validate(&f)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid form: %w", errors.Join(errs...))
}

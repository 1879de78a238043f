package checkin

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Validate checks the form for structural correctness.
func Validate(f *Form) []error {
	var errs []error

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if len(f.Sections) == 0 {
		errs = append(errs, fmt.Errorf("form must define at least one section"))
	}

	sectionIDs := make(map[string]struct{})
	fieldIDs := make(map[string]string)
	for i, s := range f.Sections {
		label := s.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Errorf("section %s: id is required", label))
		} else if _, dup := sectionIDs[s.ID]; dup {
			errs = append(errs, fmt.Errorf("section %q: duplicate id", s.ID))
		}
		sectionIDs[s.ID] = struct{}{}

		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, fmt.Errorf("section %s: title is required", label))
		}
		if len(s.Fields) == 0 {
			errs = append(errs, fmt.Errorf("section %s: at least one field is required", label))
		}

		for _, field := range s.Fields {
			errs = append(errs, validateField(label, field, fieldIDs)...)
		}
	}

	return errs
}

func validateField(section string, field Field, seen map[string]string) []error {
	var errs []error
	name := field.ID
	if name == "" {
		return []error{fmt.Errorf("section %s: field %q has no id", section, field.Label)}
	}
	if prev, dup := seen[name]; dup {
		errs = append(errs, fmt.Errorf("field %q: duplicate id (also in section %s)", name, prev))
	}
	seen[name] = section

	if strings.TrimSpace(field.Label) == "" {
		errs = append(errs, fmt.Errorf("field %q: label is required", name))
	}

	switch field.Type {
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldDate, FieldCheckbox, FieldFile:
	case FieldNumber:
		if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
			errs = append(errs, fmt.Errorf("field %q: min %v is greater than max %v", name, *field.Min, *field.Max))
		}
	case FieldSelect:
		if len(field.Options) == 0 {
			errs = append(errs, fmt.Errorf("field %q (select): options are required", name))
		}
	case "":
		errs = append(errs, fmt.Errorf("field %q: type is required", name))
	default:
		errs = append(errs, fmt.Errorf("field %q: unknown type %q", name, field.Type))
	}

	if field.Pattern != "" {
		if _, err := regexp.Compile(field.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("field %q: invalid pattern: %v", name, err))
		}
	}
	return errs
}

// FieldErrors maps field ids to an inline error message.
type FieldErrors map[string]string

// Keys returns the failing field ids in sorted order.
func (fe FieldErrors) Keys() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// ValidateSubmission checks guest answers against the form. It is purely
// local and never talks to the gateway. Unknown answer keys are ignored.
func ValidateSubmission(f Form, values map[string]string) FieldErrors {
	errs := FieldErrors{}
	for _, field := range f.Fields() {
		raw := strings.TrimSpace(values[field.ID])
		if raw == "" {
			if field.Required {
				errs[field.ID] = field.Label + " is required"
			}
			continue
		}
		if msg := checkValue(field, raw); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}

func checkValue(field Field, raw string) string {
	switch field.Type {
	case FieldEmail:
		addr, err := mail.ParseAddress(raw)
		if err != nil || addr.Address != raw {
			return "Enter a valid email address"
		}
	case FieldPhone:
		if !phonePattern.MatchString(raw) {
			return "Enter a valid phone number"
		}
	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "Enter a number"
		}
		if field.Min != nil && n < *field.Min {
			return fmt.Sprintf("Must be at least %v", *field.Min)
		}
		if field.Max != nil && n > *field.Max {
			return fmt.Sprintf("Must be at most %v", *field.Max)
		}
	case FieldDate:
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			return "Enter a date as YYYY-MM-DD"
		}
	case FieldSelect:
		if !slices.Contains(field.Options, raw) {
			return "Choose one of: " + strings.Join(field.Options, ", ")
		}
	case FieldCheckbox:
		checked, err := strconv.ParseBool(raw)
		if err != nil {
			return "Must be true or false"
		}
		if field.Required && !checked {
			return field.Label + " must be accepted"
		}
	}

	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err == nil && !re.MatchString(raw) {
			return field.Label + " has an invalid format"
		}
	}
	return ""
}

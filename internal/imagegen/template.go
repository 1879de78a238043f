// Package imagegen resolves image template types to the form each one needs
// and builds generate requests from user-supplied data.
package imagegen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"crmadmin/internal/model"
)

// TemplateType identifies an image template on the gateway.
type TemplateType string

const (
	QuoteSwipe      TemplateType = "quote_swipe"
	EventPromo      TemplateType = "event_promo"
	PropertyListing TemplateType = "property_listing"
	StoryHighlight  TemplateType = "story_highlight"
	TeamMember      TemplateType = "team_member"
)

// ErrUnsupportedTemplate is returned when building a request for a template
// type that has no registered form.
var ErrUnsupportedTemplate = errors.New("unsupported template type")

// Template describes the data a template accepts.
type Template struct {
	Type        TemplateType
	Title       string
	Required    []string
	Optional    []string
	Entity      model.EntityType
	Unsupported bool
}

var registry = map[TemplateType]Template{
	QuoteSwipe: {
		Type:     QuoteSwipe,
		Title:    "Quote swipe",
		Required: []string{"quote", "author"},
		Optional: []string{"background", "accentColor"},
	},
	EventPromo: {
		Type:     EventPromo,
		Title:    "Event promotion",
		Required: []string{"title", "date", "location"},
		Optional: []string{"subtitle", "ctaText", "image"},
	},
	PropertyListing: {
		Type:     PropertyListing,
		Title:    "Property listing",
		Required: []string{"propertyId", "headline"},
		Optional: []string{"price", "bedrooms", "image"},
		Entity:   model.EntityBusiness,
	},
	StoryHighlight: {
		Type:     StoryHighlight,
		Title:    "Story highlight",
		Required: []string{"headline", "body"},
		Optional: []string{"image", "tag"},
	},
	TeamMember: {
		Type:     TeamMember,
		Title:    "Team member spotlight",
		Required: []string{"name", "role"},
		Optional: []string{"photo", "quote"},
		Entity:   model.EntityEmployee,
	},
}

// Lookup returns the template for t. Unknown types yield a Template with
// Unsupported set, whose Build always fails.
func Lookup(t TemplateType) Template {
	tpl, ok := registry[TemplateType(strings.ToLower(string(t)))]
	if !ok {
		return Template{Type: t, Title: "Unsupported", Unsupported: true}
	}
	return tpl
}

// Templates returns every registered template sorted by type.
func Templates() []Template {
	out := make([]Template, 0, len(registry))
	for _, tpl := range registry {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Build validates data and returns the generate request. entityID is
// attached when the template is tied to an entity.
func (t Template) Build(data map[string]string, entityID string) (model.GenerateRequest, error) {
	if t.Unsupported {
		return model.GenerateRequest{}, fmt.Errorf("%w: %q", ErrUnsupportedTemplate, t.Type)
	}

	allowed := make(map[string]struct{}, len(t.Required)+len(t.Optional))
	for _, k := range t.Required {
		allowed[k] = struct{}{}
	}
	for _, k := range t.Optional {
		allowed[k] = struct{}{}
	}

	var missing, unknown []string
	for _, k := range t.Required {
		if strings.TrimSpace(data[k]) == "" {
			missing = append(missing, k)
		}
	}
	for k := range data {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if len(unknown) > 0 {
		errs = append(errs, fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", ")))
	}
	if t.Entity != "" && entityID == "" {
		errs = append(errs, fmt.Errorf("template %s requires a %s id", t.Type, t.Entity))
	}
	if len(errs) > 0 {
		return model.GenerateRequest{}, fmt.Errorf("template %s: %w", t.Type, errors.Join(errs...))
	}

	payload := make(map[string]any, len(data))
	for k, v := range data {
		payload[k] = strings.TrimSpace(v)
	}
	req := model.GenerateRequest{TemplateType: string(t.Type), Data: payload}
	if t.Entity != "" {
		req.EntityType = string(t.Entity)
		req.EntityID = entityID
	}
	return req, nil
}

// ParseData turns key=value pairs into a data map.
func ParseData(pairs []string) (map[string]string, error) {
	data := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid data %q: expected key=value", p)
		}
		data[key] = value
	}
	return data, nil
}

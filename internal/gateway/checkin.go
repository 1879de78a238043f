package gateway

import (
	"context"
	"net/http"
	"net/url"

	"crmadmin/internal/checkin"
	"crmadmin/internal/model"
)

// CheckinFormService wraps the /checkin-forms endpoints.
type CheckinFormService struct{ c *Client }

// List returns one page of check-in forms.
func (s *CheckinFormService) List(ctx context.Context, q url.Values) (model.Page[checkin.Form], error) {
	return list[checkin.Form](ctx, s.c, "checkin-forms", q)
}

// Get returns a single form with its sections and fields.
func (s *CheckinFormService) Get(ctx context.Context, id string) (checkin.Form, error) {
	var f checkin.Form
	err := s.c.doJSON(ctx, http.MethodGet, itemPath("checkin-forms", id), nil, nil, &f)
	return f, err
}

// Create validates the form locally, then stores it on the gateway.
func (s *CheckinFormService) Create(ctx context.Context, f checkin.Form) (checkin.Form, error) {
	if err := checkin.Check(f); err != nil {
		return checkin.Form{}, err
	}
	var out checkin.Form
	err := s.c.doJSON(ctx, http.MethodPost, "checkin-forms", nil, f, &out)
	return out, err
}

// Update validates the form locally, then replaces it on the gateway.
func (s *CheckinFormService) Update(ctx context.Context, id string, f checkin.Form) (checkin.Form, error) {
	if err := checkin.Check(f); err != nil {
		return checkin.Form{}, err
	}
	var out checkin.Form
	err := s.c.doJSON(ctx, http.MethodPatch, itemPath("checkin-forms", id), nil, f, &out)
	return out, err
}

// SetActive enables or disables a form.
func (s *CheckinFormService) SetActive(ctx context.Context, id string, active bool) (checkin.Form, error) {
	var out checkin.Form
	err := s.c.doJSON(ctx, http.MethodPatch, itemPath("checkin-forms", id), nil, map[string]any{"isActive": active}, &out)
	return out, err
}

// Delete removes a form.
func (s *CheckinFormService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, itemPath("checkin-forms", id), nil, nil)
	return err
}

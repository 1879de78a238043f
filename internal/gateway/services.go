package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"crmadmin/internal/model"
)

// BookingService wraps the /bookings endpoints.
type BookingService struct{ c *Client }

// List returns one page of bookings.
func (s *BookingService) List(ctx context.Context, q url.Values) (model.Page[model.Booking], error) {
	return list[model.Booking](ctx, s.c, "bookings", q)
}

// Get returns a single booking.
func (s *BookingService) Get(ctx context.Context, id string) (model.Booking, error) {
	var b model.Booking
	err := s.c.doJSON(ctx, http.MethodGet, itemPath("bookings", id), nil, nil, &b)
	return b, err
}

// SyncOptions narrows a booking sync run. Empty fields sync everything.
type SyncOptions struct {
	PropertyID string `json:"propertyId,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Sync asks the gateway to pull bookings from the upstream channels.
func (s *BookingService) Sync(ctx context.Context, opts SyncOptions) (model.SyncResult, error) {
	var res model.SyncResult
	err := s.c.doJSON(ctx, http.MethodPost, "bookings/sync", nil, opts, &res)
	return res, err
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, itemPath("bookings", id), nil, nil)
	return err
}

// ClientAppService wraps the /client-apps endpoints.
type ClientAppService struct{ c *Client }

// List returns one page of client applications.
func (s *ClientAppService) List(ctx context.Context, q url.Values) (model.Page[model.ClientApp], error) {
	return list[model.ClientApp](ctx, s.c, "client-apps", q)
}

// Get returns a single client application.
func (s *ClientAppService) Get(ctx context.Context, id string) (model.ClientApp, error) {
	var app model.ClientApp
	err := s.c.doJSON(ctx, http.MethodGet, itemPath("client-apps", id), nil, nil, &app)
	return app, err
}

// Create provisions a new client application.
func (s *ClientAppService) Create(ctx context.Context, in model.ClientAppInput) (model.ClientApp, error) {
	if in.Name == "" {
		return model.ClientApp{}, errors.New("client app name is required")
	}
	var app model.ClientApp
	err := s.c.doJSON(ctx, http.MethodPost, "client-apps", nil, in, &app)
	return app, err
}

// Update patches a client application.
func (s *ClientAppService) Update(ctx context.Context, id string, in model.ClientAppInput) (model.ClientApp, error) {
	var app model.ClientApp
	err := s.c.doJSON(ctx, http.MethodPatch, itemPath("client-apps", id), nil, in, &app)
	return app, err
}

// Delete removes a client application.
func (s *ClientAppService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, itemPath("client-apps", id), nil, nil)
	return err
}

// ReportService wraps the /admin/reports endpoints.
type ReportService struct{ c *Client }

// List returns one page of reports.
func (s *ReportService) List(ctx context.Context, q url.Values) (model.Page[model.Report], error) {
	return list[model.Report](ctx, s.c, "admin/reports", q)
}

// Get returns a single report.
func (s *ReportService) Get(ctx context.Context, id string) (model.Report, error) {
	var r model.Report
	err := s.c.doJSON(ctx, http.MethodGet, itemPath("admin/reports", id), nil, nil, &r)
	return r, err
}

// SetStatus moves a report to status. Transition rules are enforced by the gateway.
func (s *ReportService) SetStatus(ctx context.Context, id string, status model.ReportStatus) (model.Report, error) {
	return s.patch(ctx, id, "status", map[string]any{"status": status})
}

// SetVisibility publishes or hides a report.
func (s *ReportService) SetVisibility(ctx context.Context, id string, public bool) (model.Report, error) {
	return s.patch(ctx, id, "visibility", map[string]any{"isPublic": public})
}

// SetFeatured marks or unmarks a report as featured.
func (s *ReportService) SetFeatured(ctx context.Context, id string, featured bool) (model.Report, error) {
	return s.patch(ctx, id, "featured", map[string]any{"isFeatured": featured})
}

// SetTags replaces a report's tags.
func (s *ReportService) SetTags(ctx context.Context, id string, tags []string) (model.Report, error) {
	if tags == nil {
		tags = []string{}
	}
	return s.patch(ctx, id, "tags", map[string]any{"tags": tags})
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, itemPath("admin/reports", id), nil, nil)
	return err
}

func (s *ReportService) patch(ctx context.Context, id, field string, body map[string]any) (model.Report, error) {
	var r model.Report
	err := s.c.doJSON(ctx, http.MethodPatch, itemPath("admin/reports", id, field), nil, body, &r)
	return r, err
}

// ImageService wraps the /generated-images endpoints.
type ImageService struct{ c *Client }

// List returns one page of generated images.
func (s *ImageService) List(ctx context.Context, q url.Values) (model.Page[model.GeneratedImage], error) {
	return list[model.GeneratedImage](ctx, s.c, "generated-images", q)
}

// Generate renders a template on the gateway.
func (s *ImageService) Generate(ctx context.Context, req model.GenerateRequest) (model.GeneratedImage, error) {
	var img model.GeneratedImage
	err := s.c.doJSON(ctx, http.MethodPost, "generated-images/generate", nil, req, &img)
	return img, err
}

// Delete removes a generated image.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, itemPath("generated-images", id), nil, nil)
	return err
}

// LogService wraps the /logs endpoint.
type LogService struct{ c *Client }

// List returns one page of log records in gateway order.
func (s *LogService) List(ctx context.Context, q url.Values) (model.Page[model.LogRecord], error) {
	return list[model.LogRecord](ctx, s.c, "logs", q)
}

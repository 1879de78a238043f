// Package model provides the view-model types for data owned by the gateway.
package model

import "time"

// Page is the result of one call to a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// LogRecord is a single activity log entry. Records sharing a SessionID
// belong to the same client-derived session.
type LogRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Type       LogType   `json:"type"`
	ActionType string    `json:"actionType"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	ImageID    string    `json:"imageId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Booking is a property reservation synced from a channel manager.
type Booking struct {
	ID           string        `json:"id"`
	PropertyID   string        `json:"propertyId"`
	PropertyName string        `json:"propertyName,omitempty"`
	GuestName    string        `json:"guestName"`
	GuestEmail   string        `json:"guestEmail,omitempty"`
	CheckIn      time.Time     `json:"checkIn"`
	CheckOut     time.Time     `json:"checkOut"`
	Status       BookingStatus `json:"status"`
	TotalAmount  float64       `json:"totalAmount"`
	Currency     string        `json:"currency,omitempty"`
	Source       string        `json:"source,omitempty"`
	ExternalID   string        `json:"externalId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Nights returns the number of calendar nights between check-in and
// check-out.
func (b Booking) Nights() int {
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() || !b.CheckOut.After(b.CheckIn) {
		return 0
	}
	in := b.CheckIn.UTC()
	out := b.CheckOut.UTC()
	start := time.Date(in.Year(), in.Month(), in.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(out.Year(), out.Month(), out.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// SyncResult reports what a booking sync run changed.
type SyncResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ClientApp is a tenant application provisioned on the gateway.
type ClientApp struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type,omitempty"`
	Domain      []string        `json:"domain,omitempty"`
	APIKey      string          `json:"apiKey,omitempty"`
	Status      ClientAppStatus `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ClientAppInput is the body for creating or updating a client application.
type ClientAppInput struct {
	Name        string          `json:"name,omitempty"`
	Type        string          `json:"type,omitempty"`
	Domain      []string        `json:"domain,omitempty"`
	Status      ClientAppStatus `json:"status,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Report is a user-submitted report managed by administrators.
type Report struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Content       string       `json:"content,omitempty"`
	Category      string       `json:"category,omitempty"`
	Status        ReportStatus `json:"status"`
	IsPublic      bool         `json:"isPublic"`
	IsFeatured    bool         `json:"isFeatured"`
	Tags          []string     `json:"tags,omitempty"`
	ClientAppID   string       `json:"clientAppId,omitempty"`
	ReporterName  string       `json:"reporterName,omitempty"`
	ReporterEmail string       `json:"reporterEmail,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// GeneratedImage is an image rendered from a template by the gateway.
type GeneratedImage struct {
	ID           string    `json:"id"`
	TemplateType string    `json:"templateType"`
	Path         string    `json:"path"`
	EntityType   string    `json:"entityType,omitempty"`
	EntityID     string    `json:"entityId,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GenerateRequest asks the gateway to render a template.
type GenerateRequest struct {
	TemplateType string         `json:"templateType"`
	EntityType   string         `json:"entityType,omitempty"`
	EntityID     string         `json:"entityId,omitempty"`
	Data         map[string]any `json:"data"`
}

// MLModel is an entry of the intelligence hub model registry.
type MLModel struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	EntityType EntityType  `json:"entityType"`
	Version    string      `json:"version,omitempty"`
	Status     ModelStatus `json:"status"`
	Accuracy   float64     `json:"accuracy,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// PredictRequest runs a model against a single entity.
type PredictRequest struct {
	ModelID    string         `json:"modelId,omitempty"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Features   map[string]any `json:"features,omitempty"`
}

// Prediction is the gateway's answer to a PredictRequest.
type Prediction struct {
	ModelID    string         `json:"modelId"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Output     map[string]any `json:"output"`
	Confidence float64        `json:"confidence"`
}

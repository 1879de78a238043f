package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"crmadmin/internal/model"
)

// ErrUnsupportedEntity is returned for entity types the intelligence hub
// cannot be tested against.
var ErrUnsupportedEntity = errors.New("unsupported entity type")

// EntityProfile describes how to test models for one entity type.
type EntityProfile struct {
	Type     model.EntityType
	Endpoint string
	Features []string
	// Numeric lists the features sent as JSON numbers. Others stay strings.
	Numeric []string
}

// IsNumeric reports whether feature name is sent as a number.
func (p EntityProfile) IsNumeric(name string) bool {
	return slices.Contains(p.Numeric, name)
}

var entityProfiles = map[model.EntityType]EntityProfile{
	model.EntityProject: {
		Type:     model.EntityProject,
		Endpoint: "ml/predict/project",
		Features: []string{"budget", "deadline", "teamSize", "progress"},
		Numeric:  []string{"budget", "teamSize", "progress"},
	},
	model.EntityTask: {
		Type:     model.EntityTask,
		Endpoint: "ml/predict/task",
		Features: []string{"priority", "estimatedHours", "assigneeId", "dueDate"},
		Numeric:  []string{"estimatedHours"},
	},
	model.EntityBusiness: {
		Type:     model.EntityBusiness,
		Endpoint: "ml/predict/business",
		Features: []string{"industry", "employeeCount", "revenue"},
		Numeric:  []string{"employeeCount", "revenue"},
	},
	model.EntityEmployee: {
		Type:     model.EntityEmployee,
		Endpoint: "ml/predict/employee",
		Features: []string{"role", "tenureMonths", "performanceScore"},
		Numeric:  []string{"tenureMonths", "performanceScore"},
	},
}

// ProfileFor returns the test profile for t, or ErrUnsupportedEntity.
func ProfileFor(t model.EntityType) (EntityProfile, error) {
	p, ok := entityProfiles[model.EntityType(strings.ToLower(string(t)))]
	if !ok {
		return EntityProfile{}, fmt.Errorf("%w: %q", ErrUnsupportedEntity, t)
	}
	return p, nil
}

// MLService wraps the intelligence hub endpoints.
type MLService struct{ c *Client }

// Models returns one page of registered models.
func (s *MLService) Models(ctx context.Context, q url.Values) (model.Page[model.MLModel], error) {
	return list[model.MLModel](ctx, s.c, "ml/models", q)
}

// Model returns a single registered model.
func (s *MLService) Model(ctx context.Context, id string) (model.MLModel, error) {
	var m model.MLModel
	err := s.c.doJSON(ctx, http.MethodGet, itemPath("ml/models", id), nil, nil, &m)
	return m, err
}

// SetStatus activates, deactivates or deprecates a model.
func (s *MLService) SetStatus(ctx context.Context, id string, status model.ModelStatus) (model.MLModel, error) {
	var m model.MLModel
	err := s.c.doJSON(ctx, http.MethodPatch, itemPath("ml/models", id, "status"), nil, map[string]any{"status": status}, &m)
	return m, err
}

// Predict runs a test prediction for one entity.
func (s *MLService) Predict(ctx context.Context, req model.PredictRequest) (model.Prediction, error) {
	profile, err := ProfileFor(req.EntityType)
	if err != nil {
		return model.Prediction{}, err
	}
	if strings.TrimSpace(req.EntityID) == "" {
		return model.Prediction{}, errors.New("entity id is required")
	}
	req.EntityType = profile.Type

	var out model.Prediction
	if err := s.c.doJSON(ctx, http.MethodPost, profile.Endpoint, nil, req, &out); err != nil {
		return model.Prediction{}, err
	}
	if out.EntityType == "" {
		out.EntityType = profile.Type
	}
	if out.EntityID == "" {
		out.EntityID = req.EntityID
	}
	return out, nil
}

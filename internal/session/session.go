// Package session groups flat log records into client-derived sessions.
package session

import (
	"time"

	"crmadmin/internal/model"
)

// Session is an ordered run of log records sharing one session id.
type Session struct {
	ID      string
	Records []model.LogRecord
}

// Groups maps session ids to their records. Keys keep first-seen order and
// each record list keeps encounter order from the input.
type Groups struct {
	keys  []string
	index map[string][]model.LogRecord
}

// Group buckets records by SessionID. Records without a session id are kept
// under the empty key. Only the records passed in are grouped, so a session
// that continues on another page appears truncated.
func Group(records []model.LogRecord) *Groups {
	g := &Groups{index: make(map[string][]model.LogRecord)}
	for _, rec := range records {
		if _, ok := g.index[rec.SessionID]; !ok {
			g.keys = append(g.keys, rec.SessionID)
		}
		g.index[rec.SessionID] = append(g.index[rec.SessionID], rec)
	}
	return g
}

// Len returns the number of sessions.
func (g *Groups) Len() int { return len(g.keys) }

// Keys returns session ids in first-seen order.
func (g *Groups) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Get returns the records for id in input order.
func (g *Groups) Get(id string) ([]model.LogRecord, bool) {
	recs, ok := g.index[id]
	return recs, ok
}

// Sessions returns every session in key order.
func (g *Groups) Sessions() []Session {
	out := make([]Session, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, Session{ID: k, Records: g.index[k]})
	}
	return out
}

// Summary is the list-row view of a session.
type Summary struct {
	ID          string                `json:"sessionId"`
	Count       int                   `json:"count"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Counts      map[model.LogType]int `json:"counts"`
	HasError    bool                  `json:"hasError"`
	ImageIDs    []string              `json:"imageIds,omitempty"`
	LastMessage string                `json:"lastMessage"`
}

// DurationSeconds returns the span between the first and last record.
func (s Summary) DurationSeconds() int {
	if s.Start.IsZero() || s.End.IsZero() || s.End.Before(s.Start) {
		return 0
	}
	return int(s.End.Sub(s.Start).Seconds())
}

// Summary aggregates the session's records.
func (s Session) Summary() Summary {
	sum := Summary{ID: s.ID, Count: len(s.Records), Counts: make(map[model.LogType]int)}
	seen := make(map[string]struct{})
	for _, rec := range s.Records {
		sum.Counts[rec.Type]++
		if rec.Type == model.LogError {
			sum.HasError = true
		}
		if !rec.CreatedAt.IsZero() {
			if sum.Start.IsZero() || rec.CreatedAt.Before(sum.Start) {
				sum.Start = rec.CreatedAt
			}
			if rec.CreatedAt.After(sum.End) {
				sum.End = rec.CreatedAt
			}
		}
		if rec.ImageID != "" {
			if _, ok := seen[rec.ImageID]; !ok {
				seen[rec.ImageID] = struct{}{}
				sum.ImageIDs = append(sum.ImageIDs, rec.ImageID)
			}
		}
		sum.LastMessage = rec.Message
	}
	return sum
}

// Outcome is the overall result of a session: ERROR if any record failed,
// SUCCESS if any succeeded, INFO otherwise.
func (s Summary) Outcome() model.LogType {
	switch {
	case s.HasError:
		return model.LogError
	case s.Counts[model.LogSuccess] > 0:
		return model.LogSuccess
	default:
		return model.LogInfo
	}
}

// Label returns the display name of a session id.
func Label(id string) string {
	if id == "" {
		return "(no session)"
	}
	return id
}

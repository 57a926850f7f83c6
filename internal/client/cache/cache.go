// Package cache holds the client's local copy of the record set. It is a
// cache, not a source of truth: every successful refresh replaces the
// contents wholesale, and a failed refresh leaves the previous contents
// untouched with the failure recorded separately.
package cache

import (
	"context"
	"strings"

	"github.com/neuroguard/patient-registry/internal/client/remote"
	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// highRiskThreshold is the prediction score above which a record counts as
// predicted high risk. Distinct from Stroke, which records an incident
// that actually happened.
const highRiskThreshold = 0.5

// Lister is the slice of the remote client the cache needs.
type Lister interface {
	ListPatients(ctx context.Context, token string) ([]domain.Patient, error)
}

// SessionInfo is the slice of the session the cache consults before
// fetching.
type SessionInfo interface {
	IsAuthenticated() bool
	Identity() (domain.Identity, bool)
	Credential() string
}

// Cache is the client-local record set plus its error state.
type Cache struct {
	source  Lister
	session SessionInfo

	records []domain.Patient
	lastErr error
}

// New creates an empty cache fed by source and gated by session.
func New(source Lister, session SessionInfo) *Cache {
	return &Cache{source: source, session: session}
}

// Refresh fetches the full record set and replaces the cache wholesale on
// success. On failure the previous contents are retained and the typed
// cause is recorded; errors.Is(err, remote.ErrUnauthorized) tells the
// caller the session itself is suspect.
func (c *Cache) Refresh(ctx context.Context) error {
	identity, ok := c.session.Identity()
	if !ok || !c.session.IsAuthenticated() {
		c.lastErr = remote.ErrUnauthorized
		return c.lastErr
	}
	if !authz.Can(identity.Role, authz.OpView) {
		c.lastErr = remote.ErrUnauthorized
		return c.lastErr
	}

	records, err := c.source.ListPatients(ctx, c.session.Credential())
	if err != nil {
		c.lastErr = err
		return err
	}

	c.records = records
	c.lastErr = nil
	return nil
}

// Err returns the failure recorded by the most recent Refresh, nil after a
// success.
func (c *Cache) Err() error {
	return c.lastErr
}

// Len reports the number of cached records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Snapshot returns a copy of the cached records in fetch order.
func (c *Cache) Snapshot() []domain.Patient {
	return append([]domain.Patient(nil), c.records...)
}

// Find returns the cached record with the given id, if present.
func (c *Cache) Find(id string) (domain.Patient, bool) {
	for _, p := range c.records {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Patient{}, false
}

// Filter returns the cached records whose name, id, or gender contains the
// query, case-insensitively. An empty query returns the full cache. Pure:
// the cache itself is never modified, and the result preserves fetch order.
func (c *Cache) Filter(query string) []domain.Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Snapshot()
	}

	matched := make([]domain.Patient, 0, len(c.records))
	for _, p := range c.records {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(string(p.Gender)), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Aggregate holds the derived statistics for chart rendering.
type Aggregate struct {
	Count             int
	MeanAge           float64
	MeanGlucose       float64
	StrokeHistory     int // records where a stroke has occurred
	PredictedHighRisk int // records whose prediction crosses the threshold
}

// Aggregate computes statistics over the full cached set (not a filtered
// view). Means over an empty cache are zero, never NaN.
func (c *Cache) Aggregate() Aggregate {
	agg := Aggregate{Count: len(c.records)}

	var ageSum, glucoseSum float64
	for _, p := range c.records {
		ageSum += float64(p.Age)
		glucoseSum += p.AvgGlucoseLevel
		if p.Stroke == 1 {
			agg.StrokeHistory++
		}
		if p.StrokePrediction >= highRiskThreshold {
			agg.PredictedHighRisk++
		}
	}

	denom := float64(agg.Count)
	if denom == 0 {
		denom = 1
	}
	agg.MeanAge = ageSum / denom
	agg.MeanGlucose = glucoseSum / denom
	return agg
}

// Replace swaps in a new record set and clears the error state. Writes are
// always whole-cache replacements, never per-record patches.
func (c *Cache) Replace(records []domain.Patient) {
	c.records = records
	c.lastErr = nil
}

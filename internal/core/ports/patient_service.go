package ports

import (
	"context"

	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// Actor identifies the caller on whose behalf an operation runs. Role is
// re-checked inside the service for every operation: the transport-level
// RBAC middleware is not the only gate.
type Actor struct {
	ID       string
	Username string
	Role     authz.Role
}

// CreatePatientInput carries all data needed to create a new record.
// The identifier is always assigned by the store.
type CreatePatientInput struct {
	Name             string
	Age              int
	Gender           string
	Hypertension     int
	HeartDisease     int
	EverMarried      string
	WorkType         string
	ResidenceType    string
	AvgGlucoseLevel  float64
	BMI              float64
	SmokingStatus    string
	Stroke           int
	StrokePrediction float64
}

// PatientService defines use-case operations over patient records.
type PatientService interface {
	ListPatients(ctx context.Context, actor Actor) ([]*domain.Patient, error)
	CreatePatient(ctx context.Context, actor Actor, input CreatePatientInput) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, actor Actor, id string, draft domain.PatientDraft) (*domain.Patient, error)
	DeletePatient(ctx context.Context, actor Actor, id string) error
}

// AuditSink receives audit events for successful mutations. Implementations
// must not block the caller.
type AuditSink interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

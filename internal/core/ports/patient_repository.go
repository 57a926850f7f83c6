package ports

import (
	"context"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// PatientRepository defines persistence operations for patient records.
type PatientRepository interface {
	// List returns every patient record, oldest first. The record set is
	// small by design; clients filter locally.
	List(ctx context.Context) ([]*domain.Patient, error)
	FindByID(ctx context.Context, id string) (*domain.Patient, error)
	// Create inserts a new record and returns it with the store-assigned id.
	Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	// Update applies only the fields present in the draft and returns the
	// updated record. Returns domain.ErrPatientNotFound for unknown ids.
	Update(ctx context.Context, id string, draft domain.PatientDraft) (*domain.Patient, error)
	Delete(ctx context.Context, id string) error
}

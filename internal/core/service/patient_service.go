package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

// PatientService implements the record-store use cases. Every operation
// re-derives the caller's permissions from the authz table; the HTTP
// middleware performs the same check but the service never relies on it.
type PatientService struct {
	repo   ports.PatientRepository
	audit  ports.AuditSink
	logger zerolog.Logger
}

func NewPatientService(repo ports.PatientRepository, audit ports.AuditSink, logger zerolog.Logger) *PatientService {
	return &PatientService{repo: repo, audit: audit, logger: logger}
}

func (s *PatientService) ListPatients(ctx context.Context, actor ports.Actor) ([]*domain.Patient, error) {
	if !authz.Can(actor.Role, authz.OpView) {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *PatientService) CreatePatient(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error) {
	if !authz.Can(actor.Role, authz.OpCreate) {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	patient := &domain.Patient{
		Name:             input.Name,
		Age:              input.Age,
		Gender:           domain.Gender(input.Gender),
		Hypertension:     input.Hypertension,
		HeartDisease:     input.HeartDisease,
		EverMarried:      input.EverMarried,
		WorkType:         domain.WorkType(input.WorkType),
		ResidenceType:    domain.ResidenceType(input.ResidenceType),
		AvgGlucoseLevel:  input.AvgGlucoseLevel,
		BMI:              input.BMI,
		SmokingStatus:    domain.SmokingStatus(input.SmokingStatus),
		Stroke:           input.Stroke,
		StrokePrediction: input.StrokePrediction,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Create(ctx, patient)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create patient")
		return nil, err
	}

	s.logger.Info().Str("patient_id", created.ID).Str("actor", actor.Username).Msg("patient created")
	s.recordAudit(domain.AuditCreate, created.ID, actor)
	return created, nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error) {
	if !authz.Can(actor.Role, authz.OpEdit) {
		return nil, domain.ErrForbidden
	}
	if draft.IsEmpty() {
		return nil, domain.ErrEmptyDraft
	}

	updated, err := s.repo.Update(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("patient_id", id).Str("actor", actor.Username).Msg("patient updated")
	s.recordAudit(domain.AuditUpdate, id, actor)
	return updated, nil
}

func (s *PatientService) DeletePatient(ctx context.Context, actor ports.Actor, id string) error {
	if !authz.Can(actor.Role, authz.OpDelete) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("patient_id", id).Str("actor", actor.Username).Msg("patient deleted")
	s.recordAudit(domain.AuditDelete, id, actor)
	return nil
}

// recordAudit hands the event to the async sink. Audit is best-effort and
// never fails the mutation.
func (s *PatientService) recordAudit(action domain.AuditAction, patientID string, actor ports.Actor) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		ID:        uuid.NewString(),
		Action:    action,
		PatientID: patientID,
		Actor:     actor.Username,
		Role:      actor.Role,
		At:        time.Now().UTC(),
	})
}

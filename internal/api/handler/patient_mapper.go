package handler

import (
	"github.com/neuroguard/patient-registry/internal/core/domain"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createPatientRequest) ports.CreatePatientInput {
	return ports.CreatePatientInput{
		Name:             req.Name,
		Age:              req.Age,
		Gender:           req.Gender,
		Hypertension:     req.Hypertension,
		HeartDisease:     req.HeartDisease,
		EverMarried:      req.EverMarried,
		WorkType:         req.WorkType,
		ResidenceType:    req.ResidenceType,
		AvgGlucoseLevel:  req.AvgGlucoseLevel,
		BMI:              req.BMI,
		SmokingStatus:    req.SmokingStatus,
		Stroke:           req.Stroke,
		StrokePrediction: req.StrokePrediction,
	}
}

func toDraft(req updatePatientRequest) domain.PatientDraft {
	return domain.PatientDraft{
		Name:             req.Name,
		Age:              req.Age,
		Gender:           req.Gender,
		Hypertension:     req.Hypertension,
		HeartDisease:     req.HeartDisease,
		EverMarried:      req.EverMarried,
		WorkType:         req.WorkType,
		ResidenceType:    req.ResidenceType,
		AvgGlucoseLevel:  req.AvgGlucoseLevel,
		BMI:              req.BMI,
		SmokingStatus:    req.SmokingStatus,
		Stroke:           req.Stroke,
		StrokePrediction: req.StrokePrediction,
	}
}

// --- Service result → HTTP response ---

func toPatientResponse(p *domain.Patient) patientResponse {
	return patientResponse{
		ID:               p.ID,
		Name:             p.Name,
		Age:              p.Age,
		Gender:           string(p.Gender),
		Hypertension:     p.Hypertension,
		HeartDisease:     p.HeartDisease,
		EverMarried:      p.EverMarried,
		WorkType:         string(p.WorkType),
		ResidenceType:    string(p.ResidenceType),
		AvgGlucoseLevel:  p.AvgGlucoseLevel,
		BMI:              p.BMI,
		SmokingStatus:    string(p.SmokingStatus),
		Stroke:           p.Stroke,
		StrokePrediction: p.StrokePrediction,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
}

func toPatientListResponse(patients []*domain.Patient) []patientResponse {
	out := make([]patientResponse, len(patients))
	for i, p := range patients {
		out[i] = toPatientResponse(p)
	}
	return out
}

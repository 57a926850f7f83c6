package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// createPatientRequest carries a full draft. The id is never accepted here;
// the store assigns it.
type createPatientRequest struct {
	Name             string  `json:"name"              validate:"required"`
	Age              int     `json:"age"               validate:"gte=0"`
	Gender           string  `json:"gender"            validate:"required,oneof=Male Female Other"`
	Hypertension     int     `json:"hypertension"      validate:"oneof=0 1"`
	HeartDisease     int     `json:"heart_disease"     validate:"oneof=0 1"`
	EverMarried      string  `json:"ever_married"      validate:"required,oneof=Yes No"`
	WorkType         string  `json:"work_type"         validate:"required,oneof=Private Self-employed Govt_job children Never_worked"`
	ResidenceType    string  `json:"residence_type"    validate:"required,oneof=Urban Rural"`
	AvgGlucoseLevel  float64 `json:"avg_glucose_level" validate:"gte=0"`
	BMI              float64 `json:"bmi"               validate:"gte=0"`
	SmokingStatus    string  `json:"smoking_status"    validate:"required,oneof='formerly smoked' 'never smoked' smokes Unknown"`
	Stroke           int     `json:"stroke"            validate:"oneof=0 1"`
	StrokePrediction float64 `json:"stroke_prediction" validate:"gte=0"`
}

// updatePatientRequest carries a partial draft: only supplied fields are
// applied. Values are still range-checked when present.
type updatePatientRequest struct {
	Name             *string  `json:"name,omitempty"              validate:"omitempty,min=1"`
	Age              *int     `json:"age,omitempty"               validate:"omitempty,gte=0"`
	Gender           *string  `json:"gender,omitempty"            validate:"omitempty,oneof=Male Female Other"`
	Hypertension     *int     `json:"hypertension,omitempty"      validate:"omitempty,oneof=0 1"`
	HeartDisease     *int     `json:"heart_disease,omitempty"     validate:"omitempty,oneof=0 1"`
	EverMarried      *string  `json:"ever_married,omitempty"      validate:"omitempty,oneof=Yes No"`
	WorkType         *string  `json:"work_type,omitempty"         validate:"omitempty,oneof=Private Self-employed Govt_job children Never_worked"`
	ResidenceType    *string  `json:"residence_type,omitempty"    validate:"omitempty,oneof=Urban Rural"`
	AvgGlucoseLevel  *float64 `json:"avg_glucose_level,omitempty" validate:"omitempty,gte=0"`
	BMI              *float64 `json:"bmi,omitempty"               validate:"omitempty,gte=0"`
	SmokingStatus    *string  `json:"smoking_status,omitempty"    validate:"omitempty,oneof='formerly smoked' 'never smoked' smokes Unknown"`
	Stroke           *int     `json:"stroke,omitempty"            validate:"omitempty,oneof=0 1"`
	StrokePrediction *float64 `json:"stroke_prediction,omitempty" validate:"omitempty,gte=0"`
}

// patientResponse is the transport view of a record. Kept separate from
// the domain type so the JSON contract is not coupled to internal changes.
type patientResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	Hypertension     int       `json:"hypertension"`
	HeartDisease     int       `json:"heart_disease"`
	EverMarried      string    `json:"ever_married"`
	WorkType         string    `json:"work_type"`
	ResidenceType    string    `json:"residence_type"`
	AvgGlucoseLevel  float64   `json:"avg_glucose_level"`
	BMI              float64   `json:"bmi"`
	SmokingStatus    string    `json:"smoking_status"`
	Stroke           int       `json:"stroke"`
	StrokePrediction float64   `json:"stroke_prediction"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type deleteResponse struct {
	Message string `json:"message"`
}

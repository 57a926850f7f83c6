package domain

import "time"

// Gender is the closed set of gender values carried on a patient record.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// WorkType categorises a patient's occupation, using the dataset's
// original labels (including the lowercase "children").
type WorkType string

const (
	WorkPrivate      WorkType = "Private"
	WorkSelfEmployed WorkType = "Self-employed"
	WorkGovernment   WorkType = "Govt_job"
	WorkChildren     WorkType = "children"
	WorkNever        WorkType = "Never_worked"
)

// ResidenceType distinguishes urban from rural patients.
type ResidenceType string

const (
	ResidenceUrban ResidenceType = "Urban"
	ResidenceRural ResidenceType = "Rural"
)

// SmokingStatus categorises smoking history, again with the dataset's labels.
type SmokingStatus string

const (
	SmokingFormer  SmokingStatus = "formerly smoked"
	SmokingNever   SmokingStatus = "never smoked"
	SmokingCurrent SmokingStatus = "smokes"
	SmokingUnknown SmokingStatus = "Unknown"
)

// Patient is the core health record.
//
// Stroke and StrokePrediction are deliberately two separate signals:
// Stroke records whether an incident has actually occurred (0/1 historical
// fact), StrokePrediction is an externally computed risk score. They are
// never compared against each other.
type Patient struct {
	ID              string        `json:"id" bson:"_id,omitempty"`
	Name            string        `json:"name" bson:"name"`
	Age             int           `json:"age" bson:"age"`
	Gender          Gender        `json:"gender" bson:"gender"`
	Hypertension    int           `json:"hypertension" bson:"hypertension"`
	HeartDisease    int           `json:"heart_disease" bson:"heart_disease"`
	EverMarried     string        `json:"ever_married" bson:"ever_married"`
	WorkType        WorkType      `json:"work_type" bson:"work_type"`
	ResidenceType   ResidenceType `json:"residence_type" bson:"residence_type"`
	AvgGlucoseLevel float64       `json:"avg_glucose_level" bson:"avg_glucose_level"`
	BMI             float64       `json:"bmi" bson:"bmi"`
	SmokingStatus   SmokingStatus `json:"smoking_status" bson:"smoking_status"`
	Stroke          int           `json:"stroke" bson:"stroke"`
	StrokePrediction float64      `json:"stroke_prediction" bson:"stroke_prediction"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// PatientDraft carries the client-editable fields of a record. Pointer
// fields distinguish "not supplied" from zero values so updates can send
// partial drafts. The record identifier is never part of a draft: the
// store assigns it.
type PatientDraft struct {
	Name             *string  `json:"name,omitempty" bson:"name,omitempty"`
	Age              *int     `json:"age,omitempty" bson:"age,omitempty"`
	Gender           *string  `json:"gender,omitempty" bson:"gender,omitempty"`
	Hypertension     *int     `json:"hypertension,omitempty" bson:"hypertension,omitempty"`
	HeartDisease     *int     `json:"heart_disease,omitempty" bson:"heart_disease,omitempty"`
	EverMarried      *string  `json:"ever_married,omitempty" bson:"ever_married,omitempty"`
	WorkType         *string  `json:"work_type,omitempty" bson:"work_type,omitempty"`
	ResidenceType    *string  `json:"residence_type,omitempty" bson:"residence_type,omitempty"`
	AvgGlucoseLevel  *float64 `json:"avg_glucose_level,omitempty" bson:"avg_glucose_level,omitempty"`
	BMI              *float64 `json:"bmi,omitempty" bson:"bmi,omitempty"`
	SmokingStatus    *string  `json:"smoking_status,omitempty" bson:"smoking_status,omitempty"`
	Stroke           *int     `json:"stroke,omitempty" bson:"stroke,omitempty"`
	StrokePrediction *float64 `json:"stroke_prediction,omitempty" bson:"stroke_prediction,omitempty"`
}

// IsEmpty reports whether the draft carries no fields at all.
func (d PatientDraft) IsEmpty() bool {
	return d == PatientDraft{}
}

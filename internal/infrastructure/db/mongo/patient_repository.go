package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

const collectionPatients = "patients"

type PatientRepository struct {
	col *mongo.Collection
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{col: db.Collection(collectionPatients)}
}

// mongoPatient mirrors domain.Patient with an ObjectID primary key.
type mongoPatient struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Name             string               `bson:"name"`
	Age              int                  `bson:"age"`
	Gender           domain.Gender        `bson:"gender"`
	Hypertension     int                  `bson:"hypertension"`
	HeartDisease     int                  `bson:"heart_disease"`
	EverMarried      string               `bson:"ever_married"`
	WorkType         domain.WorkType      `bson:"work_type"`
	ResidenceType    domain.ResidenceType `bson:"residence_type"`
	AvgGlucoseLevel  float64              `bson:"avg_glucose_level"`
	BMI              float64              `bson:"bmi"`
	SmokingStatus    domain.SmokingStatus `bson:"smoking_status"`
	Stroke           int                  `bson:"stroke"`
	StrokePrediction float64              `bson:"stroke_prediction"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

func (m *mongoPatient) toDomain() *domain.Patient {
	return &domain.Patient{
		ID:               m.ID.Hex(),
		Name:             m.Name,
		Age:              m.Age,
		Gender:           m.Gender,
		Hypertension:     m.Hypertension,
		HeartDisease:     m.HeartDisease,
		EverMarried:      m.EverMarried,
		WorkType:         m.WorkType,
		ResidenceType:    m.ResidenceType,
		AvgGlucoseLevel:  m.AvgGlucoseLevel,
		BMI:              m.BMI,
		SmokingStatus:    m.SmokingStatus,
		Stroke:           m.Stroke,
		StrokePrediction: m.StrokePrediction,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromDomain(p *domain.Patient) mongoPatient {
	return mongoPatient{
		Name:             p.Name,
		Age:              p.Age,
		Gender:           p.Gender,
		Hypertension:     p.Hypertension,
		HeartDisease:     p.HeartDisease,
		EverMarried:      p.EverMarried,
		WorkType:         p.WorkType,
		ResidenceType:    p.ResidenceType,
		AvgGlucoseLevel:  p.AvgGlucoseLevel,
		BMI:              p.BMI,
		SmokingStatus:    p.SmokingStatus,
		Stroke:           p.Stroke,
		StrokePrediction: p.StrokePrediction,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// List returns all patient records ordered by creation time.
func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	patients := []*domain.Patient{}
	for cur.Next(ctx) {
		var m mongoPatient
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		patients = append(patients, m.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id string) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPatientNotFound
	}

	var m mongoPatient
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

// Create inserts a new record. The id is always assigned here, never
// accepted from the caller.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(p)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	doc.ID = oid
	return doc.toDomain(), nil
}

// Update applies only the draft's populated fields via $set and returns
// the updated document.
func (r *PatientRepository) Update(ctx context.Context, id string, draft domain.PatientDraft) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPatientNotFound
	}

	set, err := draftToSet(draft)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()

	var m mongoPatient
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPatientNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

// draftToSet flattens a partial draft into a $set document.
func draftToSet(d domain.PatientDraft) (bson.M, error) {
	set := bson.M{}
	if d.Name != nil {
		set["name"] = *d.Name
	}
	if d.Age != nil {
		set["age"] = *d.Age
	}
	if d.Gender != nil {
		set["gender"] = *d.Gender
	}
	if d.Hypertension != nil {
		set["hypertension"] = *d.Hypertension
	}
	if d.HeartDisease != nil {
		set["heart_disease"] = *d.HeartDisease
	}
	if d.EverMarried != nil {
		set["ever_married"] = *d.EverMarried
	}
	if d.WorkType != nil {
		set["work_type"] = *d.WorkType
	}
	if d.ResidenceType != nil {
		set["residence_type"] = *d.ResidenceType
	}
	if d.AvgGlucoseLevel != nil {
		set["avg_glucose_level"] = *d.AvgGlucoseLevel
	}
	if d.BMI != nil {
		set["bmi"] = *d.BMI
	}
	if d.SmokingStatus != nil {
		set["smoking_status"] = *d.SmokingStatus
	}
	if d.Stroke != nil {
		set["stroke"] = *d.Stroke
	}
	if d.StrokePrediction != nil {
		set["stroke_prediction"] = *d.StrokePrediction
	}
	if len(set) == 0 {
		return nil, domain.ErrEmptyDraft
	}
	return set, nil
}

// EnsureIndexes creates the indexes used by list ordering.
func (r *PatientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/neuroguard/patient-registry/internal/api/middleware"
	"github.com/neuroguard/patient-registry/internal/core/domain"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

type stubPatientService struct {
	listFn   func(ctx context.Context, actor ports.Actor) ([]*domain.Patient, error)
	createFn func(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error)
	updateFn func(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error)
	deleteFn func(ctx context.Context, actor ports.Actor, id string) error
}

func (s *stubPatientService) ListPatients(ctx context.Context, actor ports.Actor) ([]*domain.Patient, error) {
	return s.listFn(ctx, actor)
}

func (s *stubPatientService) CreatePatient(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error) {
	return s.createFn(ctx, actor, input)
}

func (s *stubPatientService) UpdatePatient(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error) {
	return s.updateFn(ctx, actor, id, draft)
}

func (s *stubPatientService) DeletePatient(ctx context.Context, actor ports.Actor, id string) error {
	return s.deleteFn(ctx, actor, id)
}

const fullDraftJSON = `{
	"name": "Jane Doe",
	"age": 61,
	"gender": "Female",
	"hypertension": 0,
	"heart_disease": 1,
	"ever_married": "Yes",
	"work_type": "Private",
	"residence_type": "Urban",
	"avg_glucose_level": 228.69,
	"bmi": 36.6,
	"smoking_status": "formerly smoked",
	"stroke": 1,
	"stroke_prediction": 0.82
}`

// newPatientContext builds an echo context carrying the claims the auth
// middleware would have injected.
func newPatientContext(method, path, body, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(middleware.CtxUserID, "u1")
		c.Set(middleware.CtxUsername, "casey")
		c.Set(middleware.CtxRole, role)
	}
	return c, rec
}

func TestPatientHandler_List(t *testing.T) {
	stub := &stubPatientService{
		listFn: func(ctx context.Context, actor ports.Actor) ([]*domain.Patient, error) {
			if actor.Role != "user" {
				t.Fatalf("unexpected actor role: %s", actor.Role)
			}
			return []*domain.Patient{
				{ID: "p1", Name: "Jane Doe", Age: 61},
				{ID: "p2", Name: "John Roe", Age: 39},
			}, nil
		},
	}
	handler := NewPatientHandler(stub)

	c, rec := newPatientContext(http.MethodGet, "/api/patients", "", "user")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0]["id"] != "p1" || resp[1]["name"] != "John Roe" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestPatientHandler_List_MissingClaims(t *testing.T) {
	stub := &stubPatientService{
		listFn: func(ctx context.Context, actor ports.Actor) ([]*domain.Patient, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewPatientHandler(stub)

	c, _ := newPatientContext(http.MethodGet, "/api/patients", "", "")

	err := handler.List(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}

func TestPatientHandler_Create_Success(t *testing.T) {
	stub := &stubPatientService{
		createFn: func(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error) {
			if input.Name != "Jane Doe" || input.Age != 61 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Patient{ID: "srv-1", Name: input.Name, Age: input.Age, Stroke: input.Stroke, StrokePrediction: input.StrokePrediction}, nil
		},
	}
	handler := NewPatientHandler(stub)

	c, rec := newPatientContext(http.MethodPost, "/api/patients", fullDraftJSON, "doctor")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "srv-1" {
		t.Fatalf("expected store-assigned id, got %v", resp["id"])
	}
	// Historical fact and risk score travel as distinct fields.
	if resp["stroke"] != float64(1) || resp["stroke_prediction"] != 0.82 {
		t.Fatalf("stroke signals mangled: %+v", resp)
	}
}

func TestPatientHandler_Create_ForbiddenForViewer(t *testing.T) {
	stub := &stubPatientService{
		createFn: func(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error) {
			return nil, domain.ErrForbidden
		},
	}
	handler := NewPatientHandler(stub)

	c, _ := newPatientContext(http.MethodPost, "/api/patients", fullDraftJSON, "user")

	err := handler.Create(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPatientHandler_Create_RejectsBadEnum(t *testing.T) {
	stub := &stubPatientService{
		createFn: func(ctx context.Context, actor ports.Actor, input ports.CreatePatientInput) (*domain.Patient, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewPatientHandler(stub)

	body := strings.Replace(fullDraftJSON, `"formerly smoked"`, `"sometimes"`, 1)
	c, _ := newPatientContext(http.MethodPost, "/api/patients", body, "doctor")

	err := handler.Create(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad enum, got %v", err)
	}
}

func TestPatientHandler_Update_PartialDraft(t *testing.T) {
	stub := &stubPatientService{
		updateFn: func(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error) {
			if id != "p1" {
				t.Fatalf("unexpected id: %s", id)
			}
			if draft.Age == nil || *draft.Age != 62 {
				t.Fatalf("expected age in draft, got %+v", draft)
			}
			if draft.Name != nil {
				t.Fatalf("unsupplied field should stay nil, got %q", *draft.Name)
			}
			return &domain.Patient{ID: id, Name: "Jane Doe", Age: 62}, nil
		},
	}
	handler := NewPatientHandler(stub)

	c, rec := newPatientContext(http.MethodPut, "/api/patients/p1", `{"age":62}`, "doctor")
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPatientHandler_Update_NotFound(t *testing.T) {
	stub := &stubPatientService{
		updateFn: func(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error) {
			return nil, domain.ErrPatientNotFound
		},
	}
	handler := NewPatientHandler(stub)

	c, _ := newPatientContext(http.MethodPut, "/api/patients/ghost", `{"age":62}`, "doctor")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := handler.Update(c)
	if !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPatientHandler_Update_EmptyDraft(t *testing.T) {
	stub := &stubPatientService{
		updateFn: func(ctx context.Context, actor ports.Actor, id string, draft domain.PatientDraft) (*domain.Patient, error) {
			return nil, domain.ErrEmptyDraft
		},
	}
	handler := NewPatientHandler(stub)

	c, _ := newPatientContext(http.MethodPut, "/api/patients/p1", `{}`, "doctor")
	c.SetParamNames("id")
	c.SetParamValues("p1")

	err := handler.Update(c)
	if !errors.Is(err, domain.ErrEmptyDraft) {
		t.Fatalf("expected ErrEmptyDraft, got %v", err)
	}
}

func TestPatientHandler_Delete(t *testing.T) {
	var deleted string
	stub := &stubPatientService{
		deleteFn: func(ctx context.Context, actor ports.Actor, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewPatientHandler(stub)

	c, rec := newPatientContext(http.MethodDelete, "/api/patients/p1", "", "doctor")
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != "p1" {
		t.Fatalf("expected delete of p1, got %q", deleted)
	}
}

func TestPatientHandler_Delete_NotFound(t *testing.T) {
	stub := &stubPatientService{
		deleteFn: func(ctx context.Context, actor ports.Actor, id string) error {
			return domain.ErrPatientNotFound
		},
	}
	handler := NewPatientHandler(stub)

	c, _ := newPatientContext(http.MethodDelete, "/api/patients/ghost", "", "doctor")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := handler.Delete(c)
	if !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

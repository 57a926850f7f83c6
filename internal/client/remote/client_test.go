package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "a@example.com" || body["password"] != "secret1" {
			t.Errorf("unexpected credentials: %+v", body)
		}
		json.NewEncoder(w).Encode(AuthResult{
			Token: "token123",
			User:  domain.Identity{ID: "u1", Username: "alice", Role: authz.RoleDoctor},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	res, err := client.Login(context.Background(), "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "token123" || res.User.Username != "alice" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Login(context.Background(), "a@example.com", "wrong11")

	// On the login endpoint a 401 is a credential problem, not a stale token.
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, ErrUnreachable) {
		t.Fatalf("credential failure must not look like an outage: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "user already exists"})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Register(context.Background(), "alice", "a@example.com", "secret1", "")
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestListPatientsSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token123" {
			t.Errorf("unexpected auth header: %q", got)
		}
		json.NewEncoder(w).Encode([]domain.Patient{{ID: "p1", Name: "Jane Doe"}})
	}))
	defer srv.Close()

	client := New(srv.URL)
	patients, err := client.ListPatients(context.Background(), "token123")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(patients) != 1 || patients[0].ID != "p1" {
		t.Fatalf("unexpected patients: %+v", patients)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"expired token", http.StatusUnauthorized, ErrUnauthorized},
		{"stale role", http.StatusForbidden, ErrUnauthorized},
		{"vanished record", http.StatusNotFound, ErrNotFound},
		{"rejected draft", http.StatusUnprocessableEntity, ErrValidation},
		{"malformed payload", http.StatusBadRequest, ErrValidation},
		{"server fault", http.StatusInternalServerError, ErrUnreachable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"error": tc.name})
			}))
			defer srv.Close()

			client := New(srv.URL)
			_, err := client.UpdatePatient(context.Background(), "token123", "p1", domain.PatientDraft{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
			}
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL)
	_, err := client.ListPatients(context.Background(), "token123")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/patients/p1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "patient deleted"})
	}))
	defer srv.Close()

	client := New(srv.URL)
	if err := client.DeletePatient(context.Background(), "token123", "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

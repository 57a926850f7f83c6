// Package remote implements the HTTP boundary to the credential service
// and the record store. Every failure is mapped onto the package's typed
// error taxonomy so callers never inspect status codes themselves.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to a patient-registry server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// Login exchanges credentials for a bearer token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		// On this endpoint a 401 means the credentials themselves are bad,
		// not that a held token went stale.
		if errors.Is(err, ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns a fresh token and identity.
func (c *Client) Register(ctx context.Context, username, email, password, role string) (*AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password, "role": role}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the token server-side. A failed logout is not fatal to
// clearing the local session; the caller decides.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// ListPatients fetches the full record set.
func (c *Client) ListPatients(ctx context.Context, token string) ([]domain.Patient, error) {
	var out []domain.Patient
	if err := c.do(ctx, http.MethodGet, "/api/patients", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePatient submits a full draft; the server assigns the id.
func (c *Client) CreatePatient(ctx context.Context, token string, draft domain.PatientDraft) (*domain.Patient, error) {
	var out domain.Patient
	if err := c.do(ctx, http.MethodPost, "/api/patients", token, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient submits a partial draft for an existing record.
func (c *Client) UpdatePatient(ctx context.Context, token, id string, draft domain.PatientDraft) (*domain.Patient, error) {
	var out domain.Patient
	if err := c.do(ctx, http.MethodPut, "/api/patients/"+id, token, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePatient removes a record.
func (c *Client) DeletePatient(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/patients/"+id, token, nil, nil)
}

// do performs one request and maps the response onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnreachable, err)
	}
	return nil
}

// mapError converts an error response into a taxonomy error, carrying the
// server's message for display.
func (c *Client) mapError(resp *http.Response) error {
	var env errorEnvelope
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != "" {
		msg = env.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusForbidden:
		// A role rejection server-side means the cached role assumption
		// is stale; treat it like a credential problem.
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	return fmt.Errorf("%w: %s", ErrUnreachable, msg)
}

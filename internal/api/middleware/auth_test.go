package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/neuroguard/patient-registry/internal/api/metrics"
)

const testSecret = "test-secret"

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	if r.revoked == nil {
		r.revoked = make(map[string]bool)
	}
	r.revoked[tokenID] = true
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.revoked[tokenID], nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func invoke(t *testing.T, token string, revoker *stubRevoker) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(testSecret, revoker)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestAuth_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"jti":      "tok-1",
		"sub":      "u1",
		"username": "alice",
		"email":    "alice@example.com",
		"role":     "doctor",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	rec, c, err := invoke(t, token, &stubRevoker{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(CtxRole) != "doctor" || c.Get(CtxUsername) != "alice" {
		t.Fatalf("claims not injected: role=%v username=%v", c.Get(CtxRole), c.Get(CtxUsername))
	}
	if c.Get(CtxTokenID) != "tok-1" {
		t.Fatalf("token id not injected")
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, _, err := invoke(t, "", &stubRevoker{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"jti":  "tok-2",
		"role": "user",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	_, _, err := invoke(t, token, &stubRevoker{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestAuth_RevokedToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"jti":  "tok-3",
		"role": "doctor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	revoker := &stubRevoker{revoked: map[string]bool{"tok-3": true}}
	_, _, err := invoke(t, token, revoker)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %v", err)
	}
}

func TestAuth_WrongSignature(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "doctor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := tok.SignedString([]byte("other-secret"))

	_, _, err := invoke(t, signed, &stubRevoker{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %v", err)
	}
}

func TestAuth_FailureCounters(t *testing.T) {
	invalidBefore := testutil.ToFloat64(metrics.AuthFailuresTotal.WithLabelValues("token_invalid"))
	revokedBefore := testutil.ToFloat64(metrics.AuthFailuresTotal.WithLabelValues("token_revoked"))

	if _, _, err := invoke(t, "garbage", &stubRevoker{}); err == nil {
		t.Fatal("expected rejection for malformed token")
	}

	token := signToken(t, jwt.MapClaims{
		"jti":  "tok-4",
		"role": "doctor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	revoker := &stubRevoker{revoked: map[string]bool{"tok-4": true}}
	if _, _, err := invoke(t, token, revoker); err == nil {
		t.Fatal("expected rejection for revoked token")
	}

	if got := testutil.ToFloat64(metrics.AuthFailuresTotal.WithLabelValues("token_invalid")) - invalidBefore; got != 1 {
		t.Errorf("expected one token_invalid failure, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.AuthFailuresTotal.WithLabelValues("token_revoked")) - revokedBefore; got != 1 {
		t.Errorf("expected one token_revoked failure, got %v", got)
	}
}

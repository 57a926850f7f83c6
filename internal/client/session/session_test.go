package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
)

func testIdentity() domain.Identity {
	return domain.Identity{ID: "u1", Username: "alice", Email: "alice@example.com", Role: authz.RoleDoctor}
}

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSession_LoginThenAuthenticated(t *testing.T) {
	s := New(openTestStore(t))

	if s.IsAuthenticated() {
		t.Fatalf("fresh session must not be authenticated")
	}

	if err := s.Login(testIdentity(), "token-abc"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if !s.IsAuthenticated() {
		t.Fatalf("expected authenticated after login")
	}
	id, ok := s.Identity()
	if !ok || id.Username != "alice" {
		t.Fatalf("unexpected identity: %+v ok=%v", id, ok)
	}
	if s.Credential() != "token-abc" {
		t.Fatalf("unexpected credential")
	}
}

func TestSession_PresenceAlwaysMatched(t *testing.T) {
	s := New(openTestStore(t))

	check := func(stage string) {
		_, hasIdentity := s.Identity()
		hasCredential := s.Credential() != ""
		if hasIdentity != hasCredential {
			t.Fatalf("%s: identity presence (%v) and credential presence (%v) diverged", stage, hasIdentity, hasCredential)
		}
		if s.IsAuthenticated() != (hasIdentity && hasCredential) {
			t.Fatalf("%s: IsAuthenticated not derived from both fields", stage)
		}
	}

	check("initial")
	_ = s.Login(testIdentity(), "tok")
	check("after login")
	_ = s.Logout()
	check("after logout")
	_ = s.Logout() // idempotent
	check("after double logout")
}

func TestSession_RestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	store, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s := New(store)
	if err := s.Login(testIdentity(), "persisted-token"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_ = store.Close()

	// Simulate process restart.
	store2, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store2.Close()

	s2 := New(store2)
	if err := s2.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !s2.IsAuthenticated() {
		t.Fatalf("expected restored session to be authenticated")
	}
	id, _ := s2.Identity()
	if id.Role != authz.RoleDoctor || s2.Credential() != "persisted-token" {
		t.Fatalf("restored state mismatch: %+v / %q", id, s2.Credential())
	}
}

func TestSession_RestoreEmptyStore(t *testing.T) {
	s := New(openTestStore(t))
	if err := s.Restore(); err != nil {
		t.Fatalf("restore of empty store must not error: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("empty store must restore to unauthenticated")
	}
}

func TestSession_LogoutClearsDurableState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	store, _ := OpenBolt(path)
	s := New(store)
	_ = s.Login(testIdentity(), "tok")
	if err := s.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_ = store.Close()

	store2, _ := OpenBolt(path)
	defer store2.Close()
	if _, _, err := store2.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
}

func TestBoltStore_PartialPairIsNoSession(t *testing.T) {
	store := openTestStore(t)

	// Write only a credential and no identity by saving then corrupting:
	// Clear removes both; instead exercise Load on a half-written bucket
	// through the store's own primitives.
	if err := store.Save(domain.Identity{}, "lonely-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Identity marshals to an empty object: Load must treat it as absent.
	if _, _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for empty identity, got %v", err)
	}

	s := New(store)
	if err := s.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("partial pair must not authenticate")
	}
}

func TestSession_GenerationAdvances(t *testing.T) {
	s := New(openTestStore(t))

	g0 := s.Generation()
	_ = s.Login(testIdentity(), "tok")
	g1 := s.Generation()
	if g1 == g0 {
		t.Fatalf("generation must advance on login")
	}
	_ = s.Logout()
	if s.Generation() == g1 {
		t.Fatalf("generation must advance on logout")
	}
}

// Package mutate sequences record mutations against the remote store.
// Every attempt walks the same state machine: Idle → PermissionCheck →
// InFlight → Settled. The permission check consults the same authz table
// the server enforces; denying locally just avoids a doomed request, it
// is never the security boundary.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/neuroguard/patient-registry/internal/client/cache"
	"github.com/neuroguard/patient-registry/internal/client/remote"
	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// State of a mutation attempt.
type State int

const (
	StateIdle State = iota
	StatePermissionCheck
	StateInFlight
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePermissionCheck:
		return "permission_check"
	case StateInFlight:
		return "in_flight"
	case StateSettled:
		return "settled"
	}
	return "unknown"
}

var (
	// ErrPermissionDenied is the optimistic denial: the role does not
	// permit the operation, so no request was sent.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInFlight means the same logical action already has a request
	// outstanding; the new submission was discarded.
	ErrInFlight = errors.New("action already in flight")
	// ErrNotCached means an update targeted a record absent from the
	// local cache; refresh before editing.
	ErrNotCached = errors.New("record not in local cache")
	// ErrConfirmationDeclined means the delete confirmation gate said no.
	ErrConfirmationDeclined = errors.New("delete not confirmed")
	// ErrStaleResult means the session changed while the request was in
	// flight and the result was discarded unapplied.
	ErrStaleResult = errors.New("stale result discarded")
)

// Result describes a settled mutation attempt.
type Result struct {
	State   State
	Patient *domain.Patient // set on successful create/update
	Err     error           // nil on success
}

// RecordStore is the slice of the remote client the orchestrator uses.
type RecordStore interface {
	CreatePatient(ctx context.Context, token string, draft domain.PatientDraft) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, token, id string, draft domain.PatientDraft) (*domain.Patient, error)
	DeletePatient(ctx context.Context, token, id string) error
}

// Session is the slice of the session state the orchestrator uses.
type Session interface {
	IsAuthenticated() bool
	Identity() (domain.Identity, bool)
	Credential() string
	Generation() uint64
	Logout() error
}

// Orchestrator owns the mutation path: permission gate, single-flight
// guard, request, and cache refresh on success. It is the cache's only
// writer besides an explicit user-initiated refresh.
type Orchestrator struct {
	store   RecordStore
	session Session
	cache   *cache.Cache
	log     zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func New(store RecordStore, session Session, recordCache *cache.Cache, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		session:  session,
		cache:    recordCache,
		log:      log,
		inFlight: make(map[string]bool),
	}
}

// Create submits a full draft. The server assigns the identifier; the
// draft never carries one.
func (o *Orchestrator) Create(ctx context.Context, draft domain.PatientDraft) Result {
	return o.run(ctx, authz.OpCreate, "create", func(token string) (*domain.Patient, error) {
		return o.store.CreatePatient(ctx, token, draft)
	})
}

// Update submits a partial draft for the record with the given id. The
// target must be present in the local cache: an edit of a record the
// client has never seen is a stale edit by definition.
func (o *Orchestrator) Update(ctx context.Context, id string, draft domain.PatientDraft) Result {
	if _, ok := o.cache.Find(id); !ok {
		return Result{State: StateSettled, Err: fmt.Errorf("%w: %s", ErrNotCached, id)}
	}
	return o.run(ctx, authz.OpEdit, "update:"+id, func(token string) (*domain.Patient, error) {
		return o.store.UpdatePatient(ctx, token, id, draft)
	})
}

// Delete removes the record with the given id after the confirm gate
// approves. The gate runs before the in-flight guard is taken, so a
// declined confirmation leaves no trace.
func (o *Orchestrator) Delete(ctx context.Context, id string, confirm func() bool) Result {
	if confirm != nil && !confirm() {
		return Result{State: StateSettled, Err: ErrConfirmationDeclined}
	}
	return o.run(ctx, authz.OpDelete, "delete:"+id, func(token string) (*domain.Patient, error) {
		return nil, o.store.DeletePatient(ctx, token, id)
	})
}

// run drives one attempt through the state machine. key identifies the
// logical action for the single-flight guard.
func (o *Orchestrator) run(ctx context.Context, op authz.Operation, key string, call func(token string) (*domain.Patient, error)) Result {
	// PermissionCheck: deny locally before any network traffic.
	identity, ok := o.session.Identity()
	if !ok || !o.session.IsAuthenticated() {
		return Result{State: StateSettled, Err: ErrPermissionDenied}
	}
	if !authz.Can(identity.Role, op) {
		o.log.Debug().Str("op", string(op)).Str("role", string(identity.Role)).Msg("mutation denied locally")
		return Result{State: StateSettled, Err: ErrPermissionDenied}
	}

	// InFlight: one outstanding request per logical action.
	o.mu.Lock()
	if o.inFlight[key] {
		o.mu.Unlock()
		return Result{State: StateInFlight, Err: ErrInFlight}
	}
	o.inFlight[key] = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inFlight, key)
		o.mu.Unlock()
	}()

	launched := o.session.Generation()
	token := o.session.Credential()

	patient, err := call(token)
	if err != nil {
		return o.settleFailure(err)
	}

	// Discard results that arrive after the session moved on; applying
	// them would resurrect state from a previous login.
	if o.session.Generation() != launched {
		o.log.Warn().Str("action", key).Msg("session changed mid-flight, result discarded")
		return Result{State: StateSettled, Err: ErrStaleResult}
	}

	// Success settles with a full cache refetch; the cache is never
	// patched incrementally.
	if refreshErr := o.cache.Refresh(ctx); refreshErr != nil {
		o.log.Warn().Err(refreshErr).Str("action", key).Msg("post-mutation refresh failed")
	}

	return Result{State: StateSettled, Patient: patient}
}

// settleFailure maps a remote failure into a settled result. Unauthorized
// invalidates the local session: the cached role or credential is no
// longer trustworthy.
func (o *Orchestrator) settleFailure(err error) Result {
	if errors.Is(err, remote.ErrUnauthorized) {
		if logoutErr := o.session.Logout(); logoutErr != nil {
			o.log.Error().Err(logoutErr).Msg("failed to clear session after rejection")
		}
	}
	return Result{State: StateSettled, Err: err}
}

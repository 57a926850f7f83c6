package domain

import (
	"time"

	"github.com/neuroguard/patient-registry/internal/core/authz"
)

// AuditAction identifies the kind of mutation recorded in the audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEvent records a single successful mutation against a patient record.
// Events are written asynchronously and must never block or fail the
// mutation itself.
type AuditEvent struct {
	ID        string      `json:"id" bson:"_id"`
	Action    AuditAction `json:"action" bson:"action"`
	PatientID string      `json:"patient_id" bson:"patient_id"`
	Actor     string      `json:"actor" bson:"actor"`
	Role      authz.Role  `json:"role" bson:"role"`
	At        time.Time   `json:"at" bson:"at"`
}

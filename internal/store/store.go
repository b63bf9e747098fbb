// Package store defines the persistence surface for health records and the
// audit trail, with Postgres, SQLite and in-memory implementations.
package store

import (
	"context"
	"errors"

	"carefront.org/internal/audit"
	"carefront.org/internal/health"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// HealthStore persists intake forms and appointments. All reads and writes
// are tenant-scoped; list results are newest first. An empty patientID lists
// the whole tenant.
type HealthStore interface {
	CreateIntake(ctx context.Context, intake *health.PatientIntake) error
	ListIntakes(ctx context.Context, tenantID, patientID string) ([]health.PatientIntake, error)
	CreateAppointment(ctx context.Context, appt *health.Appointment) error
	ListAppointments(ctx context.Context, tenantID, patientID string) ([]health.Appointment, error)
}

// Store is the full persistence contract a backend must satisfy.
type Store interface {
	HealthStore
	audit.Store

	Ping(ctx context.Context) error
	Close() error
}

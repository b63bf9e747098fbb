// Package memory is the zero-configuration store: records live for the
// process lifetime only. The audit trail is still collected so tests and
// local runs can assert on it.
package memory

import (
	"context"
	"sync"
	"time"

	"carefront.org/internal/audit"
	"carefront.org/internal/health"
	"carefront.org/internal/ids"
	"carefront.org/internal/store"
)

// Store keeps all records in process memory, newest first.
type Store struct {
	mu           sync.RWMutex
	intakes      []health.PatientIntake
	appointments []health.Appointment
	auditTrail   []audit.Entry
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store { return &Store{} }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateIntake(_ context.Context, intake *health.PatientIntake) error {
	if intake.ID == "" {
		intake.ID = ids.NewWithPrefix("intake")
	}
	if intake.CreatedAt.IsZero() {
		intake.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intakes = append([]health.PatientIntake{*intake}, s.intakes...)
	return nil
}

func (s *Store) ListIntakes(_ context.Context, tenantID, patientID string) ([]health.PatientIntake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []health.PatientIntake
	for _, intake := range s.intakes {
		if intake.TenantID != tenantID {
			continue
		}
		if patientID != "" && intake.PatientID != patientID {
			continue
		}
		result = append(result, intake)
	}
	return result, nil
}

func (s *Store) CreateAppointment(_ context.Context, appt *health.Appointment) error {
	if appt.ID == "" {
		appt.ID = ids.NewWithPrefix("appt")
	}
	if appt.Status == "" {
		appt.Status = health.StatusScheduled
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append([]health.Appointment{*appt}, s.appointments...)
	return nil
}

func (s *Store) ListAppointments(_ context.Context, tenantID, patientID string) ([]health.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []health.Appointment
	for _, appt := range s.appointments {
		if appt.TenantID != tenantID {
			continue
		}
		if patientID != "" && appt.PatientID != patientID {
			continue
		}
		result = append(result, appt)
	}
	return result, nil
}

func (s *Store) AppendAudit(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditTrail = append(s.auditTrail, entry)
	return nil
}

// AuditTrail returns a copy of the collected entries, oldest first.
func (s *Store) AuditTrail() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Entry, len(s.auditTrail))
	copy(out, s.auditTrail)
	return out
}

// Package sqlite backs the store with a single local database file, for
// single-node and development deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"carefront.org/internal/audit"
	"carefront.org/internal/health"
	"carefront.org/internal/ids"
	"carefront.org/internal/store"
)

const schema = `
create table if not exists patient_intakes (
	id text primary key,
	tenant_id text not null,
	patient_id text not null,
	full_name text not null,
	date_of_birth text not null,
	email text not null,
	phone text not null,
	preferred_language text not null,
	chief_concern text not null,
	symptom_duration_days integer not null,
	medications text not null default '',
	allergies text not null default '',
	conditions text not null default '',
	consent text not null,
	created_at timestamp not null
);
create index if not exists idx_intakes_tenant on patient_intakes(tenant_id, patient_id);

create table if not exists appointments (
	id text primary key,
	tenant_id text not null,
	patient_id text not null,
	provider_name text not null,
	appointment_date timestamp not null,
	appointment_type text not null,
	reason text not null,
	status text not null,
	created_at timestamp not null
);
create index if not exists idx_appointments_tenant on appointments(tenant_id, patient_id);

create table if not exists audit_log (
	id text primary key,
	tenant_id text not null,
	actor_id text not null,
	actor_role text not null,
	action text not null,
	resource_type text not null,
	resource_id text,
	outcome text not null,
	metadata text not null default '{}',
	request_id text,
	occurred_at timestamp not null
);
`

// Store persists health records and audit entries in SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (and if needed bootstraps) the database file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is single-writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) CreateIntake(ctx context.Context, intake *health.PatientIntake) error {
	if intake.ID == "" {
		intake.ID = ids.NewWithPrefix("intake")
	}
	if intake.CreatedAt.IsZero() {
		intake.CreatedAt = time.Now().UTC()
	}
	consent, err := json.Marshal(intake.Consent)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into patient_intakes(
			id, tenant_id, patient_id, full_name, date_of_birth, email, phone,
			preferred_language, chief_concern, symptom_duration_days,
			medications, allergies, conditions, consent, created_at)
		values (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, intake.ID, intake.TenantID, intake.PatientID, intake.FullName, intake.DateOfBirth,
		intake.Email, intake.Phone, intake.PreferredLanguage, intake.ChiefConcern,
		intake.SymptomDurationDays, intake.Medications, intake.Allergies, intake.Conditions,
		string(consent), intake.CreatedAt)
	return err
}

func (s *Store) ListIntakes(ctx context.Context, tenantID, patientID string) ([]health.PatientIntake, error) {
	query := `
		select id, tenant_id, patient_id, full_name, date_of_birth, email, phone,
			preferred_language, chief_concern, symptom_duration_days,
			medications, allergies, conditions, consent, created_at
		from patient_intakes
		where tenant_id=?`
	args := []any{tenantID}
	if patientID != "" {
		query += ` and patient_id=?`
		args = append(args, patientID)
	}
	query += ` order by created_at desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []health.PatientIntake
	for rows.Next() {
		var (
			intake  health.PatientIntake
			consent string
		)
		if err := rows.Scan(&intake.ID, &intake.TenantID, &intake.PatientID, &intake.FullName,
			&intake.DateOfBirth, &intake.Email, &intake.Phone, &intake.PreferredLanguage,
			&intake.ChiefConcern, &intake.SymptomDurationDays, &intake.Medications,
			&intake.Allergies, &intake.Conditions, &consent, &intake.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(consent), &intake.Consent)
		result = append(result, intake)
	}
	return result, rows.Err()
}

func (s *Store) CreateAppointment(ctx context.Context, appt *health.Appointment) error {
	if appt.ID == "" {
		appt.ID = ids.NewWithPrefix("appt")
	}
	if appt.Status == "" {
		appt.Status = health.StatusScheduled
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into appointments(
			id, tenant_id, patient_id, provider_name, appointment_date,
			appointment_type, reason, status, created_at)
		values (?,?,?,?,?,?,?,?,?)
	`, appt.ID, appt.TenantID, appt.PatientID, appt.ProviderName, appt.AppointmentDate,
		string(appt.Type), appt.Reason, string(appt.Status), appt.CreatedAt)
	return err
}

func (s *Store) ListAppointments(ctx context.Context, tenantID, patientID string) ([]health.Appointment, error) {
	query := `
		select id, tenant_id, patient_id, provider_name, appointment_date,
			appointment_type, reason, status, created_at
		from appointments
		where tenant_id=?`
	args := []any{tenantID}
	if patientID != "" {
		query += ` and patient_id=?`
		args = append(args, patientID)
	}
	query += ` order by created_at desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []health.Appointment
	for rows.Next() {
		var (
			appt   health.Appointment
			kind   string
			status string
		)
		if err := rows.Scan(&appt.ID, &appt.TenantID, &appt.PatientID, &appt.ProviderName,
			&appt.AppointmentDate, &kind, &appt.Reason, &status, &appt.CreatedAt); err != nil {
			return nil, err
		}
		appt.Type = health.AppointmentType(kind)
		appt.Status = health.AppointmentStatus(status)
		result = append(result, appt)
	}
	return result, rows.Err()
}

func (s *Store) AppendAudit(ctx context.Context, entry audit.Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into audit_log(
			id, tenant_id, actor_id, actor_role, action, resource_type,
			resource_id, outcome, metadata, request_id, occurred_at)
		values (?,?,?,?,?,?,?,?,?,?,?)
	`, ids.NewWithPrefix("audit"), entry.TenantID, entry.ActorID, entry.ActorRole,
		entry.Action, entry.ResourceType, entry.ResourceID,
		string(entry.Outcome), string(metadata), entry.RequestID, entry.OccurredAt)
	return err
}

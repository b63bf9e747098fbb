package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"carefront.org/internal/audit"
	"carefront.org/internal/health"
	"carefront.org/internal/ids"
	"carefront.org/internal/store"
)

// Store persists health records and audit entries in PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL with pooled defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

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
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, intake.ID, intake.TenantID, intake.PatientID, intake.FullName, intake.DateOfBirth,
		intake.Email, intake.Phone, intake.PreferredLanguage, intake.ChiefConcern,
		intake.SymptomDurationDays, intake.Medications, intake.Allergies, intake.Conditions,
		consent, intake.CreatedAt)
	return err
}

func (s *Store) ListIntakes(ctx context.Context, tenantID, patientID string) ([]health.PatientIntake, error) {
	query := `
		select id, tenant_id, patient_id, full_name, date_of_birth, email, phone,
			preferred_language, chief_concern, symptom_duration_days,
			medications, allergies, conditions, consent, created_at
		from patient_intakes
		where tenant_id=$1`
	args := []any{tenantID}
	if patientID != "" {
		query += ` and patient_id=$2`
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
			consent []byte
		)
		if err := rows.Scan(&intake.ID, &intake.TenantID, &intake.PatientID, &intake.FullName,
			&intake.DateOfBirth, &intake.Email, &intake.Phone, &intake.PreferredLanguage,
			&intake.ChiefConcern, &intake.SymptomDurationDays, &intake.Medications,
			&intake.Allergies, &intake.Conditions, &consent, &intake.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(consent, &intake.Consent)
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
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, appt.ID, appt.TenantID, appt.PatientID, appt.ProviderName, appt.AppointmentDate,
		string(appt.Type), appt.Reason, string(appt.Status), appt.CreatedAt)
	return err
}

func (s *Store) ListAppointments(ctx context.Context, tenantID, patientID string) ([]health.Appointment, error) {
	query := `
		select id, tenant_id, patient_id, provider_name, appointment_date,
			appointment_type, reason, status, created_at
		from appointments
		where tenant_id=$1`
	args := []any{tenantID}
	if patientID != "" {
		query += ` and patient_id=$2`
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
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, ids.NewWithPrefix("audit"), entry.TenantID, entry.ActorID, entry.ActorRole,
		entry.Action, entry.ResourceType, nullable(entry.ResourceID),
		string(entry.Outcome), metadata, nullable(entry.RequestID), entry.OccurredAt)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

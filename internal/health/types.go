package health

import "time"

// ConsentFlags records the acknowledgements an intake must carry.
type ConsentFlags struct {
	TreatmentConsent      bool `json:"treatment_consent"`
	PrivacyNoticeAccepted bool `json:"privacy_notice_accepted"`
	TelehealthConsent     bool `json:"telehealth_consent"`
}

// PatientIntake is one submitted intake form, scoped to a tenant.
type PatientIntake struct {
	ID                  string       `json:"id"`
	TenantID            string       `json:"tenant_id"`
	PatientID           string       `json:"patient_id"`
	FullName            string       `json:"full_name"`
	DateOfBirth         string       `json:"date_of_birth"`
	Email               string       `json:"email"`
	Phone               string       `json:"phone"`
	PreferredLanguage   string       `json:"preferred_language"`
	ChiefConcern        string       `json:"chief_concern"`
	SymptomDurationDays int          `json:"symptom_duration_days"`
	Medications         string       `json:"medications"`
	Allergies           string       `json:"allergies"`
	Conditions          string       `json:"conditions"`
	Consent             ConsentFlags `json:"consent"`
	CreatedAt           time.Time    `json:"created_at"`
}

// AppointmentType distinguishes visit modes.
type AppointmentType string

const (
	AppointmentInPerson   AppointmentType = "in_person"
	AppointmentTelehealth AppointmentType = "telehealth"
)

// AppointmentStatus is the lifecycle state of a booking.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is one booking, scoped to a tenant.
type Appointment struct {
	ID              string            `json:"id"`
	TenantID        string            `json:"tenant_id"`
	PatientID       string            `json:"patient_id"`
	ProviderName    string            `json:"provider_name"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Type            AppointmentType   `json:"appointment_type"`
	Reason          string            `json:"reason"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TriageUrgency grades how quickly a patient message should be acted on.
type TriageUrgency string

const (
	UrgencyRoutine   TriageUrgency = "routine"
	UrgencySoon      TriageUrgency = "soon"
	UrgencyUrgent    TriageUrgency = "urgent"
	UrgencyEmergency TriageUrgency = "emergency"
)

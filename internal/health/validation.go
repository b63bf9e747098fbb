package health

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IntakeInput is the submitted shape of an intake form, before validation.
type IntakeInput struct {
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
}

// ValidateIntake returns every violated rule, not just the first, and the
// normalized input when clean.
func ValidateIntake(in IntakeInput) (IntakeInput, []string) {
	var problems []string

	if !nonEmpty(in.PatientID) {
		problems = append(problems, "patient_id is required")
	}
	if !nonEmpty(in.FullName) {
		problems = append(problems, "full_name is required")
	}
	if !nonEmpty(in.DateOfBirth) || !isISODate(in.DateOfBirth) {
		problems = append(problems, "date_of_birth must be a valid YYYY-MM-DD date")
	}
	if !nonEmpty(in.Email) || !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		problems = append(problems, "valid email is required")
	}
	if !nonEmpty(in.Phone) {
		problems = append(problems, "phone is required")
	}
	if !nonEmpty(in.PreferredLanguage) {
		problems = append(problems, "preferred_language is required")
	}
	if !nonEmpty(in.ChiefConcern) {
		problems = append(problems, "chief_concern is required")
	}
	if in.SymptomDurationDays < 0 || in.SymptomDurationDays > 3650 {
		problems = append(problems, "symptom_duration_days must be between 0 and 3650")
	}
	if !in.Consent.TreatmentConsent {
		problems = append(problems, "treatment_consent must be accepted")
	}
	if !in.Consent.PrivacyNoticeAccepted {
		problems = append(problems, "privacy_notice_accepted must be accepted")
	}
	if !in.Consent.TelehealthConsent {
		problems = append(problems, "telehealth_consent must be accepted")
	}

	if len(problems) > 0 {
		return IntakeInput{}, problems
	}

	in.PatientID = strings.TrimSpace(in.PatientID)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.PreferredLanguage = strings.TrimSpace(in.PreferredLanguage)
	in.ChiefConcern = strings.TrimSpace(in.ChiefConcern)
	in.Medications = strings.TrimSpace(in.Medications)
	in.Allergies = strings.TrimSpace(in.Allergies)
	in.Conditions = strings.TrimSpace(in.Conditions)
	return in, nil
}

// AppointmentInput is the submitted shape of a booking, before validation.
type AppointmentInput struct {
	PatientID       string `json:"patient_id"`
	ProviderName    string `json:"provider_name"`
	AppointmentDate string `json:"appointment_date"`
	Type            string `json:"appointment_type"`
	Reason          string `json:"reason"`
}

// ValidatedAppointment is a clean booking request with parsed fields.
type ValidatedAppointment struct {
	PatientID       string
	ProviderName    string
	AppointmentDate time.Time
	Type            AppointmentType
	Reason          string
}

// ValidateAppointment returns every violated rule and the parsed input when
// clean.
func ValidateAppointment(in AppointmentInput) (ValidatedAppointment, []string) {
	var problems []string

	if !nonEmpty(in.PatientID) {
		problems = append(problems, "patient_id is required")
	}
	if !nonEmpty(in.ProviderName) {
		problems = append(problems, "provider_name is required")
	}

	var when time.Time
	if !nonEmpty(in.AppointmentDate) {
		problems = append(problems, "appointment_date must be a valid RFC 3339 date-time")
	} else {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(in.AppointmentDate))
		if err != nil {
			problems = append(problems, "appointment_date must be a valid RFC 3339 date-time")
		} else {
			when = parsed.UTC()
		}
	}

	kind := AppointmentType(strings.TrimSpace(in.Type))
	if kind != AppointmentInPerson && kind != AppointmentTelehealth {
		problems = append(problems, "appointment_type must be in_person or telehealth")
	}
	if !nonEmpty(in.Reason) {
		problems = append(problems, "reason is required")
	}

	if len(problems) > 0 {
		return ValidatedAppointment{}, problems
	}
	return ValidatedAppointment{
		PatientID:       strings.TrimSpace(in.PatientID),
		ProviderName:    strings.TrimSpace(in.ProviderName),
		AppointmentDate: when,
		Type:            kind,
		Reason:          strings.TrimSpace(in.Reason),
	}, nil
}

const maxTriageMessageLen = 2000

// ValidateTriageMessage bounds a triage message.
func ValidateTriageMessage(message string) (string, []string) {
	message = strings.TrimSpace(message)
	var problems []string
	if message == "" {
		problems = append(problems, "message is required")
	}
	if len(message) > maxTriageMessageLen {
		problems = append(problems, "message exceeds 2000 characters")
	}
	if len(problems) > 0 {
		return "", problems
	}
	return message, nil
}

func nonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

package httpapi

import (
	"net/http"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/health"
)

func (a *API) createAppointment(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var input health.AppointmentInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeValidationError(w, r, []string{err.Error()})
		return
	}
	validated, problems := health.ValidateAppointment(input)
	if len(problems) > 0 {
		a.audit(r.Context(), identity, "appointment.create", "appointment", "", audit.OutcomeFailure, map[string]string{
			"reason": "validation",
		})
		writeValidationError(w, r, problems)
		return
	}

	if !auth.CanAccessPatient(identity, validated.PatientID) {
		a.audit(r.Context(), identity, "appointment.create", "appointment", "", audit.OutcomeFailure, map[string]string{
			"reason": "forbidden",
		})
		writeError(w, r, http.StatusForbidden, "access to this patient is not permitted")
		return
	}

	appt := health.Appointment{
		TenantID:        identity.TenantID,
		PatientID:       validated.PatientID,
		ProviderName:    validated.ProviderName,
		AppointmentDate: validated.AppointmentDate,
		Type:            validated.Type,
		Reason:          validated.Reason,
		Status:          health.StatusScheduled,
	}
	if err := a.records.CreateAppointment(r.Context(), &appt); err != nil {
		a.audit(r.Context(), identity, "appointment.create", "appointment", "", audit.OutcomeFailure, map[string]string{
			"reason": "storage_error",
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	a.audit(r.Context(), identity, "appointment.create", "appointment", appt.ID, audit.OutcomeSuccess, nil)
	writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt})
}

func (a *API) listAppointments(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	requested := r.URL.Query().Get("patient_id")
	if requested != "" && !auth.CanAccessPatient(identity, requested) {
		a.audit(r.Context(), identity, "appointment.list", "appointment", "", audit.OutcomeFailure, map[string]string{
			"reason": "forbidden",
		})
		writeError(w, r, http.StatusForbidden, "access to this patient is not permitted")
		return
	}

	scope := auth.ScopePatientID(identity, requested)
	appointments, err := a.records.ListAppointments(r.Context(), identity.TenantID, scope)
	if err != nil {
		a.audit(r.Context(), identity, "appointment.list", "appointment", "", audit.OutcomeFailure, map[string]string{
			"reason": "storage_error",
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if appointments == nil {
		appointments = []health.Appointment{}
	}

	a.audit(r.Context(), identity, "appointment.list", "appointment", "", audit.OutcomeSuccess, scopeMetadata(scope))
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

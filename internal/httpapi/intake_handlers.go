package httpapi

import (
	"net/http"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/health"
)

func (a *API) createIntake(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var input health.IntakeInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeValidationError(w, r, []string{err.Error()})
		return
	}
	input, problems := health.ValidateIntake(input)
	if len(problems) > 0 {
		a.audit(r.Context(), identity, "intake.create", "intake", "", audit.OutcomeFailure, map[string]string{
			"reason": "validation",
		})
		writeValidationError(w, r, problems)
		return
	}

	if !auth.CanAccessPatient(identity, input.PatientID) {
		a.audit(r.Context(), identity, "intake.create", "intake", "", audit.OutcomeFailure, map[string]string{
			"reason": "forbidden",
		})
		writeError(w, r, http.StatusForbidden, "access to this patient is not permitted")
		return
	}

	intake := health.PatientIntake{
		TenantID:            identity.TenantID,
		PatientID:           input.PatientID,
		FullName:            input.FullName,
		DateOfBirth:         input.DateOfBirth,
		Email:               input.Email,
		Phone:               input.Phone,
		PreferredLanguage:   input.PreferredLanguage,
		ChiefConcern:        input.ChiefConcern,
		SymptomDurationDays: input.SymptomDurationDays,
		Medications:         input.Medications,
		Allergies:           input.Allergies,
		Conditions:          input.Conditions,
		Consent:             input.Consent,
	}
	if err := a.records.CreateIntake(r.Context(), &intake); err != nil {
		a.audit(r.Context(), identity, "intake.create", "intake", "", audit.OutcomeFailure, map[string]string{
			"reason": "storage_error",
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	a.audit(r.Context(), identity, "intake.create", "intake", intake.ID, audit.OutcomeSuccess, nil)
	writeJSON(w, http.StatusCreated, map[string]any{"intake": intake})
}

func (a *API) listIntakes(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	requested := r.URL.Query().Get("patient_id")
	if requested != "" && !auth.CanAccessPatient(identity, requested) {
		a.audit(r.Context(), identity, "intake.list", "intake", "", audit.OutcomeFailure, map[string]string{
			"reason": "forbidden",
		})
		writeError(w, r, http.StatusForbidden, "access to this patient is not permitted")
		return
	}

	scope := auth.ScopePatientID(identity, requested)
	intakes, err := a.records.ListIntakes(r.Context(), identity.TenantID, scope)
	if err != nil {
		a.audit(r.Context(), identity, "intake.list", "intake", "", audit.OutcomeFailure, map[string]string{
			"reason": "storage_error",
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if intakes == nil {
		intakes = []health.PatientIntake{}
	}

	a.audit(r.Context(), identity, "intake.list", "intake", "", audit.OutcomeSuccess, scopeMetadata(scope))
	writeJSON(w, http.StatusOK, map[string]any{"intakes": intakes})
}

func scopeMetadata(scope string) map[string]string {
	if scope == "" {
		return map[string]string{"scope": "tenant"}
	}
	return map[string]string{"scope": "patient"}
}

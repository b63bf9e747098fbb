package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/health"
)

type triageRequest struct {
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req triageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, r, []string{err.Error()})
		return
	}

	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" {
		patientID = identity.UserID
	}
	if !auth.CanAccessPatient(identity, patientID) {
		a.audit(r.Context(), identity, "triage.message", "triage", "", audit.OutcomeFailure, map[string]string{
			"reason": "forbidden",
		})
		writeError(w, r, http.StatusForbidden, "access to this patient is not permitted")
		return
	}

	message, problems := health.ValidateTriageMessage(req.Message)
	if len(problems) > 0 {
		a.audit(r.Context(), identity, "triage.message", "triage", "", audit.OutcomeFailure, map[string]string{
			"reason": "validation",
		})
		writeValidationError(w, r, problems)
		return
	}

	// Message contents never reach the audit trail; only classifications do.
	reply := a.triage.Respond(r.Context(), message)
	a.audit(r.Context(), identity, "triage.message", "triage", patientID, audit.OutcomeSuccess, map[string]string{
		"urgency":  string(reply.Urgency),
		"degraded": strconv.FormatBool(reply.Degraded),
	})
	writeJSON(w, http.StatusOK, reply)
}

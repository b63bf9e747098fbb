package auth

import "strings"

// CanAccessPatient reports whether the identity may act on the given
// patient's resources. Admins and providers may reach any patient; a patient
// only their own records. Pure function, no I/O.
func CanAccessPatient(id AuthContext, patientID string) bool {
	switch id.Role {
	case RoleAdmin, RoleProvider:
		return true
	case RolePatient:
		return id.UserID == strings.TrimSpace(patientID)
	}
	return false
}

// ScopePatientID narrows a requested patient scope to what the identity may
// see. Patients always get their own id, regardless of what was asked for;
// providers and admins keep the requested scope (empty means all patients).
func ScopePatientID(id AuthContext, requested string) string {
	if id.Role == RolePatient {
		return id.UserID
	}
	return strings.TrimSpace(requested)
}

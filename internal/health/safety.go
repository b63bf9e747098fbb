package health

import "strings"

// SafetyNotice accompanies every triage reply.
const SafetyNotice = "AI triage is informational only and not a diagnosis. If you have severe symptoms (chest pain, trouble breathing, stroke signs, heavy bleeding, or thoughts of self-harm), call 911 or go to the nearest emergency department immediately."

var emergencySignals = []string{
	"chest pain",
	"trouble breathing",
	"shortness of breath",
	"stroke",
	"fainting",
	"seizure",
	"severe bleeding",
	"suicidal",
	"self-harm",
}

// InferUrgency grades a patient message by keyword. Emergencies are detected
// before any model call so they can short-circuit to emergency guidance.
func InferUrgency(message string) TriageUrgency {
	normalized := strings.ToLower(message)
	for _, signal := range emergencySignals {
		if strings.Contains(normalized, signal) {
			return UrgencyEmergency
		}
	}
	if strings.Contains(normalized, "worse") || strings.Contains(normalized, "high fever") {
		return UrgencyUrgent
	}
	if strings.Contains(normalized, "pain") || strings.Contains(normalized, "vomit") {
		return UrgencySoon
	}
	return UrgencyRoutine
}

package health

import "testing"

func TestInferUrgency(t *testing.T) {
	cases := []struct {
		message string
		want    TriageUrgency
	}{
		{"I have crushing CHEST PAIN", UrgencyEmergency},
		{"trouble breathing since last night", UrgencyEmergency},
		{"my father is showing stroke symptoms", UrgencyEmergency},
		{"thinking about self-harm", UrgencyEmergency},
		{"fever keeps getting worse", UrgencyUrgent},
		{"running a high fever", UrgencyUrgent},
		{"mild pain in my knee", UrgencySoon},
		{"I vomited twice today", UrgencySoon},
		{"need a prescription refill", UrgencyRoutine},
		{"", UrgencyRoutine},
	}
	for _, tc := range cases {
		if got := InferUrgency(tc.message); got != tc.want {
			t.Errorf("InferUrgency(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestEmergencyOutranksLesserSignals(t *testing.T) {
	// A message can match several tiers; the highest grade must win.
	if got := InferUrgency("severe bleeding and some pain"); got != UrgencyEmergency {
		t.Fatalf("got %q", got)
	}
}

func TestSafetyNoticeMentionsEmergencyServices(t *testing.T) {
	if SafetyNotice == "" {
		t.Fatal("safety notice must not be empty")
	}
}

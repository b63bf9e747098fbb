package memory

import (
	"context"
	"testing"
	"time"

	"carefront.org/internal/audit"
	"carefront.org/internal/health"
)

func TestIntakesNewestFirstAndTenantScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := health.PatientIntake{TenantID: "tenant-001", PatientID: "patient-001", CreatedAt: time.Now().Add(-time.Hour)}
	second := health.PatientIntake{TenantID: "tenant-001", PatientID: "patient-001", CreatedAt: time.Now()}
	other := health.PatientIntake{TenantID: "tenant-002", PatientID: "patient-001"}
	for _, intake := range []*health.PatientIntake{&first, &second, &other} {
		if err := s.CreateIntake(ctx, intake); err != nil {
			t.Fatalf("CreateIntake: %v", err)
		}
	}

	got, err := s.ListIntakes(ctx, "tenant-001", "")
	if err != nil {
		t.Fatalf("ListIntakes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d intakes, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Fatal("newest intake should come first")
	}

	scoped, err := s.ListIntakes(ctx, "tenant-002", "patient-001")
	if err != nil {
		t.Fatalf("ListIntakes: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != other.ID {
		t.Fatalf("scoped = %v", scoped)
	}
}

func TestCreateIntakeAssignsIDAndTimestamp(t *testing.T) {
	s := New()
	intake := health.PatientIntake{TenantID: "tenant-001", PatientID: "patient-001"}
	if err := s.CreateIntake(context.Background(), &intake); err != nil {
		t.Fatalf("CreateIntake: %v", err)
	}
	if intake.ID == "" || intake.CreatedAt.IsZero() {
		t.Fatalf("missing defaults: %+v", intake)
	}
}

func TestAppointmentDefaults(t *testing.T) {
	s := New()
	appt := health.Appointment{TenantID: "tenant-001", PatientID: "patient-001"}
	if err := s.CreateAppointment(context.Background(), &appt); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if appt.Status != health.StatusScheduled {
		t.Fatalf("status = %q", appt.Status)
	}

	got, err := s.ListAppointments(context.Background(), "tenant-001", "patient-001")
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d appointments", len(got))
	}
}

func TestAuditTrailReturnsCopy(t *testing.T) {
	s := New()
	if err := s.AppendAudit(context.Background(), audit.Entry{Action: "intake.create"}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}

	trail := s.AuditTrail()
	if len(trail) != 1 {
		t.Fatalf("got %d entries", len(trail))
	}
	trail[0].Action = "mutated"
	if s.AuditTrail()[0].Action != "intake.create" {
		t.Fatal("AuditTrail must return a copy")
	}
}

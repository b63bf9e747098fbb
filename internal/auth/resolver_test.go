package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestResolveFromTokenClaims(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{}, verifier)

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":       "patient-001",
		"tenant_id": "tenant-001",
		"role":      "patient",
		"exp":       time.Now().Add(300 * time.Second).Unix(),
	})
	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	identity, strategy, ok := resolver.Resolve(req)
	if !ok {
		t.Fatal("expected identity")
	}
	if strategy != "token" {
		t.Fatalf("unexpected strategy: %q", strategy)
	}
	want := AuthContext{TenantID: "tenant-001", UserID: "patient-001", Role: RolePatient}
	if identity != want {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestResolveBadSignatureYieldsNothing(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{}, verifier)

	// Claims are perfectly formed; only the signature is wrong.
	raw := signToken(t, "wrong-secret", jwt.MapClaims{
		"sub":       "admin-001",
		"tenant_id": "tenant-001",
		"role":      "admin",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	if _, _, ok := resolver.Resolve(req); ok {
		t.Fatal("expected no identity for a bad signature")
	}
}

func TestResolveCustomClaimBindings(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{
		Bindings: ClaimBindings{Tenant: "org", User: "uid", Role: "access"},
	}, verifier)

	raw := signToken(t, testSecret, jwt.MapClaims{
		"uid":    "provider-009",
		"org":    "tenant-002",
		"access": "provider",
		"exp":    time.Now().Add(time.Minute).Unix(),
	})
	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	identity, _, ok := resolver.Resolve(req)
	if !ok {
		t.Fatal("expected identity")
	}
	if identity.Role != RoleProvider || identity.TenantID != "tenant-002" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestResolveInvalidRoleVoidsStep(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{}, verifier)

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":       "user-001",
		"tenant_id": "tenant-001",
		"role":      "superuser",
		"exp":       time.Now().Add(time.Minute).Unix(),
	})
	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	if _, _, ok := resolver.Resolve(req); ok {
		t.Fatal("expected role outside the closed set to void the result")
	}
}

func TestResolveHeaderFallback(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{HeaderFallback: true}, verifier)

	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("x-tenant-id", "tenant-004")
	req.Header.Set("x-user-id", "provider-002")
	req.Header.Set("x-user-role", "provider")

	identity, strategy, ok := resolver.Resolve(req)
	if !ok || strategy != "header" {
		t.Fatalf("expected header identity, got ok=%v strategy=%q", ok, strategy)
	}
	if identity.TenantID != "tenant-004" || identity.Role != RoleProvider {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestResolveHeaderFallbackDisabledByDefault(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{}, verifier)

	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("x-tenant-id", "tenant-004")
	req.Header.Set("x-user-id", "provider-002")
	req.Header.Set("x-user-role", "provider")

	if _, _, ok := resolver.Resolve(req); ok {
		t.Fatal("header fallback must be off unless explicitly enabled")
	}
}

func TestResolveFallbacksNeverActiveInProduction(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{
		HeaderFallback: true,
		DemoFallback:   true,
		Production:     true,
	}, verifier)

	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("x-tenant-id", "tenant-004")
	req.Header.Set("x-user-id", "provider-002")
	req.Header.Set("x-user-role", "provider")

	if _, _, ok := resolver.Resolve(req); ok {
		t.Fatal("no fallback may resolve in production")
	}
	if got := len(resolver.Strategies()); got != 1 {
		t.Fatalf("expected only the token strategy, got %d", got)
	}
}

func TestResolveDemoFallback(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{DemoFallback: true}, verifier)

	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	identity, strategy, ok := resolver.Resolve(req)
	if !ok || strategy != "demo" {
		t.Fatalf("expected demo identity, got ok=%v strategy=%q", ok, strategy)
	}
	if identity.Role != RolePatient || identity.TenantID == "" || identity.UserID == "" {
		t.Fatalf("unexpected demo identity: %+v", identity)
	}
}

func TestResolveTokenFailureFallsThrough(t *testing.T) {
	verifier := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	resolver := NewResolver(ResolverConfig{HeaderFallback: true}, verifier)

	req := httptest.NewRequest("GET", "/v1/intakes", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	req.Header.Set("x-tenant-id", "tenant-004")
	req.Header.Set("x-user-id", "admin-001")
	req.Header.Set("x-user-role", "admin")

	identity, strategy, ok := resolver.Resolve(req)
	if !ok || strategy != "header" {
		t.Fatalf("expected fall-through to header, got ok=%v strategy=%q", ok, strategy)
	}
	if identity.Role != RoleAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

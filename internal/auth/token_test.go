package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":       "patient-001",
		"tenant_id": "tenant-001",
		"role":      "patient",
		"exp":       time.Now().Add(5 * time.Minute).Unix(),
	})

	claims, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.String("sub") != "patient-001" {
		t.Fatalf("unexpected sub: %q", claims.String("sub"))
	}
	if claims.String("tenant_id") != "tenant-001" {
		t.Fatalf("unexpected tenant: %q", claims.String("tenant_id"))
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	raw := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "admin-001",
		"role": "admin",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "patient-001",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsNotYetValid(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "patient-001",
		"nbf": time.Now().Add(time.Hour).Unix(),
		"exp": time.Now().Add(2 * time.Hour).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: "carefront"}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "patient-001",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrUnverifiedIssuer) {
		t.Fatalf("expected ErrUnverifiedIssuer, got %v", err)
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret, Audience: "intake-api"}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "patient-001",
		"aud": "billing-api",
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrUnverifiedIssuer) {
		t.Fatalf("expected ErrUnverifiedIssuer, got %v", err)
	}
}

func TestVerifyAcceptsAudienceMembership(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret, Audience: "intake-api"}, nil)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "patient-001",
		"aud": []string{"billing-api", "intake-api"},
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	if _, err := v.Verify(context.Background(), raw); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret}, nil)
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestVerifyDelegatesToIntrospection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer a.b.c" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"patient-007","tenant_id":"tenant-003","role":"patient"}`))
	}))
	defer srv.Close()

	v := NewVerifier(VerifierConfig{}, NewIntrospectionClient(srv.URL))
	claims, err := v.Verify(context.Background(), "a.b.c")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.String("sub") != "patient-007" {
		t.Fatalf("unexpected sub: %q", claims.String("sub"))
	}
}

func TestVerifyIntrospectionFailureClosesShut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := NewVerifier(VerifierConfig{}, NewIntrospectionClient(srv.URL))
	if _, err := v.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyNoSecretNoIntrospection(t *testing.T) {
	v := NewVerifier(VerifierConfig{}, nil)
	if _, err := v.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIntrospectionClaimsTemporalChecks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"patient-007","exp":1}`))
	}))
	defer srv.Close()

	v := NewVerifier(VerifierConfig{}, NewIntrospectionClient(srv.URL))
	if _, err := v.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

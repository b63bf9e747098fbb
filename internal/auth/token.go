package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the set of identity attributes extracted from a verified
// credential, keyed by claim name.
type Claims map[string]any

// String returns the named claim as a trimmed string, or "" when absent or
// not a string.
func (c Claims) String(name string) string {
	v, ok := c[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// VerifierConfig selects the verification mode and expectations.
type VerifierConfig struct {
	// Secret enables HS256 shared-secret verification. When empty, the
	// verifier requires an introspection client and delegates to it.
	Secret   string
	Issuer   string
	Audience string
}

// Verifier validates bearer credentials and extracts claims.
type Verifier struct {
	secret     []byte
	issuer     string
	audience   string
	introspect *IntrospectionClient
	now        func() time.Time
}

// NewVerifier builds a Verifier. introspect may be nil when a shared secret
// is configured.
func NewVerifier(cfg VerifierConfig, introspect *IntrospectionClient) *Verifier {
	return &Verifier{
		secret:     []byte(strings.TrimSpace(cfg.Secret)),
		issuer:     strings.TrimSpace(cfg.Issuer),
		audience:   strings.TrimSpace(cfg.Audience),
		introspect: introspect,
		now:        time.Now,
	}
}

// Verify validates the raw credential and returns its claims. Signature
// verification happens before any claim is inspected; a mismatch fails closed
// as ErrBadSignature. The raw credential is never logged.
func (v *Verifier) Verify(ctx context.Context, raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Count(raw, ".") != 2 {
		return nil, ErrInvalidToken
	}
	if len(v.secret) > 0 {
		return v.verifyHS256(raw)
	}
	if v.introspect == nil {
		return nil, ErrInvalidToken
	}
	claims, err := v.introspect.Introspect(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := v.checkStandardClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) verifyHS256(raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.NewParser(opts...).Parse(raw, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, ErrUnverifiedIssuer
	case err != nil:
		return nil, ErrInvalidToken
	}

	mapped, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return Claims(mapped), nil
}

// checkStandardClaims enforces temporal and issuer/audience expectations on
// claims returned by the introspection collaborator, which are not covered by
// the jwt parser.
func (v *Verifier) checkStandardClaims(claims Claims) error {
	now := v.now().Unix()
	if exp, ok := numericClaim(claims["exp"]); ok && now > exp {
		return ErrTokenExpired
	}
	if nbf, ok := numericClaim(claims["nbf"]); ok && now < nbf {
		return ErrTokenExpired
	}
	if v.issuer != "" && claims.String("iss") != v.issuer {
		return ErrUnverifiedIssuer
	}
	if v.audience != "" && !audienceContains(claims["aud"], v.audience) {
		return ErrUnverifiedIssuer
	}
	return nil
}

func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func audienceContains(aud any, want string) bool {
	switch a := aud.(type) {
	case string:
		return a == want
	case []string:
		for _, s := range a {
			if s == want {
				return true
			}
		}
	case []any:
		for _, s := range a {
			if s == want {
				return true
			}
		}
	}
	return false
}

package auth

import (
	"net/http"
	"strings"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "

	headerTenant = "x-tenant-id"
	headerUser   = "x-user-id"
	headerRole   = "x-user-role"
)

// Strategy is one named way of establishing an identity from a request.
// Strategies must not panic and must not produce partial results: either a
// complete AuthContext or nothing.
type Strategy struct {
	Name    string
	Resolve func(r *http.Request) (AuthContext, bool)
}

// ResolverConfig assembles the strategy chain.
type ResolverConfig struct {
	Bindings ClaimBindings

	// HeaderFallback admits identity straight from request headers. Trusted
	// internal callers only; default off.
	HeaderFallback bool

	// DemoFallback returns a fixed identity when nothing else matched.
	// Ignored when Production is true.
	DemoFallback bool
	Production   bool
	DemoTenant   string
	DemoUser     string
	DemoRole     string
}

// Resolver evaluates an ordered list of strategies; the first complete
// identity wins. A failing strategy never aborts the chain.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the strategy chain in fixed precedence order:
// verified token claims, then the header fallback (if enabled), then the
// demo identity (non-production only).
func NewResolver(cfg ResolverConfig, verifier *Verifier) *Resolver {
	bindings := cfg.Bindings
	if bindings.Tenant == "" {
		bindings.Tenant = DefaultClaimBindings.Tenant
	}
	if bindings.User == "" {
		bindings.User = DefaultClaimBindings.User
	}
	if bindings.Role == "" {
		bindings.Role = DefaultClaimBindings.Role
	}

	strategies := []Strategy{tokenStrategy(verifier, bindings)}
	if cfg.HeaderFallback && !cfg.Production {
		strategies = append(strategies, headerStrategy())
	}
	if cfg.DemoFallback && !cfg.Production {
		strategies = append(strategies, demoStrategy(cfg))
	}
	return &Resolver{strategies: strategies}
}

// Resolve returns the first identity any strategy produces, along with the
// winning strategy's name.
func (res *Resolver) Resolve(r *http.Request) (AuthContext, string, bool) {
	for _, s := range res.strategies {
		if id, ok := s.Resolve(r); ok {
			return id, s.Name, true
		}
	}
	return AuthContext{}, "", false
}

// Strategies exposes the configured chain, in evaluation order.
func (res *Resolver) Strategies() []Strategy {
	out := make([]Strategy, len(res.strategies))
	copy(out, res.strategies)
	return out
}

func tokenStrategy(verifier *Verifier, bindings ClaimBindings) Strategy {
	return Strategy{
		Name: "token",
		Resolve: func(r *http.Request) (AuthContext, bool) {
			if verifier == nil {
				return AuthContext{}, false
			}
			token, err := extractBearerToken(r.Header.Get(authHeader))
			if err != nil {
				return AuthContext{}, false
			}
			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				return AuthContext{}, false
			}
			return NewAuthContext(
				claims.String(bindings.Tenant),
				claims.String(bindings.User),
				claims.String(bindings.Role),
			)
		},
	}
}

func headerStrategy() Strategy {
	return Strategy{
		Name: "header",
		Resolve: func(r *http.Request) (AuthContext, bool) {
			return NewAuthContext(
				r.Header.Get(headerTenant),
				r.Header.Get(headerUser),
				r.Header.Get(headerRole),
			)
		},
	}
}

func demoStrategy(cfg ResolverConfig) Strategy {
	tenant := cfg.DemoTenant
	if tenant == "" {
		tenant = "tenant-demo-001"
	}
	user := cfg.DemoUser
	if user == "" {
		user = "patient-demo-001"
	}
	role := cfg.DemoRole
	if _, ok := ParseRole(role); !ok {
		role = string(RolePatient)
	}
	return Strategy{
		Name: "demo",
		Resolve: func(*http.Request) (AuthContext, bool) {
			return NewAuthContext(tenant, user, role)
		},
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrUnauthenticated
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerScheme)) {
		return "", ErrUnauthenticated
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}

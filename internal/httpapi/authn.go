package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/obs"
	"carefront.org/internal/ratelimit"
)

// secured wraps a handler with the full request security chain: identity
// resolution, per-actor admission, and context propagation. Authentication
// and rate-limit rejections short-circuit before any business logic and are
// audited with reason codes only.
func (a *API) secured(action string, limit int, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, strategy, ok := a.resolver.Resolve(r)
		if !ok {
			obs.CountAuthFailure("unauthenticated")
			a.audit(r.Context(), auth.AuthContext{}, action, "request", "", audit.OutcomeFailure, map[string]string{
				"reason": "unauthenticated",
			})
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		decision := a.limiter.Check(
			ratelimit.Key(identity.TenantID, identity.UserID, action),
			limit, a.limits.Window,
		)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			obs.CountRateLimited(action)
			a.audit(r.Context(), identity, action, "request", "", audit.OutcomeFailure, map[string]string{
				"reason":   "rate_limited",
				"strategy": strategy,
			})
			w.Header().Set("Retry-After", strconv.FormatInt(decision.ResetAt.Unix(), 10))
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// audit records one security-relevant outcome, correlated by request id.
func (a *API) audit(ctx context.Context, identity auth.AuthContext, action, resourceType, resourceID string, outcome audit.Outcome, metadata map[string]string) {
	actorID := identity.UserID
	actorRole := string(identity.Role)
	tenantID := identity.TenantID
	if strings.TrimSpace(actorID) == "" {
		actorID = "anonymous"
		actorRole = "unknown"
		tenantID = "unknown"
	}
	a.auditor.Write(ctx, audit.Entry{
		TenantID:     tenantID,
		ActorID:      actorID,
		ActorRole:    actorRole,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Metadata:     metadata,
		RequestID:    RequestIDFromContext(ctx),
	})
}

// identity returns the resolved identity; secured guarantees presence on
// every protected route.
func identityFrom(r *http.Request) (auth.AuthContext, bool) {
	return auth.IdentityFromContext(r.Context())
}

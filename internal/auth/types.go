package auth

import "strings"

// Role is the closed set of application roles.
type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole normalizes a raw value into a Role. Anything outside the closed
// set is rejected.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RolePatient:
		return RolePatient, true
	case RoleProvider:
		return RoleProvider, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// AuthContext is the canonical per-request identity. All fields are non-empty
// by construction; instances are immutable and never cached across requests.
type AuthContext struct {
	TenantID string
	UserID   string
	Role     Role
}

// NewAuthContext builds an AuthContext, rejecting empty fields and roles
// outside the closed set.
func NewAuthContext(tenantID, userID, role string) (AuthContext, bool) {
	tenantID = strings.TrimSpace(tenantID)
	userID = strings.TrimSpace(userID)
	parsed, ok := ParseRole(role)
	if tenantID == "" || userID == "" || !ok {
		return AuthContext{}, false
	}
	return AuthContext{TenantID: tenantID, UserID: userID, Role: parsed}, true
}

// ClaimBindings names the token claims the tenant, user and role are read
// from. A fixed struct keeps the mapping auditable.
type ClaimBindings struct {
	Tenant string
	User   string
	Role   string
}

// DefaultClaimBindings matches the conventional claim layout.
var DefaultClaimBindings = ClaimBindings{Tenant: "tenant_id", User: "sub", Role: "role"}

// Package tenant carries the per-request tenant scope and authenticated
// principal through context.Context. The scope is the single source of truth
// for the tenant query filter; it is produced once per request by the
// resolver or the auth middleware and never cached anywhere else.
package tenant

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	scopeKey     ctxKey = "tenant_scope"
	principalKey ctxKey = "principal"
)

// Scope identifies the tenant context of the current request. A host scope
// (nil TenantID, Host true) disables tenant filtering entirely; it is only
// produced by the reserved-subdomain branch of resolution or by a host-level
// token.
type Scope struct {
	TenantID *uuid.UUID
	Slug     string
	Host     bool
}

// HostScope returns the unrestricted scope used by host/system-admin
// requests.
func HostScope() Scope {
	return Scope{Host: true}
}

// ForTenant returns a scope bound to one tenant.
func ForTenant(id uuid.UUID, slug string) Scope {
	return Scope{TenantID: &id, Slug: slug}
}

// Tenant returns the bound tenant id, or uuid.Nil for a host scope.
func (s Scope) Tenant() uuid.UUID {
	if s.TenantID == nil {
		return uuid.Nil
	}
	return *s.TenantID
}

// IsHost reports whether the scope applies no tenant restriction. A scope
// carrying the empty-uuid sentinel is treated the same as an explicit host
// scope.
func (s Scope) IsHost() bool {
	return s.Host || s.TenantID == nil || *s.TenantID == uuid.Nil
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// NewContext binds the scope into the context.
func NewContext(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// FromContext returns the bound scope. ok is false when no resolution ran,
// which only happens outside the request pipeline (startup, audit writes).
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey).(Scope)
	return s, ok
}

// WithPrincipal binds the authenticated caller into the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Actor returns the current user id for audit stamping, or uuid.Nil when the
// request is anonymous.
func Actor(ctx context.Context) uuid.UUID {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID
	}
	return uuid.Nil
}

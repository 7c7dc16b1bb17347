package repository

import (
	"context"
	"time"

	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
)

// stampCreate sets audit fields and defaults the tenant reference for a new
// entity. The actor is the authenticated principal, or uuid.Nil for
// anonymous writes (registration, seeding).
func stampCreate[T any](ctx context.Context, entity *T, now time.Time) {
	if a, ok := any(entity).(model.Auditable); ok {
		a.StampCreated(tenant.Actor(ctx), now)
	}
	bindTenant(ctx, entity)
}

func stampUpdate[T any](ctx context.Context, entity *T, now time.Time) {
	if a, ok := any(entity).(model.Auditable); ok {
		a.StampUpdated(tenant.Actor(ctx), now)
	}
}

// bindTenant fills an unset tenant reference from the request scope. Host
// scopes leave it nil, which marks the row as global.
func bindTenant[T any](ctx context.Context, entity *T) {
	owned, ok := any(entity).(model.TenantOwned)
	if !ok || owned.TenantRef() != nil {
		return
	}
	sc, ok := tenant.FromContext(ctx)
	if !ok || sc.IsHost() {
		return
	}
	if setter, ok := any(entity).(interface{ SetTenant(id uuid.UUID) }); ok {
		setter.SetTenant(sc.Tenant())
	}
}

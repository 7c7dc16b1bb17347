package repository

import (
	"context"
	"testing"

	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
)

// Soft deletes carry the same updated-by bookkeeping as ordinary updates,
// alongside the deletion marker itself.
func TestSoftDeleteStampsAuditTrail(t *testing.T) {
	db := dryRunDB(t)
	repo := New[model.Role](db)

	actor := uuid.New()
	ctx := tenant.WithPrincipal(context.Background(), tenant.Principal{UserID: actor})

	role := &model.Role{ID: uuid.New(), Name: "Editor"}
	if err := repo.Delete(ctx, role); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !role.Deleted() {
		t.Fatal("deletion marker not set")
	}
	if role.DeletedBy == nil || *role.DeletedBy != actor {
		t.Errorf("DeletedBy = %v, want %v", role.DeletedBy, actor)
	}
	if role.UpdatedBy != actor {
		t.Errorf("UpdatedBy = %v, want %v", role.UpdatedBy, actor)
	}
	if !role.UpdatedAt.Equal(role.DeletedAt.Time) {
		t.Errorf("UpdatedAt = %v, want the deletion time %v", role.UpdatedAt, role.DeletedAt.Time)
	}
}

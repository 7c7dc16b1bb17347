package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStampCreatedSetsBothPairs(t *testing.T) {
	var a AuditFields
	by := uuid.New()
	at := time.Now()

	a.StampCreated(by, at)
	if a.CreatedBy != by || a.UpdatedBy != by {
		t.Fatal("StampCreated should set created and updated actor")
	}
	if !a.CreatedAt.Equal(at) || !a.UpdatedAt.Equal(at) {
		t.Fatal("StampCreated should set created and updated time")
	}
}

func TestStampUpdatedLeavesCreation(t *testing.T) {
	var a AuditFields
	creator, editor := uuid.New(), uuid.New()
	created := time.Now().Add(-time.Hour)
	edited := time.Now()

	a.StampCreated(creator, created)
	a.StampUpdated(editor, edited)

	if a.CreatedBy != creator || !a.CreatedAt.Equal(created) {
		t.Fatal("update must not touch the creation record")
	}
	if a.UpdatedBy != editor || !a.UpdatedAt.Equal(edited) {
		t.Fatal("update record not stamped")
	}
}

func TestMarkDeletedIdempotent(t *testing.T) {
	var s SoftDelete
	first, second := uuid.New(), uuid.New()
	firstAt := time.Now().Add(-time.Minute)

	s.MarkDeleted(first, firstAt)
	if !s.Deleted() {
		t.Fatal("row should be deleted after MarkDeleted")
	}

	s.MarkDeleted(second, time.Now())
	if *s.DeletedBy != first || !s.DeletedAt.Time.Equal(firstAt) {
		t.Fatal("repeated delete must keep the original deletion record")
	}
}

func TestOwnedSetTenant(t *testing.T) {
	var o Owned
	if o.TenantRef() != nil {
		t.Fatal("fresh row should be unowned")
	}
	id := uuid.New()
	o.SetTenant(id)
	if o.TenantRef() == nil || *o.TenantRef() != id {
		t.Fatal("SetTenant did not bind the tenant")
	}
}

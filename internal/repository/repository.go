// Package repository provides the generic CRUD surface over gorm plus the
// model-wide tenant query filter. Audit stamping goes through the
// model.Auditable interface only; delete semantics depend on whether the
// entity implements model.SoftDeletable.
package repository

import (
	"context"
	"errors"
	"time"

	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDetached is returned when Update is called with an entity that has no
// primary key. gorm would otherwise turn such an update into a full-table
// write, so the precondition is surfaced instead.
var ErrDetached = errors.New("repository: update requires a persisted entity with a primary key")

// Keyed is implemented by all entities; the repository uses it to check the
// detached-update precondition.
type Keyed interface {
	PrimaryKey() uuid.UUID
}

// Repository is a generic data-access surface for one entity type. All
// methods take the request context so the tenant scope and acting principal
// travel with every call.
type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// DB exposes the scoped handle for joins the generic surface cannot express.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Get returns the entity by primary key, or nil when it does not exist.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// First returns the first entity matching the predicate, or nil.
func (r *Repository[T]) First(ctx context.Context, query any, args ...any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(query, args...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns all entities matching the predicate.
func (r *Repository[T]) List(ctx context.Context, query any, args ...any) ([]T, error) {
	var entities []T
	tx := r.db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Page returns one page of entities matching the predicate plus the total
// match count.
func (r *Repository[T]) Page(ctx context.Context, offset, limit int, query any, args ...any) ([]T, int64, error) {
	var entities []T
	var total int64
	var probe T

	tx := r.db.WithContext(ctx).Model(&probe)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := tx.Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// Any reports whether at least one entity matches the predicate.
func (r *Repository[T]) Any(ctx context.Context, query any, args ...any) (bool, error) {
	n, err := r.Count(ctx, query, args...)
	return n > 0, err
}

// Count returns the number of entities matching the predicate.
func (r *Repository[T]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var probe T
	var n int64
	tx := r.db.WithContext(ctx).Model(&probe)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts the entity, stamping audit fields and defaulting the tenant
// reference to the current scope so a tenant-bound request cannot insert
// rows into another tenant.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	stampCreate(ctx, entity, time.Now().UTC())
	return r.db.WithContext(ctx).Create(entity).Error
}

// CreateAll inserts a batch, stamping each entity.
func (r *Repository[T]) CreateAll(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, e := range entities {
		stampCreate(ctx, e, now)
	}
	return r.db.WithContext(ctx).Create(entities).Error
}

// Update persists all fields of an already-loaded entity.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	if k, ok := any(entity).(Keyed); ok && k.PrimaryKey() == uuid.Nil {
		return ErrDetached
	}
	stampUpdate(ctx, entity, time.Now().UTC())
	return r.db.WithContext(ctx).Save(entity).Error
}

// UpdateAll persists a batch of already-loaded entities.
func (r *Repository[T]) UpdateAll(ctx context.Context, entities []*T) error {
	for _, e := range entities {
		if err := r.Update(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the entity. Soft-deletable entities get their marker set
// (repeated deletes keep the original marker); others are removed for real.
func (r *Repository[T]) Delete(ctx context.Context, entity *T) error {
	if sd, ok := any(entity).(model.SoftDeletable); ok {
		now := time.Now().UTC()
		sd.MarkDeleted(tenant.Actor(ctx), now)
		// a soft delete is still a mutation, so it carries the same
		// updated-by trail as any other write
		stampUpdate(ctx, entity, now)
		return r.db.WithContext(ctx).Select("DeletedAt", "DeletedBy", "UpdatedAt", "UpdatedBy").Save(entity).Error
	}
	return r.db.WithContext(ctx).Delete(entity).Error
}

// DeleteByID removes the entity with the given id. A missing id is a no-op,
// not an error.
func (r *Repository[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	entity, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}
	return r.Delete(ctx, entity)
}

// DeleteWhere removes all entities matching the predicate, honoring soft
// delete when the type declares it (gorm handles that through
// gorm.DeletedAt).
func (r *Repository[T]) DeleteWhere(ctx context.Context, query any, args ...any) error {
	var probe T
	return r.db.WithContext(ctx).Where(query, args...).Delete(&probe).Error
}

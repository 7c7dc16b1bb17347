package repository

import (
	"reflect"

	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantFieldName = "TenantID"

// RegisterTenantScope attaches the model-wide tenant filter to the gorm
// instance. It runs before gorm's own query/row/update/delete callbacks for
// every statement whose model type implements model.TenantOwned, whenever
// the statement context carries a tenant-bound scope. Reads append
//
//	tenant_id = <scope tenant> OR tenant_id IS NULL
//
// so global rows stay visible in every tenant, while updates and deletes
// append only
//
//	tenant_id = <scope tenant>
//
// so a tenant-scoped request can never mutate a global row. Host scopes and
// scope-less contexts (startup, audit writes) apply no restriction.
//
// The scope is re-read from the statement context on every access; nothing
// tenant-specific is ever bound into the shared *gorm.DB, so reusing the
// handle across requests cannot leak one request's tenant into another.
func RegisterTenantScope(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("adminportal:tenant_scope_query", scopeReads); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("adminportal:tenant_scope_row", scopeReads); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("adminportal:tenant_scope_update", scopeWrites); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register("adminportal:tenant_scope_delete", scopeWrites)
}

var tenantOwnedType = reflect.TypeOf((*model.TenantOwned)(nil)).Elem()

// scopeColumn resolves the tenant column and scope tenant for the statement,
// or reports false when the statement is unrestricted.
func scopeColumn(tx *gorm.DB) (clause.Column, uuid.UUID, bool) {
	sc, ok := tenant.FromContext(tx.Statement.Context)
	if !ok || sc.IsHost() {
		return clause.Column{}, uuid.Nil, false
	}
	if tx.Statement.Schema == nil {
		return clause.Column{}, uuid.Nil, false
	}
	if !reflect.PointerTo(tx.Statement.Schema.ModelType).Implements(tenantOwnedType) {
		return clause.Column{}, uuid.Nil, false
	}
	field := tx.Statement.Schema.LookUpField(tenantFieldName)
	if field == nil {
		return clause.Column{}, uuid.Nil, false
	}
	return clause.Column{Table: clause.CurrentTable, Name: field.DBName}, sc.Tenant(), true
}

func scopeReads(tx *gorm.DB) {
	column, id, ok := scopeColumn(tx)
	if !ok {
		return
	}
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Or(
			clause.Eq{Column: column, Value: id},
			clause.Eq{Column: column, Value: nil},
		),
	}})
}

func scopeWrites(tx *gorm.DB) {
	column, id, ok := scopeColumn(tx)
	if !ok {
		return
	}
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: column, Value: id},
	}})
}

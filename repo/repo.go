// Package repo defines the storage capability surface for entities.
// Adapters implement it on concrete stores, consuming the entity handle's
// column and value extraction; the core never generates queries itself.
package repo

import (
	"context"
	"errors"

	"github.com/weftlabs/weft/entity"
)

// Params filter records by column value.
type Params map[string]any

// Repo is the capability surface storage adapters provide.
//
// "Not found" is a valid, non-error outcome: Find reports it through its
// boolean, never through an error. Validation failures are
// *entity.ValidationErrors and therefore always distinguishable from an
// absent record.
type Repo interface {
	Save(ctx context.Context, e *entity.Entity, data map[string]any) (map[string]any, error)
	Update(ctx context.Context, e *entity.Entity, data map[string]any, params Params) (int64, error)
	Delete(ctx context.Context, e *entity.Entity, params Params) (int64, error)
	Find(ctx context.Context, e *entity.Entity, params Params) (map[string]any, bool, error)
	FindAll(ctx context.Context, e *entity.Entity, params Params) ([]map[string]any, error)
}

// Constraint violations reported by adapters, mapped from store-specific
// error codes.
var (
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
	ErrNotNullViolation    = errors.New("not null constraint violation")
	ErrCheckViolation      = errors.New("check constraint violation")

	// ErrUnknownColumn is returned when data or params name a field that
	// is not part of the entity's persisted column set.
	ErrUnknownColumn = errors.New("unknown column")
)

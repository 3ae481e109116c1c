// Package postgres implements the repo capability surface on a Postgres
// database through database/sql. Statements are assembled from the entity
// handle's column set only — identifiers never come from request data.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/weftlabs/weft/entity"
	"github.com/weftlabs/weft/repo"
	"github.com/weftlabs/weft/schema"
)

// Store is a Postgres-backed Repo.
type Store struct {
	db *sql.DB
}

// New creates a store on an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ repo.Repo = (*Store)(nil)

// Save validates and inserts a record. A missing uuid primary key is
// generated. The returned record is the input plus any generated key.
func (s *Store) Save(ctx context.Context, e *entity.Entity, data map[string]any) (map[string]any, error) {
	record := make(map[string]any, len(data)+1)
	for k, v := range data {
		record[k] = v
	}

	if pk, ok, err := e.PrimaryKeyField(); err != nil {
		return nil, err
	} else if ok && record[pk.Name] == nil {
		if prim, isPrim := pk.Type.(schema.Primitive); isPrim && prim.Kind == schema.KindUUID {
			record[pk.Name] = uuid.New().String()
		}
	}

	if err := e.Validate(record); err != nil {
		return nil, err
	}

	table, err := e.TableName()
	if err != nil {
		return nil, err
	}
	columns, err := e.Columns()
	if err != nil {
		return nil, err
	}
	values, err := e.Values(record)
	if err != nil {
		return nil, err
	}

	// Skip absent optional columns so database defaults apply.
	insertCols := make([]string, 0, len(columns))
	insertVals := make([]any, 0, len(values))
	for i, col := range columns {
		if values[i] == nil {
			continue
		}
		insertCols = append(insertCols, col)
		insertVals = append(insertVals, values[i])
	}

	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, insertVals...); err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

// Update sets the given fields on every record matching params and returns
// the number of affected rows.
func (s *Store) Update(ctx context.Context, e *entity.Entity, data map[string]any, params repo.Params) (int64, error) {
	table, err := e.TableName()
	if err != nil {
		return 0, err
	}
	if err := s.checkColumns(e, data, params); err != nil {
		return 0, err
	}

	setCols := sortedKeys(data)
	assignments := make([]string, len(setCols))
	args := make([]any, 0, len(setCols)+len(params))
	for i, col := range setCols {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, data[col])
	}

	where, args := whereClause(params, args)
	query := fmt.Sprintf("UPDATE %s SET %s%s",
		table, strings.Join(assignments, ", "), where)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

// Delete removes every record matching params and returns the number of
// affected rows.
func (s *Store) Delete(ctx context.Context, e *entity.Entity, params repo.Params) (int64, error) {
	table, err := e.TableName()
	if err != nil {
		return 0, err
	}
	if err := s.checkColumns(e, nil, params); err != nil {
		return 0, err
	}

	where, args := whereClause(params, nil)
	query := fmt.Sprintf("DELETE FROM %s%s", table, where)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

// Find returns the first record matching params. An absent record is a
// non-error outcome: found is false and err is nil.
func (s *Store) Find(ctx context.Context, e *entity.Entity, params repo.Params) (map[string]any, bool, error) {
	records, err := s.query(ctx, e, params, 1)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

// FindAll returns every record matching params, or every record when
// params is empty.
func (s *Store) FindAll(ctx context.Context, e *entity.Entity, params repo.Params) ([]map[string]any, error) {
	return s.query(ctx, e, params, 0)
}

func (s *Store) query(ctx context.Context, e *entity.Entity, params repo.Params, limit int) ([]map[string]any, error) {
	table, err := e.TableName()
	if err != nil {
		return nil, err
	}
	columns, err := e.Columns()
	if err != nil {
		return nil, err
	}
	if err := s.checkColumns(e, nil, params); err != nil {
		return nil, err
	}

	where, args := whereClause(params, nil)
	query := fmt.Sprintf("SELECT %s FROM %s%s",
		strings.Join(columns, ", "), table, where)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// checkColumns rejects data or param keys outside the persisted column
// set before they can reach an identifier position.
func (s *Store) checkColumns(e *entity.Entity, data map[string]any, params repo.Params) error {
	columns, err := e.Columns()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}
	for key := range data {
		if !known[key] {
			return fmt.Errorf("%w: %s", repo.ErrUnknownColumn, key)
		}
	}
	for key := range params {
		if !known[key] {
			return fmt.Errorf("%w: %s", repo.ErrUnknownColumn, key)
		}
	}
	return nil
}

// whereClause builds a deterministic WHERE clause; params iterate in
// sorted key order so generated SQL is stable.
func whereClause(params repo.Params, args []any) (string, []any) {
	if len(params) == 0 {
		return "", args
	}
	keys := sortedKeys(params)
	conditions := make([]string, len(keys))
	for i, key := range keys {
		conditions[i] = fmt.Sprintf("%s = $%d", key, len(args)+1)
		args = append(args, params[key])
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeValue converts driver byte slices to strings.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// mapError translates Postgres error codes into the repo sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repo.ErrUniqueViolation, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", repo.ErrForeignKeyViolation, pgErr.ConstraintName)
		case "23502":
			return fmt.Errorf("%w: %s", repo.ErrNotNullViolation, pgErr.ColumnName)
		case "23514":
			return fmt.Errorf("%w: %s", repo.ErrCheckViolation, pgErr.ConstraintName)
		}
	}
	return err
}

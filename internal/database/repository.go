package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// table implements the repositories of one record kind. Every statement is
// built from the kind's mapping table.
type table[T model.Record] struct {
	s *SQLStore
	e entity[T]
}

var (
	_ inventory.Repository[model.Site]                       = (*table[model.Site])(nil)
	_ inventory.DependentRepository[model.Equipment]         = (*table[model.Equipment])(nil)
	_ inventory.DependentRepository[model.NetworkConnection] = (*table[model.NetworkConnection])(nil)
	_ inventory.DependentRepository[model.IPRange]           = (*table[model.IPRange])(nil)
)

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}

func (t *table[T]) selectFrom(where string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", quoteColumns(t.e.fields.Columns()), t.e.table())
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

func (t *table[T]) query(ctx context.Context, action, query string, args ...any) ([]T, error) {
	d := t.s.dialect
	rows, err := t.s.q.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, classify(d, action, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := t.e.scan(d, rows)
		if err != nil {
			return nil, classify(d, action, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(d, action, err)
	}
	return out, nil
}

func (t *table[T]) FetchAll(ctx context.Context) ([]T, error) {
	return t.query(ctx, "fetching "+string(t.e.kind), t.selectFrom("")+" ORDER BY created_at, id")
}

// FetchByID inside a transaction locks the row until the transaction ends.
func (t *table[T]) FetchByID(ctx context.Context, id string) (T, error) {
	d := t.s.dialect
	q := t.selectFrom("id = ?")
	if t.s.tx != nil {
		q += d.lockSuffix()
	}
	row := t.s.q.QueryRowContext(ctx, d.rebind(q), id)
	v, err := t.e.scan(d, row)
	if err != nil {
		var zero T
		return zero, classify(d, fmt.Sprintf("fetching %s %s", t.e.kind, id), err)
	}
	return v, nil
}

func (t *table[T]) FetchBySite(ctx context.Context, siteID string) ([]T, error) {
	return t.query(ctx, fmt.Sprintf("fetching %s of site %s", t.e.kind, siteID),
		t.selectFrom("site_id = ?")+" ORDER BY created_at, id", siteID)
}

func (t *table[T]) FetchUnassigned(ctx context.Context) ([]T, error) {
	return t.query(ctx, "fetching unassigned "+string(t.e.kind),
		t.selectFrom("site_id IS NULL")+" ORDER BY created_at, id")
}

func (t *table[T]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	v, err := t.e.prepare(v)
	if err != nil {
		return zero, err
	}
	if v.RecordID() == "" {
		return zero, &inventory.ValidationError{Field: "id", Reason: "is required"}
	}
	args, err := t.e.args(t.s.dialect, v)
	if err != nil {
		return zero, err
	}

	cols := t.e.fields.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.e.table(), quoteColumns(cols), placeholders)
	if _, err := t.s.q.ExecContext(ctx, t.s.dialect.rebind(q), args...); err != nil {
		return zero, classify(t.s.dialect, "inserting "+string(t.e.kind), err)
	}
	return v, nil
}

// Update reads the current row, merges the patch, validates the result and
// writes back only the patched columns together with updated_at.
func (t *table[T]) Update(ctx context.Context, id string, patch model.Patch, at time.Time) (T, error) {
	var out T
	cols, err := patch.Columns(t.e.fields)
	if err != nil {
		return out, err
	}
	err = t.s.inTx(ctx, func(tx *SQLStore) error {
		tt := &table[T]{s: tx, e: t.e}
		current, err := tt.FetchByID(ctx, id)
		if err != nil {
			return err
		}
		merged, err := model.Apply(current, t.e.fields, patch)
		if err != nil {
			return err
		}
		if merged, err = t.e.prepare(merged); err != nil {
			return err
		}
		out, err = tt.writeColumns(ctx, merged, cols, at)
		return err
	})
	return out, err
}

// writeColumns stamps updated_at on v and stores the given columns of it.
func (t *table[T]) writeColumns(ctx context.Context, v T, cols []string, at time.Time) (T, error) {
	var zero T
	args, err := t.e.args(t.s.dialect, v)
	if err != nil {
		return zero, err
	}
	updatedAt := t.e.fields.Index("updated_at")
	args[updatedAt] = at
	cols = append(cols, "updated_at")

	sets := make([]string, len(cols))
	setArgs := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = fmt.Sprintf(`"%s" = ?`, c)
		setArgs = append(setArgs, args[t.e.fields.Index(c)])
	}
	setArgs = append(setArgs, v.RecordID())

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.e.table(), strings.Join(sets, ", "))
	res, err := t.s.q.ExecContext(ctx, t.s.dialect.rebind(q), setArgs...)
	if err != nil {
		return zero, classify(t.s.dialect, fmt.Sprintf("updating %s %s", t.e.kind, v.RecordID()), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, fmt.Errorf("updating %s %s: %w", t.e.kind, v.RecordID(), inventory.ErrNotFound)
	}
	return t.FetchByID(ctx, v.RecordID())
}

func (t *table[T]) SetSite(ctx context.Context, id, siteID string, at time.Time) (T, error) {
	var siteRef sql.NullString
	if siteID != "" {
		siteRef = sql.NullString{String: siteID, Valid: true}
	}
	q := fmt.Sprintf("UPDATE %s SET site_id = ?, updated_at = ? WHERE id = ?", t.e.table())
	res, err := t.s.q.ExecContext(ctx, t.s.dialect.rebind(q), siteRef, at, id)
	if err != nil {
		var zero T
		return zero, classify(t.s.dialect, fmt.Sprintf("setting site of %s %s", t.e.kind, id), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var zero T
		return zero, fmt.Errorf("setting site of %s %s: %w", t.e.kind, id, inventory.ErrNotFound)
	}
	return t.FetchByID(ctx, id)
}

func (t *table[T]) DeleteByID(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.e.table())
	res, err := t.s.q.ExecContext(ctx, t.s.dialect.rebind(q), id)
	if err != nil {
		return classify(t.s.dialect, fmt.Sprintf("deleting %s %s", t.e.kind, id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(t.s.dialect, fmt.Sprintf("deleting %s %s", t.e.kind, id), err)
	}
	if n == 0 {
		return fmt.Errorf("deleting %s %s: %w", t.e.kind, id, inventory.ErrNotFound)
	}
	return nil
}

func (t *table[T]) DeleteBySite(ctx context.Context, siteID string) (int64, error) {
	action := fmt.Sprintf("deleting %s of site %s", t.e.kind, siteID)
	if siteID == "" {
		return 0, errors.New(action + ": empty site id")
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE site_id = ?", t.e.table())
	res, err := t.s.q.ExecContext(ctx, t.s.dialect.rebind(q), siteID)
	if err != nil {
		return 0, classify(t.s.dialect, action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(t.s.dialect, action, err)
	}
	return n, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netinv/internal/inventory"
)

// Operation audit tracking

func (s *SQLStore) CreateOperation(ctx context.Context, op inventory.Operation) (inventory.Operation, error) {
	op.Status = inventory.StatusRunning
	op.FinishedAt = nil
	q := s.dialect.rebind(`INSERT INTO operations (operation, parameters, user_id, started_at, status)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := s.q.QueryRowContext(ctx, q, op.Operation, op.Parameters, op.UserID, op.StartedAt, op.Status).Scan(&op.ID)
	if err != nil {
		return inventory.Operation{}, classify(s.dialect, "creating operation", err)
	}
	return op, nil
}

func (s *SQLStore) FinishOperation(ctx context.Context, id int64, status string, at time.Time) error {
	q := s.dialect.rebind("UPDATE operations SET finished_at = ?, status = ? WHERE id = ?")
	res, err := s.q.ExecContext(ctx, q, at, status, id)
	if err != nil {
		return classify(s.dialect, "finishing operation", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing operation %d: %w", id, inventory.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListOperations(ctx context.Context, limit int) ([]inventory.Operation, error) {
	q := s.dialect.rebind(`SELECT id, operation, parameters, user_id, started_at, finished_at, status
		FROM operations ORDER BY id DESC LIMIT ?`)
	rows, err := s.q.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, classify(s.dialect, "listing operations", err)
	}
	defer rows.Close()

	ops := []inventory.Operation{}
	for rows.Next() {
		var op inventory.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.UserID, &op.StartedAt, &finished, &op.Status); err != nil {
			return nil, classify(s.dialect, "listing operations", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(s.dialect, "listing operations", err)
	}
	return ops, nil
}

func (s *SQLStore) MaxOperationID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.q.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id); err != nil {
		return 0, classify(s.dialect, "getting max operation ID", err)
	}
	return id, nil
}

package inventory

import (
	"context"
	"errors"
	"fmt"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 50

// History returns the most recent audited operations, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	ops, err := s.store.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// StatusFor maps the outcome of a mutating workflow to an operation status.
func StatusFor(err error) string {
	if err == nil {
		return StatusSuccess
	}
	var cerr *CascadeError
	if errors.As(err, &cerr) {
		switch {
		case cerr.RolledBack:
			return StatusRolledBack
		case cerr.Partial():
			return StatusPartial
		}
	}
	return StatusError
}

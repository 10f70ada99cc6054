package inventory

import (
	"context"
	"time"

	"netinv/internal/model"
)

// Repository issues the point queries for one record kind. Implementations
// translate between view records and storage rows through the kind's
// mapping table.
type Repository[T model.Record] interface {
	// FetchAll returns every record; callers filter client-side.
	FetchAll(ctx context.Context) ([]T, error)

	// FetchByID returns ErrNotFound when the id is absent.
	FetchByID(ctx context.Context, id string) (T, error)

	// Insert stores a fully populated record. It fails with
	// ErrConstraintViolation when required fields are missing or malformed.
	Insert(ctx context.Context, v T) (T, error)

	// Update applies a partial patch keyed by field name, re-validates the
	// merged record and stamps updated_at. ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, patch model.Patch, at time.Time) (T, error)

	// DeleteByID removes one record. Deleting a missing id is ErrNotFound.
	DeleteByID(ctx context.Context, id string) error
}

// DependentRepository adds the site-relationship queries of the kinds that
// reference a Site.
type DependentRepository[T model.DependentRecord] interface {
	Repository[T]

	// FetchBySite returns the records whose site_id equals siteID.
	FetchBySite(ctx context.Context, siteID string) ([]T, error)

	// FetchUnassigned returns the records whose site_id is null.
	FetchUnassigned(ctx context.Context) ([]T, error)

	// DeleteBySite removes every record of the site and returns the count.
	DeleteBySite(ctx context.Context, siteID string) (int64, error)

	// SetSite points the record at siteID, or clears the reference when
	// siteID is empty.
	SetSite(ctx context.Context, id, siteID string, at time.Time) (T, error)
}

// Operation is one entry of the operations audit table.
type Operation struct {
	ID         int64      `json:"id"`
	Operation  string     `json:"operation"`
	Parameters string     `json:"parameters"`
	UserID     string     `json:"userId"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     string     `json:"status"`
}

// Operation statuses.
const (
	StatusRunning    = "running"
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusPartial    = "partial"
	StatusRolledBack = "rolled_back"
)

// OperationLog persists the audit trail of mutating operations.
type OperationLog interface {
	// CreateOperation stores op with status running and returns it with its
	// assigned id.
	CreateOperation(ctx context.Context, op Operation) (Operation, error)
	FinishOperation(ctx context.Context, id int64, status string, at time.Time) error
	// ListOperations returns the most recent operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]Operation, error)
	// MaxOperationID returns 0 when no operation has been recorded.
	MaxOperationID(ctx context.Context) (int64, error)
}

// Store gives access to the four record repositories and the audit log.
type Store interface {
	Sites() Repository[model.Site]
	Equipment() DependentRepository[model.Equipment]
	Connections() DependentRepository[model.NetworkConnection]
	IPRanges() DependentRepository[model.IPRange]

	// WithinTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional store runs fn in the same
	// transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	OperationLog

	Close() error
}

package inventory

import (
	"errors"
	"fmt"
	"strings"

	"netinv/internal/model"
)

var (
	// ErrNotFound is returned when an operation references an id absent
	// from storage.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation covers missing or malformed fields and storage
	// constraint failures such as a dangling site reference.
	ErrConstraintViolation = model.ErrConstraintViolation

	// ErrPartialCascade is returned when a non-transactional cascade removed
	// some dependents of a site before failing.
	ErrPartialCascade = errors.New("partial cascade failure")

	// ErrService wraps transport and storage failures.
	ErrService = errors.New("service error")

	// ErrNoSession is returned when a mutating workflow is called without an
	// acting user.
	ErrNoSession = errors.New("no acting user")
)

// ValidationError is the typed form of ErrConstraintViolation.
type ValidationError = model.ValidationError

// CascadeError reports a cascade delete that did not complete.
type CascadeError struct {
	SiteID string
	// Completed holds the dependent kinds already removed, with their counts.
	// It is empty when RolledBack is set.
	Completed []KindCount
	// Failed is the kind whose delete failed, or KindSite for the site row.
	Failed     model.Kind
	RolledBack bool
	Err        error
}

// KindCount pairs a record kind with a number of rows.
type KindCount struct {
	Kind  model.Kind `json:"kind"`
	Count int64      `json:"count"`
}

func (e *CascadeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cascade delete of site %s failed at %s", e.SiteID, e.Failed)
	if e.RolledBack {
		b.WriteString(" (rolled back)")
	} else if len(e.Completed) > 0 {
		done := make([]string, len(e.Completed))
		for i, c := range e.Completed {
			done[i] = fmt.Sprintf("%s=%d", c.Kind, c.Count)
		}
		fmt.Fprintf(&b, " after deleting %s", strings.Join(done, ", "))
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Partial reports whether some dependents were deleted and left deleted.
func (e *CascadeError) Partial() bool {
	if e.RolledBack {
		return false
	}
	for _, c := range e.Completed {
		if c.Count > 0 {
			return true
		}
	}
	return false
}

func (e *CascadeError) Unwrap() []error {
	if e.Partial() {
		return []error{ErrPartialCascade, e.Err}
	}
	return []error{e.Err}
}

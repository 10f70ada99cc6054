package inventory

import (
	"context"
	"errors"
	"fmt"

	"netinv/internal/model"
)

// Assign attaches a dependent record to a site, moving it out of the
// unassigned pool or away from its previous site. The target site is not
// checked here; a dangling reference is rejected by storage as a constraint
// violation.
func (s *Service) Assign(ctx context.Context, kind model.Kind, recordID, siteID, actingUserID string) (model.DependentRecord, error) {
	if err := requireUser(actingUserID); err != nil {
		return nil, err
	}
	if siteID == "" {
		return nil, &ValidationError{Field: "siteId", Reason: "is required"}
	}
	return s.setSite(ctx, OpAssign, kind, recordID, siteID, actingUserID)
}

// Unassign returns a dependent record to the unassigned pool.
func (s *Service) Unassign(ctx context.Context, kind model.Kind, recordID, actingUserID string) (model.DependentRecord, error) {
	if err := requireUser(actingUserID); err != nil {
		return nil, err
	}
	return s.setSite(ctx, OpUnassign, kind, recordID, "", actingUserID)
}

func (s *Service) setSite(ctx context.Context, op Op, kind model.Kind, recordID, siteID, userID string) (model.DependentRecord, error) {
	var prevSiteID string
	var rec model.DependentRecord
	err := s.store.WithinTx(ctx, func(tx Store) error {
		repo, err := dependents(tx, kind)
		if err != nil {
			return err
		}
		before, err := repo.fetchByID(ctx, recordID)
		if err != nil {
			return err
		}
		prevSiteID = before.ParentSiteID()
		rec, err = repo.setSite(ctx, recordID, siteID, s)
		if siteID != "" && errors.Is(err, ErrConstraintViolation) {
			// site_id is the only reference the update can break.
			return &ValidationError{Field: "siteId", Reason: "references an unknown site"}
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", op, kind, recordID, err)
	}
	s.invalidate(op, Event{Kind: kind, RecordID: recordID, SiteID: siteID, PrevSiteID: prevSiteID})
	s.logger.Info("site reference changed", "kind", string(kind), "id", recordID, "from", prevSiteID, "to", siteID, "user", userID)
	return rec, nil
}

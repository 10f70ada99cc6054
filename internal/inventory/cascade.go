package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"netinv/internal/model"
)

// CascadeResult reports what a cascade delete removed.
type CascadeResult struct {
	SiteID         string      `json:"siteId"`
	Deleted        []KindCount `json:"deleted"`
	ObjectsDeleted int         `json:"objectsDeleted"`
}

// CascadeDelete removes a site together with every record that references it.
//
// The site's dependents are fetched first; a failure there aborts before
// anything is deleted. Dependents are then bulk-deleted in the order
// equipment, connections, IP ranges, and the site row is deleted last, so the
// site is never removed while a dependent still references it. Kinds with no
// dependents are skipped.
//
// In transactional mode a failure rolls every delete back and the returned
// *CascadeError has RolledBack set. In sequential mode the deletes are
// independent: a failure stops the workflow, the site stays in place, and the
// error matches ErrPartialCascade when some kind was already removed.
func (s *Service) CascadeDelete(ctx context.Context, siteID, actingUserID string) (*CascadeResult, error) {
	if err := requireUser(actingUserID); err != nil {
		return nil, err
	}

	site, err := s.store.Sites().FetchByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("deleting site %s: %w", siteID, err)
	}

	fetched, err := s.fetchDependents(ctx, s.store, siteID)
	if err != nil {
		s.logger.Error("cascade aborted before delete", "site", siteID, "error", err)
		return nil, fmt.Errorf("deleting site %s: %w", siteID, err)
	}
	var plan []model.Kind
	for _, f := range fetched {
		if len(f.records) > 0 {
			plan = append(plan, f.kind)
		}
	}

	res := &CascadeResult{SiteID: siteID}
	var cerr *CascadeError
	if s.mode == CascadeSequential {
		cerr = s.removeSite(ctx, s.store, &site, plan, res)
	} else {
		err := s.store.WithinTx(ctx, func(tx Store) error {
			if e := s.removeSite(ctx, tx, &site, plan, res); e != nil {
				return e
			}
			return nil
		})
		if err != nil {
			if !errors.As(err, &cerr) {
				cerr = &CascadeError{SiteID: siteID, Failed: model.KindSite, Err: err}
			}
			cerr.RolledBack = true
			cerr.Completed = nil
			res.Deleted = nil
		}
	}

	if cerr != nil {
		if cerr.Partial() {
			kinds := make([]model.Kind, len(cerr.Completed))
			for i, c := range cerr.Completed {
				kinds[i] = c.Kind
			}
			s.invalidate(OpDeleteSite, Event{Kind: model.KindSite, SiteID: siteID, Kinds: kinds})
		}
		status := StatusFor(cerr)
		s.logger.Error("cascade delete failed", "site", siteID, "mode", string(s.mode), "failed", string(cerr.Failed), "status", status, "error", cerr.Err)
		s.recordFailure(ctx, "CascadeDelete", cascadeParams(siteID, s.mode, cerr.Completed), actingUserID, status)
		return nil, cerr
	}

	s.invalidate(OpDeleteSite, Event{Kind: model.KindSite, SiteID: siteID, Kinds: model.DependentKinds})
	res.ObjectsDeleted = s.deleteSiteObjects(ctx, site)
	s.logger.Info("site deleted", "site", siteID, "mode", string(s.mode), "dependents", cascadeParams(siteID, s.mode, res.Deleted), "user", actingUserID)
	return res, nil
}

// removeSite deletes the planned dependent kinds in order, then the site row.
// site is refreshed with the row as it was just before the delete.
func (s *Service) removeSite(ctx context.Context, st Store, site *model.Site, plan []model.Kind, res *CascadeResult) *CascadeError {
	siteID := site.ID
	for _, k := range plan {
		repo, err := dependents(st, k)
		if err != nil {
			return &CascadeError{SiteID: siteID, Failed: k, Err: err}
		}
		n, err := repo.deleteBySite(ctx, siteID)
		if err != nil {
			return &CascadeError{
				SiteID:    siteID,
				Completed: append([]KindCount(nil), res.Deleted...),
				Failed:    k,
				Err:       err,
			}
		}
		// A concurrent cascade may have emptied the kind since the fetch.
		if n > 0 {
			res.Deleted = append(res.Deleted, KindCount{Kind: k, Count: n})
		}
	}
	// Re-read the site so objects attached since the first fetch are
	// deleted with it.
	current, err := st.Sites().FetchByID(ctx, siteID)
	if err == nil {
		*site = current
	}
	if err := st.Sites().DeleteByID(ctx, siteID); err != nil {
		return &CascadeError{
			SiteID:    siteID,
			Completed: append([]KindCount(nil), res.Deleted...),
			Failed:    model.KindSite,
			Err:       err,
		}
	}
	return nil
}

// deleteSiteObjects removes the floor plan and rack photos of a deleted site.
// Failures are logged and do not fail the cascade.
func (s *Service) deleteSiteObjects(ctx context.Context, site model.Site) int {
	if s.objects == nil {
		return 0
	}
	urls := append([]string{site.FloorplanURL}, site.RackPhotosURLs...)
	deleted := 0
	for _, u := range urls {
		key, ok := s.objects.Key(u)
		if u == "" || !ok {
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			s.logger.Warn("deleting site object", "site", site.ID, "key", key, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

func cascadeParams(siteID string, mode CascadeMode, done []KindCount) string {
	parts := []string{"site=" + siteID, "mode=" + string(mode)}
	for _, c := range done {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Kind, c.Count))
	}
	return strings.Join(parts, " ")
}

// recordFailure writes a finished entry to the operations audit table.
func (s *Service) recordFailure(ctx context.Context, name, params, userID, status string) {
	ctx = context.WithoutCancel(ctx)
	now := s.clock.Now().UTC()
	op, err := s.store.CreateOperation(ctx, Operation{Operation: name, Parameters: params, UserID: userID, StartedAt: now})
	if err != nil {
		s.logger.Warn("recording operation", "operation", name, "error", err)
		return
	}
	if err := s.store.FinishOperation(ctx, op.ID, status, now); err != nil {
		s.logger.Warn("finishing operation", "operation", name, "id", op.ID, "error", err)
	}
}

package inventory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"netinv/internal/model"
)

// UnassignedItem is an entry of the unassigned pool, as offered when
// attaching existing records to a site.
type UnassignedItem struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"displayLabel"`
}

// FindUnassigned lists the records of kind whose site reference is null.
func (s *Service) FindUnassigned(ctx context.Context, kind model.Kind) ([]UnassignedItem, error) {
	repo, err := dependents(s.store, kind)
	if err != nil {
		return nil, err
	}
	items, err := cachedLoad(ctx, s.cache, UnassignedTopic(kind), func(ctx context.Context) ([]UnassignedItem, error) {
		records, err := repo.fetchUnassigned(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]UnassignedItem, len(records))
		for i, r := range records {
			items[i] = UnassignedItem{ID: r.RecordID(), DisplayLabel: r.DisplayLabel()}
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding unassigned %s: %w", kind, err)
	}
	return items, nil
}

type siteDependents struct {
	kind    model.Kind
	records []model.DependentRecord
}

// fetchDependents loads the site's records of every dependent kind
// concurrently. The result is in cascade order.
func (s *Service) fetchDependents(ctx context.Context, st Store, siteID string) ([]siteDependents, error) {
	out := make([]siteDependents, len(model.DependentKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range model.DependentKinds {
		repo, err := dependents(st, k)
		if err != nil {
			return nil, err
		}
		out[i].kind = k
		g.Go(func() error {
			records, err := repo.fetchBySite(gctx, siteID)
			if err != nil {
				return fmt.Errorf("fetching %s of site %s: %w", k, siteID, err)
			}
			out[i].records = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

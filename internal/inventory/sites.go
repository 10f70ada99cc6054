package inventory

import (
	"context"
	"fmt"

	"netinv/internal/model"
)

// CreateSite stores a new site owned by the acting user.
func (s *Service) CreateSite(ctx context.Context, site model.Site, userID string) (model.Site, error) {
	if err := requireUser(userID); err != nil {
		return model.Site{}, err
	}
	site.Normalize()
	now := s.clock.Now().UTC()
	site.ID = s.idgen.New()
	site.CreatedAt, site.UpdatedAt = now, now
	site.UserID = userID

	created, err := s.store.Sites().Insert(ctx, site)
	if err != nil {
		return model.Site{}, fmt.Errorf("creating site: %w", err)
	}
	s.invalidate(OpCreateSite, Event{Kind: model.KindSite, SiteID: created.ID})
	s.logger.Info("site created", "site", created.ID, "name", created.Name, "user", userID)
	return created, nil
}

func (s *Service) GetSite(ctx context.Context, id string) (model.Site, error) {
	site, err := s.store.Sites().FetchByID(ctx, id)
	if err != nil {
		return model.Site{}, fmt.Errorf("fetching site %s: %w", id, err)
	}
	return site, nil
}

// ListSites returns every site. The slice may be shared with other callers
// and must not be modified.
func (s *Service) ListSites(ctx context.Context) ([]model.Site, error) {
	sites, err := cachedLoad(ctx, s.cache, SitesTopic, s.store.Sites().FetchAll)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return sites, nil
}

// UpdateSite applies a partial update keyed by field name.
func (s *Service) UpdateSite(ctx context.Context, id string, patch model.Patch, userID string) (model.Site, error) {
	if err := requireUser(userID); err != nil {
		return model.Site{}, err
	}
	site, err := s.store.Sites().Update(ctx, id, patch, s.clock.Now().UTC())
	if err != nil {
		return model.Site{}, fmt.Errorf("updating site %s: %w", id, err)
	}
	s.invalidate(OpUpdateSite, Event{Kind: model.KindSite, SiteID: id})
	s.logger.Info("site updated", "site", id, "fields", len(patch), "user", userID)
	return site, nil
}

// SiteSummary is a site together with the number of its dependents.
type SiteSummary struct {
	Site       model.Site  `json:"site"`
	Dependents []KindCount `json:"dependents"`
	Total      int64       `json:"total"`
}

// SiteDependents counts the site's dependents per kind, in cascade order.
func (s *Service) SiteDependents(ctx context.Context, siteID string) ([]KindCount, error) {
	fetched, err := s.fetchDependents(ctx, s.store, siteID)
	if err != nil {
		return nil, err
	}
	counts := make([]KindCount, len(fetched))
	for i, f := range fetched {
		counts[i] = KindCount{Kind: f.kind, Count: int64(len(f.records))}
	}
	return counts, nil
}

// SiteSummary returns the site with its dependent counts.
func (s *Service) SiteSummary(ctx context.Context, siteID string) (*SiteSummary, error) {
	site, err := s.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	counts, err := s.SiteDependents(ctx, siteID)
	if err != nil {
		return nil, err
	}
	sum := &SiteSummary{Site: site, Dependents: counts}
	for _, c := range counts {
		sum.Total += c.Count
	}
	return sum, nil
}

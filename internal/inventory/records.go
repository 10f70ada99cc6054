package inventory

import (
	"context"
	"fmt"
	"time"

	"netinv/internal/model"
)

// CreateEquipment stores new equipment, assigned to e.SiteID when set.
func (s *Service) CreateEquipment(ctx context.Context, e model.Equipment, userID string) (model.Equipment, error) {
	if err := requireUser(userID); err != nil {
		return model.Equipment{}, err
	}
	e.Normalize()
	e.ID, e.CreatedAt, e.UpdatedAt, e.UserID = s.stamp(userID)
	return insertRecord(ctx, s, s.store.Equipment(), e)
}

func (s *Service) CreateConnection(ctx context.Context, c model.NetworkConnection, userID string) (model.NetworkConnection, error) {
	if err := requireUser(userID); err != nil {
		return model.NetworkConnection{}, err
	}
	c.Normalize()
	c.ID, c.CreatedAt, c.UpdatedAt, c.UserID = s.stamp(userID)
	return insertRecord(ctx, s, s.store.Connections(), c)
}

func (s *Service) CreateIPRange(ctx context.Context, r model.IPRange, userID string) (model.IPRange, error) {
	if err := requireUser(userID); err != nil {
		return model.IPRange{}, err
	}
	r.Normalize()
	r.ID, r.CreatedAt, r.UpdatedAt, r.UserID = s.stamp(userID)
	return insertRecord(ctx, s, s.store.IPRanges(), r)
}

func (s *Service) stamp(userID string) (string, time.Time, time.Time, string) {
	now := s.clock.Now().UTC()
	return s.idgen.New(), now, now, userID
}

func insertRecord[T model.DependentRecord](ctx context.Context, s *Service, repo DependentRepository[T], v T) (T, error) {
	created, err := repo.Insert(ctx, v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("creating %s: %w", v.RecordKind(), err)
	}
	siteID := created.ParentSiteID()
	s.invalidate(OpCreateRecord, Event{Kind: created.RecordKind(), RecordID: created.RecordID(), SiteID: siteID, PrevSiteID: siteID})
	s.logger.Info("record created", "kind", string(created.RecordKind()), "id", created.RecordID(), "site", siteID)
	return created, nil
}

// ListEquipment returns all equipment. The slice may be shared with other
// callers and must not be modified.
func (s *Service) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	return cachedLoad(ctx, s.cache, KindTopic(model.KindEquipment), s.store.Equipment().FetchAll)
}

func (s *Service) ListConnections(ctx context.Context) ([]model.NetworkConnection, error) {
	return cachedLoad(ctx, s.cache, KindTopic(model.KindConnection), s.store.Connections().FetchAll)
}

func (s *Service) ListIPRanges(ctx context.Context) ([]model.IPRange, error) {
	return cachedLoad(ctx, s.cache, KindTopic(model.KindIPRange), s.store.IPRanges().FetchAll)
}

// List returns every record of a dependent kind.
func (s *Service) List(ctx context.Context, kind model.Kind) ([]model.DependentRecord, error) {
	repo, err := dependents(s.store, kind)
	if err != nil {
		return nil, err
	}
	records, err := cachedLoad(ctx, s.cache, KindTopic(kind), repo.fetchAll)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	return records, nil
}

// ListBySite returns the records of kind assigned to siteID.
func (s *Service) ListBySite(ctx context.Context, kind model.Kind, siteID string) ([]model.DependentRecord, error) {
	repo, err := dependents(s.store, kind)
	if err != nil {
		return nil, err
	}
	records, err := cachedLoad(ctx, s.cache, SiteScopedTopic(kind, siteID), func(ctx context.Context) ([]model.DependentRecord, error) {
		return repo.fetchBySite(ctx, siteID)
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s of site %s: %w", kind, siteID, err)
	}
	return records, nil
}

// Get returns one dependent record.
func (s *Service) Get(ctx context.Context, kind model.Kind, id string) (model.DependentRecord, error) {
	repo, err := dependents(s.store, kind)
	if err != nil {
		return nil, err
	}
	rec, err := repo.fetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s: %w", kind, id, err)
	}
	return rec, nil
}

// Update applies a partial update to a dependent record. A patch that
// changes siteId moves the record between sites.
func (s *Service) Update(ctx context.Context, kind model.Kind, id string, patch model.Patch, userID string) (model.DependentRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var before, after model.DependentRecord
	err := s.store.WithinTx(ctx, func(tx Store) error {
		repo, err := dependents(tx, kind)
		if err != nil {
			return err
		}
		if before, err = repo.fetchByID(ctx, id); err != nil {
			return err
		}
		after, err = repo.update(ctx, id, patch, s)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", kind, id, err)
	}
	s.invalidate(OpUpdateRecord, Event{Kind: kind, RecordID: id, SiteID: after.ParentSiteID(), PrevSiteID: before.ParentSiteID()})
	s.logger.Info("record updated", "kind", string(kind), "id", id, "fields", len(patch), "user", userID)
	return after, nil
}

// Delete removes one dependent record.
func (s *Service) Delete(ctx context.Context, kind model.Kind, id string, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	var siteID string
	err := s.store.WithinTx(ctx, func(tx Store) error {
		repo, err := dependents(tx, kind)
		if err != nil {
			return err
		}
		rec, err := repo.fetchByID(ctx, id)
		if err != nil {
			return err
		}
		siteID = rec.ParentSiteID()
		return repo.deleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}
	s.invalidate(OpDeleteRecord, Event{Kind: kind, RecordID: id, SiteID: siteID, PrevSiteID: siteID})
	s.logger.Info("record deleted", "kind", string(kind), "id", id, "user", userID)
	return nil
}

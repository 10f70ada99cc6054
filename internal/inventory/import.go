package inventory

import (
	"context"
	"fmt"

	"netinv/internal/model"
)

// ImportBatch holds the records read from a spreadsheet. Provided ids are
// kept so dependents can reference sites of the same batch; missing ids are
// generated.
type ImportBatch struct {
	Sites       []model.Site
	Equipment   []model.Equipment
	Connections []model.NetworkConnection
	IPRanges    []model.IPRange
}

// Len returns the number of records in the batch.
func (b *ImportBatch) Len() int {
	return len(b.Sites) + len(b.Equipment) + len(b.Connections) + len(b.IPRanges)
}

// Import inserts the batch in one transaction, sites first. Missing ids are
// filled in on b. Any invalid row or constraint failure rolls the whole batch
// back.
func (s *Service) Import(ctx context.Context, b *ImportBatch, userID string) ([]KindCount, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	id := func(cur string) string {
		if cur != "" {
			return cur
		}
		return s.idgen.New()
	}
	for i := range b.Sites {
		b.Sites[i].ID = id(b.Sites[i].ID)
	}
	for i := range b.Equipment {
		b.Equipment[i].ID = id(b.Equipment[i].ID)
	}
	for i := range b.Connections {
		b.Connections[i].ID = id(b.Connections[i].ID)
	}
	for i := range b.IPRanges {
		b.IPRanges[i].ID = id(b.IPRanges[i].ID)
	}

	err := s.store.WithinTx(ctx, func(tx Store) error {
		for i, v := range b.Sites {
			v.Normalize()
			v.CreatedAt, v.UpdatedAt, v.UserID = now, now, userID
			if _, err := tx.Sites().Insert(ctx, v); err != nil {
				return fmt.Errorf("site row %d: %w", i+1, err)
			}
		}
		for i, v := range b.Equipment {
			v.Normalize()
			v.CreatedAt, v.UpdatedAt, v.UserID = now, now, userID
			if _, err := tx.Equipment().Insert(ctx, v); err != nil {
				return fmt.Errorf("equipment row %d: %w", i+1, err)
			}
		}
		for i, v := range b.Connections {
			v.Normalize()
			v.CreatedAt, v.UpdatedAt, v.UserID = now, now, userID
			if _, err := tx.Connections().Insert(ctx, v); err != nil {
				return fmt.Errorf("connection row %d: %w", i+1, err)
			}
		}
		for i, v := range b.IPRanges {
			v.Normalize()
			v.CreatedAt, v.UpdatedAt, v.UserID = now, now, userID
			if _, err := tx.IPRanges().Insert(ctx, v); err != nil {
				return fmt.Errorf("ip range row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing: %w", err)
	}

	counts := []KindCount{
		{Kind: model.KindSite, Count: int64(len(b.Sites))},
		{Kind: model.KindEquipment, Count: int64(len(b.Equipment))},
		{Kind: model.KindConnection, Count: int64(len(b.Connections))},
		{Kind: model.KindIPRange, Count: int64(len(b.IPRanges))},
	}
	s.invalidate(OpImport, Event{})
	for _, v := range b.Equipment {
		s.invalidate(OpCreateRecord, Event{Kind: model.KindEquipment, RecordID: v.ID, SiteID: v.SiteID, PrevSiteID: v.SiteID})
	}
	for _, v := range b.Connections {
		s.invalidate(OpCreateRecord, Event{Kind: model.KindConnection, RecordID: v.ID, SiteID: v.SiteID, PrevSiteID: v.SiteID})
	}
	for _, v := range b.IPRanges {
		s.invalidate(OpCreateRecord, Event{Kind: model.KindIPRange, RecordID: v.ID, SiteID: v.SiteID, PrevSiteID: v.SiteID})
	}
	s.logger.Info("import finished", "sites", len(b.Sites), "equipment", len(b.Equipment), "connections", len(b.Connections), "ipRanges", len(b.IPRanges), "user", userID)
	return counts, nil
}

// Export returns every record of the inventory, for a spreadsheet export.
func (s *Service) Export(ctx context.Context) (*ImportBatch, error) {
	var b ImportBatch
	var err error
	if b.Sites, err = s.ListSites(ctx); err != nil {
		return nil, err
	}
	if b.Equipment, err = s.ListEquipment(ctx); err != nil {
		return nil, err
	}
	if b.Connections, err = s.ListConnections(ctx); err != nil {
		return nil, err
	}
	if b.IPRanges, err = s.ListIPRanges(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

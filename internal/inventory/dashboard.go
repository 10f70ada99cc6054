package inventory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"netinv/internal/model"
)

// Dashboard aggregates the inventory for the overview page.
type Dashboard struct {
	Sites              int                `json:"sites"`
	Equipment          int                `json:"equipment"`
	Connections        int                `json:"connections"`
	IPRanges           int                `json:"ipRanges"`
	EquipmentByStatus  map[string]int     `json:"equipmentByStatus"`
	EquipmentByType    map[string]int     `json:"equipmentByType"`
	ConnectionByStatus map[string]int     `json:"connectionsByStatus"`
	ReservedRanges     int                `json:"reservedRanges"`
	Unassigned         map[model.Kind]int `json:"unassigned"`
}

// Dashboard loads the four listings concurrently and aggregates them.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		sites       []model.Site
		equipment   []model.Equipment
		connections []model.NetworkConnection
		ranges      []model.IPRange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { sites, err = s.ListSites(gctx); return })
	g.Go(func() (err error) { equipment, err = s.ListEquipment(gctx); return })
	g.Go(func() (err error) { connections, err = s.ListConnections(gctx); return })
	g.Go(func() (err error) { ranges, err = s.ListIPRanges(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading dashboard: %w", err)
	}

	d := &Dashboard{
		Sites:              len(sites),
		Equipment:          len(equipment),
		Connections:        len(connections),
		IPRanges:           len(ranges),
		EquipmentByStatus:  map[string]int{},
		EquipmentByType:    map[string]int{},
		ConnectionByStatus: map[string]int{},
		Unassigned:         map[model.Kind]int{},
	}
	for _, e := range equipment {
		d.EquipmentByStatus[e.Status]++
		d.EquipmentByType[e.Type]++
		if e.SiteID == "" {
			d.Unassigned[model.KindEquipment]++
		}
	}
	for _, c := range connections {
		d.ConnectionByStatus[c.Status]++
		if c.SiteID == "" {
			d.Unassigned[model.KindConnection]++
		}
	}
	for _, r := range ranges {
		if r.IsReserved {
			d.ReservedRanges++
		}
		if r.SiteID == "" {
			d.Unassigned[model.KindIPRange]++
		}
	}
	return d, nil
}

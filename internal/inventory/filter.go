package inventory

import (
	"net"
	"sort"
	"strings"

	"netinv/internal/model"
)

// SortKey orders a filtered listing.
type SortKey string

const (
	SortByName SortKey = "name"
	SortByIP   SortKey = "ip"
)

// Filter narrows a listing of dependent records. Empty fields match
// everything.
type Filter struct {
	// Query matches case-insensitively against the label and text fields.
	Query      string
	Status     string
	Type       string
	SiteID     string
	Unassigned bool
	Sort       SortKey
}

type recordAttrs struct {
	status string
	typ    string
	ip     string
	text   []string
}

func attrsOf(r model.DependentRecord) recordAttrs {
	switch v := r.(type) {
	case model.Equipment:
		return recordAttrs{
			status: v.Status, typ: v.Type, ip: v.IPAddress,
			text: []string{v.Name, v.Model, v.Manufacturer, v.IPAddress, v.MACAddress, v.Netbios},
		}
	case model.NetworkConnection:
		return recordAttrs{
			status: v.Status, typ: v.Type,
			text: []string{v.Provider, v.ContractRef, v.Bandwidth, v.SLA},
		}
	case model.IPRange:
		ip, _, _ := strings.Cut(v.Range, "/")
		return recordAttrs{ip: ip, text: []string{v.Range, v.Description}}
	}
	return recordAttrs{}
}

func (f Filter) match(r model.DependentRecord) bool {
	a := attrsOf(r)
	if f.Status != "" && !strings.EqualFold(a.status, f.Status) {
		return false
	}
	if f.Type != "" && !strings.EqualFold(a.typ, f.Type) {
		return false
	}
	if f.SiteID != "" && r.ParentSiteID() != f.SiteID {
		return false
	}
	if f.Unassigned && r.ParentSiteID() != "" {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(r.DisplayLabel()), q) {
		return true
	}
	for _, t := range a.text {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// FilterRecords returns the matching records in a new slice, sorted by
// f.Sort. The input is not modified.
func FilterRecords[T model.DependentRecord](records []T, f Filter) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	switch f.Sort {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].DisplayLabel()) < strings.ToLower(out[j].DisplayLabel())
		})
	case SortByIP:
		sort.SliceStable(out, func(i, j int) bool {
			return compareIPs(attrsOf(out[i]).ip, attrsOf(out[j]).ip)
		})
	}
	return out
}

// FilterSites matches the query against name, location, country and address.
func FilterSites(sites []model.Site, query string) []model.Site {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Site, 0, len(sites))
	for _, s := range sites {
		if q == "" || containsAny(q, s.Name, s.Location, s.Country, s.Address) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// compareIPs orders addresses numerically. Records without an address sort
// last; unparsable values compare as strings.
func compareIPs(ip1, ip2 string) bool {
	if ip1 == "" || ip2 == "" {
		return ip1 != "" && ip2 == ""
	}
	p1 := net.ParseIP(ip1).To4()
	p2 := net.ParseIP(ip2).To4()
	if p1 == nil || p2 == nil {
		return ip1 < ip2
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			return p1[i] < p2[i]
		}
	}
	return false
}

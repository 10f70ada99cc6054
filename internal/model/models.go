package model

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four record kinds held in the inventory.
type Kind string

const (
	KindSite       Kind = "sites"
	KindEquipment  Kind = "equipment"
	KindConnection Kind = "connections"
	KindIPRange    Kind = "ip-ranges"
)

// DependentKinds lists the kinds that may reference a Site, in the order a
// site's dependents are removed.
var DependentKinds = []Kind{KindEquipment, KindConnection, KindIPRange}

// ParseKind resolves the names accepted on the command line and in URLs.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "site", "sites":
		return KindSite, nil
	case "equipment":
		return KindEquipment, nil
	case "connection", "connections", "network_connections", "network-connections":
		return KindConnection, nil
	case "iprange", "ipranges", "ip-range", "ip-ranges", "ip_range", "ip_ranges":
		return KindIPRange, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Table returns the storage table backing the kind.
func (k Kind) Table() string {
	switch k {
	case KindSite:
		return "sites"
	case KindEquipment:
		return "equipment"
	case KindConnection:
		return "network_connections"
	case KindIPRange:
		return "ip_ranges"
	}
	return ""
}

// Dependent reports whether records of this kind can belong to a Site.
func (k Kind) Dependent() bool {
	return k == KindEquipment || k == KindConnection || k == KindIPRange
}

// Record is implemented by the view type of every kind.
type Record interface {
	RecordID() string
	RecordKind() Kind
}

// DependentRecord is a record with an optional parent Site.
type DependentRecord interface {
	Record
	ParentSiteID() string
	DisplayLabel() string
}

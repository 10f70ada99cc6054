package model

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// IPRange is an IPv4 block allocated to a Site or held in reserve.
type IPRange struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"siteId"`
	Range       string    `json:"range" validate:"required,cidr4"`
	Description string    `json:"description" validate:"max=500"`
	IsReserved  bool      `json:"isReserved"`
	DHCPScope   bool      `json:"dhcpScope"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"userId"`
}

// IPRangeRow is the storage shape of a row in the ip_ranges table.
type IPRangeRow struct {
	ID          string
	SiteID      sql.NullString
	Range       string
	Description sql.NullString
	IsReserved  bool
	DHCPScope   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      sql.NullString
}

func (r IPRange) RecordID() string     { return r.ID }
func (IPRange) RecordKind() Kind       { return KindIPRange }
func (r IPRange) ParentSiteID() string { return r.SiteID }

// DisplayLabel renders "range (description)", or the bare range.
func (r IPRange) DisplayLabel() string {
	if r.Description == "" {
		return r.Range
	}
	return fmt.Sprintf("%s (%s)", r.Range, r.Description)
}

func (r *IPRange) Normalize() {
	r.SiteID = strings.TrimSpace(r.SiteID)
	r.Range = strings.TrimSpace(r.Range)
	r.Description = strings.TrimSpace(r.Description)
}

func (r IPRange) Validate() error { return validateStruct(r) }

func IPRangeToView(r IPRangeRow) IPRange {
	return IPRange{
		ID:          r.ID,
		SiteID:      r.SiteID.String,
		Range:       r.Range,
		Description: r.Description.String,
		IsReserved:  r.IsReserved,
		DHCPScope:   r.DHCPScope,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      r.UserID.String,
	}
}

func IPRangeToRow(r IPRange) IPRangeRow {
	return IPRangeRow{
		ID:          r.ID,
		SiteID:      nullString(r.SiteID),
		Range:       r.Range,
		Description: nullString(r.Description),
		IsReserved:  r.IsReserved,
		DHCPScope:   r.DHCPScope,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      nullString(r.UserID),
	}
}

package model

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var (
	ConnectionTypes    = []string{"fiber", "adsl", "sdsl", "satellite", "other"}
	ConnectionStatuses = []string{"active", "maintenance", "failure", "unknown"}
)

// NetworkConnection is a WAN link contracted from a provider.
type NetworkConnection struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"siteId"`
	Type        string    `json:"type" validate:"required,oneof=fiber adsl sdsl satellite other"`
	Provider    string    `json:"provider" validate:"required,max=200"`
	ContractRef string    `json:"contractRef" validate:"max=100"`
	Bandwidth   string    `json:"bandwidth" validate:"max=50"`
	SLA         string    `json:"sla" validate:"max=100"`
	Status      string    `json:"status" validate:"required,oneof=active maintenance failure unknown"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"userId"`
}

// ConnectionRow is the storage shape of a row in the network_connections table.
type ConnectionRow struct {
	ID          string
	SiteID      sql.NullString
	Type        string
	Provider    string
	ContractRef sql.NullString
	Bandwidth   sql.NullString
	SLA         sql.NullString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      sql.NullString
}

func (c NetworkConnection) RecordID() string     { return c.ID }
func (NetworkConnection) RecordKind() Kind       { return KindConnection }
func (c NetworkConnection) ParentSiteID() string { return c.SiteID }

// DisplayLabel renders the connection as "provider (type)".
func (c NetworkConnection) DisplayLabel() string {
	return fmt.Sprintf("%s (%s)", c.Provider, c.Type)
}

func (c *NetworkConnection) Normalize() {
	c.SiteID = strings.TrimSpace(c.SiteID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	c.Provider = strings.TrimSpace(c.Provider)
	c.ContractRef = strings.TrimSpace(c.ContractRef)
	c.Bandwidth = strings.TrimSpace(c.Bandwidth)
	c.SLA = strings.TrimSpace(c.SLA)
	c.Status = strings.ToLower(strings.TrimSpace(c.Status))
	if c.Status == "" {
		c.Status = StatusUnknown
	}
}

func (c NetworkConnection) Validate() error { return validateStruct(c) }

func ConnectionToView(r ConnectionRow) NetworkConnection {
	return NetworkConnection{
		ID:          r.ID,
		SiteID:      r.SiteID.String,
		Type:        r.Type,
		Provider:    r.Provider,
		ContractRef: r.ContractRef.String,
		Bandwidth:   r.Bandwidth.String,
		SLA:         r.SLA.String,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      r.UserID.String,
	}
}

func ConnectionToRow(c NetworkConnection) ConnectionRow {
	return ConnectionRow{
		ID:          c.ID,
		SiteID:      nullString(c.SiteID),
		Type:        c.Type,
		Provider:    c.Provider,
		ContractRef: nullString(c.ContractRef),
		Bandwidth:   nullString(c.Bandwidth),
		SLA:         nullString(c.SLA),
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		UserID:      nullString(c.UserID),
	}
}

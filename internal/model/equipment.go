package model

import (
	"database/sql"
	"strings"
	"time"
)

var (
	EquipmentTypes    = []string{"router", "switch", "hub", "wifi", "server", "printer", "workstation", "other"}
	EquipmentStatuses = []string{"active", "maintenance", "failure", "unknown", "inactive", "decommissioned"}
)

// StatusUnknown is assigned when a record is written without a status.
const StatusUnknown = "unknown"

// Equipment is a network device, optionally installed at a Site.
type Equipment struct {
	ID             string    `json:"id"`
	Name           string    `json:"name" validate:"required,max=200"`
	Type           string    `json:"type" validate:"required,oneof=router switch hub wifi server printer workstation other"`
	Model          string    `json:"model" validate:"required,max=200"`
	Manufacturer   string    `json:"manufacturer" validate:"required,max=200"`
	IPAddress      string    `json:"ipAddress" validate:"omitempty,ipv4addr"`
	MACAddress     string    `json:"macAddress" validate:"omitempty,macaddr"`
	Firmware       string    `json:"firmware" validate:"max=100"`
	InstallDate    string    `json:"installDate" validate:"omitempty,isodate"`
	Status         string    `json:"status" validate:"required,oneof=active maintenance failure unknown inactive decommissioned"`
	Netbios        string    `json:"netbios" validate:"max=15"`
	ConfigMarkdown string    `json:"configMarkdown"`
	SiteID         string    `json:"siteId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UserID         string    `json:"userId"`
}

// EquipmentRow is the storage shape of a row in the equipment table.
type EquipmentRow struct {
	ID             string
	Name           string
	Type           string
	Model          string
	Manufacturer   string
	IPAddress      sql.NullString
	MACAddress     sql.NullString
	Firmware       sql.NullString
	InstallDate    sql.NullTime
	Status         string
	Netbios        sql.NullString
	ConfigMarkdown sql.NullString
	SiteID         sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         sql.NullString
}

func (e Equipment) RecordID() string     { return e.ID }
func (Equipment) RecordKind() Kind       { return KindEquipment }
func (e Equipment) ParentSiteID() string { return e.SiteID }
func (e Equipment) DisplayLabel() string { return e.Name }

// Normalize trims free-text fields, lower-cases enums and applies the
// default status.
func (e *Equipment) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	e.Model = strings.TrimSpace(e.Model)
	e.Manufacturer = strings.TrimSpace(e.Manufacturer)
	e.IPAddress = strings.TrimSpace(e.IPAddress)
	e.MACAddress = strings.TrimSpace(e.MACAddress)
	e.Firmware = strings.TrimSpace(e.Firmware)
	e.InstallDate = strings.TrimSpace(e.InstallDate)
	e.Status = strings.ToLower(strings.TrimSpace(e.Status))
	if e.Status == "" {
		e.Status = StatusUnknown
	}
	e.Netbios = strings.TrimSpace(e.Netbios)
	e.SiteID = strings.TrimSpace(e.SiteID)
}

func (e Equipment) Validate() error { return validateStruct(e) }

func EquipmentToView(r EquipmentRow) Equipment {
	return Equipment{
		ID:             r.ID,
		Name:           r.Name,
		Type:           r.Type,
		Model:          r.Model,
		Manufacturer:   r.Manufacturer,
		IPAddress:      r.IPAddress.String,
		MACAddress:     r.MACAddress.String,
		Firmware:       r.Firmware.String,
		InstallDate:    dateString(r.InstallDate),
		Status:         r.Status,
		Netbios:        r.Netbios.String,
		ConfigMarkdown: r.ConfigMarkdown.String,
		SiteID:         r.SiteID.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		UserID:         r.UserID.String,
	}
}

func EquipmentToRow(e Equipment) EquipmentRow {
	return EquipmentRow{
		ID:             e.ID,
		Name:           e.Name,
		Type:           e.Type,
		Model:          e.Model,
		Manufacturer:   e.Manufacturer,
		IPAddress:      nullString(e.IPAddress),
		MACAddress:     nullString(e.MACAddress),
		Firmware:       nullString(e.Firmware),
		InstallDate:    nullDate(e.InstallDate),
		Status:         e.Status,
		Netbios:        nullString(e.Netbios),
		ConfigMarkdown: nullString(e.ConfigMarkdown),
		SiteID:         nullString(e.SiteID),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		UserID:         nullString(e.UserID),
	}
}

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Site is a physical location owning equipment, connections and IP ranges.
type Site struct {
	ID             string    `json:"id"`
	Name           string    `json:"name" validate:"required,max=200"`
	Location       string    `json:"location" validate:"max=200"`
	Country        string    `json:"country" validate:"max=100"`
	Address        string    `json:"address" validate:"max=500"`
	ContactName    string    `json:"contactName" validate:"max=200"`
	ContactEmail   string    `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone   string    `json:"contactPhone" validate:"max=50"`
	FloorplanURL   string    `json:"floorplanUrl"`
	RackPhotosURLs []string  `json:"rackPhotosUrls"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UserID         string    `json:"userId"`
}

// SiteRow is the storage shape of a row in the sites table.
type SiteRow struct {
	ID             string
	Name           string
	Location       sql.NullString
	Country        sql.NullString
	Address        sql.NullString
	ContactName    sql.NullString
	ContactEmail   sql.NullString
	ContactPhone   sql.NullString
	FloorplanURL   sql.NullString
	RackPhotosURLs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         sql.NullString
}

func (s Site) RecordID() string { return s.ID }
func (Site) RecordKind() Kind   { return KindSite }

// Normalize trims free-text fields.
func (s *Site) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Location = strings.TrimSpace(s.Location)
	s.Country = strings.TrimSpace(s.Country)
	s.Address = strings.TrimSpace(s.Address)
	s.ContactName = strings.TrimSpace(s.ContactName)
	s.ContactEmail = strings.TrimSpace(s.ContactEmail)
	s.ContactPhone = strings.TrimSpace(s.ContactPhone)
}

func (s Site) Validate() error { return validateStruct(s) }

func SiteToView(r SiteRow) Site {
	return Site{
		ID:             r.ID,
		Name:           r.Name,
		Location:       r.Location.String,
		Country:        r.Country.String,
		Address:        r.Address.String,
		ContactName:    r.ContactName.String,
		ContactEmail:   r.ContactEmail.String,
		ContactPhone:   r.ContactPhone.String,
		FloorplanURL:   r.FloorplanURL.String,
		RackPhotosURLs: listView(r.RackPhotosURLs),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		UserID:         r.UserID.String,
	}
}

func SiteToRow(s Site) SiteRow {
	return SiteRow{
		ID:             s.ID,
		Name:           s.Name,
		Location:       nullString(s.Location),
		Country:        nullString(s.Country),
		Address:        nullString(s.Address),
		ContactName:    nullString(s.ContactName),
		ContactEmail:   nullString(s.ContactEmail),
		ContactPhone:   nullString(s.ContactPhone),
		FloorplanURL:   nullString(s.FloorplanURL),
		RackPhotosURLs: listRow(s.RackPhotosURLs),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		UserID:         nullString(s.UserID),
	}
}

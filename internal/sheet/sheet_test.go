package sheet

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// workbook builds an xlsx file from sheet name to rows.
func workbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet() error = %v", err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow() error = %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf
}

func TestWriteRead(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	in := &inventory.ImportBatch{
		Sites: []model.Site{{
			ID: "s1", Name: "Paris HQ", Country: "FR", ContactEmail: "noc@example.com",
			RackPhotosURLs: []string{"mem://a.jpg", "mem://b.jpg"}, CreatedAt: at, UpdatedAt: at, UserID: "ops",
		}},
		Equipment: []model.Equipment{{
			ID: "e1", Name: "core", Type: "switch", Model: "EX2300", Manufacturer: "Juniper",
			IPAddress: "10.0.0.1", InstallDate: "2023-05-02", Status: "active", SiteID: "s1",
		}},
		IPRanges: []model.IPRange{{ID: "r1", Range: "10.0.0.0/24", IsReserved: true}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(out.Sites) != 1 || len(out.Equipment) != 1 || len(out.Connections) != 0 || len(out.IPRanges) != 1 {
		t.Fatalf("Read() = %d sites, %d equipment, %d connections, %d ranges", len(out.Sites), len(out.Equipment), len(out.Connections), len(out.IPRanges))
	}

	s := out.Sites[0]
	if s.ID != "s1" || s.Name != "Paris HQ" || s.ContactEmail != "noc@example.com" {
		t.Errorf("site = %+v", s)
	}
	if len(s.RackPhotosURLs) != 2 || s.RackPhotosURLs[1] != "mem://b.jpg" {
		t.Errorf("RackPhotosURLs = %v", s.RackPhotosURLs)
	}
	if !s.CreatedAt.IsZero() || s.UserID != "" {
		t.Errorf("stamped fields were read back: %+v", s)
	}

	e := out.Equipment[0]
	if e != (model.Equipment{ID: "e1", Name: "core", Type: "switch", Model: "EX2300", Manufacturer: "Juniper",
		IPAddress: "10.0.0.1", InstallDate: "2023-05-02", Status: "active", SiteID: "s1"}) {
		t.Errorf("equipment = %+v", e)
	}
	if r := out.IPRanges[0]; !r.IsReserved || r.DHCPScope || r.Range != "10.0.0.0/24" {
		t.Errorf("ip range = %+v", r)
	}
}

func TestWrite_Headers(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &inventory.ImportBatch{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	want := []string{"Sites", "Equipment", "Connections", "IP Ranges"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("GetSheetList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetSheetList() = %v, want %v", got, want)
		}
	}

	rows, err := f.GetRows("IP Ranges")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != len(model.IPRangeFields) || rows[0][1] != "siteId" {
		t.Errorf("IP Ranges header = %v", rows)
	}
}

func TestRead_EitherSpelling(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"network_connections": {
			{"site_id", "type", "provider", "contract_ref", "status"},
			{"s1", "fiber", "Orange", "C-42", "active"},
			{},
			{"", "adsl", "SFR", "", "unknown"},
		},
		"ip ranges": {
			{"range", "is_reserved", "dhcpScope", "description"},
			{"10.1.0.0/16", "yes", "FALSE", "campus"},
		},
		"Notes": {{"anything"}},
	})

	b, err := Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(b.Connections) != 2 {
		t.Fatalf("len(Connections) = %d, want 2 (blank rows are skipped)", len(b.Connections))
	}
	if c := b.Connections[0]; c.SiteID != "s1" || c.ContractRef != "C-42" || c.Provider != "Orange" {
		t.Errorf("Connections[0] = %+v", c)
	}
	if c := b.Connections[1]; c.SiteID != "" || c.Type != "adsl" {
		t.Errorf("Connections[1] = %+v, want an unassigned adsl link", c)
	}
	if len(b.IPRanges) != 1 || !b.IPRanges[0].IsReserved || b.IPRanges[0].Description != "campus" {
		t.Errorf("IPRanges = %+v", b.IPRanges)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sheets map[string][][]any
		field  string
	}{
		{
			name:   "unknown column",
			sheets: map[string][][]any{"Sites": {{"name", "colour"}, {"Paris", "blue"}}},
			field:  "colour",
		},
		{
			name:   "bad boolean",
			sheets: map[string][][]any{"IP Ranges": {{"range", "isReserved"}, {"10.0.0.0/8", "maybe"}}},
			field:  "isReserved",
		},
		{
			name:   "two sheets for one kind",
			sheets: map[string][][]any{"sites": {{"name"}}, "Site": {{"name"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(workbook(t, tt.sheets))
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Read() error = %v, want a validation error", err)
			}
			if tt.field != "" && ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, inventory.ErrConstraintViolation) {
				t.Errorf("Read() error = %v, want ErrConstraintViolation", err)
			}
		})
	}
}

func TestRead_NotAWorkbook(t *testing.T) {
	if _, err := Read(bytes.NewBufferString("id,name\n1,Paris\n")); err == nil {
		t.Fatal("Read() expected error for a csv file")
	}
}

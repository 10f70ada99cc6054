package model

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

var (
	created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	updated = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func TestRowViewRoundTrip(t *testing.T) {
	t.Run("site", func(t *testing.T) {
		rows := []SiteRow{
			{ID: "s1", Name: "HQ", CreatedAt: created, UpdatedAt: updated},
			{
				ID: "s2", Name: "Branch", Location: str("Lyon"), Country: str("FR"),
				Address: str("1 rue de la Paix"), ContactName: str("Ana"),
				ContactEmail: str("ana@example.com"), ContactPhone: str("+33 1 23"),
				FloorplanURL:   str("file:///plans/s2.pdf"),
				RackPhotosURLs: []string{"file:///a.jpg", "file:///b.jpg"},
				CreatedAt:      created, UpdatedAt: updated, UserID: str("u1"),
			},
		}
		for _, row := range rows {
			if got := SiteToRow(SiteToView(row)); !reflect.DeepEqual(got, row) {
				t.Errorf("SiteToRow(SiteToView(%+v)) = %+v", row, got)
			}
		}
	})

	t.Run("equipment", func(t *testing.T) {
		rows := []EquipmentRow{
			{ID: "e1", Name: "core", Type: "router", Model: "MX", Manufacturer: "Juniper", Status: "unknown", CreatedAt: created, UpdatedAt: updated},
			{
				ID: "e2", Name: "sw1", Type: "switch", Model: "C9300", Manufacturer: "Cisco",
				IPAddress: str("10.0.0.2"), MACAddress: str("aa:bb:cc:dd:ee:ff"), Firmware: str("17.3"),
				InstallDate: sql.NullTime{Time: time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC), Valid: true},
				Status:      "active", Netbios: str("SW1"), ConfigMarkdown: str("# sw1"),
				SiteID: str("s1"), CreatedAt: created, UpdatedAt: updated, UserID: str("u1"),
			},
		}
		for _, row := range rows {
			if got := EquipmentToRow(EquipmentToView(row)); !reflect.DeepEqual(got, row) {
				t.Errorf("EquipmentToRow(EquipmentToView(%+v)) = %+v", row, got)
			}
		}
	})

	t.Run("connection", func(t *testing.T) {
		rows := []ConnectionRow{
			{ID: "c1", Type: "fiber", Provider: "Orange", Status: "active", CreatedAt: created, UpdatedAt: updated},
			{
				ID: "c2", SiteID: str("s1"), Type: "adsl", Provider: "Free", ContractRef: str("K-1"),
				Bandwidth: str("20M"), SLA: str("4h"), Status: "failure",
				CreatedAt: created, UpdatedAt: updated, UserID: str("u2"),
			},
		}
		for _, row := range rows {
			if got := ConnectionToRow(ConnectionToView(row)); !reflect.DeepEqual(got, row) {
				t.Errorf("ConnectionToRow(ConnectionToView(%+v)) = %+v", row, got)
			}
		}
	})

	t.Run("ip range", func(t *testing.T) {
		rows := []IPRangeRow{
			{ID: "r1", Range: "10.0.0.0/8", CreatedAt: created, UpdatedAt: updated},
			{
				ID: "r2", SiteID: str("s1"), Range: "192.168.1.0/24", Description: str("LAN"),
				IsReserved: true, DHCPScope: true, CreatedAt: created, UpdatedAt: updated, UserID: str("u1"),
			},
		}
		for _, row := range rows {
			if got := IPRangeToRow(IPRangeToView(row)); !reflect.DeepEqual(got, row) {
				t.Errorf("IPRangeToRow(IPRangeToView(%+v)) = %+v", row, got)
			}
		}
	})
}

func TestToView_absentValues(t *testing.T) {
	s := SiteToView(SiteRow{ID: "s1", Name: "HQ"})
	if s.Location != "" || s.ContactEmail != "" {
		t.Errorf("absent strings = %q/%q, want empty", s.Location, s.ContactEmail)
	}
	if s.RackPhotosURLs == nil || len(s.RackPhotosURLs) != 0 {
		t.Errorf("RackPhotosURLs = %#v, want empty non-nil list", s.RackPhotosURLs)
	}

	r := IPRangeToView(IPRangeRow{ID: "r1", Range: "10.0.0.0/8"})
	if r.IsReserved || r.DHCPScope || r.SiteID != "" {
		t.Errorf("IPRangeToView() = %+v, want zero flags and empty siteId", r)
	}
}

func TestIsCIDR4(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"192.168.1.0/24", true},
		{"0.0.0.0/0", true},
		{"10.0.0.1/32", true},
		{"192.168.1.0/33", false},
		{"256.1.1.1/24", false},
		{"abc/24", false},
		{"192.168.1.0", false},
		{"::1/128", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsCIDR4(tt.in); got != tt.want {
				t.Errorf("IsCIDR4(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsIPv4(t *testing.T) {
	for in, want := range map[string]bool{
		"10.0.0.1":        true,
		"255.255.255.255": true,
		"256.0.0.1":       false,
		"10.0.0":          false,
		"::ffff:1.2.3.4":  false,
		"fe80::1":         false,
	} {
		if got := IsIPv4(in); got != want {
			t.Errorf("IsIPv4(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	validEquipment := func() Equipment {
		return Equipment{Name: "sw1", Type: "switch", Model: "C9300", Manufacturer: "Cisco", Status: "active"}
	}

	tests := []struct {
		name      string
		record    interface{ Validate() error }
		wantField string
	}{
		{name: "valid site", record: Site{Name: "HQ"}},
		{name: "site without name", record: Site{}, wantField: "name"},
		{name: "site with bad email", record: Site{Name: "HQ", ContactEmail: "nope"}, wantField: "contactEmail"},
		{name: "valid equipment", record: validEquipment()},
		{name: "equipment without model", record: func() Equipment { e := validEquipment(); e.Model = ""; return e }(), wantField: "model"},
		{name: "equipment with bad type", record: func() Equipment { e := validEquipment(); e.Type = "toaster"; return e }(), wantField: "type"},
		{name: "equipment with bad ip", record: func() Equipment { e := validEquipment(); e.IPAddress = "10.0.0.256"; return e }(), wantField: "ipAddress"},
		{name: "equipment with bad mac", record: func() Equipment { e := validEquipment(); e.MACAddress = "aa:bb:cc-dd:ee:ff"; return e }(), wantField: "macAddress"},
		{name: "equipment with bad date", record: func() Equipment { e := validEquipment(); e.InstallDate = "05/11/2023"; return e }(), wantField: "installDate"},
		{name: "connection without provider", record: NetworkConnection{Type: "fiber", Status: "active"}, wantField: "provider"},
		{name: "connection with equipment status", record: NetworkConnection{Type: "fiber", Provider: "X", Status: "inactive"}, wantField: "status"},
		{name: "valid ip range", record: IPRange{Range: "192.168.1.0/24"}},
		{name: "ip range with bad prefix", record: IPRange{Range: "192.168.1.0/33"}, wantField: "range"},
		{name: "netbios at its limit", record: func() Equipment { e := validEquipment(); e.Netbios = strings.Repeat("N", 15); return e }()},
		{name: "netbios too long", record: func() Equipment { e := validEquipment(); e.Netbios = strings.Repeat("N", 16); return e }(), wantField: "netbios"},
		{name: "site name too long", record: Site{Name: strings.Repeat("x", 201)}, wantField: "name"},
		{name: "ip range description too long", record: IPRange{Range: "10.0.0.0/8", Description: strings.Repeat("d", 501)}, wantField: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrConstraintViolation) {
				t.Error("errors.Is(err, ErrConstraintViolation) = false")
			}
		})
	}
}

func TestNormalize_defaultsStatus(t *testing.T) {
	e := Equipment{Name: " sw1 ", Type: "Switch"}
	e.Normalize()
	if e.Status != StatusUnknown || e.Name != "sw1" || e.Type != "switch" {
		t.Errorf("Normalize() = %+v", e)
	}

	c := NetworkConnection{Status: "  "}
	c.Normalize()
	if c.Status != StatusUnknown {
		t.Errorf("Status = %q, want %q", c.Status, StatusUnknown)
	}
}

func TestFields_Lookup(t *testing.T) {
	for _, name := range []string{"contactEmail", "contact_email"} {
		f, ok := SiteFields.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
		if f.View != "contactEmail" || f.Column != "contact_email" {
			t.Errorf("Lookup(%q) = %+v", name, f)
		}
	}
	if _, ok := SiteFields.Lookup("contact_mail"); ok {
		t.Error("Lookup(contact_mail) found a field")
	}
}

func TestFieldTables_matchJSONTags(t *testing.T) {
	tables := []struct {
		kind Kind
		typ  reflect.Type
	}{
		{KindSite, reflect.TypeOf(Site{})},
		{KindEquipment, reflect.TypeOf(Equipment{})},
		{KindConnection, reflect.TypeOf(NetworkConnection{})},
		{KindIPRange, reflect.TypeOf(IPRange{})},
	}
	for _, tt := range tables {
		fields := FieldsFor(tt.kind)
		if len(fields) != tt.typ.NumField() {
			t.Errorf("%s: %d mapped fields, struct has %d", tt.kind, len(fields), tt.typ.NumField())
		}
		for i := 0; i < tt.typ.NumField(); i++ {
			sf := tt.typ.Field(i)
			name := jsonFieldName(sf)
			f, ok := fields.Lookup(name)
			if !ok {
				t.Errorf("%s: json field %q has no column", tt.kind, name)
				continue
			}
			if f.Bool != (sf.Type.Kind() == reflect.Bool) {
				t.Errorf("%s: field %q Bool = %v, struct kind is %s", tt.kind, name, f.Bool, sf.Type.Kind())
			}
		}
	}
}

func TestApply(t *testing.T) {
	base := IPRange{ID: "r1", Range: "10.0.0.0/8", Description: "old", CreatedAt: created}

	t.Run("merges view and column spellings", func(t *testing.T) {
		got, err := Apply(base, IPRangeFields, Patch{"description": "new", "is_reserved": true})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if got.Description != "new" || !got.IsReserved || got.Range != base.Range || got.ID != "r1" {
			t.Errorf("Apply() = %+v", got)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
	})

	t.Run("nil clears", func(t *testing.T) {
		got, err := Apply(base, IPRangeFields, Patch{"description": nil})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if got.Description != "" {
			t.Errorf("Description = %q, want empty", got.Description)
		}
	})

	tests := []struct {
		name  string
		patch Patch
	}{
		{"unknown field", Patch{"colour": "red"}},
		{"read-only id", Patch{"id": "r2"}},
		{"read-only createdAt", Patch{"created_at": "2020-01-01T00:00:00Z"}},
		{"wrong type", Patch{"isReserved": "yes"}},
		{"both spellings", Patch{"isReserved": true, "is_reserved": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(base, IPRangeFields, tt.patch)
			if !errors.Is(err, ErrConstraintViolation) {
				t.Errorf("Apply() error = %v, want ErrConstraintViolation", err)
			}
		})
	}
}

func TestPatch_Columns(t *testing.T) {
	cols, err := Patch{"description": "x", "is_reserved": true, "siteId": nil}.Columns(IPRangeFields)
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	if want := []string{"description", "is_reserved", "site_id"}; !reflect.DeepEqual(cols, want) {
		t.Errorf("Columns() = %v, want %v", cols, want)
	}

	_, err = Patch{"siteId": "s1", "site_id": "s2"}.Columns(IPRangeFields)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "siteId" {
		t.Errorf("Columns(both spellings) error = %v, want a siteId validation error", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"site": KindSite, "equipment": KindEquipment, "connection": KindConnection,
		"iprange": KindIPRange, "ip-ranges": KindIPRange,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("vlan"); err == nil {
		t.Error("ParseKind(vlan) expected error")
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		r    DependentRecord
		want string
	}{
		{Equipment{Name: "core-1"}, "core-1"},
		{NetworkConnection{Provider: "Orange", Type: "fiber"}, "Orange (fiber)"},
		{IPRange{Range: "10.0.0.0/24", Description: "mgmt"}, "10.0.0.0/24 (mgmt)"},
		{IPRange{Range: "10.0.1.0/24"}, "10.0.1.0/24"},
	}
	for _, tt := range tests {
		if got := tt.r.DisplayLabel(); got != tt.want {
			t.Errorf("DisplayLabel() = %q, want %q", got, tt.want)
		}
	}
}

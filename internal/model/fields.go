package model

// Field is one attribute of a record kind under both of its spellings.
// View is the camelCase name used in JSON, patches and imports; Column is the
// snake_case storage column.
type Field struct {
	View     string
	Column   string
	ReadOnly bool
	// Bool marks boolean fields; every other field holds text or a list.
	Bool bool
}

// Fields is the mapping table of a record kind, in storage column order.
// Every read and write path goes through one of these tables.
type Fields []Field

// Columns returns the storage column names in table order.
func (fs Fields) Columns() []string {
	cols := make([]string, len(fs))
	for i, f := range fs {
		cols[i] = f.Column
	}
	return cols
}

// Column translates a view name to its column.
func (fs Fields) Column(view string) (string, bool) {
	for _, f := range fs {
		if f.View == view {
			return f.Column, true
		}
	}
	return "", false
}

// View translates a column to its view name.
func (fs Fields) View(column string) (string, bool) {
	for _, f := range fs {
		if f.Column == column {
			return f.View, true
		}
	}
	return "", false
}

// Lookup resolves a field named in either spelling.
func (fs Fields) Lookup(name string) (Field, bool) {
	for _, f := range fs {
		if f.View == name || f.Column == name {
			return f, true
		}
	}
	return Field{}, false
}

// Index returns the position of the field with the given column, or -1.
func (fs Fields) Index(column string) int {
	for i, f := range fs {
		if f.Column == column {
			return i
		}
	}
	return -1
}

var SiteFields = Fields{
	{View: "id", Column: "id", ReadOnly: true},
	{View: "name", Column: "name"},
	{View: "location", Column: "location"},
	{View: "country", Column: "country"},
	{View: "address", Column: "address"},
	{View: "contactName", Column: "contact_name"},
	{View: "contactEmail", Column: "contact_email"},
	{View: "contactPhone", Column: "contact_phone"},
	{View: "floorplanUrl", Column: "floorplan_url"},
	{View: "rackPhotosUrls", Column: "rack_photos_urls"},
	{View: "createdAt", Column: "created_at", ReadOnly: true},
	{View: "updatedAt", Column: "updated_at", ReadOnly: true},
	{View: "userId", Column: "user_id", ReadOnly: true},
}

var EquipmentFields = Fields{
	{View: "id", Column: "id", ReadOnly: true},
	{View: "name", Column: "name"},
	{View: "type", Column: "type"},
	{View: "model", Column: "model"},
	{View: "manufacturer", Column: "manufacturer"},
	{View: "ipAddress", Column: "ip_address"},
	{View: "macAddress", Column: "mac_address"},
	{View: "firmware", Column: "firmware"},
	{View: "installDate", Column: "install_date"},
	{View: "status", Column: "status"},
	{View: "netbios", Column: "netbios"},
	{View: "configMarkdown", Column: "config_markdown"},
	{View: "siteId", Column: "site_id"},
	{View: "createdAt", Column: "created_at", ReadOnly: true},
	{View: "updatedAt", Column: "updated_at", ReadOnly: true},
	{View: "userId", Column: "user_id", ReadOnly: true},
}

var ConnectionFields = Fields{
	{View: "id", Column: "id", ReadOnly: true},
	{View: "siteId", Column: "site_id"},
	{View: "type", Column: "type"},
	{View: "provider", Column: "provider"},
	{View: "contractRef", Column: "contract_ref"},
	{View: "bandwidth", Column: "bandwidth"},
	{View: "sla", Column: "sla"},
	{View: "status", Column: "status"},
	{View: "createdAt", Column: "created_at", ReadOnly: true},
	{View: "updatedAt", Column: "updated_at", ReadOnly: true},
	{View: "userId", Column: "user_id", ReadOnly: true},
}

var IPRangeFields = Fields{
	{View: "id", Column: "id", ReadOnly: true},
	{View: "siteId", Column: "site_id"},
	{View: "range", Column: "range"},
	{View: "description", Column: "description"},
	{View: "isReserved", Column: "is_reserved", Bool: true},
	{View: "dhcpScope", Column: "dhcp_scope", Bool: true},
	{View: "createdAt", Column: "created_at", ReadOnly: true},
	{View: "updatedAt", Column: "updated_at", ReadOnly: true},
	{View: "userId", Column: "user_id", ReadOnly: true},
}

// FieldsFor returns the mapping table of a kind.
func FieldsFor(k Kind) Fields {
	switch k {
	case KindSite:
		return SiteFields
	case KindEquipment:
		return EquipmentFields
	case KindConnection:
		return ConnectionFields
	case KindIPRange:
		return IPRangeFields
	}
	return nil
}

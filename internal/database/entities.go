package database

import (
	"netinv/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// entity binds a record kind to its table. scan and args both follow the
// column order of fields.
type entity[T model.Record] struct {
	kind   model.Kind
	fields model.Fields
	scan   func(d dialect, sc rowScanner) (T, error)
	args   func(d dialect, v T) ([]any, error)
	// prepare normalizes and validates a record before it is written.
	prepare func(v T) (T, error)
}

func (e entity[T]) table() string { return e.kind.Table() }

var siteEntity = entity[model.Site]{
	kind:   model.KindSite,
	fields: model.SiteFields,
	scan: func(d dialect, sc rowScanner) (model.Site, error) {
		var r model.SiteRow
		err := sc.Scan(&r.ID, &r.Name, &r.Location, &r.Country, &r.Address,
			&r.ContactName, &r.ContactEmail, &r.ContactPhone, &r.FloorplanURL,
			d.listScanner(&r.RackPhotosURLs), &r.CreatedAt, &r.UpdatedAt, &r.UserID)
		if err != nil {
			return model.Site{}, err
		}
		return model.SiteToView(r), nil
	},
	args: func(d dialect, v model.Site) ([]any, error) {
		r := model.SiteToRow(v)
		photos, err := d.listArg(r.RackPhotosURLs)
		if err != nil {
			return nil, err
		}
		return []any{r.ID, r.Name, r.Location, r.Country, r.Address,
			r.ContactName, r.ContactEmail, r.ContactPhone, r.FloorplanURL,
			photos, r.CreatedAt, r.UpdatedAt, r.UserID}, nil
	},
	prepare: func(v model.Site) (model.Site, error) {
		v.Normalize()
		return v, v.Validate()
	},
}

var equipmentEntity = entity[model.Equipment]{
	kind:   model.KindEquipment,
	fields: model.EquipmentFields,
	scan: func(_ dialect, sc rowScanner) (model.Equipment, error) {
		var r model.EquipmentRow
		err := sc.Scan(&r.ID, &r.Name, &r.Type, &r.Model, &r.Manufacturer,
			&r.IPAddress, &r.MACAddress, &r.Firmware, &r.InstallDate, &r.Status,
			&r.Netbios, &r.ConfigMarkdown, &r.SiteID, &r.CreatedAt, &r.UpdatedAt, &r.UserID)
		if err != nil {
			return model.Equipment{}, err
		}
		return model.EquipmentToView(r), nil
	},
	args: func(_ dialect, v model.Equipment) ([]any, error) {
		r := model.EquipmentToRow(v)
		return []any{r.ID, r.Name, r.Type, r.Model, r.Manufacturer,
			r.IPAddress, r.MACAddress, r.Firmware, r.InstallDate, r.Status,
			r.Netbios, r.ConfigMarkdown, r.SiteID, r.CreatedAt, r.UpdatedAt, r.UserID}, nil
	},
	prepare: func(v model.Equipment) (model.Equipment, error) {
		v.Normalize()
		return v, v.Validate()
	},
}

var connectionEntity = entity[model.NetworkConnection]{
	kind:   model.KindConnection,
	fields: model.ConnectionFields,
	scan: func(_ dialect, sc rowScanner) (model.NetworkConnection, error) {
		var r model.ConnectionRow
		err := sc.Scan(&r.ID, &r.SiteID, &r.Type, &r.Provider, &r.ContractRef,
			&r.Bandwidth, &r.SLA, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.UserID)
		if err != nil {
			return model.NetworkConnection{}, err
		}
		return model.ConnectionToView(r), nil
	},
	args: func(_ dialect, v model.NetworkConnection) ([]any, error) {
		r := model.ConnectionToRow(v)
		return []any{r.ID, r.SiteID, r.Type, r.Provider, r.ContractRef,
			r.Bandwidth, r.SLA, r.Status, r.CreatedAt, r.UpdatedAt, r.UserID}, nil
	},
	prepare: func(v model.NetworkConnection) (model.NetworkConnection, error) {
		v.Normalize()
		return v, v.Validate()
	},
}

var ipRangeEntity = entity[model.IPRange]{
	kind:   model.KindIPRange,
	fields: model.IPRangeFields,
	scan: func(_ dialect, sc rowScanner) (model.IPRange, error) {
		var r model.IPRangeRow
		err := sc.Scan(&r.ID, &r.SiteID, &r.Range, &r.Description,
			&r.IsReserved, &r.DHCPScope, &r.CreatedAt, &r.UpdatedAt, &r.UserID)
		if err != nil {
			return model.IPRange{}, err
		}
		return model.IPRangeToView(r), nil
	},
	args: func(_ dialect, v model.IPRange) ([]any, error) {
		r := model.IPRangeToRow(v)
		return []any{r.ID, r.SiteID, r.Range, r.Description,
			r.IsReserved, r.DHCPScope, r.CreatedAt, r.UpdatedAt, r.UserID}, nil
	},
	prepare: func(v model.IPRange) (model.IPRange, error) {
		v.Normalize()
		return v, v.Validate()
	},
}

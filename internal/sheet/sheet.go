// Package sheet converts the inventory to and from an xlsx workbook with one
// sheet per record kind. Header cells name fields in either spelling.
package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// ContentType is the media type of the workbooks written by Write.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var sheetNames = map[model.Kind]string{
	model.KindSite:       "Sites",
	model.KindEquipment:  "Equipment",
	model.KindConnection: "Connections",
	model.KindIPRange:    "IP Ranges",
}

var kinds = []model.Kind{model.KindSite, model.KindEquipment, model.KindConnection, model.KindIPRange}

// Fields holding a list or a boolean need parsing; everything else is text.
var (
	listFields = map[string]bool{"rackPhotosUrls": true}
	boolFields = map[string]bool{"isReserved": true, "dhcpScope": true}
)

// Write renders b as a workbook with a header row of view names on every
// sheet, including the empty ones.
func Write(w io.Writer, b *inventory.ImportBatch) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, k := range kinds {
		name := sheetNames[k]
		if i == 0 {
			err = f.SetSheetName("Sheet1", name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}

		var rows [][]any
		switch k {
		case model.KindSite:
			rows, err = toRows(model.SiteFields, b.Sites)
		case model.KindEquipment:
			rows, err = toRows(model.EquipmentFields, b.Equipment)
		case model.KindConnection:
			rows, err = toRows(model.ConnectionFields, b.Connections)
		case model.KindIPRange:
			rows, err = toRows(model.IPRangeFields, b.IPRanges)
		}
		if err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, model.FieldsFor(k), rows, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, fields model.Fields, rows [][]any, style int) error {
	head := make([]any, len(fields))
	for i, fld := range fields {
		head[i] = fld.View
	}
	if err := f.SetSheetRow(name, "A1", &head); err != nil {
		return fmt.Errorf("writing header of %s: %w", name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(fields), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return fmt.Errorf("styling header of %s: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, name, err)
		}
	}
	return nil
}

// toRows lays out records in the column order of fields.
func toRows[T any](fields model.Fields, records []T) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encoding record: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		row := make([]any, len(fields))
		for i, fld := range fields {
			row[i] = cellValue(m[fld.View])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, "; ")
	default:
		return x
	}
}

// Read parses a workbook written by Write or by hand. Sheets are matched by
// kind name ("Sites", "ip_ranges", "Network Connections"...); unknown sheets
// are skipped. Timestamps and user columns are ignored since the import
// stamps them; ids are kept.
func Read(r io.Reader) (*inventory.ImportBatch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	b := &inventory.ImportBatch{}
	seen := map[model.Kind]string{}
	for _, name := range f.GetSheetList() {
		k, err := model.ParseKind(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
		if err != nil {
			continue
		}
		if prev, ok := seen[k]; ok {
			return nil, &model.ValidationError{Field: name, Reason: fmt.Sprintf("duplicates sheet %s", prev)}
		}
		seen[k] = name

		switch k {
		case model.KindSite:
			b.Sites, err = readSheet[model.Site](f, name, model.SiteFields)
		case model.KindEquipment:
			b.Equipment, err = readSheet[model.Equipment](f, name, model.EquipmentFields)
		case model.KindConnection:
			b.Connections, err = readSheet[model.NetworkConnection](f, name, model.ConnectionFields)
		case model.KindIPRange:
			b.IPRanges, err = readSheet[model.IPRange](f, name, model.IPRangeFields)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readSheet[T any](f *excelize.File, sheet string, fields model.Fields) ([]T, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		fld, ok := fields.Lookup(h)
		if !ok {
			return nil, &model.ValidationError{Field: h, Reason: fmt.Sprintf("is not a column of sheet %s", sheet)}
		}
		if fld.ReadOnly && fld.View != "id" {
			continue
		}
		cols[i] = fld.View
	}

	var out []T
	for n, row := range rows[1:] {
		values := map[string]any{}
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if i >= len(cols) || cols[i] == "" || cell == "" {
				continue
			}
			v, err := parseCell(cols[i], cell)
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", sheet, n+2, err)
			}
			values[cols[i]] = v
		}
		if len(values) == 0 {
			continue
		}

		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", sheet, n+2, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("sheet %s row %d: decoding: %w", sheet, n+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseCell(field, cell string) (any, error) {
	switch {
	case listFields[field]:
		var list []string
		for _, p := range strings.Split(cell, ";") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return list, nil
	case boolFields[field]:
		switch strings.ToLower(cell) {
		case "yes", "y", "x":
			return true, nil
		case "no", "n":
			return false, nil
		}
		v, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, &model.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a boolean", cell)}
		}
		return v, nil
	}
	return cell, nil
}

package model

import (
	"database/sql"
	"time"
)

// DateLayout is the view format of date-only fields such as installDate.
const DateLayout = "2006-01-02"

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func dateString(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(DateLayout)
}

// Storage keeps empty lists as NULL; views never see a nil list.
func listView(l []string) []string {
	if l == nil {
		return []string{}
	}
	return append([]string(nil), l...)
}

func listRow(l []string) []string {
	if len(l) == 0 {
		return nil
	}
	return append([]string(nil), l...)
}

package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// parseAssignments turns "field=value" arguments into a patch against the
// mapping table of one kind. Field names may use either spelling. Values of
// boolean fields are parsed; everything else stays text.
func parseAssignments(fields model.Fields, args []string) (model.Patch, error) {
	p := model.Patch{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected field=value, got %q", a)
		}
		if f, known := fields.Lookup(k); known && f.Bool {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%s: expected true or false, got %q", k, v)
			}
			p[k] = b
			continue
		}
		p[k] = v
	}
	return p, nil
}

// openUpload opens path as an object upload. The caller closes the file.
func openUpload(path string) (inventory.ObjectUpload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return inventory.ObjectUpload{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return inventory.ObjectUpload{}, nil, err
	}
	return inventory.ObjectUpload{
		Name:        filepath.Base(path),
		Body:        f,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}, f, nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

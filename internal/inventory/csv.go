package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column aliases accepted in CSV headers, matched case-insensitively.
var columnAliases = map[string][]string{
	"id":        {"id", "container", "container no", "số cont", "so cont"},
	"position":  {"position", "slot", "location", "vị trí trên bãi", "vi tri tren bai"},
	"ship":      {"ship", "ship name", "shipname", "vessel", "tàu", "tên tàu"},
	"size":      {"size", "kích cỡ", "kich co"},
	"isoSize":   {"iso size", "isosize", "iso", "kích cỡ iso", "kich co iso"},
	"cargoType": {"cargo type", "cargotype", "cargo", "loại hàng", "loai hang"},
}

// ReadCSV reads raw rows from a CSV stream with a header line. Unknown
// columns are ignored; missing columns yield empty fields.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("inventory file is empty")
		}
		return nil, fmt.Errorf("failed to read inventory header: %w", err)
	}

	columns := mapColumns(header)
	if _, ok := columns["position"]; !ok {
		return nil, fmt.Errorf("inventory header has no position column (got %s)", strings.Join(header, ", "))
	}

	var rows []RawRow
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory line %d: %w", line, err)
		}
		if isBlankLine(fields) {
			continue
		}
		get := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}
		rows = append(rows, RawRow{
			ID:        get("id"),
			Position:  get("position"),
			ShipName:  get("ship"),
			Size:      get("size"),
			ISOSize:   get("isoSize"),
			CargoType: get("cargoType"),
		})
	}
	return rows, nil
}

func mapColumns(header []string) map[string]int {
	lookup := make(map[string]string)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			lookup[alias] = field
		}
	}

	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := lookup[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	return columns
}

func isBlankLine(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package ingest

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// sheetAliases maps curated-spreadsheet column headings (lowercased) to
// dataset field names. The sheet is maintained by hand, so headings are
// human labels rather than machine names.
var sheetAliases = map[string]string{
	"name":             model.FieldName,
	"physical address": model.FieldAddress,
	"address":          model.FieldAddress,
	"website":          model.FieldWebsite,
	"phone":            model.FieldPhone,
	"cuisine":          model.FieldCuisine,
	"hours":            model.FieldHours,
	"maps link":        model.FieldMapsLink,
}

// ReadSheet loads the manually curated spreadsheet (.xlsx or .csv) and maps
// its columns onto dataset fields. Rows without a name are skipped; every
// returned record carries the sheet filename as its source and a synthesized
// maps link when the sheet has none.
func ReadSheet(path string) ([]model.Record, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	fields := make([]string, len(rows[0]))
	for i, heading := range rows[0] {
		fields[i] = sheetAliases[strings.ToLower(strings.TrimSpace(heading))]
	}

	source := filepath.Base(path)

	var records []model.Record
	for _, row := range rows[1:] {
		record := model.Record{}
		for i, field := range fields {
			if field == "" || i >= len(row) {
				continue
			}
			record[field] = strings.TrimSpace(row[i])
		}
		if !record.Has(model.FieldName) {
			continue
		}

		record.SetIfEmpty(model.FieldSource, source)
		record.SetIfEmpty(model.FieldMapsLink, MapsLink(record.Get(model.FieldName), record.Get(model.FieldAddress)))
		records = append(records, record)
	}

	return records, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open sheet %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: sheet %s has no worksheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open sheet %s", path)
	}
	defer f.Close()

	header, records, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, record := range records {
		row := make([]string, len(header))
		for i, column := range header {
			row[i] = record[column]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MapsLink builds a Google Maps search URL for a place. Returns "" when
// there is nothing to search for.
func MapsLink(name, address string) string {
	query := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(address))
	if query == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}

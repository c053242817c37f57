// Package ingest reads and writes the dataset files the pipeline operates
// on: the per-kind dataset CSVs and the manually curated spreadsheet.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// ReadCSV decodes a header-mapped dataset CSV into records. Unknown columns
// are preserved as record fields; short rows are tolerated. Values are
// whitespace-trimmed and empty cells are left unset, so a record carries
// only the fields its row actually filled.
func ReadCSV(r io.Reader) ([]string, []model.Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: read csv")
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(model.Record, len(header))
		for i, column := range header {
			if i >= len(row) {
				break
			}
			if value := strings.TrimSpace(row[i]); value != "" {
				record[column] = value
			}
		}
		records = append(records, record)
	}

	return header, records, nil
}

// WriteCSV encodes records in the given column order. Fields outside the
// header are dropped from the output; encoding/csv applies RFC 4180 quoting.
func WriteCSV(w io.Writer, header []string, records []model.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return eris.Wrap(err, "ingest: write csv header")
	}

	row := make([]string, len(header))
	for _, record := range records {
		for i, column := range header {
			row[i] = record[column]
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "ingest: write csv row")
		}
	}

	writer.Flush()
	return eris.Wrap(writer.Error(), "ingest: flush csv")
}

// ReadCSVFile reads a dataset CSV from disk.
func ReadCSVFile(path string) ([]string, []model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSVFile writes a dataset CSV to disk, replacing any existing file.
func WriteCSVFile(path string, header []string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "ingest: create %s", path)
	}
	if err := WriteCSV(f, header, records); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "ingest: close %s", path)
}

// MergeHeader extends the dataset column order with any extra columns found
// on the records, in first-seen record order, so unknown source fields
// survive a read-modify-write cycle.
func MergeHeader(base model.FieldSet, records []model.Record) []string {
	header := make([]string, len(base))
	copy(header, base)

	seen := make(map[string]struct{}, len(header))
	for _, column := range header {
		seen[column] = struct{}{}
	}

	for _, record := range records {
		extras := make([]string, 0, 2)
		for column := range record {
			if _, ok := seen[column]; !ok {
				extras = append(extras, column)
			}
		}
		// Record fields are unordered; sort the handful of extras so the
		// output header is deterministic.
		sort.Strings(extras)
		for _, column := range extras {
			seen[column] = struct{}{}
			header = append(header, column)
		}
	}

	return header
}

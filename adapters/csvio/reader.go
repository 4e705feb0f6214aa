// Package csvio implements the CSV side of the pipeline boundary: reading
// the lead export and writing the four artifact tables.
package csvio

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"leadfunnel/domain/funnel"
	"leadfunnel/internal/errors"
)

// Reader loads a lead-funnel CSV export into a RawTable.
type Reader struct {
	path string
}

// NewReader creates a reader for the export at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Read loads the export. File access problems are the one fatal condition
// at this boundary and surface as coded errors; data-quality problems do
// not — they are left for the normalizer to absorb.
func (r *Reader) Read() (funnel.RawTable, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return funnel.RawTable{}, errors.InputRead(r.path, err)
	}
	defer f.Close()

	table, err := ReadFrom(f)
	if err != nil {
		return funnel.RawTable{}, errors.InputRead(r.path, err)
	}
	return table, nil
}

// ReadFrom parses CSV content into a RawTable. The first record is the
// header; header names are whitespace-trimmed. Rows shorter than the header
// leave the trailing cells empty, longer rows drop the extras.
func ReadFrom(rd io.Reader) (funnel.RawTable, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := cr.Read()
	if err != nil {
		return funnel.RawTable{}, err
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return funnel.RawTable{}, err
		}
		row := make(map[string]string, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return funnel.RawTable{Columns: columns, Rows: rows}, nil
}

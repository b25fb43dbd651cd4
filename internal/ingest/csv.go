package ingest

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a single-kind CRM export. The first row is the header; the
// record kind is inferred from it.
func ReadCSV(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged exports are common, tolerate them
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}
	if len(records) == 0 {
		return &RecordSet{}, nil
	}

	header := records[0]
	kind := kindFromHeader(header)
	if kind == kindUnknown {
		return nil, eris.Errorf("ingest: cannot infer record kind from columns %v", header)
	}

	set := mapRows(kind, header, records[1:])
	return &set, nil
}

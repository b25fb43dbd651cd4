package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ReadXLSX reads a CRM export workbook. Each sheet is treated as an
// independent table; sheets whose kind cannot be inferred are skipped with a
// warning so a cover sheet never blocks a load.
func ReadXLSX(path string) (*RecordSet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}

	var set RecordSet
	for _, sheet := range f.Sheets {
		if len(sheet.Rows) == 0 {
			continue
		}

		header := rowToStrings(sheet.Rows[0])
		kind := kindFromHeader(header)
		if kind == kindUnknown {
			zap.L().Warn("ingest: skipping sheet with unrecognized columns",
				zap.String("sheet", sheet.Name))
			continue
		}

		rows := make([][]string, 0, len(sheet.Rows)-1)
		for _, row := range sheet.Rows[1:] {
			rows = append(rows, rowToStrings(row))
		}
		set.Merge(mapRows(kind, header, rows))
	}

	return &set, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

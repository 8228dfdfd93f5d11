package spreadsheet

import (
	"bytes"
	"regexp"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var plainNumber = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][-+]?\d+)?$`)

func readXLSX(content []byte, preferred []string) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := pickSheet(f.GetSheetList(), preferred)
	if name == "" {
		return nil, ErrNoSheets
	}

	// RawCellValue mantém datas como número serial e números sem formatação regional
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler aba %s", name)
	}

	sheet := &Sheet{Name: name, Rows: make([][]Cell, 0, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, value := range row {
			cells[c] = Text(value)
			if value == "" || !plainNumber.MatchString(value) {
				continue
			}

			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			cellType, err := f.GetCellType(name, axis)
			if err != nil {
				continue
			}

			switch cellType {
			case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
				cells[c] = Number(value)
			}
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	return sheet, nil
}

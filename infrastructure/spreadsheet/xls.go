package spreadsheet

import (
	"bytes"
	"errors"
	"strings"

	xls "github.com/extrame/xls"
)

// exportações antigas em .xls costumam vir em windows-1252
var xlsCharsets = []string{"utf-8", "windows-1252"}

func readXLS(content []byte, preferred []string) (*Sheet, error) {
	var (
		wb      *xls.WorkBook
		lastErr error
	)
	for _, charset := range xlsCharsets {
		book, err := xls.OpenReader(bytes.NewReader(content), charset)
		if err == nil && book != nil {
			wb = book
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if ws := wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}

	name := pickSheet(names, preferred)
	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		if candidate := wb.GetSheet(i); candidate != nil && candidate.Name == name {
			ws = candidate
			break
		}
	}
	if ws == nil {
		return nil, ErrNoSheets
	}

	width := sheetWidth(ws)
	sheet := &Sheet{Name: ws.Name, Rows: make([][]Cell, 0, int(ws.MaxRow)+1)}
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		cells := make([]Cell, width)
		if row != nil {
			for j := 0; j < width; j++ {
				cells[j] = Text(strings.TrimSpace(row.Col(j)))
			}
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	return sheet, nil
}

// sheetWidth não confia em Row.LastCol(): procura a última coluna preenchida
func sheetWidth(ws *xls.WorkSheet) int {
	const scanMax = 256

	width := 0
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		for j := scanMax - 1; j >= width; j-- {
			if strings.TrimSpace(row.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}

	if width == 0 {
		width = 1
	}
	return width
}

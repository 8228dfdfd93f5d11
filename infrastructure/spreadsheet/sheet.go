// Package spreadsheet lê exportações em CSV, XLSX e XLS e devolve a planilha
// como uma grade de células de texto, marcando as que vieram tipadas como número.
package spreadsheet

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptyFile         = errors.New("empty file")
	ErrNoSheets          = errors.New("workbook has no sheets")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Cell é o conteúdo de uma célula. Numeric indica que o valor veio de uma
// célula numérica da planilha e está em notação invariante ("1234.5").
type Cell struct {
	Value   string
	Numeric bool
}

func Text(v string) Cell {
	return Cell{Value: v}
}

func Number(v string) Cell {
	return Cell{Value: v, Numeric: true}
}

func (c Cell) IsBlank() bool {
	return strings.TrimSpace(c.Value) == ""
}

// Sheet é a aba escolhida do arquivo
type Sheet struct {
	Name   string
	Format Format
	Rows   [][]Cell
}

// Values retorna os textos de uma linha
func Values(row []Cell) []string {
	values := make([]string, len(row))
	for i, c := range row {
		values[i] = c.Value
	}
	return values
}

func IsBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

type Decoder interface {
	Decode(fileName string, content []byte) (*Sheet, error)
}

type decoder struct {
	preferredSheets []string
}

// NewDecoder cria um decodificador que prefere abas com os nomes informados
// (ex.: "Raw Data Report") e usa a primeira aba quando nenhuma existe.
func NewDecoder(preferredSheets []string) Decoder {
	return &decoder{preferredSheets: preferredSheets}
}

func (d *decoder) Decode(fileName string, content []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := DetectFormat(fileName, content)
	if err != nil {
		return nil, err
	}

	var sheet *Sheet
	switch format {
	case FormatXLSX:
		sheet, err = readXLSX(content, d.preferredSheets)
	case FormatXLS:
		sheet, err = readXLS(content, d.preferredSheets)
	default:
		sheet, err = readCSV(content)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler arquivo %s", format)
	}

	sheet.Format = format
	return sheet, nil
}

// DetectFormat identifica o formato pelo conteúdo e, para texto, pela extensão
func DetectFormat(fileName string, content []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(content, oleMagic):
		return FormatXLS, nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt", ".tsv", "":
		return FormatCSV, nil
	}

	return "", errors.Wrapf(ErrUnsupportedFormat, "arquivo %s", fileName)
}

// pickSheet escolhe a primeira aba cujo nome normalizado coincide com um dos preferidos
func pickSheet(names []string, preferred []string) string {
	if len(names) == 0 {
		return ""
	}

	for _, want := range preferred {
		key := textnorm.Fold(want)
		for _, name := range names {
			if textnorm.Fold(name) == key {
				return name
			}
		}
	}

	return names[0]
}

package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// linhas examinadas para escolher o separador
const maxDelimiterLines = 10

// readCSV detecta a codificação e o separador e converte o conteúdo para UTF-8
func readCSV(content []byte) (*Sheet, error) {
	peek := content
	if len(peek) > 4096 {
		peek = peek[:4096]
	}

	var reader io.Reader = bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))
	if dec := detectEncoding(peek); dec != nil {
		reader = transform.NewReader(bytes.NewReader(content), dec.NewDecoder())
	}

	br := bufio.NewReader(reader)
	head, _ := br.Peek(4096)

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	sheet := &Sheet{Name: "csv"}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		cells := make([]Cell, len(record))
		for i, value := range record {
			cells[i] = Text(strings.TrimPrefix(value, "\ufeff"))
		}
		sheet.Rows = append(sheet.Rows, cells)
	}

	return sheet, nil
}

// detectEncoding retorna nil quando o conteúdo já é UTF-8
func detectEncoding(peek []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(peek, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(peek, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}

	// UTF-16 sem BOM tem bytes nulos e ainda assim passaria como UTF-8 válido
	if bytes.IndexByte(peek, 0) < 0 && isUTF8(peek) {
		return nil
	}

	result, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || result == nil {
		return charmap.Windows1252
	}

	switch strings.ToLower(result.Charset) {
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso-8859-1", "windows-1252":
		return charmap.Windows1252
	case "iso-8859-15":
		return charmap.ISO8859_15
	}

	// exportações fora de UTF-8 vêm do Excel em Windows-1252
	return charmap.Windows1252
}

// isUTF8 tolera um caractere cortado no fim da amostra
func isUTF8(peek []byte) bool {
	for i := 0; i < utf8.UTFMax && len(peek) > 0; i++ {
		if utf8.Valid(peek) {
			return true
		}
		peek = peek[:len(peek)-1]
	}
	return utf8.Valid(peek)
}

// detectDelimiter escolhe entre ';', ',' e tab pela primeira linha que tenha algum
// deles, ignorando trechos entre aspas. Linhas de título sem separador são puladas.
func detectDelimiter(sample []byte) rune {
	lines := bytes.SplitN(sample, []byte("\n"), maxDelimiterLines+1)
	if len(lines) > maxDelimiterLines {
		lines = lines[:maxDelimiterLines]
	}

	for _, line := range lines {
		counts := map[rune]int{';': 0, ',': 0, '\t': 0}
		quoted := false
		for _, r := range string(line) {
			if r == '"' {
				quoted = !quoted
				continue
			}
			if _, ok := counts[r]; ok && !quoted {
				counts[r]++
			}
		}
		if counts[';']+counts[',']+counts['\t'] == 0 {
			continue
		}

		best := ','
		for _, candidate := range []rune{';', '\t'} {
			if counts[candidate] > counts[best] {
				best = candidate
			}
		}
		return best
	}

	return ','
}

package importing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ad-report-importer/infrastructure/spreadsheet"
)

// serialEpoch é o dia zero das datas seriais de planilha (convenção 1900 do Excel)
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maior serial aceito: 31/12/9999
const maxSerial = 2958465

var textDateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04:05",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006/1/2",
}

// notação científica como o Excel exporta números grandes ou pequenos: "1,5E+06", "2.5e-3"
var scientificNumber = regexp.MustCompile(`^([+\-−]?\d+(?:[.,]\d+)?)[eE]([+-]?\d{1,3})$`)

// ParseNumber converte um texto numérico em formato regional para decimal.
// Ponto é milhar e vírgula é decimal; quando ambos aparecem, o último separador é o decimal.
// Notação científica é aceita com ponto ou vírgula na mantissa.
// Vazio, "-" ou texto inválido resultam em zero.
func ParseNumber(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "--" {
		return decimal.Zero
	}

	if m := scientificNumber.FindStringSubmatch(s); m != nil {
		return parseScientific(m[1], m[2])
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			if b.Len() == 0 {
				negative = true
			}
		}
	}

	digits := normalizeSeparators(b.String())
	if digits == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

func parseScientific(mantissa, exponent string) decimal.Decimal {
	mantissa = strings.NewReplacer("+", "", "−", "-", ",", ".").Replace(mantissa)
	d, err := decimal.NewFromString(mantissa)
	if err != nil {
		return decimal.Zero
	}
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(int32(exp))
}

// normalizeSeparators reescreve o número com ponto como separador decimal e sem milhar
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")

	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)

	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
		intPart, fraction := s[:lastDot], s[lastDot+1:]
		// "1.234" é milhar; "0.123" e "12.5" são decimais
		if len(fraction) == 3 && intPart != "" && strings.TrimLeft(intPart, "0") != "" {
			return intPart + fraction
		}
	}

	return s
}

// ParsePercent segue as regras de ParseNumber ignorando o "%" final
func ParsePercent(raw string) decimal.Decimal {
	return ParseNumber(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
}

// NumberFromCell usa o valor bruto quando a célula já era numérica na planilha
func NumberFromCell(c spreadsheet.Cell) decimal.Decimal {
	if c.Numeric {
		if d, err := decimal.NewFromString(strings.TrimSpace(c.Value)); err == nil {
			return d
		}
	}
	return ParseNumber(c.Value)
}

func PercentFromCell(c spreadsheet.Cell) decimal.Decimal {
	if c.Numeric {
		return NumberFromCell(c)
	}
	return ParsePercent(c.Value)
}

// ParseDate aceita DD/MM/AAAA, DD-MM-AAAA, datas ISO e seriais de planilha.
// Datas textuais são normalizadas para meia-noite UTC; a parte fracionária de um serial
// é preservada como horário. Retorna nil quando não reconhece o valor.
func ParseDate(c spreadsheet.Cell) *time.Time {
	s := strings.TrimSpace(c.Value)
	if s == "" {
		return nil
	}

	if c.Numeric || isSerialCandidate(s) {
		if t := fromSerial(s); t != nil {
			return t
		}
		if c.Numeric {
			return nil
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := midnight(t.UTC())
		return &d
	}

	for _, layout := range textDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d := midnight(t)
			return &d
		}
	}

	return nil
}

func isSerialCandidate(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

func fromSerial(s string) *time.Time {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return nil
	}

	serial, _ := d.Float64()
	if serial < 1 || serial > maxSerial {
		return nil
	}

	days := math.Floor(serial)
	seconds := math.Round((serial - days) * 86400)
	t := serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second)
	return &t
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

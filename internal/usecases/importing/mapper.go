package importing

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ad-report-importer/infrastructure/spreadsheet"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
)

// RowClass é a classificação de uma linha de dados
type RowClass string

const (
	RowValid         RowClass = "valid"
	RowMissingDate   RowClass = "missing_date"
	RowMissingAdName RowClass = "missing_ad_name"
	RowTotals        RowClass = "totals_row"
)

// RowMapper aplica o cabeçalho canônico às linhas de dados
type RowMapper struct {
	header *HeaderMap
}

func NewRowMapper(header *HeaderMap) *RowMapper {
	return &RowMapper{header: header}
}

// Map classifica a linha e, quando válida, devolve os valores já convertidos.
// A linha de totais do final da exportação não tem data nem nome de anúncio.
func (m *RowMapper) Map(line int, row []spreadsheet.Cell) (RowClass, domain.AdRow) {
	adRow := domain.AdRow{
		Line:         line,
		AccountName:  textnorm.CollapseSpaces(m.text(row, FieldAccountName)),
		CampaignName: textnorm.CollapseSpaces(m.text(row, FieldCampaignName)),
		AdSetName:    textnorm.CollapseSpaces(m.text(row, FieldAdSetName)),
		AdName:       textnorm.CollapseSpaces(m.text(row, FieldAdName)),
	}

	date := ParseDate(m.cell(row, FieldDate))
	switch {
	case date == nil && adRow.AdName == "":
		return RowTotals, adRow
	case date == nil:
		return RowMissingDate, adRow
	case adRow.AdName == "":
		return RowMissingAdName, adRow
	}
	adRow.Date = *date

	if id, ok := parseAdID(m.cell(row, FieldAdID)); ok {
		adRow.AdID = id
	} else {
		adRow.AdID = SynthID(adRow.AccountName, adRow.CampaignName, adRow.AdSetName, adRow.AdName)
		adRow.SyntheticID = true
	}

	adRow.Measures = domain.Measures{
		Impressions:   m.count(row, FieldImpressions),
		Reach:         m.count(row, FieldReach),
		Clicks:        m.count(row, FieldClicks),
		CTR:           m.percent(row, FieldCTR),
		Spend:         m.amount(row, FieldSpend),
		Purchases:     m.count(row, FieldPurchases),
		PurchaseValue: m.amount(row, FieldPurchaseValue),
		ROAS:          m.amount(row, FieldROAS),
		Results:       m.count(row, FieldResults),
		CostPerResult: m.amount(row, FieldCostPerResult),
		VideoP25:      m.count(row, FieldVideoP25),
		VideoP50:      m.count(row, FieldVideoP50),
		VideoP75:      m.count(row, FieldVideoP75),
		VideoP95:      m.count(row, FieldVideoP95),
		VideoP100:     m.count(row, FieldVideoP100),
	}

	return RowValid, adRow
}

// Text devolve o texto de uma coluna canônica da linha
func (m *RowMapper) Text(row []spreadsheet.Cell, field Field) string {
	return m.text(row, field)
}

func (m *RowMapper) cell(row []spreadsheet.Cell, field Field) spreadsheet.Cell {
	i, ok := m.header.Index(field)
	if !ok || i >= len(row) {
		return spreadsheet.Cell{}
	}
	return row[i]
}

func (m *RowMapper) text(row []spreadsheet.Cell, field Field) string {
	return strings.TrimSpace(m.cell(row, field).Value)
}

func (m *RowMapper) count(row []spreadsheet.Cell, field Field) int64 {
	return NumberFromCell(m.cell(row, field)).Round(0).IntPart()
}

func (m *RowMapper) amount(row []spreadsheet.Cell, field Field) float64 {
	return toFloat(NumberFromCell(m.cell(row, field)))
}

func (m *RowMapper) percent(row []spreadsheet.Cell, field Field) float64 {
	return toFloat(PercentFromCell(m.cell(row, field)))
}

// parseAdID aceita apenas identificadores inteiros não negativos
func parseAdID(c spreadsheet.Cell) (int64, bool) {
	s := strings.TrimSpace(c.Value)
	if s == "" {
		return 0, false
	}

	if c.Numeric {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) {
			return 0, false
		}
		return d.IntPart(), true
	}

	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "id:"))
	if s == "" {
		return 0, false
	}

	var id int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		if id > (1<<63-1-int64(r-'0'))/10 {
			return 0, false
		}
		id = id*10 + int64(r-'0')
	}
	return id, true
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

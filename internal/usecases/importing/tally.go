package importing

import (
	"time"

	"github.com/vfg2006/ad-report-importer/infrastructure/spreadsheet"
	"github.com/vfg2006/ad-report-importer/internal/domain"
)

// rowTally acumula contadores, período e amostras das linhas de um arquivo
type rowTally struct {
	counts      domain.ImportCounts
	samples     domain.RowSamples
	periodStart *time.Time
	periodEnd   *time.Time
	valid       []domain.AdRow
}

func (t *rowTally) add(class RowClass, row []spreadsheet.Cell, adRow domain.AdRow) {
	t.counts.Parsed++

	switch class {
	case RowValid:
		t.counts.Valid++
		if adRow.SyntheticID {
			t.counts.SyntheticIDCount++
		}
		t.observeDate(adRow.Date)
		t.valid = append(t.valid, adRow)

	case RowMissingDate:
		t.counts.MissingDate++
		t.counts.Skipped++
		if t.samples.MissingDate == nil {
			t.samples.MissingDate = spreadsheet.Values(row)
		}

	case RowMissingAdName:
		t.counts.MissingAdName++
		t.counts.Skipped++
		if t.samples.MissingAdName == nil {
			t.samples.MissingAdName = spreadsheet.Values(row)
		}

	case RowTotals:
		t.counts.TotalsRowsSkipped++
		t.counts.Skipped++
		if t.samples.TotalsRow == nil {
			t.samples.TotalsRow = spreadsheet.Values(row)
		}
	}
}

func (t *rowTally) observeDate(d time.Time) {
	day := midnight(d)
	if t.periodStart == nil || day.Before(*t.periodStart) {
		start := day
		t.periodStart = &start
	}
	if t.periodEnd == nil || day.After(*t.periodEnd) {
		end := day
		t.periodEnd = &end
	}
}

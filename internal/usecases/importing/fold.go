package importing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ad-report-importer/internal/domain"
)

type foldKey struct {
	date time.Time
	adID int64
}

type foldAcc struct {
	staged        *domain.StagedMetric
	rows          int
	spend         decimal.Decimal
	purchaseValue decimal.Decimal
}

// FoldRows consolida as linhas válidas por (data, anúncio) antes do staging.
// Contadores são somados e as razões (ROAS, custo por resultado, CTR) recalculadas
// a partir dos totais quando mais de uma linha cai na mesma chave.
func FoldRows(sessionID, clientID string, rows []domain.AdRow) []*domain.StagedMetric {
	groups := make(map[foldKey]*foldAcc, len(rows))

	for _, row := range rows {
		key := foldKey{date: midnight(row.Date), adID: row.AdID}

		acc, ok := groups[key]
		if !ok {
			acc = &foldAcc{
				staged: &domain.StagedMetric{
					SessionID: sessionID,
					ClientID:  clientID,
					Date:      key.date,
					AdID:      row.AdID,
				},
			}
			groups[key] = acc
		}

		acc.rows++
		acc.spend = acc.spend.Add(decimal.NewFromFloat(row.Spend))
		acc.purchaseValue = acc.purchaseValue.Add(decimal.NewFromFloat(row.PurchaseValue))

		s := acc.staged
		s.AdName = row.AdName
		if row.CampaignName != "" {
			s.CampaignName = row.CampaignName
		}
		if row.AdSetName != "" {
			s.AdSetName = row.AdSetName
		}

		s.Impressions += row.Impressions
		s.Reach += row.Reach
		s.Clicks += row.Clicks
		s.Purchases += row.Purchases
		s.Results += row.Results
		s.VideoP25 += row.VideoP25
		s.VideoP50 += row.VideoP50
		s.VideoP75 += row.VideoP75
		s.VideoP95 += row.VideoP95
		s.VideoP100 += row.VideoP100

		// razões informadas pelo arquivo só valem para chaves de uma linha
		s.ROAS = row.ROAS
		s.CostPerResult = row.CostPerResult
		s.CTR = row.CTR
	}

	staged := make([]*domain.StagedMetric, 0, len(groups))
	for _, acc := range groups {
		s := acc.staged
		s.Spend = toFloat(acc.spend)
		s.PurchaseValue = toFloat(acc.purchaseValue)
		deriveRatios(&s.Measures, acc.spend, acc.purchaseValue, acc.rows > 1)
		staged = append(staged, s)
	}

	sort.Slice(staged, func(i, j int) bool {
		if !staged[i].Date.Equal(staged[j].Date) {
			return staged[i].Date.Before(staged[j].Date)
		}
		return staged[i].AdID < staged[j].AdID
	})

	return staged
}

// deriveRatios recalcula as razões a partir dos totais. Para chaves de uma única linha
// só preenche as que vieram zeradas no arquivo.
func deriveRatios(m *domain.Measures, spend, purchaseValue decimal.Decimal, folded bool) {
	if folded || m.ROAS == 0 {
		m.ROAS = ratio(purchaseValue, spend, 1)
	}
	if folded || m.CostPerResult == 0 {
		m.CostPerResult = ratio(spend, decimal.NewFromInt(m.Results), 1)
	}
	if folded || m.CTR == 0 {
		m.CTR = ratio(decimal.NewFromInt(m.Clicks), decimal.NewFromInt(m.Impressions), 100)
	}
}

func ratio(num, den decimal.Decimal, scale int64) float64 {
	if den.IsZero() {
		return 0
	}
	return toFloat(num.Mul(decimal.NewFromInt(scale)).DivRound(den, 4))
}

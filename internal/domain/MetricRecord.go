package domain

import "time"

// Measures contém as métricas de um anúncio em um dia
type Measures struct {
	Impressions   int64   `json:"impressions"`
	Reach         int64   `json:"reach"`
	Clicks        int64   `json:"clicks"`
	CTR           float64 `json:"ctr"`
	Spend         float64 `json:"spend"`
	Purchases     int64   `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
	ROAS          float64 `json:"roas"`
	Results       int64   `json:"results"`
	CostPerResult float64 `json:"cost_per_result"`
	VideoP25      int64   `json:"video_p25"`
	VideoP50      int64   `json:"video_p50"`
	VideoP75      int64   `json:"video_p75"`
	VideoP95      int64   `json:"video_p95"`
	VideoP100     int64   `json:"video_p100"`
}

// MetricKey identifica um fato de forma única
type MetricKey struct {
	ClientID string    `json:"client_id"`
	Date     time.Time `json:"date"`
	AdID     int64     `json:"ad_id"`
}

type MetricRecord struct {
	MetricKey
	Measures
	UpdatedAt time.Time `json:"updated_at"`
}

// AdRow é uma linha da planilha já validada e normalizada
type AdRow struct {
	Line         int       `json:"line"`
	AccountName  string    `json:"account_name"`
	CampaignName string    `json:"campaign_name"`
	AdSetName    string    `json:"adset_name"`
	AdName       string    `json:"ad_name"`
	AdID         int64     `json:"ad_id"`
	SyntheticID  bool      `json:"synthetic_id"`
	Date         time.Time `json:"date"`
	Measures
}

// StagedMetric é a linha consolidada gravada na área de staging de uma sessão
type StagedMetric struct {
	SessionID    string
	ClientID     string
	Date         time.Time
	AdID         int64
	AdName       string
	CampaignName string
	AdSetName    string
	Measures
}

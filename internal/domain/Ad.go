package domain

// Ad representa um anúncio de um cliente. IDs negativos são sintéticos.
type Ad struct {
	ClientID       string `json:"client_id"`
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	CampaignName   string `json:"campaign_name"`
	AdSetName      string `json:"adset_name"`
}

func (a Ad) IsSynthetic() bool {
	return a.ID < 0
}

package importing

import (
	"regexp"
	"strings"

	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
)

// Field é a chave canônica de uma coluna da planilha
type Field string

const (
	FieldIgnored       Field = ""
	FieldAccountName   Field = "account_name"
	FieldCampaignName  Field = "campaign_name"
	FieldAdSetName     Field = "adset_name"
	FieldAdName        Field = "ad_name"
	FieldAdID          Field = "ad_id"
	FieldDate          Field = "date"
	FieldCurrency      Field = "currency"
	FieldImpressions   Field = "impressions"
	FieldReach         Field = "reach"
	FieldClicks        Field = "clicks"
	FieldCTR           Field = "ctr"
	FieldSpend         Field = "spend"
	FieldPurchases     Field = "purchases"
	FieldPurchaseValue Field = "purchase_value"
	FieldROAS          Field = "roas"
	FieldResults       Field = "results"
	FieldCostPerResult Field = "cost_per_result"
	FieldVideoP25      Field = "video_p25"
	FieldVideoP50      Field = "video_p50"
	FieldVideoP75      Field = "video_p75"
	FieldVideoP95      Field = "video_p95"
	FieldVideoP100     Field = "video_p100"
)

// headerAliases mapeia cabeçalhos já normalizados por textnorm.Fold para a chave canônica.
// Cobre as exportações do gerenciador de anúncios em espanhol, português e inglês.
var headerAliases = map[string]Field{
	"nombre de la cuenta": FieldAccountName,
	"account name":        FieldAccountName,
	"nome da conta":       FieldAccountName,
	"cuenta":              FieldAccountName,
	"conta":               FieldAccountName,
	"cliente":             FieldAccountName,
	"client":              FieldAccountName,
	"client name":         FieldAccountName,
	"clientname":          FieldAccountName,

	"nombre de la campana": FieldCampaignName,
	"campaign name":        FieldCampaignName,
	"nome da campanha":     FieldCampaignName,
	"campana":              FieldCampaignName,
	"campanha":             FieldCampaignName,
	"campaign":             FieldCampaignName,
	"campaignname":         FieldCampaignName,

	"nombre del conjunto de anuncios": FieldAdSetName,
	"nome do conjunto de anuncios":    FieldAdSetName,
	"conjunto de anuncios":            FieldAdSetName,
	"ad set name":                     FieldAdSetName,
	"adset name":                      FieldAdSetName,
	"adsetname":                       FieldAdSetName,

	"nombre del anuncio": FieldAdName,
	"nome do anuncio":    FieldAdName,
	"anuncio":            FieldAdName,
	"ad name":            FieldAdName,
	"adname":             FieldAdName,

	"identificador del anuncio": FieldAdID,
	"id del anuncio":            FieldAdID,
	"identificacao do anuncio":  FieldAdID,
	"id do anuncio":             FieldAdID,
	"ad id":                     FieldAdID,
	"adfbid":                    FieldAdID,

	"dia":                   FieldDate,
	"day":                   FieldDate,
	"fecha":                 FieldDate,
	"data":                  FieldDate,
	"date":                  FieldDate,
	"fulldate":              FieldDate,
	"inicio del informe":    FieldDate,
	"inicio dos relatorios": FieldDate,
	"reporting starts":      FieldDate,

	"divisa":   FieldCurrency,
	"moneda":   FieldCurrency,
	"moeda":    FieldCurrency,
	"currency": FieldCurrency,

	"impresiones": FieldImpressions,
	"impressoes":  FieldImpressions,
	"impressions": FieldImpressions,

	"alcance": FieldReach,
	"reach":   FieldReach,

	"clics en el enlace": FieldClicks,
	"cliques no link":    FieldClicks,
	"link clicks":        FieldClicks,
	"clics todos":        FieldClicks,
	"cliques todos":      FieldClicks,
	"clicks all":         FieldClicks,
	"clics":              FieldClicks,
	"cliques":            FieldClicks,
	"clicks":             FieldClicks,

	"ctr":                                  FieldCTR,
	"ctr todos":                            FieldCTR,
	"ctr all":                              FieldCTR,
	"ctr porcentaje de clics en el enlace": FieldCTR,
	"ctr taxa de cliques no link":          FieldCTR,
	"ctr link click through rate":          FieldCTR,

	"importe gastado": FieldSpend,
	"valor usado":     FieldSpend,
	"valor gasto":     FieldSpend,
	"amount spent":    FieldSpend,
	"gasto":           FieldSpend,
	"spend":           FieldSpend,

	"compras":                 FieldPurchases,
	"compras en el sitio web": FieldPurchases,
	"compras no site":         FieldPurchases,
	"purchases":               FieldPurchases,

	"valor de conversion de compras": FieldPurchaseValue,
	"valor de conversao das compras": FieldPurchaseValue,
	"purchases conversion value":     FieldPurchaseValue,
	"purchase value":                 FieldPurchaseValue,
	"purchasevalue":                  FieldPurchaseValue,

	"roas":            FieldROAS,
	"roas de compras": FieldROAS,

	"roas retorno de la inversion en publicidad de compras":       FieldROAS,
	"roas retorno sobre o investimento em publicidade de compras": FieldROAS,
	"purchase roas return on ad spend":                            FieldROAS,

	"resultados": FieldResults,
	"results":    FieldResults,

	"costo por resultado": FieldCostPerResult,
	"coste por resultado": FieldCostPerResult,
	"custo por resultado": FieldCostPerResult,
	"cost per result":     FieldCostPerResult,
	"cost per results":    FieldCostPerResult,
	"costperresult":       FieldCostPerResult,

	"reproducciones de video hasta el 25":  FieldVideoP25,
	"reproducoes do video ate 25":          FieldVideoP25,
	"video plays at 25":                    FieldVideoP25,
	"videoplays 25 pct":                    FieldVideoP25,
	"reproducciones de video hasta el 50":  FieldVideoP50,
	"reproducoes do video ate 50":          FieldVideoP50,
	"video plays at 50":                    FieldVideoP50,
	"videoplays 50 pct":                    FieldVideoP50,
	"reproducciones de video hasta el 75":  FieldVideoP75,
	"reproducoes do video ate 75":          FieldVideoP75,
	"video plays at 75":                    FieldVideoP75,
	"videoplays 75 pct":                    FieldVideoP75,
	"reproducciones de video hasta el 95":  FieldVideoP95,
	"reproducoes do video ate 95":          FieldVideoP95,
	"video plays at 95":                    FieldVideoP95,
	"videoplays 95 pct":                    FieldVideoP95,
	"reproducciones de video hasta el 100": FieldVideoP100,
	"reproducoes do video ate 100":         FieldVideoP100,
	"video plays at 100":                   FieldVideoP100,
	"videoplays 100 pct":                   FieldVideoP100,
}

// "Importe gastado (EUR)" traz a moeda da conta no próprio cabeçalho; "(all)" e "(todos)" não casam
var headerCurrencyPattern = regexp.MustCompile(`\(\s*([A-Z]{3})\s*\)\s*$`)

// HeaderMap é o resultado da normalização da linha de cabeçalho
type HeaderMap struct {
	Fields   []Field
	Currency string
	index    map[Field]int
}

// NormalizeHeader converte a linha de cabeçalho em chaves canônicas, na mesma ordem.
// Cabeçalhos desconhecidos viram FieldIgnored; se a mesma chave aparecer mais de uma
// vez, vale a primeira ocorrência e as demais são ignoradas.
func NormalizeHeader(raw []string) (*HeaderMap, error) {
	if isBlankRow(raw) {
		return nil, ErrMissingHeader
	}

	h := &HeaderMap{
		Fields: make([]Field, len(raw)),
		index:  make(map[Field]int),
	}

	for i, cell := range raw {
		label := strings.TrimSpace(cell)
		if m := headerCurrencyPattern.FindStringSubmatch(label); m != nil {
			if h.Currency == "" {
				h.Currency = strings.ToUpper(m[1])
			}
			label = strings.TrimSpace(label[:len(label)-len(m[0])])
		}

		field, ok := headerAliases[textnorm.Fold(label)]
		if !ok {
			continue
		}
		if _, seen := h.index[field]; seen {
			continue
		}

		h.Fields[i] = field
		h.index[field] = i
	}

	return h, nil
}

// Index retorna a posição da coluna canônica
func (h *HeaderMap) Index(field Field) (int, bool) {
	i, ok := h.index[field]
	return i, ok
}

func (h *HeaderMap) Has(field Field) bool {
	_, ok := h.index[field]
	return ok
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

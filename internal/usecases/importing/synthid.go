package importing

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

const synthIDSeparator = "|"

// SynthID gera o identificador de um anúncio que veio sem ID na planilha.
// O valor é sempre negativo, então nunca colide com IDs reais da plataforma.
func SynthID(account, campaign, adSet, ad string) int64 {
	key := strings.Join([]string{
		strings.ToLower(account),
		strings.ToLower(campaign),
		strings.ToLower(adSet),
		strings.ToLower(ad),
	}, synthIDSeparator)

	sum := sha256.Sum256([]byte(key))
	v := int64(binary.BigEndian.Uint64(sum[:8]) & 0x7FFFFFFFFFFFFFFF)
	if v == 0 {
		return -1
	}
	return -v
}

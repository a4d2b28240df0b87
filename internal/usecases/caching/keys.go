package caching

import (
	"sort"
	"strconv"
	"strings"

	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// KeyVersion identifica a versão do formato dos payloads em cache. Mudou a
// forma do dado serializado? Incremente a versão: as chaves antigas expiram
// sozinhas e nunca são lidas pelo código novo — sem etapa de migração.
const KeyVersion = "v2"

const keyPrefix = "analytics"

// Sufixos derivados de toda chave base. Derivação é função pura de string,
// nunca reimplementada pelos chamadores.
const (
	suffixTimestamp   = ":timestamp"
	suffixRefreshing  = ":refreshing"
	suffixLastSuccess = ":last_success"
)

// KeyForProperty monta a chave determinística do cache exato de uma
// propriedade em um período.
func KeyForProperty(sourceID string, period domain.Period) string {
	return keyPrefix + ":" + KeyVersion + ":property:" + sourceID + ":" + period.Key()
}

// KeyForAggregate monta a chave de um agregado multi-propriedade. A lista de
// ids é ordenada antes da junção para que [1,2,3] e [3,1,2] gerem a mesma
// chave. Lista nula significa "todas as propriedades ativas" e usa um seletor
// literal, independente de quais propriedades estão ativas no momento.
func KeyForAggregate(propertyIDs []int64, period domain.Period) string {
	selector := "all"

	if propertyIDs != nil {
		ids := make([]int64, len(propertyIDs))
		copy(ids, propertyIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		selector = strings.Join(parts, ",")
	}

	return keyPrefix + ":" + KeyVersion + ":aggregate:" + selector + ":" + period.Key()
}

// KeyForRollup monta a chave do rollup de 365 dias de uma propriedade.
// A janela é rolante, então o período não participa da chave.
func KeyForRollup(sourceID string) string {
	return keyPrefix + ":" + KeyVersion + ":rollup:365d:" + sourceID
}

// KeyForRateLimit monta a chave do contador de janela fixa do limitador
// de requisições de uma propriedade.
func KeyForRateLimit(propertyID int64) string {
	return keyPrefix + ":ratelimit:" + strconv.FormatInt(propertyID, 10)
}

// TimestampKey retorna a chave companheira que guarda o instante da escrita.
func TimestampKey(baseKey string) string {
	return baseKey + suffixTimestamp
}

// RefreshingKey retorna a chave de lease que sinaliza um refresh em voo.
func RefreshingKey(baseKey string) string {
	return baseKey + suffixRefreshing
}

// LastSuccessKey retorna a chave do último payload bem-sucedido, que nunca
// expira e serve de fallback de última instância.
func LastSuccessKey(baseKey string) string {
	return baseKey + suffixLastSuccess
}

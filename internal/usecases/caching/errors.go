package caching

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCachedData indica cold start com falha de busca: não existe nenhum
// fallback abaixo de "sem dados".
var ErrNoCachedData = errors.New("nenhum dado em cache disponível para a propriedade")

// ErrPeriodOutsideRollup indica que o período pedido não cabe na janela
// rolante de 365 dias mantida pelo rollup.
var ErrPeriodOutsideRollup = errors.New("período fora da janela de 365 dias do rollup")

// RateLimitError sinaliza orçamento de requisições esgotado sem nenhum dado
// em cache para servir. Carrega o tempo de espera até a próxima janela.
type RateLimitError struct {
	PropertyID int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("limite de requisições da propriedade %d excedido, tente novamente em %s",
		e.PropertyID, e.RetryAfter.Round(time.Second))
}

// AsRateLimitError extrai um RateLimitError da cadeia de erros, se houver.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// UpstreamError embrulha uma falha (ou timeout) da API externa de analytics.
type UpstreamError struct {
	SourceID string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("falha na API de analytics para a fonte %s: %v", e.SourceID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

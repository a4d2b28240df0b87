package domain

import (
	"fmt"
	"time"
)

// Tipos de refresh em background. A granularidade define o TTL do lease e o
// cronograma de retentativas (rollups são lentos, períodos exatos são rápidos).
const (
	RefreshKindExact  = "exact"
	RefreshKindRollup = "rollup"
)

// RefreshJob é o payload plano entregue à fila de jobs. Carrega apenas
// identificadores e datas — nenhuma referência a serviços é capturada; o
// executor re-resolve as dependências no contexto do worker.
type RefreshJob struct {
	Kind       string `json:"kind"`
	CacheKey   string `json:"cache_key"`
	PropertyID int64  `json:"property_id"`
	SourceID   string `json:"source_id"`
	StartDate  string `json:"start_date,omitempty"` // formato 2006-01-02
	EndDate    string `json:"end_date,omitempty"`
}

// Period reconstrói o período do job a partir das datas serializadas.
func (j RefreshJob) Period() (Period, error) {
	start, err := time.Parse(time.DateOnly, j.StartDate)
	if err != nil {
		return Period{}, fmt.Errorf("data inicial inválida no job (%s): %w", j.StartDate, err)
	}

	end, err := time.Parse(time.DateOnly, j.EndDate)
	if err != nil {
		return Period{}, fmt.Errorf("data final inválida no job (%s): %w", j.EndDate, err)
	}

	return NewPeriod(start, end)
}

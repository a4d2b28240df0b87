package domain

import "time"

// MetricTotals concentra as métricas de tráfego de um período. Pageviews,
// Sessions e Users são aditivas; BounceRate e AvgSessionDuration são taxas
// e precisam ser re-mediadas (nunca somadas) ao combinar períodos ou
// propriedades.
type MetricTotals struct {
	Pageviews          int64   `json:"pageviews"`
	Sessions           int64   `json:"sessions"`
	Users              int64   `json:"users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"` // segundos
}

// DailyRow é uma linha de métricas de um único dia.
type DailyRow struct {
	Date               string  `json:"date"` // formato 2006-01-02
	Pageviews          int64   `json:"pageviews"`
	Sessions           int64   `json:"sessions"`
	Users              int64   `json:"users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
}

// PropertyMetrics é o payload de métricas de uma propriedade em um período.
type PropertyMetrics struct {
	Totals MetricTotals `json:"totals"`
	Rows   []DailyRow   `json:"rows"`
}

// ComputeTotals recalcula os totais a partir de um conjunto de linhas
// diárias: soma para métricas aditivas, média para taxas.
func ComputeTotals(rows []DailyRow) MetricTotals {
	totals := MetricTotals{}
	if len(rows) == 0 {
		return totals
	}

	for _, row := range rows {
		totals.Pageviews += row.Pageviews
		totals.Sessions += row.Sessions
		totals.Users += row.Users
		totals.BounceRate += row.BounceRate
		totals.AvgSessionDuration += row.AvgSessionDuration
	}

	totals.BounceRate /= float64(len(rows))
	totals.AvgSessionDuration /= float64(len(rows))

	return totals
}

// TopPage é uma página agregada por caminho. PropertyName identifica a
// propriedade de origem quando presente em um resultado multi-propriedade.
type TopPage struct {
	Path         string `json:"path"`
	Pageviews    int64  `json:"pageviews"`
	PropertyName string `json:"property_name,omitempty"`
}

// TrafficSource é uma origem de tráfego agregada por (source, medium).
type TrafficSource struct {
	Source     string   `json:"source"`
	Medium     string   `json:"medium"`
	Sessions   int64    `json:"sessions"`
	Users      int64    `json:"users"`
	Properties []string `json:"properties,omitempty"` // propriedades que contribuíram
}

// DeviceStat é o agregado por categoria de dispositivo.
type DeviceStat struct {
	Category string `json:"category"`
	Users    int64  `json:"users"`
	Sessions int64  `json:"sessions"`
}

// Linhas brutas por dia armazenadas no rollup. O fatiamento por período
// reagrupa essas linhas em TopPage/TrafficSource/DeviceStat.
type DailyPageRow struct {
	Date      string `json:"date"`
	Path      string `json:"path"`
	Pageviews int64  `json:"pageviews"`
}

type DailySourceRow struct {
	Date     string `json:"date"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Sessions int64  `json:"sessions"`
	Users    int64  `json:"users"`
}

type DailyDeviceRow struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Users    int64  `json:"users"`
	Sessions int64  `json:"sessions"`
}

// DailyRollup é o objeto único de 365 dias mantido por propriedade.
// É sempre substituído por inteiro, nunca invalidado parcialmente.
type DailyRollup struct {
	PropertyID  int64            `json:"property_id"`
	SourceID    string           `json:"source_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Rows        []DailyRow       `json:"rows"`
	Pages       []DailyPageRow   `json:"pages"`
	Sources     []DailySourceRow `json:"sources"`
	Devices     []DailyDeviceRow `json:"devices"`
}

// CachedMetrics é o envelope de frescor devolvido aos consumidores: sempre
// carrega um payload (fresco ou não), nunca um erro cru, exceto em cold
// start com falha de busca.
type CachedMetrics struct {
	Data            *PropertyMetrics `json:"data"`
	CachedAt        time.Time        `json:"cached_at"`
	CacheAgeSeconds int64            `json:"cache_age_seconds"`
	IsFresh         bool             `json:"is_fresh"`
	FromSubset      bool             `json:"from_subset,omitempty"`
	IsUpdating      bool             `json:"is_updating,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// PropertyBreakdown é a linha por propriedade dentro de um agregado.
type PropertyBreakdown struct {
	PropertyID   int64        `json:"property_id"`
	PropertyName string       `json:"property_name"`
	Totals       MetricTotals `json:"totals"`
}

// PropertyError registra a falha de uma propriedade durante a agregação,
// sem abortar o agregado.
type PropertyError struct {
	PropertyID   int64  `json:"property_id"`
	PropertyName string `json:"property_name"`
	Message      string `json:"message"`
}

// AggregateResult é o resultado da agregação de métricas entre N
// propriedades. As taxas são mediadas sobre SuccessfulFetches.
type AggregateResult struct {
	Totals            MetricTotals        `json:"aggregated_totals"`
	Breakdown         []PropertyBreakdown `json:"property_breakdown"`
	SuccessfulFetches int                 `json:"successful_fetches"`
	TotalProperties   int                 `json:"total_properties"`
	Errors            []PropertyError     `json:"errors"`
}

// DashboardData é a resposta completa do dashboard agregado.
type DashboardData struct {
	Metrics         *AggregateResult `json:"metrics"`
	TopPages        []TopPage        `json:"top_pages"`
	TrafficSources  []TrafficSource  `json:"traffic_sources"`
	Devices         []DeviceStat     `json:"devices"`
	Period          Period           `json:"period"`
	PropertiesCount int              `json:"properties_count"`
}

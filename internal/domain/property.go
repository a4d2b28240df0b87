package domain

import "time"

// Property é uma fonte de analytics rastreada (um site/app de exposição).
// O cadastro pertence à camada de CRUD; o motor de analytics só lê
// snapshots imutáveis por requisição.
type Property struct {
	ID               int64     `json:"id"`
	SourceID         string    `json:"source_id"`
	Name             string    `json:"name"`
	Active           bool      `json:"active"`
	SyncFrequency    int       `json:"sync_frequency"`      // minutos; também é a janela do rate limit
	RateLimitPerHour int       `json:"rate_limit_per_hour"` // orçamento de chamadas à API externa
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RateLimitWindow retorna a janela do limitador de requisições da propriedade.
func (p *Property) RateLimitWindow() time.Duration {
	if p.SyncFrequency < 1 {
		return time.Minute
	}
	return time.Duration(p.SyncFrequency) * time.Minute
}

// RateLimitAllowance calcula as tentativas permitidas por janela:
// ceil(rate_limit_per_hour / (60 / sync_frequency)).
func (p *Property) RateLimitAllowance() int {
	freq := p.SyncFrequency
	if freq < 1 {
		freq = 1
	}

	allowance := (p.RateLimitPerHour*freq + 59) / 60
	if allowance < 1 {
		allowance = 1
	}
	return allowance
}

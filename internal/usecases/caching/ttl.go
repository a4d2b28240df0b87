package caching

import (
	"time"

	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// Política canônica de frescor e TTL. Uma única definição, usada tanto pela
// leitura (o dado ainda está fresco?) quanto pela escrita (com que TTL
// gravar?).
const (
	peakStartHour = 9
	peakEndHour   = 17

	// Janelas de frescor: um dado é considerado fresco por menos de 10
	// minutos no horário de pico (dias úteis, 09:00–17:00) e por menos de
	// 30 minutos fora dele.
	FreshnessPeak    = 10 * time.Minute
	FreshnessOffPeak = 30 * time.Minute

	// Limites do TTL dinâmico de escrita.
	DynamicTTLFloor      = 5 * time.Minute
	DynamicTTLPeakCap    = 10 * time.Minute
	DynamicTTLWeekendCap = 30 * time.Minute

	// AggregateTTL é o TTL fixo do agregado multi-propriedade memorizado.
	AggregateTTL = 5 * time.Minute
)

// Janelas canônicas maiores consultadas na extração de subconjunto.
var subsetWindowDays = []int{30, 60, 90}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func isPeakHours(t time.Time) bool {
	if isWeekend(t) {
		return false
	}
	return t.Hour() >= peakStartHour && t.Hour() < peakEndHour
}

// FreshnessWindow retorna por quanto tempo uma entrada escrita é servida
// como fresca, em função do instante da consulta.
func FreshnessWindow(t time.Time) time.Duration {
	if isPeakHours(t) {
		return FreshnessPeak
	}
	return FreshnessOffPeak
}

// DynamicTTL calcula o TTL de escrita de uma propriedade: base igual à
// sync_frequency, comprimida para [5m, 10m] no pico e dobrada (teto de 30m)
// nos fins de semana.
func DynamicTTL(property *domain.Property, t time.Time) time.Duration {
	base := time.Duration(property.SyncFrequency) * time.Minute
	if base < DynamicTTLFloor {
		base = DynamicTTLFloor
	}

	if isPeakHours(t) {
		if base > DynamicTTLPeakCap {
			return DynamicTTLPeakCap
		}
		return base
	}

	if isWeekend(t) {
		doubled := base * 2
		if doubled > DynamicTTLWeekendCap {
			return DynamicTTLWeekendCap
		}
		return doubled
	}

	return base
}

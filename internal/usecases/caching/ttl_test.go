package caching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/expodigital/analytics-manager-api/internal/domain"
)

var (
	// Quarta-feira às 11h (pico) e às 20h (fora do pico)
	weekdayPeak    = time.Date(2024, 5, 15, 11, 0, 0, 0, time.UTC)
	weekdayEvening = time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)
	// Sábado às 11h
	saturdayMorning = time.Date(2024, 5, 18, 11, 0, 0, 0, time.UTC)
)

func TestFreshnessWindow(t *testing.T) {
	assert.Equal(t, FreshnessPeak, FreshnessWindow(weekdayPeak))
	assert.Equal(t, FreshnessOffPeak, FreshnessWindow(weekdayEvening))

	// Fim de semana nunca é pico, mesmo no horário comercial
	assert.Equal(t, FreshnessOffPeak, FreshnessWindow(saturdayMorning))
}

func TestFreshnessWindowBoundaries(t *testing.T) {
	nineAM := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	fivePM := time.Date(2024, 5, 15, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, FreshnessPeak, FreshnessWindow(nineAM))    // 09:00 inclusivo
	assert.Equal(t, FreshnessOffPeak, FreshnessWindow(fivePM)) // 17:00 exclusivo
}

func TestDynamicTTL(t *testing.T) {
	tests := []struct {
		name     string
		property *domain.Property
		at       time.Time
		want     time.Duration
	}{
		{
			name:     "base igual à sync_frequency em dia útil fora do pico",
			property: &domain.Property{SyncFrequency: 15},
			at:       weekdayEvening,
			want:     15 * time.Minute,
		},
		{
			name:     "comprimido para o teto de 10 minutos no pico",
			property: &domain.Property{SyncFrequency: 20},
			at:       weekdayPeak,
			want:     DynamicTTLPeakCap,
		},
		{
			name:     "abaixo do teto passa intacto no pico",
			property: &domain.Property{SyncFrequency: 7},
			at:       weekdayPeak,
			want:     7 * time.Minute,
		},
		{
			name:     "dobrado no fim de semana",
			property: &domain.Property{SyncFrequency: 10},
			at:       saturdayMorning,
			want:     20 * time.Minute,
		},
		{
			name:     "dobro limitado a 30 minutos no fim de semana",
			property: &domain.Property{SyncFrequency: 25},
			at:       saturdayMorning,
			want:     DynamicTTLWeekendCap,
		},
		{
			name:     "piso de 5 minutos para frequências minúsculas",
			property: &domain.Property{SyncFrequency: 1},
			at:       weekdayEvening,
			want:     DynamicTTLFloor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DynamicTTL(tt.property, tt.at))
		})
	}
}

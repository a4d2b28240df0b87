package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Quarta-feira, 15 de maio de 2024
var reference = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func TestNewPeriod(t *testing.T) {
	t.Run("período válido", func(t *testing.T) {
		p, err := NewPeriod(
			time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		// Horários são truncados para o dia
		assert.Equal(t, "2024-05-01", p.StartDate.Format(time.DateOnly))
		assert.Equal(t, "2024-05-10", p.EndDate.Format(time.DateOnly))
	})

	t.Run("início depois do fim é inválido", func(t *testing.T) {
		_, err := NewPeriod(
			time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		)
		assert.Error(t, err)
	})

	t.Run("um único dia é válido", func(t *testing.T) {
		d := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
		p, err := NewPeriod(d, d)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Days())
	})
}

func TestPeriodFactories(t *testing.T) {
	tests := []struct {
		name      string
		period    Period
		wantStart string
		wantEnd   string
	}{
		{"hoje", Today(reference), "2024-05-15", "2024-05-15"},
		{"ontem", Yesterday(reference), "2024-05-14", "2024-05-14"},
		{"esta semana começa na segunda", ThisWeek(reference), "2024-05-13", "2024-05-15"},
		{"semana passada completa", LastWeek(reference), "2024-05-06", "2024-05-12"},
		{"este mês", ThisMonth(reference), "2024-05-01", "2024-05-15"},
		{"mês passado completo", LastMonth(reference), "2024-04-01", "2024-04-30"},
		{"este ano", ThisYear(reference), "2024-01-01", "2024-05-15"},
		{"ano passado completo", LastYear(reference), "2023-01-01", "2023-12-31"},
		{"últimos 7 dias incluem hoje", LastNDays(reference, 7), "2024-05-09", "2024-05-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.period.StartDate.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, tt.period.EndDate.Format(time.DateOnly))
		})
	}
}

func TestThisWeekOnMonday(t *testing.T) {
	// Segunda-feira: a semana corrente tem um único dia
	monday := time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC)
	p := ThisWeek(monday)

	assert.Equal(t, "2024-05-13", p.StartDate.Format(time.DateOnly))
	assert.Equal(t, "2024-05-13", p.EndDate.Format(time.DateOnly))
}

func TestPeriodContains(t *testing.T) {
	window := MustPeriod(
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	)

	inside := MustPeriod(
		time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
	)
	assert.True(t, window.Contains(inside))

	// Mesmos limites contam como contido
	assert.True(t, window.Contains(window))

	overflowing := MustPeriod(
		time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	)
	assert.False(t, window.Contains(overflowing))
}

func TestPeriodContainsDate(t *testing.T) {
	p := MustPeriod(
		time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
	)

	assert.True(t, p.ContainsDate("2024-04-10")) // limite inicial inclusivo
	assert.True(t, p.ContainsDate("2024-04-15"))
	assert.True(t, p.ContainsDate("2024-04-20")) // limite final inclusivo
	assert.False(t, p.ContainsDate("2024-04-09"))
	assert.False(t, p.ContainsDate("2024-04-21"))
}

func TestPeriodKey(t *testing.T) {
	p := MustPeriod(
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	)

	assert.Equal(t, "2024-04-01:2024-04-30", p.Key())
}

func TestPeriodFromName(t *testing.T) {
	p, ok := PeriodFromName("last_30_days", reference)
	require.True(t, ok)
	assert.Equal(t, 30, p.Days())

	_, ok = PeriodFromName("fortnight", reference)
	assert.False(t, ok)
}

package domain

import (
	"fmt"
	"time"
)

// Period representa um intervalo fechado de datas de calendário usado em
// todas as consultas de métricas. Imutável após a construção.
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewPeriod cria um período validando que a data inicial não é posterior à final.
func NewPeriod(startDate, endDate time.Time) (Period, error) {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate)

	if start.After(end) {
		return Period{}, fmt.Errorf("a data de início (%s) não pode ser posterior à data de fim (%s)",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return Period{StartDate: start, EndDate: end}, nil
}

// MustPeriod é um atalho para testes e janelas canônicas já validadas.
func MustPeriod(startDate, endDate time.Time) Period {
	p, err := NewPeriod(startDate, endDate)
	if err != nil {
		panic(err)
	}
	return p
}

// Today retorna o período que cobre apenas o dia atual.
func Today(now time.Time) Period {
	d := truncateToDay(now)
	return Period{StartDate: d, EndDate: d}
}

// Yesterday retorna o período que cobre apenas o dia anterior.
func Yesterday(now time.Time) Period {
	d := truncateToDay(now).AddDate(0, 0, -1)
	return Period{StartDate: d, EndDate: d}
}

// ThisWeek retorna o período de segunda-feira até hoje.
func ThisWeek(now time.Time) Period {
	d := truncateToDay(now)
	offset := (int(d.Weekday()) + 6) % 7 // segunda = 0
	return Period{StartDate: d.AddDate(0, 0, -offset), EndDate: d}
}

// LastWeek retorna a semana completa anterior (segunda a domingo).
func LastWeek(now time.Time) Period {
	thisMonday := ThisWeek(now).StartDate
	return Period{
		StartDate: thisMonday.AddDate(0, 0, -7),
		EndDate:   thisMonday.AddDate(0, 0, -1),
	}
}

// ThisMonth retorna o período do primeiro dia do mês até hoje.
func ThisMonth(now time.Time) Period {
	d := truncateToDay(now)
	return Period{
		StartDate: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()),
		EndDate:   d,
	}
}

// LastMonth retorna o mês completo anterior.
func LastMonth(now time.Time) Period {
	d := truncateToDay(now)
	firstOfThis := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	return Period{
		StartDate: firstOfThis.AddDate(0, -1, 0),
		EndDate:   firstOfThis.AddDate(0, 0, -1),
	}
}

// ThisYear retorna o período do primeiro dia do ano até hoje.
func ThisYear(now time.Time) Period {
	d := truncateToDay(now)
	return Period{
		StartDate: time.Date(d.Year(), 1, 1, 0, 0, 0, 0, d.Location()),
		EndDate:   d,
	}
}

// LastYear retorna o ano completo anterior.
func LastYear(now time.Time) Period {
	d := truncateToDay(now)
	return Period{
		StartDate: time.Date(d.Year()-1, 1, 1, 0, 0, 0, 0, d.Location()),
		EndDate:   time.Date(d.Year()-1, 12, 31, 0, 0, 0, 0, d.Location()),
	}
}

// LastNDays retorna os últimos n dias terminando em hoje (inclusive).
func LastNDays(now time.Time, n int) Period {
	d := truncateToDay(now)
	if n < 1 {
		n = 1
	}
	return Period{StartDate: d.AddDate(0, 0, -(n - 1)), EndDate: d}
}

// PeriodFromName resolve os nomes de período aceitos pela API. O segundo
// retorno indica se o nome é conhecido.
func PeriodFromName(name string, now time.Time) (Period, bool) {
	switch name {
	case "today":
		return Today(now), true
	case "yesterday":
		return Yesterday(now), true
	case "this_week":
		return ThisWeek(now), true
	case "last_week":
		return LastWeek(now), true
	case "this_month":
		return ThisMonth(now), true
	case "last_month":
		return LastMonth(now), true
	case "this_year":
		return ThisYear(now), true
	case "last_year":
		return LastYear(now), true
	case "last_7_days":
		return LastNDays(now, 7), true
	case "last_30_days":
		return LastNDays(now, 30), true
	case "last_90_days":
		return LastNDays(now, 90), true
	}
	return Period{}, false
}

// Days retorna a quantidade de dias cobertos pelo período (inclusive).
func (p Period) Days() int {
	return int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
}

// Contains informa se o período recebido está inteiramente dentro deste.
func (p Period) Contains(other Period) bool {
	return !other.StartDate.Before(p.StartDate) && !other.EndDate.After(p.EndDate)
}

// ContainsDate informa se uma data (formato 2006-01-02) pertence ao período.
// A comparação lexicográfica de strings de data é equivalente à cronológica.
func (p Period) ContainsDate(date string) bool {
	return date >= p.StartDate.Format(time.DateOnly) && date <= p.EndDate.Format(time.DateOnly)
}

// Key retorna a representação estável do período usada na composição de
// chaves de cache.
func (p Period) Key() string {
	return p.StartDate.Format(time.DateOnly) + ":" + p.EndDate.Format(time.DateOnly)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s]", p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package ga4

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	ga4domain "github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4/domain"
	"github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4/ga4client"
	"github.com/expodigital/analytics-manager-api/internal/config"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// Nomes de métricas e dimensões da Data API do GA4.
const (
	metricPageviews       = "screenPageViews"
	metricSessions        = "sessions"
	metricUsers           = "totalUsers"
	metricBounceRate      = "bounceRate"
	metricSessionDuration = "averageSessionDuration"

	dimensionDate     = "date"
	dimensionPagePath = "pagePath"
	dimensionSource   = "sessionSource"
	dimensionMedium   = "sessionMedium"
	dimensionDevice   = "deviceCategory"
)

// GA4Integrator traduz o contrato de busca da aplicação em chamadas
// runReport. Cada método monta um relatório dedicado; nenhum estado é
// mantido entre chamadas.
type GA4Integrator struct {
	cfg    *config.Config
	Client ga4client.Client
}

func New(cfg *config.Config, client ga4client.Client) *GA4Integrator {
	return &GA4Integrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *GA4Integrator) FetchMetrics(ctx context.Context, property *domain.Property, period domain.Period) (*domain.PropertyMetrics, error) {
	rows, err := s.FetchDailyMetrics(ctx, property, period)
	if err != nil {
		return nil, err
	}

	return &domain.PropertyMetrics{
		Totals: domain.ComputeTotals(rows),
		Rows:   rows,
	}, nil
}

func (s *GA4Integrator) FetchDailyMetrics(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyRow, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionDate}},
		Metrics: []ga4domain.Metric{
			{Name: metricPageviews},
			{Name: metricSessions},
			{Name: metricUsers},
			{Name: metricBounceRate},
			{Name: metricSessionDuration},
		},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar métricas diárias")
		return nil, err
	}

	rows := make([]domain.DailyRow, 0, len(resp.Rows))
	for i := range resp.Rows {
		row := FactoryDailyRow(&resp.Rows[i])
		if row != nil {
			rows = append(rows, *row)
		}
	}

	logrus.WithFields(logrus.Fields{
		"source_id": property.SourceID,
		"period":    period.String(),
		"rows":      len(rows),
	}).Debug("ga4: métricas diárias recuperadas")

	return rows, nil
}

func (s *GA4Integrator) FetchTopPages(ctx context.Context, property *domain.Property, period domain.Period, limit int) ([]domain.TopPage, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionPagePath}},
		Metrics:    []ga4domain.Metric{{Name: metricPageviews}},
		OrderBys: []ga4domain.OrderBy{
			{Metric: &ga4domain.MetricOrderBy{MetricName: metricPageviews}, Desc: true},
		},
		Limit: int64(limit),
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar páginas mais acessadas")
		return nil, err
	}

	pages := make([]domain.TopPage, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 1 {
			continue
		}
		pages = append(pages, domain.TopPage{
			Path:         row.DimensionValues[0].Value,
			Pageviews:    parseInt(row.MetricValues[0].Value, metricPageviews),
			PropertyName: property.Name,
		})
	}

	return pages, nil
}

func (s *GA4Integrator) FetchDailyTopPages(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyPageRow, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionDate}, {Name: dimensionPagePath}},
		Metrics:    []ga4domain.Metric{{Name: metricPageviews}},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar páginas diárias")
		return nil, err
	}

	rows := make([]domain.DailyPageRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 1 {
			continue
		}
		rows = append(rows, domain.DailyPageRow{
			Date:      parseReportDate(row.DimensionValues[0].Value),
			Path:      row.DimensionValues[1].Value,
			Pageviews: parseInt(row.MetricValues[0].Value, metricPageviews),
		})
	}

	return rows, nil
}

func (s *GA4Integrator) FetchTrafficSources(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.TrafficSource, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionSource}, {Name: dimensionMedium}},
		Metrics:    []ga4domain.Metric{{Name: metricSessions}, {Name: metricUsers}},
		OrderBys: []ga4domain.OrderBy{
			{Metric: &ga4domain.MetricOrderBy{MetricName: metricSessions}, Desc: true},
		},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar origens de tráfego")
		return nil, err
	}

	sources := make([]domain.TrafficSource, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 2 {
			continue
		}
		sources = append(sources, domain.TrafficSource{
			Source:     row.DimensionValues[0].Value,
			Medium:     row.DimensionValues[1].Value,
			Sessions:   parseInt(row.MetricValues[0].Value, metricSessions),
			Users:      parseInt(row.MetricValues[1].Value, metricUsers),
			Properties: []string{property.Name},
		})
	}

	return sources, nil
}

func (s *GA4Integrator) FetchDailyTrafficSources(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailySourceRow, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionDate}, {Name: dimensionSource}, {Name: dimensionMedium}},
		Metrics:    []ga4domain.Metric{{Name: metricSessions}, {Name: metricUsers}},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar origens diárias")
		return nil, err
	}

	rows := make([]domain.DailySourceRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 3 || len(row.MetricValues) < 2 {
			continue
		}
		rows = append(rows, domain.DailySourceRow{
			Date:     parseReportDate(row.DimensionValues[0].Value),
			Source:   row.DimensionValues[1].Value,
			Medium:   row.DimensionValues[2].Value,
			Sessions: parseInt(row.MetricValues[0].Value, metricSessions),
			Users:    parseInt(row.MetricValues[1].Value, metricUsers),
		})
	}

	return rows, nil
}

func (s *GA4Integrator) FetchDevices(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DeviceStat, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionDevice}},
		Metrics:    []ga4domain.Metric{{Name: metricUsers}, {Name: metricSessions}},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar dispositivos")
		return nil, err
	}

	devices := make([]domain.DeviceStat, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 2 {
			continue
		}
		devices = append(devices, domain.DeviceStat{
			Category: row.DimensionValues[0].Value,
			Users:    parseInt(row.MetricValues[0].Value, metricUsers),
			Sessions: parseInt(row.MetricValues[1].Value, metricSessions),
		})
	}

	return devices, nil
}

func (s *GA4Integrator) FetchDailyDevices(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyDeviceRow, error) {
	request := &ga4domain.RunReportRequest{
		DateRanges: dateRanges(period),
		Dimensions: []ga4domain.Dimension{{Name: dimensionDate}, {Name: dimensionDevice}},
		Metrics:    []ga4domain.Metric{{Name: metricUsers}, {Name: metricSessions}},
	}

	resp, err := s.Client.RunReport(ctx, property.SourceID, request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_id": property.SourceID,
			"error":     err.Error(),
		}).Error("ga4: falha ao buscar dispositivos diários")
		return nil, err
	}

	rows := make([]domain.DailyDeviceRow, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 2 {
			continue
		}
		rows = append(rows, domain.DailyDeviceRow{
			Date:     parseReportDate(row.DimensionValues[0].Value),
			Category: row.DimensionValues[1].Value,
			Users:    parseInt(row.MetricValues[0].Value, metricUsers),
			Sessions: parseInt(row.MetricValues[1].Value, metricSessions),
		})
	}

	return rows, nil
}

// FactoryDailyRow converte uma linha do relatório diário, tolerando valores
// malformados métrica a métrica. Linha sem data é descartada.
func FactoryDailyRow(row *ga4domain.ReportRow) *domain.DailyRow {
	if len(row.DimensionValues) < 1 || len(row.MetricValues) < 5 {
		logrus.WithField("row", row).Warn("ga4: linha diária incompleta, descartando")
		return nil
	}

	date := parseReportDate(row.DimensionValues[0].Value)
	if date == "" {
		logrus.WithField("date_value", row.DimensionValues[0].Value).
			Warn("ga4: data inválida na linha diária, descartando")
		return nil
	}

	return &domain.DailyRow{
		Date:               date,
		Pageviews:          parseInt(row.MetricValues[0].Value, metricPageviews),
		Sessions:           parseInt(row.MetricValues[1].Value, metricSessions),
		Users:              parseInt(row.MetricValues[2].Value, metricUsers),
		BounceRate:         parseFloat(row.MetricValues[3].Value, metricBounceRate),
		AvgSessionDuration: parseFloat(row.MetricValues[4].Value, metricSessionDuration),
	}
}

func dateRanges(period domain.Period) []ga4domain.DateRange {
	return []ga4domain.DateRange{{
		StartDate: period.StartDate.Format(time.DateOnly),
		EndDate:   period.EndDate.Format(time.DateOnly),
	}}
}

// parseReportDate converte a dimensão de data do GA4 (20060102) para o
// formato interno 2006-01-02.
func parseReportDate(value string) string {
	parsed, err := time.Parse("20060102", value)
	if err != nil {
		return ""
	}
	return parsed.Format(time.DateOnly)
}

func parseInt(value, metric string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"metric": metric,
			"value":  value,
			"error":  err.Error(),
		}).Warn("ga4: erro ao converter valor inteiro")
	}
	return parsed
}

func parseFloat(value, metric string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"metric": metric,
			"value":  value,
			"error":  err.Error(),
		}).Warn("ga4: erro ao converter valor decimal")
	}
	return parsed
}

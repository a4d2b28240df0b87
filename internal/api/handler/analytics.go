package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
	"github.com/expodigital/analytics-manager-api/internal/usecases/dashboarding"
	"github.com/expodigital/analytics-manager-api/pkg/apiErrors"
	"github.com/expodigital/analytics-manager-api/pkg/log"
	"github.com/expodigital/analytics-manager-api/pkg/utils"
)

func GetPropertyMetrics(service dashboarding.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}

		period, ok := parsePeriod(w, r)
		if !ok {
			return
		}

		logger.WithFields(log.Fields{
			"property_id": propertyID,
			"period":      period.String(),
		}).Debug("analytics: fetching property metrics")

		metrics, err := service.GetPropertyMetrics(r.Context(), propertyID, period)
		if err != nil {
			writeAnalyticsError(w, r, propertyID, err)
			return
		}

		writeJSON(w, r, metrics)
	})
}

func GetPropertyTopPages(service dashboarding.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}

		period, ok := parsePeriod(w, r)
		if !ok {
			return
		}

		pages, err := service.GetPropertyTopPages(r.Context(), propertyID, period)
		if err != nil {
			writeAnalyticsError(w, r, propertyID, err)
			return
		}

		writeJSON(w, r, pages)
	})
}

func GetPropertyTrafficSources(service dashboarding.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}

		period, ok := parsePeriod(w, r)
		if !ok {
			return
		}

		sources, err := service.GetPropertyTrafficSources(r.Context(), propertyID, period)
		if err != nil {
			writeAnalyticsError(w, r, propertyID, err)
			return
		}

		writeJSON(w, r, sources)
	})
}

func GetPropertyDevices(service dashboarding.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}

		period, ok := parsePeriod(w, r)
		if !ok {
			return
		}

		devices, err := service.GetPropertyDevices(r.Context(), propertyID, period)
		if err != nil {
			writeAnalyticsError(w, r, propertyID, err)
			return
		}

		writeJSON(w, r, devices)
	})
}

func GetDashboard(service dashboarding.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		period, ok := parsePeriod(w, r)
		if !ok {
			return
		}

		logger.WithField("period", period.String()).Debug("analytics: building dashboard")

		dashboard, err := service.GetDashboardData(r.Context(), period)
		if err != nil {
			if errors.Is(err, dashboarding.ErrAllPropertiesFailed) {
				apiErrors.WriteError(w, apiErrors.ErrExternalService,
					"nenhuma propriedade respondeu para o período", nil)
				return
			}

			logger.WithError(err).Error("analytics: dashboard failed")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
			return
		}

		writeJSON(w, r, dashboard)
	})
}

// parsePropertyID extrai e valida o :id da rota.
func parsePropertyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := httprouter.ParamsFromContext(r.Context()).ByName("id")

	propertyID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || propertyID <= 0 {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat,
			fmt.Sprintf("identificador de propriedade inválido: %s", raw), nil)
		return 0, false
	}

	return propertyID, true
}

// parsePeriod resolve o período da query string: ou um nome conhecido em
// ?period=, ou o par explícito ?start_date=&end_date=. Sem parâmetros, o
// padrão é os últimos 7 dias.
func parsePeriod(w http.ResponseWriter, r *http.Request) (domain.Period, bool) {
	now := time.Now()

	if name := r.URL.Query().Get("period"); name != "" {
		period, ok := domain.PeriodFromName(name, now)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				fmt.Sprintf("período desconhecido: %s", name), nil)
			return domain.Period{}, false
		}
		return period, true
	}

	startRaw := r.URL.Query().Get("start_date")
	endRaw := r.URL.Query().Get("end_date")

	if startRaw == "" && endRaw == "" {
		return domain.LastNDays(now, 7), true
	}

	if startRaw == "" || endRaw == "" {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
			"start_date e end_date devem ser informadas juntas", nil)
		return domain.Period{}, false
	}

	start, err := utils.ParseDate(startRaw)
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat,
			fmt.Sprintf("start_date inválida: %s", startRaw), nil)
		return domain.Period{}, false
	}

	end, err := utils.ParseDate(endRaw)
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat,
			fmt.Sprintf("end_date inválida: %s", endRaw), nil)
		return domain.Period{}, false
	}

	period, err := domain.NewPeriod(*start, *end)
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
		return domain.Period{}, false
	}

	return period, true
}

// writeAnalyticsError traduz os erros do domínio para o contrato da API.
func writeAnalyticsError(w http.ResponseWriter, r *http.Request, propertyID int64, err error) {
	logger := log.ForContext(r.Context())

	var rateLimited *caching.RateLimitError
	if errors.As(err, &rateLimited) {
		w.Header().Set("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
		apiErrors.WriteError(w, apiErrors.ErrRateLimited,
			"limite de requisições da propriedade atingido", map[string]any{
				"property_id":         propertyID,
				"retry_after_seconds": int(rateLimited.RetryAfter.Seconds()),
			})
		return
	}

	switch {
	case errors.Is(err, dashboarding.ErrPropertyNotFound):
		apiErrors.WriteError(w, apiErrors.ErrPropertyNotFound,
			fmt.Sprintf("propriedade %d não encontrada", propertyID), nil)

	case errors.Is(err, caching.ErrPeriodOutsideRollup):
		apiErrors.WriteError(w, apiErrors.ErrPeriodOutOfRange,
			"o período pedido está fora da janela de 365 dias", nil)

	default:
		var upstream *caching.UpstreamError
		if errors.As(err, &upstream) {
			logger.WithError(err).WithField("property_id", propertyID).
				Warn("analytics: upstream failure")
			apiErrors.WriteError(w, apiErrors.ErrExternalService, err.Error(), nil)
			return
		}

		logger.WithError(err).WithField("property_id", propertyID).
			Error("analytics: unexpected failure")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("analytics: failed to encode response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package handler

import (
	"net/http"

	"github.com/expodigital/analytics-manager-api/internal/metrics"
	"github.com/expodigital/analytics-manager-api/pkg/apiErrors"
	"github.com/expodigital/analytics-manager-api/pkg/log"
)

// GetPropertyStatus expõe o retrato operacional de uma propriedade:
// chamadas à API, taxa de acerto do cache e consumo de cota do dia.
func GetPropertyStatus(recorder *metrics.StoreRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		propertyID, ok := parsePropertyID(w, r)
		if !ok {
			return
		}

		snapshot, err := recorder.Snapshot(r.Context(), propertyID)
		if err != nil {
			logger.WithError(err).WithField("property_id", propertyID).
				Error("status: failed to read counters")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, err.Error(), nil)
			return
		}

		writeJSON(w, r, snapshot)
	})
}

package ga4client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	ga4domain "github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4/domain"
)

// RunReport executa um runReport síncrono contra a propriedade indicada.
// O sourceID é o identificador numérico da propriedade no GA4.
func (c *GA4Client) RunReport(ctx context.Context, sourceID string, request *ga4domain.RunReportRequest) (*ga4domain.RunReportResponse, error) {
	url := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.Cfg.GA4.BaseURL, sourceID)

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar o corpo do runReport: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.Cfg.GA4.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := c.HandleResponse(resp)
	if err != nil {
		return nil, err
	}

	var response ga4domain.RunReportResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return nil, err
	}

	return &response, nil
}

// HandleResponse lê o corpo e converte respostas não-2xx no envelope de erro
// padrão da API.
func (c *GA4Client) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o corpo da resposta: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var apiErr ga4domain.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != 0 {
		logrus.WithFields(logrus.Fields{
			"status": apiErr.Error.Status,
			"code":   apiErr.Error.Code,
		}).Error("Erro retornado pela API do GA4")
		return nil, fmt.Errorf("%s", apiErr.String())
	}

	return nil, fmt.Errorf("resposta inesperada da API do GA4 (HTTP %d)", resp.StatusCode)
}

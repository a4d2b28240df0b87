package ga4client

import (
	"context"
	"net/http"
	"time"

	ga4domain "github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4/domain"
	"github.com/expodigital/analytics-manager-api/internal/config"
)

type Client interface {
	RunReport(ctx context.Context, sourceID string, request *ga4domain.RunReportRequest) (*ga4domain.RunReportResponse, error)
	HandleResponse(resp *http.Response) ([]byte, error)
}

type GA4Client struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.GA4.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GA4Client{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

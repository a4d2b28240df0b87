package domain

import "fmt"

// APIError é o envelope de erro padrão da Data API do GA4.
type APIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("ga4 api error %d (%s): %s", e.Error.Code, e.Error.Status, e.Error.Message)
}

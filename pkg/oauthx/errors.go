package oauthx

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauthx: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("oauthx: provider returned status %d", e.StatusCode)
}

func parseErrorResponse(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	// Body may not be JSON; the status code alone is still a usable error.
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}

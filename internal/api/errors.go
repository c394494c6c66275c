package api

import (
	"errors"
	"net/http"

	"sgjobs-insights/internal/domain"
)

// errorBody is the JSON error envelope. For execution errors the attempted
// SQL and parameters are included so a failed query can be diagnosed from
// the response alone.
type errorBody struct {
	Error  string `json:"error"`
	SQL    string `json:"sql,omitempty"`
	Params string `json:"params,omitempty"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Configuration errors are surfaced as 503: the session cannot serve any
// query until the data contract is repaired.
func httpStatusFromDomainError(err error) int {
	var configuration *domain.ConfigurationError
	var execution *domain.ExecutionError
	var validation *domain.ValidationError
	var notFound *domain.NotFoundError

	switch {
	case errors.As(err, &configuration):
		return http.StatusServiceUnavailable
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &execution):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

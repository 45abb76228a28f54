package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"inkwell/internal/domain"
)

// ProblemDetail is an RFC 7807 Problem Details body. The collaborator
// stub encodes these on errors and the API client decodes them back into
// the domain error taxonomy.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// DecodeProblem reads a non-2xx response body into a domain.RemoteError.
// A body that is not a problem document still yields a RemoteError with
// the response status, so callers always get the taxonomy mapping.
func DecodeProblem(resp *http.Response) *domain.RemoteError {
	re := &domain.RemoteError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return re
	}

	var problem ProblemDetail
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		re.Detail = problem.Detail
	}
	return re
}

// errorTypeFromStatus returns the RFC 7807 type URI for a status code
func errorTypeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1"
	case http.StatusUnauthorized:
		return "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1"
	case http.StatusForbidden:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.3"
	case http.StatusNotFound:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4"
	case http.StatusConflict:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.8"
	case http.StatusInternalServerError:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1"
	default:
		return "about:blank"
	}
}

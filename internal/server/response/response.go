// Package response provides the JSON envelope every pagecast API endpoint
// answers with: a data field on success and an error field on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/pagecast/pkg/errors"
)

// Response is the API envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error describes a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes.
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeNotFound    = "NOT_FOUND"
	CodeInternal    = "INTERNAL_ERROR"
	CodeBadGateway  = "BAD_GATEWAY"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeTimeout     = "TIMEOUT"
)

// Success wraps data in an envelope.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail builds an error envelope.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes data with status 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail(CodeBadRequest, message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail(CodeNotFound, message, details))
}

// InternalError writes a 500 error response. The error is not exposed to
// the client; the logging middleware records the status.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(CodeInternal, "Internal server error", "An unexpected error occurred"))
}

// BadGateway writes a 502 error response.
func BadGateway(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadGateway, Fail(CodeBadGateway, message, details))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(CodeUnavailable, "Service unavailable", message))
}

// GatewayTimeout writes a 504 error response.
func GatewayTimeout(w http.ResponseWriter, message string) {
	JSON(w, http.StatusGatewayTimeout, Fail(CodeTimeout, "Request timed out", message))
}

// ErrorFromType maps pagecast errors to HTTP responses:
//
//	NotRegisteredError, NotFoundError  404
//	ValidationError                    400
//	InstantiationError                 503
//	RepositoryError                    502
//	TimeoutError                       504
//	CanceledError, ErrClosed           503
//	APIError                           502 for 5xx upstream, else 400
//	anything else                      500
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		notRegistered *errors.NotRegisteredError
		notFound      *errors.NotFoundError
		validation    *errors.ValidationError
		instErr       *errors.InstantiationError
		repoErr       *errors.RepositoryError
		apiErr        *errors.APIError
	)

	switch {
	case errors.As(err, &notRegistered):
		NotFound(w, notRegistered.Error(), "")
	case errors.As(err, &notFound):
		NotFound(w, notFound.Error(), "")
	case errors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case errors.As(err, &instErr):
		ServiceUnavailable(w, instErr.Error())
	case errors.As(err, &repoErr):
		BadGateway(w, "Repository failed", repoErr.Error())
	case errors.IsTimeout(err):
		GatewayTimeout(w, err.Error())
	case errors.IsCanceled(err), errors.Is(err, errors.ErrClosed):
		ServiceUnavailable(w, err.Error())
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 500 {
			BadGateway(w, "Upstream failed", apiErr.Error())
		} else {
			BadRequest(w, apiErr.Error(), "")
		}
	default:
		InternalError(w, err)
	}
}

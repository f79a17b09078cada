package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"screener/internal/errors"
)

// APIError is a non-2xx answer from the screening API
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string // server-supplied detail, empty when none was sent
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// newAPIError builds an APIError from a response body. The API answers
// {"detail": "..."} for handled errors and {"detail": [...]} for
// request validation failures; the latter is kept as compact JSON.
func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Method: method, Path: path}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		apiErr.Detail = text
		return apiErr
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, envelope.Detail); err == nil && compact.String() != "null" {
		apiErr.Detail = compact.String()
	}
	return apiErr
}

func isClientError(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// StatusCode returns the HTTP status behind err, or 0 when err is not an API answer
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage is the text shown to the user for err: the server detail when
// present, otherwise the error's own description.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("Request failed with status code %d", apiErr.StatusCode)
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}

	return err.Error()
}

package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/tidyloom/internal/chart"
	"github.com/KaramelBytes/tidyloom/internal/cleaning"
	"github.com/KaramelBytes/tidyloom/internal/export"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/session"
)

const (
	msgUnsupported = "Unsupported file type"
	msgParse       = "Could Not Read Excel / CSV File. Please Check The File Format"
	msgNoTable     = "No data available. Please upload a file first."
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, message string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message, Details: details}
}

// apiErrorFor maps a component error onto the status and message shown to
// users. Unrecognized errors become a 500 without detail.
func apiErrorFor(err error) *APIError {
	var (
		parseErr *loader.ParseError
		cleanErr *cleaning.Error
		chartErr *chart.Error
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, session.ErrNoTable), errors.Is(err, export.ErrNoTable):
		return newAPIError(http.StatusNotFound, "NO_TABLE", msgNoTable, nil)
	case errors.Is(err, session.ErrNotFound):
		return newAPIError(http.StatusNotFound, "SESSION_NOT_FOUND", "Session expired. Please upload the file again.", nil)
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return newAPIError(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", msgUnsupported, err.Error())
	case errors.As(err, &parseErr):
		return newAPIError(http.StatusUnprocessableEntity, "PARSE_ERROR", msgParse, parseErr.Err.Error())
	case errors.As(err, &tooLarge):
		return newAPIError(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
			fmt.Sprintf("File is larger than %d MB", tooLarge.Limit>>20), nil)
	case errors.Is(err, cleaning.ErrUnknownOp), errors.Is(err, chart.ErrUnknownKind), errors.Is(err, chart.ErrUnknownColumn):
		return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
	case errors.As(err, &cleanErr):
		return newAPIError(http.StatusUnprocessableEntity, "CLEANING_FAILED", cleanErr.Err.Error(), cleanErr.Op.String())
	case errors.As(err, &chartErr):
		return newAPIError(http.StatusUnprocessableEntity, "CHART_FAILED", chartErr.Err.Error(), string(chartErr.Kind))
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
	}
}

// renderAPIError writes err as JSON and logs server-side failures.
func (h *Handler) renderAPIError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiErrorFor(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	_ = render.Render(w, r, apiErr)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gartstein/directory/internal/directory/controller"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"go.uber.org/zap"
)

type filterRequest struct {
	Search        string `json:"search"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	EmployeeRange string `json:"employee_range"`
}

type sortRequest struct {
	Field string `json:"field"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type stateResponse struct {
	State controller.ViewState `json:"state"`
}

type scrollResponse struct {
	State    controller.ViewState `json:"state"`
	Advanced bool                 `json:"advanced"`
}

type industriesResponse struct {
	Industries []string `json:"industries"`
}

type locationsResponse struct {
	Locations []string `json:"locations"`
}

type reloadResponse struct {
	Status controller.LoadStatus `json:"status"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// toFilter validates a filter request. Blank fields mean "any".
func (r filterRequest) toFilter() (models.FilterSpec, error) {
	band, err := models.ParseEmployeeRange(r.EmployeeRange)
	if err != nil {
		return models.FilterSpec{}, err
	}
	return models.FilterSpec{
		Search:        r.Search,
		Industry:      r.Industry,
		Location:      r.Location,
		EmployeeRange: band,
	}, nil
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", e.ErrInvalidInput, err)
	}
	return nil
}

func (h *DirectoryHandler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// mapServiceError maps domain errors to HTTP status codes.
func (h *DirectoryHandler) mapServiceError(err error) (int, errorResponse) {
	var failure *e.LoadFailure
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.As(err, &failure):
		return http.StatusServiceUnavailable, errorResponse{Error: failure.Message, Retryable: true}
	case errors.Is(err, e.ErrNotLoaded):
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Retryable: true}
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("internal server error: %v", err)}
	}
}

func (h *DirectoryHandler) writeError(w http.ResponseWriter, err error) {
	code, body := h.mapServiceError(err)
	h.writeJSON(w, code, body)
}

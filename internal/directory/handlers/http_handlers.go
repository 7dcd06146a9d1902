package handlers

import (
	"context"
	"net/http"

	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// DirectoryController defines the view controller operations that the
// HTTP handlers invoke.
type DirectoryController interface {
	Reload(ctx context.Context) error
	Status() controller.LoadStatus
	State() controller.ViewState
	Page() (*controller.PageView, error)
	Industries() ([]string, error)
	Locations() ([]string, error)
	SetFilter(f models.FilterSpec) controller.ViewState
	ClearFilters() controller.ViewState
	SetSort(field models.SortField) controller.ViewState
	SetViewMode(mode models.ViewMode) controller.ViewState
	SetPaginationMode(mode models.PaginationMode) controller.ViewState
	SetPage(n int) (controller.ViewState, error)
	NotifyScroll(pos controller.ScrollPosition) (controller.ViewState, bool)
}

// DirectoryHandler translates HTTP requests into controller intents.
type DirectoryHandler struct {
	ctrl   DirectoryController
	logger *zap.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(ctrl DirectoryController, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		ctrl:   ctrl,
		logger: logger.Named("http_handler"),
	}
}

// RegisterRoutes binds every directory route on mux.
func (h *DirectoryHandler) RegisterRoutes(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/companies", h.GetCompanies},
		{http.MethodGet, "/v1/industries", h.GetIndustries},
		{http.MethodGet, "/v1/locations", h.GetLocations},
		{http.MethodGet, "/v1/state", h.GetState},
		{http.MethodPut, "/v1/filter", h.SetFilter},
		{http.MethodDelete, "/v1/filter", h.ClearFilters},
		{http.MethodPost, "/v1/sort", h.SetSort},
		{http.MethodPut, "/v1/view", h.SetViewMode},
		{http.MethodPut, "/v1/pagination", h.SetPaginationMode},
		{http.MethodPut, "/v1/page", h.SetPage},
		{http.MethodPost, "/v1/scroll", h.NotifyScroll},
		{http.MethodPost, "/v1/reload", h.Reload},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return err
		}
	}
	return nil
}

// GetCompanies renders the current page of the directory.
func (h *DirectoryHandler) GetCompanies(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	page, err := h.ctrl.Page()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *DirectoryHandler) GetIndustries(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	industries, err := h.ctrl.Industries()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, industriesResponse{Industries: industries})
}

func (h *DirectoryHandler) GetLocations(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	locations, err := h.ctrl.Locations()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, locationsResponse{Locations: locations})
}

// GetState returns the view state; it is available before the first load.
func (h *DirectoryHandler) GetState(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.State()})
}

// SetFilter replaces the whole filter.
func (h *DirectoryHandler) SetFilter(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	f, err := req.toFilter()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.SetFilter(f)})
}

func (h *DirectoryHandler) ClearFilters(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.ClearFilters()})
}

func (h *DirectoryHandler) SetSort(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	field, err := models.ParseSortField(req.Field)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.SetSort(field)})
}

func (h *DirectoryHandler) SetViewMode(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	mode, err := models.ParseViewMode(req.Mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.SetViewMode(mode)})
}

func (h *DirectoryHandler) SetPaginationMode(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	mode, err := models.ParsePaginationMode(req.Mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: h.ctrl.SetPaginationMode(mode)})
}

func (h *DirectoryHandler) SetPage(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req pageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	state, err := h.ctrl.SetPage(req.Page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stateResponse{State: state})
}

// NotifyScroll reports a scroll position; advanced is true when another
// page was revealed.
func (h *DirectoryHandler) NotifyScroll(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var pos controller.ScrollPosition
	if err := decodeJSON(r, &pos); err != nil {
		h.writeError(w, err)
		return
	}
	state, advanced := h.ctrl.NotifyScroll(pos)
	h.writeJSON(w, http.StatusOK, scrollResponse{State: state, Advanced: advanced})
}

// Reload retries the bulk load and waits for its outcome.
func (h *DirectoryHandler) Reload(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if err := h.ctrl.Reload(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reloadResponse{Status: h.ctrl.Status()})
}

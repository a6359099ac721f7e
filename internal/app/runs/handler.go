package runs

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/db"
	"forge-build-publisher/internal/history"
	"forge-build-publisher/internal/pkg/render"
	"forge-build-publisher/internal/router"
)

type runReader interface {
	List(ctx context.Context, f history.ListFilter) ([]history.Run, error)
	Get(ctx context.Context, id string) (history.Run, error)
}

type NewHandlerParams struct {
	fx.In

	Store  *history.Store
	Logger *zap.SugaredLogger
}

// ListHandler serves GET /v1/runs?item_id=&limit=.
type ListHandler struct {
	store  runReader
	logger *zap.SugaredLogger
}

func NewListHandler(p NewHandlerParams) *ListHandler {
	return &ListHandler{store: p.Store, logger: p.Logger}
}

func (h *ListHandler) RegisterRoute(r chi.Router) {
	r.Get("/v1/runs", h.Handle)
}

type listResponse struct {
	Runs []history.Run `json:"runs"`
}

func (h *ListHandler) Handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			render.ChiErr(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.store.List(r.Context(), history.ListFilter{
		ItemID: strings.TrimSpace(q.Get("item_id")),
		Limit:  limit,
	})
	if errors.Is(err, db.ErrHistoryDisabled) {
		render.ChiErr(w, http.StatusServiceUnavailable, "history disabled")
		return
	}
	if err != nil {
		h.logger.Errorw("runs_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	render.ChiJSON(w, http.StatusOK, listResponse{Runs: runs})
}

// GetByIDHandler serves GET /v1/runs/{id}.
type GetByIDHandler struct {
	store  runReader
	logger *zap.SugaredLogger
}

func NewGetByIDHandler(p NewHandlerParams) *GetByIDHandler {
	return &GetByIDHandler{store: p.Store, logger: p.Logger}
}

func (h *GetByIDHandler) RegisterRoute(r chi.Router) {
	r.Get("/v1/runs/{id}", h.Handle)
}

func (h *GetByIDHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	run, err := h.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrHistoryDisabled):
		render.ChiErr(w, http.StatusServiceUnavailable, "history disabled")
		return
	case errors.Is(err, history.ErrNotFound):
		render.ChiErr(w, http.StatusNotFound, "not found")
		return
	case err != nil:
		h.logger.Errorw("runs_get_by_id_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to fetch run")
		return
	}

	render.ChiJSON(w, http.StatusOK, run)
}

var (
	_ router.Handler = (*ListHandler)(nil)
	_ router.Handler = (*GetByIDHandler)(nil)
)

package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"

	"forge-build-publisher/internal/pkg/render"
	"forge-build-publisher/internal/router"
)

type Handler struct {
	historyDB *sqlx.DB
}

type NewHandlerParams struct {
	fx.In

	HistoryDB *sqlx.DB `name:"history" optional:"true"`
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{historyDB: p.HistoryDB}
}

func (h *Handler) RegisterRoute(r chi.Router) {
	r.Get("/health", h.Handle)
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	History string `json:"history"`
}

// Handle reports 503 only when history is configured but unreachable.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.historyDB == nil {
		render.ChiJSON(w, http.StatusOK, healthResponse{OK: true, History: "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.historyDB.PingContext(ctx); err != nil {
		render.ChiJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false, History: "unreachable"})
		return
	}
	render.ChiJSON(w, http.StatusOK, healthResponse{OK: true, History: "ok"})
}

var _ router.Handler = (*Handler)(nil)

package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func serve(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoute(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth_HistoryDisabled(t *testing.T) {
	w := serve(t, NewHandler(NewHandlerParams{}))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true,"history":"disabled"}`, w.Body.String())
}

func TestHealth_HistoryOK(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w := serve(t, NewHandler(NewHandlerParams{HistoryDB: db}))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true,"history":"ok"}`, w.Body.String())
}

func TestHealth_HistoryUnreachable(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	w := serve(t, NewHandler(NewHandlerParams{HistoryDB: db}))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

package fx

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestRegisterHTTPServerLifecycle_ServesAndStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := &http.Server{Addr: addr, Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})}

	lc := fxtest.NewLifecycle(t)
	RegisterHTTPServerLifecycle(lc, srv, zap.NewNop().Sugar())
	lc.RequireStart()

	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, "ok", string(body))

	lc.RequireStop()
}

func TestRegisterHTTPServerLifecycle_PortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &http.Server{Addr: ln.Addr().String()}
	lc := fxtest.NewLifecycle(t)
	RegisterHTTPServerLifecycle(lc, srv, zap.NewNop().Sugar())

	require.Error(t, lc.Start(context.Background()))
}

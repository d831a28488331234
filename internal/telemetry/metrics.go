package telemetry

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// StartMetricsServer serves handler on addr under /metrics in the background.
// The listener is bound before returning, so the returned server's Addr
// holds the resolved address.
func StartMetricsServer(addr string, handler http.Handler) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Debug("Starting metrics server", "addr", srv.Addr)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()
	return srv, nil
}

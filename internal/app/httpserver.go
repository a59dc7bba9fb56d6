package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Spok95/scout-gallery/internal/metrics"
)

type HTTPServer struct {
	srv *http.Server
}

// StartHTTP поднимает сервер: служебные /healthz и /metrics живут рядом
// с REST-поверхностью api, но мимо её middleware.
func StartHTTP(ctx context.Context, addr string, db *sql.DB, api http.Handler) *HTTPServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/api/", api)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = srv.ListenAndServe() // закрываем аккуратно при Shutdown
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}

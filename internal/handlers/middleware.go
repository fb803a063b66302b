package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Werneck0live/cadastro-cnpj/internal/metrics"
)

type statusRW struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRW) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// LogMiddleware loga método, status, n. de bytes e duração de cada requisição
// e alimenta as métricas HTTP quando m != nil.
func LogMiddleware(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusRW{ResponseWriter: w}
			next.ServeHTTP(srw, r)

			status := srw.status
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			m.ObserveHTTP(r.Method, status, dur)
			log.Info("http_request",
				"method", r.Method, "path", r.URL.Path,
				"status", status, "bytes", srw.bytes,
				"duration_ms", dur.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		})
	}
}

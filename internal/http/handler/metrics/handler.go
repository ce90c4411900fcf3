package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	mux *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(gatherer prometheus.Gatherer) *Handler {
	h := &Handler{
		mux: &http.ServeMux{},
	}

	h.mux.Handle("GET /", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return h
}

var _ http.Handler = &Handler{}

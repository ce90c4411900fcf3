package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bornholm/autosend/internal/slogx"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler reports whether the instance store is reachable
type Handler struct {
	pinger Pinger
	logger *slog.Logger
}

type status struct {
	Healthy bool `json:"healthy"`
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := http.StatusOK
	healthy := true

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "store is unreachable", slogx.Error(err))
		code = http.StatusServiceUnavailable
		healthy = false
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(status{Healthy: healthy}); err != nil {
		h.logger.ErrorContext(ctx, "could not write health status", slogx.Error(err))
	}
}

func NewHandler(pinger Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		pinger: pinger,
		logger: logger.With("component", "health-handler"),
	}
}

var _ http.Handler = &Handler{}

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/pkg/errors"
	sloghttp "github.com/samber/slog-http"
)

type Server struct {
	opts *Options
}

func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := &http.ServeMux{}
	for mountpoint, handler := range s.opts.Mounts {
		mount(mux, mountpoint, handler)
	}

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.opts.Logger)(handler)

	server := http.Server{
		Addr:    s.opts.Address,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			s.opts.Logger.ErrorContext(ctx, "could not close server", slogx.Error(errors.WithStack(err)))
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func mount(mux *http.ServeMux, prefix string, handler http.Handler) {
	trimmed := strings.TrimSuffix(prefix, "/")

	if len(trimmed) > 0 {
		mux.Handle(prefix, http.StripPrefix(trimmed, handler))
	} else {
		mux.Handle(prefix, handler)
	}
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)
	return &Server{
		opts: opts,
	}
}


package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const DefaultPath = "/metrics"

// NewRouter mounts the recorder's handler at path
func NewRouter(recorder *Recorder, path string) *mux.Router {
	if path == "" {
		path = DefaultPath
	}
	r := mux.NewRouter()
	r.Handle(path, recorder.Handler()).Methods(http.MethodGet)
	return r
}

// Listen binds addr so a bad address is reported before any load is generated
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve exposes the recorder on addr until ctx is cancelled
func Serve(ctx context.Context, addr, path string, recorder *Recorder, logger logrus.FieldLogger) error {
	ln, err := Listen(addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, path, recorder, logger)
}

// ServeListener exposes the recorder on an already bound listener until ctx
// is cancelled. The listener is closed on return.
func ServeListener(ctx context.Context, ln net.Listener, path string, recorder *Recorder, logger logrus.FieldLogger) error {
	srv := &http.Server{
		Handler:           NewRouter(recorder, path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", ln.Addr().String()).Info("serving prometheus metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

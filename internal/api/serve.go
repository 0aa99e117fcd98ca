package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// Serve 在 addr 上提供 h，ctx 结束后优雅关闭，再依次执行 onShutdown
func Serve(ctx context.Context, addr string, h http.Handler, onShutdown ...func()) error {
	srv := &http.Server{Addr: addr, Handler: h}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("api: shutting down server gracefully...")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("api: serve %s: %w", addr, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("api: server shutdown error")
	}
	for _, fn := range onShutdown {
		fn()
	}
	return serveErr
}

package api

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func TestServeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), func() { stopped.Store(true) })
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve err=%v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
	if !stopped.Load() {
		t.Fatalf("shutdown hook was not called")
	}
}

func TestServeReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	var stopped atomic.Bool
	err = Serve(context.Background(), ln.Addr().String(), http.NotFoundHandler(), func() { stopped.Store(true) })
	if err == nil {
		t.Fatalf("expected error when address is in use")
	}
	if !stopped.Load() {
		t.Fatalf("shutdown hook should run on listen failure too")
	}
}

//go:build !windows

package ipc

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koreawook/ClockApp/internal/logging"
)

type mockHandler struct {
	show     int32
	settings int32
	rest     int32
	reload   int32
	quit     int32
	restErr  error
}

func (h *mockHandler) GetStatus() *StatusData {
	return &StatusData{Version: "test", Level: 3, NextBreak: "⏰ 다음 휴식: 12:00", BreakEnabled: true}
}

func (h *mockHandler) Show() error {
	atomic.AddInt32(&h.show, 1)
	return nil
}

func (h *mockHandler) OpenSettings() error {
	atomic.AddInt32(&h.settings, 1)
	return nil
}

func (h *mockHandler) StartRest() error {
	atomic.AddInt32(&h.rest, 1)
	return h.restErr
}

func (h *mockHandler) ReloadSettings() error {
	atomic.AddInt32(&h.reload, 1)
	return nil
}

func (h *mockHandler) Quit() error {
	atomic.AddInt32(&h.quit, 1)
	return nil
}

func startTestServer(t *testing.T, h Handler) (*Server, string) {
	t.Helper()
	addr := filepath.Join(t.TempDir(), "clock.sock")
	server := NewServer(h, logging.NewLogger("cli", nil), addr)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(server.Stop)
	return server, addr
}

func TestClientServer(t *testing.T) {
	handler := &mockHandler{}
	_, addr := startTestServer(t, handler)

	client := NewClient(addr, "cli")
	client.SetTimeout(2 * time.Second)
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := client.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
		if !client.IsRunning(ctx) {
			t.Error("IsRunning should be true")
		}
	})

	t.Run("GetStatus", func(t *testing.T) {
		status, err := client.GetStatus(ctx)
		if err != nil {
			t.Fatalf("GetStatus failed: %v", err)
		}
		if status.Level != 3 || !status.BreakEnabled || status.NextBreak != "⏰ 다음 휴식: 12:00" {
			t.Errorf("unexpected status %+v", status)
		}
	})

	t.Run("Commands", func(t *testing.T) {
		if err := client.Show(ctx); err != nil {
			t.Errorf("Show failed: %v", err)
		}
		if err := client.OpenSettings(ctx); err != nil {
			t.Errorf("OpenSettings failed: %v", err)
		}
		if err := client.StartRest(ctx); err != nil {
			t.Errorf("StartRest failed: %v", err)
		}
		if err := client.ReloadSettings(ctx); err != nil {
			t.Errorf("ReloadSettings failed: %v", err)
		}
		if err := client.Quit(ctx); err != nil {
			t.Errorf("Quit failed: %v", err)
		}
		if handler.show != 1 || handler.settings != 1 || handler.rest != 1 || handler.reload != 1 || handler.quit != 1 {
			t.Errorf("handler calls: show=%d settings=%d rest=%d reload=%d quit=%d",
				handler.show, handler.settings, handler.rest, handler.reload, handler.quit)
		}
	})
}

func TestHandlerErrorIsReported(t *testing.T) {
	handler := &mockHandler{restErr: errors.New("rest popup already open")}
	_, addr := startTestServer(t, handler)

	err := NewClient(addr, "cli").StartRest(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "server error: rest popup already open" {
		t.Errorf("error = %q", got)
	}
}

func TestClientNoServer(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"), "cli")
	client.SetTimeout(100 * time.Millisecond)

	if _, err := client.GetStatus(context.Background()); err == nil {
		t.Error("Expected error when server is not running")
	}
	if client.IsRunning(context.Background()) {
		t.Error("Expected IsRunning to return false")
	}
}

func TestSecondServerRefused(t *testing.T) {
	_, addr := startTestServer(t, &mockHandler{})

	second := NewServer(&mockHandler{}, logging.NewLogger("cli", nil), addr)
	if err := second.Start(); !errors.Is(err, ErrAddressInUse) {
		t.Errorf("second Start() error = %v, want ErrAddressInUse", err)
	}
}

func TestStaleSocketIsReplaced(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "clock.sock")
	first := NewServer(&mockHandler{}, logging.NewLogger("cli", nil), addr)
	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	first.Stop()

	second := NewServer(&mockHandler{}, logging.NewLogger("cli", nil), addr)
	if err := second.Start(); err != nil {
		t.Fatalf("Start() after stop error = %v", err)
	}
	second.Stop()
}

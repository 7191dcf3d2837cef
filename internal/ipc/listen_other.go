//go:build !windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// ErrAddressInUse is returned by Start when another server answers on the socket.
var ErrAddressInUse = errors.New("IPC socket is in use by a running instance")

// DefaultAddress returns socketFile, the unix socket inside the data directory.
func DefaultAddress(socketFile string) string {
	return socketFile
}

func listen(addr string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(addr), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	// A leftover socket from a crashed process is removed; a live one is not.
	if _, err := os.Stat(addr); err == nil {
		conn, err := net.DialTimeout("unix", addr, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil, ErrAddressInUse
		}
		if err := os.Remove(addr); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if err := os.Chmod(addr, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	return listener, nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", addr)
}

func cleanup(addr string) {
	os.Remove(addr)
}

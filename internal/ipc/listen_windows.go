//go:build windows

package ipc

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"

	"github.com/koreawook/ClockApp/internal/constants"
)

// DefaultAddress returns the named pipe; socketFile is unused on Windows.
func DefaultAddress(socketFile string) string {
	return constants.PipeName
}

// getCurrentUserSID returns the SID of the current process owner.
func getCurrentUserSID() (string, error) {
	token, err := windows.OpenCurrentProcessToken()
	if err != nil {
		return "", fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()

	user, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("failed to get token user: %w", err)
	}
	return user.User.Sid.String(), nil
}

func listen(addr string) (net.Listener, error) {
	// Only the user who started the clock may connect. Without a SID fall
	// back to authenticated users.
	sddl := "D:P(A;;GA;;;AU)"
	if sid, err := getCurrentUserSID(); err == nil {
		sddl = fmt.Sprintf("D:P(A;;GA;;;%s)", sid)
	}

	cfg := &winio.PipeConfig{
		SecurityDescriptor: sddl,
		MessageMode:        true,
		InputBufferSize:    4096,
		OutputBufferSize:   4096,
	}
	listener, err := winio.ListenPipe(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create named pipe: %w", err)
	}
	return listener, nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, addr)
}

func cleanup(addr string) {}

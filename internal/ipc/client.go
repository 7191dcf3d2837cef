package ipc

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/koreawook/ClockApp/internal/constants"
)

// Client connects to a running clock.
type Client struct {
	addr    string
	origin  string
	timeout time.Duration
}

// NewClient creates a client for addr. origin is reported to the server.
func NewClient(addr, origin string) *Client {
	return &Client{
		addr:    addr,
		origin:  origin,
		timeout: constants.IPCRequestTimeout,
	}
}

// SetTimeout sets the connection timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

func (c *Client) sendRequest(ctx context.Context, msgType MessageType) (*Response, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := dial(dialCtx, c.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IPC server: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	req := &Request{Type: msgType, Origin: c.origin}
	data, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp, err := DecodeResponse(respData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func (c *Client) simple(ctx context.Context, msgType MessageType) error {
	resp, err := c.sendRequest(ctx, msgType)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server error: %s", resp.Error)
	}
	return nil
}

// Ping checks that a server answers.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.sendRequest(ctx, MsgPing)
	if err != nil {
		return err
	}
	if resp.Type != MsgPong {
		return fmt.Errorf("unexpected response to ping: %s", resp.Type)
	}
	return nil
}

// IsRunning reports whether a clock answers on the address.
func (c *Client) IsRunning(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}

// GetStatus retrieves the running clock's status.
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	resp, err := c.sendRequest(ctx, MsgGetStatus)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	status := resp.GetStatusData()
	if status == nil {
		return nil, fmt.Errorf("status response has no data")
	}
	return status, nil
}

// Show brings the clock window to the front.
func (c *Client) Show(ctx context.Context) error {
	return c.simple(ctx, MsgShow)
}

// OpenSettings opens the settings window.
func (c *Client) OpenSettings(ctx context.Context) error {
	return c.simple(ctx, MsgOpenSettings)
}

// StartRest opens a rest popup now.
func (c *Client) StartRest(ctx context.Context) error {
	return c.simple(ctx, MsgStartRest)
}

// ReloadSettings makes the clock re-read its settings file.
func (c *Client) ReloadSettings(ctx context.Context) error {
	return c.simple(ctx, MsgReload)
}

// Quit asks the clock to exit.
func (c *Client) Quit(ctx context.Context) error {
	return c.simple(ctx, MsgQuit)
}

// Package ipc is the instance control channel: a running clock listens on a
// named pipe (Windows) or unix socket and answers newline-delimited JSON
// requests from a second instance, the CLI and the tray companion.
package ipc

import (
	"encoding/json"
)

// MessageType identifies the type of IPC message.
type MessageType string

const (
	// Request types (client -> server)
	MsgPing         MessageType = "Ping"
	MsgGetStatus    MessageType = "GetStatus"
	MsgShow         MessageType = "Show"
	MsgOpenSettings MessageType = "OpenSettings"
	MsgStartRest    MessageType = "StartRest"
	MsgReload       MessageType = "ReloadSettings"
	MsgQuit         MessageType = "Quit"

	// Response types (server -> client)
	MsgPong           MessageType = "Pong"
	MsgStatusResponse MessageType = "StatusResponse"
	MsgOK             MessageType = "OK"
	MsgError          MessageType = "Error"
)

// Request represents an IPC request from client to server.
type Request struct {
	Type MessageType `json:"type"`
	// Origin names the sender ("instance", "cli", "tray") for logging.
	Origin string `json:"origin,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Type    MessageType `json:"type"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// StatusData is the running clock's state as reported to clients.
type StatusData struct {
	Version string `json:"version"`
	PID     int    `json:"pid"`
	Uptime  string `json:"uptime,omitempty"`

	// NextBreak is the countdown label shown in the clock window
	NextBreak string `json:"next_break"`
	// NextBreakSeconds is the time until the next break (0 when due or paused)
	NextBreakSeconds int    `json:"next_break_seconds"`
	BreakEnabled     bool   `json:"break_enabled"`
	MealPaused       bool   `json:"meal_paused"`
	ActiveMeal       string `json:"active_meal,omitempty"`

	Level        int   `json:"level"`
	TotalSeconds int64 `json:"total_seconds"`

	// RestOpen is true while a rest popup is on screen
	RestOpen bool `json:"rest_open"`

	StartupEnabled bool   `json:"startup_enabled"`
	Weather        string `json:"weather,omitempty"`
}

// NewRequest creates a new IPC request.
func NewRequest(msgType MessageType) *Request {
	return &Request{Type: msgType}
}

// NewOKResponse creates a success response.
func NewOKResponse() *Response {
	return &Response{Type: MsgOK, Success: true}
}

// NewPongResponse answers a Ping.
func NewPongResponse() *Response {
	return &Response{Type: MsgPong, Success: true}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(err string) *Response {
	return &Response{Type: MsgError, Success: false, Error: err}
}

// NewStatusResponse creates a status response.
func NewStatusResponse(status *StatusData) *Response {
	return &Response{Type: MsgStatusResponse, Success: true, Data: status}
}

// Encode serializes a request to JSON.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Encode serializes a response to JSON.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest deserializes a request from JSON.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeResponse deserializes a response from JSON.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatusData extracts StatusData from a response.
// Returns nil if the response doesn't contain status data.
func (r *Response) GetStatusData() *StatusData {
	if r.Data == nil {
		return nil
	}

	// Handle both direct StatusData and map[string]interface{} from JSON
	switch v := r.Data.(type) {
	case *StatusData:
		return v
	case StatusData:
		return &v
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var status StatusData
		if err := json.Unmarshal(data, &status); err != nil {
			return nil
		}
		return &status
	}
	return nil
}

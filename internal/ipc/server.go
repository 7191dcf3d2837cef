package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/koreawook/ClockApp/internal/logging"
)

// Handler performs the requests a running clock accepts. Methods are called
// from server goroutines; implementations hand UI work to the UI loop.
type Handler interface {
	GetStatus() *StatusData
	Show() error
	OpenSettings() error
	StartRest() error
	ReloadSettings() error
	Quit() error
}

// Server handles IPC requests from clients.
type Server struct {
	handler  Handler
	logger   *logging.Logger
	addr     string
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewServer creates a server for addr (see DefaultAddress).
func NewServer(handler Handler, logger *logging.Logger, addr string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler: handler,
		logger:  logger,
		addr:    addr,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Addr returns the pipe name or socket path.
func (s *Server) Addr() string {
	return s.addr
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := listen(s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info().Str("addr", s.addr).Msg("IPC server started")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop gracefully shuts down the IPC server.
func (s *Server) Stop() {
	s.once.Do(func() {
		s.logger.Debug().Msg("Stopping IPC server")
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		cleanup(s.addr)
		s.logger.Info().Msg("IPC server stopped")
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Warn().Err(err).Msg("Failed to accept IPC connection")
				time.Sleep(50 * time.Millisecond)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			s.logger.Warn().Err(err).Msg("Failed to read IPC request")
		}
		return
	}

	req, err := DecodeRequest(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode IPC request")
		s.sendResponse(conn, NewErrorResponse("invalid request format"))
		return
	}

	s.logger.Debug().
		Str("type", string(req.Type)).
		Str("origin", req.Origin).
		Msg("Received IPC request")

	s.sendResponse(conn, s.handleRequest(req))
}

func (s *Server) handleRequest(req *Request) *Response {
	var err error
	switch req.Type {
	case MsgPing:
		return NewPongResponse()
	case MsgGetStatus:
		return NewStatusResponse(s.handler.GetStatus())
	case MsgShow:
		err = s.handler.Show()
	case MsgOpenSettings:
		err = s.handler.OpenSettings()
	case MsgStartRest:
		err = s.handler.StartRest()
	case MsgReload:
		err = s.handler.ReloadSettings()
	case MsgQuit:
		err = s.handler.Quit()
	default:
		return NewErrorResponse(fmt.Sprintf("unknown message type: %s", req.Type))
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return NewOKResponse()
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) {
	data, err := resp.Encode()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode IPC response")
		return
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send IPC response")
	}
}

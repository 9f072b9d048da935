// Package echopeer is a minimal TCP peer for exercising a resocket client over
// loopback. It accepts connections, hands each to a Handler, and can drop all
// of them at once to simulate a peer going away.
package echopeer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Logger matches resocket.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Handler serves one accepted connection. The connection is closed by the
// server once Handle returns.
type Handler interface {
	Handle(conn *net.TCPConn)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(conn *net.TCPConn)

// Handle calls f(conn).
func (f HandlerFunc) Handle(conn *net.TCPConn) {
	f(conn)
}

// Echo writes every received byte back until the peer closes.
var Echo Handler = HandlerFunc(func(conn *net.TCPConn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
})

// Server listens on a TCP address and dispatches connections to a Handler.
type Server struct {
	listener *net.TCPListener
	logger   Logger

	mu       sync.Mutex
	shutdown bool
	conns    map[*net.TCPConn]struct{}
	accepted int
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// LoggerOption sets the logger for the server.
func LoggerOption(logger Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server bound to addr. Port 0 picks a free port.
func New(addr string, opts ...Option) (*Server, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	listener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		logger:   slog.Default(),
		conns:    make(map[*net.TCPConn]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Serve accepts connections until the context is canceled or Close is called.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	s.logger.Info("peer started", "addr", s.listener.Addr())

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		// Unblock Accept.
		_ = s.listener.SetDeadline(time.Now())
	}()

	for {
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			s.mu.Lock()
			isShutdown := s.shutdown
			s.mu.Unlock()

			if isShutdown {
				s.logger.Info("peer stopped", "addr", s.listener.Addr())
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.logger.Error("accept error", "error", err)
			return err
		}

		s.logger.Debug("accepted connection", "remote_addr", conn.RemoteAddr())
		_ = conn.SetNoDelay(true)

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			handler.Handle(conn)
		}()
	}
}

func (s *Server) track(conn *net.TCPConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
	s.accepted++
}

func (s *Server) untrack(conn *net.TCPConn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// CloseConns closes every live connection with an orderly FIN while the
// server keeps accepting new ones.
func (s *Server) CloseConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
		n++
	}
	return n
}

// Accepted returns how many connections have been accepted so far.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Close stops accepting and drops every live connection.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	err := s.listener.Close()
	s.CloseConns()
	return err
}

// Wait blocks until every handler has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Addr returns the listener's network address.
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

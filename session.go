package resocket

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrPeerClosed is the cause recorded when the liveness monitor finds that the
// peer closed the connection.
var ErrPeerClosed = errors.New("peer closed connection")

// errClosedByClient is the cause recorded by an explicit Disconnect.
var errClosedByClient = errors.New("closed by client")

// session is one established connection. It owns the socket and the message
// accumulator, and runs the receiver and the liveness monitor until either
// fails or the session is closed.
type session struct {
	rawConn  *net.TCPConn
	name     string
	listener Listener
	logger   Logger
	opts     *options

	framer  *framer
	writeMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelCauseFunc
	closeOnce sync.Once
}

func newSession(conn *net.TCPConn, name string, listener Listener, opts *options) *session {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &session{
		rawConn:  conn,
		name:     name,
		listener: listener,
		logger:   opts.logger,
		opts:     opts,
		framer:   newFramer(opts.delimiter, opts.maxMessageSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// run starts the receiver and the liveness monitor and blocks until both have
// returned. The returned error is the cause of the teardown.
func (s *session) run() error {
	group, child := errgroup.WithContext(s.ctx)

	group.Go(func() error {
		return s.readLoop(child)
	})

	group.Go(func() error {
		return s.monitorLoop(child)
	})

	// A blocked Read only returns once the socket is closed.
	go func() {
		<-child.Done()
		s.closeConn()
	}()

	err := group.Wait()
	s.cancel(err)
	s.closeConn()

	return context.Cause(s.ctx)
}

// fail records err as the teardown cause and stops the session.
// Only the first cause is kept.
func (s *session) fail(err error) {
	s.cancel(err)
}

// close stops the session on behalf of the client.
func (s *session) close() {
	s.cancel(errClosedByClient)
	s.closeConn()
}

// closeConn shuts the socket down. Safe to call from any goroutine, any
// number of times.
func (s *session) closeConn() {
	s.closeOnce.Do(func() {
		_ = s.rawConn.CloseWrite()
		_ = s.rawConn.Close()
	})
}

// write performs a synchronous send bounded by the write timeout.
func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ctx.Err(); err != nil {
		return ErrConnectionClosed
	}

	_ = s.rawConn.SetWriteDeadline(time.Now().Add(s.opts.writeTimeout))
	_, err := s.rawConn.Write(data)
	if err != nil {
		s.logger.Debug("write error", "name", s.name, "error", err)
		s.opts.onError(err)
		s.fail(err)
	}
	return err
}

// readLoop keeps exactly one read outstanding, reassembles messages and
// dispatches each one to the listener.
func (s *session) readLoop(ctx context.Context) error {
	buf := make([]byte, s.opts.readBufferSize)
	for {
		n, err := s.rawConn.Read(buf)
		if n > 0 {
			messages, ferr := s.framer.feed(buf[:n])
			for _, msg := range messages {
				s.dispatch(msg)
			}
			if ferr != nil {
				s.logger.Debug("framing error", "name", s.name,
					"pending", s.framer.pending(), "error", ferr)
				s.opts.onError(ferr)
				return ferr
			}
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				s.logger.Debug("peer closed connection", "name", s.name)
				return ErrPeerClosed
			}
			s.logger.Debug("read error", "name", s.name, "error", err)
			s.opts.onError(err)
			return err
		}
	}
}

func (s *session) dispatch(msg []byte) {
	text := string(msg)
	s.listener.OnBytesReceived(msg)
	s.listener.OnTextReceived(text)
}

// monitorLoop probes the socket every poll interval and returns ErrPeerClosed
// once the peer is gone.
func (s *session) monitorLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			alive, err := probe(s.rawConn)
			if alive {
				if err != nil {
					s.logger.Debug("liveness probe error", "name", s.name, "error", err)
				}
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				s.logger.Debug("liveness probe failed", "name", s.name, "error", err)
				s.opts.onError(err)
				return err
			}
			s.logger.Debug("liveness probe found peer closed", "name", s.name)
			return ErrPeerClosed
		}
	}
}

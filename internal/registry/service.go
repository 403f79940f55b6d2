package registry

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/protocol"
)

// Service answers REGISTER, DEREGISTER, and LOOKUP requests over a single
// datagram socket. One request is read, fully processed, and answered before
// the next is read; the Store is only ever touched by this loop and by Stop.
type Service struct {
	cfg    config.DiscoveryConfig
	store  *Store
	logger *zap.Logger

	mu      sync.Mutex
	conn    net.PacketConn
	running bool
	quit    chan struct{}
	ready   chan struct{}
}

// NewService creates a discovery service bound to the configured address
// when started.
//
// Precondition: store and logger must be non-nil.
func NewService(cfg config.DiscoveryConfig, store *Store, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		logger: logger,
		quit:   make(chan struct{}),
		ready:  make(chan struct{}),
	}
}

// Start binds the datagram socket and serves requests until Stop is called.
// This method blocks until the service is stopped.
//
// Precondition: The service must not already be running.
// Postcondition: The socket is closed when this method returns.
func (s *Service) Start() error {
	start := time.Now()

	conn, err := net.ListenPacket("udp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("binding discovery socket on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("discovery service listening",
		zap.String("addr", conn.LocalAddr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	buf := make([]byte, protocol.MaxDatagram)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				s.logger.Error("reading datagram", zap.Error(err))
				continue
			}
		}

		reply, respond := s.handle(string(buf[:n]), from)
		if !respond {
			continue
		}
		if _, err := conn.WriteTo([]byte(reply), from); err != nil {
			s.logger.Warn("writing reply",
				zap.String("to", from.String()),
				zap.Error(err),
			)
		}
	}
}

// Stop shuts down the receive loop and closes the socket.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.quit)
	if s.conn != nil {
		s.conn.Close()
	}
}

// Ready returns a channel closed once the socket is bound.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// LocalAddr returns the bound socket address, or nil before Start.
func (s *Service) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// handle processes one request and reports whether to answer it. Unknown
// verbs are dropped without a reply; callers treat the silence as a timeout.
func (s *Service) handle(msg string, from net.Addr) (string, bool) {
	req, err := protocol.ParseRegistryRequest(msg)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownVerb) {
			s.logger.Debug("ignoring unknown verb",
				zap.String("from", from.String()),
				zap.String("message", msg),
			)
			return "", false
		}
		s.logger.Warn("malformed request",
			zap.String("from", from.String()),
			zap.String("message", msg),
		)
		return protocol.Fail().EncodeRegistry(), true
	}

	switch req.Verb {
	case protocol.VerbRegister:
		addr, err := protocol.ParseAddress(req.Address)
		if err != nil {
			s.logger.Warn("register with unparseable address",
				zap.String("name", req.Name),
				zap.String("address", req.Address),
				zap.Error(err),
			)
			return protocol.Fail().EncodeRegistry(), true
		}
		replaced := s.store.Register(req.Name, addr)
		s.logger.Info("registered server",
			zap.String("name", req.Name),
			zap.String("address", addr.String()),
			zap.Bool("replaced", replaced),
			zap.Int("entries", s.store.Count()),
		)
		return protocol.Succeed("").EncodeRegistry(), true

	case protocol.VerbDeregister:
		if !s.store.Deregister(req.Name) {
			return protocol.Fail().EncodeRegistry(), true
		}
		s.logger.Info("deregistered server",
			zap.String("name", req.Name),
			zap.Int("entries", s.store.Count()),
		)
		return protocol.Succeed("").EncodeRegistry(), true

	case protocol.VerbLookup:
		addr, ok := s.store.Lookup(req.Name)
		if !ok {
			s.logger.Debug("lookup miss", zap.String("name", req.Name))
			return protocol.Fail().EncodeRegistry(), true
		}
		return protocol.Succeed(addr.String()).EncodeRegistry(), true
	}

	return "", false
}

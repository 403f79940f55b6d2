package room

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/discovery"
	"github.com/roomnet/roomnet/internal/protocol"
)

// Server owns one room's state and serves all player interaction for it
// over a datagram socket. One command is read, fully processed (including
// broadcasts), and answered before the next is read.
//
// At startup the server binds an ephemeral port, resolves each configured
// neighbor name through discovery, and registers its own name. The neighbor
// table is fixed for the life of the process: a neighbor that is absent or
// unresolvable at startup is a permanently closed exit.
type Server struct {
	cfg           config.RoomConfig
	state         *State
	neighborNames map[Direction]string
	disc          *discovery.Client
	logger        *zap.Logger

	mu         sync.Mutex
	conn       net.PacketConn
	advertised protocol.Address
	neighbors  map[Direction]protocol.Address
	running    bool
	quit       chan struct{}
	ready      chan struct{}
}

// NewServer creates a room server for the given definition.
//
// Precondition: def must be validated; disc and logger must be non-nil.
func NewServer(cfg config.RoomConfig, def Definition, disc *discovery.Client, logger *zap.Logger) *Server {
	names := make(map[Direction]string, len(def.Neighbors))
	for dir, name := range def.Neighbors {
		names[dir] = name
	}
	return &Server{
		cfg:           cfg,
		state:         NewState(def.Name, def.Description, def.Items),
		neighborNames: names,
		disc:          disc,
		logger:        logger.With(zap.String("room", def.Name)),
		neighbors:     make(map[Direction]protocol.Address),
		quit:          make(chan struct{}),
		ready:         make(chan struct{}),
	}
}

// State exposes the room state, for inspection in tests and tooling.
func (s *Server) State() *State { return s.state }

// Start binds the socket, resolves neighbors, registers with discovery, and
// serves commands until Stop is called. Registration failure is fatal: the
// server deregisters best-effort and returns the error.
//
// Precondition: The server must not already be running.
// Postcondition: The socket is closed when this method returns.
func (s *Server) Start() error {
	start := time.Now()

	conn, err := net.ListenPacket("udp", net.JoinHostPort(s.cfg.Host, "0"))
	if err != nil {
		return fmt.Errorf("binding room socket: %w", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	advertised := protocol.Address{Scheme: protocol.DefaultScheme, Host: s.cfg.Host, Port: port}

	s.mu.Lock()
	s.conn = conn
	s.advertised = advertised
	s.mu.Unlock()

	s.logger.Info("room socket bound", zap.String("address", advertised.String()))

	s.resolveNeighbors()

	if err := s.disc.Register(advertised, s.state.Name()); err != nil {
		// Deregistration here is idempotent cleanup for a half-applied
		// registration; its own failure is irrelevant.
		_ = s.disc.Deregister(s.state.Name())
		conn.Close()
		return fmt.Errorf("registering room %q: %w", s.state.Name(), err)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("room server ready",
		zap.String("address", advertised.String()),
		zap.Int("open_exits", len(s.neighbors)),
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

// Stop deregisters the room, notifies every connected player, and closes
// the socket. There is no drain period: clients may be mid-command.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.quit)
	conn := s.conn
	s.mu.Unlock()

	if err := s.disc.Deregister(s.state.Name()); err != nil {
		s.logger.Warn("deregistering on shutdown", zap.Error(err))
	}

	for _, m := range s.state.Members() {
		if _, err := conn.WriteTo([]byte(protocol.CmdExit), net.UDPAddrFromAddrPort(m.Endpoint)); err != nil {
			s.logger.Warn("sending shutdown notice",
				zap.String("player", m.Name),
				zap.String("endpoint", m.Endpoint.String()),
				zap.Error(err),
			)
		}
	}

	conn.Close()
}

// Ready returns a channel closed once the server is registered and serving.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the advertised room address, valid after Ready.
func (s *Server) Addr() protocol.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advertised
}

// Neighbor returns the resolved address for a direction, if that exit is
// open.
func (s *Server) Neighbor(dir Direction) (protocol.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.neighbors[dir]
	return addr, ok
}

// resolveNeighbors looks up each configured neighbor name exactly once. A
// failed lookup closes the exit for the lifetime of the process.
func (s *Server) resolveNeighbors() {
	for _, dir := range Directions {
		name, configured := s.neighborNames[dir]
		if !configured {
			continue
		}
		addr, err := s.disc.Lookup(name)
		if err != nil {
			s.logger.Warn("neighbor unresolved, exit closed",
				zap.String("direction", string(dir)),
				zap.String("neighbor", name),
				zap.Error(err),
			)
			continue
		}
		s.mu.Lock()
		s.neighbors[dir] = addr
		s.mu.Unlock()
		s.logger.Info("neighbor resolved",
			zap.String("direction", string(dir)),
			zap.String("neighbor", name),
			zap.String("address", addr.String()),
		)
	}
}

// handle processes one command datagram and reports whether to answer it.
func (s *Server) handle(msg string, from net.Addr) (string, bool) {
	udpAddr, ok := from.(*net.UDPAddr)
	if !ok {
		s.logger.Warn("non-UDP sender", zap.String("from", from.String()))
		return "", false
	}
	ep := udpAddr.AddrPort()
	// Normalize v4-in-v6 addresses so the roster key is stable per client.
	ep = netip.AddrPortFrom(ep.Addr().Unmap(), ep.Port())

	cmd := protocol.ParseCommand(msg)
	switch cmd.Verb {
	case protocol.CmdJoin:
		s.handleJoin(ep, cmd.Arg)
		return "", false
	case protocol.CmdLook:
		return s.lookView(ep), true
	case protocol.CmdSay:
		s.handleSay(ep, cmd.Arg)
		return "", false
	case protocol.CmdTake:
		return s.handleTake(ep, cmd.Arg).Encode(), true
	case protocol.CmdDrop:
		s.handleDrop(ep, cmd.Arg)
		return "", false
	case protocol.CmdExit:
		s.handleExit(ep)
		return "", false
	}

	if dir, isDir := ParseDirection(cmd.Verb); isDir {
		return s.handleMove(ep, dir).Encode(), true
	}

	s.logger.Debug("ignoring unknown command",
		zap.String("endpoint", ep.String()),
		zap.String("message", msg),
	)
	return "", false
}

func (s *Server) handleJoin(ep netip.AddrPort, name string) {
	if name == "" {
		s.logger.Warn("join without a name", zap.String("endpoint", ep.String()))
		return
	}
	m := s.state.Join(ep, name)
	s.logger.Info("player joined",
		zap.String("player", m.Name),
		zap.String("endpoint", ep.String()),
		zap.String("session_id", m.SessionID.String()),
		zap.Int("roster", s.state.RosterSize()),
	)
	s.broadcast(fmt.Sprintf("%s entered the room.", m.Name), ep)
}

func (s *Server) handleSay(ep netip.AddrPort, text string) {
	if text == "" {
		s.logger.Debug("say with no text", zap.String("endpoint", ep.String()))
		return
	}
	m, known := s.state.Member(ep)
	if !known {
		s.logger.Info("say from unknown endpoint, ignored",
			zap.String("endpoint", ep.String()),
		)
		return
	}
	// The sender gets no echo; the client prints its own line locally.
	s.broadcast(fmt.Sprintf("%s said \"%s\".", m.Name, text), ep)
}

func (s *Server) handleTake(ep netip.AddrPort, item string) protocol.Result {
	if item == "" {
		return protocol.Fail()
	}
	if !s.state.TakeItem(item) {
		return protocol.Fail()
	}
	s.logger.Info("item taken",
		zap.String("item", item),
		zap.String("endpoint", ep.String()),
	)
	return protocol.Succeed("")
}

func (s *Server) handleDrop(ep netip.AddrPort, item string) {
	if item == "" {
		s.logger.Debug("drop with no item", zap.String("endpoint", ep.String()))
		return
	}
	// The client is trusted to have validated possession; drop never fails.
	s.state.AddItem(item)
	s.logger.Info("item dropped",
		zap.String("item", item),
		zap.String("endpoint", ep.String()),
	)
}

func (s *Server) handleMove(ep netip.AddrPort, dir Direction) protocol.Result {
	neighbor, open := s.Neighbor(dir)
	if !open {
		return protocol.Fail()
	}

	if m, known := s.state.Member(ep); known {
		s.broadcast(dir.DepartureNotice(m.Name), ep)
		s.state.Leave(ep)
		s.logger.Info("player moved",
			zap.String("player", m.Name),
			zap.String("direction", string(dir)),
			zap.String("session_id", m.SessionID.String()),
			zap.Int("roster", s.state.RosterSize()),
		)
	} else {
		s.logger.Info("move from unknown endpoint, roster untouched",
			zap.String("endpoint", ep.String()),
			zap.String("direction", string(dir)),
		)
	}

	// The reply is routing, not roster state: unknown senders still get the
	// neighbor's address.
	return protocol.Succeed(neighbor.String())
}

func (s *Server) handleExit(ep netip.AddrPort) {
	m, known := s.state.Leave(ep)
	if !known {
		s.logger.Info("exit from unknown endpoint, ignored",
			zap.String("endpoint", ep.String()),
		)
		return
	}
	s.logger.Info("player left the game",
		zap.String("player", m.Name),
		zap.String("session_id", m.SessionID.String()),
		zap.Int("roster", s.state.RosterSize()),
	)
	s.broadcast(fmt.Sprintf("%s has left the game completely.", m.Name), ep)
}

// lookView renders the full "look" response for one endpoint: description
// and items, the other players present, and the open exits.
func (s *Server) lookView(ep netip.AddrPort) string {
	var b strings.Builder
	b.WriteString(s.state.Describe())

	for _, m := range s.state.Others(ep) {
		b.WriteString("\t")
		b.WriteString(m.Name)
		b.WriteString("\n")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dir := range Directions {
		if _, open := s.neighbors[dir]; open {
			b.WriteString(dir.ExitSentence())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// broadcast sends an individually addressed notification to every roster
// member except the originator. Delivery is at-most-once per recipient; a
// failure for one endpoint does not block the rest.
func (s *Server) broadcast(msg string, except netip.AddrPort) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	for _, m := range s.state.Others(except) {
		if _, err := conn.WriteTo([]byte(msg), net.UDPAddrFromAddrPort(m.Endpoint)); err != nil {
			s.logger.Warn("broadcast delivery failed",
				zap.String("player", m.Name),
				zap.String("endpoint", m.Endpoint.String()),
				zap.Error(err),
			)
		}
	}
}

package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/discovery"
	"github.com/roomnet/roomnet/internal/protocol"
	"github.com/roomnet/roomnet/internal/room"
)

// Session is one player's connection to the world: a single datagram socket
// reused across room handoffs, the current room's address, and the local
// player state. Methods are driven by one command loop; only the reader
// goroutine touches the socket concurrently.
type Session struct {
	player *Player
	disc   *discovery.Client
	logger *zap.Logger
	out    io.Writer

	mu   sync.Mutex
	conn *net.UDPConn
	dest *net.UDPAddr

	incoming  chan string
	closed    chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session for the given player.
//
// Precondition: player, disc, out, and logger must be non-nil.
func NewSession(player *Player, disc *discovery.Client, out io.Writer, logger *zap.Logger) *Session {
	return &Session{
		player:   player,
		disc:     disc,
		logger:   logger,
		out:      out,
		incoming: make(chan string, 16),
		closed:   make(chan struct{}),
	}
}

// Connect resolves a room by name through discovery, binds the session
// socket if needed, and joins the room.
//
// Postcondition: On success the session is joined and broadcast messages
// flow into the session.
func (s *Session) Connect(roomName string) error {
	addr, err := s.disc.Lookup(roomName)
	if err != nil {
		return fmt.Errorf("resolving room %q: %w", roomName, err)
	}

	s.mu.Lock()
	if s.conn == nil {
		conn, err := net.ListenUDP("udp", nil)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("binding client socket: %w", err)
		}
		s.conn = conn
		go s.reader(conn)
	}
	s.mu.Unlock()

	return s.enterRoom(addr)
}

// enterRoom points the session at a room address and joins it. It is the
// handoff path: movement replies carry the address, so discovery is not
// consulted again.
func (s *Session) enterRoom(addr protocol.Address) error {
	dest, err := net.ResolveUDPAddr("udp", addr.HostPort())
	if err != nil {
		return fmt.Errorf("resolving room address %s: %w", addr.String(), err)
	}

	s.mu.Lock()
	s.dest = dest
	s.mu.Unlock()

	s.logger.Info("joining room", zap.String("address", addr.String()))
	return s.send(protocol.FormatJoin(s.player.Name()))
}

// Close tears down the session after notifying the room: exit, drop every
// held item back into the room, then close the socket.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)

		if err := s.send(protocol.FormatExit(s.player.Name())); err != nil {
			s.logger.Warn("sending exit", zap.Error(err))
		}
		for _, item := range s.player.Items() {
			if err := s.send(protocol.CmdDrop+" "+item); err != nil {
				s.logger.Warn("dropping item on exit", zap.String("item", item), zap.Error(err))
			}
		}

		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	})
}

// Run reads command lines until EOF, the exit command, or a room shutdown
// notice. Unsolicited datagrams (chat, roster notices) are printed as they
// arrive between commands.
func (s *Session) Run(in io.Reader) error {
	// A fresh join owes the room a look for the initial view.
	s.handleLine(protocol.CmdLook)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-s.closed:
				return
			}
		}
	}()

	for {
		select {
		case msg := <-s.incoming:
			if s.printIncoming(msg) {
				s.Close()
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				s.Close()
				return nil
			}
			if s.handleLine(line) {
				s.Close()
				return nil
			}
		case <-s.closed:
			return nil
		}
	}
}

// handleLine executes one command line and reports whether to quit.
func (s *Session) handleLine(line string) bool {
	cmd := protocol.ParseCommand(line)
	switch cmd.Verb {
	case "":
		return false

	case "inventory":
		s.print(s.player.DescribeInventory())
		return false

	case protocol.CmdSay:
		if cmd.Arg == "" {
			s.print("What did you want to say?")
			return false
		}
		s.print(fmt.Sprintf("You said \"%s\".", cmd.Arg))
		s.sendOrWarn(line)
		return false

	case protocol.CmdLook:
		s.sendOrWarn(protocol.CmdLook)
		s.print(s.await(func(string) bool { return true }))
		return false

	case protocol.CmdTake:
		if cmd.Arg == "" {
			s.print("Take what?")
			return false
		}
		s.sendOrWarn(line)
		if s.await(isStatus) == protocol.StatusSuccess {
			s.player.AddItem(cmd.Arg)
			s.print(cmd.Arg + " taken.")
		} else {
			s.print("Error: item not in room.")
		}
		return false

	case protocol.CmdDrop:
		if cmd.Arg == "" {
			s.print("Drop what?")
			return false
		}
		if !s.player.RemoveItem(cmd.Arg) {
			s.print("You are not holding " + cmd.Arg + ".")
			return false
		}
		s.sendOrWarn(line)
		return false

	case protocol.CmdExit:
		return true
	}

	if _, isDir := room.ParseDirection(cmd.Verb); isDir {
		s.move(cmd.Verb)
		return false
	}

	s.print("Unknown command.")
	return false
}

// move sends a direction command and, on success, hands the session off to
// the neighboring room.
func (s *Session) move(dir string) {
	s.sendOrWarn(dir)
	reply := s.await(isMoveReply)
	if reply == protocol.StatusFailure {
		s.print("You cannot go that way.")
		return
	}

	addr, err := protocol.ParseAddress(reply)
	if err != nil {
		s.logger.Warn("unparseable movement reply", zap.String("reply", reply), zap.Error(err))
		return
	}
	if err := s.enterRoom(addr); err != nil {
		s.logger.Error("entering room", zap.Error(err))
		return
	}
	s.sendOrWarn(protocol.CmdLook)
	s.print(s.await(func(string) bool { return true }))
}

// await consumes incoming datagrams until one matches, printing everything
// else (broadcasts can interleave with a pending reply).
func (s *Session) await(match func(string) bool) string {
	for {
		select {
		case msg := <-s.incoming:
			if match(msg) {
				return msg
			}
			if s.printIncoming(msg) {
				return protocol.StatusFailure
			}
		case <-s.closed:
			return protocol.StatusFailure
		}
	}
}

func isStatus(msg string) bool {
	return msg == protocol.StatusSuccess || msg == protocol.StatusFailure
}

func isMoveReply(msg string) bool {
	if msg == protocol.StatusFailure {
		return true
	}
	_, err := protocol.ParseAddress(msg)
	return err == nil
}

// printIncoming renders an unsolicited datagram and reports whether it was
// a room shutdown notice.
func (s *Session) printIncoming(msg string) bool {
	if msg == protocol.CmdExit {
		s.print("The room has shut down. Goodbye.")
		return true
	}
	s.print(msg)
	return false
}

func (s *Session) print(msg string) {
	fmt.Fprintln(s.out, strings.TrimRight(msg, "\n"))
}

func (s *Session) send(msg string) error {
	s.mu.Lock()
	conn, dest := s.conn, s.dest
	s.mu.Unlock()
	if conn == nil || dest == nil {
		return fmt.Errorf("session is not connected")
	}
	if _, err := conn.WriteToUDP([]byte(msg), dest); err != nil {
		return fmt.Errorf("sending %q: %w", msg, err)
	}
	return nil
}

func (s *Session) sendOrWarn(msg string) {
	if err := s.send(msg); err != nil {
		s.logger.Warn("send failed", zap.Error(err))
	}
}

// reader pumps datagrams from the socket into the session. It exits when
// the socket is closed.
func (s *Session) reader(conn *net.UDPConn) {
	buf := make([]byte, protocol.MaxDatagram)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		select {
		case s.incoming <- string(buf[:n]):
		case <-s.closed:
			return
		}
	}
}

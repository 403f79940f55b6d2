// Package discovery provides the datagram client side of the discovery
// registry: LOOKUP, REGISTER, and DEREGISTER requests.
package discovery

import (
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/protocol"
)

// ErrNotFound is returned when the registry answers NOTOK for a name.
var ErrNotFound = errors.New("name not registered")

// ErrRejected is returned when the registry refuses a mutation.
var ErrRejected = errors.New("request rejected by registry")

// Client issues requests to the discovery service. Each request is one
// datagram exchange; the read blocks until the registry answers. There is no
// timeout and no retry: a lost datagram or an unreachable registry blocks
// the caller, matching the startup contract of the room servers.
type Client struct {
	addr   string
	logger *zap.Logger
}

// NewClient creates a discovery client targeting the configured registry.
//
// Precondition: logger must be non-nil.
func NewClient(cfg config.DiscoveryConfig, logger *zap.Logger) *Client {
	return &Client{addr: cfg.Addr(), logger: logger}
}

// Lookup resolves a symbolic server name to its registered address.
//
// Postcondition: Returns the address, or ErrNotFound if the name is absent.
func (c *Client) Lookup(name string) (protocol.Address, error) {
	reply, err := c.roundTrip(protocol.FormatLookup(name))
	if err != nil {
		return protocol.Address{}, err
	}
	if reply == protocol.StatusNotOK {
		return protocol.Address{}, fmt.Errorf("lookup %q: %w", name, ErrNotFound)
	}
	addr, err := protocol.ParseAddress(reply)
	if err != nil {
		return protocol.Address{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	return addr, nil
}

// Register maps a name to an address in the registry. Re-registering an
// existing name overwrites it.
//
// Postcondition: Returns nil on OK, ErrRejected on NOTOK.
func (c *Client) Register(addr protocol.Address, name string) error {
	reply, err := c.roundTrip(protocol.FormatRegister(addr, name))
	if err != nil {
		return err
	}
	if reply != protocol.StatusOK {
		return fmt.Errorf("register %q as %s: %w", name, addr.String(), ErrRejected)
	}
	c.logger.Debug("registered with discovery",
		zap.String("name", name),
		zap.String("address", addr.String()),
	)
	return nil
}

// Deregister removes a name from the registry.
//
// Postcondition: Returns nil on OK, ErrNotFound if the name was absent.
func (c *Client) Deregister(name string) error {
	reply, err := c.roundTrip(protocol.FormatDeregister(name))
	if err != nil {
		return err
	}
	if reply != protocol.StatusOK {
		return fmt.Errorf("deregister %q: %w", name, ErrNotFound)
	}
	c.logger.Debug("deregistered from discovery", zap.String("name", name))
	return nil
}

// roundTrip sends one request datagram and blocks for the single reply.
func (c *Client) roundTrip(msg string) (string, error) {
	conn, err := net.Dial("udp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dialing discovery at %s: %w", c.addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(msg)); err != nil {
		return "", fmt.Errorf("sending to discovery: %w", err)
	}

	buf := make([]byte, protocol.MaxDatagram)
	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("reading discovery reply: %w", err)
	}
	return string(buf[:n]), nil
}

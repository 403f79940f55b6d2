// Package protocol defines the text-datagram wire format shared by the
// discovery service, room servers, and player clients: request verbs,
// response sentinels, the address string format, and command parsing.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDatagram is the largest payload read from or written to a single
// datagram. Messages are UTF-8 text, one message per datagram.
const MaxDatagram = 2048

// Discovery request verbs.
const (
	VerbRegister   = "REGISTER"
	VerbDeregister = "DEREGISTER"
	VerbLookup     = "LOOKUP"
)

// Wire sentinels. The discovery service answers OK/NOTOK; room servers
// answer SUCCESS/FAILURE for commands that carry a status.
const (
	StatusOK      = "OK"
	StatusNotOK   = "NOTOK"
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Room command verbs. Direction verbs (north, east, ...) are resolved by the
// room package; everything else is one of these.
const (
	CmdJoin = "new_connection"
	CmdExit = "exit"
	CmdLook = "look"
	CmdSay  = "say"
	CmdTake = "take"
	CmdDrop = "drop"
)

// DefaultScheme is the scheme label stamped on room addresses. The scheme
// carries no behavior; it survives parse/format round trips unchanged.
const DefaultScheme = "room"

// Parse errors for discovery requests. A malformed known verb is answered
// with NOTOK; an unknown verb gets no answer at all.
var (
	ErrMalformed   = errors.New("malformed request")
	ErrUnknownVerb = errors.New("unknown verb")
)

// Address is a resolved server location in <scheme>://<host>:<port> form.
type Address struct {
	Scheme string
	Host   string
	Port   int
}

// ParseAddress parses an address string of the form scheme://host:port.
//
// Postcondition: Returns a populated Address or a non-nil error.
func ParseAddress(s string) (Address, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return Address{}, fmt.Errorf("address %q: missing scheme", s)
	}
	host, portStr, ok := strings.Cut(rest, ":")
	if !ok || host == "" {
		return Address{}, fmt.Errorf("address %q: missing host or port", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Address{}, fmt.Errorf("address %q: invalid port %q", s, portStr)
	}
	return Address{Scheme: scheme, Host: host, Port: port}, nil
}

// String formats the address as scheme://host:port.
func (a Address) String() string {
	return fmt.Sprintf("%s://%s:%d", a.Scheme, a.Host, a.Port)
}

// HostPort returns the host:port form used for dialing.
func (a Address) HostPort() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Result is the outcome of a protocol operation: tagged success or failure,
// optionally carrying a payload. It is encoded to wire sentinels only at the
// datagram edge.
type Result struct {
	ok      bool
	payload string
}

// Succeed returns a successful Result. A non-empty payload replaces the
// success sentinel on the wire (e.g. a LOOKUP answer or a neighbor address).
func Succeed(payload string) Result {
	return Result{ok: true, payload: payload}
}

// Fail returns a failed Result.
func Fail() Result {
	return Result{}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.ok }

// Payload returns the carried payload, empty for failures.
func (r Result) Payload() string { return r.payload }

// Encode renders the result for the room wire: the payload if present,
// otherwise SUCCESS or FAILURE.
func (r Result) Encode() string {
	if r.ok {
		if r.payload != "" {
			return r.payload
		}
		return StatusSuccess
	}
	return StatusFailure
}

// EncodeRegistry renders the result for the discovery wire: the payload if
// present, otherwise OK or NOTOK.
func (r Result) EncodeRegistry() string {
	if r.ok {
		if r.payload != "" {
			return r.payload
		}
		return StatusOK
	}
	return StatusNotOK
}

// RegistryRequest is a parsed discovery-service request.
type RegistryRequest struct {
	Verb    string
	Address string // populated for REGISTER
	Name    string
}

// ParseRegistryRequest parses a space-separated discovery request line.
//
// Postcondition: Returns the request, or ErrMalformed for a known verb with
// missing fields, or ErrUnknownVerb for anything else.
func ParseRegistryRequest(line string) (RegistryRequest, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return RegistryRequest{}, ErrUnknownVerb
	}
	switch tokens[0] {
	case VerbRegister:
		if len(tokens) < 3 {
			return RegistryRequest{}, fmt.Errorf("%s: %w", VerbRegister, ErrMalformed)
		}
		return RegistryRequest{Verb: VerbRegister, Address: tokens[1], Name: tokens[2]}, nil
	case VerbDeregister:
		if len(tokens) < 2 {
			return RegistryRequest{}, fmt.Errorf("%s: %w", VerbDeregister, ErrMalformed)
		}
		return RegistryRequest{Verb: VerbDeregister, Name: tokens[1]}, nil
	case VerbLookup:
		if len(tokens) < 2 {
			return RegistryRequest{}, fmt.Errorf("%s: %w", VerbLookup, ErrMalformed)
		}
		return RegistryRequest{Verb: VerbLookup, Name: tokens[1]}, nil
	default:
		return RegistryRequest{}, fmt.Errorf("%q: %w", tokens[0], ErrUnknownVerb)
	}
}

// FormatRegister builds a REGISTER request line.
func FormatRegister(addr Address, name string) string {
	return fmt.Sprintf("%s %s %s", VerbRegister, addr.String(), name)
}

// FormatDeregister builds a DEREGISTER request line.
func FormatDeregister(name string) string {
	return fmt.Sprintf("%s %s", VerbDeregister, name)
}

// FormatLookup builds a LOOKUP request line.
func FormatLookup(name string) string {
	return fmt.Sprintf("%s %s", VerbLookup, name)
}

// Command is a parsed room-server command.
type Command struct {
	// Verb is the command word, lowercased.
	Verb string
	// Arg is the remaining text: the display name for join/exit, the item
	// for take/drop, the spoken text for say (spacing preserved).
	Arg string
}

// ParseCommand parses one room datagram into a Command. Join and exit use
// the comma form (new_connection,<name> / exit,<name>); all other commands
// are space-separated with the first word as the verb.
//
// Postcondition: Returns a Command; empty input yields an empty Verb.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}
	}

	if head, rest, ok := strings.Cut(line, ","); ok {
		verb := strings.ToLower(strings.TrimSpace(head))
		if verb == CmdJoin || verb == CmdExit {
			return Command{Verb: verb, Arg: strings.TrimSpace(rest)}
		}
	}

	head, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Command{Verb: strings.ToLower(line)}
	}
	return Command{Verb: strings.ToLower(head), Arg: strings.TrimSpace(rest)}
}

// FormatJoin builds the join command a client sends on arrival.
func FormatJoin(name string) string {
	return CmdJoin + "," + name
}

// FormatExit builds the exit command a client sends when leaving the game.
func FormatExit(name string) string {
	return CmdExit + "," + name
}

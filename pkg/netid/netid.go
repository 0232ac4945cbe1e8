// Package netid validates and normalizes the network identifiers an operator
// types when describing a route: IPv4 prefixes, MAC addresses, switch port
// identifiers and route names.
//
// All validators are pure. A failure is either a FORMAT_ERROR (wrong shape)
// or a RANGE_ERROR (right shape, value out of bounds), both from pkg/errors.
package netid

import (
	"fmt"
	"net"

	"inet.af/netaddr"
)

// Port identifier bounds. A port identifier packs a front-panel port number
// and a breakout channel as port*10 + channel.
const (
	MaxChannel = 3
	MaxPort    = 31
)

// PortID is a validated switch port identifier
type PortID struct {
	ID      int
	Port    int
	Channel int
}

// String renders the packed identifier, the form used in descriptor templates.
func (p PortID) String() string {
	return fmt.Sprintf("%d", p.ID)
}

// Human renders the port as port:channel.
func (p PortID) Human() string {
	return fmt.Sprintf("%d:%d", p.Port, p.Channel)
}

// MAC is a validated MAC address
type MAC struct {
	addr net.HardwareAddr
}

// ZeroMAC is 00:00:00:00:00:00.
var ZeroMAC = MAC{addr: net.HardwareAddr{0, 0, 0, 0, 0, 0}}

// String renders the canonical xx:xx:xx:xx:xx:xx form.
func (m MAC) String() string {
	if m.addr == nil {
		return ""
	}
	return m.addr.String()
}

// IPWithMask is a validated IPv4 address with prefix length
type IPWithMask struct {
	prefix netaddr.IPPrefix
}

// String renders the canonical a.b.c.d/m form.
func (p IPWithMask) String() string {
	if p.prefix.IsZero() {
		return ""
	}
	return p.prefix.String()
}

// Network returns the prefix with host bits cleared, e.g. 10.0.0.0/24 for 10.0.0.5/24.
func (p IPWithMask) Network() string {
	return p.prefix.Masked().String()
}

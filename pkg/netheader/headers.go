// Package netheader ties the per-layer codecs together: the sealed
// IpHeader/TransportHeader sum types, the zero-copy slicer, and the
// owning parser built on top of it.
package netheader

import (
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/tcp"
	"github.com/therealutkarshpriyadarshi/network/pkg/udp"
)

// IpHeader is the sealed set of internet-layer headers this library
// decodes: IPv4 or IPv6, each with its own extension chain. The
// unexported marker method keeps the set closed to this package.
type IpHeader interface {
	isIpHeader()
}

// Ipv4 is the IPv4 variant of IpHeader.
type Ipv4 struct {
	Header     ipv4.Header
	Extensions ipv4.Extensions
}

func (Ipv4) isIpHeader() {}

// Ipv6 is the IPv6 variant of IpHeader.
type Ipv6 struct {
	Header     ipv6.Header
	Extensions ipv6.Extensions
}

func (Ipv6) isIpHeader() {}

// TransportHeader is the sealed set of transport-layer headers this
// library decodes.
type TransportHeader interface {
	isTransportHeader()
}

// Udp is the UDP variant of TransportHeader.
type Udp struct {
	Header udp.Header
}

func (Udp) isTransportHeader() {}

// Tcp is the TCP variant of TransportHeader.
type Tcp struct {
	Header tcp.Header
}

func (Tcp) isTransportHeader() {}

// Icmpv4 is the ICMPv4 variant of TransportHeader.
type Icmpv4 struct {
	Header icmpv4.Header
}

func (Icmpv4) isTransportHeader() {}

// Icmpv6 is the ICMPv6 variant of TransportHeader.
type Icmpv6 struct {
	Header icmpv6.Header
}

func (Icmpv6) isTransportHeader() {}

// UnknownTransport preserves the IP protocol/next-header number for a
// transport this library does not decode further.
type UnknownTransport struct {
	Protocol common.IPNumber
}

func (UnknownTransport) isTransportHeader() {}

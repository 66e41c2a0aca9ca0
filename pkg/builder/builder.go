// Package builder implements the staged packet construction pipeline:
// successive refinement through a chain of distinct Go types, each
// exposing only the methods that are legal at that stage. Go has no
// compile-time enforced state-transition graph the way a sealed trait
// hierarchy would give one, so each stage is modeled as its own
// struct wrapping a shared, mutable configuration, the idiomatic Go
// stand-in for the builder typestate pattern.
package builder

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ethernet"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/netheader"
	"github.com/therealutkarshpriyadarshi/network/pkg/tcp"
	"github.com/therealutkarshpriyadarshi/network/pkg/udp"
)

// config accumulates every layer configured so far. Every stage holds
// a pointer to the same config; stages differ only in which methods
// are exposed.
type config struct {
	link    *ethernet.Ethernet2Header
	vlan    ethernet.VlanHeader
	ip4     *ipv4.Header
	ip4Ext  ipv4.Extensions
	ip6     *ipv6.Header
	ip6Ext  ipv6.Extensions
	udp     *udpConfig
	tcp     *tcpConfig
	icmpv4  *icmpv4Config
	icmpv6  *icmpv6Config
}

type udpConfig struct {
	srcPort, dstPort uint16
}

type tcpConfig struct {
	srcPort, dstPort uint16
	seq              uint32
	ack              uint32
	windowSize       uint16
	urgentPtr        uint16
	flags            tcp.Flags
	options          []tcp.TcpOption
	optionsRaw       []byte
	useOptionsRaw    bool
}

type icmpv4Config struct {
	variant icmpv4.Variant
}

type icmpv6Config struct {
	variant icmpv6.Variant
}

// Builder is the entry point of the pipeline.
type Builder struct{}

// New starts a fresh builder.
func New() Builder {
	return Builder{}
}

// Ethernet2 starts an Ethernet II frame with the given source and
// destination addresses.
func (Builder) Ethernet2(src, dst common.MACAddress) VlanOrIpStage {
	h := ethernet.New(dst, src, 0)
	return VlanOrIpStage{cfg: &config{link: &h}}
}

// Ipv4 starts directly at the internet layer with a plain IPv4 header
// (no link/VLAN layer will be emitted).
func (Builder) Ipv4(src, dst common.IPv4Address, ttl uint8) IpStage {
	h := ipv4.Header{Source: src, Destination: dst, TimeToLive: ttl}
	return IpStage{cfg: &config{ip4: &h}}
}

// Ipv6 starts directly at the internet layer with a plain IPv6 header.
func (Builder) Ipv6(src, dst common.IPv6Address, hopLimit uint8) IpStage {
	h := ipv6.Header{Source: src, Destination: dst, HopLimit: hopLimit}
	return IpStage{cfg: &config{ip6: &h}}
}

// Ipv4Header starts directly at the internet layer with a
// caller-supplied, already-validated IPv4 header.
func (Builder) Ipv4Header(h ipv4.Header) IpStage {
	return IpStage{cfg: &config{ip4: &h}}
}

// Ipv6Header starts directly at the internet layer with a
// caller-supplied, already-validated IPv6 header.
func (Builder) Ipv6Header(h ipv6.Header) IpStage {
	return IpStage{cfg: &config{ip6: &h}}
}

// Ip starts directly at the internet layer with an already-parsed
// IpHeader, skipping the link/VLAN layer. It dispatches on the
// concrete IPv4/IPv6 variant and carries over any extension chain.
func (Builder) Ip(h netheader.IpHeader) IpStage {
	cfg := &config{}
	switch v := h.(type) {
	case netheader.Ipv4:
		header := v.Header
		cfg.ip4, cfg.ip4Ext = &header, v.Extensions
	case netheader.Ipv6:
		header := v.Header
		cfg.ip6, cfg.ip6Ext = &header, v.Extensions
	}
	return IpStage{cfg: cfg}
}

// VlanOrIpStage follows Ethernet2: the caller may insert a VLAN tag
// (single or double) or go straight to the internet layer.
type VlanOrIpStage struct {
	cfg *config
}

// SingleVlan inserts one 802.1Q tag carrying vid.
func (s VlanOrIpStage) SingleVlan(vid uint16) IpStage {
	s.cfg.vlan = ethernet.SingleVlanHeader{VlanIdentifier: vid}
	return IpStage{cfg: s.cfg}
}

// DoubleVlan inserts an outer/inner 802.1ad Q-in-Q tag pair.
func (s VlanOrIpStage) DoubleVlan(outerVid, innerVid uint16) IpStage {
	s.cfg.vlan = ethernet.DoubleVlanHeader{
		Outer: ethernet.SingleVlanHeader{VlanIdentifier: outerVid},
		Inner: ethernet.SingleVlanHeader{VlanIdentifier: innerVid},
	}
	return IpStage{cfg: s.cfg}
}

// Vlan inserts a caller-supplied VLAN header (single or double).
func (s VlanOrIpStage) Vlan(v ethernet.VlanHeader) IpStage {
	s.cfg.vlan = v
	return IpStage{cfg: s.cfg}
}

// Ipv4 continues to the internet layer with a plain IPv4 header.
func (s VlanOrIpStage) Ipv4(src, dst common.IPv4Address, ttl uint8) IpStage {
	h := ipv4.Header{Source: src, Destination: dst, TimeToLive: ttl}
	s.cfg.ip4 = &h
	return IpStage{cfg: s.cfg}
}

// Ipv6 continues to the internet layer with a plain IPv6 header.
func (s VlanOrIpStage) Ipv6(src, dst common.IPv6Address, hopLimit uint8) IpStage {
	h := ipv6.Header{Source: src, Destination: dst, HopLimit: hopLimit}
	s.cfg.ip6 = &h
	return IpStage{cfg: s.cfg}
}

// IpStage follows the internet layer: the caller picks the transport.
type IpStage struct {
	cfg *config
}

// Ipv4Extensions attaches IPv4 extensions (currently only an IPsec
// Authentication Header) to the configured IPv4 header.
func (s IpStage) Ipv4Extensions(ext ipv4.Extensions) IpStage {
	s.cfg.ip4Ext = ext
	return s
}

// Ipv6Extensions attaches the IPv6 extension header chain to the
// configured IPv6 header.
func (s IpStage) Ipv6Extensions(ext ipv6.Extensions) IpStage {
	s.cfg.ip6Ext = ext
	return s
}

// Udp sets a UDP transport layer.
func (s IpStage) Udp(srcPort, dstPort uint16) TransportStage {
	s.cfg.udp = &udpConfig{srcPort: srcPort, dstPort: dstPort}
	return TransportStage{cfg: s.cfg}
}

// Tcp sets a TCP transport layer and returns the stage with its
// additional chainable flag/option setters.
func (s IpStage) Tcp(srcPort, dstPort uint16, seq uint32, windowSize uint16) TcpStage {
	s.cfg.tcp = &tcpConfig{srcPort: srcPort, dstPort: dstPort, seq: seq, windowSize: windowSize}
	return TcpStage{TransportStage{cfg: s.cfg}}
}

// Icmpv4 sets an ICMPv4 transport layer with a caller-built variant.
func (s IpStage) Icmpv4(variant icmpv4.Variant) TransportStage {
	s.cfg.icmpv4 = &icmpv4Config{variant: variant}
	return TransportStage{cfg: s.cfg}
}

// Icmpv4EchoRequest is a convenience wrapper over Icmpv4.
func (s IpStage) Icmpv4EchoRequest(identifier, sequence uint16) TransportStage {
	return s.Icmpv4(icmpv4.VariantEchoRequest{Identifier: identifier, SequenceNumber: sequence})
}

// Icmpv4EchoReply is a convenience wrapper over Icmpv4.
func (s IpStage) Icmpv4EchoReply(identifier, sequence uint16) TransportStage {
	return s.Icmpv4(icmpv4.VariantEchoReply{Identifier: identifier, SequenceNumber: sequence})
}

// Icmpv6 sets an ICMPv6 transport layer with a caller-built variant.
func (s IpStage) Icmpv6(variant icmpv6.Variant) TransportStage {
	s.cfg.icmpv6 = &icmpv6Config{variant: variant}
	return TransportStage{cfg: s.cfg}
}

// TransportStage is the terminal stage: the pipeline's shape is fully
// configured and all that remains is measuring and emitting it.
type TransportStage struct {
	cfg *config
}

// TcpStage is TransportStage specialized for TCP, exposing the
// chainable flag and option setters TCP segments need.
type TcpStage struct {
	TransportStage
}

func (s TcpStage) Ns() TcpStage  { s.cfg.tcp.flags.NS = true; return s }
func (s TcpStage) Fin() TcpStage { s.cfg.tcp.flags.FIN = true; return s }
func (s TcpStage) Syn() TcpStage { s.cfg.tcp.flags.SYN = true; return s }
func (s TcpStage) Rst() TcpStage { s.cfg.tcp.flags.RST = true; return s }
func (s TcpStage) Psh() TcpStage { s.cfg.tcp.flags.PSH = true; return s }
func (s TcpStage) Ece() TcpStage { s.cfg.tcp.flags.ECE = true; return s }
func (s TcpStage) Cwr() TcpStage { s.cfg.tcp.flags.CWR = true; return s }

// Ack sets the ACK flag and the acknowledgment number.
func (s TcpStage) Ack(ackNo uint32) TcpStage {
	s.cfg.tcp.flags.ACK = true
	s.cfg.tcp.ack = ackNo
	return s
}

// Urg sets the URG flag and the urgent pointer.
func (s TcpStage) Urg(ptr uint16) TcpStage {
	s.cfg.tcp.flags.URG = true
	s.cfg.tcp.urgentPtr = ptr
	return s
}

// Options sets typed TCP options, replacing any previously set raw options.
func (s TcpStage) Options(opts []tcp.TcpOption) TcpStage {
	s.cfg.tcp.options = opts
	s.cfg.tcp.useOptionsRaw = false
	return s
}

// OptionsRaw sets pre-encoded TCP option bytes verbatim, replacing any
// previously set typed options. raw must already be padded to a
// 4-byte boundary; Write validates this.
func (s TcpStage) OptionsRaw(raw []byte) TcpStage {
	s.cfg.tcp.optionsRaw = raw
	s.cfg.tcp.useOptionsRaw = true
	return s
}

// optionBytes resolves the configured options to their wire bytes.
func (c *tcpConfig) optionBytes() []byte {
	if c.useOptionsRaw {
		return c.optionsRaw
	}
	return tcp.EncodeOptions(c.options)
}

// transportHeaderLen returns the wire length of the configured
// transport header (fixed part plus options where applicable).
func (cfg *config) transportHeaderLen() int {
	switch {
	case cfg.udp != nil:
		return udp.HeaderLen
	case cfg.tcp != nil:
		return tcp.MinHeaderLen + len(cfg.tcp.optionBytes())
	case cfg.icmpv4 != nil:
		return icmpv4.BaseLen
	case cfg.icmpv6 != nil:
		return icmpv6.BaseLen
	default:
		return 0
	}
}

func (cfg *config) internetHeaderLen() int {
	if cfg.ip4 != nil {
		return cfg.ip4.HeaderLen() + cfg.ip4Ext.HeaderLen()
	}
	if cfg.ip6 != nil {
		return ipv6.HeaderLen + cfg.ip6Ext.HeaderLen()
	}
	return 0
}

func (cfg *config) linkHeaderLen() int {
	total := 0
	if cfg.link != nil {
		total += ethernet.HeaderLen
	}
	switch cfg.vlan.(type) {
	case ethernet.SingleVlanHeader:
		total += ethernet.VlanHeaderLen
	case ethernet.DoubleVlanHeader:
		total += ethernet.VlanHeaderLen * 2
	}
	return total
}

// Size returns the total number of bytes Write would emit for a
// payload of length payloadLen: every configured layer plus the
// payload itself.
func (s TransportStage) Size(payloadLen int) int {
	return s.cfg.linkHeaderLen() + s.cfg.internetHeaderLen() + s.cfg.transportHeaderLen() + payloadLen
}

func protocolFor(cfg *config) (common.IPNumber, error) {
	switch {
	case cfg.udp != nil:
		return common.IPNumberUDP, nil
	case cfg.tcp != nil:
		return common.IPNumberTCP, nil
	case cfg.icmpv4 != nil:
		if cfg.ip6 != nil {
			return 0, neterr.NewValueError(neterr.Icmpv4InIpv6, "icmpv4 cannot be carried over an ipv6 header")
		}
		return common.IPNumberICMP, nil
	case cfg.icmpv6 != nil:
		if cfg.ip4 != nil {
			return 0, neterr.NewValueError(neterr.Icmpv6InIpv4, "icmpv6 cannot be carried over an ipv4 header")
		}
		return common.IPNumberIPv6ICMP, nil
	default:
		return 0, nil
	}
}

// Write measures every layer, overrides the linkage fields (ether
// types, protocol/next-header numbers, lengths), computes checksums
// inner-to-outer, and emits the whole packet to sink in outer-to-inner
// order followed by payload.
func (s TransportStage) Write(sink io.Writer, payload []byte) error {
	cfg := s.cfg

	transportProto, err := protocolFor(cfg)
	if err != nil {
		return neterr.FromValueError(err.(*neterr.ValueError))
	}

	if len(payload) > 0xFFFF {
		return neterr.FromValueError(neterr.NewValueError(neterr.PayloadTooLarge, fmt.Sprintf("payload of %d bytes exceeds 65535", len(payload))))
	}

	// Resolve the first extension/transport identity chained off the
	// ip header, and wire up IPv6 extension next-header fields in order.
	if cfg.ip6 != nil {
		first, chain := chainIpv6NextHeaders(cfg.ip6Ext, transportProto)
		cfg.ip6.NextHeader = first
		cfg.ip6Ext = chain
	}
	if cfg.ip4 != nil {
		if cfg.ip4Ext.Auth != nil {
			cfg.ip4.Protocol = common.IPNumberAH
			cfg.ip4Ext.Auth.NextHeader = uint8(transportProto)
		} else {
			cfg.ip4.Protocol = transportProto
		}
	}

	transportLen := cfg.transportHeaderLen()
	totalTransportAndPayload := transportLen + len(payload)

	if cfg.ip4 != nil {
		total := cfg.ip4.HeaderLen() + cfg.ip4Ext.HeaderLen() + totalTransportAndPayload
		if total > 0xFFFF {
			return neterr.FromValueError(neterr.NewValueError(neterr.Ipv4PayloadLengthTooLarge, fmt.Sprintf("total ipv4 packet length %d exceeds 65535", total)))
		}
		cfg.ip4.TotalLength = uint16(total)
	}
	if cfg.ip6 != nil {
		payloadLength := cfg.ip6Ext.HeaderLen() + totalTransportAndPayload
		if payloadLength > 0xFFFF {
			return neterr.FromValueError(neterr.NewValueError(neterr.Ipv6PayloadLengthTooLarge, fmt.Sprintf("ipv6 payload length %d exceeds 65535", payloadLength)))
		}
		cfg.ip6.PayloadLength = uint16(payloadLength)
	}

	if cfg.link != nil {
		cfg.link.EtherType = s.outerEtherType(transportProto)
	}
	if single, ok := cfg.vlan.(ethernet.SingleVlanHeader); ok {
		single.EtherType = s.innerEtherTypeAfterVlan()
		cfg.vlan = single
	}
	if double, ok := cfg.vlan.(ethernet.DoubleVlanHeader); ok {
		double.Inner.EtherType = s.innerEtherTypeAfterVlan()
		double.Outer.EtherType = common.EtherTypeVlanTaggedFrame
		cfg.vlan = double
	}

	if cfg.udp != nil {
		h, err := udp.New(cfg.udp.srcPort, cfg.udp.dstPort, len(payload))
		if err != nil {
			return neterr.FromValueError(err.(*neterr.ValueError))
		}
		if cfg.ip4 != nil {
			h.Checksum = udp.ChecksumIPv4(h, cfg.ip4.Source, cfg.ip4.Destination, payload)
		} else if cfg.ip6 != nil {
			h.Checksum = udp.ChecksumIPv6(h, cfg.ip6.Source, cfg.ip6.Destination, payload)
			if h.Checksum == 0 {
				h.Checksum = 0xFFFF
			}
		}
		return s.emit(sink, func(w io.Writer) error { return h.Write(w) }, payload)
	}

	if cfg.tcp != nil {
		th := tcp.Header{
			SourcePort:      cfg.tcp.srcPort,
			DestinationPort: cfg.tcp.dstPort,
			SequenceNumber:  cfg.tcp.seq,
			AckNumber:       cfg.tcp.ack,
			Flags:           cfg.tcp.flags,
			WindowSize:      cfg.tcp.windowSize,
			UrgentPointer:   cfg.tcp.urgentPtr,
			Options:         cfg.tcp.optionBytes(),
		}
		if err := th.Validate(); err != nil {
			return neterr.FromValueError(err.(*neterr.ValueError))
		}
		if cfg.ip4 != nil {
			chk, err := tcp.ChecksumIPv4(th, cfg.ip4.Source, cfg.ip4.Destination, payload)
			if err != nil {
				return neterr.FromValueError(err.(*neterr.ValueError))
			}
			th.Checksum = chk
		} else if cfg.ip6 != nil {
			chk, err := tcp.ChecksumIPv6(th, cfg.ip6.Source, cfg.ip6.Destination, payload)
			if err != nil {
				return neterr.FromValueError(err.(*neterr.ValueError))
			}
			th.Checksum = chk
		}
		return s.emit(sink, func(w io.Writer) error { return th.Write(w) }, payload)
	}

	if cfg.icmpv4 != nil {
		h := icmpv4.Header{Variant: cfg.icmpv4.variant}
		h.Checksum = icmpv4.ChecksumOf(h, payload)
		return s.emit(sink, func(w io.Writer) error { return h.Write(w) }, payload)
	}

	if cfg.icmpv6 != nil {
		h := icmpv6.Header{Variant: cfg.icmpv6.variant}
		h.Checksum = icmpv6.ChecksumIPv6(h, cfg.ip6.Source, cfg.ip6.Destination, payload)
		return s.emit(sink, func(w io.Writer) error { return h.Write(w) }, payload)
	}

	return s.emit(sink, func(io.Writer) error { return nil }, payload)
}

func (s TransportStage) outerEtherType(transportProto common.IPNumber) common.EtherType {
	switch s.cfg.vlan.(type) {
	case ethernet.SingleVlanHeader:
		return common.EtherTypeVlanTaggedFrame
	case ethernet.DoubleVlanHeader:
		return common.EtherTypeProviderBridging
	}
	return s.innerEtherTypeAfterVlan()
}

func (s TransportStage) innerEtherTypeAfterVlan() common.EtherType {
	if s.cfg.ip4 != nil {
		return common.EtherTypeIPv4
	}
	if s.cfg.ip6 != nil {
		return common.EtherTypeIPv6
	}
	return 0
}

func (s TransportStage) emit(sink io.Writer, writeTransport func(io.Writer) error, payload []byte) error {
	cfg := s.cfg

	if cfg.link != nil {
		if err := cfg.link.Write(sink); err != nil {
			return err
		}
	}
	switch v := cfg.vlan.(type) {
	case ethernet.SingleVlanHeader:
		if err := v.Write(sink); err != nil {
			return err
		}
	case ethernet.DoubleVlanHeader:
		if err := v.Write(sink); err != nil {
			return err
		}
	}

	if cfg.ip4 != nil {
		if err := cfg.ip4.Write(sink); err != nil {
			return err
		}
		if err := cfg.ip4Ext.Write(sink); err != nil {
			return err
		}
	}
	if cfg.ip6 != nil {
		if err := cfg.ip6.Write(sink); err != nil {
			return err
		}
		extBytes, err := cfg.ip6Ext.ToBytes()
		if err != nil {
			return neterr.FromValueError(err.(*neterr.ValueError))
		}
		if _, err := sink.Write(extBytes); err != nil {
			return neterr.FromSinkError(err)
		}
	}

	if err := writeTransport(sink); err != nil {
		return err
	}

	if len(payload) > 0 {
		if _, err := sink.Write(payload); err != nil {
			return neterr.FromSinkError(err)
		}
	}
	return nil
}

// chainIpv6NextHeaders resolves the next-header value the IPv6 fixed
// header should carry given the configured extension chain, and
// rewrites each configured extension's own next-header field to
// point at the next link (or at transportProto for the last one).
func chainIpv6NextHeaders(e ipv6.Extensions, transportProto common.IPNumber) (common.IPNumber, ipv6.Extensions) {
	type link struct {
		number common.IPNumber
		setNH  func(common.IPNumber)
	}
	var chain []link

	if e.HopByHop != nil {
		chain = append(chain, link{common.IPNumberIPv6HopByHop, func(n common.IPNumber) { e.HopByHop.NextHeader = n }})
	}
	if e.Destination != nil {
		chain = append(chain, link{common.IPNumberIPv6Opts, func(n common.IPNumber) { e.Destination.NextHeader = n }})
	}
	if e.Routing != nil {
		chain = append(chain, link{common.IPNumberIPv6Route, func(n common.IPNumber) { e.Routing.NextHeader = n }})
	}
	if e.Fragment != nil {
		chain = append(chain, link{common.IPNumberIPv6Fragment, func(n common.IPNumber) { e.Fragment.NextHeader = n }})
	}
	if e.Auth != nil {
		chain = append(chain, link{common.IPNumberAH, func(n common.IPNumber) { e.Auth.NextHeader = uint8(n) }})
	}
	if e.FinalDestination != nil {
		chain = append(chain, link{common.IPNumberIPv6Opts, func(n common.IPNumber) { e.FinalDestination.NextHeader = n }})
	}

	if len(chain) == 0 {
		return transportProto, e
	}

	first := chain[0].number
	for i := 0; i < len(chain); i++ {
		if i+1 < len(chain) {
			chain[i].setNH(chain[i+1].number)
		} else {
			chain[i].setNH(transportProto)
		}
	}
	return first, e
}

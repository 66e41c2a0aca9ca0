package netheader

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ethernet"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/tcp"
	"github.com/therealutkarshpriyadarshi/network/pkg/udp"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// LinkSlice is a zero-copy view over a 14-byte Ethernet II header.
type LinkSlice struct {
	Raw []byte
}

// ToHeader decodes the borrowed bytes into an owned header value.
func (s LinkSlice) ToHeader() (ethernet.Ethernet2Header, error) {
	return ethernet.Read(wire.NewCursor(s.Raw))
}

// EtherType re-reads the ether-type field directly from the borrowed bytes.
func (s LinkSlice) EtherType() common.EtherType {
	return common.EtherType(wire.ReadUint16(s.Raw[12:14]))
}

// VlanSlice is a zero-copy view over one or two chained VLAN tags.
type VlanSlice struct {
	Raw    []byte
	Double bool
}

// ToHeader decodes the borrowed bytes into an owned VlanHeader.
func (s VlanSlice) ToHeader() (ethernet.VlanHeader, error) {
	c := wire.NewCursor(s.Raw)
	if s.Double {
		return ethernet.ReadDoubleVlan(c)
	}
	return ethernet.ReadSingleVlan(c)
}

// InternetSlice is the sealed set of zero-copy internet-layer slice views.
type InternetSlice interface {
	isInternetSlice()
}

// Ipv4Slice is a zero-copy view over an IPv4 header and its extensions.
type Ipv4Slice struct {
	HeaderRaw     []byte
	ExtensionsRaw []byte
}

func (Ipv4Slice) isInternetSlice() {}

// ToHeader decodes the borrowed bytes into an owned Ipv4.
func (s Ipv4Slice) ToHeader() (Ipv4, error) {
	h, err := ipv4.Read(wire.NewCursor(s.HeaderRaw))
	if err != nil {
		return Ipv4{}, err
	}
	ext, _, err := ipv4.ReadExtensions(h.Protocol, wire.NewCursor(s.ExtensionsRaw))
	if err != nil {
		return Ipv4{}, err
	}
	return Ipv4{Header: h, Extensions: ext}, nil
}

// Source re-reads the source address directly from the borrowed bytes.
func (s Ipv4Slice) Source() common.IPv4Address {
	var addr common.IPv4Address
	copy(addr[:], s.HeaderRaw[12:16])
	return addr
}

// Destination re-reads the destination address directly from the borrowed bytes.
func (s Ipv4Slice) Destination() common.IPv4Address {
	var addr common.IPv4Address
	copy(addr[:], s.HeaderRaw[16:20])
	return addr
}

// Ipv6Slice is a zero-copy view over an IPv6 header and its extension chain.
type Ipv6Slice struct {
	HeaderRaw     []byte
	ExtensionsRaw []byte
}

func (Ipv6Slice) isInternetSlice() {}

// ToHeader decodes the borrowed bytes into an owned Ipv6.
func (s Ipv6Slice) ToHeader() (Ipv6, error) {
	h, err := ipv6.Read(wire.NewCursor(s.HeaderRaw))
	if err != nil {
		return Ipv6{}, err
	}
	ext, _, err := ipv6.ReadExtensions(h.NextHeader, wire.NewCursor(s.ExtensionsRaw))
	if err != nil {
		return Ipv6{}, err
	}
	return Ipv6{Header: h, Extensions: ext}, nil
}

// Source re-reads the source address directly from the borrowed bytes.
func (s Ipv6Slice) Source() common.IPv6Address {
	var addr common.IPv6Address
	copy(addr[:], s.HeaderRaw[8:24])
	return addr
}

// Destination re-reads the destination address directly from the borrowed bytes.
func (s Ipv6Slice) Destination() common.IPv6Address {
	var addr common.IPv6Address
	copy(addr[:], s.HeaderRaw[24:40])
	return addr
}

// TransportSlice is the sealed set of zero-copy transport-layer slice views.
type TransportSlice interface {
	isTransportSlice()
}

// UdpSlice is a zero-copy view over an 8-byte UDP header.
type UdpSlice struct {
	Raw []byte
}

func (UdpSlice) isTransportSlice() {}

// ToHeader decodes the borrowed bytes into an owned udp.Header.
func (s UdpSlice) ToHeader() (udp.Header, error) {
	return udp.Read(wire.NewCursor(s.Raw))
}

// TcpSlice is a zero-copy view over a TCP header (fixed part + options).
type TcpSlice struct {
	Raw []byte
}

func (TcpSlice) isTransportSlice() {}

// ToHeader decodes the borrowed bytes into an owned tcp.Header.
func (s TcpSlice) ToHeader() (tcp.Header, error) {
	return tcp.Read(wire.NewCursor(s.Raw))
}

// Icmpv4Slice is a zero-copy view over an ICMPv4 message: the 8-byte
// base header plus whatever of the message body (fixed or variable)
// this library carves out.
type Icmpv4Slice struct {
	Raw []byte
}

func (Icmpv4Slice) isTransportSlice() {}

// ToHeader decodes the base header from the borrowed bytes.
func (s Icmpv4Slice) ToHeader() (icmpv4.Header, error) {
	return icmpv4.Read(wire.NewCursor(s.Raw))
}

// Body returns the message body after the 8-byte base header.
func (s Icmpv4Slice) Body() []byte {
	return s.Raw[icmpv4.BaseLen:]
}

// Icmpv6Slice is a zero-copy view over an ICMPv6 message, mirroring Icmpv4Slice.
type Icmpv6Slice struct {
	Raw []byte
}

func (Icmpv6Slice) isTransportSlice() {}

// ToHeader decodes the base header from the borrowed bytes.
func (s Icmpv6Slice) ToHeader() (icmpv6.Header, error) {
	return icmpv6.Read(wire.NewCursor(s.Raw))
}

// Body returns the message body after the 8-byte base header.
func (s Icmpv6Slice) Body() []byte {
	return s.Raw[icmpv6.BaseLen:]
}

// UnknownTransportSlice records the protocol number of a transport
// this library does not decode further; the bytes become the outer
// packet's payload instead.
type UnknownTransportSlice struct {
	Protocol common.IPNumber
}

func (UnknownTransportSlice) isTransportSlice() {}

// SlicedPacket is the result of zero-copy slicing: every present
// layer is a borrow of the input buffer. A layer is nil/zero when
// absent.
type SlicedPacket struct {
	Link      *LinkSlice
	Vlan      *VlanSlice
	Internet  InternetSlice
	Transport TransportSlice
	Payload   []byte
}

// FromEthernet slices buf starting from an Ethernet II header.
func FromEthernet(buf []byte) (*SlicedPacket, error) {
	c := wire.NewCursor(buf)
	if _, err := ethernet.Read(c); err != nil {
		return nil, err
	}
	linkRaw := buf[:ethernet.HeaderLen]
	rest := c.Rest()

	et := common.EtherType(wire.ReadUint16(linkRaw[12:14]))
	pkt, err := sliceFromEtherType(et, rest)
	if err != nil {
		return nil, err
	}
	pkt.Link = &LinkSlice{Raw: linkRaw}
	return pkt, nil
}

// FromEtherType slices buf whose first bytes are whatever et identifies.
func FromEtherType(et common.EtherType, buf []byte) (*SlicedPacket, error) {
	return sliceFromEtherType(et, buf)
}

// FromIp slices buf starting directly at an IPv4 or IPv6 header,
// skipping link and VLAN layers.
func FromIp(buf []byte) (*SlicedPacket, error) {
	if len(buf) == 0 {
		return nil, neterr.NewReadError(neterr.UnexpectedEndOfSlice, 0, "ip header")
	}
	version := buf[0] >> 4
	switch version {
	case 4:
		return sliceIpv4(buf)
	case 6:
		return sliceIpv6(buf)
	default:
		return nil, neterr.NewReadError(neterr.IpUnsupportedVersion, 0, "unrecognized ip version")
	}
}

func sliceFromEtherType(et common.EtherType, buf []byte) (*SlicedPacket, error) {
	pkt := &SlicedPacket{}

	if et.IsVlanTag() {
		c := wire.NewCursor(buf)
		outer, err := ethernet.ReadSingleVlan(c)
		if err != nil {
			return nil, err
		}
		if outer.EtherType.IsVlanTag() {
			inner, err := ethernet.ReadSingleVlan(c)
			if err != nil {
				return nil, err
			}
			pkt.Vlan = &VlanSlice{Raw: buf[:ethernet.VlanHeaderLen*2], Double: true}
			et = inner.EtherType
		} else {
			pkt.Vlan = &VlanSlice{Raw: buf[:ethernet.VlanHeaderLen], Double: false}
			et = outer.EtherType
		}
		buf = c.Rest()
	}

	switch et {
	case common.EtherTypeIPv4:
		inner, err := sliceIpv4(buf)
		if err != nil {
			return nil, err
		}
		pkt.Internet, pkt.Transport, pkt.Payload = inner.Internet, inner.Transport, inner.Payload
	case common.EtherTypeIPv6:
		inner, err := sliceIpv6(buf)
		if err != nil {
			return nil, err
		}
		pkt.Internet, pkt.Transport, pkt.Payload = inner.Internet, inner.Transport, inner.Payload
	default:
		pkt.Payload = buf
	}

	return pkt, nil
}

func sliceIpv4(buf []byte) (*SlicedPacket, error) {
	c := wire.NewCursor(buf)
	h, err := ipv4.Read(c)
	if err != nil {
		return nil, err
	}
	headerRaw := buf[:h.HeaderLen()]

	extStart := c.Offset()
	_, nextProto, err := ipv4.ReadExtensions(h.Protocol, c)
	if err != nil {
		return nil, err
	}
	extRaw := buf[extStart:c.Offset()]

	pkt := &SlicedPacket{Internet: Ipv4Slice{HeaderRaw: headerRaw, ExtensionsRaw: extRaw}}

	packetEnd := len(buf)
	if int(h.TotalLength) <= len(buf) {
		packetEnd = int(h.TotalLength)
	}
	transportAndPayload := buf[c.Offset():packetEnd]

	if h.FragmentsOffset > 0 {
		pkt.Payload = transportAndPayload
		return pkt, nil
	}

	transport, payload, err := sliceTransport(nextProto, transportAndPayload)
	if err != nil {
		return nil, err
	}
	pkt.Transport = transport
	pkt.Payload = payload
	return pkt, nil
}

func sliceIpv6(buf []byte) (*SlicedPacket, error) {
	c := wire.NewCursor(buf)
	h, err := ipv6.Read(c)
	if err != nil {
		return nil, err
	}
	headerRaw := buf[:ipv6.HeaderLen]

	extStart := c.Offset()
	ext, nextProto, err := ipv6.ReadExtensions(h.NextHeader, c)
	if err != nil {
		return nil, err
	}
	extRaw := buf[extStart:c.Offset()]

	pkt := &SlicedPacket{Internet: Ipv6Slice{HeaderRaw: headerRaw, ExtensionsRaw: extRaw}}

	packetEnd := len(buf)
	if measured := ipv6.HeaderLen + int(h.PayloadLength); measured <= len(buf) {
		packetEnd = measured
	}
	transportAndPayload := buf[c.Offset():packetEnd]

	if ext.Fragment != nil && ext.Fragment.FragmentOffset > 0 {
		pkt.Payload = transportAndPayload
		return pkt, nil
	}

	transport, payload, err := sliceTransport(nextProto, transportAndPayload)
	if err != nil {
		return nil, err
	}
	pkt.Transport = transport
	pkt.Payload = payload
	return pkt, nil
}

func sliceTransport(proto common.IPNumber, buf []byte) (TransportSlice, []byte, error) {
	switch proto {
	case common.IPNumberUDP:
		if len(buf) < udp.HeaderLen {
			return nil, nil, neterr.NewReadError(neterr.UnexpectedEndOfSlice, 0, "udp header")
		}
		return UdpSlice{Raw: buf[:udp.HeaderLen]}, buf[udp.HeaderLen:], nil

	case common.IPNumberTCP:
		h, err := tcp.Read(wire.NewCursor(buf))
		if err != nil {
			return nil, nil, err
		}
		return TcpSlice{Raw: buf[:h.HeaderLen()]}, buf[h.HeaderLen():], nil

	case common.IPNumberICMP:
		h, err := icmpv4.Read(wire.NewCursor(buf))
		if err != nil {
			return nil, nil, err
		}
		bodyLen := len(buf) - icmpv4.BaseLen
		if fixed := icmpv4.FixedPayloadSize(h.Variant); fixed >= 0 {
			if bodyLen < fixed {
				return nil, nil, neterr.NewReadError(neterr.IcmpPayloadLengthBad, icmpv4.BaseLen,
					fmt.Sprintf("variant requires %d fixed payload bytes, only %d present", fixed, bodyLen))
			}
			bodyLen = fixed
		}
		sliceEnd := icmpv4.BaseLen + bodyLen
		return Icmpv4Slice{Raw: buf[:sliceEnd]}, buf[sliceEnd:], nil

	case common.IPNumberIPv6ICMP:
		if _, err := icmpv6.Read(wire.NewCursor(buf)); err != nil {
			return nil, nil, err
		}
		return Icmpv6Slice{Raw: buf}, nil, nil

	default:
		return UnknownTransportSlice{Protocol: proto}, buf, nil
	}
}

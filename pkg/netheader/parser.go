package netheader

import (
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ethernet"
)

// PacketHeaders is the owning counterpart to SlicedPacket: every
// layer present is materialized into an owned value instead of a
// borrow of the input buffer. Payload remains a sub-slice of the
// original buffer, same as the slicer.
type PacketHeaders struct {
	Link      *ethernet.Ethernet2Header
	Vlan      ethernet.VlanHeader
	Ip        IpHeader
	Transport TransportHeader
	Payload   []byte
}

// FromEthernetSlice parses buf starting from an Ethernet II header,
// slicing first and then materializing every present layer.
func FromEthernetSlice(buf []byte) (PacketHeaders, error) {
	sliced, err := FromEthernet(buf)
	if err != nil {
		return PacketHeaders{}, err
	}
	return materialize(sliced)
}

// FromEtherTypeSlice parses buf whose first bytes are whatever et identifies.
func FromEtherTypeSlice(et common.EtherType, buf []byte) (PacketHeaders, error) {
	sliced, err := FromEtherType(et, buf)
	if err != nil {
		return PacketHeaders{}, err
	}
	return materialize(sliced)
}

// FromIpSlice parses buf starting directly at an IPv4 or IPv6 header.
func FromIpSlice(buf []byte) (PacketHeaders, error) {
	sliced, err := FromIp(buf)
	if err != nil {
		return PacketHeaders{}, err
	}
	return materialize(sliced)
}

func materialize(sliced *SlicedPacket) (PacketHeaders, error) {
	var out PacketHeaders
	out.Payload = sliced.Payload

	if sliced.Link != nil {
		h, err := sliced.Link.ToHeader()
		if err != nil {
			return PacketHeaders{}, err
		}
		out.Link = &h
	}

	if sliced.Vlan != nil {
		v, err := sliced.Vlan.ToHeader()
		if err != nil {
			return PacketHeaders{}, err
		}
		out.Vlan = v
	}

	if sliced.Internet != nil {
		switch s := sliced.Internet.(type) {
		case Ipv4Slice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Ip = h
		case Ipv6Slice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Ip = h
		}
	}

	if sliced.Transport != nil {
		switch s := sliced.Transport.(type) {
		case UdpSlice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Transport = Udp{Header: h}
		case TcpSlice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Transport = Tcp{Header: h}
		case Icmpv4Slice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Transport = Icmpv4{Header: h}
		case Icmpv6Slice:
			h, err := s.ToHeader()
			if err != nil {
				return PacketHeaders{}, err
			}
			out.Transport = Icmpv6{Header: h}
		case UnknownTransportSlice:
			out.Transport = UnknownTransport{Protocol: s.Protocol}
		}
	}

	return out, nil
}

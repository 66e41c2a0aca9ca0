// Package common provides the address and protocol-number types shared by
// every layer codec: fixed-width hardware/IP addresses, the ether-type
// selector, and the IP protocol ("next header") number.
package common

import (
	"encoding/binary"
	"fmt"
	"net"
)

// MACAddress is a 48-bit Ethernet hardware address.
type MACAddress [6]byte

// String returns the MAC address in standard colon-separated hex.
func (m MACAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsBroadcast returns true for FF:FF:FF:FF:FF:FF.
func (m MACAddress) IsBroadcast() bool {
	return m == BroadcastMAC
}

// IsMulticast returns true if the least significant bit of the first byte is set.
func (m MACAddress) IsMulticast() bool {
	return m[0]&0x01 != 0
}

// ParseMAC parses a string MAC address (e.g. "00:11:22:33:44:55").
func ParseMAC(s string) (MACAddress, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MACAddress{}, err
	}
	if len(hw) != 6 {
		return MACAddress{}, fmt.Errorf("invalid MAC address length: %d", len(hw))
	}
	var mac MACAddress
	copy(mac[:], hw)
	return mac, nil
}

// BroadcastMAC is the Ethernet broadcast address.
var BroadcastMAC = MACAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// IPv4Address is a 32-bit IPv4 address.
type IPv4Address [4]byte

// String returns dotted-decimal notation.
func (ip IPv4Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// ToUint32 returns the address as a uint32.
func (ip IPv4Address) ToUint32() uint32 {
	return binary.BigEndian.Uint32(ip[:])
}

// IPv4FromUint32 builds an address from a uint32.
func IPv4FromUint32(v uint32) IPv4Address {
	var addr IPv4Address
	binary.BigEndian.PutUint32(addr[:], v)
	return addr
}

// ParseIPv4 parses a string IPv4 address (e.g. "192.168.1.1").
func ParseIPv4(s string) (IPv4Address, error) {
	parsed := net.ParseIP(s)
	if parsed == nil {
		return IPv4Address{}, fmt.Errorf("invalid IP address: %s", s)
	}
	v4 := parsed.To4()
	if v4 == nil {
		return IPv4Address{}, fmt.Errorf("not an IPv4 address: %s", s)
	}
	var addr IPv4Address
	copy(addr[:], v4)
	return addr, nil
}

// IPv6Address is a 128-bit IPv6 address.
type IPv6Address [16]byte

// String returns the address using net.IP's canonical textual form.
func (ip IPv6Address) String() string {
	return net.IP(ip[:]).String()
}

// ParseIPv6 parses a string IPv6 address (e.g. "2001:db8::1").
func ParseIPv6(s string) (IPv6Address, error) {
	parsed := net.ParseIP(s)
	if parsed == nil {
		return IPv6Address{}, fmt.Errorf("invalid IP address: %s", s)
	}
	if parsed.To4() != nil {
		return IPv6Address{}, fmt.Errorf("not an IPv6 address: %s", s)
	}
	v6 := parsed.To16()
	if v6 == nil {
		return IPv6Address{}, fmt.Errorf("not an IPv6 address: %s", s)
	}
	var addr IPv6Address
	copy(addr[:], v6)
	return addr, nil
}

// EtherType is the 16-bit protocol selector at the end of an
// Ethernet/VLAN header.
type EtherType uint16

// Ether-types used by this library's closed protocol set.
const (
	EtherTypeIPv4             EtherType = 0x0800
	EtherTypeARP              EtherType = 0x0806
	EtherTypeVlanTaggedFrame  EtherType = 0x8100 // 802.1Q (C-Tag)
	EtherTypeProviderBridging EtherType = 0x88A8 // 802.1ad (S-Tag)
	EtherTypeVlanDoubleTagged EtherType = 0x9100 // legacy Q-in-Q
	EtherTypeIPv6             EtherType = 0x86DD
)

// String returns a human-readable name for the EtherType.
func (et EtherType) String() string {
	switch et {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	case EtherTypeVlanTaggedFrame:
		return "VlanTaggedFrame(C-Tag)"
	case EtherTypeProviderBridging:
		return "ProviderBridging(S-Tag)"
	case EtherTypeVlanDoubleTagged:
		return "VlanDoubleTagged(Q-in-Q)"
	case EtherTypeIPv6:
		return "IPv6"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(et))
	}
}

// IsVlanTag reports whether et identifies an 802.1Q/802.1ad VLAN tag
// (single, or the outer tag of a double tag).
func (et EtherType) IsVlanTag() bool {
	switch et {
	case EtherTypeVlanTaggedFrame, EtherTypeProviderBridging, EtherTypeVlanDoubleTagged:
		return true
	default:
		return false
	}
}

// IPNumber is the IP protocol / next-header number (RFC 790 and friends).
type IPNumber uint8

// Protocol numbers referenced by this library's closed protocol set.
const (
	IPNumberICMP         IPNumber = 1
	IPNumberTCP          IPNumber = 6
	IPNumberUDP          IPNumber = 17
	IPNumberIPv6HopByHop IPNumber = 0
	IPNumberIPv6Route    IPNumber = 43
	IPNumberIPv6Fragment IPNumber = 44
	IPNumberAH           IPNumber = 51
	IPNumberIPv6ICMP     IPNumber = 58
	IPNumberIPv6NoNext   IPNumber = 59
	IPNumberIPv6Opts     IPNumber = 60 // destination options
)

// String returns a human-readable name for the protocol number.
func (p IPNumber) String() string {
	switch p {
	case IPNumberICMP:
		return "ICMP"
	case IPNumberTCP:
		return "TCP"
	case IPNumberUDP:
		return "UDP"
	case IPNumberIPv6HopByHop:
		return "IPv6HopByHop"
	case IPNumberIPv6Route:
		return "IPv6Routing"
	case IPNumberIPv6Fragment:
		return "IPv6Fragment"
	case IPNumberAH:
		return "AH"
	case IPNumberIPv6ICMP:
		return "IPv6ICMP"
	case IPNumberIPv6NoNext:
		return "IPv6NoNextHeader"
	case IPNumberIPv6Opts:
		return "IPv6DestinationOptions"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(p))
	}
}

// IsIPv6ExtensionHeader reports whether p identifies one of the chained
// IPv6 extension headers this library understands (AH included).
func (p IPNumber) IsIPv6ExtensionHeader() bool {
	switch p {
	case IPNumberIPv6HopByHop, IPNumberIPv6Route, IPNumberIPv6Fragment, IPNumberIPv6Opts, IPNumberAH:
		return true
	default:
		return false
	}
}

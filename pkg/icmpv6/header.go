// Package icmpv6 implements ICMP for IPv6 (RFC 4443), including the
// neighbor discovery message types (RFC 4861) as typed variants. This
// library only carves out the fixed 8-byte base header; it never
// interprets neighbor discovery options or router advertisement
// prefix lists, which belong to routing logic this module does not
// implement.
package icmpv6

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/checksum"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// BaseLen is the fixed 8-byte ICMPv6 base: type, code, checksum, and
// four type-specific bytes.
const BaseLen = 8

// Message types this library names explicitly; anything else decodes
// to VariantUnknown.
const (
	TypeDestinationUnreachable = 1
	TypePacketTooBig           = 2
	TypeTimeExceeded           = 3
	TypeParameterProblem       = 4
	TypeEchoRequest            = 128
	TypeEchoReply              = 129
	TypeRouterSolicitation     = 133
	TypeRouterAdvertisement    = 134
	TypeNeighborSolicitation   = 135
	TypeNeighborAdvertisement  = 136
	TypeRedirect               = 137
)

// Variant is the sealed set of type-specific ICMPv6 message shapes.
type Variant interface {
	isVariant()
	icmpType() uint8
}

// VariantEchoRequest is an Echo Request (type 128).
type VariantEchoRequest struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantEchoRequest) isVariant()      {}
func (VariantEchoRequest) icmpType() uint8 { return TypeEchoRequest }

// VariantEchoReply is an Echo Reply (type 129).
type VariantEchoReply struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantEchoReply) isVariant()      {}
func (VariantEchoReply) icmpType() uint8 { return TypeEchoReply }

// VariantDestinationUnreachable is type 1; the 4 type-specific bytes
// are unused/reserved.
type VariantDestinationUnreachable struct {
	Code uint8
}

func (VariantDestinationUnreachable) isVariant()      {}
func (VariantDestinationUnreachable) icmpType() uint8 { return TypeDestinationUnreachable }

// VariantPacketTooBig is type 2; MTU is the largest packet the
// reporting link can carry.
type VariantPacketTooBig struct {
	MTU uint32
}

func (VariantPacketTooBig) isVariant()      {}
func (VariantPacketTooBig) icmpType() uint8 { return TypePacketTooBig }

// VariantTimeExceeded is type 3.
type VariantTimeExceeded struct {
	Code uint8
}

func (VariantTimeExceeded) isVariant()      {}
func (VariantTimeExceeded) icmpType() uint8 { return TypeTimeExceeded }

// VariantParameterProblem is type 4; Pointer identifies the offending
// octet in the original packet.
type VariantParameterProblem struct {
	Code    uint8
	Pointer uint32
}

func (VariantParameterProblem) isVariant()      {}
func (VariantParameterProblem) icmpType() uint8 { return TypeParameterProblem }

// VariantRouterSolicitation is type 133; the type-specific bytes are reserved.
type VariantRouterSolicitation struct{}

func (VariantRouterSolicitation) isVariant()      {}
func (VariantRouterSolicitation) icmpType() uint8 { return TypeRouterSolicitation }

// VariantRouterAdvertisement is type 134. Options (prefix list, MTU,
// source link-layer address) are not modeled; they live in the
// message payload.
type VariantRouterAdvertisement struct {
	CurHopLimit    uint8
	ManagedConfig  bool
	OtherConfig    bool
	RouterLifetime uint16
}

func (VariantRouterAdvertisement) isVariant()      {}
func (VariantRouterAdvertisement) icmpType() uint8 { return TypeRouterAdvertisement }

// VariantNeighborSolicitation is type 135; the type-specific bytes
// are reserved. The solicited target address lives in the payload.
type VariantNeighborSolicitation struct{}

func (VariantNeighborSolicitation) isVariant()      {}
func (VariantNeighborSolicitation) icmpType() uint8 { return TypeNeighborSolicitation }

// VariantNeighborAdvertisement is type 136. The target address lives
// in the payload.
type VariantNeighborAdvertisement struct {
	Router    bool
	Solicited bool
	Override  bool
}

func (VariantNeighborAdvertisement) isVariant()      {}
func (VariantNeighborAdvertisement) icmpType() uint8 { return TypeNeighborAdvertisement }

// VariantRedirect is type 137; the type-specific bytes are reserved.
// Target and destination addresses live in the payload.
type VariantRedirect struct{}

func (VariantRedirect) isVariant()      {}
func (VariantRedirect) icmpType() uint8 { return TypeRedirect }

// VariantUnknown preserves any type/code this library does not decode
// further, along with the raw 4 type-specific bytes.
type VariantUnknown struct {
	Type      uint8
	Code      uint8
	Bytes5To8 [4]byte
}

func (VariantUnknown) isVariant()        {}
func (v VariantUnknown) icmpType() uint8 { return v.Type }

// Header is a full ICMPv6 message: the base type/code/checksum plus
// its typed variant.
type Header struct {
	Checksum uint16
	Variant  Variant
}

// Read parses the 8-byte base header and dispatches the four
// type-specific bytes to the matching Variant.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	typ, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv6 type")
	}
	code, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv6 code")
	}
	chk, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv6 checksum")
	}
	h.Checksum = chk

	rest, err := c.Take(4)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv6 type-specific bytes")
	}

	switch typ {
	case TypeEchoRequest:
		h.Variant = VariantEchoRequest{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
	case TypeEchoReply:
		h.Variant = VariantEchoReply{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
	case TypeDestinationUnreachable:
		h.Variant = VariantDestinationUnreachable{Code: code}
	case TypePacketTooBig:
		h.Variant = VariantPacketTooBig{MTU: wire.ReadUint32(rest)}
	case TypeTimeExceeded:
		h.Variant = VariantTimeExceeded{Code: code}
	case TypeParameterProblem:
		h.Variant = VariantParameterProblem{Code: code, Pointer: wire.ReadUint32(rest)}
	case TypeRouterSolicitation:
		h.Variant = VariantRouterSolicitation{}
	case TypeRouterAdvertisement:
		h.Variant = VariantRouterAdvertisement{
			CurHopLimit:    rest[0],
			ManagedConfig:  rest[1]&0x80 != 0,
			OtherConfig:    rest[1]&0x40 != 0,
			RouterLifetime: wire.ReadUint16(rest[2:4]),
		}
	case TypeNeighborSolicitation:
		h.Variant = VariantNeighborSolicitation{}
	case TypeNeighborAdvertisement:
		h.Variant = VariantNeighborAdvertisement{
			Router:    rest[0]&0x80 != 0,
			Solicited: rest[0]&0x40 != 0,
			Override:  rest[0]&0x20 != 0,
		}
	case TypeRedirect:
		h.Variant = VariantRedirect{}
	default:
		var b4 [4]byte
		copy(b4[:], rest)
		h.Variant = VariantUnknown{Type: typ, Code: code, Bytes5To8: b4}
	}

	return h, nil
}

// ToBytes serializes the base header (with the Checksum field as-is)
// into a new 8-byte slice.
func (h Header) ToBytes() []byte {
	buf := make([]byte, BaseLen)
	buf[0] = h.Variant.icmpType()
	buf[1] = h.code()
	wire.PutUint16(buf[2:4], h.Checksum)
	copy(buf[4:8], h.typeSpecificBytes())
	return buf
}

func (h Header) code() uint8 {
	switch v := h.Variant.(type) {
	case VariantDestinationUnreachable:
		return v.Code
	case VariantTimeExceeded:
		return v.Code
	case VariantParameterProblem:
		return v.Code
	case VariantUnknown:
		return v.Code
	default:
		return 0
	}
}

func (h Header) typeSpecificBytes() []byte {
	buf := make([]byte, 4)
	switch v := h.Variant.(type) {
	case VariantEchoRequest:
		wire.PutUint16(buf[0:2], v.Identifier)
		wire.PutUint16(buf[2:4], v.SequenceNumber)
	case VariantEchoReply:
		wire.PutUint16(buf[0:2], v.Identifier)
		wire.PutUint16(buf[2:4], v.SequenceNumber)
	case VariantPacketTooBig:
		wire.PutUint32(buf, v.MTU)
	case VariantParameterProblem:
		wire.PutUint32(buf, v.Pointer)
	case VariantRouterAdvertisement:
		buf[0] = v.CurHopLimit
		if v.ManagedConfig {
			buf[1] |= 0x80
		}
		if v.OtherConfig {
			buf[1] |= 0x40
		}
		wire.PutUint16(buf[2:4], v.RouterLifetime)
	case VariantNeighborAdvertisement:
		if v.Router {
			buf[0] |= 0x80
		}
		if v.Solicited {
			buf[0] |= 0x40
		}
		if v.Override {
			buf[0] |= 0x20
		}
	case VariantUnknown:
		copy(buf, v.Bytes5To8[:])
	}
	return buf
}

// Write serializes the base header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(h.ToBytes()); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

// ChecksumIPv6 computes the ICMPv6 checksum over the IPv6
// pseudo-header (src, dst, message length, next-header=58), the base
// header with a zero checksum field, and the message payload.
func ChecksumIPv6(h Header, src, dst common.IPv6Address, payload []byte) uint16 {
	h.Checksum = 0
	raw := h.ToBytes()
	acc := checksum.New()
	checksum.AddIPv6PseudoHeader(acc, src, dst, uint32(len(raw)+len(payload)), uint8(common.IPNumberIPv6ICMP))
	acc.Add(raw)
	acc.Add(payload)
	return acc.Sum16()
}

func (h Header) String() string {
	return fmt.Sprintf("Icmpv6Header{Type=%d, Variant=%#v}", h.Variant.icmpType(), h.Variant)
}

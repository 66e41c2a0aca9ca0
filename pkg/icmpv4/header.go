// Package icmpv4 implements ICMP for IPv4 (RFC 792) as a typed,
// closed set of message variants over the common 8-byte base header.
package icmpv4

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/checksum"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// BaseLen is the fixed 8-byte ICMPv4 base: type, code, checksum, and
// four type-specific bytes.
const BaseLen = 8

// Message types this library names explicitly; anything else decodes
// to VariantUnknown.
const (
	TypeEchoReply              = 0
	TypeDestinationUnreachable = 3
	TypeRedirect               = 5
	TypeEchoRequest            = 8
	TypeTimeExceeded           = 11
	TypeParameterProblem       = 12
	TypeTimestampRequest       = 13
	TypeTimestampReply         = 14
)

// Variant is the sealed set of type-specific ICMPv4 message shapes.
// The unexported marker method keeps the set closed to this package.
type Variant interface {
	isVariant()
	icmpType() uint8
}

// VariantEchoRequest is an Echo Request (type 8); the trailing payload
// is arbitrary and variable-length.
type VariantEchoRequest struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantEchoRequest) isVariant()      {}
func (VariantEchoRequest) icmpType() uint8 { return TypeEchoRequest }

// VariantEchoReply is an Echo Reply (type 0).
type VariantEchoReply struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantEchoReply) isVariant()      {}
func (VariantEchoReply) icmpType() uint8 { return TypeEchoReply }

// VariantDestinationUnreachable is type 3; code 4 (fragmentation
// needed) carries the next-hop MTU in the low 16 bits, otherwise those
// bits are unused.
type VariantDestinationUnreachable struct {
	Code       uint8
	NextHopMTU uint16
}

func (VariantDestinationUnreachable) isVariant()      {}
func (VariantDestinationUnreachable) icmpType() uint8 { return TypeDestinationUnreachable }

// VariantTimeExceeded is type 11.
type VariantTimeExceeded struct {
	Code uint8
}

func (VariantTimeExceeded) isVariant()      {}
func (VariantTimeExceeded) icmpType() uint8 { return TypeTimeExceeded }

// VariantParameterProblem is type 12; Pointer identifies the
// offending octet in the original datagram.
type VariantParameterProblem struct {
	Code    uint8
	Pointer uint8
}

func (VariantParameterProblem) isVariant()      {}
func (VariantParameterProblem) icmpType() uint8 { return TypeParameterProblem }

// VariantRedirect is type 5; GatewayAddress is the four-byte
// replacement gateway.
type VariantRedirect struct {
	Code           uint8
	GatewayAddress [4]byte
}

func (VariantRedirect) isVariant()      {}
func (VariantRedirect) icmpType() uint8 { return TypeRedirect }

// VariantTimestampRequest is type 13; its payload is a fixed 12-byte
// originate/receive/transmit timestamp triple (see FixedPayloadSize).
type VariantTimestampRequest struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantTimestampRequest) isVariant()      {}
func (VariantTimestampRequest) icmpType() uint8 { return TypeTimestampRequest }

// VariantTimestampReply is type 14, same shape as VariantTimestampRequest.
type VariantTimestampReply struct {
	Identifier     uint16
	SequenceNumber uint16
}

func (VariantTimestampReply) isVariant()      {}
func (VariantTimestampReply) icmpType() uint8 { return TypeTimestampReply }

// VariantUnknown preserves any type/code this library does not decode
// further, along with the raw 4 type-specific bytes.
type VariantUnknown struct {
	Type      uint8
	Code      uint8
	Bytes5To8 [4]byte
}

func (VariantUnknown) isVariant()        {}
func (v VariantUnknown) icmpType() uint8 { return v.Type }

// Header is a full ICMPv4 message: the base type/code/checksum plus
// its typed variant.
type Header struct {
	Checksum uint16
	Variant  Variant
}

// FixedPayloadSize returns the number of trailing payload bytes this
// variant fixes in advance (e.g. timestamp messages: 12), or -1 if
// the payload is variable-length and the caller must use whatever
// remains of the enclosing datagram.
func FixedPayloadSize(v Variant) int {
	switch v.(type) {
	case VariantTimestampRequest, VariantTimestampReply:
		return 12
	default:
		return -1
	}
}

// Read parses the 8-byte base header and dispatches the four
// type-specific bytes to the matching Variant.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	typ, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv4 type")
	}
	code, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv4 code")
	}
	chk, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv4 checksum")
	}
	h.Checksum = chk

	rest, err := c.Take(4)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "icmpv4 type-specific bytes")
	}

	switch typ {
	case TypeEchoRequest:
		h.Variant = VariantEchoRequest{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
	case TypeEchoReply:
		h.Variant = VariantEchoReply{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
	case TypeDestinationUnreachable:
		h.Variant = VariantDestinationUnreachable{Code: code, NextHopMTU: wire.ReadUint16(rest[2:4])}
	case TypeTimeExceeded:
		h.Variant = VariantTimeExceeded{Code: code}
	case TypeParameterProblem:
		h.Variant = VariantParameterProblem{Code: code, Pointer: rest[0]}
	case TypeRedirect:
		var gw [4]byte
		copy(gw[:], rest)
		h.Variant = VariantRedirect{Code: code, GatewayAddress: gw}
	case TypeTimestampRequest:
		h.Variant = VariantTimestampRequest{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
	case TypeTimestampReply:
		h.Variant = VariantTimestampReply{Identifier: wire.ReadUint16(rest[0:2]), SequenceNumber: wire.ReadUint16(rest[2:4])}
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
	case VariantRedirect:
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
	case VariantDestinationUnreachable:
		wire.PutUint16(buf[2:4], v.NextHopMTU)
	case VariantParameterProblem:
		buf[0] = v.Pointer
	case VariantRedirect:
		copy(buf, v.GatewayAddress[:])
	case VariantTimestampRequest:
		wire.PutUint16(buf[0:2], v.Identifier)
		wire.PutUint16(buf[2:4], v.SequenceNumber)
	case VariantTimestampReply:
		wire.PutUint16(buf[0:2], v.Identifier)
		wire.PutUint16(buf[2:4], v.SequenceNumber)
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

// ChecksumOf computes the ICMPv4 checksum over the base header (with
// a zero checksum field) and the message payload. There is no
// pseudo-header for ICMPv4.
func ChecksumOf(h Header, payload []byte) uint16 {
	h.Checksum = 0
	acc := checksum.New()
	acc.Add(h.ToBytes())
	acc.Add(payload)
	return acc.Sum16()
}

func (h Header) String() string {
	return fmt.Sprintf("Icmpv4Header{Type=%d, Variant=%#v}", h.Variant.icmpType(), h.Variant)
}

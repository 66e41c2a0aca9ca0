// Package udp implements the UDP header (RFC 768).
package udp

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/checksum"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// HeaderLen is the fixed 8-byte UDP header length.
const HeaderLen = 8

// Header is a UDP header.
type Header struct {
	SourcePort      uint16
	DestinationPort uint16
	Length          uint16 // 8 + payload length
	Checksum        uint16
}

// HeaderLen returns the fixed 8-byte length.
func (Header) HeaderLen() int { return HeaderLen }

// Read parses an 8-byte UDP header from c.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	sp, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "udp source port")
	}
	h.SourcePort = sp

	dp, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "udp destination port")
	}
	h.DestinationPort = dp

	length, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "udp length")
	}
	if length < HeaderLen {
		return h, neterr.NewReadError(neterr.UdpLengthInvalid, c.Offset()-2, fmt.Sprintf("length %d is smaller than the 8-byte header", length))
	}
	h.Length = length

	chk, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "udp checksum")
	}
	h.Checksum = chk

	return h, nil
}

// New builds a header for src/dst ports and a payload, validating that
// 8+len(payload) fits the 16-bit Length field. The checksum is left
// zero; compute it with ChecksumIPv4/ChecksumIPv6 before writing.
func New(srcPort, dstPort uint16, payloadLen int) (Header, error) {
	total := HeaderLen + payloadLen
	if total > 0xFFFF {
		return Header{}, neterr.NewValueError(neterr.UdpPayloadLengthTooLarge,
			fmt.Sprintf("udp payload of %d bytes makes the total length %d exceed 65535", payloadLen, total))
	}
	return Header{SourcePort: srcPort, DestinationPort: dstPort, Length: uint16(total)}, nil
}

// ToBytes serializes the header, using the Checksum field as-is.
func (h Header) ToBytes() []byte {
	buf := make([]byte, HeaderLen)
	wire.PutUint16(buf[0:2], h.SourcePort)
	wire.PutUint16(buf[2:4], h.DestinationPort)
	wire.PutUint16(buf[4:6], h.Length)
	wire.PutUint16(buf[6:8], h.Checksum)
	return buf
}

// Write serializes the header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(h.ToBytes()); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

// ChecksumIPv4 computes the UDP checksum over an IPv4 pseudo-header,
// this header (with a zero checksum field), and payload.
func ChecksumIPv4(h Header, src, dst common.IPv4Address, payload []byte) uint16 {
	acc := checksum.New()
	checksum.AddIPv4PseudoHeader(acc, src, dst, uint8(common.IPNumberUDP), h.Length)
	h.Checksum = 0
	acc.Add(h.ToBytes())
	acc.Add(payload)
	return acc.Sum16()
}

// ChecksumIPv6 computes the UDP checksum over an IPv6 pseudo-header,
// this header (with a zero checksum field), and payload.
func ChecksumIPv6(h Header, src, dst common.IPv6Address, payload []byte) uint16 {
	acc := checksum.New()
	checksum.AddIPv6PseudoHeader(acc, src, dst, uint32(h.Length), uint8(common.IPNumberUDP))
	h.Checksum = 0
	acc.Add(h.ToBytes())
	acc.Add(payload)
	return acc.Sum16()
}

func (h Header) String() string {
	return fmt.Sprintf("UdpHeader{%d -> %d, Length=%d}", h.SourcePort, h.DestinationPort, h.Length)
}

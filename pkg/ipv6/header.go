// Package ipv6 implements the fixed IPv6 header (RFC 8200 section 3)
// and the chain of extension headers that can follow it.
package ipv6

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// Version is the fixed version nibble for IPv6.
const Version = 6

// HeaderLen is the fixed 40-byte IPv6 header length.
const HeaderLen = 40

// Header is the fixed-size IPv6 header.
type Header struct {
	TrafficClass   uint8
	FlowLabel      uint32 // 20 bits
	PayloadLength  uint16
	NextHeader     common.IPNumber
	HopLimit       uint8
	Source         common.IPv6Address
	Destination    common.IPv6Address
}

// HeaderLen returns the fixed 40-byte length. Present so every header
// type in this module exposes the same accessor.
func (Header) HeaderLen() int { return HeaderLen }

// Read parses a 40-byte IPv6 header from c.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	versionClassFlow, err := c.TakeUint32()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 version/traffic-class/flow-label")
	}
	version := uint8(versionClassFlow >> 28)
	if version != Version {
		return h, neterr.NewReadError(neterr.IpUnsupportedVersion, c.Offset()-4, fmt.Sprintf("got version %d", version))
	}
	h.TrafficClass = uint8(versionClassFlow >> 20)
	h.FlowLabel = versionClassFlow & 0x000FFFFF

	payloadLen, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 payload length")
	}
	h.PayloadLength = payloadLen

	nextHeader, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 next header")
	}
	h.NextHeader = common.IPNumber(nextHeader)

	hopLimit, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 hop limit")
	}
	h.HopLimit = hopLimit

	src, err := c.Take(16)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 source address")
	}
	copy(h.Source[:], src)

	dst, err := c.Take(16)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 destination address")
	}
	copy(h.Destination[:], dst)

	return h, nil
}

// ToBytes serializes the header into a new 40-byte slice.
func (h Header) ToBytes() []byte {
	buf := make([]byte, HeaderLen)
	versionClassFlow := uint32(Version)<<28 | uint32(h.TrafficClass)<<20 | (h.FlowLabel & 0x000FFFFF)
	wire.PutUint32(buf[0:4], versionClassFlow)
	wire.PutUint16(buf[4:6], h.PayloadLength)
	buf[6] = uint8(h.NextHeader)
	buf[7] = h.HopLimit
	copy(buf[8:24], h.Source[:])
	copy(buf[24:40], h.Destination[:])
	return buf
}

// Write serializes the header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(h.ToBytes()); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

func (h Header) String() string {
	return fmt.Sprintf("Ipv6Header{%s -> %s, NextHeader=%s, HopLimit=%d, PayloadLength=%d}",
		h.Source, h.Destination, h.NextHeader, h.HopLimit, h.PayloadLength)
}

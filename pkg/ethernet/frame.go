// Package ethernet implements the link-layer codec: the Ethernet II
// header and the 802.1Q/802.1ad VLAN tags that can sit between it and
// the next layer's ether-type.
package ethernet

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// HeaderLen is the fixed size of an Ethernet II header: 6 bytes
// destination, 6 bytes source, 2 bytes ether-type.
const HeaderLen = 14

// Ethernet2Header is an Ethernet II (DIX) frame header. It carries no
// payload and no FCS; both are the caller's concern.
type Ethernet2Header struct {
	Destination common.MACAddress
	Source      common.MACAddress
	EtherType   common.EtherType
}

// New builds a header from its three fields.
func New(dst, src common.MACAddress, etherType common.EtherType) Ethernet2Header {
	return Ethernet2Header{Destination: dst, Source: src, EtherType: etherType}
}

// ReadFromSlice parses an Ethernet II header from the front of data and
// returns the header and the unconsumed remainder.
func ReadFromSlice(data []byte) (Ethernet2Header, []byte, error) {
	c := wire.NewCursor(data)
	h, err := Read(c)
	if err != nil {
		return Ethernet2Header{}, nil, err
	}
	return h, c.Rest(), nil
}

// Read consumes HeaderLen bytes from c and decodes them.
func Read(c *wire.Cursor) (Ethernet2Header, error) {
	var h Ethernet2Header
	dst, err := c.Take(6)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ethernet destination address")
	}
	copy(h.Destination[:], dst)

	src, err := c.Take(6)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ethernet source address")
	}
	copy(h.Source[:], src)

	et, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ethernet ether-type")
	}
	h.EtherType = common.EtherType(et)

	return h, nil
}

// HeaderLen returns the fixed 14-byte header length. It exists so every
// layer header in this module exposes the same HeaderLen() accessor.
func (h Ethernet2Header) HeaderLen() int { return HeaderLen }

// ToBytes serializes the header into a new 14-byte slice.
func (h Ethernet2Header) ToBytes() []byte {
	buf := make([]byte, HeaderLen)
	copy(buf[0:6], h.Destination[:])
	copy(buf[6:12], h.Source[:])
	wire.PutUint16(buf[12:14], uint16(h.EtherType))
	return buf
}

// Write serializes the header to w.
func (h Ethernet2Header) Write(w io.Writer) error {
	_, err := w.Write(h.ToBytes())
	if err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

// String gives a compact human-readable summary.
func (h Ethernet2Header) String() string {
	return fmt.Sprintf("Ethernet2{Dst=%s, Src=%s, EtherType=%s}", h.Destination, h.Source, h.EtherType)
}

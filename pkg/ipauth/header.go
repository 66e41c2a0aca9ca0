// Package ipauth implements the IPsec Authentication Header (RFC 4302),
// the only IPsec extension this library represents.
package ipauth

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// MinHeaderLen is the smallest legal wire length: next-header, payload
// length, reserved, SPI, and sequence number, with an empty ICV. The
// wire payload-length field is expressed in 4-byte units minus 2, so
// an empty ICV still yields a length field of 1 (3 units total).
const MinHeaderLen = 12

// Header is an IPsec Authentication Header.
type Header struct {
	NextHeader     uint8
	SPI            uint32
	SequenceNumber uint32
	ICV            []byte // must be a multiple of 4 bytes
}

// New validates and builds a Header. ICV must be a non-negative
// multiple of 4 bytes, and the resulting wire length must fit the
// single-byte "payload length in 4-byte units minus 2" field.
func New(nextHeader uint8, spi, seq uint32, icv []byte) (Header, error) {
	h := Header{NextHeader: nextHeader, SPI: spi, SequenceNumber: seq, ICV: icv}
	if len(icv)%4 != 0 {
		return Header{}, neterr.NewValueError(neterr.IpAuthenticationHeaderIcvTooBig,
			fmt.Sprintf("icv length %d is not a multiple of 4", len(icv)))
	}
	if _, err := h.payloadLenField(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// HeaderLen returns the total wire length in bytes: 12 fixed bytes
// plus the ICV.
func (h Header) HeaderLen() int {
	return MinHeaderLen + len(h.ICV)
}

// payloadLenField computes the wire "payload length" byte: the total
// header length in 4-byte units, minus 2, per RFC 4302 section 2.2.
func (h Header) payloadLenField() (uint8, error) {
	units := h.HeaderLen() / 4
	field := units - 2
	if field < 1 || field > 0xFF {
		return 0, neterr.NewValueError(neterr.IpAuthenticationHeaderIcvTooBig,
			fmt.Sprintf("icv of length %d makes the AH payload-length field (%d) overflow a byte", len(h.ICV), field))
	}
	return uint8(field), nil
}

// Read parses an Authentication Header from c. The ICV length is
// derived from the wire payload-length byte, not supplied by the
// caller.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	nextHeader, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(), "ip authentication header next-header")
	}
	h.NextHeader = nextHeader

	payloadLen, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(), "ip authentication header payload length")
	}

	if _, err := c.Take(2); err != nil { // reserved
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(), "ip authentication header reserved field")
	}

	spi, err := c.TakeUint32()
	if err != nil {
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(), "ip authentication header spi")
	}
	h.SPI = spi

	seq, err := c.TakeUint32()
	if err != nil {
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(), "ip authentication header sequence number")
	}
	h.SequenceNumber = seq

	icvLen := (int(payloadLen) + 2) * 4
	icvLen -= MinHeaderLen
	if icvLen < 0 {
		return h, neterr.NewReadError(neterr.IpAuthenticationHeaderTooSmall, c.Offset(),
			fmt.Sprintf("payload length field %d implies a header smaller than the minimum", payloadLen))
	}
	icv, err := c.Take(icvLen)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ip authentication header icv")
	}
	h.ICV = append([]byte(nil), icv...)

	return h, nil
}

// ToBytes serializes the header into a new slice.
func (h Header) ToBytes() ([]byte, error) {
	field, err := h.payloadLenField()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, h.HeaderLen())
	buf[0] = h.NextHeader
	buf[1] = field
	// buf[2:4] reserved, left zero
	wire.PutUint32(buf[4:8], h.SPI)
	wire.PutUint32(buf[8:12], h.SequenceNumber)
	copy(buf[12:], h.ICV)
	return buf, nil
}

// Write serializes the header to w.
func (h Header) Write(w io.Writer) error {
	buf, err := h.ToBytes()
	if err != nil {
		return neterr.FromValueError(err.(*neterr.ValueError))
	}
	if _, err := w.Write(buf); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

func (h Header) String() string {
	return fmt.Sprintf("IpAuthenticationHeader{NextHeader=%d, SPI=0x%08x, Seq=%d, ICVLen=%d}",
		h.NextHeader, h.SPI, h.SequenceNumber, len(h.ICV))
}

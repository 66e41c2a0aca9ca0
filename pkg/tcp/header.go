// Package tcp implements the TCP header (RFC 793) with its 9-bit flag
// set (including the ECN nonce-sum bit, RFC 3540) and TLV option chain.
package tcp

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/checksum"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// MinHeaderLen is the fixed-field header length with no options (20 bytes).
const MinHeaderLen = 20

// MaxHeaderLen is the largest DataOffset*4 can express (60 bytes).
const MaxHeaderLen = 60

// MaxOptionsLen is MaxHeaderLen - MinHeaderLen.
const MaxOptionsLen = MaxHeaderLen - MinHeaderLen

// Flags holds the nine independent TCP control bits: the eight
// classic flags plus NS (RFC 3540 ECN nonce-sum), which lives in the
// low bit of the byte 12 reserved nibble rather than the flags byte.
type Flags struct {
	NS  bool
	CWR bool
	ECE bool
	URG bool
	ACK bool
	PSH bool
	RST bool
	SYN bool
	FIN bool
}

// Header is a TCP header. Options are carried as raw TLV bytes; use
// the options iterator in options.go to decode them.
type Header struct {
	SourcePort      uint16
	DestinationPort uint16
	SequenceNumber  uint32
	AckNumber       uint32
	DataOffset      uint8 // 4 bits, in 4-byte units, range [5,15]
	Flags           Flags
	WindowSize      uint16
	Checksum        uint16
	UrgentPointer   uint16
	Options         []byte // multiple of 4 bytes, <= MaxOptionsLen
}

// HeaderLen returns the total header length in bytes, options included.
func (h Header) HeaderLen() int {
	return MinHeaderLen + len(h.Options)
}

func (h Header) dataOffset() uint8 {
	return uint8((MinHeaderLen + len(h.Options)) / 4)
}

// Validate checks that options are a non-negative multiple of 4 bytes
// not exceeding MaxOptionsLen.
func (h Header) Validate() error {
	if len(h.Options)%4 != 0 || len(h.Options) > MaxOptionsLen {
		return neterr.NewValueError(neterr.TcpOptionsLengthBad,
			fmt.Sprintf("tcp options length %d must be a multiple of 4 and at most %d", len(h.Options), MaxOptionsLen))
	}
	return nil
}

// Read parses a TCP header from c.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	sp, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp source port")
	}
	h.SourcePort = sp

	dp, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp destination port")
	}
	h.DestinationPort = dp

	seq, err := c.TakeUint32()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp sequence number")
	}
	h.SequenceNumber = seq

	ack, err := c.TakeUint32()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp ack number")
	}
	h.AckNumber = ack

	offsetReservedNS, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp data offset")
	}
	dataOffset := offsetReservedNS >> 4
	if dataOffset < 5 {
		return h, neterr.NewReadError(neterr.TcpDataOffsetTooSmall, c.Offset()-1, fmt.Sprintf("data offset %d is below the minimum of 5", dataOffset))
	}
	h.DataOffset = dataOffset
	h.Flags.NS = offsetReservedNS&0x1 != 0

	flagsByte, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp flags")
	}
	h.Flags.CWR = flagsByte&0x80 != 0
	h.Flags.ECE = flagsByte&0x40 != 0
	h.Flags.URG = flagsByte&0x20 != 0
	h.Flags.ACK = flagsByte&0x10 != 0
	h.Flags.PSH = flagsByte&0x08 != 0
	h.Flags.RST = flagsByte&0x04 != 0
	h.Flags.SYN = flagsByte&0x02 != 0
	h.Flags.FIN = flagsByte&0x01 != 0

	window, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp window size")
	}
	h.WindowSize = window

	chk, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp checksum")
	}
	h.Checksum = chk

	urgent, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp urgent pointer")
	}
	h.UrgentPointer = urgent

	optionsLen := int(dataOffset)*4 - MinHeaderLen
	if optionsLen > 0 {
		opts, err := c.Take(optionsLen)
		if err != nil {
			return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "tcp options")
		}
		h.Options = append([]byte(nil), opts...)
	}

	return h, nil
}

// ToBytes serializes the header, using the Checksum field as-is.
func (h Header) ToBytes() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, h.HeaderLen())
	h.encodeInto(buf)
	return buf, nil
}

func (h Header) encodeInto(buf []byte) {
	wire.PutUint16(buf[0:2], h.SourcePort)
	wire.PutUint16(buf[2:4], h.DestinationPort)
	wire.PutUint32(buf[4:8], h.SequenceNumber)
	wire.PutUint32(buf[8:12], h.AckNumber)

	offsetReservedNS := h.dataOffset() << 4
	if h.Flags.NS {
		offsetReservedNS |= 0x1
	}
	buf[12] = offsetReservedNS

	var flagsByte uint8
	if h.Flags.CWR {
		flagsByte |= 0x80
	}
	if h.Flags.ECE {
		flagsByte |= 0x40
	}
	if h.Flags.URG {
		flagsByte |= 0x20
	}
	if h.Flags.ACK {
		flagsByte |= 0x10
	}
	if h.Flags.PSH {
		flagsByte |= 0x08
	}
	if h.Flags.RST {
		flagsByte |= 0x04
	}
	if h.Flags.SYN {
		flagsByte |= 0x02
	}
	if h.Flags.FIN {
		flagsByte |= 0x01
	}
	buf[13] = flagsByte

	wire.PutUint16(buf[14:16], h.WindowSize)
	wire.PutUint16(buf[16:18], h.Checksum)
	wire.PutUint16(buf[18:20], h.UrgentPointer)
	copy(buf[20:], h.Options)
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

// ChecksumIPv4 computes the TCP checksum over an IPv4 pseudo-header,
// this header (with a zero checksum field), and payload.
func ChecksumIPv4(h Header, src, dst common.IPv4Address, payload []byte) (uint16, error) {
	h.Checksum = 0
	raw, err := h.ToBytes()
	if err != nil {
		return 0, err
	}
	acc := checksum.New()
	length := uint16(len(raw) + len(payload))
	checksum.AddIPv4PseudoHeader(acc, src, dst, uint8(common.IPNumberTCP), length)
	acc.Add(raw)
	acc.Add(payload)
	return acc.Sum16(), nil
}

// ChecksumIPv6 computes the TCP checksum over an IPv6 pseudo-header,
// this header (with a zero checksum field), and payload.
func ChecksumIPv6(h Header, src, dst common.IPv6Address, payload []byte) (uint16, error) {
	h.Checksum = 0
	raw, err := h.ToBytes()
	if err != nil {
		return 0, err
	}
	acc := checksum.New()
	length := uint32(len(raw) + len(payload))
	checksum.AddIPv6PseudoHeader(acc, src, dst, length, uint8(common.IPNumberTCP))
	acc.Add(raw)
	acc.Add(payload)
	return acc.Sum16(), nil
}

func (h Header) String() string {
	return fmt.Sprintf("TcpHeader{%d -> %d, Seq=%d, Ack=%d, Window=%d}",
		h.SourcePort, h.DestinationPort, h.SequenceNumber, h.AckNumber, h.WindowSize)
}

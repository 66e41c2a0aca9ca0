// Package ipv4 implements the Internet Protocol version 4 header, as
// defined in RFC 791, including its optional IPsec Authentication
// Header extension.
package ipv4

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/checksum"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipauth"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

const (
	// Version is the fixed version nibble for IPv4.
	Version = 4

	// MinHeaderLen is the fixed-field header length with no options (20 bytes).
	MinHeaderLen = 20

	// MaxHeaderLen is the largest IHL*4 can express (60 bytes).
	MaxHeaderLen = 60

	// MaxOptionsLen is MaxHeaderLen - MinHeaderLen.
	MaxOptionsLen = MaxHeaderLen - MinHeaderLen
)

// Flags holds the two meaningful IPv4 header flag bits.
type Flags struct {
	DontFragment  bool
	MoreFragments bool
}

// Header is an IPv4 header. Options are carried verbatim; this
// library does not interpret individual IPv4 option kinds. Read checks
// only that each option's length keeps it inside the options area.
type Header struct {
	DSCP             uint8 // 6 bits
	ECN              uint8 // 2 bits
	TotalLength      uint16
	Identification   uint16
	Flags            Flags
	FragmentsOffset  uint16 // 13 bits, in 8-byte units
	TimeToLive       uint8
	Protocol         common.IPNumber
	HeaderChecksum   uint16
	Source           common.IPv4Address
	Destination      common.IPv4Address
	Options          []byte // multiple of 4 bytes, <= MaxOptionsLen
}

// Extensions carries the one currently representable IPv4 extension:
// an IPsec Authentication Header sitting between the IPv4 header and
// the upper-layer payload.
type Extensions struct {
	Auth *ipauth.Header
}

// ihl returns the Internet Header Length in 4-byte words.
func (h Header) ihl() uint8 {
	return uint8((MinHeaderLen + len(h.Options)) / 4)
}

// HeaderLen returns the total header length in bytes, options included.
func (h Header) HeaderLen() int {
	return MinHeaderLen + len(h.Options)
}

// Validate checks the invariants this library enforces on construction:
// options must be a non-negative multiple of 4 bytes not exceeding
// MaxOptionsLen.
func (h Header) Validate() error {
	if len(h.Options)%4 != 0 || len(h.Options) > MaxOptionsLen {
		return neterr.NewValueError(neterr.Ipv4OptionsLengthBad,
			fmt.Sprintf("ipv4 options length %d must be a multiple of 4 and at most %d", len(h.Options), MaxOptionsLen))
	}
	return nil
}

// Read parses an IPv4 header from c. The header checksum is not
// verified here; callers use IsChecksumValid for that.
func Read(c *wire.Cursor) (Header, error) {
	var h Header

	versionIHL, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 version/ihl")
	}
	version := versionIHL >> 4
	ihl := versionIHL & 0x0F
	if version != Version {
		return h, neterr.NewReadError(neterr.IpUnsupportedVersion, c.Offset()-1, fmt.Sprintf("got version %d", version))
	}
	if ihl < 5 {
		return h, neterr.NewReadError(neterr.Ipv4HeaderLengthBad, c.Offset()-1, fmt.Sprintf("ihl %d is below the minimum of 5", ihl))
	}

	dscpEcn, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 dscp/ecn")
	}
	h.DSCP = dscpEcn >> 2
	h.ECN = dscpEcn & 0x03

	totalLength, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 total length")
	}
	h.TotalLength = totalLength
	if int(totalLength) < int(ihl)*4 {
		return h, neterr.NewReadError(neterr.Ipv4TotalLengthTooSmall, c.Offset(),
			fmt.Sprintf("total length %d is smaller than the header length %d", totalLength, int(ihl)*4))
	}

	ident, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 identification")
	}
	h.Identification = ident

	flagsFrag, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 flags/fragment offset")
	}
	h.Flags = Flags{
		DontFragment:  flagsFrag&0x4000 != 0,
		MoreFragments: flagsFrag&0x2000 != 0,
	}
	h.FragmentsOffset = flagsFrag & 0x1FFF

	ttl, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 ttl")
	}
	h.TimeToLive = ttl

	proto, err := c.TakeByte()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 protocol")
	}
	h.Protocol = common.IPNumber(proto)

	chk, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 checksum")
	}
	h.HeaderChecksum = chk

	src, err := c.Take(4)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 source address")
	}
	copy(h.Source[:], src)

	dst, err := c.Take(4)
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 destination address")
	}
	copy(h.Destination[:], dst)

	optionsLen := int(ihl)*4 - MinHeaderLen
	if optionsLen > 0 {
		opts, err := c.Take(optionsLen)
		if err != nil {
			return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv4 options")
		}
		optsStart := c.Offset() - optionsLen
		for i := 0; i < len(opts) && opts[i] != 0; { // kind 0 ends the option list
			if opts[i] == 1 { // no-operation, single byte
				i++
				continue
			}
			if i+1 >= len(opts) || opts[i+1] < 2 || i+int(opts[i+1]) > len(opts) {
				return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, optsStart+i,
					fmt.Sprintf("ipv4 option kind %d has a length that does not fit the options area", opts[i]))
			}
			i += int(opts[i+1])
		}
		h.Options = append([]byte(nil), opts...)
	}

	return h, nil
}

// ToBytesWithChecksum serializes the header with a freshly computed
// header checksum, ignoring whatever value HeaderChecksum currently holds.
func (h Header) ToBytesWithChecksum() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, h.HeaderLen())
	h.encodeInto(buf, 0)
	sum := checksum.Of(buf[:h.HeaderLen()])
	wire.PutUint16(buf[10:12], sum)
	return buf, nil
}

// encodeInto writes the fixed fields and options into buf, filling the
// checksum field with checksumField rather than h.HeaderChecksum
// (callers that need a fresh checksum overwrite it afterwards).
func (h Header) encodeInto(buf []byte, checksumField uint16) {
	buf[0] = (Version << 4) | h.ihl()
	buf[1] = (h.DSCP << 2) | h.ECN
	wire.PutUint16(buf[2:4], h.TotalLength)
	wire.PutUint16(buf[4:6], h.Identification)

	flagsFrag := h.FragmentsOffset & 0x1FFF
	if h.Flags.DontFragment {
		flagsFrag |= 0x4000
	}
	if h.Flags.MoreFragments {
		flagsFrag |= 0x2000
	}
	wire.PutUint16(buf[6:8], flagsFrag)

	buf[8] = h.TimeToLive
	buf[9] = uint8(h.Protocol)
	wire.PutUint16(buf[10:12], checksumField)
	copy(buf[12:16], h.Source[:])
	copy(buf[16:20], h.Destination[:])
	copy(buf[20:], h.Options)
}

// Write serializes the header (with a freshly computed checksum) to w.
func (h Header) Write(w io.Writer) error {
	buf, err := h.ToBytesWithChecksum()
	if err != nil {
		return neterr.FromValueError(err.(*neterr.ValueError))
	}
	if _, err := w.Write(buf); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

// IsChecksumValid reports whether the header's checksum field matches
// a fresh computation over the raw header bytes.
func IsChecksumValid(raw []byte) bool {
	return checksum.IsValid(raw)
}

func (h Header) String() string {
	return fmt.Sprintf("Ipv4Header{%s -> %s, Protocol=%s, TTL=%d, ID=%d, TotalLength=%d}",
		h.Source, h.Destination, h.Protocol, h.TimeToLive, h.Identification, h.TotalLength)
}

package ipv6

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipauth"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// maxExtensionHeaders bounds the extension chain walk so a
// maliciously or accidentally cyclic next-header sequence cannot spin
// forever; RFC 8200's canonical chain never legitimately needs more
// than six.
const maxExtensionHeaders = 8

// GenericExtension is the common wire shape shared by the
// Hop-by-Hop Options, Destination Options, and Routing headers: a
// next-header byte, a length byte expressed in 8-byte units minus one,
// and a variable-length options/data area.
type GenericExtension struct {
	NextHeader common.IPNumber
	Data       []byte // everything after the next-header and length bytes
}

// HeaderLen returns this extension's total wire length (2 fixed bytes
// plus Data, always a multiple of 8).
func (g GenericExtension) HeaderLen() int {
	return 2 + len(g.Data)
}

func readGenericExtension(c *wire.Cursor) (GenericExtension, common.IPNumber, error) {
	var g GenericExtension
	nextHeader, err := c.TakeByte()
	if err != nil {
		return g, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 extension next header")
	}
	g.NextHeader = common.IPNumber(nextHeader)

	lenField, err := c.TakeByte()
	if err != nil {
		return g, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 extension length")
	}
	dataLen := (int(lenField)+1)*8 - 2
	data, err := c.Take(dataLen)
	if err != nil {
		return g, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 extension data")
	}
	g.Data = append([]byte(nil), data...)
	return g, g.NextHeader, nil
}

// ToBytes serializes the extension back to wire form.
func (g GenericExtension) ToBytes() []byte {
	buf := make([]byte, 2+len(g.Data))
	buf[0] = uint8(g.NextHeader)
	buf[1] = uint8((len(g.Data)+2)/8 - 1)
	copy(buf[2:], g.Data)
	return buf
}

// FragmentHeader is the fixed 8-byte IPv6 Fragment extension header
// (RFC 8200 section 4.5).
type FragmentHeader struct {
	NextHeader     common.IPNumber
	FragmentOffset uint16 // 13 bits, in 8-byte units
	MoreFragments  bool
	Identification uint32
}

// HeaderLen is always 8 for a fragment header.
func (FragmentHeader) HeaderLen() int { return 8 }

func readFragmentHeader(c *wire.Cursor) (FragmentHeader, common.IPNumber, error) {
	var f FragmentHeader
	nextHeader, err := c.TakeByte()
	if err != nil {
		return f, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 fragment next header")
	}
	f.NextHeader = common.IPNumber(nextHeader)

	if _, err := c.TakeByte(); err != nil { // reserved
		return f, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 fragment reserved")
	}

	offsetFlags, err := c.TakeUint16()
	if err != nil {
		return f, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 fragment offset/flags")
	}
	f.FragmentOffset = offsetFlags >> 3
	f.MoreFragments = offsetFlags&0x1 != 0

	ident, err := c.TakeUint32()
	if err != nil {
		return f, 0, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "ipv6 fragment identification")
	}
	f.Identification = ident

	return f, f.NextHeader, nil
}

// ToBytes serializes the fragment header into a new 8-byte slice.
func (f FragmentHeader) ToBytes() []byte {
	buf := make([]byte, 8)
	buf[0] = uint8(f.NextHeader)
	// buf[1] reserved, left zero
	offsetFlags := f.FragmentOffset << 3
	if f.MoreFragments {
		offsetFlags |= 0x1
	}
	wire.PutUint16(buf[2:4], offsetFlags)
	wire.PutUint32(buf[4:8], f.Identification)
	return buf
}

// Extensions is the chain of optional IPv6 extension headers that can
// sit between the fixed header and the upper-layer payload, ordered
// per RFC 8200 section 4.1: Hop-by-Hop, Destination Options (for
// routing header), Routing, Fragment, Authentication, Destination
// Options (final), then the upper-layer protocol.
type Extensions struct {
	HopByHop         *GenericExtension
	Destination      *GenericExtension
	Routing          *GenericExtension
	Fragment         *FragmentHeader
	Auth             *ipauth.Header
	FinalDestination *GenericExtension
}

// ReadExtensions walks the extension chain starting at firstHeader
// (normally the IPv6 fixed header's NextHeader) and returns the
// populated chain and the upper-layer protocol number. It rejects a
// Hop-by-Hop header that does not directly follow the fixed header, a
// repeated Hop-by-Hop, Routing, Fragment or Authentication header, and
// a Destination Options header once Destination and FinalDestination
// are both filled; the relative order of the other headers is not
// checked.
func ReadExtensions(firstHeader common.IPNumber, c *wire.Cursor) (Extensions, common.IPNumber, error) {
	var ext Extensions
	next := firstHeader
	seenNonHopByHop := false

	for i := 0; i < maxExtensionHeaders; i++ {
		switch next {
		case common.IPNumberIPv6HopByHop:
			if seenNonHopByHop {
				return ext, next, neterr.NewReadError(neterr.Ipv6HopByHopNotAtStart, c.Offset(),
					"hop-by-hop options header must immediately follow the ipv6 header")
			}
			if ext.HopByHop != nil {
				return ext, next, neterr.NewReadError(neterr.Ipv6DuplicateExtensionHeader, c.Offset(), "duplicate hop-by-hop options header")
			}
			g, nh, err := readGenericExtension(c)
			if err != nil {
				return ext, next, err
			}
			ext.HopByHop = &g
			next = nh
			continue

		case common.IPNumberIPv6Opts:
			seenNonHopByHop = true
			g, nh, err := readGenericExtension(c)
			if err != nil {
				return ext, next, err
			}
			if ext.Destination == nil && ext.Routing == nil {
				ext.Destination = &g
			} else if ext.FinalDestination == nil {
				ext.FinalDestination = &g
			} else {
				return ext, next, neterr.NewReadError(neterr.Ipv6DuplicateExtensionHeader, c.Offset(), "duplicate destination options header")
			}
			next = nh
			continue

		case common.IPNumberIPv6Route:
			seenNonHopByHop = true
			if ext.Routing != nil {
				return ext, next, neterr.NewReadError(neterr.Ipv6DuplicateExtensionHeader, c.Offset(), "duplicate routing header")
			}
			g, nh, err := readGenericExtension(c)
			if err != nil {
				return ext, next, err
			}
			ext.Routing = &g
			next = nh
			continue

		case common.IPNumberIPv6Fragment:
			seenNonHopByHop = true
			if ext.Fragment != nil {
				return ext, next, neterr.NewReadError(neterr.Ipv6DuplicateExtensionHeader, c.Offset(), "duplicate fragment header")
			}
			f, nh, err := readFragmentHeader(c)
			if err != nil {
				return ext, next, err
			}
			ext.Fragment = &f
			next = nh
			continue

		case common.IPNumberAH:
			seenNonHopByHop = true
			if ext.Auth != nil {
				return ext, next, neterr.NewReadError(neterr.Ipv6DuplicateExtensionHeader, c.Offset(), "duplicate authentication header")
			}
			a, err := ipauth.Read(c)
			if err != nil {
				return ext, next, err
			}
			ext.Auth = &a
			next = common.IPNumber(a.NextHeader)
			continue

		default:
			return ext, next, nil
		}
	}

	return ext, next, neterr.NewReadError(neterr.Ipv6TooManyHeaderExtensions, c.Offset(),
		fmt.Sprintf("exceeded %d chained extension headers", maxExtensionHeaders))
}

// HeaderLen returns the combined wire length of all configured extensions.
func (e Extensions) HeaderLen() int {
	total := 0
	if e.HopByHop != nil {
		total += e.HopByHop.HeaderLen()
	}
	if e.Destination != nil {
		total += e.Destination.HeaderLen()
	}
	if e.Routing != nil {
		total += e.Routing.HeaderLen()
	}
	if e.Fragment != nil {
		total += e.Fragment.HeaderLen()
	}
	if e.Auth != nil {
		total += e.Auth.HeaderLen()
	}
	if e.FinalDestination != nil {
		total += e.FinalDestination.HeaderLen()
	}
	return total
}

// ToBytes serializes the extension chain in RFC 8200 canonical order.
func (e Extensions) ToBytes() ([]byte, error) {
	buf := make([]byte, 0, e.HeaderLen())
	if e.HopByHop != nil {
		buf = append(buf, e.HopByHop.ToBytes()...)
	}
	if e.Destination != nil {
		buf = append(buf, e.Destination.ToBytes()...)
	}
	if e.Routing != nil {
		buf = append(buf, e.Routing.ToBytes()...)
	}
	if e.Fragment != nil {
		buf = append(buf, e.Fragment.ToBytes()...)
	}
	if e.Auth != nil {
		authBytes, err := e.Auth.ToBytes()
		if err != nil {
			return nil, err
		}
		buf = append(buf, authBytes...)
	}
	if e.FinalDestination != nil {
		buf = append(buf, e.FinalDestination.ToBytes()...)
	}
	return buf, nil
}

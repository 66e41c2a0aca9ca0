package tcp

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// Option kind bytes this library recognizes by name; anything else
// surfaces as OptionUnknown.
const (
	OptionKindEnd           = 0
	OptionKindNoop          = 1
	OptionKindMSS           = 2
	OptionKindWindowScale   = 3
	OptionKindSackPermitted = 4
	OptionKindSack          = 5
	OptionKindTimestamp     = 8
)

// TcpOption is the sealed set of TCP option shapes this library
// decodes by name. The unexported marker method keeps the set closed
// to this package.
type TcpOption interface {
	isTcpOption()
}

// OptionEnd is the End-of-Option-List marker (kind 0, single byte).
type OptionEnd struct{}

func (OptionEnd) isTcpOption() {}

// OptionNoop is a single no-op padding byte (kind 1).
type OptionNoop struct{}

func (OptionNoop) isTcpOption() {}

// OptionMaxSegmentSize is the MSS option (kind 2, length 4).
type OptionMaxSegmentSize struct {
	MSS uint16
}

func (OptionMaxSegmentSize) isTcpOption() {}

// OptionWindowScale is the window scale option (kind 3, length 3).
type OptionWindowScale struct {
	ShiftCount uint8
}

func (OptionWindowScale) isTcpOption() {}

// OptionSackPermitted announces SACK support (kind 4, length 2).
type OptionSackPermitted struct{}

func (OptionSackPermitted) isTcpOption() {}

// SackBlock is one left/right edge pair within an OptionSack.
type SackBlock struct {
	LeftEdge  uint32
	RightEdge uint32
}

// OptionSack carries one or more SACK blocks (kind 5, variable length:
// 2 + 8*len(Blocks)).
type OptionSack struct {
	Blocks []SackBlock
}

func (OptionSack) isTcpOption() {}

// OptionTimestamp is the timestamp option (kind 8, length 10).
type OptionTimestamp struct {
	TSValue     uint32
	TSEchoReply uint32
}

func (OptionTimestamp) isTcpOption() {}

// OptionUnknown is any option kind this library does not interpret,
// surfaced verbatim when its declared length is internally consistent.
type OptionUnknown struct {
	Kind uint8
	Data []byte
}

func (OptionUnknown) isTcpOption() {}

// OptionsIterator decodes a TCP option TLV chain one option at a time,
// so a caller can keep everything successfully decoded before a
// malformed option is reached instead of losing it to a single
// all-or-nothing parse.
type OptionsIterator struct {
	c    *wire.Cursor
	done bool
}

// NewOptionsIterator wraps raw TCP option bytes (Header.Options) for iteration.
func NewOptionsIterator(raw []byte) *OptionsIterator {
	return &OptionsIterator{c: wire.NewCursor(raw)}
}

// Next decodes the next option. ok is false once the iterator is
// exhausted or has hit End-of-Option-List; err is non-nil only when a
// malformed option was encountered, after which the iterator is done.
func (it *OptionsIterator) Next() (opt TcpOption, ok bool, err error) {
	if it.done || it.c.Remaining() == 0 {
		return nil, false, nil
	}

	kind, takeErr := it.c.TakeByte()
	if takeErr != nil {
		it.done = true
		return nil, false, nil
	}

	switch kind {
	case OptionKindEnd:
		it.done = true
		return nil, false, nil
	case OptionKindNoop:
		return OptionNoop{}, true, nil
	}

	length, lenErr := it.c.TakeByte()
	if lenErr != nil {
		it.done = true
		return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), fmt.Sprintf("option kind %d missing length byte", kind))
	}
	if length < 2 {
		it.done = true
		return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset()-1, fmt.Sprintf("option kind %d declares length %d below the 2-byte minimum", kind, length))
	}

	dataLen := int(length) - 2
	data, dataErr := it.c.Take(dataLen)
	if dataErr != nil {
		it.done = true
		return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), fmt.Sprintf("option kind %d declares length %d past the end of the options area", kind, length))
	}

	switch kind {
	case OptionKindMSS:
		if len(data) != 2 {
			it.done = true
			return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), "mss option must have length 4")
		}
		return OptionMaxSegmentSize{MSS: wire.ReadUint16(data)}, true, nil

	case OptionKindWindowScale:
		if len(data) != 1 {
			it.done = true
			return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), "window scale option must have length 3")
		}
		return OptionWindowScale{ShiftCount: data[0]}, true, nil

	case OptionKindSackPermitted:
		if len(data) != 0 {
			it.done = true
			return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), "sack-permitted option must have length 2")
		}
		return OptionSackPermitted{}, true, nil

	case OptionKindSack:
		if len(data)%8 != 0 {
			it.done = true
			return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), "sack option data must be a multiple of 8 bytes")
		}
		blocks := make([]SackBlock, 0, len(data)/8)
		for off := 0; off < len(data); off += 8 {
			blocks = append(blocks, SackBlock{
				LeftEdge:  wire.ReadUint32(data[off : off+4]),
				RightEdge: wire.ReadUint32(data[off+4 : off+8]),
			})
		}
		return OptionSack{Blocks: blocks}, true, nil

	case OptionKindTimestamp:
		if len(data) != 8 {
			it.done = true
			return nil, false, neterr.NewReadError(neterr.TcpOptionLengthInvalid, it.c.Offset(), "timestamp option must have length 10")
		}
		return OptionTimestamp{TSValue: wire.ReadUint32(data[0:4]), TSEchoReply: wire.ReadUint32(data[4:8])}, true, nil

	default:
		return OptionUnknown{Kind: kind, Data: append([]byte(nil), data...)}, true, nil
	}
}

// ParseAllOptions drains the iterator, returning every option decoded
// before either exhaustion or a malformed option. err is non-nil only
// in the latter case; the returned slice still holds everything
// decoded up to that point.
func ParseAllOptions(raw []byte) ([]TcpOption, error) {
	it := NewOptionsIterator(raw)
	var opts []TcpOption
	for {
		opt, ok, err := it.Next()
		if err != nil {
			return opts, err
		}
		if !ok {
			return opts, nil
		}
		opts = append(opts, opt)
	}
}

// ToBytes serializes a single option back to its TLV wire form.
func ToBytes(opt TcpOption) []byte {
	switch o := opt.(type) {
	case OptionEnd:
		return []byte{OptionKindEnd}
	case OptionNoop:
		return []byte{OptionKindNoop}
	case OptionMaxSegmentSize:
		buf := []byte{OptionKindMSS, 4, 0, 0}
		wire.PutUint16(buf[2:4], o.MSS)
		return buf
	case OptionWindowScale:
		return []byte{OptionKindWindowScale, 3, o.ShiftCount}
	case OptionSackPermitted:
		return []byte{OptionKindSackPermitted, 2}
	case OptionSack:
		buf := []byte{OptionKindSack, uint8(2 + 8*len(o.Blocks))}
		for _, b := range o.Blocks {
			edge := make([]byte, 8)
			wire.PutUint32(edge[0:4], b.LeftEdge)
			wire.PutUint32(edge[4:8], b.RightEdge)
			buf = append(buf, edge...)
		}
		return buf
	case OptionTimestamp:
		buf := make([]byte, 10)
		buf[0] = OptionKindTimestamp
		buf[1] = 10
		wire.PutUint32(buf[2:6], o.TSValue)
		wire.PutUint32(buf[6:10], o.TSEchoReply)
		return buf
	case OptionUnknown:
		buf := []byte{o.Kind, uint8(2 + len(o.Data))}
		return append(buf, o.Data...)
	default:
		return nil
	}
}

// EncodeOptions serializes a sequence of options and pads the result
// to a 4-byte boundary with End-of-Option-List bytes, matching what a
// builder needs before setting DataOffset.
func EncodeOptions(opts []TcpOption) []byte {
	var buf []byte
	for _, opt := range opts {
		buf = append(buf, ToBytes(opt)...)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, OptionKindEnd)
	}
	return buf
}

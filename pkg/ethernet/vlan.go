package ethernet

import (
	"fmt"
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// VlanHeaderLen is the fixed size of a single 802.1Q/802.1ad tag: 2 bytes
// TCI (pcp:3, dei:1, vid:12) + 2 bytes ether-type/TPID of the next header.
const VlanHeaderLen = 4

// VlanHeader is the sealed set of VLAN tag shapes this library
// understands: a single tag, or an outer+inner double tag (Q-in-Q).
// The unexported method keeps the set closed to this package, the
// idiomatic Go stand-in for a Rust-style exhaustive enum.
type VlanHeader interface {
	isVlanHeader()
}

// SingleVlanHeader is one 802.1Q/802.1ad tag.
type SingleVlanHeader struct {
	PriorityCodePoint     uint8 // 3 bits
	DropEligibleIndicator bool
	VlanIdentifier        uint16 // 12 bits
	EtherType             common.EtherType
}

func (SingleVlanHeader) isVlanHeader() {}

// DoubleVlanHeader is an outer tag (the one that appears directly after
// the Ethernet header, ether-type 0x8100/0x88A8/0x9100) followed by an
// inner tag.
type DoubleVlanHeader struct {
	Outer SingleVlanHeader
	Inner SingleVlanHeader
}

func (DoubleVlanHeader) isVlanHeader() {}

// ReadSingleVlan parses one VLAN tag: 2 bytes TCI, 2 bytes ether-type.
func ReadSingleVlan(c *wire.Cursor) (SingleVlanHeader, error) {
	var h SingleVlanHeader
	tci, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "vlan tci")
	}
	h.PriorityCodePoint = uint8(tci >> 13)
	h.DropEligibleIndicator = (tci>>12)&0x1 != 0
	h.VlanIdentifier = tci & 0x0FFF

	et, err := c.TakeUint16()
	if err != nil {
		return h, neterr.NewReadError(neterr.UnexpectedEndOfSlice, c.Offset(), "vlan ether-type")
	}
	h.EtherType = common.EtherType(et)
	return h, nil
}

// ToBytes serializes a single VLAN tag into a new 4-byte slice.
func (h SingleVlanHeader) ToBytes() []byte {
	buf := make([]byte, VlanHeaderLen)
	tci := uint16(h.PriorityCodePoint&0x7) << 13
	if h.DropEligibleIndicator {
		tci |= 0x1000
	}
	tci |= h.VlanIdentifier & 0x0FFF
	wire.PutUint16(buf[0:2], tci)
	wire.PutUint16(buf[2:4], uint16(h.EtherType))
	return buf
}

// Write serializes the tag to w.
func (h SingleVlanHeader) Write(w io.Writer) error {
	if _, err := w.Write(h.ToBytes()); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

func (h SingleVlanHeader) String() string {
	return fmt.Sprintf("VlanTag{PCP=%d, DEI=%v, VID=%d, EtherType=%s}",
		h.PriorityCodePoint, h.DropEligibleIndicator, h.VlanIdentifier, h.EtherType)
}

// ReadDoubleVlan parses an outer tag followed by an inner tag. The
// caller is expected to have already checked that the preceding
// ether-type was one of the recognized outer TPIDs.
func ReadDoubleVlan(c *wire.Cursor) (DoubleVlanHeader, error) {
	var h DoubleVlanHeader
	outer, err := ReadSingleVlan(c)
	if err != nil {
		return h, err
	}
	h.Outer = outer

	inner, err := ReadSingleVlan(c)
	if err != nil {
		return h, err
	}
	h.Inner = inner
	return h, nil
}

// ToBytes serializes both tags back to back into a new 8-byte slice.
func (h DoubleVlanHeader) ToBytes() []byte {
	buf := make([]byte, 0, VlanHeaderLen*2)
	buf = append(buf, h.Outer.ToBytes()...)
	buf = append(buf, h.Inner.ToBytes()...)
	return buf
}

// Write serializes both tags to w.
func (h DoubleVlanHeader) Write(w io.Writer) error {
	if _, err := w.Write(h.ToBytes()); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

func (h DoubleVlanHeader) String() string {
	return fmt.Sprintf("DoubleVlan{Outer=%s, Inner=%s}", h.Outer, h.Inner)
}

// IsOuterVlanEtherType reports whether et is one of the recognized
// outer VLAN tag protocol identifiers (C-Tag, S-Tag, or legacy Q-in-Q).
func IsOuterVlanEtherType(et common.EtherType) bool {
	return et.IsVlanTag()
}

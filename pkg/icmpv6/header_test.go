package icmpv6

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestEchoRequestRoundTrip(t *testing.T) {
	h := Header{Variant: VariantEchoRequest{Identifier: 1, SequenceNumber: 2}}
	raw := h.ToBytes()
	require.Len(t, raw, BaseLen)

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestPacketTooBigRoundTrip(t *testing.T) {
	h := Header{Variant: VariantPacketTooBig{MTU: 1280}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestNeighborSolicitationRoundTrip(t *testing.T) {
	h := Header{Variant: VariantNeighborSolicitation{}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestNeighborAdvertisementFlagsRoundTrip(t *testing.T) {
	h := Header{Variant: VariantNeighborAdvertisement{Router: true, Solicited: true, Override: false}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestRouterAdvertisementRoundTrip(t *testing.T) {
	h := Header{Variant: VariantRouterAdvertisement{CurHopLimit: 64, ManagedConfig: true, RouterLifetime: 1800}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestUnknownType(t *testing.T) {
	raw := []byte{250, 3, 0, 0, 1, 2, 3, 4}
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, VariantUnknown{Type: 250, Code: 3, Bytes5To8: [4]byte{1, 2, 3, 4}}, got.Variant)
}

func TestWrite(t *testing.T) {
	h := Header{Variant: VariantRedirect{}}
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	require.Equal(t, h.ToBytes(), buf.Bytes())
}

func TestChecksumIPv6Deterministic(t *testing.T) {
	h := Header{Variant: VariantEchoRequest{Identifier: 9, SequenceNumber: 1}}
	var src, dst common.IPv6Address
	payload := []byte{1, 2, 3, 4}
	got := ChecksumIPv6(h, src, dst, payload)
	again := ChecksumIPv6(h, src, dst, payload)
	require.Equal(t, got, again)
}

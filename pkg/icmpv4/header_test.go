package icmpv4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestEchoRequestRoundTrip(t *testing.T) {
	h := Header{Variant: VariantEchoRequest{Identifier: 42, SequenceNumber: 7}}
	raw := h.ToBytes()
	require.Len(t, raw, BaseLen)

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestDestinationUnreachableFragNeeded(t *testing.T) {
	h := Header{Variant: VariantDestinationUnreachable{Code: 4, NextHopMTU: 1400}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestTimeExceeded(t *testing.T) {
	h := Header{Variant: VariantTimeExceeded{Code: 1}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestRedirect(t *testing.T) {
	h := Header{Variant: VariantRedirect{Code: 0, GatewayAddress: [4]byte{10, 0, 0, 1}}}
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h.Variant, got.Variant)
}

func TestTimestampRequestFixedPayloadSize(t *testing.T) {
	h := Header{Variant: VariantTimestampRequest{Identifier: 1, SequenceNumber: 2}}
	require.Equal(t, 12, FixedPayloadSize(h.Variant))
}

func TestEchoVariablePayloadSize(t *testing.T) {
	h := Header{Variant: VariantEchoRequest{}}
	require.Equal(t, -1, FixedPayloadSize(h.Variant))
}

func TestUnknownType(t *testing.T) {
	raw := []byte{200, 1, 0, 0, 9, 9, 9, 9}
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, VariantUnknown{Type: 200, Code: 1, Bytes5To8: [4]byte{9, 9, 9, 9}}, got.Variant)
}

func TestWrite(t *testing.T) {
	h := Header{Variant: VariantEchoReply{Identifier: 5, SequenceNumber: 6}}
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	require.Equal(t, h.ToBytes(), buf.Bytes())
}

func TestChecksumOfDeterministic(t *testing.T) {
	h := Header{Variant: VariantEchoRequest{Identifier: 1, SequenceNumber: 1}}
	payload := []byte{1, 2, 3, 4}
	got := ChecksumOf(h, payload)
	again := ChecksumOf(h, payload)
	require.Equal(t, got, again)
}

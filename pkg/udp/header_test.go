package udp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestHeaderRoundTrip(t *testing.T) {
	h, err := New(22, 23, 4)
	require.NoError(t, err)
	h.Checksum = 0xBEEF
	raw := h.ToBytes()
	require.Len(t, raw, HeaderLen)

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestNewRejectsOversizedPayload(t *testing.T) {
	_, err := New(1, 1, 0xFFFF)
	require.Error(t, err)
}

func TestReadRejectsShortLength(t *testing.T) {
	buf := make([]byte, HeaderLen)
	wire.PutUint16(buf[4:6], 4) // smaller than the 8-byte header
	c := wire.NewCursor(buf)
	_, err := Read(c)
	require.Error(t, err)
}

func TestWrite(t *testing.T) {
	h, err := New(1, 2, 0)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	require.Equal(t, h.ToBytes(), buf.Bytes())
}

func TestChecksumIPv4NonZeroDeterministic(t *testing.T) {
	payload := []byte{24, 25, 26, 27}
	h, err := New(22, 23, len(payload))
	require.NoError(t, err)
	src := common.IPv4Address{13, 14, 15, 16}
	dst := common.IPv4Address{17, 18, 19, 20}

	got := ChecksumIPv4(h, src, dst, payload)
	require.NotZero(t, got)

	// recomputing twice must be deterministic
	again := ChecksumIPv4(h, src, dst, payload)
	require.Equal(t, got, again)
}

func TestChecksumIPv6Deterministic(t *testing.T) {
	payload := []byte{32, 33, 34, 35}
	h, err := New(48, 49, len(payload))
	require.NoError(t, err)
	var src, dst common.IPv6Address
	for i := 0; i < 16; i++ {
		src[i] = byte(11 + i)
		dst[i] = byte(31 + i)
	}
	got := ChecksumIPv6(h, src, dst, payload)
	again := ChecksumIPv6(h, src, dst, payload)
	require.Equal(t, got, again)
}

package ipv4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func baseHeader() Header {
	return Header{
		TimeToLive:  21,
		Protocol:    common.IPNumberUDP,
		Source:      common.IPv4Address{17, 18, 19, 20},
		Destination: common.IPv4Address{21, 22, 23, 24},
		TotalLength: 32,
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := baseHeader()
	raw, err := h.ToBytesWithChecksum()
	require.NoError(t, err)
	require.Len(t, raw, MinHeaderLen)
	require.True(t, IsChecksumValid(raw))

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	got.HeaderChecksum = h.HeaderChecksum // checksum is computed, compare structurally below
	h.HeaderChecksum = got.HeaderChecksum
	require.Equal(t, h, got)
}

func TestHeaderWithOptions(t *testing.T) {
	h := baseHeader()
	h.Options = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	raw, err := h.ToBytesWithChecksum()
	require.NoError(t, err)
	require.Len(t, raw, MinHeaderLen+8)
	require.Equal(t, uint8(7), h.ihl())
}

func TestHeaderRejectsBadOptionsLength(t *testing.T) {
	h := baseHeader()
	h.Options = []byte{1, 2, 3}
	_, err := h.ToBytesWithChecksum()
	require.Error(t, err)
}

func TestReadRejectsWrongVersion(t *testing.T) {
	raw := make([]byte, MinHeaderLen)
	raw[0] = 0x60 // version 6
	c := wire.NewCursor(raw)
	_, err := Read(c)
	require.Error(t, err)
}

func TestReadRejectsShortIHL(t *testing.T) {
	raw := make([]byte, MinHeaderLen)
	raw[0] = 0x44 // version 4, ihl 4
	c := wire.NewCursor(raw)
	_, err := Read(c)
	require.Error(t, err)
}

func TestReadRejectsTotalLengthTooSmall(t *testing.T) {
	h := baseHeader()
	raw, err := h.ToBytesWithChecksum()
	require.NoError(t, err)
	wire.PutUint16(raw[2:4], 4) // smaller than header length
	c := wire.NewCursor(raw)
	_, err = Read(c)
	require.Error(t, err)
}

func TestWrite(t *testing.T) {
	h := baseHeader()
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	raw, _ := h.ToBytesWithChecksum()
	require.Equal(t, raw, buf.Bytes())
}

func TestDontFragmentFlagRoundTrip(t *testing.T) {
	h := baseHeader()
	h.Flags.DontFragment = true
	raw, err := h.ToBytesWithChecksum()
	require.NoError(t, err)
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.True(t, got.Flags.DontFragment)
	require.False(t, got.Flags.MoreFragments)
}

package ipv6

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func baseHeader() Header {
	src, dst := common.IPv6Address{}, common.IPv6Address{}
	for i := 0; i < 16; i++ {
		src[i] = byte(11 + i)
		dst[i] = byte(31 + i)
	}
	return Header{
		HopLimit:      47,
		NextHeader:    common.IPNumberUDP,
		Source:        src,
		Destination:   dst,
		PayloadLength: 12,
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := baseHeader()
	raw := h.ToBytes()
	require.Len(t, raw, HeaderLen)

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderFlowLabelMasking(t *testing.T) {
	h := baseHeader()
	h.FlowLabel = 0xFFFFFFFF // only low 20 bits should survive
	raw := h.ToBytes()
	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, uint32(0x000FFFFF), got.FlowLabel)
}

func TestReadRejectsWrongVersion(t *testing.T) {
	raw := make([]byte, HeaderLen)
	raw[0] = 0x40 // version 4
	c := wire.NewCursor(raw)
	_, err := Read(c)
	require.Error(t, err)
}

func TestWrite(t *testing.T) {
	h := baseHeader()
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	require.Equal(t, h.ToBytes(), buf.Bytes())
}

func TestReadTooShort(t *testing.T) {
	c := wire.NewCursor(make([]byte, 10))
	_, err := Read(c)
	require.Error(t, err)
}

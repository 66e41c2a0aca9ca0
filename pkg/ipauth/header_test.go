package ipauth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestNewEmptyICV(t *testing.T) {
	h, err := New(6, 0x1234, 1, nil)
	require.NoError(t, err)
	require.Equal(t, MinHeaderLen, h.HeaderLen())
}

func TestNewRejectsNonMultipleOf4(t *testing.T) {
	_, err := New(6, 1, 1, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	h, err := New(6, 0xAABBCCDD, 42, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	raw, err := h.ToBytes()
	require.NoError(t, err)
	require.Equal(t, h.HeaderLen(), len(raw))

	c := wire.NewCursor(raw)
	got, err := Read(c)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestWrite(t *testing.T) {
	h, err := New(17, 1, 1, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))
	raw, _ := h.ToBytes()
	require.Equal(t, raw, buf.Bytes())
}

func TestReadTooShort(t *testing.T) {
	c := wire.NewCursor([]byte{1, 2, 3})
	_, err := Read(c)
	require.Error(t, err)
}

func TestPayloadLenFieldOverflow(t *testing.T) {
	icv := make([]byte, 0xFF*4+8) // way past a byte's worth of 4-byte units
	_, err := New(6, 1, 1, icv)
	require.Error(t, err)
}

package tcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAllOptionsMSSAndNoop(t *testing.T) {
	raw := EncodeOptions([]TcpOption{OptionMaxSegmentSize{MSS: 1234}, OptionNoop{}})
	opts, err := ParseAllOptions(raw)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	require.Equal(t, OptionMaxSegmentSize{MSS: 1234}, opts[0])
	require.Equal(t, OptionNoop{}, opts[1])
}

func TestParseAllOptionsWindowScaleSackPermittedTimestamp(t *testing.T) {
	raw := EncodeOptions([]TcpOption{
		OptionWindowScale{ShiftCount: 7},
		OptionSackPermitted{},
		OptionTimestamp{TSValue: 111, TSEchoReply: 222},
	})
	opts, err := ParseAllOptions(raw)
	require.NoError(t, err)
	require.Equal(t, []TcpOption{
		OptionWindowScale{ShiftCount: 7},
		OptionSackPermitted{},
		OptionTimestamp{TSValue: 111, TSEchoReply: 222},
	}, opts)
}

func TestParseAllOptionsSackBlocks(t *testing.T) {
	raw := EncodeOptions([]TcpOption{
		OptionSack{Blocks: []SackBlock{{LeftEdge: 1, RightEdge: 2}, {LeftEdge: 3, RightEdge: 4}}},
	})
	opts, err := ParseAllOptions(raw)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	sack, ok := opts[0].(OptionSack)
	require.True(t, ok)
	require.Len(t, sack.Blocks, 2)
}

func TestParseAllOptionsUnknownKind(t *testing.T) {
	raw := EncodeOptions([]TcpOption{OptionUnknown{Kind: 200, Data: []byte{9, 9}}})
	opts, err := ParseAllOptions(raw)
	require.NoError(t, err)
	require.Equal(t, []TcpOption{OptionUnknown{Kind: 200, Data: []byte{9, 9}}}, opts)
}

func TestParseAllOptionsMalformedLengthIsHardError(t *testing.T) {
	// kind 2 (MSS) declares length 4 but only supplies 1 data byte
	raw := []byte{OptionKindMSS, 4, 0xFF}
	opts, err := ParseAllOptions(raw)
	require.Error(t, err)
	require.Empty(t, opts)
}

func TestParseAllOptionsPreservesPriorValidOptionsBeforeError(t *testing.T) {
	good := EncodeOptions([]TcpOption{OptionNoop{}})[:1] // just the single NOP byte
	bad := []byte{OptionKindMSS, 4, 0xFF}                // truncated MSS
	raw := append(append([]byte{}, good...), bad...)

	opts, err := ParseAllOptions(raw)
	require.Error(t, err)
	require.Equal(t, []TcpOption{OptionNoop{}}, opts)
}

func TestEncodeOptionsPadsToFourByteBoundary(t *testing.T) {
	raw := EncodeOptions([]TcpOption{OptionWindowScale{ShiftCount: 1}}) // 3 bytes
	require.Equal(t, 0, len(raw)%4)
}

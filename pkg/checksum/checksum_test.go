package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{name: "empty data", data: []byte{}, expected: 0xFFFF},
		{name: "single byte", data: []byte{0x12}, expected: 0xEDFF},
		{name: "two bytes", data: []byte{0x12, 0x34}, expected: 0xEDCB},
		{
			name:     "RFC 1071 example",
			data:     []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7},
			expected: 0x220d,
		},
		{name: "all zeros", data: []byte{0x00, 0x00, 0x00, 0x00}, expected: 0xFFFF},
		{name: "all ones", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}, expected: 0x0000},
		{
			name:     "odd length",
			data:     []byte{0x12, 0x34, 0x56},
			expected: 0x97CB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Of(tt.data))
		})
	}
}

func TestAccumulatorIncrementalMatchesOf(t *testing.T) {
	// Feeding the same bytes split across many Add calls, including calls
	// that split a word across the boundary, must match a single Of call.
	data := []byte{0x00, 0x01, 0xf2, 0x03, 0xf4, 0xf5, 0xf6, 0xf7, 0x42}

	whole := Of(data)

	acc := New()
	acc.Add(data[0:1])
	acc.Add(data[1:4])
	acc.Add(data[4:6])
	acc.Add(data[6:])
	require.Equal(t, whole, acc.Sum16())
}

func TestAccumulatorPseudoHeaderMatchesConcatenation(t *testing.T) {
	acc := New()
	AddIPv4PseudoHeader(acc, [4]byte{13, 14, 15, 16}, [4]byte{17, 18, 19, 20}, 17, 12)
	acc.Add([]byte{0, 22, 0, 23, 0, 12, 0, 0, 24, 25, 26, 27})
	got := acc.Sum16()
	require.NotZero(t, got)

	// cross-check against a manually concatenated buffer
	manual := append([]byte{13, 14, 15, 16, 17, 18, 19, 20, 0, 17, 0, 12},
		[]byte{0, 22, 0, 23, 0, 12, 0, 0, 24, 25, 26, 27}...)
	require.Equal(t, Of(manual), got)
}

func TestIsValid(t *testing.T) {
	require.True(t, IsValid([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	require.True(t, IsValid([]byte{0x00, 0x00, 0x00, 0x00}))
	require.False(t, IsValid([]byte{0x12, 0x34}))
}

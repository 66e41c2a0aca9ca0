package ipv6

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestReadExtensionsNone(t *testing.T) {
	ext, next, err := ReadExtensions(common.IPNumberTCP, wire.NewCursor(nil))
	require.NoError(t, err)
	require.Equal(t, common.IPNumberTCP, next)
	require.Equal(t, 0, ext.HeaderLen())
}

func TestReadExtensionsHopByHopThenFragmentThenUDP(t *testing.T) {
	hop := GenericExtension{NextHeader: common.IPNumberIPv6Fragment, Data: make([]byte, 6)}
	frag := FragmentHeader{NextHeader: common.IPNumberUDP, FragmentOffset: 5, MoreFragments: true, Identification: 0xCAFEBABE}

	var raw []byte
	raw = append(raw, hop.ToBytes()...)
	raw = append(raw, frag.ToBytes()...)

	ext, next, err := ReadExtensions(common.IPNumberIPv6HopByHop, wire.NewCursor(raw))
	require.NoError(t, err)
	require.Equal(t, common.IPNumberUDP, next)
	require.NotNil(t, ext.HopByHop)
	require.NotNil(t, ext.Fragment)
	require.Equal(t, frag, *ext.Fragment)
}

func TestReadExtensionsHopByHopNotFirstRejected(t *testing.T) {
	dest := GenericExtension{NextHeader: common.IPNumberIPv6HopByHop, Data: make([]byte, 6)}
	hop := GenericExtension{NextHeader: common.IPNumberUDP, Data: make([]byte, 6)}

	var raw []byte
	raw = append(raw, dest.ToBytes()...)
	raw = append(raw, hop.ToBytes()...)

	_, _, err := ReadExtensions(common.IPNumberIPv6Opts, wire.NewCursor(raw))
	require.Error(t, err)
}

func TestReadExtensionsRejectsDuplicateRouting(t *testing.T) {
	route1 := GenericExtension{NextHeader: common.IPNumberIPv6Route, Data: make([]byte, 6)}
	route2 := GenericExtension{NextHeader: common.IPNumberUDP, Data: make([]byte, 6)}

	var raw []byte
	raw = append(raw, route1.ToBytes()...)
	raw = append(raw, route2.ToBytes()...)

	_, _, err := ReadExtensions(common.IPNumberIPv6Route, wire.NewCursor(raw))
	require.Error(t, err)
}

func TestExtensionsToBytesRoundTrip(t *testing.T) {
	hop := GenericExtension{NextHeader: common.IPNumberIPv6Route, Data: make([]byte, 6)}
	route := GenericExtension{NextHeader: common.IPNumberUDP, Data: make([]byte, 6)}
	ext := Extensions{HopByHop: &hop, Routing: &route}

	raw, err := ext.ToBytes()
	require.NoError(t, err)
	require.Equal(t, ext.HeaderLen(), len(raw))

	got, next, err := ReadExtensions(common.IPNumberIPv6HopByHop, wire.NewCursor(raw))
	require.NoError(t, err)
	require.Equal(t, common.IPNumberUDP, next)
	require.Equal(t, ext.HopByHop, got.HopByHop)
	require.Equal(t, ext.Routing, got.Routing)
}

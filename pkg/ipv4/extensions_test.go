package ipv4

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipauth"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

func TestReadExtensionsNoAuth(t *testing.T) {
	ext, proto, err := ReadExtensions(common.IPNumberUDP, wire.NewCursor(nil))
	require.NoError(t, err)
	require.Nil(t, ext.Auth)
	require.Equal(t, common.IPNumberUDP, proto)
}

func TestReadExtensionsWithAuth(t *testing.T) {
	auth, err := ipauth.New(uint8(common.IPNumberTCP), 1, 1, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	raw, err := auth.ToBytes()
	require.NoError(t, err)

	ext, nextProto, err := ReadExtensions(common.IPNumberAH, wire.NewCursor(raw))
	require.NoError(t, err)
	require.NotNil(t, ext.Auth)
	require.Equal(t, common.IPNumberTCP, nextProto)
	require.Equal(t, ext.HeaderLen(), auth.HeaderLen())
}

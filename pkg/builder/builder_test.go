package builder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ethernet"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/icmpv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv4"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipv6"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/netheader"
	"github.com/therealutkarshpriyadarshi/network/pkg/tcp"
)

func mac(b byte) common.MACAddress {
	return common.MACAddress{b, b + 1, b + 2, b + 3, b + 4, b + 5}
}

func TestBuildEthernetIpv4Udp(t *testing.T) {
	payload := []byte("hello network")
	var buf bytes.Buffer

	stage := New().
		Ethernet2(mac(1), mac(2)).
		Ipv4(common.IPv4Address{10, 0, 0, 1}, common.IPv4Address{10, 0, 0, 2}, 64).
		Udp(4000, 80)

	require.Equal(t, stage.Size(len(payload)), ethernet.HeaderLen+20+8+len(payload))
	require.NoError(t, stage.Write(&buf, payload))
	require.Equal(t, stage.Size(len(payload)), buf.Len())

	headers, err := netheader.FromEthernetSlice(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, payload, headers.Payload)
	require.Equal(t, common.EtherTypeIPv4, headers.Link.EtherType)

	ip, ok := headers.Ip.(netheader.Ipv4)
	require.True(t, ok)
	require.Equal(t, common.IPNumberUDP, ip.Header.Protocol)
	require.Equal(t, common.IPv4Address{10, 0, 0, 1}, ip.Header.Source)
	require.Equal(t, common.IPv4Address{10, 0, 0, 2}, ip.Header.Destination)

	transport, ok := headers.Transport.(netheader.Udp)
	require.True(t, ok)
	require.Equal(t, uint16(4000), transport.Header.SourcePort)
	require.Equal(t, uint16(80), transport.Header.DestinationPort)
}

func TestBuildEthernetDoubleVlanIpv6Udp(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer

	stage := New().
		Ethernet2(mac(10), mac(20)).
		DoubleVlan(100, 200).
		Ipv6(common.IPv6Address{0x20, 0x01, 0xd, 0xb8}, common.IPv6Address{0x20, 0x01, 0xd, 0xb9}, 55).
		Udp(1111, 2222)

	require.NoError(t, stage.Write(&buf, payload))

	headers, err := netheader.FromEthernetSlice(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, payload, headers.Payload)
	require.Equal(t, common.EtherTypeProviderBridging, headers.Link.EtherType)

	double, ok := headers.Vlan.(ethernet.DoubleVlanHeader)
	require.True(t, ok)
	require.Equal(t, uint16(100), double.Outer.VlanIdentifier)
	require.Equal(t, uint16(200), double.Inner.VlanIdentifier)
	require.Equal(t, common.EtherTypeVlanTaggedFrame, double.Outer.EtherType)
	require.Equal(t, common.EtherTypeIPv6, double.Inner.EtherType)

	ip, ok := headers.Ip.(netheader.Ipv6)
	require.True(t, ok)
	require.Equal(t, common.IPNumberUDP, ip.Header.NextHeader)
	require.Equal(t, uint8(55), ip.Header.HopLimit)

	transport, ok := headers.Transport.(netheader.Udp)
	require.True(t, ok)
	require.Equal(t, uint16(1111), transport.Header.SourcePort)
}

func TestBuildEthernetIpv4TcpWithOptions(t *testing.T) {
	payload := []byte("payload-bytes")
	var buf bytes.Buffer

	stage := New().
		Ethernet2(mac(1), mac(2)).
		Ipv4(common.IPv4Address{1, 1, 1, 1}, common.IPv4Address{2, 2, 2, 2}, 32).
		Tcp(5555, 443, 1000, 65535).
		Syn().
		Options([]tcp.TcpOption{
			tcp.OptionMaxSegmentSize{MSS: 1234},
			tcp.OptionNoop{},
		})

	require.NoError(t, stage.Write(&buf, payload))

	headers, err := netheader.FromEthernetSlice(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, payload, headers.Payload)

	transport, ok := headers.Transport.(netheader.Tcp)
	require.True(t, ok)
	require.True(t, transport.Header.Flags.SYN)
	require.False(t, transport.Header.Flags.ACK)
	require.Equal(t, uint32(1000), transport.Header.SequenceNumber)

	opts, err := tcp.ParseAllOptions(transport.Header.Options)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	mss, ok := opts[0].(tcp.OptionMaxSegmentSize)
	require.True(t, ok)
	require.Equal(t, uint16(1234), mss.MSS)
	_, ok = opts[1].(tcp.OptionNoop)
	require.True(t, ok)
}

func TestIcmpv6OverIpv4Rejected(t *testing.T) {
	var buf bytes.Buffer
	stage := New().
		Ipv4(common.IPv4Address{1, 1, 1, 1}, common.IPv4Address{2, 2, 2, 2}, 10).
		Icmpv6(icmpv6.VariantEchoRequest{Identifier: 1, SequenceNumber: 1})

	err := stage.Write(&buf, nil)
	require.Error(t, err)

	var writeErr *neterr.WriteError
	require.True(t, errors.As(err, &writeErr))
	require.NotNil(t, writeErr.Value)
	require.Equal(t, neterr.Icmpv6InIpv4, writeErr.Value.Kind)
}

func TestIcmpv4OverIpv6Rejected(t *testing.T) {
	var buf bytes.Buffer
	stage := New().
		Ipv6(common.IPv6Address{0x20, 0x01}, common.IPv6Address{0x20, 0x02}, 10).
		Icmpv4EchoRequest(1, 1)

	err := stage.Write(&buf, nil)
	require.Error(t, err)

	var writeErr *neterr.WriteError
	require.True(t, errors.As(err, &writeErr))
	require.NotNil(t, writeErr.Value)
	require.Equal(t, neterr.Icmpv4InIpv6, writeErr.Value.Kind)
}

func TestIcmpv4EchoRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	stage := New().
		Ipv4(common.IPv4Address{9, 9, 9, 9}, common.IPv4Address{8, 8, 8, 8}, 10).
		Icmpv4EchoRequest(42, 7)

	require.NoError(t, stage.Write(&buf, []byte{1, 2, 3}))

	headers, err := netheader.FromIpSlice(buf.Bytes())
	require.NoError(t, err)
	transport, ok := headers.Transport.(netheader.Icmpv4)
	require.True(t, ok)
	echo, ok := transport.Header.Variant.(icmpv4.VariantEchoRequest)
	require.True(t, ok)
	require.Equal(t, uint16(42), echo.Identifier)
	require.Equal(t, uint16(7), echo.SequenceNumber)
}

func TestBuildFromParsedIpv4Header(t *testing.T) {
	var buf bytes.Buffer

	ip := netheader.Ipv4{Header: ipv4.Header{
		Source:      common.IPv4Address{192, 168, 0, 1},
		Destination: common.IPv4Address{192, 168, 0, 2},
		TimeToLive:  48,
		DSCP:        10,
	}}

	stage := New().Ip(ip).Udp(5000, 53)
	require.NoError(t, stage.Write(&buf, []byte("query")))

	headers, err := netheader.FromIpSlice(buf.Bytes())
	require.NoError(t, err)

	gotIp, ok := headers.Ip.(netheader.Ipv4)
	require.True(t, ok)
	require.Equal(t, common.IPv4Address{192, 168, 0, 1}, gotIp.Header.Source)
	require.Equal(t, common.IPv4Address{192, 168, 0, 2}, gotIp.Header.Destination)
	require.Equal(t, uint8(48), gotIp.Header.TimeToLive)
	require.Equal(t, common.IPNumberUDP, gotIp.Header.Protocol)

	transport, ok := headers.Transport.(netheader.Udp)
	require.True(t, ok)
	require.Equal(t, uint16(5000), transport.Header.SourcePort)
	require.Equal(t, uint16(53), transport.Header.DestinationPort)
	require.Equal(t, []byte("query"), headers.Payload)
}

func TestBuildFromParsedIpv6Header(t *testing.T) {
	var buf bytes.Buffer

	ip := netheader.Ipv6{Header: ipv6.Header{
		Source:      common.IPv6Address{0x20, 0x01, 0xd, 0xb8},
		Destination: common.IPv6Address{0x20, 0x01, 0xd, 0xb9},
		HopLimit:    12,
	}}

	stage := New().Ip(ip).Icmpv6(icmpv6.VariantEchoRequest{Identifier: 9, SequenceNumber: 1})
	require.NoError(t, stage.Write(&buf, nil))

	headers, err := netheader.FromIpSlice(buf.Bytes())
	require.NoError(t, err)

	gotIp, ok := headers.Ip.(netheader.Ipv6)
	require.True(t, ok)
	require.Equal(t, common.IPv6Address{0x20, 0x01, 0xd, 0xb8}, gotIp.Header.Source)
	require.Equal(t, uint8(12), gotIp.Header.HopLimit)
	require.Equal(t, common.IPNumberIPv6ICMP, gotIp.Header.NextHeader)

	transport, ok := headers.Transport.(netheader.Icmpv6)
	require.True(t, ok)
	echo, ok := transport.Header.Variant.(icmpv6.VariantEchoRequest)
	require.True(t, ok)
	require.Equal(t, uint16(9), echo.Identifier)
}

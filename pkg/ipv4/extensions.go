package ipv4

import (
	"io"

	"github.com/therealutkarshpriyadarshi/network/pkg/common"
	"github.com/therealutkarshpriyadarshi/network/pkg/ipauth"
	"github.com/therealutkarshpriyadarshi/network/pkg/neterr"
	"github.com/therealutkarshpriyadarshi/network/pkg/wire"
)

// ReadExtensions reads the IPv4 extension chain starting at protocol
// (normally Header.Protocol). IPv4 only ever chains a single
// extension, the IPsec Authentication Header; any other protocol
// number is treated as the upper-layer protocol and returned
// unconsumed.
func ReadExtensions(protocol common.IPNumber, c *wire.Cursor) (Extensions, common.IPNumber, error) {
	var ext Extensions
	if protocol != common.IPNumberAH {
		return ext, protocol, nil
	}
	auth, err := ipauth.Read(c)
	if err != nil {
		return ext, protocol, err
	}
	ext.Auth = &auth
	return ext, common.IPNumber(auth.NextHeader), nil
}

// HeaderLen returns the combined wire length of the configured
// extensions (0 if none are present).
func (e Extensions) HeaderLen() int {
	if e.Auth == nil {
		return 0
	}
	return e.Auth.HeaderLen()
}

// ToBytes serializes the extension chain.
func (e Extensions) ToBytes() ([]byte, error) {
	if e.Auth == nil {
		return nil, nil
	}
	return e.Auth.ToBytes()
}

// Write serializes the extension chain to w.
func (e Extensions) Write(w io.Writer) error {
	if e.Auth == nil {
		return nil
	}
	buf, err := e.Auth.ToBytes()
	if err != nil {
		return neterr.FromValueError(err.(*neterr.ValueError))
	}
	if _, err := w.Write(buf); err != nil {
		return neterr.FromSinkError(err)
	}
	return nil
}

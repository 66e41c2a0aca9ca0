// Package neterr defines the two error families every codec in this
// module returns: ReadError for decode-time failures and ValueError for
// encode-time validation failures, plus WriteError, which wraps a
// ValueError or an underlying sink error during a builder Write.
//
// Each family is its own type carrying a Kind, so callers can `errors.As`
// to the family and switch on Kind for the precise failure instead of
// matching on a string, while still getting a readable Error() message
// for logging.
package neterr

import "fmt"

// ReadError is returned by every Parse/Read function in this module. It
// is never a panic: parsers are total functions over arbitrary bytes.
type ReadError struct {
	Kind   ReadErrorKind
	Offset int    // byte offset at which the failure was detected, -1 if not applicable
	Detail string // extra context, e.g. the offending IHL or data-offset value
}

// ReadErrorKind enumerates the closed set of decode failures this package recognizes.
type ReadErrorKind int

const (
	UnexpectedEndOfSlice ReadErrorKind = iota
	IpUnsupportedVersion
	Ipv4HeaderLengthBad
	Ipv4TotalLengthTooSmall
	Ipv6HopByHopNotAtStart
	Ipv6TooManyHeaderExtensions
	Ipv6DuplicateExtensionHeader
	TcpDataOffsetTooSmall
	TcpOptionLengthInvalid
	IcmpPayloadLengthBad
	IpAuthenticationHeaderTooSmall
	UdpLengthInvalid
)

func (k ReadErrorKind) String() string {
	switch k {
	case UnexpectedEndOfSlice:
		return "UnexpectedEndOfSlice"
	case IpUnsupportedVersion:
		return "IpUnsupportedVersion"
	case Ipv4HeaderLengthBad:
		return "Ipv4HeaderLengthBad"
	case Ipv4TotalLengthTooSmall:
		return "Ipv4TotalLengthTooSmall"
	case Ipv6HopByHopNotAtStart:
		return "Ipv6HopByHopNotAtStart"
	case Ipv6TooManyHeaderExtensions:
		return "Ipv6TooManyHeaderExtensions"
	case Ipv6DuplicateExtensionHeader:
		return "Ipv6DuplicateExtensionHeader"
	case TcpDataOffsetTooSmall:
		return "TcpDataOffsetTooSmall"
	case TcpOptionLengthInvalid:
		return "TcpOptionLengthInvalid"
	case IcmpPayloadLengthBad:
		return "IcmpPayloadLengthBad"
	case IpAuthenticationHeaderTooSmall:
		return "IpAuthenticationHeaderTooSmall"
	case UdpLengthInvalid:
		return "UdpLengthInvalid"
	default:
		return "UnknownReadError"
	}
}

// NewReadError builds a ReadError. offset of -1 means "not applicable".
func NewReadError(kind ReadErrorKind, offset int, detail string) *ReadError {
	return &ReadError{Kind: kind, Offset: offset, Detail: detail}
}

func (e *ReadError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// ValueError is returned by builder/header constructors and Write methods
// when the values supplied cannot be encoded.
type ValueError struct {
	Kind   ValueErrorKind
	Detail string
}

// ValueErrorKind enumerates the closed set of encode-time validation failures.
type ValueErrorKind int

const (
	Ipv4OptionsLengthBad ValueErrorKind = iota
	Ipv4PayloadLengthTooLarge
	Ipv6PayloadLengthTooLarge
	UdpPayloadLengthTooLarge
	TcpOptionsLengthBad
	Icmpv6InIpv4
	Icmpv4InIpv6
	IpAuthenticationHeaderIcvTooBig
	PayloadTooLarge
)

func (k ValueErrorKind) String() string {
	switch k {
	case Ipv4OptionsLengthBad:
		return "Ipv4OptionsLengthBad"
	case Ipv4PayloadLengthTooLarge:
		return "Ipv4PayloadLengthTooLarge"
	case Ipv6PayloadLengthTooLarge:
		return "Ipv6PayloadLengthTooLarge"
	case UdpPayloadLengthTooLarge:
		return "UdpPayloadLengthTooLarge"
	case TcpOptionsLengthBad:
		return "TcpOptionsLengthBad"
	case Icmpv6InIpv4:
		return "Icmpv6InIpv4"
	case Icmpv4InIpv6:
		return "Icmpv4InIpv6"
	case IpAuthenticationHeaderIcvTooBig:
		return "IpAuthenticationHeaderIcvTooBig"
	case PayloadTooLarge:
		return "PayloadTooLarge"
	default:
		return "UnknownValueError"
	}
}

// NewValueError builds a ValueError.
func NewValueError(kind ValueErrorKind, detail string) *ValueError {
	return &ValueError{Kind: kind, Detail: detail}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// WriteError wraps either a ValueError (the configured headers could not
// be encoded) or an error from the underlying sink (io.Writer) a builder
// was asked to write to.
type WriteError struct {
	Value *ValueError
	Sink   error
}

func (e *WriteError) Error() string {
	if e.Value != nil {
		return e.Value.Error()
	}
	return fmt.Sprintf("sink write failed: %v", e.Sink)
}

// Unwrap lets callers errors.As through to the wrapped ValueError or sink error.
func (e *WriteError) Unwrap() error {
	if e.Value != nil {
		return e.Value
	}
	return e.Sink
}

// FromValueError wraps a ValueError as a WriteError.
func FromValueError(v *ValueError) *WriteError {
	return &WriteError{Value: v}
}

// FromSinkError wraps an io.Writer failure as a WriteError.
func FromSinkError(err error) *WriteError {
	return &WriteError{Sink: err}
}

// Package cip implements the Common Industrial Protocol message layer carried
// inside EtherNet/IP encapsulation frames: fixed-width scalars, EPATH segments,
// and the message-router request/response envelope.
package cip

import "fmt"

// Fixed-width CIP scalar aliases. All are little-endian on the wire.
type (
	Bool  = uint8
	Byte  = uint8
	Usint = uint8
	Uint  = uint16
	Word  = uint16
	Udint = uint32
	Dword = uint32
	Ulint = uint64
	Lword = uint64
	Sint  = int8
	Int   = int16
	Dint  = int32
	Lint  = int64
	Real  = float32
	Lreal = float64
)

// ServiceCode identifies a CIP operation. Unknown codes round-trip as the raw
// numeric value; only the common services are named here.
type ServiceCode byte

const (
	ServiceGetAttributeAll        ServiceCode = 0x01
	ServiceSetAttributeAll        ServiceCode = 0x02
	ServiceGetAttributeList       ServiceCode = 0x03
	ServiceSetAttributeList       ServiceCode = 0x04
	ServiceReset                  ServiceCode = 0x05
	ServiceStart                  ServiceCode = 0x06
	ServiceStop                   ServiceCode = 0x07
	ServiceCreate                 ServiceCode = 0x08
	ServiceDelete                 ServiceCode = 0x09
	ServiceApplyAttributes        ServiceCode = 0x0D
	ServiceGetAttributeSingle     ServiceCode = 0x0E
	ServiceSetAttributeSingle     ServiceCode = 0x10
	ServiceFindNextObjectInstance ServiceCode = 0x11
	ServiceRestore                ServiceCode = 0x15
	ServiceSave                   ServiceCode = 0x16
	ServiceNop                    ServiceCode = 0x17
)

// String renders known service codes by name and falls back to the raw value.
func (s ServiceCode) String() string {
	switch s {
	case ServiceGetAttributeAll:
		return "GetAttributeAll"
	case ServiceSetAttributeAll:
		return "SetAttributeAll"
	case ServiceGetAttributeList:
		return "GetAttributeList"
	case ServiceSetAttributeList:
		return "SetAttributeList"
	case ServiceReset:
		return "Reset"
	case ServiceGetAttributeSingle:
		return "GetAttributeSingle"
	case ServiceSetAttributeSingle:
		return "SetAttributeSingle"
	default:
		return fmt.Sprintf("Service(0x%02X)", byte(s))
	}
}

// Common CIP object class codes used by the constructors in package eip.
const (
	ClassIdentity      Uint = 0x01
	ClassMessageRouter Uint = 0x02
	ClassAssembly      Uint = 0x04
	ClassConnectionMgr Uint = 0x06
)

// General status codes (MessageRouterResponse.GeneralStatus).
const (
	StatusSuccess                Usint = 0x00
	StatusConnectionFailure      Usint = 0x01
	StatusResourceUnavailable    Usint = 0x02
	StatusPathSegmentError       Usint = 0x04
	StatusPathDestinationUnknown Usint = 0x05
	StatusPartialTransfer        Usint = 0x06
	StatusServiceNotSupported    Usint = 0x08
	StatusInvalidAttributeValue  Usint = 0x09
	StatusAttributeNotSettable   Usint = 0x0E
	StatusPrivilegeViolation     Usint = 0x10
	StatusDeviceStateConflict    Usint = 0x11
	StatusReplyDataTooLarge      Usint = 0x12
	StatusAttributeNotSupported  Usint = 0x14
	StatusObjectDoesNotExist     Usint = 0x16
)

// ShortString is a one-byte-length-prefixed ASCII string, used by CIP objects
// such as Identity's ProductName attribute.
type ShortString struct {
	Value string
}

// MarshalCIP writes the length byte followed by the raw bytes of Value.
func (s ShortString) MarshalCIP() ([]byte, error) {
	raw := []byte(s.Value)
	if len(raw) > 255 {
		return nil, fmt.Errorf("cip: ShortString value too long: %d bytes", len(raw))
	}
	out := make([]byte, 0, 1+len(raw))
	out = append(out, byte(len(raw)))
	out = append(out, raw...)
	return out, nil
}

// UnmarshalCIP reads a length byte then that many bytes, returning the number
// of bytes consumed. An early EOF is a ShortRead error.
func (s *ShortString) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 1 {
		return 0, &ShortReadError{Field: "ShortString.length", Need: 1, Have: len(data)}
	}
	n := int(data[0])
	if len(data) < 1+n {
		return 0, &ShortReadError{Field: "ShortString.value", Need: n, Have: len(data) - 1}
	}
	s.Value = string(data[1 : 1+n])
	return 1 + n, nil
}

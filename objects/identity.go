// Package objects holds decoded cip.Payload implementations for the specific
// CIP objects this module talks to: the universal Identity object, and the
// Teknic ClearLink and Nitra I/O assemblies exercised by the cmd/ demos.
package objects

import (
	"encoding/binary"
	"fmt"

	"enipgo/cip"
)

// IdentityObject is the decoded body of a class 1 (Identity), instance 1
// GetAttributeAll response.
type IdentityObject struct {
	VendorID      cip.Uint
	DeviceType    cip.Uint
	ProductCode   cip.Uint
	RevisionMajor cip.Byte
	RevisionMinor cip.Byte
	Status        cip.Word
	SerialNumber  cip.Udint
	ProductName   cip.ShortString
}

const identityFixedLen = 2 + 2 + 2 + 1 + 1 + 2 + 4 // vendor..serial, before ProductName

// MarshalCIP writes the fixed Identity attributes in declaration order
// followed by the length-prefixed product name.
func (id IdentityObject) MarshalCIP() ([]byte, error) {
	out := make([]byte, 0, identityFixedLen+1+len(id.ProductName.Value))
	out = binary.LittleEndian.AppendUint16(out, id.VendorID)
	out = binary.LittleEndian.AppendUint16(out, id.DeviceType)
	out = binary.LittleEndian.AppendUint16(out, id.ProductCode)
	out = append(out, id.RevisionMajor, id.RevisionMinor)
	out = binary.LittleEndian.AppendUint16(out, id.Status)
	out = binary.LittleEndian.AppendUint32(out, id.SerialNumber)
	nameBytes, err := id.ProductName.MarshalCIP()
	if err != nil {
		return nil, err
	}
	return append(out, nameBytes...), nil
}

// UnmarshalCIP parses the fixed attributes then the product name, returning
// bytes consumed.
func (id *IdentityObject) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < identityFixedLen {
		return 0, &cip.ShortReadError{Field: "IdentityObject.fixed", Need: identityFixedLen, Have: len(data)}
	}
	id.VendorID = binary.LittleEndian.Uint16(data[0:2])
	id.DeviceType = binary.LittleEndian.Uint16(data[2:4])
	id.ProductCode = binary.LittleEndian.Uint16(data[4:6])
	id.RevisionMajor = data[6]
	id.RevisionMinor = data[7]
	id.Status = binary.LittleEndian.Uint16(data[8:10])
	id.SerialNumber = binary.LittleEndian.Uint32(data[10:14])

	n, err := id.ProductName.UnmarshalCIP(data[identityFixedLen:])
	if err != nil {
		return 0, err
	}
	return identityFixedLen + n, nil
}

// VendorTeknic is the only vendor ID this module's fixtures and examples
// exercise (Teknic, Inc.), kept named for readability at call sites; any
// other vendor ID round-trips as a plain number.
const VendorTeknic cip.Uint = 0x01A8

func (id IdentityObject) String() string {
	return fmt.Sprintf("%s rev %d.%d (vendor 0x%04X, serial 0x%08X)",
		id.ProductName.Value, id.RevisionMajor, id.RevisionMinor, id.VendorID, id.SerialNumber)
}

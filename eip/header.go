// Package eip implements the EtherNet/IP encapsulation layer that carries CIP
// messages over TCP: the 24-byte encapsulation header, the Common Packet
// Format item array, and the command-specific data each encapsulation
// command wraps.
package eip

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the fixed size of an encapsulation header.
const HeaderLen = 24

// Command identifies an encapsulation command. Only the commands this layer
// constructs or parses are named; an unrecognized value on the wire is a
// parse failure rather than an opaque passthrough, since callers dispatch on
// Command to pick a CommandSpecificData variant.
type Command uint16

const (
	CommandNop               Command = 0x0000
	CommandRegisterSession   Command = 0x0065
	CommandUnregisterSession Command = 0x0066
	CommandSendRrData        Command = 0x006F
	CommandSendUnitData      Command = 0x0070
)

func (c Command) String() string {
	switch c {
	case CommandNop:
		return "Nop"
	case CommandRegisterSession:
		return "RegisterSession"
	case CommandUnregisterSession:
		return "UnregisterSession"
	case CommandSendRrData:
		return "SendRRData"
	case CommandSendUnitData:
		return "SendUnitData"
	default:
		return fmt.Sprintf("Command(0x%04X)", uint16(c))
	}
}

// Status is the encapsulation-level status returned in a header. Zero means
// success; nonzero values indicate the encapsulation layer itself rejected
// the request (unsupported command, bad length, ...), as distinct from a CIP
// general status carried inside the payload.
type Status uint32

const (
	StatusSuccess                     Status = 0x0000
	StatusInvalidCommand              Status = 0x0001
	StatusInsufficientMemory          Status = 0x0002
	StatusIncorrectData               Status = 0x0003
	StatusInvalidSessionHandle        Status = 0x0064
	StatusInvalidLength               Status = 0x0065
	StatusUnsupportedProtocolRevision Status = 0x0069
)

// Header is the fixed 24-byte prefix of every encapsulation message.
type Header struct {
	Command       Command
	Length        uint16
	SessionHandle uint32
	Status        Status
	Context       [8]byte
	Options       uint32
}

// MarshalCIP writes the 24-byte header in wire order.
func (h Header) MarshalCIP() ([]byte, error) {
	out := make([]byte, 0, HeaderLen)
	out = binary.LittleEndian.AppendUint16(out, uint16(h.Command))
	out = binary.LittleEndian.AppendUint16(out, h.Length)
	out = binary.LittleEndian.AppendUint32(out, h.SessionHandle)
	out = binary.LittleEndian.AppendUint32(out, uint32(h.Status))
	out = append(out, h.Context[:]...)
	out = binary.LittleEndian.AppendUint32(out, h.Options)
	return out, nil
}

// UnmarshalCIP parses a 24-byte header. The Command field is not validated
// against the known set here — callers that need to reject unrecognized
// commands do so when selecting a CommandSpecificData variant.
func (h *Header) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < HeaderLen {
		return 0, fmt.Errorf("eip: short header: need %d bytes, have %d", HeaderLen, len(data))
	}
	h.Command = Command(binary.LittleEndian.Uint16(data[0:2]))
	h.Length = binary.LittleEndian.Uint16(data[2:4])
	h.SessionHandle = binary.LittleEndian.Uint32(data[4:8])
	h.Status = Status(binary.LittleEndian.Uint32(data[8:12]))
	copy(h.Context[:], data[12:20])
	h.Options = binary.LittleEndian.Uint32(data[20:24])
	return HeaderLen, nil
}

package eip

import (
	"encoding/binary"
	"fmt"
)

// RegisterData is the command-specific data of a RegisterSession request and
// its reply: protocol version plus a flags word (always zero from a client).
type RegisterData struct {
	ProtocolVersion uint16
	Options         uint16
}

func (r RegisterData) MarshalCIP() ([]byte, error) {
	out := binary.LittleEndian.AppendUint16(nil, r.ProtocolVersion)
	out = binary.LittleEndian.AppendUint16(out, r.Options)
	return out, nil
}

func (r *RegisterData) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("eip: RegisterData short read: need 4 bytes, have %d", len(data))
	}
	r.ProtocolVersion = binary.LittleEndian.Uint16(data[0:2])
	r.Options = binary.LittleEndian.Uint16(data[2:4])
	return 4, nil
}

// DefaultProtocolVersion is the EtherNet/IP protocol revision this client
// advertises when registering a session.
const DefaultProtocolVersion uint16 = 1

// SendRrData is the command-specific data of a SendRRData request/reply: an
// interface handle (always 0, CIP), a timeout in seconds (0 meaning "use the
// encapsulation transport's own timeout"), and the CommonPacket carrying the
// CIP message itself.
type SendRrData struct {
	InterfaceHandle uint32
	Timeout         uint16
	Packet          CommonPacket
}

func (s SendRrData) MarshalCIP() ([]byte, error) {
	packetBytes, err := s.Packet.MarshalCIP()
	if err != nil {
		return nil, err
	}
	out := binary.LittleEndian.AppendUint32(nil, s.InterfaceHandle)
	out = binary.LittleEndian.AppendUint16(out, s.Timeout)
	out = append(out, packetBytes...)
	return out, nil
}

func (s *SendRrData) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 6 {
		return 0, fmt.Errorf("eip: SendRrData short read: need 6 bytes, have %d", len(data))
	}
	s.InterfaceHandle = binary.LittleEndian.Uint32(data[0:4])
	s.Timeout = binary.LittleEndian.Uint16(data[4:6])
	n, err := s.Packet.UnmarshalCIP(data[6:])
	if err != nil {
		return 0, err
	}
	return 6 + n, nil
}

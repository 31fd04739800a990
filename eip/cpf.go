package eip

import (
	"encoding/binary"
	"fmt"

	"enipgo/cip"
)

// ItemID identifies a Common Packet Format item's role. Only the two items
// an unconnected SendRRData exchange needs are named here; others pass
// through a CommonPacket round trip as opaque ItemID/Data pairs.
type ItemID uint16

const (
	ItemIDNullAddress      ItemID = 0x0000
	ItemIDUnconnectedData  ItemID = 0x00B2
	ItemIDConnectedAddress ItemID = 0x00A1
	ItemIDConnectedData    ItemID = 0x00B1
	ItemIDListIdentityResp ItemID = 0x000C
	ItemIDSockaddrInfoOtoT ItemID = 0x8000
	ItemIDSockaddrInfoTtoO ItemID = 0x8001
)

// CommonPacketItem is one length-prefixed item in a CommonPacket.
type CommonPacketItem struct {
	ID   ItemID
	Data []byte
}

// MarshalCIP writes the 2-byte ID, 2-byte length, then Data.
func (i CommonPacketItem) MarshalCIP() ([]byte, error) {
	if len(i.Data) > 0xFFFF {
		return nil, &cip.SerializationOverflowError{Field: "CommonPacketItem.Data length", Size: len(i.Data)}
	}
	out := make([]byte, 0, 4+len(i.Data))
	out = binary.LittleEndian.AppendUint16(out, uint16(i.ID))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(i.Data)))
	out = append(out, i.Data...)
	return out, nil
}

// CommonPacket is the item-array wrapper ("CPF") carried in the data field of
// a SendRRData/SendUnitData encapsulation message (RegisterSession carries
// RegisterData instead).
type CommonPacket struct {
	Items []CommonPacketItem
}

// NewUnconnectedMessage builds the two-item CommonPacket every unconnected
// SendRRData exchange uses: a null address item (no connection) followed by
// the unconnected-message data item carrying the CIP message-router bytes.
func NewUnconnectedMessage(cipMessage []byte) CommonPacket {
	return CommonPacket{Items: []CommonPacketItem{
		{ID: ItemIDNullAddress, Data: nil},
		{ID: ItemIDUnconnectedData, Data: cipMessage},
	}}
}

// MarshalCIP writes the 2-byte item count followed by each item.
func (p CommonPacket) MarshalCIP() ([]byte, error) {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(p.Items)))
	for _, item := range p.Items {
		b, err := item.MarshalCIP()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// UnmarshalCIP parses an item count followed by that many length-prefixed
// items, returning bytes consumed.
func (p *CommonPacket) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("eip: CommonPacket short read: need 2 bytes, have %d", len(data))
	}
	count := binary.LittleEndian.Uint16(data[0:2])
	pos := 2

	items := make([]CommonPacketItem, 0, count)
	for i := uint16(0); i < count; i++ {
		if len(data)-pos < 4 {
			return 0, fmt.Errorf("eip: CommonPacket item %d: truncated header: have %d bytes", i, len(data)-pos)
		}
		id := ItemID(binary.LittleEndian.Uint16(data[pos : pos+2]))
		length := int(binary.LittleEndian.Uint16(data[pos+2 : pos+4]))
		pos += 4
		if len(data)-pos < length {
			return 0, fmt.Errorf("eip: CommonPacket item %d: need %d bytes, have %d", i, length, len(data)-pos)
		}
		items = append(items, CommonPacketItem{ID: id, Data: append([]byte(nil), data[pos:pos+length]...)})
		pos += length
	}
	p.Items = items
	return pos, nil
}

// UnconnectedData returns the payload of the first ItemIDUnconnectedData item,
// which is where the CIP message-router response lives in a SendRRData reply.
func (p CommonPacket) UnconnectedData() ([]byte, bool) {
	for _, item := range p.Items {
		if item.ID == ItemIDUnconnectedData {
			return item.Data, true
		}
	}
	return nil, false
}

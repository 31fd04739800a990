package objects

import (
	"encoding/binary"

	"enipgo/cip"
)

// ClearLinkDigitalOutputs is the 16-bit output assembly bitfield on the
// Teknic ClearLink: 6 named digital outputs in the low bits, the remaining
// 10 bits reserved padding. Grounded on the `read-teknic-io` reference
// example's clearlink_output.rs DigitalOutputs bitfield.
type ClearLinkDigitalOutputs struct {
	Output0, Output1, Output2, Output3, Output4, Output5 bool
}

func (d ClearLinkDigitalOutputs) pack() uint16 {
	var v uint16
	set := func(bit int, b bool) {
		if b {
			v |= 1 << bit
		}
	}
	set(0, d.Output0)
	set(1, d.Output1)
	set(2, d.Output2)
	set(3, d.Output3)
	set(4, d.Output4)
	set(5, d.Output5)
	return v
}

func unpackClearLinkDigitalOutputs(v uint16) ClearLinkDigitalOutputs {
	return ClearLinkDigitalOutputs{
		Output0: v&(1<<0) != 0,
		Output1: v&(1<<1) != 0,
		Output2: v&(1<<2) != 0,
		Output3: v&(1<<3) != 0,
		Output4: v&(1<<4) != 0,
		Output5: v&(1<<5) != 0,
	}
}

// ClearLinkOutputData is the instance-0x70 output assembly for a Teknic
// ClearLink device: analog output value, the digital-output bitfield, 6 PWM
// duty-cycle bytes, a 2-byte reserved gap, the 64-bit CCIO output word, and a
// 32-bit encoder position delta. Field order and widths are grounded on the
// original Rust implementation's IOOutputData struct.
type ClearLinkOutputData struct {
	AnalogOutput         cip.Int
	DigitalOutputs       ClearLinkDigitalOutputs
	PWM                  [6]cip.Usint
	CCIOOutputData       cip.Ulint
	EncoderAddToPosition cip.Dint
}

// ClearLinkOutputDataLen is the fixed wire size of ClearLinkOutputData:
// 2 (analog) + 2 (digital bitfield) + 6 (PWM) + 2 (reserved pad) + 8 (CCIO) + 4 (encoder).
const ClearLinkOutputDataLen = 2 + 2 + 6 + 2 + 8 + 4

func (o ClearLinkOutputData) MarshalCIP() ([]byte, error) {
	out := make([]byte, 0, ClearLinkOutputDataLen)
	out = binary.LittleEndian.AppendUint16(out, uint16(o.AnalogOutput))
	out = binary.LittleEndian.AppendUint16(out, o.DigitalOutputs.pack())
	out = append(out, o.PWM[:]...)
	out = append(out, 0x00, 0x00) // reserved
	out = binary.LittleEndian.AppendUint64(out, o.CCIOOutputData)
	out = binary.LittleEndian.AppendUint32(out, uint32(o.EncoderAddToPosition))
	return out, nil
}

func (o *ClearLinkOutputData) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < ClearLinkOutputDataLen {
		return 0, &cip.ShortReadError{Field: "ClearLinkOutputData", Need: ClearLinkOutputDataLen, Have: len(data)}
	}
	o.AnalogOutput = cip.Int(binary.LittleEndian.Uint16(data[0:2]))
	o.DigitalOutputs = unpackClearLinkDigitalOutputs(binary.LittleEndian.Uint16(data[2:4]))
	copy(o.PWM[:], data[4:10])
	// data[10:12] reserved, ignored.
	o.CCIOOutputData = binary.LittleEndian.Uint64(data[12:20])
	o.EncoderAddToPosition = cip.Dint(binary.LittleEndian.Uint32(data[20:24]))
	return ClearLinkOutputDataLen, nil
}

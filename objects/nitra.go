package objects

import (
	"encoding/binary"

	"enipgo/cip"
)

// SolenoidValves is the 16 bit-addressable solenoid outputs of a Nitra valve
// bank's output assembly. Grounded on the `write-nitra-io` reference
// example's SolenoidValves bitfield.
type SolenoidValves struct {
	Valves [16]bool
}

// SetValve sets the boolean state of one valve by index (0-15); out-of-range
// indices are ignored, matching the reference example's bounds-checked
// set_valve_index helper.
func (v *SolenoidValves) SetValve(index int, state bool) {
	if index < 0 || index >= len(v.Valves) {
		return
	}
	v.Valves[index] = state
}

func (v SolenoidValves) MarshalCIP() ([]byte, error) {
	var word uint16
	for i, set := range v.Valves {
		if set {
			word |= 1 << uint(i)
		}
	}
	return binary.LittleEndian.AppendUint16(nil, word), nil
}

func (v *SolenoidValves) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, &cip.ShortReadError{Field: "SolenoidValves", Need: 2, Have: len(data)}
	}
	word := binary.LittleEndian.Uint16(data[0:2])
	for i := range v.Valves {
		v.Valves[i] = word&(1<<uint(i)) != 0
	}
	return 2, nil
}

// NitraStatusByte is the single-byte input assembly a Nitra valve bank
// returns reporting bank-level health, grounded on the reference example's
// StatusByte type (the Rust source declares it but fixes its bit layout to a
// single opaque status byte; no named bit decomposition is exercised there).
type NitraStatusByte struct {
	Value cip.Usint
}

func (s NitraStatusByte) MarshalCIP() ([]byte, error) {
	return []byte{s.Value}, nil
}

func (s *NitraStatusByte) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 1 {
		return 0, &cip.ShortReadError{Field: "NitraStatusByte", Need: 1, Have: len(data)}
	}
	s.Value = data[0]
	return 1, nil
}

package objects

import "testing"

func TestClearLinkOutputData_RoundTrip(t *testing.T) {
	o := ClearLinkOutputData{
		AnalogOutput:         1234,
		DigitalOutputs:       ClearLinkDigitalOutputs{Output0: true, Output3: true},
		PWM:                  [6]byte{10, 20, 30, 40, 50, 60},
		CCIOOutputData:       0x1122334455667788,
		EncoderAddToPosition: -42,
	}
	b, err := o.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	if len(b) != ClearLinkOutputDataLen {
		t.Fatalf("len = %d, want %d", len(b), ClearLinkOutputDataLen)
	}

	var parsed ClearLinkOutputData
	n, err := parsed.UnmarshalCIP(b)
	if err != nil {
		t.Fatalf("UnmarshalCIP: %v", err)
	}
	if n != ClearLinkOutputDataLen {
		t.Fatalf("consumed %d, want %d", n, ClearLinkOutputDataLen)
	}
	if parsed != o {
		t.Errorf("got %+v, want %+v", parsed, o)
	}
}

func TestClearLinkDigitalOutputs_BitPacking(t *testing.T) {
	d := ClearLinkDigitalOutputs{Output1: true, Output5: true}
	packed := d.pack()
	want := uint16(1<<1 | 1<<5)
	if packed != want {
		t.Errorf("pack() = %#04X, want %#04X", packed, want)
	}
	if unpackClearLinkDigitalOutputs(packed) != d {
		t.Errorf("unpack did not round trip")
	}
}

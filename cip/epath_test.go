package cip

import (
	"bytes"
	"testing"
)

func TestLogicalPathSegment_KnownDiscriminants(t *testing.T) {
	t.Run("8-bit class segment", func(t *testing.T) {
		seg := LogicalPathSegment{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeClassId, Format: LogicalFormat8Bit, Data: 4}
		b, err := seg.MarshalCIP()
		if err != nil {
			t.Fatalf("MarshalCIP: %v", err)
		}
		want := []byte{0x20, 0x04}
		if !bytes.Equal(b, want) {
			t.Errorf("got % X, want % X", b, want)
		}
	})

	t.Run("8-bit instance segment", func(t *testing.T) {
		seg := LogicalPathSegment{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeInstanceId, Format: LogicalFormat8Bit, Data: 0x70}
		b, _ := seg.MarshalCIP()
		want := []byte{0x24, 0x70}
		if !bytes.Equal(b, want) {
			t.Errorf("got % X, want % X", b, want)
		}
	})

	t.Run("8-bit attribute segment", func(t *testing.T) {
		seg := LogicalPathSegment{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeAttributeId, Format: LogicalFormat8Bit, Data: 3}
		b, _ := seg.MarshalCIP()
		want := []byte{0x30, 0x03}
		if !bytes.Equal(b, want) {
			t.Errorf("got % X, want % X", b, want)
		}
	})

	t.Run("16-bit class segment", func(t *testing.T) {
		seg := LogicalPathSegment{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeClassId, Format: LogicalFormat16Bit, Data: 0x01A8}
		b, _ := seg.MarshalCIP()
		want := []byte{0x21, 0x00, 0xA8, 0x01}
		if !bytes.Equal(b, want) {
			t.Errorf("got % X, want % X", b, want)
		}
	})
}

func TestLogicalPathSegment_RoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x20, 0x01},
		{0x24, 0x01},
		{0x30, 0x07},
		{0x21, 0x00, 0xA8, 0x01},
		{0x25, 0x00, 0x70, 0x00},
		// Unknown segment_type/logical_type/format bit patterns must still
		// round-trip; an unknown format uses the 4-byte (16-bit) layout.
		{0xFF, 0x00, 0x42, 0x00},
	}
	for _, in := range cases {
		var seg LogicalPathSegment
		n, err := seg.UnmarshalCIP(in)
		if err != nil {
			t.Fatalf("UnmarshalCIP(% X): %v", in, err)
		}
		if n != len(in) {
			t.Fatalf("UnmarshalCIP(% X): consumed %d, want %d", in, n, len(in))
		}
		out, err := seg.MarshalCIP()
		if err != nil {
			t.Fatalf("MarshalCIP after round trip: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip % X -> % X, want % X", in, out, in)
		}
	}
}

func TestNewShortPath(t *testing.T) {
	p := NewShortPath(0x01, 0x01)
	b, err := p.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	want := []byte{0x21, 0x00, 0x01, 0x00, 0x25, 0x00, 0x01, 0x00}
	if !bytes.Equal(b, want) {
		t.Errorf("got % X, want % X", b, want)
	}
	words, err := p.WordSize()
	if err != nil {
		t.Fatalf("WordSize: %v", err)
	}
	if words != 4 {
		t.Errorf("WordSize = %d, want 4", words)
	}
}

func TestNewFullPath_AssemblySetAttribute(t *testing.T) {
	// Scenario: class=4, instance=0x70, attribute=3 -> "20 04 24 70 30 03", 3 words.
	p := NewFullPath(4, 0x70, 3)
	b, err := p.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	want := []byte{0x20, 0x04, 0x24, 0x70, 0x30, 0x03}
	if !bytes.Equal(b, want) {
		t.Errorf("got % X, want % X", b, want)
	}
	words, err := p.WordSize()
	if err != nil {
		t.Fatalf("WordSize: %v", err)
	}
	if words != 3 {
		t.Errorf("WordSize = %d, want 3", words)
	}
}

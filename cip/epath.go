package cip

import "encoding/binary"

// SegmentType is the 3-bit EPATH segment-type discriminant. Only the logical
// segment is given a name; every other encoding round-trips as an opaque
// numeric remainder so unknown devices still parse.
type SegmentType byte

const (
	SegmentTypeLogical SegmentType = 0x1
)

// LogicalSegmentType is the 3-bit logical-segment sub-type.
type LogicalSegmentType byte

const (
	LogicalTypeClassId     LogicalSegmentType = 0x0
	LogicalTypeInstanceId  LogicalSegmentType = 0x1
	LogicalTypeAttributeId LogicalSegmentType = 0x4
)

// LogicalSegmentFormat is the 2-bit data-width discriminant of a logical
// segment.
type LogicalSegmentFormat byte

const (
	LogicalFormat8Bit  LogicalSegmentFormat = 0x0
	LogicalFormat16Bit LogicalSegmentFormat = 0x1
)

// LogicalPathSegment is one packed EPATH logical segment. Data holds the
// class/instance/attribute value; Format selects whether it serializes as the
// 2-byte 8-bit form or the 4-byte 16-bit (padded) form.
//
// The discriminant byte packs, most-significant bit first:
//
//	bit 7-5  segment_type (3 bits)
//	bit 4-2  logical_segment_type (3 bits)
//	bit 1-0  logical_segment_format (2 bits)
//
// This is followed by one data byte (8-bit form) or a zero pad byte plus a
// little-endian uint16 (16-bit form). Unknown SegmentType/LogicalSegmentType/
// LogicalSegmentFormat values are preserved as their raw bit patterns, never
// rejected, so any input this layer can parse round-trips exactly.
type LogicalPathSegment struct {
	SegmentType SegmentType
	LogicalType LogicalSegmentType
	Format      LogicalSegmentFormat
	Data        uint16
}

func (s LogicalPathSegment) discriminant() byte {
	return (byte(s.SegmentType&0x7) << 5) | (byte(s.LogicalType&0x7) << 2) | (byte(s.Format) & 0x3)
}

// MarshalCIP writes the 2-byte (8-bit format) or 4-byte (16-bit format)
// encoding. Formats other than the two named above are written using the
// 16-bit layout, since that is the only width this layer has bytes for.
func (s LogicalPathSegment) MarshalCIP() ([]byte, error) {
	disc := s.discriminant()
	if s.Format == LogicalFormat8Bit {
		return []byte{disc, byte(s.Data)}, nil
	}
	out := make([]byte, 4)
	out[0] = disc
	out[1] = 0x00 // pad
	binary.LittleEndian.PutUint16(out[2:4], s.Data)
	return out, nil
}

// UnmarshalCIP reads the discriminant byte to determine 8-bit vs 16-bit width,
// then the data that follows, returning bytes consumed.
func (s *LogicalPathSegment) UnmarshalCIP(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, &ShortReadError{Field: "LogicalPathSegment.discriminant+data", Need: 2, Have: len(data)}
	}
	disc := data[0]
	s.SegmentType = SegmentType((disc >> 5) & 0x7)
	s.LogicalType = LogicalSegmentType((disc >> 2) & 0x7)
	s.Format = LogicalSegmentFormat(disc & 0x3)

	if s.Format == LogicalFormat8Bit {
		s.Data = uint16(data[1])
		return 2, nil
	}
	if len(data) < 4 {
		return 0, &ShortReadError{Field: "LogicalPathSegment.data16", Need: 4, Have: len(data)}
	}
	s.Data = binary.LittleEndian.Uint16(data[2:4])
	return 4, nil
}

// Path is an EPATH built from logical segments: either the "short" class +
// instance form used by whole-object services (GetAttributeAll) or the
// "full" class + instance + attribute form used by single-attribute
// services (GetAttributeSingle, SetAttributeSingle).
type Path struct {
	Segments []LogicalPathSegment
}

// NewShortPath builds the 8-byte class+instance path (both segments in the
// 16-bit logical form), used by whole-object requests such as
// GetAttributeAll on the Identity object.
func NewShortPath(class, instance uint16) Path {
	return Path{Segments: []LogicalPathSegment{
		{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeClassId, Format: LogicalFormat16Bit, Data: class},
		{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeInstanceId, Format: LogicalFormat16Bit, Data: instance},
	}}
}

// NewFullPath builds the 6-byte class+instance+attribute path (all three
// segments in the 8-bit logical form), used by single-attribute requests.
func NewFullPath(class, instance, attribute byte) Path {
	return Path{Segments: []LogicalPathSegment{
		{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeClassId, Format: LogicalFormat8Bit, Data: uint16(class)},
		{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeInstanceId, Format: LogicalFormat8Bit, Data: uint16(instance)},
		{SegmentType: SegmentTypeLogical, LogicalType: LogicalTypeAttributeId, Format: LogicalFormat8Bit, Data: uint16(attribute)},
	}}
}

// MarshalCIP concatenates each segment's wire encoding in order.
func (p Path) MarshalCIP() ([]byte, error) {
	var out []byte
	for _, seg := range p.Segments {
		b, err := seg.MarshalCIP()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// UnmarshalCIP consumes segments until data is exhausted, returning bytes
// consumed. Since an EPATH carries no segment count of its own, the caller
// must slice data to exactly the path's byte length before calling this
// (the message-router parser does so using path_word_size).
func (p *Path) UnmarshalCIP(data []byte) (int, error) {
	p.Segments = nil
	total := 0
	for total < len(data) {
		var seg LogicalPathSegment
		n, err := seg.UnmarshalCIP(data[total:])
		if err != nil {
			return total, err
		}
		p.Segments = append(p.Segments, seg)
		total += n
	}
	return total, nil
}

// WordSize returns the number of 16-bit words the serialized path occupies,
// i.e. half its byte length. Every path produced by NewShortPath/NewFullPath
// is an even number of bytes, so this is an exact division, not a rounding
// one — see DESIGN.md for why this departs from spec.md's "+1 byte for the
// size field" prose in favor of the concrete byte vectors it also specifies.
func (p Path) WordSize() (byte, error) {
	b, err := p.MarshalCIP()
	if err != nil {
		return 0, err
	}
	if len(b)%2 != 0 {
		// Defensive: every segment this package emits is even-length, but an
		// externally-built Path might not be.
		return byte((len(b) + 1) / 2), nil
	}
	return byte(len(b) / 2), nil
}

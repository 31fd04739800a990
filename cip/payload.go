package cip

// Payload is the codec contract that every value embedded in a
// MessageRouterRequest/MessageRouterResponse must satisfy: a total
// serialization. The matching parse lives on a pointer to the payload type
// (see PayloadUnmarshaler), so a payload type T is used as a value in the
// envelope while *T reports how many bytes its parse consumed.
// Concrete payload types (identity responses, assembly I/O data, raw bytes)
// implement both locally; the envelope composes over any value satisfying it.
type Payload interface {
	MarshalCIP() ([]byte, error)
}

// PayloadUnmarshaler is the parse half of the payload contract, implemented
// on a pointer to the payload type.
type PayloadUnmarshaler interface {
	UnmarshalCIP(data []byte) (consumed int, err error)
}

// RawPayload is a Payload that carries an opaque byte slice verbatim. It is
// the typed envelope's equivalent of "no schema known" — used by callers that
// only care about the status byte, or that want to decode the response bytes
// themselves after the fact.
type RawPayload struct {
	Data []byte
}

// MarshalCIP returns Data unchanged.
func (p RawPayload) MarshalCIP() ([]byte, error) {
	return append([]byte(nil), p.Data...), nil
}

// UnmarshalCIP stores the entirety of data and reports it all consumed.
func (p *RawPayload) UnmarshalCIP(data []byte) (int, error) {
	p.Data = append([]byte(nil), data...)
	return len(data), nil
}

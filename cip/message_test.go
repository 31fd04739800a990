package cip

import (
	"bytes"
	"testing"
)

// fixedPayload is a Payload stub that only parses when handed exactly N
// bytes, used to exercise the "body present but doesn't parse as T" path
// that RawPayload (which never fails) can't reach.
type fixedPayload struct {
	N    int
	Data []byte
}

func (p fixedPayload) MarshalCIP() ([]byte, error) {
	return append([]byte(nil), p.Data...), nil
}

func (p *fixedPayload) UnmarshalCIP(data []byte) (int, error) {
	if len(data) != p.N {
		return 0, &ShortReadError{Field: "fixedPayload", Need: p.N, Have: len(data)}
	}
	p.Data = append([]byte(nil), data...)
	return len(data), nil
}

func TestMessageRouterRequest_Identity(t *testing.T) {
	req := MessageRouterRequest[RawPayload]{
		Service: ServiceGetAttributeAll,
		Path:    NewShortPath(ClassIdentity, 1),
		HasBody: false,
	}
	b, err := req.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	want := []byte{0x01, 0x04, 0x21, 0x00, 0x01, 0x00, 0x25, 0x00, 0x01, 0x00}
	if !bytes.Equal(b, want) {
		t.Fatalf("got % X, want % X", b, want)
	}

	var parsed MessageRouterRequest[RawPayload]
	n, err := parsed.UnmarshalCIP(b)
	if err != nil {
		t.Fatalf("UnmarshalCIP: %v", err)
	}
	if n != len(b) {
		t.Fatalf("consumed %d, want %d", n, len(b))
	}
	if parsed.Service != ServiceGetAttributeAll {
		t.Errorf("Service = %v, want GetAttributeAll", parsed.Service)
	}
	if parsed.HasBody {
		t.Errorf("HasBody = true, want false for a bodyless request")
	}
}

func TestMessageRouterResponse_ResponseBitRequired(t *testing.T) {
	// Service byte with the response bit clear must be rejected.
	data := []byte{0x01, 0x00, 0x00, 0x00}
	var resp MessageRouterResponse[RawPayload]
	_, err := resp.UnmarshalCIP(data)
	if err == nil {
		t.Fatal("expected InvariantViolationError, got nil")
	}
	if _, ok := err.(*InvariantViolationError); !ok {
		t.Errorf("got %T, want *InvariantViolationError", err)
	}
}

func TestMessageRouterRequest_ResponseBitRejectedOnParse(t *testing.T) {
	data := []byte{0x81, 0x04, 0x21, 0x00, 0x01, 0x00, 0x25, 0x00, 0x01, 0x00}
	var req MessageRouterRequest[RawPayload]
	_, err := req.UnmarshalCIP(data)
	if err == nil {
		t.Fatal("expected InvariantViolationError, got nil")
	}
}

func TestMessageRouterResponse_RoundTripWithBody(t *testing.T) {
	resp := MessageRouterResponse[RawPayload]{
		Service:       ServiceGetAttributeAll,
		GeneralStatus: StatusSuccess,
		Body:          RawPayload{Data: []byte{0xAA, 0xBB, 0xCC}},
		HasBody:       true,
	}
	b, err := resp.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	want := []byte{0x81, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC}
	if !bytes.Equal(b, want) {
		t.Fatalf("got % X, want % X", b, want)
	}

	var parsed MessageRouterResponse[RawPayload]
	if _, err := parsed.UnmarshalCIP(b); err != nil {
		t.Fatalf("UnmarshalCIP: %v", err)
	}
	if parsed.GeneralStatus != StatusSuccess {
		t.Errorf("GeneralStatus = %v, want Success", parsed.GeneralStatus)
	}
	if !bytes.Equal(parsed.Body.Data, resp.Body.Data) {
		t.Errorf("Body = % X, want % X", parsed.Body.Data, resp.Body.Data)
	}
}

func TestMessageRouterResponse_BodyParseFailureDowngradesToAbsent(t *testing.T) {
	// GeneralStatus is non-zero and the trailing bytes don't parse as T
	// (fixedPayload's zero value only accepts an empty body) — the caller
	// must still see the status rather than an error from UnmarshalCIP.
	data := []byte{0x81, 0x00, 0x08, 0x00, 0xAA, 0xBB, 0xCC}
	var resp MessageRouterResponse[fixedPayload]
	n, err := resp.UnmarshalCIP(data)
	if err != nil {
		t.Fatalf("UnmarshalCIP: %v, want nil (payload parse failure is not fatal)", err)
	}
	if n != 4 {
		t.Errorf("consumed = %d, want 4 (envelope only, body left unparsed)", n)
	}
	if resp.GeneralStatus != 0x08 {
		t.Errorf("GeneralStatus = 0x%02X, want 0x08", resp.GeneralStatus)
	}
	if resp.HasBody {
		t.Error("HasBody = true, want false after a failed body parse")
	}
}

func TestMessageRouterRequest_BodyParseFailureDowngradesToAbsent(t *testing.T) {
	data := []byte{0x01, 0x04, 0x21, 0x00, 0x01, 0x00, 0x25, 0x00, 0x01, 0x00, 0xFF}
	var req MessageRouterRequest[fixedPayload]
	n, err := req.UnmarshalCIP(data)
	if err != nil {
		t.Fatalf("UnmarshalCIP: %v, want nil (payload parse failure is not fatal)", err)
	}
	if n != 10 {
		t.Errorf("consumed = %d, want 10 (envelope only, body left unparsed)", n)
	}
	if req.HasBody {
		t.Error("HasBody = true, want false after a failed body parse")
	}
}

func TestMessageRouterResponse_NoBody(t *testing.T) {
	resp := MessageRouterResponse[RawPayload]{
		Service:       ServiceSetAttributeSingle,
		GeneralStatus: StatusSuccess,
	}
	b, err := resp.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	var parsed MessageRouterResponse[RawPayload]
	if _, err := parsed.UnmarshalCIP(b); err != nil {
		t.Fatalf("UnmarshalCIP: %v", err)
	}
	if parsed.HasBody {
		t.Errorf("HasBody = true, want false")
	}
}

package cip

import "testing"

func TestShortString_RoundTrip(t *testing.T) {
	s := ShortString{Value: "ClearLink"}
	b, err := s.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	want := append([]byte{0x09}, []byte("ClearLink")...)
	if string(b) != string(want) {
		t.Fatalf("got % X, want % X", b, want)
	}

	var parsed ShortString
	n, err := parsed.UnmarshalCIP(b)
	if err != nil {
		t.Fatalf("UnmarshalCIP: %v", err)
	}
	if n != len(b) {
		t.Fatalf("consumed %d, want %d", n, len(b))
	}
	if parsed.Value != s.Value {
		t.Errorf("Value = %q, want %q", parsed.Value, s.Value)
	}
}

func TestShortString_ShortRead(t *testing.T) {
	var s ShortString
	if _, err := s.UnmarshalCIP([]byte{0x05, 'a', 'b'}); err == nil {
		t.Fatal("expected short-read error, got nil")
	}
}

func TestServiceContainer_ResponseBit(t *testing.T) {
	req := ServiceContainer{Service: ServiceGetAttributeSingle, IsResponse: false}
	if req.byte() != 0x0E {
		t.Errorf("request byte = %#02X, want 0x0E", req.byte())
	}

	resp := ServiceContainer{Service: ServiceGetAttributeSingle, IsResponse: true}
	if resp.byte() != 0x8E {
		t.Errorf("response byte = %#02X, want 0x8E", resp.byte())
	}

	parsed := serviceContainerFromByte(0x8E)
	if parsed.Service != ServiceGetAttributeSingle || !parsed.IsResponse {
		t.Errorf("parsed = %+v, want {GetAttributeSingle true}", parsed)
	}
}

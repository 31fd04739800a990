package eip

import (
	"bytes"
	"testing"

	"enipgo/cip"
)

func TestNewRegistration_S1(t *testing.T) {
	frame, err := NewRegistration()
	if err != nil {
		t.Fatalf("NewRegistration: %v", err)
	}
	b, err := frame.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	if len(b) != 28 {
		t.Fatalf("len = %d, want 28", len(b))
	}
	if Command(b[0])|Command(b[1])<<8 != CommandRegisterSession {
		t.Errorf("command mismatch")
	}
	if b[2] != 0x04 || b[3] != 0x00 {
		t.Errorf("length bytes = % X, want 04 00", b[2:4])
	}
	if !bytes.Equal(b[4:8], []byte{0, 0, 0, 0}) {
		t.Errorf("session handle = % X, want zero", b[4:8])
	}
	if !bytes.Equal(b[24:28], []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("body = % X, want 01 00 00 00", b[24:28])
	}
}

func TestParseFrame_S2_RegisterResponse(t *testing.T) {
	// 65 00 04 00 06 00 00 00 <status:4=0> <context:8=0> <options:4=0> 01 00 00 00
	data := make([]byte, 0, 28)
	data = append(data, 0x65, 0x00, 0x04, 0x00)
	data = append(data, 0x06, 0x00, 0x00, 0x00) // session handle 6
	data = append(data, 0x00, 0x00, 0x00, 0x00) // status
	data = append(data, make([]byte, 8)...)      // context
	data = append(data, 0x00, 0x00, 0x00, 0x00) // options
	data = append(data, 0x01, 0x00, 0x00, 0x00) // body

	frame, err := ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if frame.Header.Command != CommandRegisterSession {
		t.Errorf("Command = %v, want RegisterSession", frame.Header.Command)
	}
	if frame.Header.SessionHandle != 6 {
		t.Errorf("SessionHandle = %d, want 6", frame.Header.SessionHandle)
	}
	if frame.Header.Status != StatusSuccess {
		t.Errorf("Status = %v, want Success", frame.Header.Status)
	}

	var reg RegisterData
	if _, err := reg.UnmarshalCIP(frame.Body); err != nil {
		t.Fatalf("RegisterData.UnmarshalCIP: %v", err)
	}
	if reg.ProtocolVersion != 1 || reg.Options != 0 {
		t.Errorf("RegisterData = %+v, want {1 0}", reg)
	}
}

func TestNewIdentity_S3(t *testing.T) {
	frame, err := NewIdentity(6)
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}
	b, err := frame.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	if len(b) != 50 {
		t.Fatalf("len = %d, want 50", len(b))
	}
	if frame.Header.Command != CommandSendRrData {
		t.Errorf("Command = %v, want SendRRData", frame.Header.Command)
	}
	if frame.Header.SessionHandle != 6 {
		t.Errorf("SessionHandle = %d, want 6", frame.Header.SessionHandle)
	}
}

func TestNewUnregistration_S5(t *testing.T) {
	frame := NewUnregistration(6)
	b, err := frame.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	if len(b) != HeaderLen {
		t.Fatalf("len = %d, want %d", len(b), HeaderLen)
	}
	if frame.Header.Command != CommandUnregisterSession {
		t.Errorf("Command = %v, want UnregisterSession", frame.Header.Command)
	}
}

func TestNewServiceRequest_S6_AssemblySetAttribute(t *testing.T) {
	path := cip.NewFullPath(4, 0x70, 3)
	// 276-byte body: header length 0x012C (300) = 16 bytes of SendRrData/CPF
	// fixed fields + 8 bytes (service + path_word_size + 6-byte path) + payload.
	payload := cip.RawPayload{Data: bytes.Repeat([]byte{0x00}, 276)}

	frame, err := NewServiceRequest(6, path, cip.ServiceSetAttributeSingle, payload, true)
	if err != nil {
		t.Fatalf("NewServiceRequest: %v", err)
	}
	b, err := frame.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP: %v", err)
	}
	wantLen := HeaderLen + 0x012C
	if len(b) != wantLen {
		t.Fatalf("len = %d, want %d", len(b), wantLen)
	}
	if b[2] != 0x2C || b[3] != 0x01 {
		t.Errorf("header length = % X, want 2C 01", b[2:4])
	}

	cipStart := HeaderLen + 4 + 2 + 2 + 4 + 4 // header + ifHandle + timeout + itemcount + nulladdr(4) + unconn-item-header(4)
	if b[cipStart] != 0x10 {
		t.Errorf("service byte = %#X, want 0x10", b[cipStart])
	}
	if b[cipStart+1] != 3 {
		t.Errorf("path_word_size = %d, want 3", b[cipStart+1])
	}
	wantPath := []byte{0x20, 0x04, 0x24, 0x70, 0x30, 0x03}
	if !bytes.Equal(b[cipStart+2:cipStart+8], wantPath) {
		t.Errorf("path = % X, want % X", b[cipStart+2:cipStart+8], wantPath)
	}
}

func TestParseSendRrResponse_Identity_S4(t *testing.T) {
	// Build the response by hand: header + SendRrData(CommonPacket(NullAddr, UnconnectedData(MessageRouterResponse))).
	mrr := cip.MessageRouterResponse[cip.RawPayload]{
		Service:       cip.ServiceGetAttributeAll,
		GeneralStatus: cip.StatusSuccess,
	}
	idBytes := []byte{
		0xA8, 0x01, // vendor
		0x2B, 0x00, // device type
		0x01, 0x00, // product code
		0x02, 0x5D, // revision major/minor (93 = 0x5D)
		0x00, 0x00, // status
		0x32, 0x3D, 0xFF, 0x01, // serial
		0x09, 'C', 'l', 'e', 'a', 'r', 'L', 'i', 'n', 'k', // ShortString "ClearLink"
	}
	mrr.Body = cip.RawPayload{Data: idBytes}
	mrr.HasBody = true
	mrrBytes, err := mrr.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP mrr: %v", err)
	}

	sendRr := SendRrData{Packet: NewUnconnectedMessage(mrrBytes)}
	sendRrBytes, err := sendRr.MarshalCIP()
	if err != nil {
		t.Fatalf("MarshalCIP sendRr: %v", err)
	}
	header := Header{Command: CommandSendRrData, SessionHandle: 6, Status: StatusSuccess, Length: uint16(len(sendRrBytes))}
	headerBytes, _ := header.MarshalCIP()

	frame, err := ParseFrame(append(headerBytes, sendRrBytes...))
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}

	_, resp, err := ParseSendRrResponse[cip.RawPayload](frame)
	if err != nil {
		t.Fatalf("ParseSendRrResponse: %v", err)
	}
	if resp == nil {
		t.Fatal("resp is nil")
	}
	if resp.Service != cip.ServiceGetAttributeAll {
		t.Errorf("Service = %v, want GetAttributeAll", resp.Service)
	}
	if resp.GeneralStatus != cip.StatusSuccess {
		t.Errorf("GeneralStatus = %v, want Success", resp.GeneralStatus)
	}
	if !bytes.Equal(resp.Body.Data, idBytes) {
		t.Errorf("Body = % X, want % X", resp.Body.Data, idBytes)
	}
}

func TestFrame_MarshalCIP_OversizedBodyOverflows(t *testing.T) {
	frame := Frame{Body: make([]byte, 0x10000)}
	_, err := frame.MarshalCIP()
	if err == nil {
		t.Fatal("expected SerializationOverflowError, got nil")
	}
	if _, ok := err.(*cip.SerializationOverflowError); !ok {
		t.Errorf("got %T, want *cip.SerializationOverflowError", err)
	}
}

func TestParseFrame_UnknownCommand(t *testing.T) {
	data := make([]byte, HeaderLen)
	data[0] = 0xFE
	data[1] = 0xFE
	if _, err := ParseFrame(data); err == nil {
		t.Fatal("expected error for unknown command, got nil")
	} else if _, ok := err.(*cip.InvariantViolationError); !ok {
		t.Errorf("got %T, want *cip.InvariantViolationError", err)
	}
}

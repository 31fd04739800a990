package eip

import "enipgo/cip"

// Frame is the top-level encapsulation message: a header plus the raw
// command-specific bytes that belong to it (a RegisterData, nothing for
// UnregisterSession, or a SendRrData). The constructors below build request
// frames; ParseFrame parses a frame read off the wire, and the SendRrData-
// specific helpers unwrap the CIP message router response inside it.
type Frame struct {
	Header Header
	Body   []byte
}

// MarshalCIP writes the header (with Length set to len(Body)) followed by
// Body.
func (f Frame) MarshalCIP() ([]byte, error) {
	if len(f.Body) > 0xFFFF {
		return nil, &cip.SerializationOverflowError{Field: "Header.Length", Size: len(f.Body)}
	}
	f.Header.Length = uint16(len(f.Body))
	headerBytes, err := f.Header.MarshalCIP()
	if err != nil {
		return nil, err
	}
	return append(headerBytes, f.Body...), nil
}

// knownCommands is consulted by ParseFrame to reject frames whose command
// this layer does not recognize, per the requirement that an unrecognized
// EnIpCommand is fatal rather than opaque (unlike EPATH/service enums, which
// round-trip unknown values — encapsulation commands select a dispatch
// branch, so an unknown one has nowhere to go).
var knownCommands = map[Command]bool{
	CommandNop:               true,
	CommandRegisterSession:   true,
	CommandUnregisterSession: true,
	CommandSendRrData:        true,
	CommandSendUnitData:      true,
}

// ParseFrame reads the fixed header, validates its Command against the known
// set, then slices exactly Header.Length bytes as Body.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	n, err := f.Header.UnmarshalCIP(data)
	if err != nil {
		return Frame{}, err
	}
	if !knownCommands[f.Header.Command] {
		return Frame{}, &cip.InvariantViolationError{Reason: "eip: unrecognized EnIpCommand in header"}
	}
	rest := data[n:]
	need := int(f.Header.Length)
	if len(rest) < need {
		return Frame{}, &cip.ShortReadError{Field: "Frame.Body", Need: need, Have: len(rest)}
	}
	f.Body = append([]byte(nil), rest[:need]...)
	return f, nil
}

// NewRegistration builds the RegisterSession request frame: session handle 0,
// protocol version 1, no flags.
func NewRegistration() (Frame, error) {
	body := RegisterData{ProtocolVersion: DefaultProtocolVersion, Options: 0}
	bodyBytes, err := body.MarshalCIP()
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Header: Header{Command: CommandRegisterSession, SessionHandle: 0},
		Body:   bodyBytes,
	}, nil
}

// NewUnregistration builds the UnregisterSession frame for an open session.
// It carries no body and, per the open question on unregister responses, is
// not expected to produce a decoded reply.
func NewUnregistration(session uint32) Frame {
	return Frame{Header: Header{Command: CommandUnregisterSession, SessionHandle: session}}
}

// NewServiceRequest builds a SendRrData frame carrying a single CIP message
// router request: service, path, and an optional typed payload. Pass
// hasBody=false with any zero-value T (cip.RawPayload{} when no schema
// applies) for services that carry no request body, such as
// GetAttributeSingle and GetAttributeAll.
func NewServiceRequest[T cip.Payload](session uint32, path cip.Path, service cip.ServiceCode, body T, hasBody bool) (Frame, error) {
	req := cip.MessageRouterRequest[T]{Service: service, Path: path, Body: body, HasBody: hasBody}
	cipBytes, err := req.MarshalCIP()
	if err != nil {
		return Frame{}, err
	}

	sendRr := SendRrData{
		InterfaceHandle: 0,
		Timeout:         0,
		Packet:          NewUnconnectedMessage(cipBytes),
	}
	sendRrBytes, err := sendRr.MarshalCIP()
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		Header: Header{Command: CommandSendRrData, SessionHandle: session},
		Body:   sendRrBytes,
	}, nil
}

// NewSingleRequest builds a GetAttributeSingle SendRrData frame. This is the
// canonical name; NewGetAttributeSingle is an alias kept for discoverability
// alongside the teacher's own naming.
func NewSingleRequest[T cip.Payload](session uint32, path cip.Path, body T, hasBody bool) (Frame, error) {
	return NewServiceRequest(session, path, cip.ServiceGetAttributeSingle, body, hasBody)
}

// NewGetAttributeSingle is an alias for NewSingleRequest.
func NewGetAttributeSingle[T cip.Payload](session uint32, path cip.Path, body T, hasBody bool) (Frame, error) {
	return NewSingleRequest(session, path, body, hasBody)
}

// NewIdentity builds the GetAttributeAll request against the Identity
// object's sole instance (class 1, instance 1), carrying no request body.
func NewIdentity(session uint32) (Frame, error) {
	path := cip.NewShortPath(cip.ClassIdentity, 1)
	return NewServiceRequest[cip.RawPayload](session, path, cip.ServiceGetAttributeAll, cip.RawPayload{}, false)
}

// ParseSendRrResponse unpacks a SendRrData frame's CommonPacket and, if the
// unconnected-data item is present and parses cleanly as
// cip.MessageRouterResponse[T], returns it. A present-but-unparseable item
// yields a nil response rather than an error, per the "optional response
// payloads" try-discipline — the caller gets SendRrData's own fields either
// way.
func ParseSendRrResponse[T cip.Payload](frame Frame) (SendRrData, *cip.MessageRouterResponse[T], error) {
	var rr SendRrData
	if _, err := rr.UnmarshalCIP(frame.Body); err != nil {
		return SendRrData{}, nil, err
	}
	raw, ok := rr.Packet.UnconnectedData()
	if !ok || len(raw) == 0 {
		return rr, nil, nil
	}
	var resp cip.MessageRouterResponse[T]
	if _, err := resp.UnmarshalCIP(raw); err != nil {
		return rr, nil, nil
	}
	return rr, &resp, nil
}

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"enipgo/config"
	"enipgo/objects"
	"enipgo/transport"
)

type fakeSource struct {
	devices  []DeviceStatus
	identity objects.IdentityObject
	reading  transport.AttributeReading
	err      error
}

func (f *fakeSource) ListDevices() []DeviceStatus { return f.devices }

func (f *fakeSource) Identity(ctx context.Context, device string) (objects.IdentityObject, error) {
	return f.identity, f.err
}

func (f *fakeSource) Attribute(ctx context.Context, device, path string) (transport.AttributeReading, error) {
	return f.reading, f.err
}

func testUser(t *testing.T, username, password string) config.WebUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return config.WebUser{Username: username, PasswordHash: string(hash), Role: config.RoleAdmin}
}

func TestServer_DevicesRequiresAuth(t *testing.T) {
	src := &fakeSource{devices: []DeviceStatus{{Name: "clearlink1", Address: "10.0.0.1:44818", Connected: true}}}
	s := NewServer(config.WebConfig{Host: "127.0.0.1", Port: 0}, src)

	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestServer_DevicesAfterLogin(t *testing.T) {
	user := testUser(t, "alice", "hunter2")
	src := &fakeSource{devices: []DeviceStatus{{Name: "clearlink1", Address: "10.0.0.1:44818", Connected: true}}}
	s := NewServer(config.WebConfig{Host: "127.0.0.1", Port: 0, Users: []config.WebUser{user}}, src)

	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"hunter2"}`))
	loginRec := httptest.NewRecorder()
	s.router.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusNoContent {
		t.Fatalf("login status = %d, want 204", loginRec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []DeviceStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "clearlink1" {
		t.Errorf("got %+v", got)
	}
}

func TestServer_AddressAndLifecycle(t *testing.T) {
	s := NewServer(config.WebConfig{Host: "127.0.0.1", Port: 8080}, &fakeSource{})
	if got := s.Address(); got != "http://127.0.0.1:8080" {
		t.Errorf("Address() = %q", got)
	}
	if s.IsRunning() {
		t.Error("new server should not report running")
	}
}

package tui

import (
	"context"
	"errors"
	"testing"

	"enipgo/objects"
)

type fakeSource struct {
	devices  []DeviceStatus
	identity objects.IdentityObject
	err      error
}

func (f *fakeSource) ListDevices() []DeviceStatus { return f.devices }

func (f *fakeSource) Identity(ctx context.Context, device string) (objects.IdentityObject, error) {
	return f.identity, f.err
}

func TestApp_RefreshListPopulatesItems(t *testing.T) {
	src := &fakeSource{devices: []DeviceStatus{
		{Name: "clearlink1", Address: "10.0.0.1:44818", Connected: true},
		{Name: "nitra1", Address: "10.0.0.2:44818", LastError: "timeout"},
	}}
	a := NewApp(src)
	a.refreshList()

	if a.list.GetItemCount() != 2 {
		t.Fatalf("item count = %d, want 2", a.list.GetItemCount())
	}
}

func TestApp_ShowDetailOutOfRangeIsNoop(t *testing.T) {
	a := NewApp(&fakeSource{})
	a.showDetail(5) // no devices loaded; must not panic
}

func TestApp_ShowDetailSetsDeviceHeader(t *testing.T) {
	src := &fakeSource{
		devices: []DeviceStatus{{Name: "clearlink1", Address: "10.0.0.1:44818"}},
		err:     errors.New("connection refused"),
	}
	a := NewApp(src)
	a.refreshList()
	a.showDetail(0)
	// showDetail dispatches identity fetch in a goroutine via
	// QueueUpdateDraw, which requires a.app.Run() to drain; here we only
	// check the synchronous placeholder text was set.
	if got := a.detail.GetText(true); got == "" {
		t.Error("expected placeholder detail text to be set synchronously")
	}
}

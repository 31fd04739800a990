package valkey

import (
	"testing"

	"enipgo/config"
)

func TestManager_AddGetRemove(t *testing.T) {
	m := NewManager("cell7")
	m.Add(NewCache("cell7", config.ValkeyConfig{Name: "local"}))

	if m.Get("local") == nil {
		t.Fatal("Get(local) should not be nil")
	}
	if len(m.List()) != 1 {
		t.Fatalf("List() = %d, want 1", len(m.List()))
	}

	m.Remove("local")
	if m.Get("local") != nil {
		t.Error("Get(local) should be nil after Remove")
	}
}

func TestManager_LoadFromConfig_SkipsDisabled(t *testing.T) {
	m := NewManager("cell7")
	m.LoadFromConfig([]config.ValkeyConfig{
		{Name: "a", Enabled: true},
		{Name: "b", Enabled: false},
	})

	if m.Get("a") == nil {
		t.Error("enabled server should be loaded")
	}
	if m.Get("b") != nil {
		t.Error("disabled server should not be loaded")
	}
}

func TestManager_AnyRunning_EmptyIsFalse(t *testing.T) {
	m := NewManager("cell7")
	if m.AnyRunning() {
		t.Error("AnyRunning should be false with no caches")
	}
}

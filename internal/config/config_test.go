package config

import (
	"path/filepath"
	"testing"
)

// memBackend is an in-memory Backend for tests.
type memBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{strings: make(map[string]string), ints: make(map[string]int)}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.strings[key]
	return v, ok, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.ints[key]
	return v, ok, nil
}

func (b *memBackend) SetString(key, val string) error { b.strings[key] = val; return nil }
func (b *memBackend) SetInt(key string, val int) error { b.ints[key] = val; return nil }
func (b *memBackend) Delete(key string) error {
	delete(b.strings, key)
	delete(b.ints, key)
	return nil
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4770 {
		t.Errorf("Port = %d, want 4770", cfg.Server.Port)
	}
	if cfg.Detect.CloneTimeout != "30s" {
		t.Errorf("CloneTimeout = %q, want 30s", cfg.Detect.CloneTimeout)
	}
	if cfg.Billing.Plan != "free" {
		t.Errorf("Plan = %q, want free", cfg.Billing.Plan)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadBackendOverrides(t *testing.T) {
	b := newMemBackend()
	b.SetInt("server.port", 9000)
	b.SetString("billing.plan", "pro")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Billing.Plan != "pro" {
		t.Errorf("Plan = %q, want pro", cfg.Billing.Plan)
	}
}

func TestLoadEnvWinsOverBackend(t *testing.T) {
	t.Setenv("LYNXPROMPT_BILLING_PLAN", "max")
	t.Setenv("LYNXPROMPT_SERVER_PORT", "4771")

	b := newMemBackend()
	b.SetString("billing.plan", "pro")
	b.SetInt("server.port", 9000)

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Billing.Plan != "max" {
		t.Errorf("Plan = %q, want max (env override)", cfg.Billing.Plan)
	}
	if cfg.Server.Port != 4771 {
		t.Errorf("Port = %d, want 4771 (env override)", cfg.Server.Port)
	}
}

func TestLoadBadEnvIntIgnored(t *testing.T) {
	t.Setenv("LYNXPROMPT_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4770 {
		t.Errorf("Port = %d, want default after bad env value", cfg.Server.Port)
	}
}

func TestSetKeyAndShowAll(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := SetKey("billing.plan", "teams"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if err := SetKey("server.port", "8080"); err != nil {
		t.Fatalf("SetKey int: %v", err)
	}
	if err := SetKey("server.port", "eight"); err == nil {
		t.Error("SetKey accepted a non-integer port")
	}
	if err := SetKey("no.such.key", "x"); err == nil {
		t.Error("SetKey accepted an unknown key")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Billing.Plan != "teams" || cfg.Server.Port != 8080 {
		t.Errorf("Load after SetKey = %+v", cfg)
	}

	found := false
	for _, k := range ShowAll(cfg) {
		if k.Key == "billing.plan" && k.Value == "teams" {
			found = true
		}
	}
	if !found {
		t.Error("ShowAll missing billing.plan = teams")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	b := newFileBackend(path)
	if err := b.SetString("billing.plan", "pro"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := b.SetInt("server.port", 4771); err != nil {
		t.Fatalf("SetInt: %v", err)
	}

	// Fresh backend re-reads from disk.
	b2 := newFileBackend(path)
	v, ok, err := b2.GetString("billing.plan")
	if err != nil || !ok || v != "pro" {
		t.Errorf("GetString = %q, %v, %v", v, ok, err)
	}
	i, ok, err := b2.GetInt("server.port")
	if err != nil || !ok || i != 4771 {
		t.Errorf("GetInt = %d, %v, %v", i, ok, err)
	}

	if err := b2.Delete("billing.plan"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := newFileBackend(path).GetString("billing.plan"); ok {
		t.Error("Delete did not persist")
	}
}

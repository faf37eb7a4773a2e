package profile

import (
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	data  map[string]string
	reads int
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) SetProfileKey(key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) GetProfileKey(key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeStore) GetAllProfileKeys() (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reads++
	out := make(map[string]string, len(f.data))
	for k, v := range f.data {
		out[k] = v
	}
	return out, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestGetAssemblesProfile(t *testing.T) {
	store := newFakeStore()
	store.data[KeyDisplayName] = "Ada"
	store.data[KeyPersona] = "backend"
	store.data[KeySkillLevel] = "senior"

	p, err := NewManager(store).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.DisplayName != "Ada" || p.Persona != "backend" || p.SkillLevel != "senior" {
		t.Errorf("Get = %+v", p)
	}
}

func TestGetEmptyStore(t *testing.T) {
	p, err := NewManager(newFakeStore()).Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != (Profile{}) {
		t.Errorf("Get on empty store = %+v, want zero", p)
	}
}

func TestGetCachesWithinTTL(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManagerWithClock(store, clock, time.Minute)

	m.Get()
	m.Get()
	if store.reads != 1 {
		t.Errorf("reads within TTL = %d, want 1", store.reads)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	m.Get()
	if store.reads != 2 {
		t.Errorf("reads after TTL = %d, want 2", store.reads)
	}
}

func TestSetInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManagerWithClock(store, clock, time.Minute)

	m.Get()
	if err := m.Set(KeyPersona, "devops"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	p, err := m.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Persona != "devops" {
		t.Errorf("Persona = %q after Set, cache not invalidated", p.Persona)
	}
	if store.reads != 2 {
		t.Errorf("reads = %d, want 2", store.reads)
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	m := NewManager(newFakeStore())
	if err := m.Set("favorite_color", "green"); err == nil {
		t.Error("Set accepted an unknown key")
	}
}

func TestSetStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = fmt.Errorf("disk full")
	m := NewManager(store)
	if err := m.Set(KeyPersona, "backend"); err == nil {
		t.Error("Set swallowed the store error")
	}
}

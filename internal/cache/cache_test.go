package cache

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("openai\x00system\x00user")
	b := Key("anthropic\x00system\x00user")

	if a == b {
		t.Error("different call identities must produce different keys")
	}
	if Key("openai\x00system\x00user") != a {
		t.Error("key must be deterministic")
	}
	if len(a) != len("verifact:v1:")+64 {
		t.Errorf("unexpected key shape: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("test-call")
	if _, found := c.Get(key); found {
		t.Error("expected miss on empty cache")
	}

	if err := c.Set(key, "raw reply", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("expected hit after set")
	}
	if val != "raw reply" {
		t.Errorf("unexpected value %q", val)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("expiring-call")
	_ = c.Set(key, "stale", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := Key("disk-call")
	if _, found := c.Get(key); found {
		t.Error("expected miss on empty cache")
	}

	if err := c.Set(key, "persisted reply", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("expected hit after set")
	}
	if val != "persisted reply" {
		t.Errorf("unexpected value %q", val)
	}
}

func TestDiskCache_FilenamesArePortable(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set(Key("portable-call"), "reply", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 cache file, got %d", len(entries))
	}

	name := entries[0].Name()
	if strings.ContainsAny(name, `:<>"|?*\`) {
		t.Errorf("cache filename %q contains non-portable characters", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("cache filename %q missing .json suffix", name)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := Key("expired-disk-call")
	_ = c.Set(key, "stale", -time.Minute) // already expired

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	_ = c.Set(Key("a"), "1", time.Minute)
	_ = c.Set(Key("b"), "2", time.Minute)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get(Key("a")); found {
		t.Error("expected miss after clear")
	}
}

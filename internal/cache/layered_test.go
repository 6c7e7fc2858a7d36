package cache

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("https://oauth.reddit.com/user/spez/submitted?limit=100")
	k2 := Key("https://oauth.reddit.com/user/spez/comments?limit=100")

	if k1 == k2 {
		t.Error("different URLs must produce different keys")
	}
	if k1 != Key("https://oauth.reddit.com/user/spez/submitted?limit=100") {
		t.Error("keys must be deterministic")
	}
}

func TestLayeredCache_RoundTrip(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Minute)

	key := Key("https://oauth.reddit.com/user/spez/submitted")
	value := []byte(`{"kind":"Listing"}`)

	if _, found := c.Get(key); found {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Set(key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected cache hit")
	}
	if string(got) != string(value) {
		t.Errorf("got %q, want %q", got, value)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}

func TestLayeredCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()
	key := Key("https://www.reddit.com/user/spez/submitted.json")
	value := []byte("listing body")

	// Populate only the disk layer
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set(key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	got, found := layered.Get(key)
	if !found {
		t.Fatal("expected disk hit through layered cache")
	}
	if string(got) != string(value) {
		t.Errorf("got %q, want %q", got, value)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	disk := NewDiskCache(t.TempDir(), time.Minute)
	key := Key("https://oauth.reddit.com/user/spez/comments")

	if err := disk.Set(key, []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := disk.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}

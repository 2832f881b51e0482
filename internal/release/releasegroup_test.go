package release

import "testing"

func TestReleaseGroupRefCounting(t *testing.T) {
	rg := NewReleaseGroup("g1")
	rg.Acquire("a1")
	rg.Acquire("a2")
	rg.Acquire("a1") // second acquire by the same album does not double-count
	if got := rg.RefCount(); got != 2 {
		t.Fatalf("refcount = %d", got)
	}
	if rg.Release("a1") {
		t.Fatal("group still has a user")
	}
	if !rg.Release("a2") {
		t.Fatal("last release must report the group unused")
	}
	if got := rg.RefCount(); got != 0 {
		t.Fatalf("refcount = %d", got)
	}
}

func TestReleaseGroupReleaseUnknownAlbum(t *testing.T) {
	rg := NewReleaseGroup("g1")
	rg.Acquire("a1")
	if rg.Release("stranger") {
		t.Fatal("releasing a non-holder must not empty the group")
	}
}

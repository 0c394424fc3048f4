package vm

import "testing"

func TestMemoryResizeZeroFills(t *testing.T) {
	m := newMemory()
	m.Resize(64)
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", m.Len())
	}
	for i, b := range m.Data() {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestMemoryResizeIsNoopWhenShrinking(t *testing.T) {
	m := newMemory()
	m.Resize(64)
	m.Set(0, 4, []byte{1, 2, 3, 4})
	m.Resize(32) // smaller than current size: must not truncate
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64 (Resize must not shrink)", m.Len())
	}
	if got := m.GetCopy(0, 4); got[0] != 1 || got[3] != 4 {
		t.Errorf("data corrupted after no-op resize: %v", got)
	}
}

func TestMemorySetAndGetCopy(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	m.Set(4, 3, []byte{0xaa, 0xbb, 0xcc})

	got := m.GetCopy(4, 3)
	want := []byte{0xaa, 0xbb, 0xcc}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetCopy = %x, want %x", got, want)
		}
	}

	// GetCopy must not alias the backing store.
	got[0] = 0
	if m.Data()[4] == 0 {
		t.Error("GetCopy must return an independent copy")
	}
}

func TestMemorySet32(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	var val [32]byte
	val[31] = 0xff
	m.Set32(0, val)
	if m.Data()[31] != 0xff {
		t.Errorf("Set32 did not write the low byte correctly")
	}
}

func TestMemoryGetPtrAliasesStore(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	m.Set(0, 1, []byte{1})
	ptr := m.GetPtr(0, 1)
	ptr[0] = 9
	if m.Data()[0] != 9 {
		t.Error("GetPtr must return a view into the backing store, not a copy")
	}
}

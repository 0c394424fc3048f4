package hostio

import (
	"bytes"
	"testing"

	"github.com/topnetwork/tvm-engine-go/ioadapter"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// fakeHost is a minimal in-process Callbacks implementation backing the
// five fixed registers with plain byte slices, standing in for a real
// host runtime.
type fakeHost struct {
	registers map[uint64][]byte
	storage   map[string][]byte
	input     []byte
	output    []byte
	removedAll []tvmtypes.Address
}

func newFakeHost(input []byte) *fakeHost {
	return &fakeHost{
		registers: make(map[uint64][]byte),
		storage:   make(map[string][]byte),
		input:     input,
	}
}

func (h *fakeHost) callbacks() *Callbacks {
	return &Callbacks{
		ReadRegister: func(id uint64, dst []byte) { copy(dst, h.registers[id]) },
		RegisterLen: func(id uint64) (uint64, bool) {
			v, ok := h.registers[id]
			return uint64(len(v)), ok
		},
		Input: func(id uint64) { h.registers[id] = h.input },
		Result: func(value []byte) { h.output = value },
		StorageWrite: func(key, value []byte, id uint64) bool {
			prev, existed := h.storage[string(key)]
			h.storage[string(key)] = append([]byte(nil), value...)
			if existed {
				h.registers[id] = prev
			}
			return existed
		},
		StorageRead: func(key []byte, id uint64) bool {
			v, ok := h.storage[string(key)]
			if ok {
				h.registers[id] = v
			}
			return ok
		},
		StorageRemove: func(key []byte, id uint64) bool {
			v, ok := h.storage[string(key)]
			delete(h.storage, string(key))
			if ok {
				h.registers[id] = v
			}
			return ok
		},
		RemoveAllStorage: func(addr tvmtypes.Address) {
			h.removedAll = append(h.removedAll, addr)
		},
	}
}

func TestRegisterIOGetInput(t *testing.T) {
	h := newFakeHost([]byte("hello"))
	io := NewRegisterIO(h.callbacks())

	got := ioadapter.Bytes(io.GetInput())
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("GetInput = %q, want %q", got, "hello")
	}
}

func TestRegisterIOSetOutput(t *testing.T) {
	h := newFakeHost(nil)
	io := NewRegisterIO(h.callbacks())

	io.SetOutput([]byte("result"))
	if !bytes.Equal(h.output, []byte("result")) {
		t.Errorf("SetOutput did not reach the host result hook: %q", h.output)
	}
}

func TestRegisterIOStorageRoundTrip(t *testing.T) {
	h := newFakeHost(nil)
	io := NewRegisterIO(h.callbacks())

	key := []byte("k1")
	if _, found := io.ReadStorage(key); found {
		t.Fatal("expected no value before a write")
	}

	io.WriteStorage(key, []byte("v1"))
	si, found := io.ReadStorage(key)
	if !found {
		t.Fatal("expected a value after write")
	}
	if got := ioadapter.Bytes(si); !bytes.Equal(got, []byte("v1")) {
		t.Errorf("ReadStorage = %q, want %q", got, "v1")
	}

	prevSi, existed := io.RemoveStorage(key)
	if !existed {
		t.Fatal("expected RemoveStorage to report the prior value existed")
	}
	if got := ioadapter.Bytes(prevSi); !bytes.Equal(got, []byte("v1")) {
		t.Errorf("RemoveStorage prior value = %q, want %q", got, "v1")
	}

	if _, found := io.ReadStorage(key); found {
		t.Error("expected no value after removal")
	}
}

func TestRegisterIORemoveAllStorage(t *testing.T) {
	h := newFakeHost(nil)
	io := NewRegisterIO(h.callbacks())

	addr, _ := tvmtypes.AddressFromHex("0000000000000000000000000000000000000009")
	io.RemoveAllStorage(addr)

	if len(h.removedAll) != 1 || h.removedAll[0] != addr {
		t.Errorf("RemoveAllStorage did not forward addr correctly: %v", h.removedAll)
	}
}

func TestRegisterIOLogNilSafe(t *testing.T) {
	h := newFakeHost(nil)
	io := NewRegisterIO(h.callbacks())
	// cb.LogUTF8 is nil in this fake; Log must be a no-op, not a panic.
	io.Log("should not panic")
}

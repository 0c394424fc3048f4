// Package ioadapter defines the engine's single conduit to persistent
// storage: a register-style host interface plus typed accessors (balance,
// nonce, code, storage slots) layered over package storagekey's byte
// layout. Concrete bindings (e.g. a register-numbered host runtime, or an
// in-memory map for tests) implement the IO interface; the engine itself
// only ever calls the typed helpers below.
package ioadapter

import "github.com/topnetwork/tvm-engine-go/tvmtypes"

// StorageIntermediate is an opaque handle to a value returned by a prior
// I/O query. Its length can be queried cheaply and its contents
// materialised into a caller-owned buffer on demand; a concrete host
// binding backs this with a numbered register rather than an eager copy.
type StorageIntermediate interface {
	Len() int
	IsEmpty() bool
	// CopyInto writes the full value into buf, which must be exactly Len()
	// bytes long.
	CopyInto(buf []byte)
}

// Bytes materialises a StorageIntermediate into a freshly allocated slice.
// Returns nil if the intermediate is nil.
func Bytes(si StorageIntermediate) []byte {
	if si == nil {
		return nil
	}
	buf := make([]byte, si.Len())
	si.CopyInto(buf)
	return buf
}

// IO is the host's register-based interface: reading the call input,
// writing the call output, and reading/writing/removing raw storage
// key-value records. The engine never assumes more than lazy,
// copy-on-demand semantics from the returned StorageIntermediate values.
type IO interface {
	// GetInput returns the raw call input blob.
	GetInput() StorageIntermediate
	// SetOutput writes the raw call output blob.
	SetOutput(value []byte)

	// ReadStorage looks up key, returning (value, true) if present.
	ReadStorage(key []byte) (StorageIntermediate, bool)
	// WriteStorage stores value at key, returning the previous value if
	// one existed.
	WriteStorage(key, value []byte) (StorageIntermediate, bool)
	// RemoveStorage deletes key, returning the previous value if one
	// existed.
	RemoveStorage(key []byte) (StorageIntermediate, bool)
	// RemoveAllStorage bulk-erases every storage slot recorded for addr as
	// a single logical operation against the backing store.
	RemoveAllStorage(addr tvmtypes.Address)
}

// Package hostio binds the ioadapter.IO interface to a host runtime that
// exposes numbered registers, mirroring the five fixed register slots and
// extern callback surface of the reference WASM host binding: input,
// result, and three storage registers (write/read/remove), plus a shared
// environment register reused by package envoracle.
//
// The callback surface is injected as plain Go function values rather than
// declared via cgo "extern C" imports, so the same binding works whether
// the embedding host is reached through cgo, a WASM runtime's import
// object, or (in tests) an in-process fake.
package hostio

import (
	"github.com/topnetwork/tvm-engine-go/ioadapter"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// Register indices fixed by the host ABI.
const (
	RegisterIORead   uint64 = 0
	RegisterIOWrite  uint64 = 1
	RegisterIORemove uint64 = 2
	RegisterEnv      uint64 = 3
	RegisterInput    uint64 = 4
)

// Callbacks is the host's extern-function surface. LogUTF8 may be nil, in
// which case RegisterIO.Log drops the message; every other field is called
// without a nil check, so an operation whose field is nil panics.
type Callbacks struct {
	ReadRegister func(registerID uint64, dst []byte)
	RegisterLen  func(registerID uint64) (length uint64, ok bool)

	Input  func(registerID uint64)
	Result func(value []byte)

	StorageWrite     func(key, value []byte, registerID uint64) (wrote bool)
	StorageRead      func(key []byte, registerID uint64) (found bool)
	StorageRemove    func(key []byte, registerID uint64) (found bool)
	RemoveAllStorage func(addr tvmtypes.Address)

	GasPrice        func() uint64
	OriginAddress   func(registerID uint64)
	BlockHeight     func() uint64
	BlockCoinbase   func(registerID uint64)
	BlockTimestamp  func() uint64
	ChainID         func() uint64

	LogUTF8 func(msg []byte)
}

// register is a StorageIntermediate backed by one of the host's numbered
// registers: length and contents are fetched lazily, on demand.
type register struct {
	id uint64
	cb *Callbacks
}

func (r register) Len() int {
	n, ok := r.cb.RegisterLen(r.id)
	if !ok {
		return 0
	}
	return int(n)
}

func (r register) IsEmpty() bool { return r.Len() == 0 }

func (r register) CopyInto(buf []byte) {
	r.cb.ReadRegister(r.id, buf)
}

// RegisterIO implements ioadapter.IO against a host's Callbacks.
type RegisterIO struct {
	cb *Callbacks
}

// NewRegisterIO binds a RegisterIO to the given host callback surface.
func NewRegisterIO(cb *Callbacks) *RegisterIO {
	return &RegisterIO{cb: cb}
}

func (r *RegisterIO) GetInput() ioadapter.StorageIntermediate {
	r.cb.Input(RegisterInput)
	return register{id: RegisterInput, cb: r.cb}
}

func (r *RegisterIO) SetOutput(value []byte) {
	r.cb.Result(value)
}

func (r *RegisterIO) ReadStorage(key []byte) (ioadapter.StorageIntermediate, bool) {
	if !r.cb.StorageRead(key, RegisterIORead) {
		return nil, false
	}
	return register{id: RegisterIORead, cb: r.cb}, true
}

func (r *RegisterIO) WriteStorage(key, value []byte) (ioadapter.StorageIntermediate, bool) {
	if !r.cb.StorageWrite(key, value, RegisterIOWrite) {
		return nil, false
	}
	return register{id: RegisterIOWrite, cb: r.cb}, true
}

func (r *RegisterIO) RemoveStorage(key []byte) (ioadapter.StorageIntermediate, bool) {
	if !r.cb.StorageRemove(key, RegisterIORemove) {
		return nil, false
	}
	return register{id: RegisterIORemove, cb: r.cb}, true
}

func (r *RegisterIO) RemoveAllStorage(addr tvmtypes.Address) {
	r.cb.RemoveAllStorage(addr)
}

// Log forwards a UTF-8 message to the host's log hook. Used by the engine
// and trampoline for best-effort diagnostic output and by the panic path
// on trampoline decode/encode integrity failures.
func (r *RegisterIO) Log(msg string) {
	if r.cb.LogUTF8 != nil {
		r.cb.LogUTF8([]byte(msg))
	}
}

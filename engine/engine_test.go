package engine

import (
	"testing"

	"github.com/topnetwork/tvm-engine-go/envoracle"
	"github.com/topnetwork/tvm-engine-go/internal/vm"
	"github.com/topnetwork/tvm-engine-go/ioadapter"
	"github.com/topnetwork/tvm-engine-go/storagekey"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// byteIntermediate is the simplest possible ioadapter.StorageIntermediate:
// a value that is already fully materialised.
type byteIntermediate []byte

func (b byteIntermediate) Len() int            { return len(b) }
func (b byteIntermediate) IsEmpty() bool       { return len(b) == 0 }
func (b byteIntermediate) CopyInto(buf []byte) { copy(buf, b) }

// memIO is an in-memory ioadapter.IO for tests, with no host or register
// involved.
type memIO struct {
	input  []byte
	output []byte
	data   map[string][]byte
}

func newMemIO(input []byte) *memIO {
	return &memIO{input: input, data: make(map[string][]byte)}
}

func (m *memIO) GetInput() ioadapter.StorageIntermediate {
	return byteIntermediate(m.input)
}

func (m *memIO) SetOutput(value []byte) { m.output = value }

func (m *memIO) ReadStorage(key []byte) (ioadapter.StorageIntermediate, bool) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false
	}
	return byteIntermediate(v), true
}

func (m *memIO) WriteStorage(key, value []byte) (ioadapter.StorageIntermediate, bool) {
	prev, existed := m.data[string(key)]
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	if !existed {
		return nil, false
	}
	return byteIntermediate(prev), true
}

func (m *memIO) RemoveStorage(key []byte) (ioadapter.StorageIntermediate, bool) {
	prev, existed := m.data[string(key)]
	delete(m.data, string(key))
	if !existed {
		return nil, false
	}
	return byteIntermediate(prev), true
}

func (m *memIO) RemoveAllStorage(addr tvmtypes.Address) {
	prefix := string(append([]byte{storagekey.Version, byte(storagekey.KindStorage)}, addr.Bytes()...))
	for k := range m.data {
		if len(k) == storagekey.StorageKeyLen && k[:len(prefix)] == prefix {
			delete(m.data, k)
		}
	}
}

// fakeEnv is a minimal envoracle.Env for tests; the block-oracle queries
// the reference host leaves unsupported return ErrNotSupported, matching
// production behavior.
type fakeEnv struct {
	gasPrice *tvmtypes.U256
	origin   tvmtypes.Address
	height   uint64
	coinbase tvmtypes.Address
	ts       envoracle.Timestamp
	chainID  uint64
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{gasPrice: tvmtypes.U256FromUint64(0), chainID: 1, height: 1}
}

func (e *fakeEnv) GasPrice() *tvmtypes.U256           { return e.gasPrice }
func (e *fakeEnv) Origin() tvmtypes.Address           { return e.origin }
func (e *fakeEnv) BlockHeight() uint64                { return e.height }
func (e *fakeEnv) BlockCoinbase() tvmtypes.Address    { return e.coinbase }
func (e *fakeEnv) BlockTimestamp() envoracle.Timestamp { return e.ts }
func (e *fakeEnv) ChainID() uint64                    { return e.chainID }

func (e *fakeEnv) BlockHash(*tvmtypes.U256) (tvmtypes.H256, error) {
	return tvmtypes.H256{}, envoracle.ErrNotSupported
}
func (e *fakeEnv) BlockDifficulty() (*tvmtypes.U256, error) {
	return nil, envoracle.ErrNotSupported
}
func (e *fakeEnv) BlockGasLimit() (*tvmtypes.U256, error) {
	return nil, envoracle.ErrNotSupported
}
func (e *fakeEnv) BlockBaseFeePerGas() (*tvmtypes.U256, error) {
	return nil, envoracle.ErrNotSupported
}

func TestClassifySucceed(t *testing.T) {
	r := classify([]byte{1, 2}, nil)
	if r == nil || r.Status != StatusSucceed {
		t.Fatalf("classify(nil err) = %+v, want StatusSucceed", r)
	}
}

func TestClassifyRevert(t *testing.T) {
	r := classify([]byte{9}, vm.ErrExecutionReverted)
	if r == nil || r.Status != StatusRevert {
		t.Fatalf("classify(ErrExecutionReverted) = %+v, want StatusRevert", r)
	}
}

func TestClassifyOutOfGas(t *testing.T) {
	r := classify(nil, vm.ErrOutOfGas)
	if r == nil || r.Status != StatusOutOfGas {
		t.Fatalf("classify(ErrOutOfGas) = %+v, want StatusOutOfGas", r)
	}
	r2 := classify(nil, vm.ErrGasUintOverflow)
	if r2 == nil || r2.Status != StatusOutOfGas {
		t.Fatalf("classify(ErrGasUintOverflow) = %+v, want StatusOutOfGas", r2)
	}
}

func TestClassifyOutOfFund(t *testing.T) {
	r := classify(nil, vm.ErrInsufficientBalance)
	if r == nil || r.Status != StatusOutOfFund {
		t.Fatalf("classify(ErrInsufficientBalance) = %+v, want StatusOutOfFund", r)
	}
}

func TestClassifyOutOfOffset(t *testing.T) {
	r := classify(nil, vm.ErrReturnDataOutOfBounds)
	if r == nil || r.Status != StatusOutOfOffset {
		t.Fatalf("classify(ErrReturnDataOutOfBounds) = %+v, want StatusOutOfOffset", r)
	}
}

func TestClassifyUnknownErrorIsNil(t *testing.T) {
	if r := classify(nil, vm.ErrDepth); r != nil {
		t.Fatalf("classify(unrecognized error) = %+v, want nil", r)
	}
}

func TestEngineCallBumpsNonceOnNoCodeCall(t *testing.T) {
	io := newMemIO(nil)
	env := newFakeEnv()
	eng := New(io, env)

	caller, _ := tvmtypes.AddressFromHex("0000000000000000000000000000000000000001")
	callee, _ := tvmtypes.AddressFromHex("000000000000000000000000000000000000000a")

	before := ioadapter.GetNonce(io, caller)
	if !before.IsZero() {
		t.Fatalf("expected fresh account nonce 0, got %d", before.Uint64())
	}

	result, err := eng.Call(caller, CallArgs{Contract: callee, GasLimit: 1_000_000, Value: tvmtypes.ZeroUTop})
	if err != nil {
		t.Fatalf("unexpected error calling an empty account: %v", err)
	}
	if result.Status != StatusSucceed {
		t.Fatalf("status = %v, want StatusSucceed", result.Status)
	}

	after := ioadapter.GetNonce(io, caller)
	if after.Uint64() != 1 {
		t.Errorf("nonce after call = %d, want 1", after.Uint64())
	}
}

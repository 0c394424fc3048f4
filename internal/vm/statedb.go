package vm

import (
	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// StateDB is the storage backend the interpreter reads and writes through.
// The engine package implements this against its I/O adapter and
// per-transaction caches; the interpreter never touches persistent storage
// directly.
type StateDB interface {
	CreateAccount(addr tvmtypes.Address)

	Exist(addr tvmtypes.Address) bool

	GetBalance(addr tvmtypes.Address) *uint256.Int
	AddBalance(addr tvmtypes.Address, amount *uint256.Int)
	SubBalance(addr tvmtypes.Address, amount *uint256.Int)

	GetNonce(addr tvmtypes.Address) uint64
	SetNonce(addr tvmtypes.Address, nonce uint64)

	GetCode(addr tvmtypes.Address) []byte
	SetCode(addr tvmtypes.Address, code []byte)
	GetCodeHash(addr tvmtypes.Address) tvmtypes.H256
	GetCodeSize(addr tvmtypes.Address) int

	GetState(addr tvmtypes.Address, key tvmtypes.H256) tvmtypes.H256
	SetState(addr tvmtypes.Address, key, value tvmtypes.H256)

	Snapshot() int
	RevertToSnapshot(id int)

	AddLog(log *Log)
}

// Log is an EVM event emitted by LOG0-LOG4.
type Log struct {
	Address tvmtypes.Address
	Topics  []tvmtypes.H256
	Data    []byte
}

// BlockContext carries block-scoped values the interpreter's environment
// opcodes read; it never changes within a call. GetHash, Difficulty,
// GasLimit, and BaseFee are nil-checked by their opcodes and must surface
// the host's error rather than being faked: a host that cannot answer one
// of these queries reports ErrNotSupported (or its own wrapped error)
// through the callback instead of the engine inventing a default.
type BlockContext struct {
	GetHash     func(number uint64) (tvmtypes.H256, error)
	BlockNumber *uint256.Int
	Time        uint64
	Coinbase    tvmtypes.Address
	Difficulty  func() (*uint256.Int, error)
	GasLimit    func() (uint64, error)
	BaseFee     func() (*uint256.Int, error)
}

// TxContext carries transaction-scoped values.
type TxContext struct {
	Origin   tvmtypes.Address
	GasPrice *uint256.Int
}

// Config tunes interpreter behavior; MaxCallDepth defaults to 1024.
type Config struct {
	MaxCallDepth int
}

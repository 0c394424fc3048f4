// Package envoracle defines the engine's read-only view of the surrounding
// block and transaction context: gas price, origin, block height/coinbase/
// timestamp, and chain id. The host ledger is the sole source of truth;
// this package only declares the interface and a nanosecond Timestamp
// newtype used by its block_timestamp query.
package envoracle

import (
	"errors"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// ErrNotSupported is returned by the optional block-oracle queries
// (BlockHash, BlockDifficulty, BlockGasLimit, BlockBaseFeePerGas) on hosts
// that do not implement them, rather than silently returning a default.
var ErrNotSupported = errors.New("envoracle: not supported by this host")

// Timestamp is a point in time expressed as nanoseconds since the Unix
// epoch, the unit the host environment oracle reports block time in.
type Timestamp uint64

// NewTimestamp wraps a raw nanosecond count.
func NewTimestamp(ns uint64) Timestamp { return Timestamp(ns) }

// Nanos returns the timestamp in nanoseconds.
func (t Timestamp) Nanos() uint64 { return uint64(t) }

// Millis returns the timestamp truncated to milliseconds.
func (t Timestamp) Millis() uint64 { return uint64(t) / 1_000_000 }

// Secs returns the timestamp truncated to whole seconds.
func (t Timestamp) Secs() uint64 { return uint64(t) / 1_000_000_000 }

// Env is the block/transaction environment oracle the engine queries while
// building its Backend view for the EVM executor.
type Env interface {
	// GasPrice is the gas price in effect for the current call.
	GasPrice() *tvmtypes.U256
	// Origin is the externally-originating caller address.
	Origin() tvmtypes.Address
	// BlockHeight is the current block number.
	BlockHeight() uint64
	// BlockCoinbase is the current block's consensus leader / fee
	// recipient.
	BlockCoinbase() tvmtypes.Address
	// BlockTimestamp is the current block's timestamp.
	BlockTimestamp() Timestamp
	// ChainID is the chain identifier used by the CHAINID opcode.
	ChainID() uint64

	// BlockHash, BlockDifficulty, BlockGasLimit, and BlockBaseFeePerGas are
	// unimplemented on the reference host; a binding must either supply
	// them or return ErrNotSupported consistently rather than a fabricated
	// default (see SPEC_FULL.md's block-oracle-gaps design note).
	BlockHash(number *tvmtypes.U256) (tvmtypes.H256, error)
	BlockDifficulty() (*tvmtypes.U256, error)
	BlockGasLimit() (*tvmtypes.U256, error)
	BlockBaseFeePerGas() (*tvmtypes.U256, error)
}

// Package engine orchestrates one transaction's worth of EVM execution
// against the host ledger: deploying contracts, invoking existing ones,
// and committing or discarding the resulting storage changes.
package engine

import (
	"errors"
	"fmt"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// CallArgs describes a single incoming call, decoded from the trampoline's
// wire framing.
type CallArgs struct {
	// Contract is the target address for a call, or the zero address to
	// request a deployment of Input as init code.
	Contract tvmtypes.Address
	Input    []byte
	GasLimit uint64
	Value    tvmtypes.UTop
}

// TransactionStatus classifies a completed execution whose outcome is one
// of the five statuses below. Any other outcome, whether the call was
// rejected before execution or the EVM failed in another way (see classify),
// surfaces as an EngineError instead.
type TransactionStatus int

const (
	StatusSucceed TransactionStatus = iota
	StatusRevert
	StatusOutOfGas
	StatusOutOfFund
	StatusOutOfOffset
)

// AsU32 returns the wire encoding of the status.
func (s TransactionStatus) AsU32() uint32 { return uint32(s) }

func (s TransactionStatus) String() string {
	switch s {
	case StatusSucceed:
		return "Succeed"
	case StatusRevert:
		return "Revert"
	case StatusOutOfGas:
		return "OutOfGas"
	case StatusOutOfFund:
		return "OutOfFund"
	case StatusOutOfOffset:
		return "OutOfOffset"
	default:
		return fmt.Sprintf("TransactionStatus(%d)", int(s))
	}
}

// ReturnResult is the outcome of a successfully-dispatched call: the EVM
// ran (possibly reverting), and its result is reported with an ordinary
// status rather than as an EngineError.
type ReturnResult struct {
	Status TransactionStatus
	Output []byte
	GasUsed uint64
}

// EngineErrorKind distinguishes errors the engine itself raises (bad
// arguments, a tableid collision it could not resolve) from errors the EVM
// raises mid-execution that still deserve the EvmError wrapping because
// they happened after state started changing.
type EngineErrorKind int

const (
	// KindEvmError wraps an ordinary EVM execution error (e.g. invalid
	// opcode, stack error) that the engine still reports with status
	// u32::MAX rather than a TransactionStatus, because the error
	// happened somewhere apply() cannot cleanly roll back.
	KindEvmError EngineErrorKind = iota
	// KindEvmFatal wraps an unrecoverable condition: the tableid loop
	// exhausted its salt budget, or execution queried a block-oracle value
	// the host does not supply (NotSupported).
	KindEvmFatal
	// KindArgumentParse signals a malformed CallArgs.
	KindArgumentParse
	// KindInsufficientFund signals the caller's balance could not cover
	// Value before any EVM execution began.
	KindInsufficientFund
)

// EngineError is returned instead of a ReturnResult when the call could
// not be carried through to a TransactionStatus. The caller's nonce is
// still bumped (see Engine.Call) even on this path, matching the
// host ledger's anti-replay requirement that every submitted transaction
// consumes exactly one nonce.
type EngineError struct {
	Kind    EngineErrorKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %s: %s", kindName(e.Kind), e.Message)
}

func kindName(k EngineErrorKind) string {
	switch k {
	case KindEvmError:
		return "EvmError"
	case KindEvmFatal:
		return "EvmFatal"
	case KindArgumentParse:
		return "ArgumentParse"
	case KindInsufficientFund:
		return "InsufficientFund"
	default:
		return "Unknown"
	}
}

func newEngineError(kind EngineErrorKind, msg string) *EngineError {
	return &EngineError{Kind: kind, Message: msg}
}

// ErrTableidExhausted is the EvmFatal reported when the CREATE2
// salt-increment loop fails to find a salt producing an address in the
// caller's tableid shard within the bounded number of attempts.
var ErrTableidExhausted = errors.New("engine: exhausted salt search for matching tableid")

package engine

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/envoracle"
	"github.com/topnetwork/tvm-engine-go/internal/vm"
	"github.com/topnetwork/tvm-engine-go/ioadapter"
	"github.com/topnetwork/tvm-engine-go/log"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

var logger = log.Default().Module("engine")

// Engine binds one transaction's I/O adapter and environment oracle to
// the EVM executor: it decides deploy-vs-call dispatch, runs the
// tableid-matching CREATE2 search, drives the EVM, and either commits or
// discards the resulting state through stateAdapter.
type Engine struct {
	io  ioadapter.IO
	env envoracle.Env

	state       *stateAdapter
	precompiles *precompileAdapter
}

// New builds an Engine bound to io and env for a single transaction.
func New(io ioadapter.IO, env envoracle.Env) *Engine {
	return &Engine{
		io:          io,
		env:         env,
		state:       newStateAdapter(io, env),
		precompiles: newPrecompileAdapter(),
	}
}

// Call dispatches args to a deployment (when Contract is the zero address)
// or an existing-contract call, and commits the resulting state on
// success. Whatever path is taken, the caller's nonce is bumped exactly
// once: EngineError still returns after incrementing the nonce, matching
// the host ledger's requirement that every submitted transaction consumes
// one nonce regardless of outcome.
func (e *Engine) Call(caller tvmtypes.Address, args CallArgs) (*ReturnResult, error) {
	callerNonce := ioadapter.GetNonce(e.io, caller)

	result, err := e.dispatch(caller, args)

	nextNonce := new(tvmtypes.U256).AddUint64(callerNonce, 1)
	ioadapter.SetNonce(e.io, caller, nextNonce)

	if err != nil {
		logger.Warn("call failed before commit", "caller", caller.Hex(), "error", err)
		return nil, err
	}
	return result, nil
}

func (e *Engine) dispatch(caller tvmtypes.Address, args CallArgs) (*ReturnResult, error) {
	if args.Contract.IsZero() {
		return e.deployCode(caller, args)
	}
	return e.callContract(caller, args)
}

func (e *Engine) evm() *vm.EVM {
	env := e.env
	blockCtx := vm.BlockContext{
		GetHash: func(n uint64) (tvmtypes.H256, error) {
			return env.BlockHash(uint256.NewInt(n))
		},
		BlockNumber: uint256.NewInt(e.env.BlockHeight()),
		Time:        e.env.BlockTimestamp().Secs(),
		Coinbase:    e.env.BlockCoinbase(),
		Difficulty:  env.BlockDifficulty,
		GasLimit: func() (uint64, error) {
			limit, err := env.BlockGasLimit()
			if err != nil {
				return 0, err
			}
			return limit.Uint64(), nil
		},
		BaseFee: env.BlockBaseFeePerGas,
	}
	txCtx := vm.TxContext{
		Origin:   e.env.Origin(),
		GasPrice: e.env.GasPrice(),
	}
	machine := vm.NewEVM(blockCtx, txCtx, e.state, e.precompiles, e.env.ChainID(), vm.Config{})
	machine.DeriveCreate = func(caller tvmtypes.Address, nonce uint64, code []byte) (tvmtypes.Address, error) {
		addr, _, err := findDeploymentAddress(caller, nonce, code)
		return addr, err
	}
	machine.DeriveCreate2 = func(caller tvmtypes.Address, salt tvmtypes.H256, code []byte) (tvmtypes.Address, error) {
		addr, _, err := searchTableidSalt(caller, [32]byte(salt), code)
		return addr, err
	}
	return machine
}

// isEnvNotSupported reports whether err originates from a block-oracle gap
// (envoracle.Env's optional queries, or the BlockContext callback wrapping
// them) rather than an ordinary EVM execution failure.
func isEnvNotSupported(err error) bool {
	return errors.Is(err, envoracle.ErrNotSupported) || errors.Is(err, vm.ErrNotSupported)
}

// deployCode runs the tableid-matching CREATE2 search from the caller's
// current nonce, then executes args.Input as init code at the derived
// address.
func (e *Engine) deployCode(caller tvmtypes.Address, args CallArgs) (*ReturnResult, error) {
	nonce := ioadapter.GetNonce(e.io, caller).Uint64()

	addr, _, err := findDeploymentAddress(caller, nonce, args.Input)
	if err != nil {
		return nil, newEngineError(KindEvmFatal, err.Error())
	}

	value := args.Value.ToWei()
	machine := e.evm()
	out, leftOver, execErr := machine.Create(caller, addr, args.Input, args.GasLimit, value)

	if isEnvNotSupported(execErr) {
		return nil, newEngineError(KindEvmFatal, execErr.Error())
	}
	result := classify(out, execErr)
	if result == nil {
		return nil, newEngineError(KindEvmError, execErr.Error())
	}
	result.GasUsed = args.GasLimit - leftOver
	if result.Status == StatusSucceed {
		e.state.commit(true)
	}
	return result, nil
}

// callContract invokes an already-deployed contract (or, if it has no
// code, performs a plain value transfer).
func (e *Engine) callContract(caller tvmtypes.Address, args CallArgs) (*ReturnResult, error) {
	value := args.Value.ToWei()
	machine := e.evm()
	out, leftOver, execErr := machine.Call(caller, args.Contract, args.Input, args.GasLimit, value, false)

	if isEnvNotSupported(execErr) {
		return nil, newEngineError(KindEvmFatal, execErr.Error())
	}
	result := classify(out, execErr)
	if result == nil {
		return nil, newEngineError(KindEvmError, execErr.Error())
	}
	result.GasUsed = args.GasLimit - leftOver
	if result.Status == StatusSucceed {
		e.state.commit(true)
	}
	return result, nil
}

// classify maps an internal/vm execution error to a TransactionStatus,
// the way engine.rs's EvmExitIntoResult impl maps evm::ExitReason. A nil
// return means the error does not correspond to any TransactionStatus and
// must instead be reported as an EngineError (KindEvmError) by the caller.
func classify(output []byte, err error) *ReturnResult {
	switch err {
	case nil:
		return &ReturnResult{Status: StatusSucceed, Output: output}
	case vm.ErrExecutionReverted:
		return &ReturnResult{Status: StatusRevert, Output: output}
	case vm.ErrOutOfGas, vm.ErrGasUintOverflow:
		return &ReturnResult{Status: StatusOutOfGas}
	case vm.ErrInsufficientBalance:
		return &ReturnResult{Status: StatusOutOfFund}
	case vm.ErrReturnDataOutOfBounds:
		return &ReturnResult{Status: StatusOutOfOffset}
	default:
		return nil
	}
}

package vm

import (
	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// EVM orchestrates contract calls and deployments against a StateDB, the
// execution context for a single transaction. It is not safe for
// concurrent use; each call creates its own interpreter frame but all
// frames of one transaction share the same EVM (and its depth counter).
type EVM struct {
	BlockContext BlockContext
	TxContext    TxContext
	StateDB      StateDB
	Precompiles  PrecompileSet
	Config       Config

	// DeriveCreate and DeriveCreate2 compute the address an in-contract
	// CREATE/CREATE2 deploys to. The engine wires in its tableid-matching
	// salt search here, the same one the top-level deploy_code dispatch
	// uses, so a factory contract's children land in its own shard just
	// like a directly-submitted deployment. Left nil, CREATE/CREATE2 fail
	// with ErrNotSupported rather than guessing an address scheme.
	DeriveCreate  func(caller tvmtypes.Address, nonce uint64, code []byte) (tvmtypes.Address, error)
	DeriveCreate2 func(caller tvmtypes.Address, salt tvmtypes.H256, code []byte) (tvmtypes.Address, error)

	chainID uint64
	depth   int

	interpreter *Interpreter
}

// PrecompileSet is the subset of the precompiles package EVM needs:
// address recognition and gas-then-run dispatch. The engine package wires
// its precompiles.Set in through this interface so internal/vm never
// imports the precompiles package directly.
type PrecompileSet interface {
	IsPrecompile(addr tvmtypes.Address) bool
	Run(addr tvmtypes.Address, input []byte, suppliedGas uint64, isStatic bool) (gasUsed uint64, ret []byte, err error)
}

// NewEVM builds an EVM for one transaction.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, precompiles PrecompileSet, chainID uint64, cfg Config) *EVM {
	if cfg.MaxCallDepth == 0 {
		cfg.MaxCallDepth = MaxCallDepth
	}
	evm := &EVM{
		BlockContext: blockCtx,
		TxContext:    txCtx,
		StateDB:      statedb,
		Precompiles:  precompiles,
		Config:       cfg,
		chainID:      chainID,
	}
	evm.interpreter = NewInterpreter(evm)
	return evm
}

// Call executes the code at addr as a message call from caller, carrying
// value and input, with gas as the budget. readOnly forces STATICCALL
// semantics for the whole subtree.
func (e *EVM) Call(caller, addr tvmtypes.Address, input []byte, gas uint64, value *uint256.Int, readOnly bool) (ret []byte, leftOverGas uint64, err error) {
	if e.depth > e.Config.MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && e.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	if e.Precompiles != nil && e.Precompiles.IsPrecompile(addr) {
		used, out, perr := e.Precompiles.Run(addr, input, gas, readOnly)
		if perr != nil {
			return nil, gas - used, perr
		}
		return out, gas - used, nil
	}

	snapshot := e.StateDB.Snapshot()
	if !e.StateDB.Exist(addr) {
		e.StateDB.CreateAccount(addr)
	}
	e.transfer(caller, addr, value)

	code := e.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, value, gas)
	contract.SetCallCode(&addr, e.StateDB.GetCodeHash(addr), code)

	e.depth++
	ret, err = e.interpreter.Run(contract, input, readOnly)
	e.depth--

	if err != nil {
		e.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

func (e *EVM) transfer(from, to tvmtypes.Address, value *uint256.Int) {
	if value == nil || value.IsZero() {
		return
	}
	e.StateDB.SubBalance(from, value)
	e.StateDB.AddBalance(to, value)
}

// Create deploys code as a new contract already assigned to contractAddr.
// The address is computed by the caller (the engine's tableid-matching
// CREATE2 loop), not derived here: internal/vm never hashes an address
// itself, since both CREATE's keccak(rlp) scheme and CREATE2's
// keccak(0xff||...) scheme are superseded by the SHA-256-keyed scheme the
// engine uses to keep deployer and contract in the same shard.
func (e *EVM) Create(caller, contractAddr tvmtypes.Address, code []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	if e.depth > e.Config.MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if len(code) > MaxInitCodeSize {
		return nil, gas, ErrInitCodeSizeExceeded
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() {
		bal := e.StateDB.GetBalance(caller)
		if bal.Lt(value) {
			return nil, gas, ErrInsufficientBalance
		}
	}
	if e.StateDB.Exist(contractAddr) && (e.StateDB.GetCodeSize(contractAddr) != 0 || e.StateDB.GetNonce(contractAddr) != 0) {
		return nil, gas, ErrContractAddressCollision
	}

	snapshot := e.StateDB.Snapshot()
	e.StateDB.CreateAccount(contractAddr)
	e.StateDB.SetNonce(contractAddr, 1)
	e.transfer(caller, contractAddr, value)

	contract := NewContract(caller, contractAddr, value, gas)
	contract.SetCallCode(&contractAddr, tvmtypes.H256{}, code)

	e.depth++
	ret, err = e.interpreter.Run(contract, nil, false)
	e.depth--

	if err == nil {
		if createDataGas, overflow := addUint64Overflow(uint64(len(ret))*GasCreateData, 0); !overflow {
			if len(ret) > MaxCodeSize {
				err = ErrCodeSizeExceeded
			} else if !contract.UseGas(createDataGas) {
				err = ErrOutOfGas
			} else {
				e.StateDB.SetCode(contractAddr, ret)
			}
		}
	}

	if err != nil {
		e.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
		return ret, contract.Gas, err
	}
	return ret, contract.Gas, nil
}

func addUint64Overflow(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

// CallCode runs target's code with caller's own storage and address
// (SLOAD/SSTORE/BALANCE inside it see caller's account), but value is
// transferred into caller's own balance and the call is attributed to
// caller, matching the CALLCODE opcode's legacy semantics.
func (e *EVM) CallCode(caller tvmtypes.Address, target tvmtypes.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	if e.depth > e.Config.MaxCallDepth {
		return nil, gas, ErrDepth
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && e.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	if e.Precompiles != nil && e.Precompiles.IsPrecompile(target) {
		used, out, perr := e.Precompiles.Run(target, input, gas, e.interpreter.readOnly)
		if perr != nil {
			return nil, gas - used, perr
		}
		return out, gas - used, nil
	}

	code := e.StateDB.GetCode(target)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, caller, value, gas)
	contract.SetCallCode(&target, e.StateDB.GetCodeHash(target), code)

	snapshot := e.StateDB.Snapshot()
	e.depth++
	ret, err = e.interpreter.Run(contract, input, e.interpreter.readOnly)
	e.depth--

	if err != nil {
		e.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// DelegateCall runs target's code with caller's own storage and address,
// and, unlike CallCode, also keeps the parent frame's original caller and
// value rather than substituting its own: the callee cannot tell it was
// reached through a delegate hop.
func (e *EVM) DelegateCall(parent *Contract, target tvmtypes.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	if e.depth > e.Config.MaxCallDepth {
		return nil, gas, ErrDepth
	}

	if e.Precompiles != nil && e.Precompiles.IsPrecompile(target) {
		used, out, perr := e.Precompiles.Run(target, input, gas, true)
		if perr != nil {
			return nil, gas - used, perr
		}
		return out, gas - used, nil
	}

	code := e.StateDB.GetCode(target)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(parent.CallerAddress, parent.Address, parent.Value, gas)
	contract.SetCallCode(&target, e.StateDB.GetCodeHash(target), code)

	snapshot := e.StateDB.Snapshot()
	e.depth++
	ret, err = e.interpreter.Run(contract, input, e.interpreter.readOnly)
	e.depth--

	if err != nil {
		e.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// callGas applies the EIP-150 63/64ths rule: a CALL family opcode may only
// forward gas up to the caller's remaining gas minus a 1/64th reserve, and
// the stack-requested amount is capped to that, never increased beyond it.
func callGas(available, requested uint64) uint64 {
	reserve := available / CallGasFraction
	capped := available - reserve
	if requested < capped {
		return requested
	}
	return capped
}

// execCallOp is invoked by the interpreter for CREATE, CREATE2, CALL,
// CALLCODE, DELEGATECALL, and STATICCALL, recursing back into the EVM's
// own Call/Create/CallCode/DelegateCall orchestration so bytecode that
// itself calls or deploys other contracts (proxies, token transfers,
// factories) executes like any other EVM opcode sequence.
func (e *EVM) execCallOp(op OpCode, pc *uint64, sc *ScopeContext) ([]byte, error) {
	switch op {
	case CALL, CALLCODE, DELEGATECALL, STATICCALL:
		return e.execCall(op, sc)
	case CREATE, CREATE2:
		return e.execCreate(op, sc)
	}
	return nil, ErrInvalidOpCode
}

func (e *EVM) execCall(op OpCode, sc *ScopeContext) ([]byte, error) {
	gasArg, _ := sc.Stack.pop()
	addrWord, _ := sc.Stack.pop()
	value := new(uint256.Int)
	if op == CALL || op == CALLCODE {
		v, _ := sc.Stack.pop()
		value.Set(&v)
	}
	argsOffset, _ := sc.Stack.pop()
	argsSize, _ := sc.Stack.pop()
	retOffset, _ := sc.Stack.pop()
	retSize, _ := sc.Stack.pop()

	addr := wordToAddress(&addrWord)
	input := sc.Memory.GetCopy(argsOffset.Uint64(), argsSize.Uint64())

	if e.interpreter.readOnly && (op == CALL || op == CALLCODE) && !value.IsZero() {
		return nil, ErrWriteProtection
	}

	gas := callGas(sc.Contract.Gas, gasArg.Uint64())
	if !sc.Contract.UseGas(gas) {
		return nil, ErrOutOfGas
	}
	if (op == CALL || op == CALLCODE) && !value.IsZero() {
		gas += GasCallStipend
	}

	var (
		ret      []byte
		leftOver uint64
		err      error
	)
	switch op {
	case CALL:
		ret, leftOver, err = e.Call(sc.Contract.Address, addr, input, gas, value, e.interpreter.readOnly)
	case STATICCALL:
		ret, leftOver, err = e.Call(sc.Contract.Address, addr, input, gas, nil, true)
	case CALLCODE:
		ret, leftOver, err = e.CallCode(sc.Contract.Address, addr, input, gas, value)
	case DELEGATECALL:
		ret, leftOver, err = e.DelegateCall(sc.Contract, addr, input, gas)
	}
	sc.Contract.Gas += leftOver
	e.interpreter.returnData = ret

	success := new(uint256.Int)
	if err == nil {
		success.SetOne()
	}
	n := retSize.Uint64()
	if uint64(len(ret)) < n {
		n = uint64(len(ret))
	}
	if n > 0 {
		sc.Memory.Set(retOffset.Uint64(), n, ret[:n])
	}
	sc.Stack.push(success)
	return nil, nil
}

func (e *EVM) execCreate(op OpCode, sc *ScopeContext) ([]byte, error) {
	value, _ := sc.Stack.pop()
	offset, _ := sc.Stack.pop()
	size, _ := sc.Stack.pop()
	var salt uint256.Int
	if op == CREATE2 {
		salt, _ = sc.Stack.pop()
	}
	code := sc.Memory.GetCopy(offset.Uint64(), size.Uint64())

	var (
		addr tvmtypes.Address
		err  error
	)
	switch op {
	case CREATE:
		if e.DeriveCreate == nil {
			err = ErrNotSupported
		} else {
			addr, err = e.DeriveCreate(sc.Contract.Address, e.StateDB.GetNonce(sc.Contract.Address), code)
		}
	case CREATE2:
		if e.DeriveCreate2 == nil {
			err = ErrNotSupported
		} else {
			addr, err = e.DeriveCreate2(sc.Contract.Address, tvmtypes.H256(salt.Bytes32()), code)
		}
	}

	result := new(uint256.Int)
	if err == nil {
		e.StateDB.SetNonce(sc.Contract.Address, e.StateDB.GetNonce(sc.Contract.Address)+1)
		gas := callGas(sc.Contract.Gas, sc.Contract.Gas)
		if !sc.Contract.UseGas(gas) {
			return nil, ErrOutOfGas
		}
		ret, leftOver, createErr := e.Create(sc.Contract.Address, addr, code, gas, &value)
		sc.Contract.Gas += leftOver
		e.interpreter.returnData = ret
		if createErr == nil {
			result.SetBytes(addr.Bytes())
		}
	}
	sc.Stack.push(result)
	return nil, nil
}

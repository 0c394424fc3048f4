package vm

import (
	"fmt"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// Interpreter runs a single contract's bytecode against an EVM's state and
// environment. One Interpreter is created per EVM and reused across nested
// calls. Run sets readOnly for a static frame and clears it again when
// that same frame returns; returnData is reset at the start of each Run and
// replaced by the output of every nested call or create.
type Interpreter struct {
	evm      *EVM
	table    [256]*operation
	readOnly bool

	returnData []byte
}

// NewInterpreter builds an interpreter bound to evm using the London
// opcode table; this is the only ruleset this engine supports.
func NewInterpreter(evm *EVM) *Interpreter {
	return &Interpreter{
		evm:   evm,
		table: newLondonJumpTable(),
	}
}

// Run executes contract's code against input, fetching, gas-charging, and
// dispatching one opcode at a time until STOP/RETURN/REVERT or an error.
// readOnly forces a static (non-mutating) call; once set it cannot be
// cleared by nested calls.
func (in *Interpreter) Run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	contract.Input = input

	if readOnly && !in.readOnly {
		in.readOnly = true
		defer func() { in.readOnly = false }()
	}

	in.returnData = nil

	if len(contract.Code) == 0 {
		return nil, nil
	}

	var (
		pc     uint64
		stack  = newStack()
		memory = newMemory()
		scope  = &ScopeContext{Memory: memory, Stack: stack, Contract: contract}
	)

	for {
		op := contract.GetOp(pc)
		operation := in.table[op]
		if operation == nil {
			return nil, fmt.Errorf("%w: 0x%x", ErrInvalidOpCode, byte(op))
		}
		if stack.len() < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if stack.len() > operation.maxStack {
			return nil, ErrStackOverflow
		}
		if in.readOnly && isStateMutating(op) {
			return nil, ErrWriteProtection
		}

		dynamicCost, err := in.dynamicGas(op, contract, scope)
		if err != nil {
			return nil, err
		}
		if !contract.UseGas(operation.constantGas) || !contract.UseGas(dynamicCost) {
			return nil, ErrOutOfGas
		}

		ret, err := in.dispatch(op, &pc, scope)
		if err != nil {
			if err == errStopExecution {
				return ret, nil
			}
			return ret, err
		}
		pc++
	}
}

// isStateMutating reports whether op writes persistent state or emits a
// log, both forbidden inside a STATICCALL.
func isStateMutating(op OpCode) bool {
	switch op {
	case SSTORE, LOG0, LOG1, LOG2, LOG3, LOG4, CREATE, CREATE2, SELFDESTRUCT:
		return true
	}
	return false
}

const (
	LOG1 = LOG0 + 1
	LOG2 = LOG0 + 2
	LOG3 = LOG0 + 3
)

// dynamicGas computes the input-dependent portion of an opcode's cost:
// memory expansion plus a handful of opcode-specific surcharges not fully
// modeled by the constant-gas table (SSTORE net-metering, CALL family, and
// CREATE/CREATE2 init-code charges are approximated here rather than
// split out per EIP, since this engine's call surface is narrower than a
// full chain client's).
func (in *Interpreter) dynamicGas(op OpCode, contract *Contract, sc *ScopeContext) (uint64, error) {
	switch op {
	case KECCAK256:
		size := sc.Stack.back(1)
		words := toWordSize(size.Uint64())
		memCost, err := in.memExpansion(sc, sc.Stack.back(0).Uint64(), size.Uint64())
		if err != nil {
			return 0, err
		}
		return memCost + GasSha3Word*words, nil
	case CALLDATACOPY, CODECOPY, RETURNDATACOPY:
		size := sc.Stack.back(2)
		words := toWordSize(size.Uint64())
		memCost, err := in.memExpansion(sc, sc.Stack.back(0).Uint64(), size.Uint64())
		if err != nil {
			return 0, err
		}
		return memCost + GasCopyWord*words, nil
	case EXTCODECOPY:
		size := sc.Stack.back(3)
		words := toWordSize(size.Uint64())
		memCost, err := in.memExpansion(sc, sc.Stack.back(1).Uint64(), size.Uint64())
		if err != nil {
			return 0, err
		}
		return memCost + GasCopyWord*words, nil
	case MLOAD:
		return in.memExpansion(sc, sc.Stack.back(0).Uint64(), 32)
	case MSTORE:
		return in.memExpansion(sc, sc.Stack.back(0).Uint64(), 32)
	case MSTORE8:
		return in.memExpansion(sc, sc.Stack.back(0).Uint64(), 1)
	case RETURN, REVERT:
		return in.memExpansion(sc, sc.Stack.back(0).Uint64(), sc.Stack.back(1).Uint64())
	case LOG0, LOG1, LOG2, LOG3, LOG4:
		n := int(op - LOG0)
		size := sc.Stack.back(1)
		memCost, err := in.memExpansion(sc, sc.Stack.back(0).Uint64(), size.Uint64())
		if err != nil {
			return 0, err
		}
		return memCost + uint64(n)*GasLogTopic + GasLogByte*size.Uint64(), nil
	case SSTORE:
		key := tvmtypes.H256(sc.Stack.back(0).Bytes32())
		current := in.evm.StateDB.GetState(contract.Address, key)
		newVal := sc.Stack.back(1).Bytes32()
		if current.IsZero() && newVal != ([32]byte{}) {
			return GasSstoreSet, nil
		}
		return GasSstoreReset, nil
	case CALL, CALLCODE:
		cost, err := in.callMemCost(sc, 3, 4, 5, 6)
		if err != nil {
			return 0, err
		}
		if !sc.Stack.back(2).IsZero() {
			cost += GasCallValue
		}
		return cost, nil
	case DELEGATECALL, STATICCALL:
		return in.callMemCost(sc, 2, 3, 4, 5)
	case CREATE:
		cost, err := in.memExpansion(sc, sc.Stack.back(1).Uint64(), sc.Stack.back(2).Uint64())
		if err != nil {
			return 0, err
		}
		return cost + GasCreate, nil
	case CREATE2:
		size := sc.Stack.back(2)
		words := toWordSize(size.Uint64())
		cost, err := in.memExpansion(sc, sc.Stack.back(1).Uint64(), size.Uint64())
		if err != nil {
			return 0, err
		}
		return cost + GasCreate + GasSha3Word*words, nil
	}
	return 0, nil
}

// callMemCost charges memory expansion for a CALL-family opcode's args and
// return regions, found at stack depths argsOffIdx/argsSizeIdx and
// retOffIdx/retSizeIdx (0-indexed from the top, before any operand is
// popped).
func (in *Interpreter) callMemCost(sc *ScopeContext, argsOffIdx, argsSizeIdx, retOffIdx, retSizeIdx int) (uint64, error) {
	argsCost, err := in.memExpansion(sc, sc.Stack.back(argsOffIdx).Uint64(), sc.Stack.back(argsSizeIdx).Uint64())
	if err != nil {
		return 0, err
	}
	retCost, err := in.memExpansion(sc, sc.Stack.back(retOffIdx).Uint64(), sc.Stack.back(retSizeIdx).Uint64())
	if err != nil {
		return 0, err
	}
	return argsCost + retCost, nil
}

func (in *Interpreter) memExpansion(sc *ScopeContext, offset, size uint64) (uint64, error) {
	if size == 0 {
		return 0, nil
	}
	newLen := offset + size
	if newLen < offset {
		return 0, ErrGasUintOverflow
	}
	cost, err := memoryGasCost(uint64(sc.Memory.Len()), newLen)
	if err != nil {
		return 0, err
	}
	sc.Memory.Resize(newLen)
	return cost, nil
}

func (in *Interpreter) dispatch(op OpCode, pc *uint64, sc *ScopeContext) ([]byte, error) {
	switch op {
	case CREATE, CREATE2, CALL, CALLCODE, DELEGATECALL, STATICCALL:
		return in.evm.execCallOp(op, pc, sc)
	default:
		return in.table[op].execute(pc, in, sc)
	}
}

package vm

import "errors"

var (
	ErrOutOfGas              = errors.New("out of gas")
	ErrGasUintOverflow       = errors.New("gas uint64 overflow")
	ErrInvalidJump           = errors.New("invalid jump destination")
	ErrWriteProtection       = errors.New("write protection")
	ErrExecutionReverted     = errors.New("execution reverted")
	ErrMaxCallDepthExceeded  = errors.New("max call depth exceeded")
	ErrInvalidOpCode         = errors.New("invalid opcode")
	ErrReturnDataOutOfBounds = errors.New("return data out of bounds")
	ErrInsufficientBalance   = errors.New("insufficient balance for transfer")
	ErrDepth                 = errors.New("max call depth exceeded")
	ErrInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrNotSupported          = errors.New("host environment value not supported")
)

// errStopExecution is a sentinel used internally to unwind the interpreter
// loop on STOP/RETURN without signaling a real execution error.
var errStopExecution = errors.New("stop execution")

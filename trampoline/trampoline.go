// Package trampoline is the engine's C-ABI entry point: it reads one call's
// arguments out of the host's input register, drives an engine.Engine, and
// writes the result back out through the host's result register. Besides
// this package, only envoracle.HostEnv and hostio itself touch
// hostio.Callbacks; the engine works against the ioadapter and envoracle
// interfaces.
package trampoline

import (
	"encoding/binary"
	"fmt"

	"github.com/topnetwork/tvm-engine-go/engine"
	"github.com/topnetwork/tvm-engine-go/envoracle"
	"github.com/topnetwork/tvm-engine-go/hostio"
	"github.com/topnetwork/tvm-engine-go/ioadapter"
	"github.com/topnetwork/tvm-engine-go/log"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

var logger = log.Default().Module("trampoline")

// statusFatal is the wire value reported in place of a TransactionStatus
// when the call never reached one (an EngineError), matching the
// reference host's u32::MAX sentinel.
const statusFatal uint32 = 0xFFFFFFFF

// argsKindCall and argsKindDeploy tag the first byte of a CallArgs frame:
// a zero Contract address is ambiguous with "call the zero address", so
// the wire format carries the deploy/call decision explicitly rather than
// inferring it the way engine.Engine.dispatch does internally. A call frame
// whose Contract is the zero address still reaches the engine as a zero
// Contract, so the engine treats it as a deployment too.
const (
	argsKindCall   byte = 0
	argsKindDeploy byte = 1
)

// Call is the trampoline's sole export: decode the host's input register,
// run one engine call, and encode the result back into the result
// register. A malformed input frame is an integrity failure, not an
// engine outcome: it is reported through the host's log hook and then
// Call panics. An EngineError from the engine is encoded with encodeFatal.
func Call(cb *hostio.Callbacks, env envoracle.Env) {
	io := hostio.NewRegisterIO(cb)

	raw := ioadapter.Bytes(io.GetInput())
	args, caller, err := decodeCallArgs(raw)
	if err != nil {
		logger.Error("malformed call arguments", "error", err)
		io.Log(err.Error())
		panic(err)
	}

	eng := engine.New(io, env)
	result, callErr := eng.Call(caller, args)
	if callErr != nil {
		logger.Warn("engine call did not reach a transaction status", "error", callErr)
		io.SetOutput(encodeFatal(callErr.Error()))
		return
	}

	io.SetOutput(encodeReturnResult(result))
}

// decodeCallArgs parses the wire frame:
//
//	[1]  kind (0=call, 1=deploy)
//	[20] caller address
//	[20] contract address (ignored/zero when kind=deploy)
//	[8]  gas limit, big-endian
//	[8]  value, uTOP, big-endian
//	[4]  input length, big-endian
//	[input length] input bytes
func decodeCallArgs(raw []byte) (engine.CallArgs, tvmtypes.Address, error) {
	const headerLen = 1 + 20 + 20 + 8 + 8 + 4
	if len(raw) < headerLen {
		return engine.CallArgs{}, tvmtypes.Address{}, fmt.Errorf("trampoline: call frame too short: %d bytes", len(raw))
	}

	kind := raw[0]
	off := 1

	caller, err := tvmtypes.AddressFromBytes(raw[off : off+20])
	if err != nil {
		return engine.CallArgs{}, tvmtypes.Address{}, fmt.Errorf("trampoline: caller address: %w", err)
	}
	off += 20

	contract, err := tvmtypes.AddressFromBytes(raw[off : off+20])
	if err != nil {
		return engine.CallArgs{}, tvmtypes.Address{}, fmt.Errorf("trampoline: contract address: %w", err)
	}
	off += 20

	gasLimit := binary.BigEndian.Uint64(raw[off : off+8])
	off += 8

	value := binary.BigEndian.Uint64(raw[off : off+8])
	off += 8

	inputLen := binary.BigEndian.Uint32(raw[off : off+4])
	off += 4

	if uint64(off)+uint64(inputLen) > uint64(len(raw)) {
		return engine.CallArgs{}, tvmtypes.Address{}, fmt.Errorf("trampoline: input length %d exceeds frame", inputLen)
	}
	input := make([]byte, inputLen)
	copy(input, raw[off:off+int(inputLen)])

	if kind == argsKindDeploy {
		contract = tvmtypes.ZeroAddress
	}

	return engine.CallArgs{
		Contract: contract,
		Input:    input,
		GasLimit: gasLimit,
		Value:    tvmtypes.NewUTop(value),
	}, caller, nil
}

// encodeReturnResult serializes a successful dispatch:
//
//	[4] status, big-endian
//	[8] gas used, big-endian
//	[4] output length, big-endian
//	[output length] output bytes
func encodeReturnResult(r *engine.ReturnResult) []byte {
	buf := make([]byte, 4+8+4+len(r.Output))
	binary.BigEndian.PutUint32(buf[0:4], r.Status.AsU32())
	binary.BigEndian.PutUint64(buf[4:12], r.GasUsed)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(r.Output)))
	copy(buf[16:], r.Output)
	return buf
}

// encodeFatal serializes the EngineError path: status is the statusFatal
// sentinel, followed by a length-prefixed UTF-8 message in place of
// output, mirroring the reference c_interface's ReturnResult{status:
// u32::MAX, ...} mapping for a failed Result::Err.
func encodeFatal(message string) []byte {
	msg := []byte(message)
	buf := make([]byte, 4+8+4+len(msg))
	binary.BigEndian.PutUint32(buf[0:4], statusFatal)
	binary.BigEndian.PutUint64(buf[4:12], 0)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(msg)))
	copy(buf[16:], msg)
	return buf
}

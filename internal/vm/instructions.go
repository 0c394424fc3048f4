package vm

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// ScopeContext groups the memory, stack, and contract frame an execution
// function operates against.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

func opAdd(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.SMod(&x, y)
	return nil, nil
}

func opExp(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	base, _ := sc.Stack.pop()
	exponent := sc.Stack.back(0)
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	back, _ := sc.Stack.pop()
	num := sc.Stack.back(0)
	num.ExtendSign(num, &back)
	return nil, nil
}

func opAddmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y, _ := sc.Stack.pop()
	z := sc.Stack.back(0)
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y, _ := sc.Stack.pop()
	z := sc.Stack.back(0)
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opLt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x := sc.Stack.back(0)
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x, _ := sc.Stack.pop()
	y := sc.Stack.back(0)
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x := sc.Stack.back(0)
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	th, _ := sc.Stack.pop()
	val := sc.Stack.back(0)
	val.Byte(&th)
	return nil, nil
}

func opShl(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, _ := sc.Stack.pop()
	value := sc.Stack.back(0)
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, _ := sc.Stack.pop()
	value := sc.Stack.back(0)
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	shift, _ := sc.Stack.pop()
	value := sc.Stack.back(0)
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opSha3(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, _ := sc.Stack.pop()
	size := sc.Stack.back(0)
	data := sc.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}

func opAddress(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(addressToWord(sc.Contract.Address))
	return nil, nil
}

func opBalance(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot := sc.Stack.back(0)
	addr := wordToAddress(slot)
	slot.Set(in.evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(addressToWord(in.evm.TxContext.Origin))
	return nil, nil
}

func opCaller(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(addressToWord(sc.Contract.CallerAddress))
	return nil, nil
}

func opCallValue(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v := new(uint256.Int).Set(sc.Contract.Value)
	sc.Stack.push(v)
	return nil, nil
}

func opCallDataLoad(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	x := sc.Stack.back(0)
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(sc.Contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(uint64(len(sc.Contract.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	memOffset, _ := sc.Stack.pop()
	dataOffset, _ := sc.Stack.pop()
	length, _ := sc.Stack.pop()

	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = 0xffffffffffffffff
	}
	data := getData(sc.Contract.Input, dataOffset64, length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opCodeSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(uint64(len(sc.Contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	memOffset, _ := sc.Stack.pop()
	codeOffset, _ := sc.Stack.pop()
	length, _ := sc.Stack.pop()

	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	data := getData(sc.Contract.Code, codeOffset64, length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opExtCodeSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot := sc.Stack.back(0)
	addr := wordToAddress(slot)
	slot.SetUint64(uint64(in.evm.StateDB.GetCodeSize(addr)))
	return nil, nil
}

func opExtCodeHash(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot := sc.Stack.back(0)
	addr := wordToAddress(slot)
	if !in.evm.StateDB.Exist(addr) {
		slot.Clear()
		return nil, nil
	}
	slot.SetBytes(in.evm.StateDB.GetCodeHash(addr).Bytes())
	return nil, nil
}

func opExtCodeCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	slot, _ := sc.Stack.pop()
	addr := wordToAddress(&slot)
	memOffset, _ := sc.Stack.pop()
	codeOffset, _ := sc.Stack.pop()
	length, _ := sc.Stack.pop()

	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	code := in.evm.StateDB.GetCode(addr)
	data := getData(code, codeOffset64, length.Uint64())
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opGasprice(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).Set(in.evm.TxContext.GasPrice))
	return nil, nil
}

func opReturnDataSize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(uint64(len(in.returnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	memOffset, _ := sc.Stack.pop()
	dataOffset, _ := sc.Stack.pop()
	length, _ := sc.Stack.pop()

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	end64, overflow := new(uint256.Int).Add(&dataOffset, &length).Uint64WithOverflow()
	if overflow || uint64(len(in.returnData)) < end64 {
		return nil, ErrReturnDataOutOfBounds
	}
	sc.Memory.Set(memOffset.Uint64(), length.Uint64(), in.returnData[offset64:end64])
	return nil, nil
}

func opBlockhash(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.evm.BlockContext.GetHash == nil {
		return nil, ErrNotSupported
	}
	num := sc.Stack.back(0)
	h, err := in.evm.BlockContext.GetHash(num.Uint64())
	if err != nil {
		return nil, err
	}
	num.SetBytes(h.Bytes())
	return nil, nil
}

func opCoinbase(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(addressToWord(in.evm.BlockContext.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(in.evm.BlockContext.Time))
	return nil, nil
}

func opNumber(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).Set(in.evm.BlockContext.BlockNumber))
	return nil, nil
}

func opDifficulty(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.evm.BlockContext.Difficulty == nil {
		return nil, ErrNotSupported
	}
	d, err := in.evm.BlockContext.Difficulty()
	if err != nil {
		return nil, err
	}
	sc.Stack.push(new(uint256.Int).Set(d))
	return nil, nil
}

func opGasLimit(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.evm.BlockContext.GasLimit == nil {
		return nil, ErrNotSupported
	}
	limit, err := in.evm.BlockContext.GasLimit()
	if err != nil {
		return nil, err
	}
	sc.Stack.push(new(uint256.Int).SetUint64(limit))
	return nil, nil
}

func opChainID(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(in.evm.chainID))
	return nil, nil
}

func opSelfBalance(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(in.evm.StateDB.GetBalance(sc.Contract.Address))
	return nil, nil
}

func opBaseFee(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.evm.BlockContext.BaseFee == nil {
		return nil, ErrNotSupported
	}
	fee, err := in.evm.BlockContext.BaseFee()
	if err != nil {
		return nil, err
	}
	sc.Stack.push(new(uint256.Int).Set(fee))
	return nil, nil
}

func opPop(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	v := sc.Stack.back(0)
	offset := v.Uint64()
	v.SetBytes(sc.Memory.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	mStart, _ := sc.Stack.pop()
	val, _ := sc.Stack.pop()
	sc.Memory.Set32(mStart.Uint64(), val.Bytes32())
	return nil, nil
}

func opMstore8(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	off, _ := sc.Stack.pop()
	val, _ := sc.Stack.pop()
	sc.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	loc := sc.Stack.back(0)
	key := tvmtypes.H256(loc.Bytes32())
	val := in.evm.StateDB.GetState(sc.Contract.Address, key)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.readOnly {
		return nil, ErrWriteProtection
	}
	loc, _ := sc.Stack.pop()
	val, _ := sc.Stack.pop()
	key := tvmtypes.H256(loc.Bytes32())
	in.evm.StateDB.SetState(sc.Contract.Address, key, tvmtypes.H256(val.Bytes32()))
	return nil, nil
}

func opJump(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	pos, _ := sc.Stack.pop()
	if !sc.Contract.validJumpdest(&pos) {
		return nil, ErrInvalidJump
	}
	*pc = pos.Uint64() - 1
	return nil, nil
}

func opJumpi(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	pos, _ := sc.Stack.pop()
	cond, _ := sc.Stack.pop()
	if !cond.IsZero() {
		if !sc.Contract.validJumpdest(&pos) {
			return nil, ErrInvalidJump
		}
		*pc = pos.Uint64() - 1
	}
	return nil, nil
}

func opJumpdest(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(uint64(sc.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int).SetUint64(sc.Contract.Gas))
	return nil, nil
}

func opReturn(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, _ := sc.Stack.pop()
	size, _ := sc.Stack.pop()
	ret := sc.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, errStopExecution
}

func opRevert(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	offset, _ := sc.Stack.pop()
	size, _ := sc.Stack.pop()
	ret := sc.Memory.GetCopy(offset.Uint64(), size.Uint64())
	return ret, ErrExecutionReverted
}

func opStop(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	return nil, errStopExecution
}

func opInvalid(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opUndefined(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opSelfdestruct(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	if in.readOnly {
		return nil, ErrWriteProtection
	}
	beneficiary, _ := sc.Stack.pop()
	balance := in.evm.StateDB.GetBalance(sc.Contract.Address)
	in.evm.StateDB.AddBalance(wordToAddress(&beneficiary), balance)
	in.evm.StateDB.SubBalance(sc.Contract.Address, balance)
	return nil, errStopExecution
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		if in.readOnly {
			return nil, ErrWriteProtection
		}
		mStart, _ := sc.Stack.pop()
		mSize, _ := sc.Stack.pop()
		topics := make([]tvmtypes.H256, n)
		for i := 0; i < n; i++ {
			t, _ := sc.Stack.pop()
			topics[i] = tvmtypes.H256(t.Bytes32())
		}
		data := sc.Memory.GetCopy(mStart.Uint64(), mSize.Uint64())
		in.evm.StateDB.AddLog(&Log{
			Address: sc.Contract.Address,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		sc.Stack.dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		sc.Stack.swap(n)
		return nil, nil
	}
}

func makePush(size int) executionFunc {
	return func(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
		codeLen := uint64(len(sc.Contract.Code))
		start := min(codeLen, *pc+1)
		end := min(codeLen, start+uint64(size))
		data := sc.Contract.Code[start:end]
		v := new(uint256.Int).SetBytes(data)
		if len(data) < size {
			v.Lsh(v, uint(8*(size-len(data))))
		}
		sc.Stack.push(v)
		*pc += uint64(size)
		return nil, nil
	}
}

func opPush0(pc *uint64, in *Interpreter, sc *ScopeContext) ([]byte, error) {
	sc.Stack.push(new(uint256.Int))
	return nil, nil
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// getData returns len bytes of data starting at offset, zero-padded if the
// requested range runs past the end of data.
func getData(data []byte, offset, length uint64) []byte {
	if offset > uint64(len(data)) {
		offset = uint64(len(data))
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	result := make([]byte, length)
	copy(result, data[offset:end])
	return result
}

func addressToWord(addr tvmtypes.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(addr.Bytes())
}

func wordToAddress(w *uint256.Int) tvmtypes.Address {
	b := w.Bytes32()
	var a tvmtypes.Address
	copy(a[:], b[12:])
	return a
}

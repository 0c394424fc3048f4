package vm

import (
	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// Contract is one frame of EVM execution: the running code, its caller and
// address, calldata, remaining gas, and value.
type Contract struct {
	CallerAddress tvmtypes.Address
	Address       tvmtypes.Address
	Code          []byte
	CodeHash      tvmtypes.H256
	Input         []byte
	Gas           uint64
	Value         *uint256.Int

	jumpdests map[uint64]bool
}

// NewContract builds a contract execution frame.
func NewContract(caller, addr tvmtypes.Address, value *uint256.Int, gas uint64) *Contract {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		Value:         value,
		Gas:           gas,
	}
}

// SetCallCode attaches code (and its hash) to the contract, as happens when
// CALL/STATICCALL/DELEGATECALL/CALLCODE load the callee's code.
func (c *Contract) SetCallCode(addr *tvmtypes.Address, hash tvmtypes.H256, code []byte) {
	c.Code = code
	c.CodeHash = hash
	if addr != nil {
		c.Address = *addr
	}
}

// GetOp returns the opcode at position n, or STOP past the end of code.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas consumes amount gas, reporting false (without mutating Gas) if
// there is not enough remaining.
func (c *Contract) UseGas(amount uint64) bool {
	if c.Gas < amount {
		return false
	}
	c.Gas -= amount
	return true
}

// validJumpdest reports whether dest is a JUMPDEST opcode that is not
// embedded inside PUSH immediate data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = make(map[uint64]bool)
		c.analyzeJumpdests()
	}
	return c.jumpdests[pos]
}

func (c *Contract) analyzeJumpdests() {
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			c.jumpdests[i] = true
		}
		if op.IsPush() && op >= PUSH1 {
			i += uint64(op - PUSH1 + 1)
		}
	}
}

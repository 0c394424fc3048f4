package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

func TestContractUseGas(t *testing.T) {
	c := NewContract(tvmtypes.Address{}, tvmtypes.Address{}, nil, 100)
	if !c.UseGas(40) {
		t.Fatal("expected UseGas(40) to succeed with 100 remaining")
	}
	if c.Gas != 60 {
		t.Errorf("Gas = %d, want 60", c.Gas)
	}
	if c.UseGas(1000) {
		t.Fatal("expected UseGas(1000) to fail with 60 remaining")
	}
	if c.Gas != 60 {
		t.Errorf("Gas after failed UseGas = %d, want unchanged 60", c.Gas)
	}
}

func TestContractGetOpPastEndIsStop(t *testing.T) {
	c := NewContract(tvmtypes.Address{}, tvmtypes.Address{}, nil, 0)
	c.Code = []byte{byte(ADD)}
	if c.GetOp(0) != ADD {
		t.Errorf("GetOp(0) = %v, want ADD", c.GetOp(0))
	}
	if c.GetOp(5) != STOP {
		t.Errorf("GetOp(5) = %v, want STOP", c.GetOp(5))
	}
}

func TestValidJumpdest(t *testing.T) {
	// PUSH1 0x5b JUMPDEST: the 0x5b pushed as data must not be treated
	// as a jump target, only the real JUMPDEST at index 2.
	c := NewContract(tvmtypes.Address{}, tvmtypes.Address{}, nil, 0)
	c.Code = []byte{byte(PUSH1), byte(JUMPDEST), byte(JUMPDEST)}

	if c.validJumpdest(uint256.NewInt(1)) {
		t.Error("push immediate data must not be a valid jump destination")
	}
	if !c.validJumpdest(uint256.NewInt(2)) {
		t.Error("index 2 holds a real JUMPDEST and should be valid")
	}
}

func TestValidJumpdestOutOfBounds(t *testing.T) {
	c := NewContract(tvmtypes.Address{}, tvmtypes.Address{}, nil, 0)
	c.Code = []byte{byte(JUMPDEST)}
	if c.validJumpdest(uint256.NewInt(100)) {
		t.Error("out-of-bounds destination must be invalid")
	}

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	if c.validJumpdest(huge) {
		t.Error("destination overflowing uint64 must be invalid")
	}
}

func TestValidJumpdestNotJumpdestOpcode(t *testing.T) {
	c := NewContract(tvmtypes.Address{}, tvmtypes.Address{}, nil, 0)
	c.Code = []byte{byte(ADD)}
	if c.validJumpdest(uint256.NewInt(0)) {
		t.Error("a non-JUMPDEST opcode must not be a valid jump destination")
	}
}

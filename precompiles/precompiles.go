// Package precompiles implements the nine fixed-address built-in contracts
// the engine exposes to the EVM interpreter at addresses 0x01 through 0x09:
// ecRecover, SHA-256, RIPEMD-160, Identity, ModExp, and the three bn256
// (alt_bn128) curve operations plus Blake2F. Each required_gas/run pair is
// dispatched by Set, which always charges gas before running the body.
package precompiles

import (
	"errors"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// ErrOutOfGas is returned by Set.Run when target gas is below the
// precompile's required gas; the body is never invoked in that case.
var ErrOutOfGas = errors.New("precompiles: out of gas")

// ErrFqIncorrect signals a bn256 coordinate that is not a valid field
// element (greater than or equal to the field modulus).
var ErrFqIncorrect = errors.New("precompiles: ERR_FQ_INCORRECT")

// ErrBn128InvalidPoint signals a bn256 coordinate pair that does not lie on
// the curve.
var ErrBn128InvalidPoint = errors.New("precompiles: ERR_BN128_INVALID_POINT")

// ErrBn128InvalidLength signals a bn256 pairing input whose length is not a
// positive multiple of 192.
var ErrBn128InvalidLength = errors.New("precompiles: ERR_BN128_INVALID_LEN")

// Precompile is one fixed-address built-in: a pure gas estimator and a body
// that performs the actual computation. Gas is always charged by the
// dispatcher before Run executes.
type Precompile interface {
	RequiredGas(input []byte) tvmtypes.Gas
	Run(input []byte) ([]byte, error)
}

// addressOf zero-pads a small integer id into the 20-byte precompile
// address convention (0x01 .. 0x09).
func addressOf(id byte) tvmtypes.Address {
	var a tvmtypes.Address
	a[len(a)-1] = id
	return a
}

// Set is the dispatcher mapping precompile addresses to their
// implementations. Construction is one-time per call; lookup is a map
// access.
type Set struct {
	contracts map[tvmtypes.Address]Precompile
}

// NewSet builds the standard nine-precompile set at addresses 0x01-0x09.
func NewSet() *Set {
	s := &Set{contracts: make(map[tvmtypes.Address]Precompile, 9)}
	s.contracts[addressOf(0x01)] = &ecRecover{}
	s.contracts[addressOf(0x02)] = &sha256Hash{}
	s.contracts[addressOf(0x03)] = &ripemd160Hash{}
	s.contracts[addressOf(0x04)] = &identity{}
	s.contracts[addressOf(0x05)] = &modExp{}
	s.contracts[addressOf(0x06)] = &bn256Add{}
	s.contracts[addressOf(0x07)] = &bn256Mul{}
	s.contracts[addressOf(0x08)] = &bn256Pairing{}
	s.contracts[addressOf(0x09)] = &blake2F{}
	return s
}

// IsPrecompile reports whether addr names one of the nine built-ins.
func (s *Set) IsPrecompile(addr tvmtypes.Address) bool {
	_, ok := s.contracts[addr]
	return ok
}

// Run dispatches to the precompile at addr, charging its required gas
// before the body executes. isStatic is accepted for interface symmetry
// with ordinary contract calls; none of the nine built-ins mutate state.
func (s *Set) Run(addr tvmtypes.Address, input []byte, targetGas tvmtypes.Gas, isStatic bool) (cost tvmtypes.Gas, output []byte, err error) {
	p, ok := s.contracts[addr]
	if !ok {
		return 0, nil, errors.New("precompiles: not a precompiled address")
	}
	required := p.RequiredGas(input)
	if targetGas < required {
		return 0, nil, ErrOutOfGas
	}
	output, err = p.Run(input)
	return required, output, err
}

// wordCount returns ceil(size/32), the number of 32-byte words, used by the
// linear gas formulas (SHA-256, RIPEMD-160, Identity).
func wordCount(size int) uint64 {
	if size == 0 {
		return 0
	}
	return uint64((size + 31) / 32)
}

// padRight returns data zero-extended on the right to at least minLen
// bytes, without mutating the input.
func padRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

package precompiles

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/bn256"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// bn256FieldModulus is the alt_bn128 base field prime, used to validate
// individual Fq coordinates before handing them to the curve library.
var bn256FieldModulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)

// newG1Point parses a 64-byte (x, y) pair into a bn256.G1 point. (0, 0) is
// the point at infinity. Coordinates that are not valid field elements
// yield ErrFqIncorrect; valid field elements that do not lie on the curve
// yield ErrBn128InvalidPoint.
func newG1Point(data []byte) (*bn256.G1, error) {
	x := new(big.Int).SetBytes(data[0:32])
	y := new(big.Int).SetBytes(data[32:64])
	if x.Cmp(bn256FieldModulus) >= 0 || y.Cmp(bn256FieldModulus) >= 0 {
		return nil, ErrFqIncorrect
	}
	p := new(bn256.G1)
	if _, err := p.Unmarshal(data[:64]); err != nil {
		return nil, ErrBn128InvalidPoint
	}
	return p, nil
}

// newG2Point parses the 128-byte twist-point encoding used by the pairing
// precompile: (bax, bay, bbx, bby) as described in SPEC_FULL.md §4.E.
func newG2Point(data []byte) (*bn256.G2, error) {
	for i := 0; i < 4; i++ {
		c := new(big.Int).SetBytes(data[i*32 : (i+1)*32])
		if c.Cmp(bn256FieldModulus) >= 0 {
			return nil, ErrFqIncorrect
		}
	}
	p := new(bn256.G2)
	if _, err := p.Unmarshal(data[:128]); err != nil {
		return nil, ErrBn128InvalidPoint
	}
	return p, nil
}

// marshalG1 renders a G1 point as 64 bytes, or 64 zero bytes for infinity.
func marshalG1(p *bn256.G1) []byte {
	return p.Marshal()
}

// bn256Add is the 0x06 precompile.
type bn256Add struct{}

func (c *bn256Add) RequiredGas([]byte) tvmtypes.Gas { return 150 }

func (c *bn256Add) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	p1, err := newG1Point(input[0:64])
	if err != nil {
		return nil, err
	}
	p2, err := newG1Point(input[64:128])
	if err != nil {
		return nil, err
	}

	sum := new(bn256.G1).Add(p1, p2)
	return marshalG1(sum), nil
}

// bn256Mul is the 0x07 precompile.
type bn256Mul struct{}

func (c *bn256Mul) RequiredGas([]byte) tvmtypes.Gas { return 6000 }

func (c *bn256Mul) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	p, err := newG1Point(input[0:64])
	if err != nil {
		return nil, err
	}
	scalar := new(big.Int).SetBytes(input[64:96])

	product := new(bn256.G1).ScalarMult(p, scalar)
	return marshalG1(product), nil
}

// bn256Pairing is the 0x08 precompile.
type bn256Pairing struct{}

const bn256PairingElementLen = 192

func (c *bn256Pairing) RequiredGas(input []byte) tvmtypes.Gas {
	k := uint64(len(input)) / bn256PairingElementLen
	return tvmtypes.Gas(45000 + 34000*k)
}

func (c *bn256Pairing) Run(input []byte) ([]byte, error) {
	if len(input)%bn256PairingElementLen != 0 {
		return nil, ErrBn128InvalidLength
	}
	if len(input) == 0 {
		return bigEndianBool(true), nil
	}

	var g1s []*bn256.G1
	var g2s []*bn256.G2
	for offset := 0; offset < len(input); offset += bn256PairingElementLen {
		chunk := input[offset : offset+bn256PairingElementLen]
		g1, err := newG1Point(chunk[0:64])
		if err != nil {
			return nil, err
		}
		g2, err := newG2Point(chunk[64:192])
		if err != nil {
			return nil, err
		}
		g1s = append(g1s, g1)
		g2s = append(g2s, g2)
	}

	ok := bn256.PairingCheck(g1s, g2s)
	return bigEndianBool(ok), nil
}

func bigEndianBool(v bool) []byte {
	out := make([]byte, 32)
	if v {
		out[31] = 1
	}
	return out
}

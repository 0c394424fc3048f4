package precompiles

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// ecRecover is the 0x01 precompile.
type ecRecover struct{}

func (c *ecRecover) RequiredGas([]byte) tvmtypes.Gas { return 3000 }

// invalidV is returned for a malformed v, as opposed to a well-formed v
// whose signature simply fails to recover, which yields empty output.
var invalidV = bytes.Repeat([]byte{0xff}, 32)

func (c *ecRecover) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	hash := input[0:32]
	v := new(big.Int).SetBytes(input[32:64])
	r := input[64:96]
	s := input[96:128]

	// v must fit one byte and encode as 27 or 28 (Ethereum convention);
	// anything else is a malformed v, not a failed recovery.
	if v.BitLen() > 8 {
		return invalidV, nil
	}
	vByte := byte(v.Uint64())
	if vByte != 27 && vByte != 28 {
		return invalidV, nil
	}

	if !crypto.ValidateSignatureValues(vByte-27, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s), true) {
		return nil, nil
	}

	sig := make([]byte, 65)
	copy(sig[0:32], r)
	copy(sig[32:64], s)
	sig[64] = vByte - 27

	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, nil
	}

	addrHash := crypto.Keccak256(pub[1:])
	result := make([]byte, 32)
	copy(result[12:], addrHash[12:])
	return result, nil
}

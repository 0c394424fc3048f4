package precompiles

import (
	"math/big"

	"github.com/topnetwork/tvm-engine-go/tvmtypes"
)

// modExp is the 0x05 precompile: base^exp mod modulus over arbitrary-
// precision big-endian integers, with EIP-198's adjusted-exponent-length
// gas formula.
type modExp struct{}

func (c *modExp) RequiredGas(input []byte) tvmtypes.Gas {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, input[96:])

	maxLen := maxUint64(baseLen, modLen)
	words := (maxLen + 7) / 8
	mulComplexity := words * words

	gas := mulComplexity * maxUint64(adjExpLen, 1) / 3
	if gas < 200 {
		gas = 200
	}
	return tvmtypes.Gas(gas)
}

func (c *modExp) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	// Lengths wider than 64 bits saturate at u64::MAX; no further size
	// check is made before runModExp.
	if baseLen.BitLen() > 64 || expLen.BitLen() > 64 || modLen.BitLen() > 64 {
		bLen, eLen, mLen := saturatingUint64(baseLen), saturatingUint64(expLen), saturatingUint64(modLen)
		return runModExp(input[96:], bLen, eLen, mLen)
	}
	return runModExp(input[96:], baseLen.Uint64(), expLen.Uint64(), modLen.Uint64())
}

func runModExp(data []byte, bLen, eLen, mLen uint64) ([]byte, error) {
	base := getDataSlice(data, 0, bLen)
	exp := getDataSlice(data, bLen, eLen)
	mod := getDataSlice(data, bLen+eLen, mLen)

	modVal := new(big.Int).SetBytes(mod)
	if modVal.Sign() == 0 {
		return []byte{}, nil
	}

	baseVal := new(big.Int).SetBytes(base)
	expVal := new(big.Int).SetBytes(exp)

	result := new(big.Int).Exp(baseVal, expVal, modVal)

	out := result.Bytes()
	padded := make([]byte, mLen)
	if uint64(len(out)) <= mLen {
		copy(padded[mLen-uint64(len(out)):], out)
	}
	return padded, nil
}

func saturatingUint64(v *big.Int) uint64 {
	max := new(big.Int).SetUint64(^uint64(0))
	if v.Cmp(max) > 0 {
		return ^uint64(0)
	}
	return v.Uint64()
}

// getDataSlice extracts length bytes from data starting at offset,
// zero-padding on the right if data runs out.
func getDataSlice(data []byte, offset, length uint64) []byte {
	if length == 0 {
		return nil
	}
	result := make([]byte, length)
	if offset >= uint64(len(data)) {
		return result
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(result, data[offset:end])
	return result
}

// adjustedExpLen implements EIP-198's iter_count formula: the bit length of
// (up to) the first 32 bytes of the exponent, minus one, plus 8*(expLen-32)
// when the exponent is wider than 32 bytes.
func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		expData := getDataSlice(data, baseLen, expLen)
		exp := new(big.Int).SetBytes(expData)
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	firstExpData := getDataSlice(data, baseLen, 32)
	firstExp := new(big.Int).SetBytes(firstExpData)
	adj := uint64(0)
	if firstExp.Sign() > 0 {
		adj = uint64(firstExp.BitLen() - 1)
	}
	return adj + 8*(expLen-32)
}

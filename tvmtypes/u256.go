package tvmtypes

import "github.com/holiman/uint256"

// U256 is a 256-bit unsigned integer with big-endian byte interchange,
// backed by holiman/uint256.
type U256 = uint256.Int

// U256FromBig converts a big-endian byte slice (left-padded, truncated from
// the high end if longer than 32 bytes) into a U256.
func U256FromBig(b []byte) *U256 {
	return new(uint256.Int).SetBytes(b)
}

// U256FromUint64 builds a U256 from a plain uint64.
func U256FromUint64(v uint64) *U256 {
	return uint256.NewInt(v)
}

// U256ToH256 renders a U256 as its 32-byte big-endian representation.
func U256ToH256(v *U256) H256 {
	return H256(v.Bytes32())
}

// H256ToU256 reinterprets a 32-byte hash as a big-endian U256.
func H256ToU256(h H256) *U256 {
	return new(uint256.Int).SetBytes32(h[:])
}

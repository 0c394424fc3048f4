package tvmtypes

import "github.com/holiman/uint256"

// utopToWei is the fixed conversion rate: 1 uTOP = 10^12 wei.
var utopToWei = uint256.NewInt(1_000_000_000_000)

// UTop is the host ledger's native 64-bit balance unit.
type UTop uint64

// ZeroUTop is the zero balance.
const ZeroUTop UTop = 0

// NewUTop wraps a raw uint64 amount as a UTop.
func NewUTop(amount uint64) UTop { return UTop(amount) }

// IsZero reports whether the balance is zero.
func (u UTop) IsZero() bool { return u == 0 }

// Raw returns the underlying uint64 amount.
func (u UTop) Raw() uint64 { return uint64(u) }

// ToBEBytes renders the balance as 8 big-endian bytes, the on-disk encoding.
func (u UTop) ToBEBytes() [8]byte {
	var b [8]byte
	v := uint64(u)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// ToWei converts the balance to its EVM wei representation. The conversion
// is total: a uint64 amount scaled by 10^12 always fits in 256 bits.
func (u UTop) ToWei() *U256 {
	return new(uint256.Int).Mul(uint256.NewInt(uint64(u)), utopToWei)
}

// UTopFromWei converts a wei amount back to uTOP by integer division by
// 10^12, dropping any remainder below one uTOP. Returns ok=false if the
// quotient would exceed math.MaxUint64.
func UTopFromWei(wei *U256) (UTop, bool) {
	q := new(uint256.Int).Div(wei, utopToWei)
	if !q.IsUint64() {
		return 0, false
	}
	return UTop(q.Uint64()), true
}

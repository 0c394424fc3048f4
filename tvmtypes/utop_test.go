package tvmtypes

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestUTopToWeiConversionRate(t *testing.T) {
	u := NewUTop(1)
	wei := u.ToWei()
	if !wei.IsUint64() || wei.Uint64() != 1_000_000_000_000 {
		t.Errorf("1 uTOP = %s wei, want 1000000000000", wei.String())
	}
}

func TestUTopWeiRoundTrip(t *testing.T) {
	orig := NewUTop(42_000)
	wei := orig.ToWei()
	back, ok := UTopFromWei(wei)
	if !ok {
		t.Fatal("UTopFromWei reported not ok for an exact multiple")
	}
	if back != orig {
		t.Errorf("round trip = %d, want %d", back.Raw(), orig.Raw())
	}
}

func TestUTopFromWeiTruncatesRemainder(t *testing.T) {
	wei := NewUTop(1).ToWei()
	wei.AddUint64(wei, 1) // one wei over an exact uTOP multiple
	got, ok := UTopFromWei(wei)
	if !ok {
		t.Fatal("UTopFromWei reported not ok for a quotient well within uint64 range")
	}
	if got != NewUTop(1) {
		t.Errorf("UTopFromWei truncated = %d, want 1 (floor division, no remainder check)", got.Raw())
	}
}

func TestUTopFromWeiRejectsOverflow(t *testing.T) {
	// One uTOP beyond math.MaxUint64 uTOP: the quotient no longer fits in 64 bits.
	wei := new(U256).Mul(uint256.NewInt(1<<63), utopToWei)
	wei = new(U256).Mul(wei, uint256.NewInt(2))
	if _, ok := UTopFromWei(wei); ok {
		t.Error("expected ok=false once the wei/10^12 quotient exceeds math.MaxUint64")
	}
}

func TestUTopZero(t *testing.T) {
	if !ZeroUTop.IsZero() {
		t.Error("ZeroUTop.IsZero() = false")
	}
	if !NewUTop(0).ToWei().IsZero() {
		t.Error("zero uTOP should convert to zero wei")
	}
}

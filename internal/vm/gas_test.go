package vm

import "testing"

func TestToWordSize(t *testing.T) {
	cases := []struct {
		size uint64
		want uint64
	}{{0, 0}, {1, 1}, {32, 1}, {33, 2}, {64, 2}, {65, 3}}
	for _, c := range cases {
		if got := toWordSize(c.size); got != c.want {
			t.Errorf("toWordSize(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestMemoryGasCostGrowthIsQuadratic(t *testing.T) {
	cost32, err := memoryGasCost(0, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 word: 1*1/512 + 3*1 = 3
	if cost32 != 3 {
		t.Errorf("cost for 1 word = %d, want 3", cost32)
	}

	// Expanding from an already-large size should cost only the marginal
	// delta, not the full quadratic cost of the new size.
	big, err := memoryGasCost(0, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	marginal, err := memoryGasCost(1024, 1056)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	full, err := memoryGasCost(0, 1056)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if big+marginal != full {
		t.Errorf("marginal cost %d + prior cost %d != full cost %d", marginal, big, full)
	}
}

func TestMemoryGasCostNoGrowthIsFree(t *testing.T) {
	cost, err := memoryGasCost(64, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost != 0 {
		t.Errorf("shrinking cost = %d, want 0", cost)
	}
}

func TestMemoryGasCostOverflow(t *testing.T) {
	_, err := memoryGasCost(0, 0x1FFFFFFFE0+1)
	if err != ErrGasUintOverflow {
		t.Fatalf("expected ErrGasUintOverflow, got %v", err)
	}
}

func TestMemoryGasCostZeroSize(t *testing.T) {
	cost, err := memoryGasCost(0, 0)
	if err != nil || cost != 0 {
		t.Errorf("memoryGasCost(0,0) = %d, %v, want 0, nil", cost, err)
	}
}

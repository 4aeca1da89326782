package gas

import (
	"testing"

	"github.com/synnergy/assetengine/engine/abi"
)

func TestUnlimitedMeterNeverFails(t *testing.T) {
	m := NewMeter()
	for i := 0; i < 100; i++ {
		if err := m.Consume(abi.OpCallFunction); err != nil {
			t.Fatalf("unlimited meter should never fail: %v", err)
		}
	}
	if m.Enabled() {
		t.Fatal("expected unlimited meter to report disabled")
	}
}

func TestLimitedMeterFailsClosed(t *testing.T) {
	m := NewLimitedMeter(15)
	if err := m.Consume(abi.OpGetBucketAmount); err != nil { // costs 1
		t.Fatalf("Consume: %v", err)
	}
	if err := m.Consume(abi.OpCreateEmptyBucket); err != nil { // costs 10
		t.Fatalf("Consume: %v", err)
	}
	if m.Used() != 11 {
		t.Fatalf("expected used=11, got %d", m.Used())
	}
	if m.Remaining() != 4 {
		t.Fatalf("expected remaining=4, got %d", m.Remaining())
	}
	if err := m.Consume(abi.OpCreateEmptyBucket); err != ErrOutOfGas { // costs 10, exceeds limit
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if m.Used() != 11 {
		t.Fatalf("expected used unchanged after failed consume, got %d", m.Used())
	}
}

func TestUnknownOpUsesDefaultCost(t *testing.T) {
	m := NewLimitedMeter(DefaultCost)
	if err := m.Consume(abi.Op(250)); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Used() != DefaultCost {
		t.Fatalf("expected used=%d, got %d", DefaultCost, m.Used())
	}
}

package dynamo

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestOperatingCondition_Arithmetic(t *testing.T) {
	op1 := OperatingCondition{Speed: 4. / 3., Torque: 0.24, V: 12, IMax: 0.3}
	op2 := OperatingCondition{Speed: 8. / 3., Torque: 0.24, V: 12, IMax: 0.3}

	sum, err := op1.Add(op2)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.Speed != op1.Speed+op2.Speed {
		t.Errorf("sum speed = %v", sum.Speed)
	}
	if sum.Torque != op1.Torque+op2.Torque {
		t.Errorf("sum torque = %v", sum.Torque)
	}
	if sum.V != 12 || sum.IMax != 0.3 {
		t.Errorf("sum V/IMax = %v/%v", sum.V, sum.IMax)
	}

	diff, err := op1.Sub(op2)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff.Speed != -4./3. {
		t.Errorf("diff speed = %v, want %v", diff.Speed, -4./3.)
	}
	if diff.Torque != 0 {
		t.Errorf("diff torque = %v, want 0", diff.Torque)
	}
}

func TestOperatingCondition_CurrentBudget(t *testing.T) {
	a := OperatingCondition{Speed: 1, Torque: 1, V: 9, IMax: 0.5}
	b := OperatingCondition{Speed: 2, Torque: 3, V: 9, IMax: 2.0}

	sum, _ := a.Add(b)
	if sum.IMax != 2.0 {
		t.Errorf("sum IMax = %v, want max 2.0", sum.IMax)
	}
	diff, _ := a.Sub(b)
	if diff.IMax != 0.5 {
		t.Errorf("diff IMax = %v, want min 0.5", diff.IMax)
	}
}

func TestOperatingCondition_VoltageMismatch(t *testing.T) {
	op1 := OperatingCondition{Speed: 4. / 3., Torque: 0.24, V: 12, IMax: 0.3}
	op5 := OperatingCondition{Speed: 8. / 3., Torque: 0.24, V: 10, IMax: 0.3}

	if _, err := op1.Add(op5); !errors.Is(err, ErrVoltageMismatch) {
		t.Errorf("Add: expected ErrVoltageMismatch, got %v", err)
	}
	if _, err := op1.Sub(op5); !errors.Is(err, ErrVoltageMismatch) {
		t.Errorf("Sub: expected ErrVoltageMismatch, got %v", err)
	}
}

func TestOperatingCondition_Efficiency(t *testing.T) {
	op := OperatingCondition{Speed: 2, Torque: 0.5, V: 10, IMax: 0.1}
	if got := op.Efficiency(); got != 1 {
		t.Errorf("Efficiency = %v, want 1", got)
	}
	if got := (OperatingCondition{Speed: 1, Torque: 1}).Efficiency(); got != 0 {
		t.Errorf("Efficiency without supply = %v, want 0", got)
	}
}

func TestComponentError(t *testing.T) {
	base := errors.New("boom")
	err := error(&ComponentError{Index: 2, Kind: KindGearPair, Wrapped: base})
	if err.Error() != "component 2 (gear pair): boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("ComponentError does not unwrap")
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		disp, want float64
	}{
		{-3, -1}, {0, 1}, {10, 1},
	}
	for _, tt := range tests {
		if got := Sign(tt.disp); got != tt.want {
			t.Errorf("Sign(%v) = %v, want %v", tt.disp, got, tt.want)
		}
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 16} {
		var count int64
		seen := make([]int32, 10)
		ParallelFor(len(seen), workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
				atomic.AddInt64(&count, 1)
			}
		})
		if count != 10 {
			t.Errorf("workers=%d: visited %d items, want 10", workers, count)
		}
		for i, s := range seen {
			if s != 1 {
				t.Errorf("workers=%d: item %d visited %d times", workers, i, s)
			}
		}
	}
}

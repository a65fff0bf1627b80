package campaign

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// ============================================
// Property Tests for the Budget Admission Check
// ============================================

func drawAmount(rt *rapid.T, label string) decimal.Decimal {
	// Amounts in cents keep the generated values exact
	cents := rapid.Int64Range(0, 10_000_000).Draw(rt, label)
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// TestProperty_CanPayIncrease_DecreaseAlwaysAllowed tests that earnings
// decreases and no-ops are admitted regardless of the remaining budget.
// *For any* old, new >= 0 with new <= old, CanPayIncrease SHALL return true.
func TestProperty_CanPayIncrease_DecreaseAlwaysAllowed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		oldEarnings := drawAmount(rt, "oldEarnings")
		newEarnings := drawAmount(rt, "newEarnings")
		if newEarnings.GreaterThan(oldEarnings) {
			oldEarnings, newEarnings = newEarnings, oldEarnings
		}
		// Even a negative remaining balance must not block a decrease
		remaining := drawAmount(rt, "remaining").Neg()

		if !CanPayIncrease(remaining, oldEarnings, newEarnings) {
			t.Fatalf("PROPERTY VIOLATION: decrease from %s to %s rejected with remaining %s",
				oldEarnings.String(), newEarnings.String(), remaining.String())
		}
	})
}

// TestProperty_CanPayIncrease_IncreaseRequiresBudget tests that an increase is
// admitted exactly when the remaining budget covers the delta.
func TestProperty_CanPayIncrease_IncreaseRequiresBudget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		oldEarnings := drawAmount(rt, "oldEarnings")
		delta := drawAmount(rt, "delta")
		if delta.IsZero() {
			delta = decimal.NewFromInt(1)
		}
		newEarnings := oldEarnings.Add(delta)
		remaining := drawAmount(rt, "remaining")

		got := CanPayIncrease(remaining, oldEarnings, newEarnings)
		want := remaining.GreaterThanOrEqual(delta)

		if got != want {
			t.Fatalf("PROPERTY VIOLATION: CanPayIncrease(%s, %s, %s) = %v, want %v",
				remaining.String(), oldEarnings.String(), newEarnings.String(), got, want)
		}
	})
}

func TestCanPayIncrease_ExactBoundary(t *testing.T) {
	remaining := decimal.RequireFromString("300.00")
	oldEarnings := decimal.RequireFromString("500.00")

	if !CanPayIncrease(remaining, oldEarnings, decimal.RequireFromString("800.00")) {
		t.Error("increase equal to remaining budget should be admitted")
	}
	if CanPayIncrease(remaining, oldEarnings, decimal.RequireFromString("800.01")) {
		t.Error("increase exceeding remaining budget should be rejected")
	}
	if !CanPayIncrease(remaining, oldEarnings, oldEarnings) {
		t.Error("unchanged earnings should always be admitted")
	}
}

package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// ============================================
// Property Tests for the Fixed-Rate Conversion
// ============================================

// TestProperty_FromViews_ExactRate tests the conversion is exactly views/1000*100
// *For any* non-negative view count, the payout SHALL equal views divided by ten,
// with no floating-point drift.
func TestProperty_FromViews_ExactRate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		views := rapid.Int64Range(0, 1_000_000_000).Draw(rt, "views")

		got := FromViews(views)
		want := decimal.NewFromInt(views).Div(decimal.NewFromInt(10))

		if !got.Equal(want) {
			t.Fatalf("PROPERTY VIOLATION: FromViews(%d) = %s, want %s",
				views, got.String(), want.String())
		}
	})
}

// TestProperty_FromViews_Monotonic tests that more views never pay less
func TestProperty_FromViews_Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Int64Range(0, 1_000_000_000).Draw(rt, "a")
		b := rapid.Int64Range(0, 1_000_000_000).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}

		if FromViews(a).GreaterThan(FromViews(b)) {
			t.Fatalf("PROPERTY VIOLATION: FromViews(%d) > FromViews(%d)", a, b)
		}
	})
}

// TestProperty_FromViews_NonNegative tests that payouts are never negative
func TestProperty_FromViews_NonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		views := rapid.Int64Range(0, 1_000_000_000).Draw(rt, "views")

		if FromViews(views).LessThan(decimal.Zero) {
			t.Fatalf("PROPERTY VIOLATION: FromViews(%d) is negative", views)
		}
	})
}

func TestFromViews_KnownValues(t *testing.T) {
	cases := []struct {
		views int64
		want  string
	}{
		{0, "0.00"},
		{999, "99.90"},
		{1000, "100.00"},
		{2500, "250.00"},
		{5000, "500.00"},
		{8000, "800.00"},
		{20000, "2000.00"},
	}

	for _, tc := range cases {
		want := decimal.RequireFromString(tc.want)
		if got := FromViews(tc.views); !got.Equal(want) {
			t.Errorf("FromViews(%d) = %s, want %s", tc.views, got.String(), tc.want)
		}
	}
}

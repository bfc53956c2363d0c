package pricing

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func ptr(v float64) *float64 { return &v }

func TestCalculateStandardDeal(t *testing.T) {
	got := Calculate(Inputs{
		SaleAmount:   20000,
		SalesTax:     ptr(1400),
		DocFee:       ptr(299),
		TradeInValue: ptr(5000),
		DownPayment:  ptr(2000),
	})

	if !almostEqual(got.TotalAmount, 16699) {
		t.Fatalf("TotalAmount = %v, want 16699", got.TotalAmount)
	}
	if !almostEqual(got.FinancedAmount, 14699) {
		t.Fatalf("FinancedAmount = %v, want 14699", got.FinancedAmount)
	}
}

func TestCalculateAllZero(t *testing.T) {
	got := Calculate(Inputs{})

	if got.TotalAmount != 0 {
		t.Fatalf("TotalAmount = %v, want 0", got.TotalAmount)
	}
	if got.FinancedAmount != 0 {
		t.Fatalf("FinancedAmount = %v, want 0", got.FinancedAmount)
	}
}

func TestCalculateMissingOptionalAmountsTreatedAsZero(t *testing.T) {
	got := Calculate(Inputs{SaleAmount: 15000})

	if !almostEqual(got.TotalAmount, 15000) {
		t.Fatalf("TotalAmount = %v, want 15000", got.TotalAmount)
	}
	if !almostEqual(got.FinancedAmount, 15000) {
		t.Fatalf("FinancedAmount = %v, want 15000", got.FinancedAmount)
	}
}

func TestCalculateNegativeResultNotClamped(t *testing.T) {
	// Trade-in worth more than the car. The operator sees the negative
	// balance instead of a silent zero.
	got := Calculate(Inputs{
		SaleAmount:   8000,
		TradeInValue: ptr(12000),
	})

	if !almostEqual(got.TotalAmount, -4000) {
		t.Fatalf("TotalAmount = %v, want -4000", got.TotalAmount)
	}

	got = Calculate(Inputs{
		SaleAmount:  10000,
		DownPayment: ptr(15000),
	})
	if !almostEqual(got.FinancedAmount, -5000) {
		t.Fatalf("FinancedAmount = %v, want -5000", got.FinancedAmount)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	in := Inputs{
		SaleAmount:   31999.99,
		SalesTax:     ptr(2239.99),
		DocFee:       ptr(150),
		TradeInValue: ptr(7500.5),
		DownPayment:  ptr(3000),
	}

	first := Calculate(in)
	for i := 0; i < 10; i++ {
		again := Calculate(in)
		if again != first {
			t.Fatalf("run %d: Calculate(%+v) = %+v, want %+v", i, in, again, first)
		}
	}
}

func TestCalculateCentAmountsExact(t *testing.T) {
	// 0.1 + 0.2 style inputs must not drift.
	got := Calculate(Inputs{
		SaleAmount: 0.1,
		SalesTax:   ptr(0.2),
	})
	if got.TotalAmount != 0.3 {
		t.Fatalf("TotalAmount = %v, want exactly 0.3", got.TotalAmount)
	}
}

func TestAmountOrZero(t *testing.T) {
	if got := AmountOrZero(nil); got != 0 {
		t.Fatalf("AmountOrZero(nil) = %v, want 0", got)
	}
	if got := AmountOrZero(ptr(42.5)); got != 42.5 {
		t.Fatalf("AmountOrZero(42.5) = %v, want 42.5", got)
	}
}

// Package pricing computes deal totals. Every function here is pure: the
// same inputs always produce the same outputs and nothing is mutated, so
// callers can recompute on every keystroke of the wizard without side
// effects.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Inputs carries the five operator-entered amounts a deal is priced from.
// Optional amounts that the operator has not filled in yet are nil.
type Inputs struct {
	SaleAmount   float64
	SalesTax     *float64
	DocFee       *float64
	TradeInValue *float64
	DownPayment  *float64
}

// Totals is the derived pricing of a deal.
//
// TotalAmount = saleAmount + salesTax + docFee - tradeInValue
// FinancedAmount = TotalAmount - downPayment
//
// Negative results are returned as-is. An over-valued trade-in legitimately
// produces a negative balance and the review step surfaces it to the
// operator rather than silently clamping it to zero.
type Totals struct {
	TotalAmount    float64
	FinancedAmount float64
}

// AmountOrZero treats an absent optional amount as zero.
func AmountOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Calculate derives the deal totals from the given inputs. Arithmetic runs
// on decimals so that cent-denominated amounts add without float drift.
func Calculate(in Inputs) Totals {
	sale := decimal.NewFromFloat(in.SaleAmount)
	tax := decimal.NewFromFloat(AmountOrZero(in.SalesTax))
	docFee := decimal.NewFromFloat(AmountOrZero(in.DocFee))
	tradeIn := decimal.NewFromFloat(AmountOrZero(in.TradeInValue))
	down := decimal.NewFromFloat(AmountOrZero(in.DownPayment))

	total := sale.Add(tax).Add(docFee).Sub(tradeIn)
	financed := total.Sub(down)

	totalF, _ := total.Float64()
	financedF, _ := financed.Float64()
	return Totals{
		TotalAmount:    totalF,
		FinancedAmount: financedF,
	}
}

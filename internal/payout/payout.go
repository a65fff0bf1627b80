package payout

import "github.com/shopspring/decimal"

// Rate is the fixed payout rate: 100 currency units per 1000 views.
var (
	ratePerBlock = decimal.NewFromInt(100)
	viewsBlock   = decimal.NewFromInt(1000)
)

// FromViews converts a view count to an earnings amount at the fixed rate.
// The calculation is exact decimal arithmetic; zero views yields zero.
func FromViews(views int64) decimal.Decimal {
	if views <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(views).Div(viewsBlock).Mul(ratePerBlock)
}

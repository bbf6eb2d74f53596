// README: Fee and discount policy definitions.
package pricing

import (
	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

type FeePolicy string

const (
	// FeeByDistance charges a base fee inside the free radius plus a per-km step beyond it.
	FeeByDistance FeePolicy = "distance"
	// FeeByUrgency charges a flat fee per urgency tier.
	FeeByUrgency FeePolicy = "urgency"
)

type DiscountPolicy string

const (
	DiscountSenior DiscountPolicy = "senior"
	DiscountPromo  DiscountPolicy = "promo"
)

const (
	baseFee        = 40
	baseRadiusKm   = 4.0
	perKmFee       = 3
	seniorAge      = 60
	discountAmount = 20
)

var urgencyFees = map[types.Urgency]int64{
	types.UrgencyCritical: 55,
	types.UrgencyUrgent:   50,
	types.UrgencyStandard: 40,
}

// Quote is the fee/discount pair for one checkout.
type Quote struct {
	DeliveryFee types.Money
	Discount    types.Money
}

// Totals is the frozen money breakdown stored on an order.
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee types.Money
	Discount    types.Money
	Total       decimal.Decimal
}

// README: Pricing service computes delivery fees, discounts and order totals.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"pharmago/internal/config"
	"pharmago/internal/types"
)

var ErrInvalidDistance = types.Validation("distance must be a finite, non-negative number of kilometres")

type Service struct {
	fee      FeePolicy
	discount DiscountPolicy
	currency string
}

func NewService(cfg config.PricingConfig) (*Service, error) {
	fee := FeePolicy(cfg.FeePolicy)
	if fee != FeeByDistance && fee != FeeByUrgency {
		return nil, fmt.Errorf("unknown fee policy %q", cfg.FeePolicy)
	}
	discount := DiscountPolicy(cfg.DiscountPolicy)
	if discount != DiscountSenior && discount != DiscountPromo {
		return nil, fmt.Errorf("unknown discount policy %q", cfg.DiscountPolicy)
	}
	currency := cfg.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return &Service{fee: fee, discount: discount, currency: currency}, nil
}

// ComputeFee returns the delivery fee and discount for one order. patientAge
// of zero means the age is unknown.
func (s *Service) ComputeFee(urgency types.Urgency, distanceKm float64, patientAge int) (Quote, error) {
	var fee int64
	switch s.fee {
	case FeeByDistance:
		if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
			return Quote{}, ErrInvalidDistance
		}
		fee = distanceFee(distanceKm)
	case FeeByUrgency:
		fee = urgencyFees[urgency]
	}

	var discount int64
	switch s.discount {
	case DiscountSenior:
		if patientAge >= seniorAge {
			discount = discountAmount
		}
	case DiscountPromo:
		discount = discountAmount
	}

	return Quote{
		DeliveryFee: types.Money{Amount: fee, Currency: s.currency},
		Discount:    types.Money{Amount: discount, Currency: s.currency},
	}, nil
}

// Totals freezes subtotal + fee - discount. The total never drops below zero.
func (s *Service) Totals(subtotal decimal.Decimal, q Quote) Totals {
	total := subtotal.Add(q.DeliveryFee.Decimal()).Sub(q.Discount.Decimal())
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: q.DeliveryFee,
		Discount:    q.Discount,
		Total:       total,
	}
}

func distanceFee(distanceKm float64) int64 {
	if distanceKm <= baseRadiusKm {
		return baseFee
	}
	steps := int64(math.Ceil(distanceKm - baseRadiusKm))
	return baseFee + steps*perKmFee
}

package service

import (
	"github.com/shopspring/decimal"

	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

var (
	// standardFreight is the flat freight applied by the promotional quote.
	standardFreight = decimal.RequireFromString("20.00")
	// discountThreshold is the product total above which the promotional
	// discount applies.
	discountThreshold = decimal.RequireFromString("200.00")
	// discountRate is the promotional discount rate.
	discountRate = decimal.RequireFromString("0.10")
)

// PricingQuote is the promotional pricing breakdown for an order.
type PricingQuote struct {
	ProductTotal models.Money `json:"total_products"`
	Freight      models.Money `json:"freight"`
	Discount     models.Money `json:"discount"`
	Total        models.Money `json:"total"`
}

// QuotePricing computes the promotional quote for a product total: flat
// freight plus a 10% discount when the product total exceeds 200.00. The
// quote is advisory — order charges remain caller-supplied.
func QuotePricing(productTotal models.Money) PricingQuote {
	freight := models.NewMoney(standardFreight)

	discount := models.ZeroMoney()
	if productTotal.Decimal.GreaterThan(discountThreshold) {
		discount = models.NewMoney(productTotal.Decimal.Mul(discountRate))
	}

	total := productTotal.Sub(discount).Add(freight)
	if total.IsNegative() {
		total = models.ZeroMoney()
	}

	return PricingQuote{
		ProductTotal: productTotal,
		Freight:      freight,
		Discount:     discount,
		Total:        total,
	}
}

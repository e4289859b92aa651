package dto

import (
	"github.com/shopspring/decimal"

	"github.com/chickencore/order-service/internal/model"
)

type CartSummary struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	ItemCount        int             `json:"item_count"`
	FlagshipQuantity int             `json:"flagship_quantity"`
}

// CheckoutSnapshot is a fully validated view of the cart, priced at the moment
// of validation. The order layer consumes it without re-reading cart rows.
type CheckoutSnapshot struct {
	Cart    *model.Cart
	Summary CartSummary
}

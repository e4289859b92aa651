package model

// Cart is the mutable pre-order state, one per user. It is deleted wholesale
// when checkout succeeds.
type Cart struct {
	BaseModel
	UserID string     `db:"user_id" json:"user_id"`
	Items  []CartItem `db:"-" json:"items"`
}

type CartItem struct {
	BaseModel
	CartID        string                  `db:"cart_id" json:"cart_id"`
	ProductID     string                  `db:"product_id" json:"product_id"`
	Quantity      int                     `db:"quantity" json:"quantity"`
	Product       *Product                `db:"-" json:"product,omitempty"`
	SelectedGifts []CartItemGiftSelection `db:"-" json:"selected_gifts"`
}

// CartItemGiftSelection stores the total chosen gift quantity for the line,
// already scaled by the line's quantity.
type CartItemGiftSelection struct {
	ID         string   `db:"id" json:"id"`
	CartItemID string   `db:"cart_item_id" json:"cart_item_id"`
	GiftID     string   `db:"gift_id" json:"gift_id"`
	Quantity   int      `db:"quantity" json:"quantity"`
	Gift       *Product `db:"-" json:"gift,omitempty"`
}

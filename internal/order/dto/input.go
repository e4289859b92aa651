package dto

type CheckoutInput struct {
	OrderType     string  `json:"order_type" binding:"required,oneof=IMMEDIATE SCHEDULED"`
	DeliveryType  string  `json:"delivery_type" binding:"required,oneof=PICKUP DELIVERY"`
	ScheduledFor  *string `json:"scheduled_for"` // RFC 3339, required for SCHEDULED
	AddressID     *string `json:"address_id"`
	Notes         *string `json:"notes"`
	PaymentMethod *string `json:"payment_method"`
}

type UpdateStatusInput struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type CancelInput struct {
	Reason *string `json:"reason"`
}

package orders

import "time"

type OrderID struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

type OrderQuery struct {
	// @description Maximum number of orders
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
	State string `json:"state" validate:"omitempty,oneof=open paid cancelled"`
}

type CancelDto struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

type Order struct {
	ID       string    `json:"id"`
	Total    float64   `json:"total"`
	Lines    []Line    `json:"lines"`
	PlacedAt time.Time `json:"placedAt"`
}

type Line struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type OrderList struct {
	Items []Order `json:"items"`
	Next  string  `json:"next,omitempty"`
}

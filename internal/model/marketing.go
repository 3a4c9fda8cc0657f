package model

import (
	"time"

	"github.com/google/uuid"
)

// Topseller pins a product to a fixed position in topseller lists.
type Topseller struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Position    int       `json:"position"`
}

type ProductSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Sales     int       `json:"sales"`
}

type OrderRatingMail struct {
	ID       uuid.UUID `json:"id"`
	OrderID  uuid.UUID `json:"order_id"`
	SendDate time.Time `json:"send_date"`
}

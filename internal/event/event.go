package event

import "github.com/google/uuid"

const (
	TopicOrderCreated      = "order.created"
	TopicOrderStateChanged = "order.state_changed"
	TopicCatalogChanged    = "catalog.changed"
)

type OrderCreatedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	Number  string    `json:"number"`
}

type OrderStateChangedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	FromState int       `json:"from_state"`
	ToState   int       `json:"to_state"`
}

// CatalogEntity names what changed in a catalog.changed event.
type CatalogEntity string

const (
	CatalogEntityCategory  CatalogEntity = "category"
	CatalogEntityProduct   CatalogEntity = "product"
	CatalogEntityTax       CatalogEntity = "tax"
	CatalogEntityTopseller CatalogEntity = "topseller"
	CatalogEntitySales     CatalogEntity = "sales"
)

type CatalogChangedEvent struct {
	Entity CatalogEntity `json:"entity"`
	ID     *uuid.UUID    `json:"id,omitempty"`
	Action string        `json:"action"`
}

package handler

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/qrdine/api/internal/service"
	"github.com/qrdine/api/internal/ws"
)

// EventOrderNew is pushed to a restaurant's room when a new order is
// placed, with the full order as payload.
const EventOrderNew = "order:new"

// Broadcaster adapts the WebSocket hub to the lifecycle service's
// publisher interface. It lives here because it serializes orders in
// the same JSON shape the REST endpoints use.
type Broadcaster struct {
	hub *ws.Hub
}

func NewBroadcaster(hub *ws.Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) OrderCreated(restaurantID uuid.UUID, order service.Order) {
	payload, err := json.Marshal(toOrderResponse(order))
	if err != nil {
		log.Printf("ERROR: marshal order event: %v", err)
		return
	}
	b.hub.BroadcastToRestaurant(restaurantID, ws.Event{
		Type:    EventOrderNew,
		Payload: payload,
	})
}

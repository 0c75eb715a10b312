package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableID      string
	Status       string
	CreatedAt    time.Time
	ServedAt     pgtype.Timestamptz
}

type OrderItem struct {
	ID        int64
	OrderID   uuid.UUID
	Name      string
	UnitPrice pgtype.Numeric
	Quantity  int32
	Position  int32
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        pgtype.Numeric
	Veg          bool
	SpiceLevel   pgtype.Text
	Description  pgtype.Text
	PhotoURL     pgtype.Text
	CreatedAt    time.Time
}

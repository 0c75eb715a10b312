package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, restaurant_id, name, category, price, veg, spice_level, description, photo_url, created_at`

func (q *Queries) ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name`,
		restaurantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Category, &m.Price,
			&m.Veg, &m.SpiceLevel, &m.Description, &m.PhotoURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type CreateMenuItemParams struct {
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        pgtype.Numeric
	Veg          bool
	SpiceLevel   pgtype.Text
	Description  pgtype.Text
	PhotoURL     pgtype.Text
}

// CreateMenuItem upserts on (restaurant_id, name): menu names are unique
// per restaurant and re-adding an item updates it in place.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_items (id, restaurant_id, name, category, price, veg, spice_level, description, photo_url, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (restaurant_id, name) DO UPDATE
		SET category = EXCLUDED.category,
		    price = EXCLUDED.price,
		    veg = EXCLUDED.veg,
		    spice_level = EXCLUDED.spice_level,
		    description = EXCLUDED.description,
		    photo_url = EXCLUDED.photo_url
		RETURNING `+menuItemColumns,
		arg.RestaurantID, arg.Name, arg.Category, arg.Price,
		arg.Veg, arg.SpiceLevel, arg.Description, arg.PhotoURL,
	)
	var m MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Category, &m.Price,
		&m.Veg, &m.SpiceLevel, &m.Description, &m.PhotoURL, &m.CreatedAt)
	return m, err
}

package enum

// ── Order status lattice (CHECK constrained in DB) ──
//
// Status only moves forward: PLACED → SERVED → PAID. PAID is terminal.

const (
	OrderStatusPlaced = "PLACED"
	OrderStatusServed = "SERVED"
	OrderStatusPaid   = "PAID"
)

// orderTransitions lists the statuses each status may advance to.
var orderTransitions = map[string][]string{
	OrderStatusPlaced: {OrderStatusServed, OrderStatusPaid},
	OrderStatusServed: {OrderStatusPaid},
	OrderStatusPaid:   {},
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPlaced, OrderStatusServed, OrderStatusPaid:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Only strictly-forward moves on the lattice are allowed.
func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OpenOrderStatuses are the statuses of orders still owed by a table.
func OpenOrderStatuses() []string {
	return []string{OrderStatusPlaced, OrderStatusServed}
}

// ── Roles (consumed from validated tokens, never issued here) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleKitchen = "KITCHEN"
)

// ── Configurable labels (no DB constraint) ──

const (
	SpiceLevelMild   = "MILD"
	SpiceLevelMedium = "MEDIUM"
	SpiceLevelHot    = "HOT"
)

package models

// Item represents a single priced line on the bill.
// The price is the item's total cost, not a per-person share.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the description of the item (e.g., "Sisig", "Iced Tea").
	Name string `json:"name"`

	// Price is the total price of the item. Never negative.
	Price float64 `json:"price"`

	// AssignedPersonIDs lists the people sharing this item equally.
	// An empty list excludes the item from allocation entirely.
	AssignedPersonIDs []string `json:"assignedPersonIds"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	out.AssignedPersonIDs = append([]string(nil), i.AssignedPersonIDs...)
	return out
}

// ScannedItem is a candidate item extracted from a receipt image by the
// external scan service. Candidates only enter the session through the
// ordinary bulk add path.
type ScannedItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

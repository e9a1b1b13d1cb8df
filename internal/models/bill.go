package models

// Bill is a saved history entry: an immutable snapshot of a finalized split.
// After saving, the only mutable field is each embedded result's IsPaid flag.
type Bill struct {
	// ID is the unique identifier for the bill (UUID, generated at save time).
	ID string `json:"id"`

	// CreatedAt is the Unix timestamp when the bill was saved.
	CreatedAt int64 `json:"createdAt"`

	// Title is the human-readable name for the bill. Auto-generated from the
	// first item when the caller leaves it blank.
	Title string `json:"title"`

	// Total is the sum of all result totals at save time.
	Total float64 `json:"total"`

	// Results is the bill's own deep copy of the split breakdown. Fully
	// decoupled from subsequent mutation of the live session.
	Results []PersonResult `json:"results"`
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := b
	out.Results = CloneResults(b.Results)
	return out
}

package models

// PersonShare is one person's portion of a single item.
type PersonShare struct {
	// ItemName is the name of the item this share came from.
	ItemName string `json:"itemName"`

	// Share is the item price divided by the number of assignees.
	Share float64 `json:"share"`
}

// PersonResult is one person's calculated share of the bill.
// It is derived data: recomputed from scratch on every input change,
// never incrementally patched.
type PersonResult struct {
	// Person is a snapshot of the person at computation time.
	Person Person `json:"person"`

	// Items are this person's shares, in item order.
	Items []PersonShare `json:"items"`

	// Subtotal is the sum of this person's shares before discount.
	Subtotal float64 `json:"subtotal"`

	// DiscountAmount is this person's portion of the applied discount.
	DiscountAmount float64 `json:"discountAmount"`

	// Total is max(0, Subtotal - DiscountAmount). A discount never drives
	// a person's total negative.
	Total float64 `json:"total"`

	// IsPaid reports whether this person has settled their share.
	IsPaid bool `json:"isPaid"`
}

// Clone returns a deep copy of the result.
func (r PersonResult) Clone() PersonResult {
	out := r
	out.Items = append([]PersonShare(nil), r.Items...)
	return out
}

// CloneResults deep-copies a slice of results.
func CloneResults(results []PersonResult) []PersonResult {
	if results == nil {
		return nil
	}
	out := make([]PersonResult, len(results))
	for i, r := range results {
		out[i] = r.Clone()
	}
	return out
}

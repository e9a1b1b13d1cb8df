package models

// Discount modes and targets.
const (
	// DiscountModeEven splits a flat discount amount equally across all
	// people with a nonzero subtotal.
	DiscountModeEven = "even"

	// DiscountModeProportional splits a flat discount amount in proportion
	// to each person's subtotal.
	DiscountModeProportional = "proportional"

	// DiscountTargetEveryone distributes the discount across all active
	// people instead of a single person.
	DiscountTargetEveryone = "everyone"
)

// Discount represents a single flat discount applied to the bill, either
// granted to one person or distributed across everyone with a share.
type Discount struct {
	// Mode is DiscountModeEven or DiscountModeProportional. Only meaningful
	// when Target is DiscountTargetEveryone.
	Mode string `json:"mode"`

	// Amount is the flat discount amount. Never negative. The applied
	// amount is capped at the bill's allocable subtotal.
	Amount float64 `json:"amount"`

	// Target is DiscountTargetEveryone or a Person ID.
	Target string `json:"target"`
}

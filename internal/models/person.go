package models

// Person represents one participant in the bill split.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name of the person.
	Name string `json:"name"`

	// Color is the avatar color tag assigned when the person is added,
	// cycled from a fixed palette.
	Color string `json:"color"`
}

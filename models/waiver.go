package models

// Waiver is a text agreement scoped to a registration. When Required is true
// a submission cannot be created until the participant accepts it.
type Waiver struct {
	ID             int    `json:"id" db:"id"`
	RegistrationID int    `json:"registration_id" db:"registration_id"`
	Title          string `json:"title" db:"title"`
	Body           string `json:"body" db:"body"`
	Required       bool   `json:"required" db:"required"`
	SortOrder      int    `json:"sort_order" db:"sort_order"`
}

package models

// OptionalItem is a purchasable add-on attached to a registration.
type OptionalItem struct {
	ID             int     `json:"id" db:"id"`
	RegistrationID int     `json:"registration_id" db:"registration_id"`
	Name           string  `json:"name" db:"name"`
	Description    *string `json:"description,omitempty" db:"description"`
	PriceCents     int64   `json:"price_cents" db:"price_cents"`
	MaxQuantity    int     `json:"max_quantity" db:"max_quantity"` // 0 = not limited per item
	Available      bool    `json:"available" db:"available"`
	SortOrder      int     `json:"sort_order" db:"sort_order"`
}

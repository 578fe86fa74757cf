package models

// FieldType mirrors the field_type ENUM in the database.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
)

// ParticipantField is a registration-scoped field with a predefined key,
// e.g. "tshirt_size". Defined at creation time, immutable afterwards.
type ParticipantField struct {
	ID             int       `json:"id" db:"id"`
	RegistrationID int       `json:"registration_id" db:"registration_id"`
	FieldKey       string    `json:"field_key" db:"field_key"`
	Label          string    `json:"label" db:"label"`
	Type           FieldType `json:"type" db:"type"`
	Required       bool      `json:"required" db:"required"`
	Options        []string  `json:"options,omitempty" db:"options"`
	SortOrder      int       `json:"sort_order" db:"sort_order"`
}

// CustomForm is a named, ordered collection of form fields scoped to one
// registration. Each form becomes its own wizard step.
type CustomForm struct {
	ID             int         `json:"id" db:"id"`
	RegistrationID int         `json:"registration_id" db:"registration_id"`
	Name           string      `json:"name" db:"name"`
	SortOrder      int         `json:"sort_order" db:"sort_order"`
	Fields         []FormField `json:"fields,omitempty" db:"-"`
}

type FormField struct {
	ID          int       `json:"id" db:"id"`
	FormID      int       `json:"form_id" db:"form_id"`
	Label       string    `json:"label" db:"label"`
	Type        FieldType `json:"type" db:"type"`
	Required    bool      `json:"required" db:"required"`
	Options     []string  `json:"options,omitempty" db:"options"`
	Placeholder *string   `json:"placeholder,omitempty" db:"placeholder"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
}

// CustomField is a single ad-hoc field attached directly to the registration
// rather than grouped into a form.
type CustomField struct {
	ID             int       `json:"id" db:"id"`
	RegistrationID int       `json:"registration_id" db:"registration_id"`
	Label          string    `json:"label" db:"label"`
	Type           FieldType `json:"type" db:"type"`
	Required       bool      `json:"required" db:"required"`
	Options        []string  `json:"options,omitempty" db:"options"`
	Placeholder    *string   `json:"placeholder,omitempty" db:"placeholder"`
	SortOrder      int       `json:"sort_order" db:"sort_order"`
}

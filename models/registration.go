package models

import "time"

// RegistrationType mirrors the registration_type ENUM in the database.
type RegistrationType string

const (
	TypeSeason     RegistrationType = "season"
	TypeClinic     RegistrationType = "clinic"
	TypeCamp       RegistrationType = "camp"
	TypeEvent      RegistrationType = "event"
	TypeTournament RegistrationType = "tournament"
)

// RegistrationStatus mirrors the registration_status ENUM in the database.
type RegistrationStatus string

const (
	StatusDraft     RegistrationStatus = "draft"
	StatusActive    RegistrationStatus = "active"
	StatusClosed    RegistrationStatus = "closed"
	StatusCancelled RegistrationStatus = "cancelled"
)

// Registration is a sports-program offering accepting participant sign-ups.
// FeeCents keeps money in integer cents; dollars appear only at presentation.
type Registration struct {
	ID              int                `json:"id" db:"id"`
	GroupID         int                `json:"group_id" db:"group_id"`
	CreatorID       int                `json:"creator_id" db:"creator_id"`
	Type            RegistrationType   `json:"type" db:"type"`
	Name            string             `json:"name" db:"name"`
	Sport           string             `json:"sport" db:"sport"`
	StartDate       time.Time          `json:"start_date" db:"start_date"`
	EndDate         time.Time          `json:"end_date" db:"end_date"`
	Location        *string            `json:"location,omitempty" db:"location"`
	Description     *string            `json:"description,omitempty" db:"description"`
	Details         *string            `json:"details,omitempty" db:"details"`
	MaxParticipants *int               `json:"max_participants,omitempty" db:"max_participants"` // nil = unlimited
	FeeCents        int64              `json:"fee_cents" db:"fee_cents"`
	Status          RegistrationStatus `json:"status" db:"status"`
	LogoKey         *string            `json:"-" db:"logo_key"`
	LogoURL         *string            `json:"logo_url,omitempty" db:"-"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`

	// Optional related entities, populated by the service layer.
	Group   *Group `json:"group,omitempty" db:"-"`
	Creator *User  `json:"creator,omitempty" db:"-"`
}

package models

import "time"

// PaymentStatus mirrors the payment_status ENUM in the database.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// ApprovalStatus mirrors the approval_status ENUM in the database.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// FieldCategory tags a submission response with the kind of field it answers.
type FieldCategory string

const (
	CategoryPersonal         FieldCategory = "personal"
	CategoryParticipantField FieldCategory = "participant_field"
	CategoryFormField        FieldCategory = "form_field"
	CategoryCustomField      FieldCategory = "custom_field"
)

// Submission is one user's completed registration attempt. TotalCents must
// equal the registration fee plus the sum of its item purchase totals.
type Submission struct {
	ID             int            `json:"id" db:"id"`
	RegistrationID int            `json:"registration_id" db:"registration_id"`
	UserID         int            `json:"user_id" db:"user_id"`
	TotalCents     int64          `json:"total_cents" db:"total_cents"`
	PaymentStatus  PaymentStatus  `json:"payment_status" db:"payment_status"`
	ApprovalStatus ApprovalStatus `json:"approval_status" db:"approval_status"`
	SubmittedAt    time.Time      `json:"submitted_at" db:"submitted_at"`

	Responses  []SubmissionResponse `json:"responses,omitempty" db:"-"`
	Signatures []WaiverSignature    `json:"signatures,omitempty" db:"-"`
	Purchases  []ItemPurchase       `json:"purchases,omitempty" db:"-"`
}

// SubmissionResponse is one answer record. FieldID is nil for personal-info
// answers, which are keyed by FieldKey instead.
type SubmissionResponse struct {
	ID           int           `json:"id" db:"id"`
	SubmissionID int           `json:"submission_id" db:"submission_id"`
	Category     FieldCategory `json:"category" db:"category"`
	FieldID      *int          `json:"field_id,omitempty" db:"field_id"`
	FieldKey     string        `json:"field_key" db:"field_key"`
	Label        string        `json:"label" db:"label"`
	Value        string        `json:"value" db:"value"`
}

// WaiverSignature records acceptance of one waiver by one submission.
type WaiverSignature struct {
	ID           int       `json:"id" db:"id"`
	SubmissionID int       `json:"submission_id" db:"submission_id"`
	WaiverID     int       `json:"waiver_id" db:"waiver_id"`
	Signature    string    `json:"signature" db:"signature"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	SignedAt     time.Time `json:"signed_at" db:"signed_at"`
}

// ItemPurchase links a submission to an optional item. UnitPriceCents is
// snapshotted from the catalog at submission time and never re-read.
type ItemPurchase struct {
	ID             int   `json:"id" db:"id"`
	SubmissionID   int   `json:"submission_id" db:"submission_id"`
	ItemID         int   `json:"item_id" db:"item_id"`
	Quantity       int   `json:"quantity" db:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents" db:"unit_price_cents"`
	TotalCents     int64 `json:"total_cents" db:"total_cents"`
}

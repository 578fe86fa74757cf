package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrFirstNameRequired    = errors.New("first name is required")
	ErrLastNameRequired     = errors.New("last name is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrWaiverNotAccepted    = errors.New("required waiver has not been accepted")
	ErrItemQuantityInvalid  = errors.New("invalid item quantity")
	ErrStepIndexInvalid     = errors.New("step index does not match the current step")
	ErrRegistrationNotOpen  = errors.New("registration is not open for submissions")
	ErrRegistrationFull     = errors.New("registration has reached its participant limit")
	ErrGroupNameRequired    = errors.New("group name is required")
	ErrRegNameRequired      = errors.New("registration name is required")
	ErrRegInvalidType       = errors.New("invalid registration type")
	ErrRegInvalidDateRange  = errors.New("registration end date must be after start date")
	ErrRegInvalidFee        = errors.New("registration fee must not be negative")
	ErrRegInvalidCapacity   = errors.New("registration max participants must be positive")
	ErrRegInvalidStatus     = errors.New("invalid registration status provided")
	ErrRegInvalidTransition = errors.New("invalid registration status transition")
	ErrItemInvalidPrice     = errors.New("optional item price must not be negative")
	ErrApprovalInvalid      = errors.New("invalid approval status provided")

	// Conflicts
	ErrAlreadySubmitted      = errors.New("user has already submitted for this registration")
	ErrGroupNameConflict     = errors.New("group name is already in use")
	ErrRegistrationNameTaken = errors.New("registration name already exists for this group")
	ErrUserEmailTaken        = errors.New("email address is already registered")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrUserNotFound         = errors.New("user not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrFlowNotFound         = errors.New("registration flow session not found")

	// Submission fan-out: the user-facing message is deliberately generic.
	ErrSubmitFailed = errors.New("failed to submit registration, please try again")
)

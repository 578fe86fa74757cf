package services

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/scout-hq/scout-system/models"
)

func validateRegistrationDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrRegInvalidDateRange)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start date (%s) must be before end date (%s)",
			ErrRegInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func isValidRegistrationType(t models.RegistrationType) bool {
	switch t {
	case models.TypeSeason, models.TypeClinic, models.TypeCamp, models.TypeEvent, models.TypeTournament:
		return true
	}
	return false
}

func isValidStatusTransition(current, next models.RegistrationStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.RegistrationStatus][]models.RegistrationStatus{
		models.StatusDraft:     {models.StatusActive, models.StatusCancelled},
		models.StatusActive:    {models.StatusClosed, models.StatusCancelled},
		models.StatusClosed:    {models.StatusCancelled},
		models.StatusCancelled: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// GetExtensionFromContentType maps an image content type to a file extension
// for uploaded logo keys.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}

func randomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// time-derived token rather than panicking mid-flow.
		b := make([]byte, length)
		for i := range b {
			b[i] = charset[int(time.Now().UnixNano()+int64(i))%len(charset)]
		}
		return string(b)
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}

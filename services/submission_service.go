package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/realtime"
	"github.com/scout-hq/scout-system/repositories"
)

// SubmissionService executes the submission fan-out and manages submissions
// after the fact.
type SubmissionService struct {
	tx               repositories.TxRunner
	submissionRepo   repositories.SubmissionRepository
	registrationRepo repositories.RegistrationRepository
	hub              *realtime.Hub
	logger           *slog.Logger
}

func NewSubmissionService(
	tx repositories.TxRunner,
	submissionRepo repositories.SubmissionRepository,
	registrationRepo repositories.RegistrationRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		tx:               tx,
		submissionRepo:   submissionRepo,
		registrationRepo: registrationRepo,
		hub:              hub,
		logger:           logger,
	}
}

// Submit turns a completed flow session into one submission row plus its
// detail rows: one response per non-empty answer, one signature per accepted
// waiver, one purchase per selected item. All writes run in a single
// transaction, so either the whole submission lands or none of it does.
// Unit prices are snapshotted from the session's catalog, which was loaded
// when the flow started.
func (s *SubmissionService) Submit(ctx context.Context, sess *FlowSession, submitter *models.User, clientIP string) (*models.Submission, error) {
	if submitter == nil || submitter.ID != sess.UserID {
		return nil, ErrForbiddenOperation
	}
	if err := sess.ValidateForSubmit(); err != nil {
		return nil, err
	}

	registration := sess.Catalog.Registration
	if registration.MaxParticipants != nil {
		count, err := s.submissionRepo.CountByRegistration(ctx, sess.RegistrationID)
		if err != nil {
			s.logSubmitError(ctx, sess, err)
			return nil, ErrSubmitFailed
		}
		if count >= *registration.MaxParticipants {
			return nil, ErrRegistrationFull
		}
	}

	total := sess.TotalCents()
	paymentStatus := models.PaymentPending
	if total == 0 {
		paymentStatus = models.PaymentPaid
	}
	submission := &models.Submission{
		RegistrationID: sess.RegistrationID,
		UserID:         sess.UserID,
		TotalCents:     total,
		PaymentStatus:  paymentStatus,
		ApprovalStatus: models.ApprovalPending,
	}

	responses := buildResponses(sess)
	signatures := buildSignatures(sess, submitter.DisplayName(), clientIP)
	purchases := buildPurchases(sess)

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.submissionRepo.Create(ctx, exec, submission); err != nil {
			return err
		}
		for _, r := range responses {
			r.SubmissionID = submission.ID
		}
		if err := s.submissionRepo.CreateResponses(ctx, exec, responses); err != nil {
			return err
		}
		for _, sig := range signatures {
			sig.SubmissionID = submission.ID
		}
		if err := s.submissionRepo.CreateSignatures(ctx, exec, signatures); err != nil {
			return err
		}
		for _, p := range purchases {
			p.SubmissionID = submission.ID
		}
		return s.submissionRepo.CreatePurchases(ctx, exec, purchases)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionConflict) {
			return nil, ErrAlreadySubmitted
		}
		s.logSubmitError(ctx, sess, err)
		return nil, ErrSubmitFailed
	}

	for _, r := range responses {
		submission.Responses = append(submission.Responses, *r)
	}
	for _, sig := range signatures {
		submission.Signatures = append(submission.Signatures, *sig)
	}
	for _, p := range purchases {
		submission.Purchases = append(submission.Purchases, *p)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.RoomForRegistration(sess.RegistrationID), realtime.Message{
			Type:   realtime.EventSubmissionCreated,
			RoomID: realtime.RoomForRegistration(sess.RegistrationID),
			Payload: map[string]interface{}{
				"submission_id":   submission.ID,
				"registration_id": submission.RegistrationID,
				"submitter":       submitter.DisplayName(),
				"total_cents":     submission.TotalCents,
			},
		})
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "submission created",
			slog.Int("submission_id", submission.ID),
			slog.Int("registration_id", submission.RegistrationID),
			slog.Int("user_id", submission.UserID),
			slog.Int64("total_cents", submission.TotalCents),
		)
	}
	return submission, nil
}

func (s *SubmissionService) logSubmitError(ctx context.Context, sess *FlowSession, err error) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorContext(ctx, "submission fan-out failed",
		slog.Int("registration_id", sess.RegistrationID),
		slog.Int("user_id", sess.UserID),
		slog.Any("error", err),
	)
}

var personalLabels = []struct {
	key   string
	label string
}{
	{KeyFirstName, "First Name"},
	{KeyLastName, "Last Name"},
	{KeyEmail, "Email"},
	{KeyPhone, "Phone"},
}

func buildResponses(sess *FlowSession) []*models.SubmissionResponse {
	responses := make([]*models.SubmissionResponse, 0)

	add := func(category models.FieldCategory, fieldID *int, fieldKey, label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		responses = append(responses, &models.SubmissionResponse{
			Category: category,
			FieldID:  fieldID,
			FieldKey: fieldKey,
			Label:    label,
			Value:    value,
		})
	}

	for _, p := range personalLabels {
		add(models.CategoryPersonal, nil, p.key, p.label, sess.Answer(p.key))
	}
	for _, f := range sess.Catalog.ParticipantFields {
		id := f.ID
		add(models.CategoryParticipantField, &id, f.FieldKey, f.Label, sess.Answer(ParticipantFieldKey(f.ID)))
	}
	for _, form := range sess.Catalog.Forms {
		for _, f := range form.Fields {
			id := f.ID
			add(models.CategoryFormField, &id, "", f.Label, sess.Answer(FormFieldKey(f.ID)))
		}
	}
	for _, f := range sess.Catalog.CustomFields {
		id := f.ID
		add(models.CategoryCustomField, &id, "", f.Label, sess.Answer(CustomFieldKey(f.ID)))
	}
	return responses
}

func buildSignatures(sess *FlowSession, signature, clientIP string) []*models.WaiverSignature {
	signatures := make([]*models.WaiverSignature, 0)
	var ip *string
	if clientIP != "" {
		ip = &clientIP
	}
	for _, w := range sess.Catalog.Waivers {
		if !sess.Accepted(w.ID) {
			continue
		}
		signatures = append(signatures, &models.WaiverSignature{
			WaiverID:  w.ID,
			Signature: signature,
			IPAddress: ip,
		})
	}
	return signatures
}

func buildPurchases(sess *FlowSession) []*models.ItemPurchase {
	purchases := make([]*models.ItemPurchase, 0)
	for _, item := range sess.Catalog.Items {
		qty := sess.Quantity(item.ID)
		if qty <= 0 {
			continue
		}
		purchases = append(purchases, &models.ItemPurchase{
			ItemID:         item.ID,
			Quantity:       qty,
			UnitPriceCents: item.PriceCents,
			TotalCents:     item.PriceCents * int64(qty),
		})
	}
	return purchases
}

// GetByID returns a submission. Submitters can read their own; the
// registration creator and admins can read any.
func (s *SubmissionService) GetByID(ctx context.Context, id, actorID int, actorRole models.UserRole) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.UserID == actorID || actorRole == models.RoleAdmin {
		return submission, nil
	}
	registration, err := s.registrationRepo.GetByID(ctx, submission.RegistrationID)
	if err != nil {
		return nil, err
	}
	if registration.CreatorID != actorID {
		return nil, ErrForbiddenOperation
	}
	return submission, nil
}

// ListByRegistration returns a registration's submissions for its creator or
// an admin.
func (s *SubmissionService) ListByRegistration(ctx context.Context, registrationID, actorID int, actorRole models.UserRole) ([]models.Submission, error) {
	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.CreatorID != actorID && actorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return s.submissionRepo.ListByRegistration(ctx, registrationID)
}

// ListByUser returns the submissions a user has made.
func (s *SubmissionService) ListByUser(ctx context.Context, userID int) ([]models.Submission, error) {
	return s.submissionRepo.ListByUser(ctx, userID)
}

// UpdateApproval sets the approval status and returns the updated submission.
// Only the registration creator or an admin may approve or reject.
func (s *SubmissionService) UpdateApproval(ctx context.Context, id int, status models.ApprovalStatus, actorID int, actorRole models.UserRole) (*models.Submission, error) {
	switch status {
	case models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
	default:
		return nil, ErrApprovalInvalid
	}

	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	registration, err := s.registrationRepo.GetByID(ctx, submission.RegistrationID)
	if err != nil {
		return nil, err
	}
	if registration.CreatorID != actorID && actorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	if err := s.submissionRepo.UpdateApprovalStatus(ctx, id, status); err != nil {
		return nil, err
	}
	updated := *submission
	updated.ApprovalStatus = status
	return &updated, nil
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scout-hq/scout-system/models"
)

func newTestSession(catalog *RegistrationCatalog, userID int) *FlowSession {
	return &FlowSession{
		ID:             "test-session",
		RegistrationID: catalog.Registration.ID,
		UserID:         userID,
		Catalog:        catalog,
		Steps:          ComposeSteps(catalog),
		answers:        make(map[string]string),
		quantities:     make(map[int]int),
		acceptances:    make(map[int]bool),
	}
}

func submissionFixture() (*fakeTxRunner, *fakeSubmissionRepo, *fakeRegistrationRepo, *SubmissionService, *RegistrationCatalog) {
	registration := &models.Registration{ID: 1, CreatorID: 50, Status: models.StatusActive, FeeCents: 2500}
	catalog := &RegistrationCatalog{
		Registration: registration,
		Items: []models.OptionalItem{
			{ID: 1, Name: "Jersey", PriceCents: 1000, Available: true},
		},
		Waivers: []models.Waiver{
			{ID: 1, Title: "Liability Waiver", Required: true},
		},
	}
	tx := &fakeTxRunner{}
	submissionRepo := newFakeSubmissionRepo()
	registrationRepo := newFakeRegistrationRepo(registration)
	svc := NewSubmissionService(tx, submissionRepo, registrationRepo, nil, nil)
	return tx, submissionRepo, registrationRepo, svc, catalog
}

func submitter(id int) *models.User {
	return &models.User{ID: id, FirstName: "Jordan", LastName: "Reyes", Email: "jordan@example.com"}
}

func TestSubmit_RequiredWaiverBlocksWithZeroWrites(t *testing.T) {
	tx, submissionRepo, _, svc, catalog := submissionFixture()
	sess := newTestSession(catalog, 7)
	sess.answers[KeyFirstName] = "Jordan"
	sess.answers[KeyLastName] = "Reyes"
	sess.answers[KeyEmail] = "jordan@example.com"

	_, err := svc.Submit(context.Background(), sess, submitter(7), "203.0.113.9")
	if !errors.Is(err, ErrWaiverNotAccepted) {
		t.Fatalf("expected ErrWaiverNotAccepted, got %v", err)
	}
	if tx.calls != 0 {
		t.Errorf("no transaction should start, got %d", tx.calls)
	}
	if len(submissionRepo.submissions) != 0 || len(submissionRepo.responses) != 0 ||
		len(submissionRepo.signatures) != 0 || len(submissionRepo.purchases) != 0 {
		t.Error("expected zero writes on failed submit validation")
	}
}

func TestSubmit_FanOutWritesEverything(t *testing.T) {
	tx, submissionRepo, _, svc, catalog := submissionFixture()
	sess := newTestSession(catalog, 7)
	sess.answers[KeyFirstName] = "Jordan"
	sess.answers[KeyLastName] = "Reyes"
	sess.answers[KeyEmail] = "jordan@example.com"
	sess.quantities[1] = 2
	sess.acceptances[1] = true

	submission, err := svc.Submit(context.Background(), sess, submitter(7), "203.0.113.9")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", tx.calls)
	}
	if submission.TotalCents != 4500 {
		t.Errorf("expected total 4500, got %d", submission.TotalCents)
	}
	if submission.PaymentStatus != models.PaymentPending {
		t.Errorf("nonzero total must be pending, got %s", submission.PaymentStatus)
	}
	if submission.ApprovalStatus != models.ApprovalPending {
		t.Errorf("expected approval pending, got %s", submission.ApprovalStatus)
	}

	if len(submissionRepo.responses) != 3 {
		t.Errorf("expected 3 responses, got %d", len(submissionRepo.responses))
	}
	for _, r := range submissionRepo.responses {
		if r.SubmissionID != submission.ID {
			t.Errorf("response not linked to submission: %d", r.SubmissionID)
		}
	}

	if len(submissionRepo.signatures) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(submissionRepo.signatures))
	}
	sig := submissionRepo.signatures[0]
	if sig.Signature != "Jordan Reyes" {
		t.Errorf("signature must carry the submitter display name, got %q", sig.Signature)
	}
	if sig.IPAddress == nil || *sig.IPAddress != "203.0.113.9" {
		t.Errorf("expected client IP recorded, got %v", sig.IPAddress)
	}

	if len(submissionRepo.purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(submissionRepo.purchases))
	}
	p := submissionRepo.purchases[0]
	if p.Quantity != 2 || p.UnitPriceCents != 1000 || p.TotalCents != 2000 {
		t.Errorf("unexpected purchase snapshot: %+v", p)
	}
}

func TestSubmit_CollidingFieldIDsStayInTheirCategory(t *testing.T) {
	_, submissionRepo, _, svc, catalog := submissionFixture()
	// The three field tables have independent ID sequences, so the same
	// numeric ID appearing in every category is the normal case.
	catalog.ParticipantFields = []models.ParticipantField{
		{ID: 2, FieldKey: "tshirt_size", Label: "T-Shirt Size"},
	}
	catalog.Forms = []models.CustomForm{
		{ID: 1, Name: "Medical History", Fields: []models.FormField{{ID: 2, Label: "Conditions"}}},
	}
	catalog.CustomFields = []models.CustomField{
		{ID: 2, Label: "Allergies"},
	}

	sess := newTestSession(catalog, 7)
	sess.answers[ParticipantFieldKey(2)] = "L"
	sess.acceptances[1] = true

	if _, err := svc.Submit(context.Background(), sess, submitter(7), ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(submissionRepo.responses) != 1 {
		t.Fatalf("one answered field must yield one response, got %d", len(submissionRepo.responses))
	}
	r := submissionRepo.responses[0]
	if r.Category != models.CategoryParticipantField {
		t.Errorf("answer crossed into category %s", r.Category)
	}
	if r.Label != "T-Shirt Size" || r.Value != "L" {
		t.Errorf("unexpected response: label %q value %q", r.Label, r.Value)
	}
}

func TestSubmit_PurchaseTotalsRoundTrip(t *testing.T) {
	_, submissionRepo, _, svc, catalog := submissionFixture()
	catalog.Items = append(catalog.Items, models.OptionalItem{ID: 2, Name: "Bottle", PriceCents: 750, Available: true})
	sess := newTestSession(catalog, 7)
	sess.answers[KeyFirstName] = "Jordan"
	sess.answers[KeyLastName] = "Reyes"
	sess.answers[KeyEmail] = "jordan@example.com"
	sess.quantities[1] = 3
	sess.quantities[2] = 1
	sess.acceptances[1] = true

	submission, err := svc.Submit(context.Background(), sess, submitter(7), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	var purchaseSum int64
	for _, p := range submissionRepo.purchases {
		purchaseSum += p.TotalCents
	}
	if purchaseSum != submission.TotalCents-catalog.Registration.FeeCents {
		t.Errorf("purchase totals %d do not reconcile with %d - %d",
			purchaseSum, submission.TotalCents, catalog.Registration.FeeCents)
	}
}

func TestSubmit_ZeroTotalIsPaid(t *testing.T) {
	_, _, _, svc, catalog := submissionFixture()
	catalog.Registration.FeeCents = 0
	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true

	submission, err := svc.Submit(context.Background(), sess, submitter(7), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.TotalCents != 0 {
		t.Fatalf("expected zero total, got %d", submission.TotalCents)
	}
	if submission.PaymentStatus != models.PaymentPaid {
		t.Errorf("zero total must be paid, got %s", submission.PaymentStatus)
	}
}

func TestSubmit_DuplicateIsConflict(t *testing.T) {
	_, _, _, svc, catalog := submissionFixture()
	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true

	if _, err := svc.Submit(context.Background(), sess, submitter(7), ""); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), sess, submitter(7), ""); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestSubmit_CapacityReached(t *testing.T) {
	_, submissionRepo, _, svc, catalog := submissionFixture()
	limit := 1
	catalog.Registration.MaxParticipants = &limit
	submissionRepo.count = 1

	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true

	if _, err := svc.Submit(context.Background(), sess, submitter(7), ""); !errors.Is(err, ErrRegistrationFull) {
		t.Fatalf("expected ErrRegistrationFull, got %v", err)
	}
}

func TestSubmit_SubmitterMustOwnSession(t *testing.T) {
	_, _, _, svc, catalog := submissionFixture()
	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true

	if _, err := svc.Submit(context.Background(), sess, submitter(8), ""); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}
}

func TestSubmit_RepoFailureIsGeneric(t *testing.T) {
	_, submissionRepo, _, svc, catalog := submissionFixture()
	submissionRepo.createErr = errors.New("disk on fire")

	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true

	_, err := svc.Submit(context.Background(), sess, submitter(7), "")
	if !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("expected generic ErrSubmitFailed, got %v", err)
	}
	if err.Error() != "failed to submit registration, please try again" {
		t.Errorf("internal detail leaked into user message: %q", err.Error())
	}
}

func TestUpdateApproval(t *testing.T) {
	_, submissionRepo, _, svc, catalog := submissionFixture()
	sess := newTestSession(catalog, 7)
	sess.acceptances[1] = true
	created, err := svc.Submit(context.Background(), sess, submitter(7), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.UpdateApproval(context.Background(), created.ID, "maybe", 50, models.RoleOrganizer); !errors.Is(err, ErrApprovalInvalid) {
		t.Errorf("expected ErrApprovalInvalid, got %v", err)
	}

	// Only the registration creator or an admin may approve.
	if _, err := svc.UpdateApproval(context.Background(), created.ID, models.ApprovalApproved, 7, models.RoleMember); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("expected ErrForbiddenOperation for submitter, got %v", err)
	}

	updated, err := svc.UpdateApproval(context.Background(), created.ID, models.ApprovalApproved, 50, models.RoleOrganizer)
	if err != nil {
		t.Fatalf("approval update failed: %v", err)
	}
	if updated.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("expected approved, got %s", updated.ApprovalStatus)
	}

	stored, _ := submissionRepo.GetByID(context.Background(), created.ID)
	if stored.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("approval not persisted, got %s", stored.ApprovalStatus)
	}
}

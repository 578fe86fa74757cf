package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scout-hq/scout-system/models"
)

type fakeCatalogLoader struct {
	catalog *RegistrationCatalog
	err     error
}

func (f *fakeCatalogLoader) LoadCatalog(ctx context.Context, registrationID int) (*RegistrationCatalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func startFlow(t *testing.T, catalog *RegistrationCatalog, userID int) (*FlowService, *FlowSession) {
	t.Helper()
	svc := NewFlowService(&fakeCatalogLoader{catalog: catalog}, nil)
	session, err := svc.Start(context.Background(), catalog.Registration.ID, userID)
	if err != nil {
		t.Fatalf("failed to start flow: %v", err)
	}
	return svc, session
}

func personalInfoInput() StepInput {
	return StepInput{Answers: map[string]string{
		KeyFirstName: "Jordan",
		KeyLastName:  "Reyes",
		KeyEmail:     "jordan@example.com",
	}}
}

func TestStart_RequiresActiveRegistration(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.Registration.Status = models.StatusDraft

	svc := NewFlowService(&fakeCatalogLoader{catalog: catalog}, nil)
	if _, err := svc.Start(context.Background(), 1, 7); !errors.Is(err, ErrRegistrationNotOpen) {
		t.Fatalf("expected ErrRegistrationNotOpen, got %v", err)
	}
}

func TestGet_ForeignSessionLooksMissing(t *testing.T) {
	svc, session := startFlow(t, catalogWith(0, 0, 0, 0), 7)

	if _, err := svc.Get(session.ID, 8); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound for another user, got %v", err)
	}
	if _, err := svc.Get("no-such-session", 7); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound for unknown id, got %v", err)
	}
}

func TestSaveStep_EmptyLastNameBlocksAndKeepsStore(t *testing.T) {
	svc, session := startFlow(t, catalogWith(1, 0, 0, 0), 7)

	input := StepInput{Answers: map[string]string{
		KeyFirstName: "Jordan",
		KeyLastName:  "   ",
		KeyEmail:     "jordan@example.com",
	}}
	_, err := svc.SaveStep(session.ID, 7, 0, input)
	if !errors.Is(err, ErrLastNameRequired) {
		t.Fatalf("expected ErrLastNameRequired, got %v", err)
	}

	// Nothing merged and the cursor did not move.
	if got := session.Answer(KeyFirstName); got != "" {
		t.Errorf("store changed on failed validation: first name %q", got)
	}
	view := session.View()
	if view.CurrentStep.Index != 0 {
		t.Errorf("cursor moved to %d on failed validation", view.CurrentStep.Index)
	}
}

func TestSaveStep_DistinctPersonalInfoErrors(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		want    error
	}{
		{"missing first name", map[string]string{KeyLastName: "Reyes", KeyEmail: "a@b.c"}, ErrFirstNameRequired},
		{"missing last name", map[string]string{KeyFirstName: "Jordan", KeyEmail: "a@b.c"}, ErrLastNameRequired},
		{"missing email", map[string]string{KeyFirstName: "Jordan", KeyLastName: "Reyes"}, ErrEmailRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, session := startFlow(t, catalogWith(0, 0, 0, 0), 7)
			_, err := svc.SaveStep(session.ID, 7, 0, StepInput{Answers: tt.answers})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveStep_WrongIndexRejected(t *testing.T) {
	svc, session := startFlow(t, catalogWith(1, 0, 0, 0), 7)

	if _, err := svc.SaveStep(session.ID, 7, 1, StepInput{}); !errors.Is(err, ErrStepIndexInvalid) {
		t.Fatalf("expected ErrStepIndexInvalid for index ahead of cursor, got %v", err)
	}

	// The review step is terminal; it cannot be saved past.
	last := len(session.Steps) - 1
	if _, err := svc.SaveStep(session.ID, 7, last, StepInput{}); !errors.Is(err, ErrStepIndexInvalid) {
		t.Fatalf("expected ErrStepIndexInvalid for review step, got %v", err)
	}
}

func TestSaveStep_RequiredParticipantFieldNotEnforced(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.ParticipantFields = []models.ParticipantField{
		{ID: 10, FieldKey: "jersey_size", Label: "Jersey Size", Required: true},
	}
	svc, session := startFlow(t, catalog, 7)

	if _, err := svc.SaveStep(session.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}

	// Required participant fields do not gate the step; an empty save advances.
	view, err := svc.SaveStep(session.ID, 7, 1, StepInput{})
	if err != nil {
		t.Fatalf("expected empty required field to be accepted, got %v", err)
	}
	if view.CurrentStep.Kind != StepReview {
		t.Errorf("expected advance to review, got %s", view.CurrentStep.Kind)
	}
}

func TestSaveStep_QuantityClampAndNegative(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.Items = []models.OptionalItem{
		{ID: 1, Name: "Jersey", PriceCents: 1000, MaxQuantity: 3},
		{ID: 2, Name: "Bottle", PriceCents: 500}, // unlimited, default clamp
	}
	svc, session := startFlow(t, catalog, 7)

	if _, err := svc.SaveStep(session.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}

	_, err := svc.SaveStep(session.ID, 7, 1, StepInput{Quantities: map[int]int{1: -1}})
	if !errors.Is(err, ErrItemQuantityInvalid) {
		t.Fatalf("expected ErrItemQuantityInvalid, got %v", err)
	}

	view, err := svc.SaveStep(session.ID, 7, 1, StepInput{Quantities: map[int]int{1: 99, 2: 99}})
	if err != nil {
		t.Fatalf("items step failed: %v", err)
	}
	if got := view.Quantities[1]; got != 3 {
		t.Errorf("expected clamp to item max 3, got %d", got)
	}
	if got := view.Quantities[2]; got != 10 {
		t.Errorf("expected default clamp 10, got %d", got)
	}
}

func TestSaveStep_RejectedQuantityMergesNothing(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.Items = []models.OptionalItem{
		{ID: 1, Name: "Jersey", PriceCents: 1000, MaxQuantity: 5},
		{ID: 2, Name: "Bottle", PriceCents: 500, MaxQuantity: 5},
	}
	svc, session := startFlow(t, catalog, 7)

	if _, err := svc.SaveStep(session.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}

	input := StepInput{
		Answers:    map[string]string{"nickname": "JJ"},
		Quantities: map[int]int{1: 2, 2: -5},
	}
	if _, err := svc.SaveStep(session.ID, 7, 1, input); !errors.Is(err, ErrItemQuantityInvalid) {
		t.Fatalf("expected ErrItemQuantityInvalid, got %v", err)
	}

	// A rejected save must not leave partial state behind, even for the
	// entries that were individually valid.
	if got := session.Answer("nickname"); got != "" {
		t.Errorf("answer merged despite rejected step: %q", got)
	}
	if got := session.Quantity(1); got != 0 {
		t.Errorf("quantity merged despite rejected step: %d", got)
	}
}

func TestStart_SweepsExpiredSessions(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	svc := NewFlowService(&fakeCatalogLoader{catalog: catalog}, nil)

	stale, err := svc.Start(context.Background(), catalog.Registration.ID, 7)
	if err != nil {
		t.Fatalf("failed to start flow: %v", err)
	}
	stale.StartedAt = time.Now().Add(-(sessionTTL + time.Minute))

	fresh, err := svc.Start(context.Background(), catalog.Registration.ID, 8)
	if err != nil {
		t.Fatalf("failed to start flow: %v", err)
	}

	if _, err := svc.Get(stale.ID, 7); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("expected expired session swept, got %v", err)
	}
	if _, err := svc.Get(fresh.ID, 8); err != nil {
		t.Errorf("fresh session must survive the sweep: %v", err)
	}
}

func TestBack_PreservesAnswersAndTotal(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.Registration.FeeCents = 2500
	catalog.Items = []models.OptionalItem{{ID: 1, Name: "Jersey", PriceCents: 1000, MaxQuantity: 5}}
	svc, session := startFlow(t, catalog, 7)

	if _, err := svc.SaveStep(session.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}
	if _, err := svc.SaveStep(session.ID, 7, 1, StepInput{Quantities: map[int]int{1: 2}}); err != nil {
		t.Fatalf("items step failed: %v", err)
	}

	view, err := svc.Back(session.ID, 7)
	if err != nil {
		t.Fatalf("back failed: %v", err)
	}
	if view.CurrentStep.Index != 1 {
		t.Errorf("expected cursor at 1 after back, got %d", view.CurrentStep.Index)
	}
	if view.Answers[KeyFirstName] != "Jordan" {
		t.Errorf("answers lost on back: %q", view.Answers[KeyFirstName])
	}
	if view.Quantities[1] != 2 {
		t.Errorf("quantities lost on back: %d", view.Quantities[1])
	}
	if view.TotalCents != 4500 {
		t.Errorf("expected running total 4500, got %d", view.TotalCents)
	}
	if view.TotalDisplay != "45.00" {
		t.Errorf("expected display 45.00, got %q", view.TotalDisplay)
	}
}

func TestValidateForSubmit_RequiredWaiver(t *testing.T) {
	catalog := catalogWith(0, 0, 0, 0)
	catalog.Waivers = []models.Waiver{
		{ID: 1, Title: "Liability Waiver", Required: true},
		{ID: 2, Title: "Photo Release", Required: false},
	}
	svc, session := startFlow(t, catalog, 7)

	if _, err := svc.SaveStep(session.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}

	if err := session.ValidateForSubmit(); !errors.Is(err, ErrWaiverNotAccepted) {
		t.Fatalf("expected ErrWaiverNotAccepted, got %v", err)
	}

	// Accepting only the optional waiver is not enough.
	if _, err := svc.SaveStep(session.ID, 7, 1, StepInput{Acceptances: map[int]bool{2: true}}); err != nil {
		t.Fatalf("waivers step failed: %v", err)
	}
	if err := session.ValidateForSubmit(); !errors.Is(err, ErrWaiverNotAccepted) {
		t.Fatalf("expected ErrWaiverNotAccepted with optional-only acceptance, got %v", err)
	}

	svc2, session2 := startFlow(t, catalog, 7)
	if _, err := svc2.SaveStep(session2.ID, 7, 0, personalInfoInput()); err != nil {
		t.Fatalf("personal info step failed: %v", err)
	}
	if _, err := svc2.SaveStep(session2.ID, 7, 1, StepInput{Acceptances: map[int]bool{1: true}}); err != nil {
		t.Fatalf("waivers step failed: %v", err)
	}
	if err := session2.ValidateForSubmit(); err != nil {
		t.Fatalf("expected submit validation to pass, got %v", err)
	}
}

func TestDiscard_RemovesSession(t *testing.T) {
	svc, session := startFlow(t, catalogWith(0, 0, 0, 0), 7)

	if err := svc.Discard(session.ID, 7); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if _, err := svc.Get(session.ID, 7); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected session gone after discard, got %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scout-hq/scout-system/models"
)

// Well-known personal-info answer keys.
const (
	KeyFirstName = "firstName"
	KeyLastName  = "lastName"
	KeyEmail     = "email"
	KeyPhone     = "phone"
)

// Configured fields are keyed with a category prefix. Participant, form and
// custom field IDs come from three separate sequences, so a bare numeric key
// would collide across categories.
func ParticipantFieldKey(fieldID int) string {
	return fmt.Sprintf("pf:%d", fieldID)
}

func FormFieldKey(fieldID int) string {
	return fmt.Sprintf("ff:%d", fieldID)
}

func CustomFieldKey(fieldID int) string {
	return fmt.Sprintf("cf:%d", fieldID)
}

// defaultMaxQuantity caps item selections when the item itself has no limit.
const defaultMaxQuantity = 10

// sessionTTL bounds how long a walked-away session is kept. Expired sessions
// are swept when a new flow starts.
const sessionTTL = 2 * time.Hour

// StepInput carries one step's worth of user input.
type StepInput struct {
	Answers     map[string]string `json:"answers"`
	Quantities  map[int]int       `json:"quantities"`
	Acceptances map[int]bool      `json:"acceptances"`
}

// FlowSession is one user's in-flight registration wizard. The three maps are
// the response store: they survive back/forward navigation within the session
// and are discarded with it. Nothing here is persisted.
type FlowSession struct {
	ID             string
	RegistrationID int
	UserID         int
	Catalog        *RegistrationCatalog
	Steps          []FlowStep
	StartedAt      time.Time

	mu          sync.Mutex
	current     int
	answers     map[string]string
	quantities  map[int]int
	acceptances map[int]bool
}

// FlowView is the JSON shape handlers return for a session.
type FlowView struct {
	SessionID      string            `json:"session_id"`
	RegistrationID int               `json:"registration_id"`
	Steps          []FlowStep        `json:"steps"`
	CurrentStep    FlowStep          `json:"current_step"`
	TotalCents     int64             `json:"total_cents"`
	TotalDisplay   string            `json:"total_display"`
	Answers        map[string]string `json:"answers"`
	Quantities     map[int]int       `json:"quantities"`
	Acceptances    map[int]bool      `json:"acceptances"`
}

// FlowService owns the in-memory wizard sessions. Sessions are process-local
// by design: the flow is a single interactive pass and does not survive a
// restart.
type FlowService struct {
	catalog CatalogLoader
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*FlowSession
}

func NewFlowService(catalog CatalogLoader, logger *slog.Logger) *FlowService {
	return &FlowService{
		catalog:  catalog,
		logger:   logger,
		sessions: make(map[string]*FlowSession),
	}
}

// Start loads the registration's catalog, composes the step list and opens a
// new session positioned at the first step.
func (s *FlowService) Start(ctx context.Context, registrationID, userID int) (*FlowSession, error) {
	catalog, err := s.catalog.LoadCatalog(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if catalog.Registration.Status != models.StatusActive {
		return nil, ErrRegistrationNotOpen
	}

	session := &FlowSession{
		ID:             randomToken(32),
		RegistrationID: registrationID,
		UserID:         userID,
		Catalog:        catalog,
		Steps:          ComposeSteps(catalog),
		StartedAt:      time.Now(),
		answers:        make(map[string]string),
		quantities:     make(map[int]int),
		acceptances:    make(map[int]bool),
	}

	s.mu.Lock()
	s.evictExpiredLocked(time.Now())
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.InfoContext(ctx, "registration flow started",
			slog.Int("registration_id", registrationID),
			slog.Int("user_id", userID),
			slog.Int("steps", len(session.Steps)),
		)
	}
	return session, nil
}

// Get returns the session if it exists and belongs to userID. A foreign
// session is indistinguishable from a missing one.
func (s *FlowService) Get(sessionID string, userID int) (*FlowSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok || session.UserID != userID {
		return nil, ErrFlowNotFound
	}
	return session, nil
}

// SaveStep validates input for the step at stepIndex (which must be the
// session's current step), merges it into the response store and advances to
// the next step. On validation failure nothing is merged and the position
// does not move.
func (s *FlowService) SaveStep(sessionID string, userID, stepIndex int, input StepInput) (*FlowView, error) {
	session, err := s.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if stepIndex != session.current || stepIndex >= len(session.Steps)-1 {
		return nil, ErrStepIndexInvalid
	}
	step := session.Steps[stepIndex]

	if err := validateStep(step, input); err != nil {
		return nil, err
	}
	if err := session.mergeLocked(step, input); err != nil {
		return nil, err
	}

	session.current++
	return session.viewLocked(), nil
}

// Back moves one step towards the start. The response store is untouched.
func (s *FlowService) Back(sessionID string, userID int) (*FlowView, error) {
	session, err := s.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.current > 0 {
		session.current--
	}
	return session.viewLocked(), nil
}

// evictExpiredLocked drops sessions older than sessionTTL. Caller holds s.mu.
func (s *FlowService) evictExpiredLocked(now time.Time) {
	for id, session := range s.sessions {
		if now.Sub(session.StartedAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}
}

// Discard drops the session and its accumulated state.
func (s *FlowService) Discard(sessionID string, userID int) error {
	if _, err := s.Get(sessionID, userID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// validateStep enforces the per-step rules. Only Personal Info is gated here;
// required flags on participant, custom and form fields are intentionally not
// enforced, matching the shipped behavior of the mobile flow. Required
// waivers are checked at submission time by ValidateForSubmit.
func validateStep(step FlowStep, input StepInput) error {
	if step.Kind != StepPersonalInfo {
		return nil
	}
	if strings.TrimSpace(input.Answers[KeyFirstName]) == "" {
		return ErrFirstNameRequired
	}
	if strings.TrimSpace(input.Answers[KeyLastName]) == "" {
		return ErrLastNameRequired
	}
	if strings.TrimSpace(input.Answers[KeyEmail]) == "" {
		return ErrEmailRequired
	}
	return nil
}

// mergeLocked folds validated input into the response store. Quantities are
// clamped to the item's max (default 10 when unlimited); entries for unknown
// items or waivers are dropped. Any rejection happens before the first write,
// so a failed merge leaves the store exactly as it was. Caller holds
// session.mu.
func (sess *FlowSession) mergeLocked(step FlowStep, input StepInput) error {
	if step.Kind == StepOptionalItems {
		for _, item := range sess.Catalog.Items {
			if qty, ok := input.Quantities[item.ID]; ok && qty < 0 {
				return fmt.Errorf("%w: item %q quantity %d", ErrItemQuantityInvalid, item.Name, qty)
			}
		}
	}

	for k, v := range input.Answers {
		sess.answers[k] = v
	}

	if step.Kind == StepOptionalItems {
		for _, item := range sess.Catalog.Items {
			qty, ok := input.Quantities[item.ID]
			if !ok {
				continue
			}
			max := item.MaxQuantity
			if max <= 0 {
				max = defaultMaxQuantity
			}
			if qty > max {
				qty = max
			}
			sess.quantities[item.ID] = qty
		}
	}

	if step.Kind == StepWaivers {
		known := make(map[int]bool, len(sess.Catalog.Waivers))
		for _, w := range sess.Catalog.Waivers {
			known[w.ID] = true
		}
		for id, accepted := range input.Acceptances {
			if known[id] {
				sess.acceptances[id] = accepted
			}
		}
	}
	return nil
}

// ValidateForSubmit checks that every required waiver has an explicit true
// acceptance. The error names the first missing waiver.
func (sess *FlowSession) ValidateForSubmit() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, w := range sess.Catalog.Waivers {
		if w.Required && !sess.acceptances[w.ID] {
			return fmt.Errorf("%w: %q", ErrWaiverNotAccepted, w.Title)
		}
	}
	return nil
}

// TotalCents recomputes the running total from the current selections.
func (sess *FlowSession) TotalCents() int64 {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return ComputeTotalCents(sess.Catalog.Registration.FeeCents, sess.Catalog.Items, sess.quantities)
}

// Answer returns the stored answer for a key.
func (sess *FlowSession) Answer(key string) string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.answers[key]
}

// Quantity returns the selected quantity for an item.
func (sess *FlowSession) Quantity(itemID int) int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.quantities[itemID]
}

// Accepted reports whether a waiver has been accepted.
func (sess *FlowSession) Accepted(waiverID int) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.acceptances[waiverID]
}

// View snapshots the session for rendering.
func (sess *FlowSession) View() *FlowView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

func (sess *FlowSession) viewLocked() *FlowView {
	answers := make(map[string]string, len(sess.answers))
	for k, v := range sess.answers {
		answers[k] = v
	}
	quantities := make(map[int]int, len(sess.quantities))
	for k, v := range sess.quantities {
		quantities[k] = v
	}
	acceptances := make(map[int]bool, len(sess.acceptances))
	for k, v := range sess.acceptances {
		acceptances[k] = v
	}
	total := ComputeTotalCents(sess.Catalog.Registration.FeeCents, sess.Catalog.Items, sess.quantities)

	return &FlowView{
		SessionID:      sess.ID,
		RegistrationID: sess.RegistrationID,
		Steps:          sess.Steps,
		CurrentStep:    sess.Steps[sess.current],
		TotalCents:     total,
		TotalDisplay:   FormatCents(total),
		Answers:        answers,
		Quantities:     quantities,
		Acceptances:    acceptances,
	}
}

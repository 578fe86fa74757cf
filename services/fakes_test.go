package services

import (
	"context"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/repositories"
)

// In-memory fakes behind the repository interfaces. They ignore the exec
// argument since no real transaction is involved.

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
	nextID        int
	createErr     error
	statusUpdates []models.RegistrationStatus
	logoKey       *string
}

func newFakeRegistrationRepo(regs ...*models.Registration) *fakeRegistrationRepo {
	repo := &fakeRegistrationRepo{registrations: make(map[int]*models.Registration), nextID: 100}
	for _, r := range regs {
		repo.registrations[r.ID] = r
	}
	return repo
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	reg.ID = f.nextID
	stored := *reg
	f.registrations[reg.ID] = &stored
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, ok := f.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegistrationRepo) List(ctx context.Context, filter repositories.ListRegistrationsFilter) ([]models.Registration, error) {
	out := make([]models.Registration, 0, len(f.registrations))
	for _, reg := range f.registrations {
		out = append(out, *reg)
	}
	return out, nil
}

func (f *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	reg, ok := f.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeRegistrationRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	f.logoKey = logoKey
	return nil
}

type fakeGroupRepo struct {
	groups    map[int]*models.Group
	createErr error
}

func newFakeGroupRepo(groups ...*models.Group) *fakeGroupRepo {
	repo := &fakeGroupRepo{groups: make(map[int]*models.Group)}
	for _, g := range groups {
		repo.groups[g.ID] = g
	}
	return repo
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	if f.createErr != nil {
		return f.createErr
	}
	group.ID = len(f.groups) + 1
	f.groups[group.ID] = group
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id int) (*models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	return group, nil
}

func (f *fakeGroupRepo) ListByOwner(ctx context.Context, ownerID int) ([]models.Group, error) {
	out := make([]models.Group, 0)
	for _, g := range f.groups {
		if g.OwnerID == ownerID {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeParticipantFieldRepo struct {
	fields  []models.ParticipantField
	listErr error
	created []*models.ParticipantField
}

func (f *fakeParticipantFieldRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, fields []*models.ParticipantField) error {
	f.created = append(f.created, fields...)
	return nil
}

func (f *fakeParticipantFieldRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.ParticipantField, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.fields == nil {
		return []models.ParticipantField{}, nil
	}
	return f.fields, nil
}

type fakeCustomFieldRepo struct {
	fields  []models.CustomField
	listErr error
	created []*models.CustomField
}

func (f *fakeCustomFieldRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, fields []*models.CustomField) error {
	f.created = append(f.created, fields...)
	return nil
}

func (f *fakeCustomFieldRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomField, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.fields == nil {
		return []models.CustomField{}, nil
	}
	return f.fields, nil
}

type fakeFormRepo struct {
	forms   []models.CustomForm
	listErr error
	created []*models.CustomForm
}

func (f *fakeFormRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, forms []*models.CustomForm) error {
	f.created = append(f.created, forms...)
	return nil
}

func (f *fakeFormRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomForm, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.forms == nil {
		return []models.CustomForm{}, nil
	}
	return f.forms, nil
}

type fakeWaiverRepo struct {
	waivers []models.Waiver
	listErr error
	created []*models.Waiver
}

func (f *fakeWaiverRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, waivers []*models.Waiver) error {
	f.created = append(f.created, waivers...)
	return nil
}

func (f *fakeWaiverRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.Waiver, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.waivers == nil {
		return []models.Waiver{}, nil
	}
	return f.waivers, nil
}

type fakeItemRepo struct {
	items   []models.OptionalItem
	listErr error
	created []*models.OptionalItem
}

func (f *fakeItemRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, items []*models.OptionalItem) error {
	f.created = append(f.created, items...)
	return nil
}

func (f *fakeItemRepo) ListAvailableByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	available := make([]models.OptionalItem, 0, len(f.items))
	for _, item := range f.items {
		if item.Available {
			available = append(available, item)
		}
	}
	return available, nil
}

func (f *fakeItemRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

type fakeSubmissionRepo struct {
	submissions map[int]*models.Submission
	nextID      int
	count       int
	countErr    error
	createErr   error

	responses  []*models.SubmissionResponse
	signatures []*models.WaiverSignature
	purchases  []*models.ItemPurchase
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[int]*models.Submission)}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.submissions {
		if existing.RegistrationID == submission.RegistrationID && existing.UserID == submission.UserID {
			return repositories.ErrSubmissionConflict
		}
	}
	f.nextID++
	submission.ID = f.nextID
	stored := *submission
	f.submissions[submission.ID] = &stored
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return nil, repositories.ErrSubmissionNotFound
	}
	copied := *submission
	return &copied, nil
}

func (f *fakeSubmissionRepo) ListByRegistration(ctx context.Context, registrationID int) ([]models.Submission, error) {
	out := make([]models.Submission, 0)
	for _, s := range f.submissions {
		if s.RegistrationID == registrationID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByUser(ctx context.Context, userID int) ([]models.Submission, error) {
	out := make([]models.Submission, 0)
	for _, s := range f.submissions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CountByRegistration(ctx context.Context, registrationID int) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.count > 0 {
		return f.count, nil
	}
	count := 0
	for _, s := range f.submissions {
		if s.RegistrationID == registrationID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) UpdateApprovalStatus(ctx context.Context, id int, status models.ApprovalStatus) error {
	submission, ok := f.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	submission.ApprovalStatus = status
	return nil
}

func (f *fakeSubmissionRepo) CreateResponses(ctx context.Context, exec repositories.SQLExecutor, responses []*models.SubmissionResponse) error {
	f.responses = append(f.responses, responses...)
	return nil
}

func (f *fakeSubmissionRepo) CreateSignatures(ctx context.Context, exec repositories.SQLExecutor, signatures []*models.WaiverSignature) error {
	f.signatures = append(f.signatures, signatures...)
	return nil
}

func (f *fakeSubmissionRepo) CreatePurchases(ctx context.Context, exec repositories.SQLExecutor, purchases []*models.ItemPurchase) error {
	f.purchases = append(f.purchases, purchases...)
	return nil
}

func (f *fakeSubmissionRepo) ListPurchasesBySubmission(ctx context.Context, submissionID int) ([]models.ItemPurchase, error) {
	out := make([]models.ItemPurchase, 0)
	for _, p := range f.purchases {
		if p.SubmissionID == submissionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionConflict   = errors.New("user has already submitted for this registration")
	ErrSubmissionInvalidReg = errors.New("submission references an invalid registration")
	ErrSubmissionInvalidUsr = errors.New("submission references an invalid user")
)

type SubmissionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, submission *models.Submission) error
	GetByID(ctx context.Context, id int) (*models.Submission, error)
	ListByRegistration(ctx context.Context, registrationID int) ([]models.Submission, error)
	ListByUser(ctx context.Context, userID int) ([]models.Submission, error)
	CountByRegistration(ctx context.Context, registrationID int) (int, error)
	UpdateApprovalStatus(ctx context.Context, id int, status models.ApprovalStatus) error

	CreateResponses(ctx context.Context, exec SQLExecutor, responses []*models.SubmissionResponse) error
	CreateSignatures(ctx context.Context, exec SQLExecutor, signatures []*models.WaiverSignature) error
	CreatePurchases(ctx context.Context, exec SQLExecutor, purchases []*models.ItemPurchase) error
	ListPurchasesBySubmission(ctx context.Context, submissionID int) ([]models.ItemPurchase, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSubmissionRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Submission) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_submissions
			(registration_id, user_id, total_cents, payment_status, approval_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submitted_at`

	err := executor.QueryRowContext(ctx, query,
		s.RegistrationID, s.UserID, s.TotalCents, s.PaymentStatus, s.ApprovalStatus,
	).Scan(&s.ID, &s.SubmittedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "registration_submissions_registration_id_user_id_key" {
					return ErrSubmissionConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "registration_submissions_registration_id_fkey":
					return ErrSubmissionInvalidReg
				case "registration_submissions_user_id_fkey":
					return ErrSubmissionInvalidUsr
				}
			}
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

const submissionColumns = `id, registration_id, user_id, total_cents, payment_status, approval_status, submitted_at`

func (r *postgresSubmissionRepository) scanSubmission(rowScanner interface {
	Scan(dest ...interface{}) error
}, s *models.Submission) error {
	return rowScanner.Scan(
		&s.ID, &s.RegistrationID, &s.UserID, &s.TotalCents,
		&s.PaymentStatus, &s.ApprovalStatus, &s.SubmittedAt,
	)
}

func (r *postgresSubmissionRepository) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM registration_submissions WHERE id = $1`

	s := &models.Submission{}
	err := r.scanSubmission(r.db.QueryRowContext(ctx, query, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	return s, nil
}

func (r *postgresSubmissionRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM registration_submissions
		WHERE registration_id = $1
		ORDER BY submitted_at DESC`
	return r.list(ctx, query, registrationID)
}

func (r *postgresSubmissionRepository) ListByUser(ctx context.Context, userID int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM registration_submissions
		WHERE user_id = $1
		ORDER BY submitted_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresSubmissionRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		if scanErr := r.scanSubmission(rows, &s); scanErr != nil {
			return nil, scanErr
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *postgresSubmissionRepository) CountByRegistration(ctx context.Context, registrationID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM registration_submissions WHERE registration_id = $1`
	if err := r.db.QueryRowContext(ctx, query, registrationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (r *postgresSubmissionRepository) UpdateApprovalStatus(ctx context.Context, id int, status models.ApprovalStatus) error {
	query := `UPDATE registration_submissions SET approval_status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update submission approval status: %w", err)
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

func (r *postgresSubmissionRepository) CreateResponses(ctx context.Context, exec SQLExecutor, responses []*models.SubmissionResponse) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_submission_responses
			(submission_id, category, field_id, field_key, label, value)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for _, resp := range responses {
		err := executor.QueryRowContext(ctx, query,
			resp.SubmissionID, resp.Category, resp.FieldID, resp.FieldKey, resp.Label, resp.Value,
		).Scan(&resp.ID)
		if err != nil {
			return fmt.Errorf("failed to create submission response %q: %w", resp.FieldKey, err)
		}
	}
	return nil
}

func (r *postgresSubmissionRepository) CreateSignatures(ctx context.Context, exec SQLExecutor, signatures []*models.WaiverSignature) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_waiver_signatures
			(submission_id, waiver_id, signature, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, signed_at`

	for _, sig := range signatures {
		err := executor.QueryRowContext(ctx, query,
			sig.SubmissionID, sig.WaiverID, sig.Signature, sig.IPAddress,
		).Scan(&sig.ID, &sig.SignedAt)
		if err != nil {
			return fmt.Errorf("failed to create waiver signature for waiver %d: %w", sig.WaiverID, err)
		}
	}
	return nil
}

func (r *postgresSubmissionRepository) CreatePurchases(ctx context.Context, exec SQLExecutor, purchases []*models.ItemPurchase) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_item_purchases
			(submission_id, item_id, quantity, unit_price_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, p := range purchases {
		err := executor.QueryRowContext(ctx, query,
			p.SubmissionID, p.ItemID, p.Quantity, p.UnitPriceCents, p.TotalCents,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to create item purchase for item %d: %w", p.ItemID, err)
		}
	}
	return nil
}

func (r *postgresSubmissionRepository) ListPurchasesBySubmission(ctx context.Context, submissionID int) ([]models.ItemPurchase, error) {
	query := `
		SELECT id, submission_id, item_id, quantity, unit_price_cents, total_cents
		FROM registration_item_purchases
		WHERE submission_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]models.ItemPurchase, 0)
	for rows.Next() {
		var p models.ItemPurchase
		if scanErr := rows.Scan(&p.ID, &p.SubmissionID, &p.ItemID, &p.Quantity, &p.UnitPriceCents, &p.TotalCents); scanErr != nil {
			return nil, scanErr
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var ErrWaiverInvalidReg = errors.New("waiver references an invalid registration")

type WaiverRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, waivers []*models.Waiver) error
	ListByRegistration(ctx context.Context, registrationID int) ([]models.Waiver, error)
}

type postgresWaiverRepository struct {
	db *sql.DB
}

func NewPostgresWaiverRepository(db *sql.DB) WaiverRepository {
	return &postgresWaiverRepository{db: db}
}

func (r *postgresWaiverRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWaiverRepository) CreateBatch(ctx context.Context, exec SQLExecutor, waivers []*models.Waiver) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_waivers (registration_id, title, body, required, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for _, w := range waivers {
		err := executor.QueryRowContext(ctx, query,
			w.RegistrationID, w.Title, w.Body, w.Required, w.SortOrder,
		).Scan(&w.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrWaiverInvalidReg
			}
			return fmt.Errorf("failed to create waiver %q: %w", w.Title, err)
		}
	}
	return nil
}

func (r *postgresWaiverRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.Waiver, error) {
	query := `
		SELECT id, registration_id, title, body, required, sort_order
		FROM registration_waivers
		WHERE registration_id = $1
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	waivers := make([]models.Waiver, 0)
	for rows.Next() {
		var w models.Waiver
		if scanErr := rows.Scan(&w.ID, &w.RegistrationID, &w.Title, &w.Body, &w.Required, &w.SortOrder); scanErr != nil {
			return nil, scanErr
		}
		waivers = append(waivers, w)
	}
	return waivers, rows.Err()
}

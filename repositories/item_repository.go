package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var ErrItemInvalidReg = errors.New("optional item references an invalid registration")

type ItemRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, items []*models.OptionalItem) error
	// ListAvailableByRegistration returns only items currently offered for sale.
	ListAvailableByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error)
	ListByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error)
}

type postgresItemRepository struct {
	db *sql.DB
}

func NewPostgresItemRepository(db *sql.DB) ItemRepository {
	return &postgresItemRepository{db: db}
}

func (r *postgresItemRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresItemRepository) CreateBatch(ctx context.Context, exec SQLExecutor, items []*models.OptionalItem) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_optional_items
			(registration_id, name, description, price_cents, max_quantity, available, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, item := range items {
		err := executor.QueryRowContext(ctx, query,
			item.RegistrationID, item.Name, item.Description, item.PriceCents,
			item.MaxQuantity, item.Available, item.SortOrder,
		).Scan(&item.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrItemInvalidReg
			}
			return fmt.Errorf("failed to create optional item %q: %w", item.Name, err)
		}
	}
	return nil
}

func (r *postgresItemRepository) ListAvailableByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error) {
	return r.list(ctx, registrationID, true)
}

func (r *postgresItemRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.OptionalItem, error) {
	return r.list(ctx, registrationID, false)
}

func (r *postgresItemRepository) list(ctx context.Context, registrationID int, availableOnly bool) ([]models.OptionalItem, error) {
	query := `
		SELECT id, registration_id, name, description, price_cents, max_quantity, available, sort_order
		FROM registration_optional_items
		WHERE registration_id = $1`
	if availableOnly {
		query += ` AND available`
	}
	query += ` ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.OptionalItem, 0)
	for rows.Next() {
		var item models.OptionalItem
		if scanErr := rows.Scan(
			&item.ID, &item.RegistrationID, &item.Name, &item.Description,
			&item.PriceCents, &item.MaxQuantity, &item.Available, &item.SortOrder,
		); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var ErrCustomFieldInvalidReg = errors.New("custom field references an invalid registration")

type CustomFieldRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, fields []*models.CustomField) error
	ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomField, error)
}

type postgresCustomFieldRepository struct {
	db *sql.DB
}

func NewPostgresCustomFieldRepository(db *sql.DB) CustomFieldRepository {
	return &postgresCustomFieldRepository{db: db}
}

func (r *postgresCustomFieldRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCustomFieldRepository) CreateBatch(ctx context.Context, exec SQLExecutor, fields []*models.CustomField) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_custom_fields
			(registration_id, label, type, required, options, placeholder, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, f := range fields {
		err := executor.QueryRowContext(ctx, query,
			f.RegistrationID, f.Label, f.Type, f.Required, pq.Array(f.Options), f.Placeholder, f.SortOrder,
		).Scan(&f.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrCustomFieldInvalidReg
			}
			return fmt.Errorf("failed to create custom field %q: %w", f.Label, err)
		}
	}
	return nil
}

func (r *postgresCustomFieldRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomField, error) {
	query := `
		SELECT id, registration_id, label, type, required, options, placeholder, sort_order
		FROM registration_custom_fields
		WHERE registration_id = $1
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]models.CustomField, 0)
	for rows.Next() {
		var f models.CustomField
		if scanErr := rows.Scan(
			&f.ID, &f.RegistrationID, &f.Label, &f.Type, &f.Required,
			pq.Array(&f.Options), &f.Placeholder, &f.SortOrder,
		); scanErr != nil {
			return nil, scanErr
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var ErrParticipantFieldInvalidReg = errors.New("participant field references an invalid registration")

type ParticipantFieldRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, fields []*models.ParticipantField) error
	ListByRegistration(ctx context.Context, registrationID int) ([]models.ParticipantField, error)
}

type postgresParticipantFieldRepository struct {
	db *sql.DB
}

func NewPostgresParticipantFieldRepository(db *sql.DB) ParticipantFieldRepository {
	return &postgresParticipantFieldRepository{db: db}
}

func (r *postgresParticipantFieldRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantFieldRepository) CreateBatch(ctx context.Context, exec SQLExecutor, fields []*models.ParticipantField) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registration_participant_fields
			(registration_id, field_key, label, type, required, options, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, f := range fields {
		err := executor.QueryRowContext(ctx, query,
			f.RegistrationID, f.FieldKey, f.Label, f.Type, f.Required, pq.Array(f.Options), f.SortOrder,
		).Scan(&f.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrParticipantFieldInvalidReg
			}
			return fmt.Errorf("failed to create participant field %q: %w", f.FieldKey, err)
		}
	}
	return nil
}

func (r *postgresParticipantFieldRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.ParticipantField, error) {
	query := `
		SELECT id, registration_id, field_key, label, type, required, options, sort_order
		FROM registration_participant_fields
		WHERE registration_id = $1
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]models.ParticipantField, 0)
	for rows.Next() {
		var f models.ParticipantField
		if scanErr := rows.Scan(
			&f.ID, &f.RegistrationID, &f.FieldKey, &f.Label, &f.Type, &f.Required,
			pq.Array(&f.Options), &f.SortOrder,
		); scanErr != nil {
			return nil, scanErr
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

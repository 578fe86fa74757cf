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
	ErrRegistrationNotFound     = errors.New("registration not found")
	ErrRegistrationNameConflict = errors.New("registration name conflict for this group")
	ErrRegistrationInvalidGroup = errors.New("invalid group reference")
	ErrRegistrationInvalidUser  = errors.New("invalid creator reference")
)

type ListRegistrationsFilter struct {
	GroupID *int
	Type    *models.RegistrationType
	Status  *models.RegistrationStatus
	Limit   int
	Offset  int
}

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	List(ctx context.Context, filter ListRegistrationsFilter) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `
	id, group_id, creator_id, type, name, sport, start_date, end_date,
	location, description, details, max_participants, fee_cents, status, logo_key, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (
			group_id, creator_id, type, name, sport, start_date, end_date,
			location, description, details, max_participants, fee_cents, status, logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.GroupID, reg.CreatorID, reg.Type, reg.Name, reg.Sport, reg.StartDate, reg.EndDate,
		reg.Location, reg.Description, reg.Details, reg.MaxParticipants, reg.FeeCents, reg.Status, reg.LogoKey,
	).Scan(&reg.ID, &reg.CreatedAt)

	return r.handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.GroupID, &reg.CreatorID, &reg.Type, &reg.Name, &reg.Sport,
		&reg.StartDate, &reg.EndDate, &reg.Location, &reg.Description, &reg.Details,
		&reg.MaxParticipants, &reg.FeeCents, &reg.Status, &reg.LogoKey, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter ListRegistrationsFilter) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.GroupID != nil {
		query += fmt.Sprintf(" AND group_id = $%d", argID)
		args = append(args, *filter.GroupID)
		argID++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(
			&reg.ID, &reg.GroupID, &reg.CreatorID, &reg.Type, &reg.Name, &reg.Sport,
			&reg.StartDate, &reg.EndDate, &reg.Location, &reg.Description, &reg.Details,
			&reg.MaxParticipants, &reg.FeeCents, &reg.Status, &reg.LogoKey, &reg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE registrations SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update registration logo key: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) handleRegistrationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "registrations_group_id_name_key" {
				return ErrRegistrationNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "registrations_group_id_fkey":
				return ErrRegistrationInvalidGroup
			case "registrations_creator_id_fkey":
				return ErrRegistrationInvalidUser
			}
		}
	}
	return err
}

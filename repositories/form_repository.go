package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/scout-hq/scout-system/models"
)

var ErrFormInvalidReg = errors.New("form references an invalid registration")

type FormRepository interface {
	// CreateBatch inserts forms together with their nested fields.
	CreateBatch(ctx context.Context, exec SQLExecutor, forms []*models.CustomForm) error
	// ListByRegistration returns forms ordered by sort_order with Fields populated.
	ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomForm, error)
}

type postgresFormRepository struct {
	db *sql.DB
}

func NewPostgresFormRepository(db *sql.DB) FormRepository {
	return &postgresFormRepository{db: db}
}

func (r *postgresFormRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresFormRepository) CreateBatch(ctx context.Context, exec SQLExecutor, forms []*models.CustomForm) error {
	executor := r.getExecutor(exec)
	formQuery := `
		INSERT INTO registration_forms (registration_id, name, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id`
	fieldQuery := `
		INSERT INTO registration_form_fields
			(form_id, label, type, required, options, placeholder, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, form := range forms {
		err := executor.QueryRowContext(ctx, formQuery, form.RegistrationID, form.Name, form.SortOrder).Scan(&form.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrFormInvalidReg
			}
			return fmt.Errorf("failed to create form %q: %w", form.Name, err)
		}
		for i := range form.Fields {
			f := &form.Fields[i]
			f.FormID = form.ID
			err := executor.QueryRowContext(ctx, fieldQuery,
				f.FormID, f.Label, f.Type, f.Required, pq.Array(f.Options), f.Placeholder, f.SortOrder,
			).Scan(&f.ID)
			if err != nil {
				return fmt.Errorf("failed to create form field %q: %w", f.Label, err)
			}
		}
	}
	return nil
}

func (r *postgresFormRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.CustomForm, error) {
	formQuery := `
		SELECT id, registration_id, name, sort_order
		FROM registration_forms
		WHERE registration_id = $1
		ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, formQuery, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := make([]models.CustomForm, 0)
	formIndex := make(map[int]int)
	for rows.Next() {
		var f models.CustomForm
		if scanErr := rows.Scan(&f.ID, &f.RegistrationID, &f.Name, &f.SortOrder); scanErr != nil {
			return nil, scanErr
		}
		f.Fields = make([]models.FormField, 0)
		formIndex[f.ID] = len(forms)
		forms = append(forms, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return forms, nil
	}

	fieldQuery := `
		SELECT ff.id, ff.form_id, ff.label, ff.type, ff.required, ff.options, ff.placeholder, ff.sort_order
		FROM registration_form_fields ff
		JOIN registration_forms f ON f.id = ff.form_id
		WHERE f.registration_id = $1
		ORDER BY ff.form_id, ff.sort_order, ff.id`

	fieldRows, err := r.db.QueryContext(ctx, fieldQuery, registrationID)
	if err != nil {
		return nil, err
	}
	defer fieldRows.Close()

	for fieldRows.Next() {
		var ff models.FormField
		if scanErr := fieldRows.Scan(
			&ff.ID, &ff.FormID, &ff.Label, &ff.Type, &ff.Required,
			pq.Array(&ff.Options), &ff.Placeholder, &ff.SortOrder,
		); scanErr != nil {
			return nil, scanErr
		}
		if idx, ok := formIndex[ff.FormID]; ok {
			forms[idx].Fields = append(forms[idx].Fields, ff)
		}
	}
	return forms, fieldRows.Err()
}

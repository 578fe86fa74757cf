package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/realtime"
	"github.com/scout-hq/scout-system/repositories"
	"github.com/scout-hq/scout-system/storage"
)

// Section inputs for the creation wizard. The whole configuration is written
// in one transaction together with the registration row.

type ParticipantFieldInput struct {
	FieldKey string           `json:"field_key"`
	Label    string           `json:"label"`
	Type     models.FieldType `json:"type"`
	Required bool             `json:"required"`
	Options  []string         `json:"options"`
}

type FieldInput struct {
	Label       string           `json:"label"`
	Type        models.FieldType `json:"type"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options"`
	Placeholder *string          `json:"placeholder"`
}

type FormInput struct {
	Name   string       `json:"name"`
	Fields []FieldInput `json:"fields"`
}

type WaiverInput struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Required bool   `json:"required"`
}

type ItemInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	MaxQuantity int     `json:"max_quantity"`
	Available   bool    `json:"available"`
}

type CreateRegistrationInput struct {
	GroupID         int                     `json:"group_id"`
	Type            models.RegistrationType `json:"type"`
	Name            string                  `json:"name"`
	Sport           string                  `json:"sport"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	Location        *string                 `json:"location"`
	Description     *string                 `json:"description"`
	Details         *string                 `json:"details"`
	MaxParticipants *int                    `json:"max_participants"`
	FeeCents        int64                   `json:"fee_cents"`

	ParticipantFields []ParticipantFieldInput `json:"participant_fields"`
	Forms             []FormInput             `json:"forms"`
	CustomFields      []FieldInput            `json:"custom_fields"`
	Waivers           []WaiverInput           `json:"waivers"`
	Items             []ItemInput             `json:"items"`
}

type RegistrationService struct {
	tx                   repositories.TxRunner
	registrationRepo     repositories.RegistrationRepository
	groupRepo            repositories.GroupRepository
	participantFieldRepo repositories.ParticipantFieldRepository
	customFieldRepo      repositories.CustomFieldRepository
	formRepo             repositories.FormRepository
	waiverRepo           repositories.WaiverRepository
	itemRepo             repositories.ItemRepository
	uploader             storage.FileUploader
	hub                  *realtime.Hub
	logger               *slog.Logger
}

func NewRegistrationService(
	tx repositories.TxRunner,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	participantFieldRepo repositories.ParticipantFieldRepository,
	customFieldRepo repositories.CustomFieldRepository,
	formRepo repositories.FormRepository,
	waiverRepo repositories.WaiverRepository,
	itemRepo repositories.ItemRepository,
	uploader storage.FileUploader,
	hub *realtime.Hub,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		tx:                   tx,
		registrationRepo:     registrationRepo,
		groupRepo:            groupRepo,
		participantFieldRepo: participantFieldRepo,
		customFieldRepo:      customFieldRepo,
		formRepo:             formRepo,
		waiverRepo:           waiverRepo,
		itemRepo:             itemRepo,
		uploader:             uploader,
		hub:                  hub,
		logger:               logger,
	}
}

func (s *RegistrationService) validateCreateInput(input CreateRegistrationInput) error {
	if input.Name == "" {
		return ErrRegNameRequired
	}
	if !isValidRegistrationType(input.Type) {
		return fmt.Errorf("%w: %q", ErrRegInvalidType, input.Type)
	}
	if err := validateRegistrationDates(input.StartDate, input.EndDate); err != nil {
		return err
	}
	if input.FeeCents < 0 {
		return ErrRegInvalidFee
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		return ErrRegInvalidCapacity
	}
	for _, item := range input.Items {
		if item.PriceCents < 0 {
			return fmt.Errorf("%w: %q", ErrItemInvalidPrice, item.Name)
		}
	}
	return nil
}

// Create writes a registration and its whole configured catalog in one
// transaction. The creator must own the target group or be an admin. New
// registrations start as drafts.
func (s *RegistrationService) Create(ctx context.Context, input CreateRegistrationInput, creatorID int, creatorRole models.UserRole) (*models.Registration, error) {
	if err := s.validateCreateInput(input); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if group.OwnerID != creatorID && creatorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	registration := &models.Registration{
		GroupID:         input.GroupID,
		CreatorID:       creatorID,
		Type:            input.Type,
		Name:            input.Name,
		Sport:           input.Sport,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Location:        input.Location,
		Description:     input.Description,
		Details:         input.Details,
		MaxParticipants: input.MaxParticipants,
		FeeCents:        input.FeeCents,
		Status:          models.StatusDraft,
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.registrationRepo.Create(ctx, exec, registration); err != nil {
			return err
		}

		participantFields := make([]*models.ParticipantField, 0, len(input.ParticipantFields))
		for i, in := range input.ParticipantFields {
			participantFields = append(participantFields, &models.ParticipantField{
				RegistrationID: registration.ID,
				FieldKey:       in.FieldKey,
				Label:          in.Label,
				Type:           in.Type,
				Required:       in.Required,
				Options:        in.Options,
				SortOrder:      i,
			})
		}
		if err := s.participantFieldRepo.CreateBatch(ctx, exec, participantFields); err != nil {
			return err
		}

		forms := make([]*models.CustomForm, 0, len(input.Forms))
		for i, in := range input.Forms {
			form := &models.CustomForm{
				RegistrationID: registration.ID,
				Name:           in.Name,
				SortOrder:      i,
			}
			for j, fin := range in.Fields {
				form.Fields = append(form.Fields, models.FormField{
					Label:       fin.Label,
					Type:        fin.Type,
					Required:    fin.Required,
					Options:     fin.Options,
					Placeholder: fin.Placeholder,
					SortOrder:   j,
				})
			}
			forms = append(forms, form)
		}
		if err := s.formRepo.CreateBatch(ctx, exec, forms); err != nil {
			return err
		}

		customFields := make([]*models.CustomField, 0, len(input.CustomFields))
		for i, in := range input.CustomFields {
			customFields = append(customFields, &models.CustomField{
				RegistrationID: registration.ID,
				Label:          in.Label,
				Type:           in.Type,
				Required:       in.Required,
				Options:        in.Options,
				Placeholder:    in.Placeholder,
				SortOrder:      i,
			})
		}
		if err := s.customFieldRepo.CreateBatch(ctx, exec, customFields); err != nil {
			return err
		}

		waivers := make([]*models.Waiver, 0, len(input.Waivers))
		for i, in := range input.Waivers {
			waivers = append(waivers, &models.Waiver{
				RegistrationID: registration.ID,
				Title:          in.Title,
				Body:           in.Body,
				Required:       in.Required,
				SortOrder:      i,
			})
		}
		if err := s.waiverRepo.CreateBatch(ctx, exec, waivers); err != nil {
			return err
		}

		items := make([]*models.OptionalItem, 0, len(input.Items))
		for i, in := range input.Items {
			items = append(items, &models.OptionalItem{
				RegistrationID: registration.ID,
				Name:           in.Name,
				Description:    in.Description,
				PriceCents:     in.PriceCents,
				MaxQuantity:    in.MaxQuantity,
				Available:      in.Available,
				SortOrder:      i,
			})
		}
		return s.itemRepo.CreateBatch(ctx, exec, items)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNameConflict) {
			return nil, ErrRegistrationNameTaken
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "registration created",
			slog.Int("registration_id", registration.ID),
			slog.Int("group_id", registration.GroupID),
			slog.String("name", registration.Name),
		)
	}

	registration.Group = group
	s.populateLogoURL(registration)
	return registration, nil
}

func (s *RegistrationService) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	if group, gErr := s.groupRepo.GetByID(ctx, registration.GroupID); gErr == nil {
		registration.Group = group
	} else if s.logger != nil {
		s.logger.WarnContext(ctx, "failed to populate registration group",
			slog.Int("registration_id", id), slog.Any("error", gErr))
	}
	s.populateLogoURL(registration)
	return registration, nil
}

func (s *RegistrationService) List(ctx context.Context, filter repositories.ListRegistrationsFilter) ([]models.Registration, error) {
	registrations, err := s.registrationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range registrations {
		s.populateLogoURL(&registrations[i])
	}
	return registrations, nil
}

// UpdateStatus applies a status transition and returns the updated
// registration. Callers propagate the returned value; nothing is mutated in
// place on their copy.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id int, next models.RegistrationStatus, actorID int, actorRole models.UserRole) (*models.Registration, error) {
	switch next {
	case models.StatusDraft, models.StatusActive, models.StatusClosed, models.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrRegInvalidStatus, next)
	}

	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.CreatorID != actorID && actorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if !isValidStatusTransition(registration.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrRegInvalidTransition, registration.Status, next)
	}

	if err := s.registrationRepo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	updated := *registration
	updated.Status = next
	s.populateLogoURL(&updated)

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.RoomForRegistration(id), realtime.Message{
			Type:   realtime.EventRegistrationStatus,
			RoomID: realtime.RoomForRegistration(id),
			Payload: map[string]interface{}{
				"registration_id": id,
				"status":          next,
			},
		})
	}
	return &updated, nil
}

// UploadLogo stores a logo image for the registration and records its key.
func (s *RegistrationService) UploadLogo(ctx context.Context, id int, actorID int, actorRole models.UserRole, contentType string, body io.Reader) (*models.Registration, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrForbiddenOperation)
	}

	registration, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.CreatorID != actorID && actorRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("registrations/%d/logo%s", id, ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload registration logo: %w", err)
	}
	if err := s.registrationRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	updated := *registration
	updated.LogoKey = &key
	s.populateLogoURL(&updated)
	return &updated, nil
}

func (s *RegistrationService) populateLogoURL(registration *models.Registration) {
	if s.uploader == nil || registration.LogoKey == nil || *registration.LogoKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*registration.LogoKey); url != "" {
		registration.LogoURL = &url
	}
}

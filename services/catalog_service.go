package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/repositories"
)

// RegistrationCatalog is everything configured on one registration that the
// wizard needs: fields, forms, waivers and currently available items, each
// ordered by its stored sort order.
type RegistrationCatalog struct {
	Registration      *models.Registration      `json:"registration"`
	ParticipantFields []models.ParticipantField `json:"participant_fields"`
	CustomFields      []models.CustomField      `json:"custom_fields"`
	Forms             []models.CustomForm       `json:"forms"`
	Waivers           []models.Waiver           `json:"waivers"`
	Items             []models.OptionalItem     `json:"items"`
}

// CatalogLoader is the dependency the flow service needs from the catalog side.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, registrationID int) (*RegistrationCatalog, error)
}

type CatalogService struct {
	registrationRepo     repositories.RegistrationRepository
	participantFieldRepo repositories.ParticipantFieldRepository
	customFieldRepo      repositories.CustomFieldRepository
	formRepo             repositories.FormRepository
	waiverRepo           repositories.WaiverRepository
	itemRepo             repositories.ItemRepository
	logger               *slog.Logger
}

func NewCatalogService(
	registrationRepo repositories.RegistrationRepository,
	participantFieldRepo repositories.ParticipantFieldRepository,
	customFieldRepo repositories.CustomFieldRepository,
	formRepo repositories.FormRepository,
	waiverRepo repositories.WaiverRepository,
	itemRepo repositories.ItemRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		registrationRepo:     registrationRepo,
		participantFieldRepo: participantFieldRepo,
		customFieldRepo:      customFieldRepo,
		formRepo:             formRepo,
		waiverRepo:           waiverRepo,
		itemRepo:             itemRepo,
		logger:               logger,
	}
}

// LoadCatalog fetches the registration's configured sections. The registration
// row itself must exist; the five section reads run in parallel and are
// deliberately lenient: a failed read is logged and degrades to an empty
// section, since absence of optional sections is the common case and the
// wizard can proceed with whatever loaded.
func (s *CatalogService) LoadCatalog(ctx context.Context, registrationID int) (*RegistrationCatalog, error) {
	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	catalog := &RegistrationCatalog{
		Registration:      registration,
		ParticipantFields: []models.ParticipantField{},
		CustomFields:      []models.CustomField{},
		Forms:             []models.CustomForm{},
		Waivers:           []models.Waiver{},
		Items:             []models.OptionalItem{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fields, err := s.participantFieldRepo.ListByRegistration(gctx, registrationID)
		if err != nil {
			s.logCategoryError(gctx, "participant_fields", registrationID, err)
			return nil
		}
		catalog.ParticipantFields = fields
		return nil
	})
	g.Go(func() error {
		fields, err := s.customFieldRepo.ListByRegistration(gctx, registrationID)
		if err != nil {
			s.logCategoryError(gctx, "custom_fields", registrationID, err)
			return nil
		}
		catalog.CustomFields = fields
		return nil
	})
	g.Go(func() error {
		forms, err := s.formRepo.ListByRegistration(gctx, registrationID)
		if err != nil {
			s.logCategoryError(gctx, "forms", registrationID, err)
			return nil
		}
		catalog.Forms = forms
		return nil
	})
	g.Go(func() error {
		waivers, err := s.waiverRepo.ListByRegistration(gctx, registrationID)
		if err != nil {
			s.logCategoryError(gctx, "waivers", registrationID, err)
			return nil
		}
		catalog.Waivers = waivers
		return nil
	})
	g.Go(func() error {
		items, err := s.itemRepo.ListAvailableByRegistration(gctx, registrationID)
		if err != nil {
			s.logCategoryError(gctx, "optional_items", registrationID, err)
			return nil
		}
		catalog.Items = items
		return nil
	})

	// Goroutines never return errors, so Wait only synchronizes.
	_ = g.Wait()

	return catalog, nil
}

func (s *CatalogService) logCategoryError(ctx context.Context, category string, registrationID int, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, "catalog category load failed, proceeding without it",
		slog.String("category", category),
		slog.Int("registration_id", registrationID),
		slog.Any("error", err),
	)
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scout-hq/scout-system/models"
)

func newCatalogService(regRepo *fakeRegistrationRepo, pf *fakeParticipantFieldRepo, cf *fakeCustomFieldRepo, forms *fakeFormRepo, waivers *fakeWaiverRepo, items *fakeItemRepo) *CatalogService {
	return NewCatalogService(regRepo, pf, cf, forms, waivers, items, nil)
}

func TestLoadCatalog_MissingRegistrationIsFatal(t *testing.T) {
	svc := newCatalogService(
		newFakeRegistrationRepo(),
		&fakeParticipantFieldRepo{}, &fakeCustomFieldRepo{}, &fakeFormRepo{}, &fakeWaiverRepo{}, &fakeItemRepo{},
	)

	if _, err := svc.LoadCatalog(context.Background(), 42); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestLoadCatalog_FailedSectionDegradesToEmpty(t *testing.T) {
	registration := &models.Registration{ID: 1, Status: models.StatusActive}
	svc := newCatalogService(
		newFakeRegistrationRepo(registration),
		&fakeParticipantFieldRepo{listErr: errors.New("connection reset")},
		&fakeCustomFieldRepo{},
		&fakeFormRepo{forms: []models.CustomForm{{ID: 3, Name: "Medical"}}},
		&fakeWaiverRepo{waivers: []models.Waiver{{ID: 5, Title: "Liability"}}},
		&fakeItemRepo{},
	)

	catalog, err := svc.LoadCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected degraded load to succeed, got %v", err)
	}
	if len(catalog.ParticipantFields) != 0 {
		t.Errorf("expected failed section to be empty, got %d entries", len(catalog.ParticipantFields))
	}
	if len(catalog.Forms) != 1 || len(catalog.Waivers) != 1 {
		t.Errorf("healthy sections must still load: %d forms, %d waivers", len(catalog.Forms), len(catalog.Waivers))
	}
}

func TestLoadCatalog_OnlyAvailableItems(t *testing.T) {
	registration := &models.Registration{ID: 1, Status: models.StatusActive}
	svc := newCatalogService(
		newFakeRegistrationRepo(registration),
		&fakeParticipantFieldRepo{}, &fakeCustomFieldRepo{}, &fakeFormRepo{}, &fakeWaiverRepo{},
		&fakeItemRepo{items: []models.OptionalItem{
			{ID: 1, Name: "Jersey", Available: true},
			{ID: 2, Name: "Discontinued Hat", Available: false},
		}},
	)

	catalog, err := svc.LoadCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(catalog.Items) != 1 || catalog.Items[0].ID != 1 {
		t.Errorf("expected only the available item, got %+v", catalog.Items)
	}
}

func TestLoadCatalog_EmptySectionsAreNonNil(t *testing.T) {
	registration := &models.Registration{ID: 1, Status: models.StatusActive}
	svc := newCatalogService(
		newFakeRegistrationRepo(registration),
		&fakeParticipantFieldRepo{}, &fakeCustomFieldRepo{}, &fakeFormRepo{}, &fakeWaiverRepo{}, &fakeItemRepo{},
	)

	catalog, err := svc.LoadCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if catalog.ParticipantFields == nil || catalog.CustomFields == nil || catalog.Forms == nil ||
		catalog.Waivers == nil || catalog.Items == nil {
		t.Error("catalog sections must never be nil")
	}
}

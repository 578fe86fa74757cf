package services

import (
	"context"
	"errors"
	"strings"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/repositories"
)

type CreateGroupInput struct {
	Name  string `json:"name"`
	Sport string `json:"sport"`
}

type GroupService struct {
	groupRepo repositories.GroupRepository
}

func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) Create(ctx context.Context, input CreateGroupInput, ownerID int) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{
		Name:    name,
		Sport:   strings.TrimSpace(input.Sport),
		OwnerID: ownerID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrGroupNameConflict) {
			return nil, ErrGroupNameConflict
		}
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetByID(ctx context.Context, id int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *GroupService) ListByOwner(ctx context.Context, ownerID int) ([]models.Group, error) {
	return s.groupRepo.ListByOwner(ctx, ownerID)
}

package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-attendance/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("group not found")
	ErrNameRequired = errors.New("name is required")
)

type DBLayer interface {
	CreateGroup(ctx context.Context, group models.EventGroup) error
	GetGroupByID(ctx context.Context, id string) (*models.EventGroup, error)
	ListGroups(ctx context.Context) ([]models.EventGroup, error)
	UpdateGroup(ctx context.Context, group models.EventGroup) error
	DeleteGroup(ctx context.Context, id string) error
}

type GroupService struct {
	DB DBLayer
}

func NewGroupService(db DBLayer) *GroupService {
	return &GroupService{DB: db}
}

func (s *GroupService) CreateGroup(ctx context.Context, req models.GroupRequest) (*models.EventGroup, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	group := models.EventGroup{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.EventGroup, error) {
	group, err := s.DB.GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.EventGroup, error) {
	return s.DB.ListGroups(ctx)
}

func (s *GroupService) UpdateGroup(ctx context.Context, id string, req models.GroupRequest) (*models.EventGroup, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) != "" {
		group.Name = req.Name
	}
	group.Description = req.Description
	if !req.StartDate.IsZero() {
		group.StartDate = req.StartDate
	}
	if !req.EndDate.IsZero() {
		group.EndDate = req.EndDate
	}

	if err := s.DB.UpdateGroup(ctx, *group); err != nil {
		return nil, fmt.Errorf("failed to update group %s: %w", id, err)
	}
	return group, nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteGroup(ctx, id)
}

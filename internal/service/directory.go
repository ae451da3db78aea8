package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository"
)

// DirectoryService administers the user directory and category catalog
// the engine checks existence against.
type DirectoryService struct {
	store repository.Store
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(store repository.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// CreateUser registers a directory entry.
func (s *DirectoryService) CreateUser(ctx context.Context, req model.NewUserRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" {
		return nil, apperr.Validation("user name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}

	user := &model.User{ID: uuid.New().String(), Name: name, Email: email}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns one directory entry.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// ListUsers pages through the directory.
func (s *DirectoryService) ListUsers(ctx context.Context, from, size int) ([]model.User, error) {
	from, size = normalizePage(from, size)
	return s.store.Users().List(ctx, from, size)
}

// DeleteUser removes a directory entry.
func (s *DirectoryService) DeleteUser(ctx context.Context, id string) error {
	return s.store.Users().Delete(ctx, id)
}

// CreateCategory adds a catalog entry.
func (s *DirectoryService) CreateCategory(ctx context.Context, req model.NewCategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	cat := &model.Category{ID: uuid.New().String(), Name: name}
	if err := s.store.Categories().Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// GetCategory returns one catalog entry.
func (s *DirectoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return s.store.Categories().GetByID(ctx, id)
}

// ListCategories pages through the catalog.
func (s *DirectoryService) ListCategories(ctx context.Context, from, size int) ([]model.Category, error) {
	from, size = normalizePage(from, size)
	return s.store.Categories().List(ctx, from, size)
}

// DeleteCategory removes a catalog entry.
func (s *DirectoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.Categories().Delete(ctx, id)
}

package service

import (
	"context"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/repository"
)

// GraderService handles grader account lookups.
type GraderService struct {
	graderRepo *repository.GraderRepository
}

// NewGraderService creates a new GraderService.
func NewGraderService(graderRepo *repository.GraderRepository) *GraderService {
	return &GraderService{graderRepo: graderRepo}
}

// GetByID retrieves a grader by ID.
func (s *GraderService) GetByID(ctx context.Context, id int) (*model.Grader, error) {
	return s.graderRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a grader by email for login.
func (s *GraderService) GetByEmail(ctx context.Context, email string) (*model.Grader, error) {
	return s.graderRepo.GetByEmail(ctx, email)
}

// Create registers a new grader account.
func (s *GraderService) Create(ctx context.Context, g *model.Grader) error {
	return s.graderRepo.Create(ctx, g)
}

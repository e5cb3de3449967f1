package service

import (
	"context"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/repository"
)

// LearnerService handles learner account lookups.
type LearnerService struct {
	learnerRepo *repository.LearnerRepository
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(learnerRepo *repository.LearnerRepository) *LearnerService {
	return &LearnerService{learnerRepo: learnerRepo}
}

// GetByID retrieves a learner by ID.
func (s *LearnerService) GetByID(ctx context.Context, id int) (*model.Learner, error) {
	return s.learnerRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a learner by email for login.
func (s *LearnerService) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	return s.learnerRepo.GetByEmail(ctx, email)
}

// Create registers a new learner account.
func (s *LearnerService) Create(ctx context.Context, l *model.Learner) error {
	return s.learnerRepo.Create(ctx, l)
}

package service

import (
	"context"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/repository/database"
)

// JourneyService exposes the journey lifecycle log to the HTTP layer.
type JourneyService struct {
	repo database.JourneyRepository
}

func NewJourneyService(repo database.JourneyRepository) *JourneyService {
	return &JourneyService{repo: repo}
}

func (s *JourneyService) History(ctx context.Context, ambulanceID string) ([]domain.Journey, error) {
	return s.repo.GetByAmbulance(ctx, ambulanceID)
}

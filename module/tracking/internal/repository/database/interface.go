package database

import (
	"context"
	"time"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

type JourneyRepository interface {
	RecordDispatch(ctx context.Context, j *domain.Journey) error
	RecordArrival(ctx context.Context, ambulanceID, hospitalID string, at time.Time) error
	GetByAmbulance(ctx context.Context, ambulanceID string) ([]domain.Journey, error)
}

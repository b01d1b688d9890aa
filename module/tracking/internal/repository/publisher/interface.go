package publisher

import (
	"context"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.AmbulanceAlert) error
}

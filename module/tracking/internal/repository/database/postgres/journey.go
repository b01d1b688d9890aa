package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/repository/database"
)

var _ database.JourneyRepository = (*JourneyRepo)(nil)

type JourneyRepo struct {
	db *sql.DB
}

func NewJourneyRepo(db *sql.DB) *JourneyRepo {
	return &JourneyRepo{db: db}
}

func (r *JourneyRepo) RecordDispatch(ctx context.Context, j *domain.Journey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ambulance_journeys (ambulance_id, hospital_id, emergency_id, dispatched_at) VALUES ($1, $2, $3, $4)`,
		j.AmbulanceID, j.HospitalID, j.EmergencyID, j.DispatchedAt,
	)
	return err
}

func (r *JourneyRepo) RecordArrival(ctx context.Context, ambulanceID, hospitalID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ambulance_journeys SET arrived_at = $3 WHERE ambulance_id = $1 AND hospital_id = $2 AND arrived_at IS NULL`,
		ambulanceID, hospitalID, at,
	)
	return err
}

func (r *JourneyRepo) GetByAmbulance(ctx context.Context, ambulanceID string) ([]domain.Journey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ambulance_id, hospital_id, emergency_id, dispatched_at, arrived_at FROM ambulance_journeys WHERE ambulance_id = $1 ORDER BY dispatched_at DESC`,
		ambulanceID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Journey
	for rows.Next() {
		var j domain.Journey
		var arrivedAt sql.NullTime
		if err := rows.Scan(&j.AmbulanceID, &j.HospitalID, &j.EmergencyID, &j.DispatchedAt, &arrivedAt); err != nil {
			return nil, err
		}
		if arrivedAt.Valid {
			t := arrivedAt.Time
			j.ArrivedAt = &t
		}
		results = append(results, j)
	}
	return results, rows.Err()
}

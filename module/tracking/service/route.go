package service

import (
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

const (
	defaultPathPoints      = 30
	defaultReturnLegPoints = 10
)

// RouteService derives the renderable tracking picture for one vehicle.
// It is a pure function of its inputs; the tunables exist so tests can
// tighten densities and the arrival threshold without touching callers.
type RouteService struct {
	PathPoints         int
	ReturnLegPoints    int
	ArrivalThresholdKm float64
}

func NewRouteService() *RouteService {
	return &RouteService{
		PathPoints:         defaultPathPoints,
		ReturnLegPoints:    defaultReturnLegPoints,
		ArrivalThresholdKm: domain.DefaultArrivalThresholdKm,
	}
}

// BuildState produces the segment list and aggregate metrics for the
// given phase. origin anchors the to-patient leg (the vehicle position at
// dispatch); the to-hospital leg is anchored at the patient location.
// Degenerate inputs produce empty segments or zero distances, never an
// error.
func (s *RouteService) BuildState(origin, vehicle, patient, hospital domain.GeoPoint, phase domain.RoutePhase) domain.TrackingState {
	var segments []domain.Segment

	switch phase {
	case domain.PhaseToPatient:
		if path, err := domain.InterpolatePath(origin, patient, s.PathPoints); err == nil {
			traversed, remaining := domain.SplitProgress(path, vehicle, patient, s.ArrivalThresholdKm)
			segments = appendSegments(segments, traversed, domain.LegToPatient, domain.Traversed)
			segments = appendSegments(segments, remaining, domain.LegToPatient, domain.Remaining)
		}

	case domain.PhaseToHospital:
		// Once transport begins the patient pickup is complete by
		// definition, so the whole patient leg renders as covered no
		// matter where the vehicle is.
		if returnLeg, err := domain.InterpolatePath(vehicle, patient, s.ReturnLegPoints); err == nil {
			segments = appendSegments(segments, returnLeg, domain.LegToPatient, domain.Traversed)
		}
		if path, err := domain.InterpolatePath(patient, hospital, s.PathPoints); err == nil {
			traversed, remaining := domain.SplitProgress(path, vehicle, hospital, s.ArrivalThresholdKm)
			segments = appendSegments(segments, traversed, domain.LegToHospital, domain.Traversed)
			segments = appendSegments(segments, remaining, domain.LegToHospital, domain.Remaining)
		}

	case domain.PhaseCompleted:
		// no path is computed
	}

	var traversedKm, remainingKm float64
	for _, seg := range segments {
		d := domain.DistanceKm(seg.From, seg.To)
		if seg.Traversal == domain.Traversed {
			traversedKm += d
		} else {
			remainingKm += d
		}
	}

	percent := 0.0
	if total := traversedKm + remainingKm; total > 0 {
		percent = traversedKm / total * 100
	}

	return domain.TrackingState{
		Segments:            segments,
		ProgressPercent:     percent,
		TraversedDistanceKm: traversedKm,
		RemainingDistanceKm: remainingKm,
	}
}

func appendSegments(segments []domain.Segment, path []domain.GeoPoint, leg domain.Leg, traversal domain.Traversal) []domain.Segment {
	for i := 0; i+1 < len(path); i++ {
		seg := domain.Segment{
			From:      path[i],
			To:        path[i+1],
			Leg:       leg,
			Traversal: traversal,
			Color:     domain.RemainingColor,
			ZIndex:    domain.RemainingZIndex,
		}
		if traversal == domain.Traversed {
			seg.Color = domain.TraversedColor
			seg.DashArray = domain.TraversedDashArray
			seg.ZIndex = domain.TraversedZIndex
		}
		segments = append(segments, seg)
	}
	return segments
}

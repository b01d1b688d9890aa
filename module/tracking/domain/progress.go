package domain

// DefaultArrivalThresholdKm is the distance below which a vehicle is
// considered to have reached its destination regardless of the
// nearest-vertex computation (100 m).
const DefaultArrivalThresholdKm = 0.1

// SplitProgress partitions path into the portion already covered by the
// vehicle and the portion still ahead of it. The vehicle is snapped to
// the nearest sampled vertex (first occurrence wins on ties), so precision
// is bounded by the interpolation density chosen by the caller.
//
// Both halves include the boundary vertex. Consumers walk consecutive
// pairs within each half separately, so the shared vertex never yields a
// duplicate segment.
func SplitProgress(path []GeoPoint, vehicle, destination GeoPoint, thresholdKm float64) (traversed, remaining []GeoPoint) {
	if len(path) == 0 {
		return nil, nil
	}

	if DistanceKm(vehicle, destination) < thresholdKm {
		return path, nil
	}

	closest := 0
	best := DistanceKm(path[0], vehicle)
	for i := 1; i < len(path); i++ {
		if d := DistanceKm(path[i], vehicle); d < best {
			best = d
			closest = i
		}
	}

	return path[:closest+1], path[closest:]
}

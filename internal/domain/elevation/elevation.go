// Package elevation turns a route's elevation profile into climbing metrics.
package elevation

import (
	"math"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Grade thresholds in percent.
const (
	climbGradePct = 1.0
	steepGradePct = 5.0
	// majorClimbGainM is the rounded net gain a climb must exceed to be reported.
	majorClimbGainM = 50
	metersPerKm     = 1000.0
)

// Analyze computes climbing metrics for an ordered elevation profile.
// Profiles with fewer than two points, or without a single forward
// segment, yield the flat default (HasProfile false, intensity 0).
func Analyze(points []model.ElevationPoint) model.ElevationMetrics {
	if len(points) < 2 {
		return model.ElevationMetrics{}
	}

	var (
		segments      int
		steepSegments int
		climbingDistM float64
		climbs        []model.Climb
		open          *model.Climb
	)

	closeClimb := func() {
		if open == nil {
			return
		}
		open.GainM = math.Round(open.GainM)
		if open.GainM > majorClimbGainM {
			climbs = append(climbs, *open)
		}
		open = nil
	}

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		distM := (cur.DistanceKm - prev.DistanceKm) * metersPerKm
		if distM <= 0 || math.IsNaN(distM) {
			// Duplicate or out-of-order sample.
			continue
		}
		rise := cur.ElevationM - prev.ElevationM
		grade := rise / distM * 100
		segments++

		if math.Abs(grade) > steepGradePct {
			steepSegments++
		}

		if grade > climbGradePct {
			climbingDistM += distM
			if open == nil {
				open = &model.Climb{StartKm: prev.DistanceKm}
			}
			open.EndKm = cur.DistanceKm
			open.GainM += rise
			continue
		}
		closeClimb()
	}
	closeClimb()

	if segments == 0 {
		return model.ElevationMetrics{}
	}

	totalM := (points[len(points)-1].DistanceKm - points[0].DistanceKm) * metersPerKm
	var ascentPct float64
	if totalM > 0 {
		ascentPct = climbingDistM / totalM * 100
	}
	steepRatio := float64(steepSegments) / float64(segments)

	return model.ElevationMetrics{
		HasProfile:        true,
		ClimbingIntensity: math.Min(steepRatio*2+ascentPct/100, 1),
		AscentPercentage:  ascentPct,
		MajorClimbs:       climbs,
	}
}

// Package timeline expands baseline targets into an hour-by-hour fuel plan.
package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/fuelplan/internal/domain/model"
)

// Caffeine ramp weights relative to one slot share.
const (
	openingSlotWeight = 0.5
	finalSlotWeight   = 1.5
	interiorWeight    = 1.0
)

// Cadence perturbation. The amplitude grows with flavor diversity and is
// capped so a leg never deviates more than maxCadenceAmplitude.
const (
	baseCadenceAmplitude = 0.02
	diversityStep        = 0.005
	maxCadenceAmplitude  = 0.05
)

// Advisory notes.
const (
	NotePreStartBottle = "include pre-start bottle"
	NoteVestPocket     = "check vest pocket stock"
	noteFlavorRotation = "rotate %s flavors"
	noteSeparator      = "; "
)

// Build expands targets into max(ceil(duration), 1) hourly legs.
// The result is a pure function of its arguments.
func Build(t model.BaselineTargets, pref model.Preference) []model.FuelLeg {
	hours := int(math.Ceil(t.DurationHours))
	if hours < 1 {
		hours = 1
	}

	share := t.CaffeineTotal / float64(hours+1)
	amp := cadenceAmplitude(pref.TargetFlavorDiversity)

	legs := make([]model.FuelLeg, hours)
	for h := 0; h < hours; h++ {
		bias := cadenceBias(h, amp)
		legs[h] = model.FuelLeg{
			Hour:       h,
			CarbsG:     math.Round(t.CarbsPerHour * (1 + bias)),
			FluidsMl:   math.Round(t.FluidsPerHour * (1 - bias/2)),
			SodiumMg:   math.Round(t.SodiumPerHour * (1 + bias/2)),
			CaffeineMg: math.Round(share * caffeineWeight(h, hours)),
			Note:       note(h, pref),
		}
	}
	return legs
}

// caffeineWeight ramps caffeine toward the finish. A single-hour plan
// takes the opening weight.
func caffeineWeight(hour, hours int) float64 {
	switch {
	case hour == 0:
		return openingSlotWeight
	case hour == hours-1:
		return finalSlotWeight
	default:
		return interiorWeight
	}
}

func cadenceAmplitude(diversity int) float64 {
	if diversity < 0 {
		diversity = 0
	}
	return math.Min(baseCadenceAmplitude+float64(diversity)*diversityStep, maxCadenceAmplitude)
}

// cadenceBias alternates sign with hour parity: even hours lean high on
// carbs, odd hours lean low.
func cadenceBias(hour int, amp float64) float64 {
	if hour%2 == 0 {
		return amp
	}
	return -amp
}

func note(hour int, pref model.Preference) string {
	var parts []string
	if hour == 0 {
		parts = append(parts, NotePreStartBottle)
	}
	if hour%2 == 0 && len(pref.FavoriteBrands) > 0 {
		brand := pref.FavoriteBrands[(hour/2)%len(pref.FavoriteBrands)]
		parts = append(parts, fmt.Sprintf(noteFlavorRotation, brand))
	}
	if hour == 1 && pref.CarryProfile.PrefersVest {
		parts = append(parts, NoteVestPocket)
	}
	return strings.Join(parts, noteSeparator)
}

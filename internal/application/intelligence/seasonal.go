package intelligence

import (
	"strings"
	"time"
)

// Seasonal multipliers.
const (
	novemberMultiplier = 1.2
	decemberMultiplier = 1.3
	birthdayMultiplier = 1.1
)

// SeasonalFactors breaks a seasonal multiplier into its parts.
type SeasonalFactors struct {
	Month              time.Month `json:"month"`
	MonthMultiplier    float64    `json:"month_multiplier"`
	OccasionMultiplier float64    `json:"occasion_multiplier"`
	Multiplier         float64    `json:"multiplier"`
}

// SeasonalAdjustment computes the factors for occasion at the given date.
// The month is evaluated in UTC.
func SeasonalAdjustment(occasion string, at time.Time) SeasonalFactors {
	f := SeasonalFactors{Month: at.UTC().Month(), MonthMultiplier: 1.0, OccasionMultiplier: 1.0}
	switch f.Month {
	case time.November:
		f.MonthMultiplier = novemberMultiplier
	case time.December:
		f.MonthMultiplier = decemberMultiplier
	}
	if strings.EqualFold(strings.TrimSpace(occasion), "birthday") {
		f.OccasionMultiplier = birthdayMultiplier
	}
	f.Multiplier = f.MonthMultiplier * f.OccasionMultiplier
	return f
}

// SeasonalMultiplier returns the combined multiplier for occasion at the
// given date.
func SeasonalMultiplier(occasion string, at time.Time) float64 {
	return SeasonalAdjustment(occasion, at).Multiplier
}

//Personal.AI order the ending

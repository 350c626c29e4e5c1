package sim

import "math"

type DifficultyInput struct {
	MaxHP         int
	BaselineMaxHP int
	TribePower    int
	Day           int
}

// Difficulty scales monster power from player growth, tribe strength and
// elapsed days. It never drops below 1.
func Difficulty(in DifficultyInput) float64 {
	baseline := in.BaselineMaxHP
	if baseline <= 0 {
		baseline = 1
	}
	hpRatio := float64(in.MaxHP) / float64(baseline)

	tribe := in.TribePower
	if tribe <= 0 {
		tribe = 1
	}
	tribeFactor := math.Max(0, math.Log10(float64(tribe))*TribeLogFactor)

	dayGrowth := math.Pow(DailyGrowth, float64(in.Day))
	return math.Max(1, (hpRatio*HPRatioWeight+tribeFactor)*dayGrowth)
}

// DifficultyOf reads the inputs from a live session.
func DifficultyOf(s *SessionState, t Tuning) float64 {
	return Difficulty(DifficultyInput{
		MaxHP:         s.Player.MaxHP,
		BaselineMaxHP: t.BaseHP,
		TribePower:    TribePower(s.Tribe),
		Day:           s.Kingdom.Day,
	})
}

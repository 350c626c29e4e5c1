package status

import (
	"context"
	"errors"
	"strings"
	"time"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

var ErrInvalidRequest = errors.New("invalid status request")

type UseCase struct {
	StateRepo ports.SessionRepository
	Tuning    sim.Tuning
	Now       func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	state, err := u.StateRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return Response{
		State:           state,
		Difficulty:      sim.DifficultyOf(state, u.Tuning),
		TribePower:      sim.TribePower(state.Tribe),
		EffectiveEP:     state.Player.EffectiveEP(),
		ActionsLeft:     u.Tuning.ActionsPerDay - state.TurnCounter,
		NextRaid:        sim.RaidProfileFor(nextRaidDay(state.Kingdom.Day, u.Tuning.RaidEveryDays)),
		RaidAlertActive: state.RaidAlert.Active(nowFn()),
		LivingEnemies:   state.Entities.CountLiving(sim.KindEnemy),
	}, nil
}

func nextRaidDay(day, every int) int {
	if every <= 0 {
		return day
	}
	return (day/every + 1) * every
}

// Bestiary lists the monster table with derived ranks and specials.
func Bestiary() []BestiaryEntry {
	table := sim.SpeciesTable()
	out := make([]BestiaryEntry, 0, len(table))
	for _, s := range table {
		entry := BestiaryEntry{
			Name:      s.Name,
			Weight:    s.Weight,
			BasePower: s.BasePower,
			Rank:      sim.RankFromPower(s.BasePower).String(),
		}
		if ability, ok := sim.AbilityFor(s.Name); ok {
			a := ability
			entry.Special = &a
		}
		out = append(out, entry)
	}
	return out
}

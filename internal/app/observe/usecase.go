package observe

import (
	"context"
	"errors"
	"strings"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
	"tempest/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid observe request")

const defaultViewRadius = 7

type UseCase struct {
	StateRepo  ports.SessionRepository
	ViewRadius int
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	state, err := u.StateRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		return Response{}, err
	}
	radius := u.ViewRadius
	if radius <= 0 {
		radius = defaultViewRadius
	}
	snapshot := state.Grid.Window(state.PlayerPos, radius)
	return Response{
		Snapshot:     snapshot,
		Entities:     visibleEntities(state.Entities, state.PlayerPos, radius),
		Player:       state.Player,
		Mode:         state.Mode,
		Phase:        state.Phase,
		Day:          state.Kingdom.Day,
		VisualEvents: state.VisualEvents,
		DamageFlash:  state.DamageFlash,
	}, nil
}

func visibleEntities(a *sim.Arena, center world.Point, radius int) []sim.Entity {
	out := []sim.Entity{}
	if a == nil {
		return out
	}
	for _, e := range a.All() {
		if e.Alive() && e.Pos.Chebyshev(center) <= radius {
			out = append(out, e)
		}
	}
	return out
}

package replay

import (
	"context"
	"errors"
	"strings"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return Response{}, ErrInvalidRequest
	}
	events, err := u.Events.ListBySessionID(ctx, req.SessionID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	return Response{Events: events, Summary: summarize(events)}, nil
}

func filterByTimeWindow(events []sim.DomainEvent, from, to int64) []sim.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]sim.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// summarize folds the history into counters. Events come newest first.
func summarize(events []sim.DomainEvent) Summary {
	var s Summary
	for _, evt := range events {
		switch evt.Type {
		case sim.EventDayStarted:
			if d := int(num(evt.Payload["day"])); d > s.LatestDay {
				s.LatestDay = d
			}
		case sim.EventRaidTriggered:
			s.Raids++
		case sim.EventEnemySlain, sim.EventCombatWon:
			s.Kills++
		case sim.EventBuildingDestroyed:
			s.BuildingsLost++
		case sim.EventResourceGathered:
			s.ResourcesGathered++
		case sim.EventOracleFailed:
			s.OracleFailures++
		case sim.EventGameOver:
			s.GameOvers++
		}
	}
	return s
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

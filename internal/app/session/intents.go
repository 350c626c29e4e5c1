package session

import (
	"context"
	"strings"
	"time"

	"tempest/internal/domain/sim"
	"tempest/internal/domain/world"
)

const defaultMissionType = "exploration"

var directions = map[string]world.Point{
	"up":    {X: 0, Y: -1},
	"down":  {X: 0, Y: 1},
	"left":  {X: -1, Y: 0},
	"right": {X: 1, Y: 0},
}

// Move steps the player to an absolute tile or one tile in a direction.
// Walking into a monster opens a combat exchange with the narrator.
func (c *Controller) Move(ctx context.Context, req MoveRequest) (Response, error) {
	dir := strings.ToLower(strings.TrimSpace(req.Direction))
	if dir == "" && (req.X == nil || req.Y == nil) {
		return Response{}, ErrInvalidRequest
	}
	if _, ok := directions[dir]; dir != "" && !ok {
		return Response{}, ErrInvalidRequest
	}
	return c.run(ctx, req.SessionID, "move", func(s *sim.SessionState, now time.Time) (outcome, error) {
		target := s.PlayerPos
		if dir != "" {
			d := directions[dir]
			target = target.Add(d.X, d.Y)
		} else {
			target = world.Point{X: *req.X, Y: *req.Y}
		}

		mv := sim.ResolveMove(s, target, c.rng(), c.Spawner, c.Tuning)
		if !mv.Accepted {
			return outcome{}, reject(mv.Reason)
		}
		c.afterTime(s, mv.Time, now)
		out := outcome{events: mv.Events}
		if mv.GameOver {
			c.logger().Info("game over", "session_id", s.ID, "day", s.Kingdom.Day)
			if c.Metrics != nil {
				c.Metrics.RecordGameOver()
			}
			return out, nil
		}
		if mv.Encounter != nil {
			out.oracle = &oracleCall{context: sim.ContextCombatAction, action: sim.EncounterAction(*mv.Encounter)}
		}
		return out, nil
	})
}

// Command sends free text to the narrator. The context follows the mode.
func (c *Controller) Command(ctx context.Context, req CommandRequest) (Response, error) {
	return c.run(ctx, req.SessionID, "command", func(s *sim.SessionState, now time.Time) (outcome, error) {
		return c.narrate(s, now, sim.CommandContext(s.Mode), req.Text, true)
	})
}

// TownAction sends a settlement-management order. Only valid in town view.
func (c *Controller) TownAction(ctx context.Context, req CommandRequest) (Response, error) {
	return c.run(ctx, req.SessionID, "town", func(s *sim.SessionState, now time.Time) (outcome, error) {
		if s.Playing() && s.Mode != sim.ModeTown {
			return outcome{}, reject(sim.RejectNotInTown)
		}
		return c.narrate(s, now, sim.ContextTown, req.Text, true)
	})
}

// DispatchMission sends a tribe member away and lets the narrator resolve
// what happened.
func (c *Controller) DispatchMission(ctx context.Context, req MissionRequest) (Response, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return Response{}, ErrInvalidRequest
	}
	mission := strings.TrimSpace(req.MissionType)
	if mission == "" {
		mission = defaultMissionType
	}
	return c.run(ctx, req.SessionID, "mission", func(s *sim.SessionState, now time.Time) (outcome, error) {
		member, ok := s.Member(strings.TrimSpace(req.MemberID))
		if s.Playing() && !ok {
			return outcome{}, reject(sim.RejectUnknownAlly)
		}
		return c.narrate(s, now, sim.ContextMission, sim.MissionAction(member, mission), false)
	})
}

func (c *Controller) narrate(s *sim.SessionState, now time.Time, nctx sim.NarrativeContext, text string, echo bool) (outcome, error) {
	text = strings.TrimSpace(text)
	switch {
	case !s.Playing():
		return outcome{}, reject(sim.RejectGameOver)
	case text == "":
		return outcome{}, reject(sim.RejectEmptyAction)
	}
	if echo {
		s.AddMessage(sim.SenderUser, text)
	}

	var out outcome
	if s.Mode != sim.ModeBattle {
		out.events = c.advance(s, now)
		if !s.Playing() {
			return out, nil
		}
	}
	out.oracle = &oracleCall{context: nctx, action: text}
	return out, nil
}

// ToggleTown enters or leaves the town view.
func (c *Controller) ToggleTown(ctx context.Context, sessionID string) (Response, error) {
	return c.run(ctx, sessionID, "toggle_town", func(s *sim.SessionState, _ time.Time) (outcome, error) {
		if !s.Playing() {
			return outcome{}, reject(sim.RejectGameOver)
		}
		evt, ok := s.ToggleTown()
		if !ok {
			return outcome{}, reject(sim.RejectNotOnTown)
		}
		return outcome{events: []sim.DomainEvent{evt}}, nil
	})
}

// Wait lets one unit of time pass without acting.
func (c *Controller) Wait(ctx context.Context, sessionID string) (Response, error) {
	return c.run(ctx, sessionID, "wait", func(s *sim.SessionState, now time.Time) (outcome, error) {
		if !s.Playing() {
			return outcome{}, reject(sim.RejectGameOver)
		}
		return outcome{events: c.advance(s, now)}, nil
	})
}

// Restart resets the player. It is accepted in any phase.
func (c *Controller) Restart(ctx context.Context, sessionID string) (Response, error) {
	return c.run(ctx, sessionID, "restart", func(s *sim.SessionState, _ time.Time) (outcome, error) {
		evt := s.Restart(c.Tuning)
		c.logger().Info("session restarted", "session_id", s.ID, "day", s.Kingdom.Day)
		return outcome{events: []sim.DomainEvent{evt}}, nil
	})
}

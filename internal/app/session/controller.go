package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

// Controller owns the lifecycle of every session. Intents for one session
// are serialized; the narrator call is the only point where the session
// lock is released, and the session refuses intents until it returns.
type Controller struct {
	TxManager ports.TxManager
	Sessions  ports.SessionRepository
	Events    ports.EventRepository
	Oracle    ports.NarrativeOracle
	Metrics   ports.SessionMetrics
	Tuning    sim.Tuning
	Spawner   sim.Spawner
	Rand      sim.Rand
	Now       func() time.Time
	Logger    *slog.Logger

	mu    sync.Mutex
	gates map[string]*gate
}

// gate serializes one session. It lives in the map only while some intent
// for the session is in flight.
type gate struct {
	mu      sync.Mutex
	pending bool
	refs    int
}

type oracleCall struct {
	context sim.NarrativeContext
	action  string
}

// outcome is what an intent produced under the session lock.
type outcome struct {
	events []sim.DomainEvent
	oracle *oracleCall
}

type mutation func(s *sim.SessionState, now time.Time) (outcome, error)

// Seed creates the opening state of a new session. The world is generated
// from its own seed so it can be reproduced.
func (c *Controller) Seed(sessionID string, now time.Time) (*sim.SessionState, []sim.DomainEvent) {
	seed := now.UnixNano()
	s, events := sim.NewSession(sessionID, seed, c.Tuning, rand.New(rand.NewSource(seed)), c.Spawner)
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, sim.Stamp(events, now)
}

func (c *Controller) acquire(sessionID string) *gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gates == nil {
		c.gates = make(map[string]*gate)
	}
	g, ok := c.gates[sessionID]
	if !ok {
		g = &gate{}
		c.gates[sessionID] = g
	}
	g.refs++
	return g
}

func (c *Controller) release(sessionID string, g *gate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g.refs--
	if g.refs == 0 {
		delete(c.gates, sessionID)
	}
}

func (c *Controller) rng() sim.Rand {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Rand == nil {
		c.Rand = NewRand(time.Now().UnixNano())
	}
	return c.Rand
}

func (c *Controller) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Controller) run(ctx context.Context, sessionID, kind string, fn mutation) (Response, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Response{}, ErrInvalidRequest
	}
	g := c.acquire(sessionID)
	defer c.release(sessionID, g)
	g.mu.Lock()

	if g.pending {
		g.mu.Unlock()
		return c.rejected(ctx, sessionID, kind, ReasonOraclePending)
	}

	state, err := c.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		g.mu.Unlock()
		return Response{}, err
	}
	state.ClearTransient()
	now := c.now()

	out, err := fn(state, now)
	if err != nil {
		g.mu.Unlock()
		var rej *RejectedError
		if errors.As(err, &rej) {
			c.recordIntent(kind, false)
			return Response{Reason: rej.Reason, VisualEvents: []string{}, State: state}, nil
		}
		return Response{}, err
	}

	if out.oracle == nil {
		err := c.commit(ctx, state, out.events, now)
		g.mu.Unlock()
		if err != nil {
			return Response{}, err
		}
		c.recordIntent(kind, true)
		return accepted(state, ""), nil
	}

	g.pending = true
	if err := c.commit(ctx, state, out.events, now); err != nil {
		g.pending = false
		g.mu.Unlock()
		return Response{}, err
	}
	req := sim.NewNarrativeRequest(state, out.oracle.context, out.oracle.action)
	g.mu.Unlock()

	delta, oracleErr := c.Oracle.Narrate(ctx, req)

	g.mu.Lock()
	defer func() {
		g.pending = false
		g.mu.Unlock()
	}()

	state, err = c.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	now = c.now()
	var events []sim.DomainEvent
	if oracleErr != nil {
		quota := errors.Is(oracleErr, ports.ErrOracleQuota)
		c.logger().Warn("narrative oracle failed", "session_id", sessionID, "quota", quota, "err", oracleErr)
		if c.Metrics != nil {
			c.Metrics.RecordOracleFailure(quota)
		}
		delta = sim.FallbackDelta(quota)
		events = append(events, sim.DomainEvent{Type: sim.EventOracleFailed, Payload: map[string]any{
			"quota": quota,
			"error": oracleErr.Error(),
		}})
	}
	events = append(events, sim.MergeNarrative(state, delta, c.Tuning)...)
	if evt, won := sim.ResolveCombat(state, out.oracle.context, delta, c.Tuning); won {
		events = append(events, evt)
	}
	events = append(events, c.checkGameOver(state)...)

	if err := c.commit(ctx, state, events, now); err != nil {
		return Response{}, err
	}
	c.recordIntent(kind, true)
	return accepted(state, delta.Narrative), nil
}

func (c *Controller) rejected(ctx context.Context, sessionID, kind string, reason sim.RejectReason) (Response, error) {
	state, err := c.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}
	c.recordIntent(kind, false)
	return Response{Reason: reason, VisualEvents: []string{}, State: state}, nil
}

func accepted(s *sim.SessionState, narrative string) Response {
	visual := s.VisualEvents
	if visual == nil {
		visual = []string{}
	}
	return Response{Accepted: true, Narrative: narrative, VisualEvents: visual, State: s}
}

func (c *Controller) commit(ctx context.Context, s *sim.SessionState, events []sim.DomainEvent, now time.Time) error {
	expected := s.Version
	s.Version++
	s.UpdatedAt = now
	err := c.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.Sessions.SaveWithVersion(txCtx, s, expected); err != nil {
			return err
		}
		if len(events) == 0 || c.Events == nil {
			return nil
		}
		return c.Events.Append(txCtx, s.ID, sim.Stamp(events, now))
	})
	if err != nil {
		s.Version = expected
		if errors.Is(err, ports.ErrConflict) && c.Metrics != nil {
			c.Metrics.RecordConflict()
		}
		return fmt.Errorf("commit session %s: %w", s.ID, err)
	}
	return nil
}

func (c *Controller) recordIntent(kind string, ok bool) {
	if c.Metrics != nil {
		c.Metrics.RecordIntent(kind, ok)
	}
}

// advance runs one unit of time and the hooks that must follow it.
func (c *Controller) advance(s *sim.SessionState, now time.Time) []sim.DomainEvent {
	rep := sim.AdvanceTime(s, c.rng(), c.Spawner, c.Tuning)
	c.afterTime(s, rep, now)
	return append(rep.Events, c.checkGameOver(s)...)
}

func (c *Controller) afterTime(s *sim.SessionState, rep sim.TimeReport, now time.Time) {
	if rep.DayAdvanced {
		c.logger().Info("day advanced", "session_id", s.ID, "day", rep.Day, "spawned", rep.Trickle)
		if dropped := s.Maintain(); dropped > 0 {
			c.logger().Info("entities compacted", "session_id", s.ID, "dropped", dropped)
		}
	}
	if rep.Raid == nil {
		return
	}
	if s.RaidAlert != nil {
		s.RaidAlert.ExpiresAt = now.Add(c.Tuning.RaidAlertFor)
	}
	c.logger().Info("raid triggered",
		"session_id", s.ID,
		"day", rep.Raid.Day,
		"raid", rep.Raid.Profile.Name,
		"spawned", rep.Raid.Spawned,
		"difficulty", rep.Raid.Difficulty,
	)
	if c.Metrics != nil {
		c.Metrics.RecordRaid()
	}
}

func (c *Controller) checkGameOver(s *sim.SessionState) []sim.DomainEvent {
	evt, over := s.CheckGameOver()
	if !over {
		return nil
	}
	c.logger().Info("game over", "session_id", s.ID, "day", s.Kingdom.Day)
	if c.Metrics != nil {
		c.Metrics.RecordGameOver()
	}
	return []sim.DomainEvent{evt}
}

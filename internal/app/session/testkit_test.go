package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
	"tempest/internal/domain/world"
)

type fakeSessionRepo struct {
	mu    sync.Mutex
	blobs map[string][]byte
	saves int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{blobs: map[string][]byte{}}
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*sim.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blobs[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	var s sim.SessionState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *fakeSessionRepo) SaveWithVersion(_ context.Context, s *sim.SessionState, expected int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blobs[s.ID]; ok {
		var cur sim.SessionState
		if err := json.Unmarshal(b, &cur); err != nil {
			return err
		}
		if cur.Version != expected {
			return ports.ErrConflict
		}
	} else if expected != 0 {
		return ports.ErrConflict
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.blobs[s.ID] = b
	r.saves++
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []sim.DomainEvent
}

func (r *fakeEventRepo) Append(_ context.Context, _ string, events []sim.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeEventRepo) ListBySessionID(_ context.Context, _ string, _ int) ([]sim.DomainEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sim.DomainEvent(nil), r.events...), nil
}

func (r *fakeEventRepo) has(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == kind {
			return true
		}
	}
	return false
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOracle struct {
	delta   sim.NarrativeDelta
	err     error
	entered chan struct{}
	release chan struct{}
	calls   []sim.NarrativeRequest
}

func (o *fakeOracle) Narrate(_ context.Context, req sim.NarrativeRequest) (sim.NarrativeDelta, error) {
	o.calls = append(o.calls, req)
	if o.entered != nil {
		o.entered <- struct{}{}
	}
	if o.release != nil {
		<-o.release
	}
	return o.delta, o.err
}

type fakeMetrics struct {
	mu             sync.Mutex
	accepted       int
	rejected       int
	oracleFailures int
	quotaFailures  int
	raids          int
	gameOvers      int
	conflicts      int
}

func (m *fakeMetrics) RecordIntent(_ string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.accepted++
	} else {
		m.rejected++
	}
}

func (m *fakeMetrics) RecordOracleFailure(quota bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oracleFailures++
	if quota {
		m.quotaFailures++
	}
}

func (m *fakeMetrics) RecordRaid()     { m.raids++ }
func (m *fakeMetrics) RecordGameOver() { m.gameOvers++ }
func (m *fakeMetrics) RecordConflict() { m.conflicts++ }

// quietRand never triggers a probabilistic branch.
type quietRand struct{}

func (quietRand) Float64() float64 { return 0.99 }
func (quietRand) Intn(int) int     { return 0 }

func testTuning() sim.Tuning {
	t := sim.DefaultTuning()
	t.Width = 20
	t.Height = 20
	t.Town = world.Point{X: 10, Y: 10}
	t.PlayerStart = world.Point{X: 10, Y: 11}
	t.TownRadius = 1
	t.SafeZone = 5
	t.TreeRatio = 0
	t.MountainRatio = 0
	t.ResourceChance = 0
	t.InitialMonsters = 0
	return t
}

type harness struct {
	ctrl    *Controller
	repo    *fakeSessionRepo
	events  *fakeEventRepo
	oracle  *fakeOracle
	metrics *fakeMetrics
	now     time.Time
}

func newHarness() *harness {
	h := &harness{
		repo:    newFakeSessionRepo(),
		events:  &fakeEventRepo{},
		oracle:  &fakeOracle{delta: sim.NarrativeDelta{Narrative: "The wind howls."}},
		metrics: &fakeMetrics{},
		now:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	tn := testTuning()
	h.ctrl = &Controller{
		TxManager: fakeTxManager{},
		Sessions:  h.repo,
		Events:    h.events,
		Oracle:    h.oracle,
		Metrics:   h.metrics,
		Tuning:    tn,
		Spawner:   sim.NewSpawner(tn),
		Rand:      quietRand{},
		Now:       func() time.Time { return h.now },
	}
	return h
}

// seed stores a fresh session, lets mutate adjust it and returns its id.
func (h *harness) seed(mutate func(s *sim.SessionState)) string {
	s, _ := h.ctrl.Seed("s1", h.now)
	if mutate != nil {
		mutate(s)
	}
	s.Version = 1
	if err := h.repo.SaveWithVersion(context.Background(), s, 0); err != nil {
		panic(err)
	}
	return s.ID
}

func (h *harness) load(id string) *sim.SessionState {
	s, err := h.repo.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return s
}

func enemy(id string, x, y, power int) sim.Entity {
	return sim.Entity{
		ID: id, Kind: sim.KindEnemy, SubType: "ORC", Label: "ORC",
		Pos: world.Point{X: x, Y: y}, Power: power,
		HP: power * 10, MaxHP: power * 10, MP: power * 5, MaxMP: power * 5,
		Rank: sim.RankFromPower(power),
	}
}

func intPtr(v int) *int { return &v }

func gateCount(c *Controller) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.gates)
}

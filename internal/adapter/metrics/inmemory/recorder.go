package inmemory

import (
	"sync"
)

type Snapshot struct {
	IntentTotal     uint64            `json:"intent_total"`
	IntentAccepted  uint64            `json:"intent_accepted"`
	IntentRejected  uint64            `json:"intent_rejected"`
	ByIntent        map[string]uint64 `json:"by_intent"`
	OracleFailures  uint64            `json:"oracle_failures"`
	OracleQuota     uint64            `json:"oracle_quota"`
	Raids           uint64            `json:"raids"`
	GameOvers       uint64            `json:"game_overs"`
	CommitConflicts uint64            `json:"commit_conflicts"`
}

type Recorder struct {
	mu        sync.Mutex
	accepted  uint64
	rejected  uint64
	byIntent  map[string]uint64
	oracle    uint64
	quota     uint64
	raids     uint64
	gameOvers uint64
	conflicts uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byIntent: map[string]uint64{},
	}
}

func (r *Recorder) RecordIntent(kind string, accepted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if accepted {
		r.accepted++
	} else {
		r.rejected++
	}
	r.byIntent[kind]++
}

func (r *Recorder) RecordOracleFailure(quota bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oracle++
	if quota {
		r.quota++
	}
}

func (r *Recorder) RecordRaid() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raids++
}

func (r *Recorder) RecordGameOver() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameOvers++
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		IntentAccepted:  r.accepted,
		IntentRejected:  r.rejected,
		IntentTotal:     r.accepted + r.rejected,
		ByIntent:        make(map[string]uint64, len(r.byIntent)),
		OracleFailures:  r.oracle,
		OracleQuota:     r.quota,
		Raids:           r.raids,
		GameOvers:       r.gameOvers,
		CommitConflicts: r.conflicts,
	}
	for k, v := range r.byIntent {
		out.ByIntent[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

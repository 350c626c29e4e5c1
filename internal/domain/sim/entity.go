package sim

import (
	"encoding/json"

	"tempest/internal/domain/world"
)

type Rand = world.Rand

type EntityKind string

const (
	KindEnemy    EntityKind = "ENEMY"
	KindAlly     EntityKind = "ALLY"
	KindResource EntityKind = "RESOURCE"
	KindNPC      EntityKind = "NPC"
)

type Entity struct {
	ID       string      `json:"id"`
	Kind     EntityKind  `json:"kind"`
	SubType  string      `json:"sub_type"`
	Label    string      `json:"label"`
	Pos      world.Point `json:"pos"`
	Power    int         `json:"power"`
	HP       int         `json:"hp"`
	MaxHP    int         `json:"max_hp"`
	MP       int         `json:"mp"`
	MaxMP    int         `json:"max_mp"`
	Rank     Rank        `json:"rank"`
	Defeated bool        `json:"defeated"`
	Raid     bool        `json:"raid"`
}

func (e Entity) Alive() bool {
	return !e.Defeated
}

// Arena stores entities with stable indexes. Entities are never removed
// during play; Defeated marks them dead and every query skips them.
type Arena struct {
	items []Entity
	index map[string]int
}

func NewArena(entities ...Entity) *Arena {
	a := &Arena{index: make(map[string]int, len(entities))}
	for _, e := range entities {
		a.Add(e)
	}
	return a
}

// Add appends e, or overwrites the entity that already has its id.
func (a *Arena) Add(e Entity) {
	if a.index == nil {
		a.index = map[string]int{}
	}
	if i, ok := a.index[e.ID]; ok {
		a.items[i] = e
		return
	}
	a.index[e.ID] = len(a.items)
	a.items = append(a.items, e)
}

func (a *Arena) Len() int {
	return len(a.items)
}

// At returns the entity stored at index i. The pointer is valid until the
// next Add.
func (a *Arena) At(i int) *Entity {
	return &a.items[i]
}

func (a *Arena) Get(id string) (*Entity, bool) {
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return &a.items[i], true
}

// Occupant returns the first living entity on p.
func (a *Arena) Occupant(p world.Point) (*Entity, bool) {
	for i := range a.items {
		if a.items[i].Alive() && a.items[i].Pos == p {
			return &a.items[i], true
		}
	}
	return nil, false
}

// Living returns copies of every living entity of kind.
func (a *Arena) Living(kind EntityKind) []Entity {
	var out []Entity
	for _, e := range a.items {
		if e.Kind == kind && e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

func (a *Arena) CountLiving(kind EntityKind) int {
	n := 0
	for _, e := range a.items {
		if e.Kind == kind && e.Alive() {
			n++
		}
	}
	return n
}

// All returns a copy of every stored entity, defeated ones included.
func (a *Arena) All() []Entity {
	out := make([]Entity, len(a.items))
	copy(out, a.items)
	return out
}

// Compact drops defeated entities and rebuilds the index. It is a
// maintenance pass and must not run in the middle of a tick.
func (a *Arena) Compact() int {
	kept := a.items[:0]
	for _, e := range a.items {
		if e.Alive() {
			kept = append(kept, e)
		}
	}
	dropped := len(a.items) - len(kept)
	a.items = kept
	a.index = make(map[string]int, len(kept))
	for i, e := range kept {
		a.index[e.ID] = i
	}
	return dropped
}

// Defeated counts the soft-deleted entries a Compact would drop.
func (a *Arena) Defeated() int {
	n := 0
	for _, e := range a.items {
		if !e.Alive() {
			n++
		}
	}
	return n
}

func (a *Arena) MarshalJSON() ([]byte, error) {
	if a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

func (a *Arena) UnmarshalJSON(data []byte) error {
	var items []Entity
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*a = *NewArena(items...)
	return nil
}

// Package offline narrates turns without a network model. Outcomes are a
// pure function of the request so local games and tests are repeatable.
package offline

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"tempest/internal/domain/sim"
)

const (
	combatMPCost    = 100
	townFoodGain    = 10
	townLoyaltyGain = 2
	missionLoot     = 25
	missionInjury   = 5
)

type Narrator struct{}

func New() Narrator {
	return Narrator{}
}

func (Narrator) Narrate(ctx context.Context, req sim.NarrativeRequest) (sim.NarrativeDelta, error) {
	if err := ctx.Err(); err != nil {
		return sim.NarrativeDelta{}, err
	}
	switch {
	case req.Context.Combat():
		return combat(req), nil
	case req.Context == sim.ContextTown:
		return town(req), nil
	case req.Context == sim.ContextMission:
		return mission(req), nil
	default:
		return sim.NarrativeDelta{
			Narrative:    fmt.Sprintf("Day %d. %s The Great Sage notes nothing out of the ordinary.", req.Day, sentence(req.Action)),
			VisualPanels: []string{},
			VisualEvents: []string{},
		}, nil
	}
}

func combat(req sim.NarrativeRequest) sim.NarrativeDelta {
	stats := req.Stats
	stats.MP -= combatMPCost
	outcome := sim.OutcomeVictory
	narrative := fmt.Sprintf("%s Rimuru lunges and Predator swallows the foe whole.", sentence(req.Action))
	if stats.MP < 0 {
		stats.MP = 0
		outcome = sim.OutcomeOngoing
		narrative = fmt.Sprintf("%s Out of magicules, Rimuru can only dodge and wait.", sentence(req.Action))
	}
	return sim.NarrativeDelta{
		Narrative:     narrative,
		VisualPanels:  []string{},
		Stats:         &stats,
		VisualEvents:  []string{fmt.Sprintf("-%d MP", combatMPCost)},
		CombatOutcome: outcome,
	}
}

func town(req sim.NarrativeRequest) sim.NarrativeDelta {
	k := req.Kingdom
	k.Food += townFoodGain
	k.Loyalty = min(k.Loyalty+townLoyaltyGain, 100)
	return sim.NarrativeDelta{
		Narrative:    fmt.Sprintf("%s The villagers get to work under your watch.", sentence(req.Action)),
		VisualPanels: []string{},
		Kingdom:      &k,
		VisualEvents: []string{fmt.Sprintf("+%d Food", townFoodGain)},
		EventSummary: "town work",
	}
}

func mission(req sim.NarrativeRequest) sim.NarrativeDelta {
	k := req.Kingdom
	d := sim.NarrativeDelta{VisualPanels: []string{}, Kingdom: &k}
	if roll(req)%3 == 0 {
		k.Loyalty = max(k.Loyalty-missionInjury, 0)
		d.Narrative = "The mission went badly. Your subordinate limps home empty-handed."
		d.VisualEvents = []string{"MISSION FAILED"}
		return d
	}
	k.Materials += missionLoot
	d.Narrative = "The mission succeeded. Your subordinate returns with supplies."
	d.VisualEvents = []string{fmt.Sprintf("+%d Materials", missionLoot)}
	return d
}

func roll(req sim.NarrativeRequest) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d|%s", req.SessionID, req.Day, req.Action)
	return h.Sum32()
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

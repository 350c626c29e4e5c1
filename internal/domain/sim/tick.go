package sim

import (
	"fmt"
	"math"
)

// TickReport summarises one turn of simulation.
type TickReport struct {
	Damage            int
	SoulHP            int
	SoulMP            int
	Log               []string
	Inflicted         []StatusEffect
	TownDamaged       bool
	DestroyedBuilding string
	Changed           bool
	Events            []DomainEvent
}

// Tick advances the world by one turn: effect decay, enemy AI, town
// consequences and the player commit, in that order.
func Tick(s *SessionState, rng Rand, t Tuning) TickReport {
	var r TickReport

	survivors := decayEffects(s, &r)

	allies := s.Entities.Living(KindAlly)
	for i := 0; i < s.Entities.Len(); i++ {
		e := s.Entities.At(i)
		if e.Kind != KindEnemy || !e.Alive() {
			continue
		}
		resolveEnemy(s, e, allies, rng, t, &r)
	}

	if r.TownDamaged {
		damageTown(s, rng, &r)
	}

	commitPlayer(s, survivors, &r)
	return r
}

func decayEffects(s *SessionState, r *TickReport) []StatusEffect {
	survivors := make([]StatusEffect, 0, len(s.Player.Effects))
	for _, fx := range s.Player.Effects {
		if fx.DamagePerTurn > 0 {
			dot := int(math.Floor(float64(s.Player.MaxHP) * fx.DamagePerTurn))
			r.Damage += dot
			r.Log = append(r.Log, fmt.Sprintf("%s: -%d HP", fx.Name, dot))
		}
		if fx.Duration > 1 {
			fx.Duration--
			survivors = append(survivors, fx)
			continue
		}
		r.Log = append(r.Log, fmt.Sprintf("%s wore off.", fx.Name))
	}
	return survivors
}

func resolveEnemy(s *SessionState, e *Entity, allies []Entity, rng Rand, t Tuning, r *TickReport) {
	distPlayer := e.Pos.Dist(s.PlayerPos)
	distTown := e.Pos.Dist(t.Town)

	var ally *Entity
	for i := range allies {
		if allies[i].Pos.Dist(e.Pos) <= AllyReach {
			ally = &allies[i]
			break
		}
	}

	if ally != nil {
		power := ally.Power
		if power <= 0 {
			power = FallbackAllyPower
		}
		dmg := int(math.Floor(float64(power) * (PowerJitterLow + rng.Float64()*PowerJitterRange)))
		e.HP -= dmg
		r.Log = append(r.Log, fmt.Sprintf("%s hit %s: %d", ally.Label, e.SubType, dmg))
		if e.HP <= 0 {
			e.HP = 0
			e.Defeated = true
			hp := int(math.Floor(float64(e.MaxHP) * SoulShare))
			mp := int(math.Floor(float64(e.MaxMP) * SoulShare))
			r.SoulHP += hp
			r.SoulMP += mp
			r.Log = append(r.Log, fmt.Sprintf("%s killed!", e.SubType))
			r.Events = append(r.Events, newEvent(EventEnemySlain, map[string]any{
				"entity_id": e.ID,
				"species":   e.SubType,
				"by":        ally.Label,
				"soul_hp":   hp,
				"soul_mp":   mp,
			}))
			return
		}
	}

	if distTown <= TownThreatRange && distPlayer > MeleeRange && ally == nil {
		if rng.Float64() < TownThreatChance {
			r.TownDamaged = true
			r.Log = append(r.Log, fmt.Sprintf("%s attacks the village!", e.SubType))
		}
	}

	if distPlayer <= MeleeRange {
		attackPlayer(s, e, rng, r)
		return
	}

	moveEnemy(s, e, distPlayer, rng, t)
}

func attackPlayer(s *SessionState, e *Entity, rng Rand, r *TickReport) {
	roll := rng.Float64()
	high := e.Rank.High()
	if roll > BlockRollAbove && !high {
		r.Log = append(r.Log, fmt.Sprintf("Blocked %s!", e.SubType))
		return
	}
	if high {
		if ability, ok := AbilityFor(e.SubType); ok && rng.Float64() < SpecialChance {
			dmg := int(math.Floor(float64(e.Power) * ability.DamageMult))
			r.Damage += dmg
			line := fmt.Sprintf("%s: %s!", e.SubType, ability.Name)
			if ability.AoE {
				line += " (area)"
			}
			r.Log = append(r.Log, line)
			if ability.Effect != nil {
				fx := *ability.Effect
				fx.ID = fmt.Sprintf("fx-%d-%d-%d", s.Kingdom.Day, s.TurnCounter, len(r.Inflicted))
				r.Inflicted = append(r.Inflicted, fx)
			}
			return
		}
	}
	mult := RankGapMultiplier(e.Rank, s.Player.Rank)
	dmg := int(math.Floor(float64(e.Power) * StandardHitFactor * mult * (PowerJitterLow + rng.Float64()*PowerJitterRange)))
	r.Damage += dmg
	r.Log = append(r.Log, fmt.Sprintf("%s: -%d HP", e.SubType, dmg))
}

func moveEnemy(s *SessionState, e *Entity, distPlayer float64, rng Rand, t Tuning) {
	var dx, dy int
	switch {
	case e.Raid:
		dx, dy = e.Pos.StepToward(t.Town)
	case distPlayer < t.AggroRange:
		if rng.Float64() < ChaseChance {
			dx, dy = e.Pos.StepToward(s.PlayerPos)
		}
	default:
		if rng.Float64() < WanderChance {
			switch rng.Intn(4) {
			case 0:
				dy = -1
			case 1:
				dy = 1
			case 2:
				dx = -1
			default:
				dx = 1
			}
		}
	}
	if dx == 0 && dy == 0 {
		return
	}
	next := e.Pos.Add(dx, dy)
	if !s.Grid.InBounds(next) || s.Grid.At(next).Blocking() || next == s.PlayerPos {
		return
	}
	e.Pos = next
}

func damageTown(s *SessionState, rng Rand, r *TickReport) {
	s.Kingdom.Loyalty = max(0, s.Kingdom.Loyalty-TownLoyaltyLoss)
	payload := map[string]any{"loyalty": s.Kingdom.Loyalty}
	if n := len(s.Kingdom.Buildings); n > 0 && rng.Float64() < BuildingLossOdds {
		idx := rng.Intn(n)
		name := s.Kingdom.Buildings[idx].Name
		s.Kingdom.Buildings = append(s.Kingdom.Buildings[:idx:idx], s.Kingdom.Buildings[idx+1:]...)
		r.DestroyedBuilding = name
		r.Log = append(r.Log, fmt.Sprintf("%s DESTROYED!", name))
		r.Events = append(r.Events, newEvent(EventBuildingDestroyed, map[string]any{"building": name}))
		payload["building_destroyed"] = name
	}
	r.Events = append(r.Events, newEvent(EventTownDamaged, payload))
}

func commitPlayer(s *SessionState, survivors []StatusEffect, r *TickReport) {
	r.Changed = r.Damage > 0 || r.SoulHP > 0 || r.SoulMP > 0 ||
		len(survivors) != len(s.Player.Effects) || len(r.Inflicted) > 0 || len(r.Log) > 0

	s.Player.Effects = append(survivors, r.Inflicted...)
	if !r.Changed {
		return
	}
	s.Player.HP = clamp(s.Player.HP-r.Damage+r.SoulHP, 0, s.Player.MaxHP)
	s.Player.MP = clamp(s.Player.MP+r.SoulMP, 0, s.Player.MaxMP)
	if len(r.Log) > 0 {
		s.VisualEvents = append([]string(nil), r.Log...)
		if r.Damage > 0 {
			s.DamageFlash = true
		}
	}
}

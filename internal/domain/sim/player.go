package sim

type EffectKind string

const (
	EffectBuff   EffectKind = "buff"
	EffectDebuff EffectKind = "debuff"
)

type StatMultiplier struct {
	Stat  string  `json:"stat"`
	Value float64 `json:"value"`
}

type StatusEffect struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Kind          EffectKind      `json:"type"`
	Duration      int             `json:"duration"`
	Description   string          `json:"description"`
	DamagePerTurn float64         `json:"damagePerTurn,omitempty"`
	Multiplier    *StatMultiplier `json:"statMultiplier,omitempty"`
}

type PlayerStats struct {
	HP      int            `json:"hp"`
	MaxHP   int            `json:"maxHp"`
	MP      int            `json:"mp"`
	MaxMP   int            `json:"maxMp"`
	EP      int            `json:"ep"`
	Rank    Rank           `json:"rank"`
	Title   string         `json:"title"`
	Effects []StatusEffect `json:"statusEffects"`
}

// Clamp forces HP and MP into [0, max].
func (p *PlayerStats) Clamp() {
	p.HP = clamp(p.HP, 0, p.MaxHP)
	p.MP = clamp(p.MP, 0, p.MaxMP)
}

// EffectiveEP applies active ep multipliers to the base existence power.
func (p PlayerStats) EffectiveEP() int {
	ep := float64(p.EP)
	for _, e := range p.Effects {
		if e.Multiplier != nil && e.Multiplier.Stat == "ep" {
			ep *= e.Multiplier.Value
		}
	}
	return int(ep)
}

// BaselinePlayer is the starting stat block for a fresh or restarted
// session.
func BaselinePlayer(t Tuning) PlayerStats {
	return PlayerStats{
		HP:      t.BaseHP,
		MaxHP:   t.BaseHP,
		MP:      t.BaseMP,
		MaxMP:   t.BaseMP,
		EP:      t.BaseEP,
		Rank:    RankB,
		Title:   "Slime",
		Effects: []StatusEffect{},
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

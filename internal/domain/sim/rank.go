package sim

import "strings"

// Rank is an ordered capability tier. Higher values outrank lower ones.
type Rank int

const (
	RankF Rank = iota
	RankE
	RankD
	RankC
	RankB
	RankBPlus
	RankA
	RankS
	RankSS
)

var rankNames = [...]string{"F", "E", "D", "C", "B", "B+", "A", "S", "SS"}

func (r Rank) String() string {
	if r < RankF || r > RankSS {
		return rankNames[RankF]
	}
	return rankNames[r]
}

// ParseRank maps a tier label to its rank. Unknown labels are F.
func ParseRank(s string) Rank {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range rankNames {
		if name == s {
			return Rank(i)
		}
	}
	return RankF
}

// High reports whether the rank is A or above. High ranks never get
// blocked and may use special abilities.
func (r Rank) High() bool {
	return r >= RankA
}

func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	*r = ParseRank(string(b))
	return nil
}

// RankFromPower derives a monster tier from its power rating.
func RankFromPower(power int) Rank {
	switch {
	case power >= 100000:
		return RankSS
	case power >= 20000:
		return RankS
	case power >= 10000:
		return RankA
	case power >= 6000:
		return RankBPlus
	case power >= 3000:
		return RankB
	case power >= 1000:
		return RankC
	case power >= 500:
		return RankD
	default:
		return RankE
	}
}

// RankGapMultiplier scales standard melee damage by how far the attacker
// outranks the defender.
func RankGapMultiplier(attacker, defender Rank) float64 {
	gap := int(attacker) - int(defender)
	switch {
	case gap > 0:
		return 1 + float64(gap)*RankGapStep
	case gap < -1:
		return OutrankedDamageMult
	default:
		return 1
	}
}

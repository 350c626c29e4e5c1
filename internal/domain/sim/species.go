package sim

type Species struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	BasePower int     `json:"base_power"`
}

const (
	FallbackSpecies   = "GOBLIN"
	FallbackBasePower = 50
)

// speciesTable is ordered; weighted draws walk it front to back.
var speciesTable = []Species{
	{Name: "SLIME", Weight: 20, BasePower: 20},
	{Name: "GOBLIN", Weight: 25, BasePower: 30},
	{Name: "GIANT ANT", Weight: 15, BasePower: 50},
	{Name: "GIANT BAT", Weight: 15, BasePower: 40},
	{Name: "DIREWOLF", Weight: 15, BasePower: 120},
	{Name: "BLACK SPIDER", Weight: 10, BasePower: 150},
	{Name: "LIZARDMAN", Weight: 10, BasePower: 180},
	{Name: "ARMY WASP", Weight: 8, BasePower: 250},
	{Name: "ORC", Weight: 10, BasePower: 300},
	{Name: "ARMORSAURUS", Weight: 5, BasePower: 400},
	{Name: "ARMORED BEETLE", Weight: 5, BasePower: 450},
	{Name: "OGRE", Weight: 4, BasePower: 900},
	{Name: "CRASH GRIZZLY", Weight: 4, BasePower: 700},
	{Name: "TREANT", Weight: 3, BasePower: 600},
	{Name: "EVIL CENTIPEDE", Weight: 3, BasePower: 1100},
	{Name: "TEMPEST SERPENT", Weight: 3, BasePower: 1400},
	{Name: "KNIGHT SPIDER", Weight: 3, BasePower: 1200},
	{Name: "MEGALODON", Weight: 2, BasePower: 2500},
	{Name: "GREATER DEMON", Weight: 1, BasePower: 6000},
	{Name: "ELEMENTAL", Weight: 1, BasePower: 4000},
	{Name: "MAJIN", Weight: 2, BasePower: 8000},
	{Name: "IFRIT", Weight: 0.5, BasePower: 9000},
	{Name: "SKY DRAGON", Weight: 0.5, BasePower: 15000},
	{Name: "CHARYBDIS SCALE", Weight: 0.5, BasePower: 12000},
	{Name: "ARCH DEMON", Weight: 0.2, BasePower: 20000},
	{Name: "DEMON LORD SEED", Weight: 0.1, BasePower: 50000},
}

// SpeciesTable returns a copy of the bestiary in draw order.
func SpeciesTable() []Species {
	out := make([]Species, len(speciesTable))
	copy(out, speciesTable)
	return out
}

func LookupSpecies(name string) (Species, bool) {
	for _, s := range speciesTable {
		if s.Name == name {
			return s, true
		}
	}
	return Species{}, false
}

// BasePowerOf returns the species base power, or the fallback for unknown
// names.
func BasePowerOf(name string) int {
	if s, ok := LookupSpecies(name); ok {
		return s.BasePower
	}
	return FallbackBasePower
}

// drawSpecies picks a species by weight.
func drawSpecies(rng Rand) string {
	total := 0.0
	for _, s := range speciesTable {
		total += s.Weight
	}
	roll := rng.Float64() * total
	for _, s := range speciesTable {
		roll -= s.Weight
		if roll <= 0 {
			return s.Name
		}
	}
	return FallbackSpecies
}

type SpecialAbility struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	DamageMult  float64       `json:"damage_mult"`
	AoE         bool          `json:"aoe"`
	Effect      *StatusEffect `json:"effect,omitempty"`
}

var specialAbilities = map[string]SpecialAbility{
	"TEMPEST SERPENT": {
		Name:        "Poison Mist",
		Description: "Blankets the area in corrosive venom.",
		DamageMult:  1.2,
		AoE:         true,
		Effect:      &StatusEffect{Name: "Poison", Kind: EffectDebuff, Duration: 5, Description: "Loses 5% HP per turn", DamagePerTurn: 0.05},
	},
	"EVIL CENTIPEDE": {
		Name:        "Paralyzing Breath",
		Description: "A gas that stiffens every muscle.",
		DamageMult:  1.0,
		Effect:      &StatusEffect{Name: "Paralysis", Kind: EffectDebuff, Duration: 3, Description: "EP halved", Multiplier: &StatMultiplier{Stat: "ep", Value: 0.5}},
	},
	"OGRE": {
		Name:        "Seismic Slam",
		Description: "Shatters the ground all around.",
		DamageMult:  1.5,
		AoE:         true,
	},
	"ELEMENTAL": {
		Name:        "Hellflare",
		Description: "A dome of black flame that burns everything inside.",
		DamageMult:  2.5,
		AoE:         true,
		Effect:      &StatusEffect{Name: "Burn", Kind: EffectDebuff, Duration: 3, Description: "Heavy damage per turn", DamagePerTurn: 0.08},
	},
	"GREATER DEMON": {
		Name:        "Dark Void",
		Description: "Black magic that drains life.",
		DamageMult:  2.0,
		Effect:      &StatusEffect{Name: "Fear", Kind: EffectDebuff, Duration: 4, Description: "Defense drastically reduced"},
	},
	"ARCH DEMON": {
		Name:        "Nuclear Magic",
		Description: "Mass destruction magic.",
		DamageMult:  4.0,
		AoE:         true,
		Effect:      &StatusEffect{Name: "Magic Radiation", Kind: EffectDebuff, Duration: 5, Description: "HP falls rapidly"},
	},
	"SKY DRAGON": {
		Name:        "Thunder Breath",
		Description: "A breath of pure lightning.",
		DamageMult:  3.0,
		AoE:         true,
		Effect:      &StatusEffect{Name: "Electrocuted", Kind: EffectDebuff, Duration: 2, Description: "Fully paralyzed"},
	},
}

// AbilityFor returns the special ability of a species, if it has one.
func AbilityFor(species string) (SpecialAbility, bool) {
	a, ok := specialAbilities[species]
	return a, ok
}

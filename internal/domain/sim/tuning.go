package sim

import (
	"time"

	"tempest/internal/domain/world"
)

const (
	MeleeRange        = 1.5
	AllyReach         = 1.5
	TownThreatRange   = 3.0
	TownThreatChance  = 0.2
	BlockRollAbove    = 0.8
	SpecialChance     = 0.3
	StandardHitFactor = 0.3

	RankGapStep         = 0.5
	OutrankedDamageMult = 0.1

	ChaseChance  = 0.6
	WanderChance = 0.2

	SoulShare         = 0.1
	VictoryHealShare  = 0.2
	TownLoyaltyLoss   = 5
	BuildingLossOdds  = 0.1
	ResourceMaterials = 10
	FallbackAllyPower = 50

	PlacementAttempts = 50
	SafeZoneRetryCap  = 10000

	HPRatioWeight    = 0.5
	TribeLogFactor   = 3.0
	DailyGrowth      = 1.05
	PowerJitterLow   = 0.8
	PowerJitterRange = 0.4

	MaxMessages = 200

	// CompactDefeatedAbove is how many soft-deleted entities a session may
	// carry before the day-boundary maintenance pass drops them.
	CompactDefeatedAbove = 256
)

// Tuning holds the settings a deployment may override from a YAML file.
type Tuning struct {
	Width          int               `yaml:"width"`
	Height         int               `yaml:"height"`
	Town           world.Point       `yaml:"town"`
	PlayerStart    world.Point       `yaml:"player_start"`
	TownRadius     int               `yaml:"town_radius"`
	TreeRatio      float64           `yaml:"tree_ratio"`
	MountainRatio  float64           `yaml:"mountain_ratio"`
	ResourceChance float64           `yaml:"resource_chance"`
	TerrainMode    world.TerrainMode `yaml:"terrain_mode"`

	ActionsPerDay   int     `yaml:"actions_per_day"`
	AggroRange      float64 `yaml:"aggro_range"`
	SafeZone        float64 `yaml:"safe_zone"`
	InitialMonsters int     `yaml:"initial_monsters"`
	DailyTrickle    int     `yaml:"daily_trickle"`
	RaidEveryDays   int     `yaml:"raid_every_days"`
	AllyRingRadius  float64 `yaml:"ally_ring_radius"`

	BaseHP int `yaml:"base_hp"`
	BaseMP int `yaml:"base_mp"`
	BaseEP int `yaml:"base_ep"`

	RaidAlertFor    time.Duration `yaml:"raid_alert_for"`
	VictoryKeywords []string      `yaml:"victory_keywords"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Width:          100,
		Height:         100,
		Town:           world.Point{X: 50, Y: 50},
		PlayerStart:    world.Point{X: 50, Y: 51},
		TownRadius:     3,
		TreeRatio:      0.10,
		MountainRatio:  0.05,
		ResourceChance: 0.015,
		TerrainMode:    world.TerrainUniform,

		ActionsPerDay:   20,
		AggroRange:      5,
		SafeZone:        15,
		InitialMonsters: 60,
		DailyTrickle:    6,
		RaidEveryDays:   3,
		AllyRingRadius:  3,

		BaseHP: 5000,
		BaseMP: 10000,
		BaseEP: 20000,

		RaidAlertFor:    5 * time.Second,
		VictoryKeywords: []string{"victory", "defeated", "slain", "vanquished", "venceu", "derrotou"},
	}
}

// TerrainConfig projects the tuning onto the terrain generator.
func (t Tuning) TerrainConfig(seed int64) world.TerrainConfig {
	return world.TerrainConfig{
		Width:          t.Width,
		Height:         t.Height,
		Town:           t.Town,
		TownRadius:     t.TownRadius,
		TreeRatio:      t.TreeRatio,
		MountainRatio:  t.MountainRatio,
		ResourceChance: t.ResourceChance,
		Mode:           t.TerrainMode,
		Seed:           seed,
	}
}

package sim

type BuildingType string

const (
	BuildingHousing    BuildingType = "Housing"
	BuildingDefense    BuildingType = "Defense"
	BuildingProduction BuildingType = "Production"
	BuildingResearch   BuildingType = "Research"
)

type Building struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Level       int          `json:"level"`
	Description string       `json:"description"`
	Type        BuildingType `json:"type"`
}

type Faction struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Relation    string `json:"relation"`
	Strength    int    `json:"strength"`
	Description string `json:"description,omitempty"`
}

type Kingdom struct {
	Food       int        `json:"food"`
	Materials  int        `json:"materials"`
	Loyalty    int        `json:"loyalty"`
	Population int        `json:"population"`
	TechLevel  string     `json:"techLevel"`
	Day        int        `json:"day"`
	Buildings  []Building `json:"buildings"`
	Factions   []Faction  `json:"factions"`
}

func InitialKingdom() Kingdom {
	return Kingdom{
		Food:       100,
		Materials:  50,
		Loyalty:    100,
		Population: 1,
		TechLevel:  "Primitive",
		Day:        1,
		Buildings:  []Building{},
		Factions:   []Faction{},
	}
}

type Job string

const (
	JobGuard      Job = "Guard"
	JobBuilder    Job = "Builder"
	JobHunter     Job = "Hunter"
	JobResearcher Job = "Researcher"
	JobBlacksmith Job = "Blacksmith"
	JobChef       Job = "Chef"
	JobMedic      Job = "Medic"
	JobIdle       Job = "Idle"
	JobTraitor    Job = "Traitor"
)

type TribeMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Race        string `json:"race"`
	Job         Job    `json:"job"`
	Power       int    `json:"power"`
	Description string `json:"description"`
}

// Loyal reports whether the member still serves the settlement.
func (m TribeMember) Loyal() bool {
	return m.Job != JobTraitor
}

// TribePower sums the power of loyal members.
func TribePower(members []TribeMember) int {
	total := 0
	for _, m := range members {
		if m.Loyal() {
			total += m.Power
		}
	}
	return total
}

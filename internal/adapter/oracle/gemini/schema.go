package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

var (
	statsRequired    = []string{"hp", "maxHp", "mp", "maxMp", "ep", "rank", "title"}
	kingdomRequired  = []string{"food", "materials", "loyalty", "population", "techLevel", "buildings", "factions"}
	buildingRequired = []string{"id", "name", "level", "description", "type"}
	factionRequired  = []string{"name", "type", "relation", "strength"}
	memberRequired   = []string{"id", "name", "race", "job", "power", "description"}
	mapRequired      = []string{"x", "y", "tileType"}
	turnRequired     = []string{"narrative", "statsUpdate", "kingdomUpdate", "tribeUpdates", "visualPanels", "visualEvents"}
)

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
func num() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }

func enum(values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: values}
}

func arrayOf(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// responseSchema is the turn shape the model is constrained to.
func responseSchema() *genai.Schema {
	return object(turnRequired, map[string]*genai.Schema{
		"narrative":    str(),
		"visualPanels": arrayOf(str()),
		"statsUpdate": object(statsRequired, map[string]*genai.Schema{
			"hp": num(), "maxHp": num(), "mp": num(), "maxMp": num(), "ep": num(),
			"rank": str(), "title": str(),
		}),
		"kingdomUpdate": object(kingdomRequired, map[string]*genai.Schema{
			"food": num(), "materials": num(), "loyalty": num(), "population": num(),
			"techLevel": str(),
			"buildings": arrayOf(object(buildingRequired, map[string]*genai.Schema{
				"id": str(), "name": str(), "level": num(), "description": str(),
				"type": enum("Housing", "Defense", "Production", "Research"),
			})),
			"factions": arrayOf(object(factionRequired, map[string]*genai.Schema{
				"name": str(), "type": str(), "relation": str(), "strength": num(), "description": str(),
			})),
		}),
		"tribeUpdates": arrayOf(object(memberRequired, map[string]*genai.Schema{
			"id": str(), "name": str(), "race": str(),
			"job": enum("Guard", "Builder", "Hunter", "Researcher", "Blacksmith", "Chef", "Medic", "Idle", "Traitor"),
			"power": num(), "description": str(),
		})),
		"visualEvents": arrayOf(str()),
		"mapUpdates": arrayOf(object(mapRequired, map[string]*genai.Schema{
			"x": num(), "y": num(),
			"tileType": enum("GRASS", "TREE", "MOUNTAIN", "WATER", "TOWN"),
		})),
		"eventSummary":  str(),
		"combatOutcome": enum("victory", "defeat", "ongoing"),
	})
}

// checkRequired rejects replies whose present sections miss fields. A
// partial stats or kingdom block would otherwise zero the missing values
// on merge.
func checkRequired(raw []byte) error {
	var turn map[string]json.RawMessage
	if err := json.Unmarshal(raw, &turn); err != nil {
		return err
	}
	if err := checkObject("statsUpdate", turn["statsUpdate"], statsRequired); err != nil {
		return err
	}
	if body, ok := turn["kingdomUpdate"]; ok && !isNull(body) {
		if err := checkObject("kingdomUpdate", body, kingdomRequired); err != nil {
			return err
		}
		var k struct {
			Buildings []json.RawMessage `json:"buildings"`
			Factions  []json.RawMessage `json:"factions"`
		}
		if err := json.Unmarshal(body, &k); err != nil {
			return err
		}
		if err := checkEach("kingdomUpdate.buildings", k.Buildings, buildingRequired); err != nil {
			return err
		}
		if err := checkEach("kingdomUpdate.factions", k.Factions, factionRequired); err != nil {
			return err
		}
	}
	if body, ok := turn["tribeUpdates"]; ok && !isNull(body) {
		var members []json.RawMessage
		if err := json.Unmarshal(body, &members); err != nil {
			return err
		}
		if err := checkEach("tribeUpdates", members, memberRequired); err != nil {
			return err
		}
	}
	if body, ok := turn["mapUpdates"]; ok && !isNull(body) {
		var updates []json.RawMessage
		if err := json.Unmarshal(body, &updates); err != nil {
			return err
		}
		if err := checkEach("mapUpdates", updates, mapRequired); err != nil {
			return err
		}
	}
	return nil
}

func checkEach(name string, items []json.RawMessage, required []string) error {
	for i, item := range items {
		if err := checkObject(fmt.Sprintf("%s[%d]", name, i), item, required); err != nil {
			return err
		}
	}
	return nil
}

// checkObject passes absent or null sections; present ones must be complete.
func checkObject(name string, body json.RawMessage, required []string) error {
	if len(body) == 0 || isNull(body) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	for _, key := range required {
		if v, ok := fields[key]; !ok || isNull(v) {
			return fmt.Errorf("%s: missing %q", name, key)
		}
	}
	return nil
}

func isNull(body json.RawMessage) bool {
	return string(body) == "null"
}

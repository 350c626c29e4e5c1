package sim

import "fmt"

type RaidProfile struct {
	FromDay int    `json:"from_day"`
	Species string `json:"species"`
	Count   int    `json:"count"`
	Name    string `json:"name"`
}

// raidProfiles is ordered by FromDay. Later rows override earlier ones.
var raidProfiles = []RaidProfile{
	{FromDay: 0, Species: "DIREWOLF", Count: 6, Name: "Wolf Pack"},
	{FromDay: 6, Species: "OGRE", Count: 4, Name: "Ogre Mercenaries"},
	{FromDay: 12, Species: "ORC", Count: 12, Name: "Orc Battalion"},
	{FromDay: 18, Species: "KNIGHT SPIDER", Count: 8, Name: "Spider Swarm"},
	{FromDay: 24, Species: "MAJIN", Count: 2, Name: "Calamity"},
	{FromDay: 30, Species: "SKY DRAGON", Count: 1, Name: "Sky Dragon"},
}

// RaidProfileFor returns the last profile whose threshold day has passed.
func RaidProfileFor(day int) RaidProfile {
	profile := raidProfiles[0]
	for _, p := range raidProfiles {
		if day >= p.FromDay {
			profile = p
		}
	}
	return profile
}

type RaidReport struct {
	Profile    RaidProfile
	Day        int
	Difficulty float64
	Spawned    int
}

type TimeReport struct {
	Tick        TickReport
	DayAdvanced bool
	Day         int
	Trickle     int
	Raid        *RaidReport
	Events      []DomainEvent
}

// AdvanceTime counts one action, runs a tick and rolls the calendar when
// the day's actions are used up.
func AdvanceTime(s *SessionState, rng Rand, sp Spawner, t Tuning) TimeReport {
	s.TurnCounter++
	tick := Tick(s, rng, t)
	rep := TimeReport{Tick: tick, Day: s.Kingdom.Day, Events: tick.Events}
	if s.TurnCounter < t.ActionsPerDay {
		return rep
	}

	s.TurnCounter = 0
	s.Kingdom.Day++
	day := s.Kingdom.Day
	rep.DayAdvanced = true
	rep.Day = day
	s.AddMessage(SenderSystem, fmt.Sprintf("Day %d.", day))

	trickle := sp.Spawn(rng, s.Grid, t.DailyTrickle, false, DifficultyOf(s, t))
	for _, e := range trickle {
		s.Entities.Add(e)
	}
	rep.Trickle = len(trickle)
	rep.Events = append(rep.Events, newEvent(EventDayStarted, map[string]any{
		"day":     day,
		"spawned": len(trickle),
	}))

	if t.RaidEveryDays > 0 && day%t.RaidEveryDays == 0 {
		raid := TriggerRaid(s, rng, sp, t)
		rep.Raid = &raid
		rep.Events = append(rep.Events, newEvent(EventRaidTriggered, map[string]any{
			"day":        day,
			"name":       raid.Profile.Name,
			"species":    raid.Profile.Species,
			"spawned":    raid.Spawned,
			"difficulty": raid.Difficulty,
		}))
	}
	return rep
}

// TriggerRaid spawns the wave for the current day at the map edges. The
// spawner's species roll is replaced by the profile species; its power and
// placement are kept.
func TriggerRaid(s *SessionState, rng Rand, sp Spawner, t Tuning) RaidReport {
	day := s.Kingdom.Day
	profile := RaidProfileFor(day)
	difficulty := DifficultyOf(s, t)

	wave := sp.Spawn(rng, s.Grid, profile.Count, true, difficulty)
	for _, e := range wave {
		e.SubType = profile.Species
		e.Label = "RAID " + profile.Species
		e.Raid = true
		s.Entities.Add(e)
	}

	s.RaidAlert = &RaidAlert{
		Name:       profile.Name,
		Species:    profile.Species,
		Count:      len(wave),
		Day:        day,
		Multiplier: difficulty,
	}
	s.VisualEvents = []string{
		fmt.Sprintf("RAID: %s!", profile.Name),
		fmt.Sprintf("POWER x%.1f", difficulty),
	}
	s.AddMessage(SenderSystem, fmt.Sprintf("WAR ALERT: %s (x%.1f power) spotted marching on the village! Prepare yourself!", profile.Name, difficulty))
	s.Mode = ModeBattle

	return RaidReport{Profile: profile, Day: day, Difficulty: difficulty, Spawned: len(wave)}
}

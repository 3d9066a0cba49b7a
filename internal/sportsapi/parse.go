package sportsapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Stats holds normalized per-match statistics. Fields default to zero
// except possession, which defaults to an even split.
type Stats struct {
	ShotsHome            float64 `json:"shots_home"`
	ShotsAway            float64 `json:"shots_away"`
	ShotsOnTargetHome    float64 `json:"shots_on_target_home"`
	ShotsOnTargetAway    float64 `json:"shots_on_target_away"`
	AttacksHome          float64 `json:"attacks_home"`
	AttacksAway          float64 `json:"attacks_away"`
	DangerousAttacksHome float64 `json:"dangerous_attacks_home"`
	DangerousAttacksAway float64 `json:"dangerous_attacks_away"`
	PossessionHome       float64 `json:"possession_home"`
	PossessionAway       float64 `json:"possession_away"`
	CornersHome          float64 `json:"corners_home"`
	CornersAway          float64 `json:"corners_away"`
	YellowCardsHome      float64 `json:"yellow_cards_home"`
	YellowCardsAway      float64 `json:"yellow_cards_away"`
	RedCardsHome         float64 `json:"red_cards_home"`
	RedCardsAway         float64 `json:"red_cards_away"`
}

// Map returns the stats as a generic map, for JSONB storage and for the
// strategy trigger-metrics payload.
func (s Stats) Map() map[string]any {
	return map[string]any{
		"shots_home":             s.ShotsHome,
		"shots_away":             s.ShotsAway,
		"shots_on_target_home":   s.ShotsOnTargetHome,
		"shots_on_target_away":   s.ShotsOnTargetAway,
		"attacks_home":           s.AttacksHome,
		"attacks_away":           s.AttacksAway,
		"dangerous_attacks_home": s.DangerousAttacksHome,
		"dangerous_attacks_away": s.DangerousAttacksAway,
		"possession_home":        s.PossessionHome,
		"possession_away":        s.PossessionAway,
		"corners_home":           s.CornersHome,
		"corners_away":           s.CornersAway,
		"yellow_cards_home":      s.YellowCardsHome,
		"yellow_cards_away":      s.YellowCardsAway,
		"red_cards_home":         s.RedCardsHome,
		"red_cards_away":         s.RedCardsAway,
	}
}

// ParsedMatch is the normalized form of one API event.
type ParsedMatch struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	League    string
	Kickoff   time.Time
	Minute    int
	Status    string
	HomeScore int
	AwayScore int
	Stats     *Stats
}

// flexNumber tolerates the API's habit of sending numbers as strings.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

type rawEvent struct {
	ID   json.Number `json:"id"`
	Home struct {
		Name string `json:"name"`
	} `json:"home"`
	Away struct {
		Name string `json:"name"`
	} `json:"away"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Time struct {
		Timestamp flexNumber `json:"timestamp"`
		Minute    flexNumber `json:"minute"`
		Status    string     `json:"status"`
	} `json:"time"`
	Scores struct {
		Home flexNumber `json:"home"`
		Away flexNumber `json:"away"`
	} `json:"scores"`
	Stats map[string]json.RawMessage `json:"stats"`
}

// ParseMatch normalizes a raw API event. Missing team and league names
// become "Unknown"; missing stats leave Stats nil.
func ParseMatch(raw json.RawMessage) (*ParsedMatch, error) {
	var ev rawEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse match data: %w", err)
	}
	if ev.ID.String() == "" {
		return nil, fmt.Errorf("match data has no event id")
	}

	m := &ParsedMatch{
		ID:        ev.ID.String(),
		HomeTeam:  orUnknown(ev.Home.Name),
		AwayTeam:  orUnknown(ev.Away.Name),
		League:    orUnknown(ev.League.Name),
		Minute:    int(ev.Time.Minute),
		Status:    ev.Time.Status,
		HomeScore: int(ev.Scores.Home),
		AwayScore: int(ev.Scores.Away),
	}

	if ts := int64(ev.Time.Timestamp); ts > 0 {
		m.Kickoff = time.Unix(ts, 0).UTC()
	}

	if len(ev.Stats) > 0 {
		stats := NormalizeStats(ev.Stats)
		m.Stats = &stats
	}
	return m, nil
}

func orUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

// NormalizeStats maps the API's numeric stat keys to named fields. Keys it
// does not know are ignored; unparsable values keep their defaults.
func NormalizeStats(raw map[string]json.RawMessage) Stats {
	stats := Stats{
		PossessionHome: 50.0,
		PossessionAway: 50.0,
	}

	fields := map[string]*float64{
		"1":  &stats.ShotsHome,
		"2":  &stats.ShotsAway,
		"3":  &stats.ShotsOnTargetHome,
		"4":  &stats.ShotsOnTargetAway,
		"5":  &stats.AttacksHome,
		"6":  &stats.AttacksAway,
		"7":  &stats.DangerousAttacksHome,
		"8":  &stats.DangerousAttacksAway,
		"9":  &stats.PossessionHome,
		"10": &stats.PossessionAway,
		"11": &stats.CornersHome,
		"12": &stats.CornersAway,
		"13": &stats.YellowCardsHome,
		"14": &stats.YellowCardsAway,
		"15": &stats.RedCardsHome,
		"16": &stats.RedCardsAway,
	}

	for key, target := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var n flexNumber
		if err := json.Unmarshal(value, &n); err != nil {
			continue
		}
		*target = float64(n)
	}
	return stats
}

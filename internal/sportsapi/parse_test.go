package sportsapi

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseMatch(t *testing.T) {
	t.Parallel()

	t.Run("full event", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{
			"id": 9102384,
			"home": {"name": "Arsenal"},
			"away": {"name": "Chelsea"},
			"league": {"name": "Premier League"},
			"time": {"timestamp": "1751900400", "minute": "63", "status": "2"},
			"scores": {"home": "1", "away": 0},
			"stats": {"1": "8", "2": "3", "5": "45", "6": "30", "9": "58", "10": "42"}
		}`)

		m, err := ParseMatch(raw)
		if err != nil {
			t.Fatalf("ParseMatch returned error: %v", err)
		}

		if m.ID != "9102384" {
			t.Errorf("ID = %q, want 9102384", m.ID)
		}
		if m.HomeTeam != "Arsenal" || m.AwayTeam != "Chelsea" || m.League != "Premier League" {
			t.Errorf("names = %q / %q / %q", m.HomeTeam, m.AwayTeam, m.League)
		}
		if m.Minute != 63 || m.Status != "2" {
			t.Errorf("time = minute %d status %q", m.Minute, m.Status)
		}
		if m.HomeScore != 1 || m.AwayScore != 0 {
			t.Errorf("score = %d-%d, want 1-0", m.HomeScore, m.AwayScore)
		}
		want := time.Unix(1751900400, 0).UTC()
		if !m.Kickoff.Equal(want) {
			t.Errorf("kickoff = %v, want %v", m.Kickoff, want)
		}
		if m.Stats == nil {
			t.Fatal("expected parsed stats")
		}
		if m.Stats.ShotsHome != 8 || m.Stats.AttacksAway != 30 || m.Stats.PossessionHome != 58 {
			t.Errorf("stats = %+v", m.Stats)
		}
	})

	t.Run("missing names default to Unknown", func(t *testing.T) {
		t.Parallel()

		m, err := ParseMatch(json.RawMessage(`{"id": "55"}`))
		if err != nil {
			t.Fatalf("ParseMatch returned error: %v", err)
		}
		if m.HomeTeam != "Unknown" || m.AwayTeam != "Unknown" || m.League != "Unknown" {
			t.Errorf("names = %q / %q / %q, want Unknown", m.HomeTeam, m.AwayTeam, m.League)
		}
		if m.Stats != nil {
			t.Error("stats should be nil when absent")
		}
		if !m.Kickoff.IsZero() {
			t.Errorf("kickoff = %v, want zero", m.Kickoff)
		}
	})

	t.Run("missing id is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseMatch(json.RawMessage(`{"home":{"name":"A"}}`)); err == nil {
			t.Error("expected an error for a match without id")
		}
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseMatch(json.RawMessage(`{nope`)); err == nil {
			t.Error("expected an error for malformed json")
		}
	})
}

func TestNormalizeStats(t *testing.T) {
	t.Parallel()

	t.Run("empty input keeps possession defaults", func(t *testing.T) {
		t.Parallel()

		stats := NormalizeStats(nil)
		if stats.PossessionHome != 50 || stats.PossessionAway != 50 {
			t.Errorf("possession = (%v, %v), want (50, 50)", stats.PossessionHome, stats.PossessionAway)
		}
		if stats.ShotsHome != 0 {
			t.Errorf("ShotsHome = %v, want 0", stats.ShotsHome)
		}
	})

	t.Run("all keys mapped", func(t *testing.T) {
		t.Parallel()

		raw := map[string]json.RawMessage{
			"1": json.RawMessage(`"8"`), "2": json.RawMessage(`3`),
			"3": json.RawMessage(`"4"`), "4": json.RawMessage(`1`),
			"5": json.RawMessage(`"50"`), "6": json.RawMessage(`28`),
			"7": json.RawMessage(`"22"`), "8": json.RawMessage(`10`),
			"9": json.RawMessage(`"61"`), "10": json.RawMessage(`39`),
			"11": json.RawMessage(`"6"`), "12": json.RawMessage(`2`),
			"13": json.RawMessage(`"1"`), "14": json.RawMessage(`3`),
			"15": json.RawMessage(`"0"`), "16": json.RawMessage(`1`),
		}
		stats := NormalizeStats(raw)

		if stats.ShotsHome != 8 || stats.ShotsAway != 3 {
			t.Errorf("shots = (%v, %v)", stats.ShotsHome, stats.ShotsAway)
		}
		if stats.DangerousAttacksHome != 22 || stats.DangerousAttacksAway != 10 {
			t.Errorf("dangerous = (%v, %v)", stats.DangerousAttacksHome, stats.DangerousAttacksAway)
		}
		if stats.PossessionHome != 61 || stats.PossessionAway != 39 {
			t.Errorf("possession = (%v, %v)", stats.PossessionHome, stats.PossessionAway)
		}
		if stats.RedCardsAway != 1 {
			t.Errorf("RedCardsAway = %v, want 1", stats.RedCardsAway)
		}
	})

	t.Run("unknown keys and junk values ignored", func(t *testing.T) {
		t.Parallel()

		raw := map[string]json.RawMessage{
			"1":  json.RawMessage(`{"weird":true}`),
			"2":  json.RawMessage(`"n/a"`),
			"99": json.RawMessage(`123`),
		}
		stats := NormalizeStats(raw)
		if stats.ShotsHome != 0 || stats.ShotsAway != 0 {
			t.Errorf("shots = (%v, %v), want zeros", stats.ShotsHome, stats.ShotsAway)
		}
	})
}

func TestStatsMapRoundTrip(t *testing.T) {
	t.Parallel()

	stats := Stats{ShotsHome: 5, PossessionHome: 60, PossessionAway: 40}
	m := stats.Map()
	if m["shots_home"] != 5.0 || m["possession_away"] != 40.0 {
		t.Errorf("Map = %v", m)
	}
}

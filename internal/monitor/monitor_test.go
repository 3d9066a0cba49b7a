package monitor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/betbog/betbog/internal/database"
	"github.com/betbog/betbog/internal/optimizer"
	"github.com/betbog/betbog/internal/strategy"
)

// fakeStore is an in-memory Store capturing what the monitor writes.
type fakeStore struct {
	matches   map[string]*database.Match
	metrics   []database.MetricsRow
	signals   []database.Signal
	nextID    int64
	increment map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:   make(map[string]*database.Match),
		increment: make(map[string]int),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) UpsertMatch(_ context.Context, match *database.Match) error {
	if existing, ok := f.matches[match.APIMatchID]; ok {
		match.ID = existing.ID
	} else {
		f.nextID++
		match.ID = f.nextID
	}
	stored := *match
	f.matches[match.APIMatchID] = &stored
	return nil
}

func (f *fakeStore) GetMatchByAPIID(_ context.Context, apiMatchID string) (*database.Match, error) {
	return f.matches[apiMatchID], nil
}

func (f *fakeStore) LiveMatches(context.Context, int) ([]database.Match, error) { return nil, nil }

func (f *fakeStore) UpsertMetrics(_ context.Context, row *database.MetricsRow) error {
	f.metrics = append(f.metrics, *row)
	return nil
}

func (f *fakeStore) MetricsHistory(_ context.Context, matchID int64) ([]database.MetricsRow, error) {
	var rows []database.MetricsRow
	for _, r := range f.metrics {
		if r.MatchID == matchID {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func (f *fakeStore) PruneMetrics(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeStore) InsertSignal(_ context.Context, signal *database.Signal) error {
	f.nextID++
	signal.ID = f.nextID
	f.signals = append(f.signals, *signal)
	return nil
}

func (f *fakeStore) PendingSignals(context.Context, time.Time) ([]database.PendingSignal, error) {
	return nil, nil
}

func (f *fakeStore) SettleSignal(context.Context, int64, string, float64) error { return nil }

func (f *fakeStore) ForceExpireSignals(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeStore) SettledSignals(context.Context, string) ([]database.Signal, error) {
	return nil, nil
}

func (f *fakeStore) AllStrategyStats(context.Context) ([]database.StrategyStats, error) {
	return nil, nil
}

func (f *fakeStore) EnsureStrategyStats(context.Context, string, database.JSONMap) error {
	return nil
}

func (f *fakeStore) UpdateStrategyConfig(context.Context, string, database.JSONMap) error {
	return nil
}

func (f *fakeStore) IncrementStrategySignals(_ context.Context, strategyName string) error {
	f.increment[strategyName]++
	return nil
}

func (f *fakeStore) RecomputeStrategyStats(context.Context) error { return nil }

func (f *fakeStore) SignalCounts(context.Context) (database.SignalCounts, error) {
	return database.SignalCounts{}, nil
}

func (f *fakeStore) ProfitSummary(context.Context, time.Time) (database.ProfitSummary, error) {
	return database.ProfitSummary{}, nil
}

func (f *fakeStore) RecentSignals(context.Context, string, int) ([]database.PendingSignal, error) {
	return nil, nil
}

// fakeAPI serves canned live events and stats.
type fakeAPI struct {
	live  []json.RawMessage
	stats map[string]map[string]json.RawMessage
}

func (f *fakeAPI) LiveMatches(context.Context) ([]json.RawMessage, error) { return f.live, nil }

func (f *fakeAPI) MatchStats(_ context.Context, eventID string) (map[string]json.RawMessage, error) {
	return f.stats[eventID], nil
}

type capturedNotification struct {
	signal database.Signal
	match  database.Match
}

type fakeNotifier struct {
	sent []capturedNotification
}

func (f *fakeNotifier) NotifySignal(_ context.Context, signal database.Signal, match database.Match) error {
	f.sent = append(f.sent, capturedNotification{signal, match})
	return nil
}

func testConfig() Config {
	return Config{
		PollInterval:         time.Minute,
		MaxConcurrentMatches: 10,
		MinMinute:            10,
		MaxMinute:            85,
	}
}

// busyEvent is a live match with enough action to trigger dxg_spike.
const busyEvent = `{
	"id": "777",
	"home": {"name": "Home FC"},
	"away": {"name": "Away FC"},
	"league": {"name": "Test League"},
	"time": {"minute": "40", "status": "1"},
	"scores": {"home": "0", "away": "0"},
	"stats": {"1": "12", "2": "10", "5": "60", "6": "55", "7": "35", "8": "30"}
}`

func TestSweepGeneratesSignals(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := &fakeAPI{live: []json.RawMessage{json.RawMessage(busyEvent)}}
	notifier := &fakeNotifier{}
	engine := strategy.NewEngine(nil, nil)
	opt := optimizer.New(50, nil)

	mon := New(store, api, engine, opt, notifier, testConfig(), nil)

	if err := mon.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	match, ok := store.matches["777"]
	if !ok {
		t.Fatal("match was not stored")
	}
	if match.Status != database.StatusLive || match.Minute != 40 {
		t.Errorf("stored match = %+v", match)
	}

	if len(store.metrics) != 1 {
		t.Fatalf("stored %d metrics rows, want 1", len(store.metrics))
	}
	if store.metrics[0].MatchID != match.ID || store.metrics[0].Minute != 40 {
		t.Errorf("metrics row = %+v", store.metrics[0])
	}

	if len(store.signals) == 0 {
		t.Fatal("expected at least one signal for a busy match")
	}
	for _, sig := range store.signals {
		if sig.MatchID != match.ID {
			t.Errorf("signal match id = %d, want %d", sig.MatchID, match.ID)
		}
		if sig.TriggerMinute != 40 {
			t.Errorf("trigger minute = %d, want 40", sig.TriggerMinute)
		}
		if sig.TriggerMetrics["dxg_home"] == nil {
			t.Error("trigger metrics should embed the snapshot")
		}
		if store.increment[sig.StrategyName] == 0 {
			t.Errorf("strategy %q counter not bumped", sig.StrategyName)
		}
	}

	if len(notifier.sent) != len(store.signals) {
		t.Errorf("sent %d notifications for %d signals", len(notifier.sent), len(store.signals))
	}
}

func TestSweepSkipsOutOfWindowMatches(t *testing.T) {
	t.Parallel()

	early := json.RawMessage(`{"id": "1", "time": {"minute": "3"}, "stats": {"1": "1"}}`)
	late := json.RawMessage(`{"id": "2", "time": {"minute": "89"}, "stats": {"1": "1"}}`)

	store := newFakeStore()
	api := &fakeAPI{live: []json.RawMessage{early, late}}
	mon := New(store, api, strategy.NewEngine(nil, nil), optimizer.New(50, nil), nil, testConfig(), nil)

	if err := mon.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(store.matches) != 0 {
		t.Errorf("out-of-window matches should not be stored, got %d", len(store.matches))
	}
}

func TestSweepCapsConcurrentMatches(t *testing.T) {
	t.Parallel()

	var live []json.RawMessage
	for _, id := range []string{"10", "11", "12"} {
		live = append(live, json.RawMessage(`{"id": "`+id+`", "time": {"minute": "40"}, "stats": {"1": "1"}}`))
	}

	cfg := testConfig()
	cfg.MaxConcurrentMatches = 2

	store := newFakeStore()
	mon := New(store, &fakeAPI{live: live}, strategy.NewEngine(nil, nil), optimizer.New(50, nil), nil, cfg, nil)

	if err := mon.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(store.matches) != 2 {
		t.Errorf("stored %d matches, want the cap of 2", len(store.matches))
	}
}

func TestSweepFetchesMissingStats(t *testing.T) {
	t.Parallel()

	event := json.RawMessage(`{"id": "900", "time": {"minute": "50"}}`)
	api := &fakeAPI{
		live: []json.RawMessage{event},
		stats: map[string]map[string]json.RawMessage{
			"900": {"1": json.RawMessage(`"5"`), "5": json.RawMessage(`"30"`)},
		},
	}

	store := newFakeStore()
	mon := New(store, api, strategy.NewEngine(nil, nil), optimizer.New(50, nil), nil, testConfig(), nil)

	if err := mon.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	match, ok := store.matches["900"]
	if !ok {
		t.Fatal("match was not stored")
	}
	if match.Stats["shots_home"] != 5.0 {
		t.Errorf("stats = %v, want shots_home 5", match.Stats)
	}
	if len(store.metrics) != 1 {
		t.Errorf("stored %d metrics rows, want 1", len(store.metrics))
	}
}

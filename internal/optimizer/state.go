package optimizer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const stateFileMode = 0o600

type stateFile struct {
	StrategyStats map[string]StrategyPerformance `json:"strategy_stats"`
	Timestamp     time.Time                      `json:"timestamp"`
}

// SaveState writes the learned strategy profiles to a JSON file.
func (o *Optimizer) SaveState(path string) error {
	o.mu.RLock()
	state := stateFile{
		StrategyStats: make(map[string]StrategyPerformance, len(o.stats)),
		Timestamp:     time.Now().UTC(),
	}
	for name, perf := range o.stats {
		state.StrategyStats[name] = perf
	}
	o.mu.RUnlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal optimizer state: %w", err)
	}

	if err := os.WriteFile(path, data, stateFileMode); err != nil {
		return fmt.Errorf("failed to write optimizer state to %s: %w", path, err)
	}

	o.logger.Info("Optimizer state saved", "path", path, "strategies", len(state.StrategyStats))
	return nil
}

// LoadState restores strategy profiles from a JSON file. A missing file
// is not an error; the optimizer simply starts cold.
func (o *Optimizer) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			o.logger.Info("No existing optimizer state found", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read optimizer state from %s: %w", path, err)
	}

	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse optimizer state from %s: %w", path, err)
	}

	o.mu.Lock()
	o.stats = make(map[string]StrategyPerformance, len(state.StrategyStats))
	for name, perf := range state.StrategyStats {
		o.stats[name] = perf
	}
	o.mu.Unlock()

	o.logger.Info("Optimizer state loaded", "path", path, "strategies", len(state.StrategyStats))
	return nil
}

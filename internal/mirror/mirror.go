// Package mirror copies calendar events to a CalDAV calendar, remembering
// which events were already copied.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"graphcal/internal/models"
)

// DefaultStateFile is used when no state file is configured.
const DefaultStateFile = "mirror-state.json"

// State records mirrored events: Graph event id to CalDAV UID.
type State map[string]string

// Target receives mirrored events.
type Target interface {
	PutEvent(ctx context.Context, event models.Event) (uid string, err error)
}

// Summary counts the outcome of one mirror run.
type Summary struct {
	Pushed  int
	Skipped int
	Failed  int
}

// Mirror pushes new events to a Target.
type Mirror struct {
	logger    *slog.Logger
	target    Target
	state     State
	stateFile string
	dryRun    bool
}

// New creates a Mirror, loading state from stateFile if it exists.
func New(logger *slog.Logger, target Target, stateFile string, dryRun bool) (*Mirror, error) {
	if stateFile == "" {
		stateFile = DefaultStateFile
	}
	state, err := LoadState(stateFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("No mirror state file found, starting fresh.", "file", stateFile)
		state = make(State)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load mirror state: %w", err)
	}

	return &Mirror{
		logger:    logger,
		target:    target,
		state:     state,
		stateFile: stateFile,
		dryRun:    dryRun,
	}, nil
}

// Run pushes every event not yet in the state. A failed event is logged
// and the rest are still attempted. State is saved unless this is a dry run.
func (m *Mirror) Run(ctx context.Context, events []models.Event) (Summary, error) {
	m.logger.Info("Starting mirror run.", "events", len(events), "dryRun", m.dryRun)

	var sum Summary
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		pushed, err := m.mirrorEvent(ctx, event)
		switch {
		case err != nil:
			sum.Failed++
			m.logger.Error("Failed to mirror event", "subject", event.Subject, "error", err)
		case pushed:
			sum.Pushed++
		default:
			sum.Skipped++
		}
	}

	if !m.dryRun {
		if err := SaveState(m.stateFile, m.state); err != nil {
			return sum, err
		}
	}

	m.logger.Info("Mirror run finished.", "pushed", sum.Pushed, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// State returns the mirrored ids known so far.
func (m *Mirror) State() State {
	return m.state
}

func (m *Mirror) mirrorEvent(ctx context.Context, event models.Event) (bool, error) {
	if event.ID == "" {
		return false, errors.New("event has no id")
	}
	if _, exists := m.state[event.ID]; exists {
		m.logger.Debug("Event already mirrored, skipping.", "subject", event.Subject, "id", event.ID)
		return false, nil
	}

	if m.dryRun {
		m.logger.Info("[DRY RUN] Would mirror event", "subject", event.Subject, "start", event.Start)
		return true, nil
	}

	m.logger.Info("New event found, mirroring.", "subject", event.Subject)
	uid, err := m.target.PutEvent(ctx, event)
	if err != nil {
		return false, err
	}
	m.state[event.ID] = uid
	return true, nil
}

// LoadState reads a state file written by SaveState.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state := make(State)
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return state, nil
}

// SaveState writes state as indented JSON.
func SaveState(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mirror state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save mirror state: %w", err)
	}
	return nil
}

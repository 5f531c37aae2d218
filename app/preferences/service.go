package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// StorageKey is the settings key the record is stored under.
const StorageKey = "userPreferences"

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Service reads and writes the preference record wholesale.
type Service struct {
	store SettingsStore
	mu    sync.Mutex
}

func NewService(store SettingsStore) *Service {
	return &Service{store: store}
}

// Load returns the stored record, or the defaults when nothing usable is
// stored.
func (s *Service) Load(ctx context.Context) (UserPreferences, error) {
	raw, ok, err := s.store.GetSetting(ctx, StorageKey)
	if err != nil {
		return UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	if !ok {
		return Defaults(), nil
	}

	var prefs UserPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		slog.Warn("Stored preferences are unreadable, using defaults", "error", err)
		return Defaults(), nil
	}

	return Normalize(prefs), nil
}

func (s *Service) Replace(ctx context.Context, prefs UserPreferences) (UserPreferences, error) {
	if err := Validate(prefs); err != nil {
		return UserPreferences{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs = Normalize(prefs)
	if err := s.save(ctx, prefs); err != nil {
		return UserPreferences{}, err
	}
	return prefs, nil
}

// Update merges the patch into the stored record under a lock so concurrent
// updates do not lose writes.
func (s *Service) Update(ctx context.Context, patch Patch) (UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Load(ctx)
	if err != nil {
		return UserPreferences{}, err
	}

	merged, err := Merge(current, patch)
	if err != nil {
		return UserPreferences{}, err
	}

	if err := s.save(ctx, merged); err != nil {
		return UserPreferences{}, err
	}
	return merged, nil
}

func (s *Service) ActivePrompts(ctx context.Context) ([]AlgorithmPrompt, error) {
	prefs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ActivePrompts(prefs), nil
}

func (s *Service) save(ctx context.Context, prefs UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.store.PutSetting(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

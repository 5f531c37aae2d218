package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// PresetCache holds the named feed presets found in the feeds directory.
type PresetCache struct {
	feedsDir string
	cache    map[string]*Preset
	mu       sync.RWMutex
}

func NewPresetCache(feedsDir string) *PresetCache {
	return &PresetCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Preset),
	}
}

// Run loads every <name>.yml in the feeds directory. A missing directory is
// not an error.
func (pc *PresetCache) Run() error {
	if _, err := os.Stat(pc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(pc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		preset, err := pc.LoadPreset(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Preset loaded", "preset", name, "type", feedTypeOf(&preset.Options), "sort_by", preset.SortBy)
	}

	return nil
}

func (pc *PresetCache) LoadPreset(name string) (*Preset, error) {
	file := pc.getPresetFilePath(name)

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	preset.Name = name
	if preset.Type == "" {
		preset.Type = FeedTypeTimeline
	}

	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", file, err)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache[name] = &preset

	return &preset, nil
}

func (pc *PresetCache) GetPreset(name string) (*Preset, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	preset, ok := pc.cache[name]
	if !ok {
		return nil, fmt.Errorf("%w: preset '%s' not found", ErrInvalidOption, name)
	}
	return preset, nil
}

// GetPresets returns the presets sorted by name.
func (pc *PresetCache) GetPresets() []*Preset {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	presets := make([]*Preset, 0, len(pc.cache))
	for _, preset := range pc.cache {
		presets = append(presets, preset)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets
}

func (pc *PresetCache) GetPresetCount() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.cache)
}

// Resolve applies request options on top of the named preset. An empty name
// returns the request options unchanged.
func (pc *PresetCache) Resolve(name string, override Options) (Options, error) {
	if name == "" {
		return override, nil
	}

	preset, err := pc.GetPreset(name)
	if err != nil {
		return Options{}, err
	}

	return MergeOptions(preset.Options, override), nil
}

func (pc *PresetCache) getPresetFilePath(name string) string {
	return filepath.Join(pc.feedsDir, name+".yml")
}

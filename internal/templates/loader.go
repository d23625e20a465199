package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

var ErrPresetNotFound = errors.New("preset not found")

// PresetCheck verifies that a preset's engine exists and accepts its params
type PresetCheck func(engineID string, params map[string]any) error

// Loader manages loading and caching of the problem catalog.
//
// Layout on disk:
//
//	<dir>/<topic>/topic.yaml
//	<dir>/<topic>/presets/<code>.yaml
type Loader struct {
	mu      sync.RWMutex
	check   PresetCheck
	topics  map[string]*models.Topic
	presets map[string]*models.Preset
}

// NewLoader creates a new catalog loader. check may be nil.
func NewLoader(check PresetCheck) *Loader {
	return &Loader{
		check:   check,
		topics:  make(map[string]*models.Topic),
		presets: make(map[string]*models.Preset),
	}
}

// LoadFromDir loads every topic directory below dir. Broken topics and
// presets are logged and skipped.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		topicDir := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(topicDir, "topic.yaml")); os.IsNotExist(err) {
			continue // not a topic directory
		}

		topic, err := l.loadTopic(entry.Name(), topicDir)
		if err != nil {
			slog.Warn("failed to load topic", "dir", entry.Name(), "error", err)
			continue
		}

		l.mu.Lock()
		l.topics[topic.ID] = topic
		l.mu.Unlock()

		slog.Info("catalog topic loaded", "id", topic.ID, "name", topic.Name, "presets", topic.PresetsCount)
	}

	return nil
}

// loadTopic loads topic.yaml and the presets next to it
func (l *Loader) loadTopic(id, dir string) (*models.Topic, error) {
	data, err := os.ReadFile(filepath.Join(dir, "topic.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read topic.yaml: %w", err)
	}

	var tf topicFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse topic.yaml: %w", err)
	}
	if tf.Name == "" {
		return nil, fmt.Errorf("topic name is required")
	}

	topic := &models.Topic{
		ID:          id,
		Name:        tf.Name,
		Description: tf.Description,
		Grade:       tf.Grade,
	}

	presetsDir := filepath.Join(dir, "presets")
	if _, err := os.Stat(presetsDir); err == nil {
		presets, err := l.loadPresets(id, presetsDir)
		if err != nil {
			slog.Warn("failed to load presets", "topic", id, "error", err)
		}
		topic.PresetsCount = len(presets)
	}

	return topic, nil
}

// loadPresets loads all preset YAML files from a presets/ directory
func (l *Loader) loadPresets(topicID, dir string) ([]*models.Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets dir: %w", err)
	}

	var presets []*models.Preset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		preset, err := l.LoadPreset(topicID, filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("failed to load preset", "topic", topicID, "file", entry.Name(), "error", err)
			continue
		}
		presets = append(presets, preset)
	}

	return presets, nil
}

// LoadPreset loads and registers a single preset file
func (l *Loader) LoadPreset(topicID, path string) (*models.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse preset YAML: %w", err)
	}

	// Use code from YAML, fall back to filename without extension
	code := pf.Code
	if code == "" {
		base := filepath.Base(path)
		code = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if pf.Title == "" {
		return nil, fmt.Errorf("preset title is required")
	}
	if pf.Engine == "" {
		return nil, fmt.Errorf("preset engine is required")
	}
	if l.check != nil {
		if err := l.check(pf.Engine, pf.Params); err != nil {
			return nil, fmt.Errorf("preset %s: %w", code, err)
		}
	}

	difficulty := pf.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	preset := &models.Preset{
		ID:          topicID + "/" + code,
		Code:        code,
		TopicID:     topicID,
		Title:       pf.Title,
		Description: pf.Description,
		EngineID:    pf.Engine,
		Params:      pf.Params,
		Difficulty:  difficulty,
		Skills:      pf.Skills,
	}

	l.mu.Lock()
	l.presets[preset.ID] = preset
	l.mu.Unlock()

	return preset, nil
}

// --- Catalog accessors ---

// ListTopics returns all loaded topics ordered by grade, then id
func (l *Loader) ListTopics() []*models.Topic {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.Topic, 0, len(l.topics))
	for _, t := range l.topics {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Grade != result[j].Grade {
			return result[i].Grade < result[j].Grade
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// GetTopic returns a topic by ID
func (l *Loader) GetTopic(id string) *models.Topic {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.topics[id]
}

// ListPresets returns all presets of a topic ordered by id
func (l *Loader) ListPresets(topicID string) []*models.Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*models.Preset
	for _, p := range l.presets {
		if p.TopicID == topicID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetPreset returns a preset by ID (e.g. "written-addition/two-carries")
func (l *Loader) GetPreset(id string) (*models.Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	return p, nil
}

// --- YAML file structs ---

// topicFile represents the YAML structure of a topic.yaml file
type topicFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Grade       int    `yaml:"grade"`
}

// presetFile represents the YAML structure of a preset file
type presetFile struct {
	Code        string         `yaml:"code"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Engine      string         `yaml:"engine"`
	Params      map[string]any `yaml:"params"`
	Difficulty  string         `yaml:"difficulty"`
	Skills      []string       `yaml:"skills"`
}

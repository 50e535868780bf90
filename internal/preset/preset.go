package preset

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/stemsi/exstem-timer/internal/model"
)

// Preset is a reusable exam configuration kept as a YAML file, so a
// proctor does not retype the same numbers before every session.
type Preset struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	NumQuestions int    `yaml:"num_questions"`
	TotalMinutes int    `yaml:"total_minutes"`
	StudentName  string `yaml:"student_name"`
	// Greeting is optional display copy shown on the countdown and
	// finished screens.
	Greeting string `yaml:"greeting"`
}

// Request converts the preset into a pre-filled setup request.
func (p *Preset) Request() *model.SetupRequest {
	return &model.SetupRequest{
		StudentName:  p.StudentName,
		NumQuestions: p.NumQuestions,
		TotalMinutes: p.TotalMinutes,
	}
}

// Loader loads presets from a directory. Loading happens once during
// startup; afterwards the set is read-only.
type Loader struct {
	fs      afero.Fs
	log     zerolog.Logger
	presets map[string]*Preset
}

// NewLoader creates a preset loader on the given filesystem.
func NewLoader(fs afero.Fs, log zerolog.Logger) *Loader {
	return &Loader{
		fs:      fs,
		log:     log.With().Str("component", "preset_loader").Logger(),
		presets: make(map[string]*Preset),
	}
}

// LoadFromDir loads all YAML presets from a directory. A file that does
// not parse or fails validation is skipped with a warning; one bad file
// never blocks the rest.
func (l *Loader) LoadFromDir(dir string) error {
	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := afero.Glob(l.fs, filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		p, err := l.loadFromFile(file)
		if err != nil {
			l.log.Warn().Str("file", file).Err(err).Msg("Skipping preset")
			continue
		}
		l.presets[p.Name] = p
		loaded++
	}

	l.log.Info().Int("count", loaded).Int("total_files", len(files)).Msg("Presets loaded")
	return nil
}

// loadFromFile parses and validates a single preset file.
func (l *Loader) loadFromFile(path string) (*Preset, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	// Use name from YAML, fall back to filename without extension.
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if p.NumQuestions < 1 {
		return nil, fmt.Errorf("num_questions must be at least 1")
	}
	if p.TotalMinutes < 1 {
		return nil, fmt.Errorf("total_minutes must be at least 1")
	}

	return &p, nil
}

// Get retrieves a preset by name.
func (l *Loader) Get(name string) *Preset {
	return l.presets[name]
}

// List returns all loaded presets sorted by name.
func (l *Loader) List() []*Preset {
	result := make([]*Preset, 0, len(l.presets))
	for _, p := range l.presets {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

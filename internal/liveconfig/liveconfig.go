package liveconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/eleven-am/live-console/internal/live"
	"github.com/goccy/go-yaml"
)

const DefaultPreset = "default"

var ErrUnknownPreset = errors.New("liveconfig: unknown preset")

// File is a set of named session presets.
//
//	model: gemini-live-2.5-flash-preview
//	default: assistant
//	presets:
//	  assistant:
//	    response_modalities: [audio]
//	    voice: Aoede
//	    output_transcription: true
type File struct {
	Model   string                       `yaml:"model"`
	Default string                       `yaml:"default"`
	Presets map[string]live.SessionConfig `yaml:"presets"`
}

func Builtin() *File {
	return &File{
		Default: DefaultPreset,
		Presets: map[string]live.SessionConfig{
			DefaultPreset: {
				ResponseModalities:  []string{"audio"},
				InputTranscription:  true,
				OutputTranscription: true,
			},
		},
	}
}

func Load(path string) (*File, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Presets) == 0 {
		return nil, errors.New("no presets defined")
	}
	if f.Default == "" {
		if _, ok := f.Presets[DefaultPreset]; ok {
			f.Default = DefaultPreset
		} else {
			f.Default = f.Names()[0]
		}
	}
	if _, ok := f.Presets[f.Default]; !ok {
		return nil, fmt.Errorf("default preset %q is not defined", f.Default)
	}
	for name, cfg := range f.Presets {
		if err := Validate(&cfg); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return &f, nil
}

// Validate checks the parts of a session config the backend would reject.
func Validate(cfg *live.SessionConfig) error {
	for _, m := range cfg.ResponseModalities {
		switch strings.ToLower(m) {
		case "audio", "text":
		default:
			return fmt.Errorf("unsupported response modality %q", m)
		}
	}
	seen := make(map[string]bool, len(cfg.Functions))
	for i, fn := range cfg.Functions {
		if fn.Name == "" {
			return fmt.Errorf("function %d has no name", i)
		}
		if seen[fn.Name] {
			return fmt.Errorf("function %q declared twice", fn.Name)
		}
		seen[fn.Name] = true
	}
	return nil
}

// Preset returns a copy of the named preset; an empty name selects the
// default.
func (f *File) Preset(name string) (*live.SessionConfig, error) {
	if name == "" {
		name = f.Default
	}
	cfg, ok := f.Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	cfg.ResponseModalities = slices.Clone(cfg.ResponseModalities)
	cfg.Functions = slices.Clone(cfg.Functions)
	return &cfg, nil
}

func (f *File) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

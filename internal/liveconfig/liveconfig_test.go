package liveconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
model: gemini-live-test
default: assistant
presets:
  assistant:
    response_modalities: [audio]
    voice: Aoede
    language_code: en-US
    system_instruction: You are terse.
    output_transcription: true
    functions:
      - name: get_weather
        description: Current weather for a city
        parameters:
          type: object
          properties:
            city:
              type: string
          required: [city]
  notes:
    response_modalities: [text]
    google_search: true
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Model != "gemini-live-test" || f.Default != "assistant" {
		t.Errorf("file = %+v", f)
	}
	if got := f.Names(); len(got) != 2 || got[0] != "assistant" || got[1] != "notes" {
		t.Errorf("Names() = %v", got)
	}

	cfg, err := f.Preset("")
	if err != nil {
		t.Fatalf("Preset(default) error = %v", err)
	}
	if cfg.Voice != "Aoede" || cfg.LanguageCode != "en-US" || !cfg.OutputTranscription {
		t.Errorf("assistant = %+v", cfg)
	}
	if len(cfg.Functions) != 1 || cfg.Functions[0].Name != "get_weather" {
		t.Fatalf("functions = %+v", cfg.Functions)
	}
	params, ok := cfg.Functions[0].Parameters.(map[string]any)
	if !ok || params["type"] != "object" {
		t.Errorf("parameters = %#v", cfg.Functions[0].Parameters)
	}

	notes, err := f.Preset("notes")
	if err != nil {
		t.Fatal(err)
	}
	if !notes.GoogleSearch || notes.ResponseModalities[0] != "text" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestPreset_Unknown(t *testing.T) {
	f := Builtin()
	if _, err := f.Preset("missing"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPreset_ReturnsCopy(t *testing.T) {
	f := Builtin()
	cfg, _ := f.Preset("")
	cfg.ResponseModalities[0] = "text"

	again, _ := f.Preset("")
	if again.ResponseModalities[0] != "audio" {
		t.Error("Preset leaked internal slice")
	}
}

func TestParse_DefaultSelection(t *testing.T) {
	f, err := Parse([]byte("presets:\n  zeta: {}\n  alpha: {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Default != "alpha" {
		t.Errorf("default = %q, want first name alphabetically", f.Default)
	}

	f, err = Parse([]byte("presets:\n  zeta: {}\n  default: {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Default != DefaultPreset {
		t.Errorf("default = %q, want %q", f.Default, DefaultPreset)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no presets", "model: x\n", "no presets"},
		{"missing default", "default: nope\npresets:\n  a: {}\n", "not defined"},
		{"bad modality", "presets:\n  a:\n    response_modalities: [video]\n", "modality"},
		{"unnamed function", "presets:\n  a:\n    functions:\n      - description: x\n", "no name"},
		{"duplicate function", "presets:\n  a:\n    functions:\n      - name: f\n      - name: f\n", "twice"},
		{"bad yaml", "presets: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	f, err := Load("")
	if err != nil || f.Default != DefaultPreset {
		t.Fatalf("Load(\"\") = %+v, %v", f, err)
	}

	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Model != "gemini-live-test" {
		t.Errorf("model = %q", f.Model)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

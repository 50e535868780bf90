package preset

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

func writePreset(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Run("loads valid presets and skips broken ones", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writePreset(t, fs, "presets/matematika.yaml", `
name: matematika
description: Ujian akhir semester matematika
num_questions: 40
total_minutes: 90
greeting: Selamat mengerjakan!
`)
		writePreset(t, fs, "presets/fisika.yml", `
name: fisika
num_questions: 30
total_minutes: 60
`)
		writePreset(t, fs, "presets/broken.yaml", "{{{not yaml")
		writePreset(t, fs, "presets/no-questions.yaml", `
name: kosong
total_minutes: 60
`)

		l := NewLoader(fs, zerolog.Nop())
		if err := l.LoadFromDir("presets"); err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}

		list := l.List()
		if len(list) != 2 {
			t.Fatalf("loaded %d presets, want 2", len(list))
		}
		// List is sorted by name.
		if list[0].Name != "fisika" || list[1].Name != "matematika" {
			t.Errorf("order = [%s %s], want [fisika matematika]", list[0].Name, list[1].Name)
		}

		m := l.Get("matematika")
		if m == nil {
			t.Fatal("Get(matematika) = nil")
		}
		if m.NumQuestions != 40 || m.TotalMinutes != 90 {
			t.Errorf("matematika = %+v", m)
		}
		if m.Greeting != "Selamat mengerjakan!" {
			t.Errorf("greeting = %q", m.Greeting)
		}
	})

	t.Run("name falls back to the file name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writePreset(t, fs, "presets/biologi.yaml", `
num_questions: 25
total_minutes: 45
`)

		l := NewLoader(fs, zerolog.Nop())
		if err := l.LoadFromDir("presets"); err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}
		if l.Get("biologi") == nil {
			t.Error("preset not reachable under its file name")
		}
	})

	t.Run("missing directory loads nothing", func(t *testing.T) {
		l := NewLoader(afero.NewMemMapFs(), zerolog.Nop())
		if err := l.LoadFromDir("nowhere"); err != nil {
			t.Fatalf("LoadFromDir failed: %v", err)
		}
		if got := len(l.List()); got != 0 {
			t.Errorf("loaded %d presets from a missing dir", got)
		}
	})
}

func TestPresetRequest(t *testing.T) {
	p := &Preset{Name: "kimia", NumQuestions: 35, TotalMinutes: 75, StudentName: "Sari"}
	req := p.Request()

	if req.NumQuestions != 35 || req.TotalMinutes != 75 || req.StudentName != "Sari" {
		t.Errorf("Request() = %+v", req)
	}
}

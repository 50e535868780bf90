package export

import (
	"encoding/csv"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stemsi/exstem-timer/internal/model"
)

func testSession(questions int, seconds []int) *model.Session {
	return &model.Session{
		ID:              uuid.New(),
		NumQuestions:    questions,
		QuestionSeconds: seconds,
	}
}

func readRecords(t *testing.T, fs afero.Fs, path string) [][]string {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse exported file: %v", err)
	}
	return records
}

func TestWriteCSV(t *testing.T) {
	t.Run("one row per question plus header", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exp := NewExporter(fs, "exports", clockwork.NewFakeClock(), zerolog.Nop())

		path, err := exp.WriteCSV(testSession(3, []int{5, 0, 12}))
		if err != nil {
			t.Fatalf("WriteCSV failed: %v", err)
		}

		records := readRecords(t, fs, path)
		want := [][]string{
			{"question_no", "total_seconds"},
			{"1", "5"},
			{"2", "0"},
			{"3", "12"},
		}
		if !reflect.DeepEqual(records, want) {
			t.Errorf("records = %v, want %v", records, want)
		}
	})

	t.Run("short attribution slice pads with zeros", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exp := NewExporter(fs, "exports", clockwork.NewFakeClock(), zerolog.Nop())

		path, err := exp.WriteCSV(testSession(4, []int{7}))
		if err != nil {
			t.Fatalf("WriteCSV failed: %v", err)
		}

		records := readRecords(t, fs, path)
		if len(records) != 5 {
			t.Fatalf("rows = %d, want 5 (header + 4 questions)", len(records))
		}
		for _, row := range records[2:] {
			if row[1] != "0" {
				t.Errorf("question %s seconds = %s, want 0", row[0], row[1])
			}
		}
	})

	t.Run("empty session is refused", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exp := NewExporter(fs, "exports", clockwork.NewFakeClock(), zerolog.Nop())

		if _, err := exp.WriteCSV(nil); !errors.Is(err, ErrNothingToExport) {
			t.Errorf("nil session: err = %v, want ErrNothingToExport", err)
		}
		if _, err := exp.WriteCSV(testSession(0, nil)); !errors.Is(err, ErrNothingToExport) {
			t.Errorf("zero questions: err = %v, want ErrNothingToExport", err)
		}
	})

	t.Run("repeated exports never collide", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		fc := clockwork.NewFakeClock()
		exp := NewExporter(fs, "exports", fc, zerolog.Nop())
		sess := testSession(2, []int{1, 2})

		first, err := exp.WriteCSV(sess)
		if err != nil {
			t.Fatalf("first WriteCSV failed: %v", err)
		}
		fc.Advance(time.Second)
		second, err := exp.WriteCSV(sess)
		if err != nil {
			t.Fatalf("second WriteCSV failed: %v", err)
		}

		if first == second {
			t.Errorf("both exports landed on %s", first)
		}
		for _, p := range []string{first, second} {
			if ok, _ := afero.Exists(fs, p); !ok {
				t.Errorf("exported file %s missing", p)
			}
		}
	})

	t.Run("export dir is created on demand", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		exp := NewExporter(fs, "deep/nested/exports", clockwork.NewFakeClock(), zerolog.Nop())

		if _, err := exp.WriteCSV(testSession(1, []int{3})); err != nil {
			t.Fatalf("WriteCSV failed: %v", err)
		}
		if ok, _ := afero.DirExists(fs, "deep/nested/exports"); !ok {
			t.Error("export dir was not created")
		}
	})
}

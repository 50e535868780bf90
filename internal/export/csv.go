package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stemsi/exstem-timer/internal/model"
)

// ErrNothingToExport is returned when the session has no question data.
var ErrNothingToExport = errors.New("nothing to export")

// Exporter writes per-question time recaps as CSV files.
type Exporter struct {
	fs    afero.Fs
	dir   string
	clock clockwork.Clock
	log   zerolog.Logger
}

// NewExporter creates an exporter rooted at dir on the given filesystem.
func NewExporter(fs afero.Fs, dir string, clock clockwork.Clock, log zerolog.Logger) *Exporter {
	return &Exporter{
		fs:    fs,
		dir:   dir,
		clock: clock,
		log:   log.With().Str("component", "exporter").Logger(),
	}
}

// WriteCSV writes the recap for sess and returns the created file path.
// The file holds a header row and one row per question, first to last,
// with the seconds attributed to each.
func (e *Exporter) WriteCSV(sess *model.Session) (string, error) {
	if sess == nil || sess.NumQuestions == 0 {
		return "", ErrNothingToExport
	}

	if err := e.fs.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.dir, e.fileName(sess))
	f, err := e.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"question_no", "total_seconds"}); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < sess.NumQuestions; i++ {
		secs := 0
		if i < len(sess.QuestionSeconds) {
			secs = sess.QuestionSeconds[i]
		}
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(secs)}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export file: %w", err)
	}

	e.log.Info().
		Str("session_id", sess.ID.String()).
		Str("path", path).
		Int("questions", sess.NumQuestions).
		Msg("Recap exported")

	return path, nil
}

// fileName builds a per-session name so repeated exports never collide.
func (e *Exporter) fileName(sess *model.Session) string {
	stamp := e.clock.Now().Format("20060102-150405")
	return fmt.Sprintf("rekap_%s_%s.csv", shortID(sess), stamp)
}

func shortID(sess *model.Session) string {
	id := sess.ID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

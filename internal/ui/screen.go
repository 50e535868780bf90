package ui

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/stemsi/exstem-timer/internal/alert"
	"github.com/stemsi/exstem-timer/internal/model"
	"github.com/stemsi/exstem-timer/internal/service"
)

const questionsPerRow = 10

// View is everything the screen needs for one frame.
type View struct {
	Snap     service.Snapshot
	Form     *Form
	Greeting string
	Pending  string
	Alert    *alert.Alert
}

// Screen renders one full frame per event. The terminal runs in raw mode,
// so every line ends with CRLF.
type Screen struct {
	out    io.Writer
	title  *color.Color
	accent *color.Color
	ok     *color.Color
	warn   *color.Color
	danger *color.Color
	dim    *color.Color
}

// NewScreen creates a renderer writing to out.
func NewScreen(out io.Writer) *Screen {
	return &Screen{
		out:    out,
		title:  color.New(color.FgCyan, color.Bold),
		accent: color.New(color.FgWhite, color.Bold),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow, color.Bold),
		danger: color.New(color.FgRed, color.Bold),
		dim:    color.New(color.Faint),
	}
}

// Render clears the terminal and draws the frame for the current phase.
func (s *Screen) Render(v View) {
	fmt.Fprint(s.out, "\x1b[2J\x1b[H")

	switch v.Snap.Phase {
	case model.PhaseSetup:
		s.renderSetup(v)
	case model.PhaseCountdown:
		s.renderCountdown(v)
	case model.PhaseExam:
		s.renderExam(v)
	case model.PhaseFinished:
		s.renderFinished(v)
	}
}

// ─── Phase views ────────────────────────────────────────────────────────────

func (s *Screen) renderSetup(v View) {
	s.header("ExStem Timer — Pengaturan Ujian")

	if v.Form == nil {
		return
	}
	labels := []struct {
		field FormField
		text  string
	}{
		{FieldName, "Nama siswa (opsional)"},
		{FieldQuestions, "Jumlah soal"},
		{FieldMinutes, "Durasi ujian (menit)"},
	}
	for _, l := range labels {
		switch {
		case l.field == v.Form.Field():
			s.line("%s %s: %s_", s.accent.Sprint(">"), l.text, v.Form.Buffer())
		case l.field < v.Form.Field():
			s.line("  %s: %s", l.text, v.Form.Value(l.field))
		default:
			s.line("  %s: %s", l.text, s.dim.Sprintf("(default %s)", v.Form.Value(l.field)))
		}
	}

	s.line("")
	if msg := v.Form.ParseError(); msg != "" {
		s.line("%s", s.danger.Sprint(msg))
	}
	s.renderAlert(v.Alert)
	s.line("")
	s.line("%s", s.dim.Sprint("Enter untuk melanjutkan, kosongkan untuk memakai nilai default."))
}

func (s *Screen) renderCountdown(v View) {
	s.header("ExStem Timer — Bersiap")

	s.line("Ujian dimulai dalam")
	s.line("")
	s.line("        %s", s.warn.Sprintf("%d", v.Snap.CountdownLeft))
	s.line("")
	if v.Snap.StudentName != "" {
		s.line("Siswa       : %s", v.Snap.StudentName)
	}
	s.line("Jumlah soal : %d", v.Snap.NumQuestions)
	s.line("Durasi      : %s", service.FormatHMS(v.Snap.TotalSeconds))
	if v.Greeting != "" {
		s.line("")
		s.line("%s", s.ok.Sprint(v.Greeting))
	}
	s.line("")
	s.line("%s", s.dim.Sprint("[q] batalkan dan keluar"))
}

func (s *Screen) renderExam(v View) {
	s.header("ExStem Timer — Ujian Berlangsung")

	if v.Snap.StudentName != "" {
		s.line("Siswa: %s", v.Snap.StudentName)
	}

	remaining := service.FormatHMS(v.Snap.RemainingSeconds)
	if v.Snap.RemainingSeconds <= 60 {
		remaining = s.danger.Sprint(remaining)
	} else {
		remaining = s.accent.Sprint(remaining)
	}
	s.line("Sisa waktu : %s   %s", remaining,
		s.dim.Sprintf("berjalan %s dari %s",
			service.FormatHMS(v.Snap.ElapsedSeconds), service.FormatHMS(v.Snap.TotalSeconds)))

	if v.Snap.InChecking {
		s.line("%s", s.warn.Sprint("== WAKTU PENGECEKAN JAWABAN =="))
	}
	s.line("")

	if v.Snap.ActiveQuestion != 0 {
		mark := ""
		switch v.Snap.Warning {
		case service.WarnHigh:
			mark = "  " + s.danger.Sprint("PERINGATAN: jauh di atas rata-rata")
		case service.WarnMedium:
			mark = "  " + s.warn.Sprint("Perhatian: di atas rata-rata")
		}
		s.line("Soal aktif : %s (%s)%s",
			s.accent.Sprintf("%d", v.Snap.ActiveQuestion),
			service.FormatHMS(v.Snap.ActiveSeconds), mark)
	} else {
		s.line("%s", s.dim.Sprint("Tidak ada soal aktif. Ketik nomor lalu Enter."))
	}
	s.line("Rata-rata  : %s per soal", service.FormatHMS(v.Snap.AvgPerQuestion))
	s.line("")

	s.renderGrid(v.Snap)

	s.line("")
	if v.Pending != "" {
		s.line("Nomor: %s_", s.accent.Sprint(v.Pending))
	}
	s.renderAlert(v.Alert)
	s.line("%s", s.dim.Sprint("[angka]+Enter pilih soal  [spasi] lepas  [<-/->] pindah  [f] selesai  [s] simpan  [q] keluar"))
}

func (s *Screen) renderFinished(v View) {
	s.header("ExStem Timer — Ujian Selesai")

	if v.Greeting != "" {
		s.line("%s", s.ok.Sprint(v.Greeting))
	}
	if v.Snap.StudentName != "" {
		s.line("Siswa       : %s", v.Snap.StudentName)
	}
	s.line("Total waktu : %s dari %s",
		service.FormatHMS(v.Snap.ElapsedSeconds), service.FormatHMS(v.Snap.TotalSeconds))
	s.line("")

	attributed := 0
	for _, sec := range v.Snap.QuestionSeconds {
		attributed += sec
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.Header("Soal", "Waktu", "Detik", "Porsi")
	for i, sec := range v.Snap.QuestionSeconds {
		detik, porsi := "-", "-"
		if i < len(v.Snap.Visited) && v.Snap.Visited[i] {
			detik = strconv.Itoa(sec)
			if attributed > 0 {
				porsi = fmt.Sprintf("%d%%", sec*100/attributed)
			}
		}
		table.Append(strconv.Itoa(i+1), service.FormatHMS(sec), detik, porsi)
	}
	table.Render()
	s.writeBlock(buf.String())

	if rest := v.Snap.ElapsedSeconds - attributed; rest > 0 {
		s.line("%s", s.dim.Sprintf("Waktu tanpa soal aktif: %s", service.FormatHMS(rest)))
	}
	s.line("")
	s.renderAlert(v.Alert)
	s.line("%s", s.dim.Sprint("[s] simpan CSV  [r] sesi baru  [q] keluar"))
}

// ─── Building blocks ────────────────────────────────────────────────────────

func (s *Screen) header(title string) {
	s.line("%s", s.title.Sprint(title))
	s.line("%s", strings.Repeat("─", 46))
}

// renderGrid draws the question numbers, ten per row. The active question
// is bracketed and takes the warning color; visited questions are green.
func (s *Screen) renderGrid(snap service.Snapshot) {
	var row strings.Builder
	for q := 1; q <= snap.NumQuestions; q++ {
		cell := fmt.Sprintf("%3d ", q)
		switch {
		case q == snap.ActiveQuestion:
			cell = fmt.Sprintf("[%2d]", q)
			switch snap.Warning {
			case service.WarnHigh:
				cell = s.danger.Sprint(cell)
			case service.WarnMedium:
				cell = s.warn.Sprint(cell)
			default:
				cell = s.accent.Sprint(cell)
			}
		case q-1 < len(snap.Visited) && snap.Visited[q-1]:
			cell = s.ok.Sprint(cell)
		default:
			cell = s.dim.Sprint(cell)
		}
		row.WriteString(cell)

		if q%questionsPerRow == 0 || q == snap.NumQuestions {
			s.line("%s", row.String())
			row.Reset()
		}
	}
}

func (s *Screen) renderAlert(al *alert.Alert) {
	if al == nil {
		return
	}
	msg := al.Message
	if al.Detail != "" {
		msg += " " + al.Detail
	}
	if al.Error {
		s.line("%s", s.danger.Sprint(msg))
	} else {
		s.line("%s", s.ok.Sprint(msg))
	}
	if len(al.Fields) > 0 {
		fields := make([]string, 0, len(al.Fields))
		for f := range al.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			s.line("%s", s.danger.Sprintf("  - %s: %s", f, al.Fields[f]))
		}
	}
}

// line writes one row ending in CRLF, as raw mode requires.
func (s *Screen) line(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
	fmt.Fprint(s.out, "\r\n")
}

// writeBlock converts a multi-line block (e.g. a rendered table) to CRLF
// line endings.
func (s *Screen) writeBlock(text string) {
	for _, ln := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		s.line("%s", ln)
	}
}

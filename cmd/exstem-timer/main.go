package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stemsi/exstem-timer/internal/app"
	"github.com/stemsi/exstem-timer/internal/config"
	"github.com/stemsi/exstem-timer/internal/export"
	"github.com/stemsi/exstem-timer/internal/logger"
	"github.com/stemsi/exstem-timer/internal/model"
	"github.com/stemsi/exstem-timer/internal/preset"
	"github.com/stemsi/exstem-timer/internal/service"
	"github.com/stemsi/exstem-timer/internal/ui"
	"github.com/stemsi/exstem-timer/internal/validator"
)

var (
	flagName       string
	flagQuestions  int
	flagMinutes    int
	flagPreset     string
	flagExportDir  string
	flagAutoExport bool
	flagSkipForm   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "exstem-timer",
	Short: "Terminal timer for proctored exams",
	Long: `exstem-timer runs a single-screen exam timer: a setup form, a short
countdown, a per-question stopwatch with pace warnings, and a CSV recap
of where the time went.`,
	RunE:         runTimer,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTimer(cmd *cobra.Command, args []string) error {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	if flagExportDir != "" {
		cfg.ExportDir = flagExportDir
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	log.Info().
		Str("log_level", cfg.LogLevel).
		Str("export_dir", cfg.ExportDir).
		Msg("Starting ExStem Timer")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Resolve Session Defaults ──────────────────────────────────────
	fs := afero.NewOsFs()

	defaults := model.SetupRequest{
		StudentName:  cfg.DefaultName,
		NumQuestions: cfg.DefaultQuestions,
		TotalMinutes: cfg.DefaultMinutes,
	}
	greeting := ""
	if flagPreset != "" {
		loader := preset.NewLoader(fs, log)
		if err := loader.LoadFromDir(cfg.PresetDir); err != nil {
			return fmt.Errorf("load presets: %w", err)
		}
		p := loader.Get(flagPreset)
		if p == nil {
			return fmt.Errorf("preset %q not found in %s", flagPreset, cfg.PresetDir)
		}
		defaults = *p.Request()
		greeting = p.Greeting
		log.Info().Str("preset", p.Name).Msg("Preset applied")
	}
	if cmd.Flags().Changed("name") {
		defaults.StudentName = flagName
	}
	if cmd.Flags().Changed("questions") {
		defaults.NumQuestions = flagQuestions
	}
	if cmd.Flags().Changed("minutes") {
		defaults.TotalMinutes = flagMinutes
	}

	// ─── Initialize Components ─────────────────────────────────────────
	clock := clockwork.NewRealClock()
	sessionService := service.NewSessionService(clock, cfg.CountdownTicks, log)
	exporter := export.NewExporter(fs, cfg.ExportDir, clock, log)
	screen := ui.NewScreen(os.Stdout)

	// ─── Run Application Loop ──────────────────────────────────────────
	application := app.New(clock, sessionService, exporter, screen, log, app.Options{
		Defaults:   defaults,
		Greeting:   greeting,
		SkipForm:   flagSkipForm,
		AutoExport: flagAutoExport,
	})

	return application.Run(context.Background())
}

func init() {
	rootCmd.Flags().StringVar(&flagName, "name", "", "student name shown on screen")
	rootCmd.Flags().IntVar(&flagQuestions, "questions", 0, "number of questions, overrides DEFAULT_QUESTIONS")
	rootCmd.Flags().IntVar(&flagMinutes, "minutes", 0, "exam duration in minutes, overrides DEFAULT_MINUTES")
	rootCmd.Flags().StringVar(&flagPreset, "preset", "", "preset name to pre-fill the setup form")
	rootCmd.Flags().StringVar(&flagExportDir, "export-dir", "", "directory for CSV recaps, overrides EXPORT_DIR")
	rootCmd.Flags().BoolVar(&flagAutoExport, "auto-export", false, "write the CSV recap as soon as the exam ends")
	rootCmd.Flags().BoolVar(&flagSkipForm, "skip-form", false, "start the countdown immediately with the given settings")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

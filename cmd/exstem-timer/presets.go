package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stemsi/exstem-timer/internal/config"
	"github.com/stemsi/exstem-timer/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the exam presets found in the preset directory",
	RunE:  runPresets,
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	loader := preset.NewLoader(afero.NewOsFs(), zerolog.Nop())
	if err := loader.LoadFromDir(cfg.PresetDir); err != nil {
		return fmt.Errorf("load presets: %w", err)
	}

	list := loader.List()
	if len(list) == 0 {
		fmt.Printf("No presets found in %s\n", cfg.PresetDir)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Questions", "Minutes", "Description")
	for _, p := range list {
		table.Append(p.Name, strconv.Itoa(p.NumQuestions), strconv.Itoa(p.TotalMinutes), p.Description)
	}
	table.Render()

	fmt.Printf("\nTotal presets: %d\n", len(list))
	return nil
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

// Package main provides the CLI entrypoint for keyscope.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keyscope/internal/analysis"
	"github.com/verte-zerg/keyscope/internal/config"
	"github.com/verte-zerg/keyscope/internal/dashui"
	"github.com/verte-zerg/keyscope/internal/export"
	"github.com/verte-zerg/keyscope/internal/model"
	"github.com/verte-zerg/keyscope/internal/report"
	"github.com/verte-zerg/keyscope/internal/store"
)

const (
	defaultTop     = 10
	defaultTopApps = 5
)

var (
	analyzeTop      int
	analyzeMaxGap   int64
	analyzeMinHold  int64
	analyzeMaxHold  int64
	analyzeDays     int
	analyzeDetailed bool

	statsDays int

	exportFormat string
	exportOutput string
	exportDays   int

	importInput string

	dashTop     int
	dashMaxGap  int64
	dashMinHold int64
	dashMaxHold int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keyscope",
		Short:         "Keystroke statistics toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze typing patterns",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().IntVar(&analyzeTop, "top", defaultTop, "number of top items to show")
	cmd.Flags().Int64Var(&analyzeMaxGap, "max-gap", analysis.DefaultMaxGapMs, "max gap in ms before a session break")
	cmd.Flags().Int64Var(&analyzeMinHold, "min-hold", analysis.DefaultMinHoldMs, "min valid hold duration in ms")
	cmd.Flags().Int64Var(&analyzeMaxHold, "max-hold", analysis.DefaultMaxHoldMs, "max valid hold duration in ms")
	cmd.Flags().IntVar(&analyzeDays, "days", 0, "limit to last N days (0 = all)")
	cmd.Flags().BoolVar(&analyzeDetailed, "detailed", false, "show key codes and per-pair timing")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "top", &analyzeTop, fileCfg.Analysis.Top)
	applyInt64Config(cmd, "max-gap", &analyzeMaxGap, fileCfg.Analysis.MaxGapMs)
	applyInt64Config(cmd, "min-hold", &analyzeMinHold, fileCfg.Analysis.MinHoldMs)
	applyInt64Config(cmd, "max-hold", &analyzeMaxHold, fileCfg.Analysis.MaxHoldMs)

	filterCfg := analysis.FilterConfig{
		MaxGapMs:  analyzeMaxGap,
		MinHoldMs: analyzeMinHold,
		MaxHoldMs: analyzeMaxHold,
	}
	if err := validateFilterConfig(filterCfg); err != nil {
		return err
	}
	if analyzeTop <= 0 {
		return fmt.Errorf("--top must be > 0")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	events, err := loadEvents(cmd.Context(), st, analyzeDays)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		logErrln("No keystroke data recorded yet.")
		return nil
	}

	segments := filterCfg.SegmentByGap(events)
	filtered := analysis.Flatten(segments)

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Total events:    %d\n", len(events)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Typing segments: %d (gaps > %dms filtered)\n", len(segments), filterCfg.MaxGapMs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Analyzed events: %d\n\n", len(filtered)); err != nil {
		return err
	}

	freq := analysis.NewFrequencyAnalysis(filtered)
	if err := report.RenderFrequency(out, freq, analyzeTop, analyzeDetailed); err != nil {
		return fmt.Errorf("failed to render frequency report: %w", err)
	}

	timing := analysis.NewTimingAnalysis(filtered, filterCfg)
	if err := report.RenderTiming(out, timing, analyzeTop, analyzeDetailed); err != nil {
		return fmt.Errorf("failed to render timing report: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage-level statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsDays, "days", 0, "limit to last N days (0 = all)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	total, err := st.TotalCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}
	presses, err := st.PressCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count presses: %w", err)
	}
	start, end, hasRange, err := st.DateRange(ctx)
	if err != nil {
		return fmt.Errorf("failed to load date range: %w", err)
	}
	topApps, err := st.TopApplications(ctx, defaultTopApps)
	if err != nil {
		return fmt.Errorf("failed to load top applications: %w", err)
	}

	summary := report.Summary{
		TotalEvents: total,
		PressCount:  presses,
		HasRange:    hasRange,
		StartMs:     start,
		EndMs:       end,
	}
	for _, app := range topApps {
		pct := 0.0
		if presses > 0 {
			pct = float64(app.Count) / float64(presses) * 100.0
		}
		summary.TopApps = append(summary.TopApps, report.AppUsage{
			Name:       app.Application,
			Count:      app.Count,
			Percentage: pct,
		})
	}
	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, summary); err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	events, err := loadEvents(ctx, st, statsDays)
	if err != nil {
		return err
	}
	return report.RenderHourlyBars(out, events, report.TerminalWidth())
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export keystroke data",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVar(&exportOutput, "output", "", "output file path")
	cmd.Flags().IntVar(&exportDays, "days", 0, "limit to last N days (0 = all)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if exportOutput == "" {
		return fmt.Errorf("--output is required")
	}
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q (use csv or json)", exportFormat)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	events, err := loadEvents(cmd.Context(), st, exportDays)
	if err != nil {
		return err
	}

	file, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logErrf("failed to close output file: %v\n", cerr)
		}
	}()

	switch exportFormat {
	case "csv":
		err = export.WriteCSV(file, events)
	case "json":
		err = export.WriteJSON(file, events)
	}
	if err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	logErrf("Exported %d events to %s\n", len(events), exportOutput)
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import keystroke data from a JSON file",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importInput, "input", "", "input file path")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	if importInput == "" {
		return fmt.Errorf("--input is required")
	}
	file, err := os.Open(importInput)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logErrf("failed to close input file: %v\n", cerr)
		}
	}()

	events, err := export.ReadJSON(file)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.InsertEvents(cmd.Context(), events); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}
	logErrf("Imported %d events\n", len(events))
	return nil
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open interactive dashboard",
		Args:  cobra.NoArgs,
		RunE:  runDashboardCmd,
	}
	cmd.Flags().IntVar(&dashTop, "top", defaultTop, "number of top items to show")
	cmd.Flags().Int64Var(&dashMaxGap, "max-gap", analysis.DefaultMaxGapMs, "max gap in ms before a session break")
	cmd.Flags().Int64Var(&dashMinHold, "min-hold", analysis.DefaultMinHoldMs, "min valid hold duration in ms")
	cmd.Flags().Int64Var(&dashMaxHold, "max-hold", analysis.DefaultMaxHoldMs, "max valid hold duration in ms")
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "top", &dashTop, fileCfg.Analysis.Top)
	applyInt64Config(cmd, "max-gap", &dashMaxGap, fileCfg.Analysis.MaxGapMs)
	applyInt64Config(cmd, "min-hold", &dashMinHold, fileCfg.Analysis.MinHoldMs)
	applyInt64Config(cmd, "max-hold", &dashMaxHold, fileCfg.Analysis.MaxHoldMs)

	filterCfg := analysis.FilterConfig{
		MaxGapMs:  dashMaxGap,
		MinHoldMs: dashMinHold,
		MaxHoldMs: dashMaxHold,
	}
	if err := validateFilterConfig(filterCfg); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := dashui.NewModel(st, dashui.Config{Filter: filterCfg, Top: dashTop})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func loadEvents(ctx context.Context, st *store.Store, days int) ([]model.KeystrokeEvent, error) {
	var events []model.KeystrokeEvent
	var err error
	if days > 0 {
		events, err = st.ListEventsSince(ctx, days)
	} else {
		events, err = st.ListEvents(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}

func validateFilterConfig(cfg analysis.FilterConfig) error {
	if cfg.MaxGapMs <= 0 {
		return fmt.Errorf("--max-gap must be > 0")
	}
	if cfg.MinHoldMs < 0 {
		return fmt.Errorf("--min-hold must be >= 0")
	}
	if cfg.MaxHoldMs < cfg.MinHoldMs {
		return fmt.Errorf("--max-hold must be >= --min-hold")
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target *int, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target *int64, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keyscope configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# max-gap-ms = %d      # Max gap in ms before a session break
# min-hold-ms = %d       # Min valid hold duration in ms
# max-hold-ms = %d     # Max valid hold duration in ms
# top = %d              # Number of top items to show
`,
		analysis.DefaultMaxGapMs,
		analysis.DefaultMinHoldMs,
		analysis.DefaultMaxHoldMs,
		defaultTop,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

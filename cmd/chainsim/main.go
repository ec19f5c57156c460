package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chainsim/internal/analysis"
	"github.com/san-kum/chainsim/internal/config"
	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/export"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/metrics"
	"github.com/san-kum/chainsim/internal/optim"
	"github.com/san-kum/chainsim/internal/sim"
	"github.com/san-kum/chainsim/internal/storage"
	"github.com/san-kum/chainsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	debug      bool
	dt         float64
	frameCount int
	configFile string
	preset     string
	theme      string
	// export-svg
	frameIdx   int
	outFile    string
	trajectory bool
	// compare, tune
	dtList   string
	massList string
)

func main() {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:   "chainsim",
		Short: "verlet rope and chain simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chainsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug log to logs/")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "live view theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "rope", "use preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in ms")
	runCmd.Flags().IntVar(&frameCount, "frames", config.DefaultFrames, "number of frames")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "drag the chain with the mouse in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot handle position and stretch",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sway frequency and phase portrait of the handle",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a frame or the handle path to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame to render (-1 for last)")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&trajectory, "trajectory", false, "draw the handle path instead of a frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, p := range config.ListPresets() {
				fmt.Fprintf(w, "  %s\t%s\n", p, config.Describe(p))
			}
			return w.Flush()
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run one preset at several timesteps side by side",
		Args:  cobra.NoArgs,
		RunE:  compareTimesteps,
	}
	compareCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	compareCmd.Flags().StringVar(&preset, "preset", "rope", "use preset configuration")
	compareCmd.Flags().StringVar(&dtList, "dts", "8,16,33", "comma separated timesteps in ms")
	compareCmd.Flags().IntVar(&frameCount, "frames", config.DefaultFrames, "number of frames")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search mass and timestep for the stiffest chain",
		Args:  cobra.NoArgs,
		RunE:  tuneChain,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "rope", "use preset configuration")
	tuneCmd.Flags().StringVar(&dtList, "dts", "8,16,33", "comma separated timesteps in ms")
	tuneCmd.Flags().StringVar(&massList, "masses", "100,1000,10000", "comma separated particle masses")
	tuneCmd.Flags().IntVar(&frameCount, "frames", config.DefaultFrames, "number of frames")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, compareCmd, tuneCmd)

	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file or preset, then applies any flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		log.Printf("config: %s", configFile)
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		log.Printf("config: preset %s", name)
	}

	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("frames") {
		cfg.Run.Frames = frameCount
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSimulator builds a fresh chain and simulator from cfg. Fling events are
// logged.
func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	chain, settings, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	ctrl := control.New(settings)
	name := cfg.Name
	ctrl.OnFling(func(e control.FlingEvent) {
		log.Printf("%s: fling from (%.1f, %.1f) to (%.1f, %.1f), %.1f units",
			name, e.Origin.X, e.Origin.Y, e.Release.X, e.Release.Y, e.Distance)
	})

	return sim.New(chain, integrators.NewPositionVerlet(), ctrl, cfg.GravityForce())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Defaults(cfg.Run.StretchTolerance) {
		s.AddMetric(m)
	}

	fmt.Printf("running %s (%d particles, %d frames)...\n", cfg.Name, len(s.Chain().Particles), cfg.Run.Frames)
	start := time.Now()

	result, err := s.Run(context.Background(), cfg.Keyframes(), cfg.RunConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	runID, err := st.Save(storage.RunInfo{
		Preset:  cfg.Name,
		Dt:      cfg.Run.Dt,
		Chain:   s.Chain(),
		Gravity: s.Gravity(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("flings: %d\n", result.Flings)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(ms map[string]float64) {
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, ms[name])
	}
}

func buildLive(cmd *cobra.Command, name string) (viz.Model, error) {
	cfg, err := loadConfig(cmd, name)
	if err != nil {
		return viz.Model{}, err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(s, viz.Options{
		Name:             cfg.Name,
		StretchTolerance: cfg.Run.StretchTolerance,
	}), nil
}

func runProgram(m tea.Model) error {
	viz.SetTheme(theme)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	name := "rope"
	if len(args) > 0 {
		name = args[0]
	}
	m, err := buildLive(cmd, name)
	if err != nil {
		return err
	}
	return runProgram(m)
}

func runPicker() error {
	p := viz.NewPicker(config.ListPresets(), config.Descriptions(), func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		s, err := newSimulator(cfg)
		if err != nil {
			return viz.Model{}, err
		}
		return viz.NewModel(s, viz.Options{Name: cfg.Name, StretchTolerance: cfg.Run.StretchTolerance}), nil
	})
	return runProgram(p)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tDT\tPARTICLES\tFLINGS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1fms\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Particles,
			run.Flings,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(frames))

	stretch := make([]float64, len(frames))
	for i, f := range frames {
		stretch[i] = metrics.FrameStretch(f)
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"handle x", storage.HandleSeries(frames, 0)},
		{"handle y", storage.HandleSeries(frames, 1)},
		{"max stretch", stretch},
	}

	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	xs := storage.HandleSeries(frames, 0)
	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 4 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (handle x)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(xs, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	crossings := analysis.HandleCrossings(frames, 0, mean)
	fmt.Printf("crossings of x=%.1f: %d\n", mean, len(crossings))
	if p := analysis.Period(crossings); p > 0 {
		fmt.Printf("crossing period: %.3f s\n", p/1000)
	}

	fmt.Println("\nphase portrait (handle x vs vx):")
	fmt.Print(analysis.PhasePortraitToASCII(analysis.HandlePhase(frames, 0), 70, 20))

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time", "state", "handle_x", "handle_y", "max_stretch"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		h := f.HandlePos()
		row := []string{
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			f.State.String(),
			strconv.FormatFloat(h.X, 'f', 6, 64),
			strconv.FormatFloat(h.Y, 'f', 6, 64),
			strconv.FormatFloat(metrics.FrameStretch(f), 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	style := export.DefaultStyle()
	var svg string
	if trajectory {
		svg = export.TrajectoryToSVG(export.HandlePath(frames), meta.Width, meta.Height, style)
	} else {
		idx := frameIdx
		if idx < 0 {
			idx = len(frames) - 1
		}
		if idx >= len(frames) {
			return fmt.Errorf("frame %d out of range (run has %d)", idx, len(frames))
		}
		svg = export.FrameToSVG(frames[idx], meta.Width, meta.Height, style)
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

// parseFloats reads a comma separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func compareTimesteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	dts, err := parseFloats(dtList)
	if err != nil {
		return err
	}

	cfgs := make([]sim.Config, len(dts))
	for i, d := range dts {
		rc := cfg.RunConfig()
		rc.Dt = d
		rc.KeepFrames = false
		cfgs[i] = rc
	}

	factory := func() (*sim.Simulator, error) {
		s, err := newSimulator(cfg)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Defaults(cfg.Run.StretchTolerance) {
			s.AddMetric(m)
		}
		return s, nil
	}

	start := time.Now()
	results, err := sim.Sweep(context.Background(), factory, cfg.Keyframes(), cfgs)
	if err != nil {
		return err
	}

	fmt.Printf("comparing timesteps for %s (%d frames, %v)\n\n", cfg.Name, cfg.Run.Frames, time.Since(start))
	fmt.Printf("%-8s  %-12s  %-12s  %-12s  %-8s\n", "dt_ms", "max_stretch", "mean_stretch", "handle_y", "errors")
	fmt.Println(strings.Repeat("-", 60))

	for i, r := range results {
		fmt.Printf("%-8.1f  %12.4f  %12.4f  %12.2f  %8d\n",
			dts[i], r.Metrics["max_stretch"], r.Metrics["mean_stretch"], r.Final.HandlePos().Y, len(r.Errors))
	}

	return nil
}

func tuneChain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, preset)
	if err != nil {
		return err
	}
	dts, err := parseFloats(dtList)
	if err != nil {
		return err
	}
	masses, err := parseFloats(massList)
	if err != nil {
		return err
	}

	trial := func(params map[string]float64) (*sim.Simulator, sim.Config, error) {
		c := *cfg
		c.Chain.Mass = params["mass"]
		c.Run.Dt = params["dt"]
		if err := c.Validate(); err != nil {
			return nil, sim.Config{}, err
		}
		s, err := newSimulator(&c)
		if err != nil {
			return nil, sim.Config{}, err
		}
		s.AddMetric(metrics.NewMaxStretch())
		rc := c.RunConfig()
		rc.KeepFrames = false
		return s, rc, nil
	}

	g := optim.NewGridSearch([]string{"mass", "dt"}, [][]float64{masses, dts})
	fmt.Printf("searching %d combinations for %s...\n", len(masses)*len(dts), cfg.Name)

	best, val, err := g.Search(context.Background(), trial, cfg.Keyframes(), "max_stretch")
	if err != nil {
		return err
	}

	fmt.Printf("best: mass=%.1f dt=%.1fms\n", best["mass"], best["dt"])
	fmt.Printf("max_stretch: %.6f\n", val)
	return nil
}

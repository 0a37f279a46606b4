package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/horizon/internal/analysis"
	"github.com/san-kum/horizon/internal/compute"
	"github.com/san-kum/horizon/internal/config"
	"github.com/san-kum/horizon/internal/metrics"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
	"github.com/san-kum/horizon/internal/storage"
	"github.com/san-kum/horizon/internal/vecmath"
	"github.com/san-kum/horizon/internal/viz"
)

const trackedParticles = 3

var (
	dataDir    string
	configFile string
	preset     string
	frames     int
	dt         float64
	particles  int
	method     string
	mass       float64
	seed       int64
	spawnCount int
	backend    string
	exportOut  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "horizon",
		Short: "black hole particle simulator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".horizon", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "analyze tracked orbits of a stored run",
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
	exportJSONCmd.Flags().StringVar(&exportOut, "out", "", "write to file instead of stdout")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame throughput",
		RunE:  benchThroughput,
	}
	addConfigFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-8s particles=%d dt=%g spawn=%d\n",
					name, cfg.Physics.MaxParticles, cfg.Physics.TimeStep, cfg.Run.SpawnCount)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration (low|medium|high)")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "frame timestep")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultMaxParticles, "particle capacity")
	cmd.Flags().StringVar(&method, "method", "rk4", "integration method (rk4|euler|verlet)")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultBlackHoleMass, "black hole mass (kg)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "spawn seed")
	cmd.Flags().IntVar(&spawnCount, "spawn", config.DefaultSpawnCount, "initial particle count")
	cmd.Flags().StringVar(&backend, "backend", "auto", "compute backend (auto|cpu|gl)")
}

// loadConfig resolves preset, config file, and flags; flags win over the
// file, the file wins over the preset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("frames") {
		cfg.Run.Frames = frames
	}
	if cmd.Flags().Changed("dt") {
		cfg.Physics.TimeStep = dt
	}
	if cmd.Flags().Changed("particles") {
		cfg.Physics.MaxParticles = particles
	}
	if cmd.Flags().Changed("method") {
		cfg.Physics.IntegrationMethod = method
	}
	if cmd.Flags().Changed("mass") {
		cfg.BlackHole.Mass = mass
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("spawn") {
		cfg.Run.SpawnCount = spawnCount
	}
	if cmd.Flags().Changed("backend") {
		cfg.Compute.Backend = backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deviceBackend builds the configured device backend, or nil for a
// CPU-only run.
func deviceBackend(cfg *config.Config) compute.Backend {
	if cfg.Compute.Backend == "cpu" {
		return nil
	}
	gpu := compute.NewOpenGLBackend(cfg.Physics.MaxParticles, cfg.Compute.ShaderPath,
		cfg.Compute.WorkGroupSize, cfg.Compute.MaxPollAttempts)
	if gpu.Available() || cfg.Compute.Backend == "gl" {
		return gpu
	}
	return nil
}

func newController(cfg *config.Config) (*sim.Controller, error) {
	return sim.New(cfg, deviceBackend(cfg))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	controller, err := newController(cfg)
	if err != nil {
		return err
	}
	defer controller.Terminate()

	energy := metrics.NewTotalEnergy(controller.BlackHole())
	drift := metrics.NewEnergyDrift(controller.BlackHole())
	captures := metrics.NewCaptureCount()
	controller.AddMetric(energy)
	controller.AddMetric(drift)
	controller.AddMetric(captures)

	spawns := sim.SpawnDisk(controller.BlackHole(), cfg.Run.SpawnCount, cfg.Run.SpawnRadiusFactor, cfg.Run.Seed)

	fmt.Printf("running %d frames, %d particles, %s backend...\n",
		cfg.Run.Frames, cfg.Run.SpawnCount, cfg.Compute.Backend)
	start := time.Now()

	result := &storage.RunResult{Frames: make([]storage.Frame, 0, cfg.Run.Frames)}
	var lastStatus sim.Status

	for i := 0; i < cfg.Run.Frames; i++ {
		params := sim.Params{}
		if i == 0 {
			params.SpawnRequests = spawns
		}

		status, err := controller.Step(cfg.Physics.TimeStep, params)
		if err != nil {
			return err
		}
		lastStatus = status

		result.Frames = append(result.Frames, storage.Frame{
			Time:    status.Time,
			Active:  status.ActiveParticles,
			Energy:  energy.Value(),
			Tracked: trackedPositions(controller),
		})
	}

	elapsed := time.Since(start)

	result.Metrics = map[string]float64{
		energy.Name():   energy.Value(),
		drift.Name():    drift.Value(),
		captures.Name(): captures.Value(),
	}

	runID, err := st.Save(storage.RunMetadata{
		Seed:          cfg.Run.Seed,
		Dt:            cfg.Physics.TimeStep,
		Integrator:    cfg.Physics.IntegrationMethod,
		Backend:       string(lastStatus.Mode),
		BlackHoleMass: cfg.BlackHole.Mass,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f frames/sec)\n", elapsed, float64(cfg.Run.Frames)/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("active particles: %d\n", lastStatus.ActiveParticles)
	if lastStatus.Faulted {
		fmt.Printf("device fault: %s\n", lastStatus.FaultReason)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func trackedPositions(controller *sim.Controller) []vecmath.Vector3 {
	views := controller.Snapshot()
	n := trackedParticles
	if len(views) < n {
		n = len(views)
	}
	tracked := make([]vecmath.Vector3, n)
	for i := 0; i < n; i++ {
		tracked[i] = views[i].Position
	}
	return tracked
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(func() (*sim.Controller, error) {
		return newController(cfg)
	}, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
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
	fmt.Fprintln(w, "ID\tTIME\tFRAMES\tDT\tINTEG\tBACKEND\tMASS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4fs\t%s\t%s\t%.3g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Integrator,
			run.Backend,
			run.BlackHoleMass,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("frames: %d\n\n", len(frames))

	active := make([]float64, len(frames))
	energy := make([]float64, len(frames))
	for i, f := range frames {
		active[i] = float64(f.Active)
		energy[i] = f.Energy
	}

	fmt.Println(asciigraph.Plot(active,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("active particles")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("total energy")))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 || len(frames[0].Tracked) == 0 {
		return fmt.Errorf("no tracked particles to analyze")
	}

	bh := physics.NewBlackHole(meta.BlackHoleMass, vecmath.Zero())
	rs := bh.SchwarzschildRadius()

	fmt.Printf("run: %s (rs=%.4g m)\n\n", meta.ID, rs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLE\tR_MIN/RS\tR_MAX/RS\tR_MEAN/RS\tECC\tFREQ (Hz)")

	for i := range frames[0].Tracked {
		s := analysis.SummarizeOrbit(trackedColumn(frames, i), bh.Position(), meta.Dt)
		fmt.Fprintf(w, "p%d\t%.3f\t%.3f\t%.3f\t%.4f\t%.4g\n",
			i, s.MinRadius/rs, s.MaxRadius/rs, s.MeanRadius/rs, s.Eccentricity, s.RadialFrequency)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	radii := analysis.RadialSeries(trackedColumn(frames, 0), bh.Position())
	if spectrum := analysis.PowerSpectrum(radii); len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum,
			asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("p0 radial power spectrum")))
	}
	return nil
}

// trackedColumn extracts one tracked particle's position history.
func trackedColumn(frames []storage.Frame, idx int) []vecmath.Vector3 {
	positions := make([]vecmath.Vector3, 0, len(frames))
	for _, f := range frames {
		if idx < len(f.Tracked) {
			positions = append(positions, f.Tracked[idx])
		}
	}
	return positions
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, &storage.RunResult{Frames: frames})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	result := &storage.RunResult{Frames: frames, Metrics: meta.Metrics}
	if exportOut != "" {
		return storage.ExportJSONFile(exportOut, *meta, result)
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func benchThroughput(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	counts := []int{1000, 5000, 20000}
	dts := []float64{0.008, 0.016, 0.033}
	benchFrames := 200

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tDT\tFRAMES\tTIME\tFRAMES/SEC")

	for _, count := range counts {
		for _, step := range dts {
			benchCfg := *cfg
			benchCfg.Physics.MaxParticles = count
			benchCfg.Physics.TimeStep = step
			benchCfg.Run.SpawnCount = count

			controller, err := newController(&benchCfg)
			if err != nil {
				return err
			}

			spawns := sim.SpawnDisk(controller.BlackHole(), count, benchCfg.Run.SpawnRadiusFactor, benchCfg.Run.Seed)

			start := time.Now()
			for i := 0; i < benchFrames; i++ {
				params := sim.Params{}
				if i == 0 {
					params.SpawnRequests = spawns
				}
				if _, err := controller.Step(step, params); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			controller.Terminate()

			fmt.Fprintf(w, "%d\t%.3fs\t%d\t%v\t%.0f\n",
				count, step, benchFrames, elapsed.Round(time.Millisecond),
				float64(benchFrames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/san-kum/geartrain/internal/config"
	"github.com/san-kum/geartrain/internal/export"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/motors"
	"github.com/san-kum/geartrain/internal/problem"
	"github.com/san-kum/geartrain/internal/server"
	"github.com/san-kum/geartrain/internal/storage"
	"github.com/san-kum/geartrain/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	problemName string
	motorName   string
	opSet       string
	designVec   string
	workers     int
	save        bool
	asJSON      bool
	theme       string
	addr        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "geartrain",
		Short:        "stepper and spur gear actuator evaluation",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultOutputDir, "run directory")

	designFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "design file (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use a preset design")
		cmd.Flags().StringVar(&problemName, "problem", config.DefaultProblem, "problem used for scoring")
		cmd.Flags().StringVar(&motorName, "motor", config.DefaultMotor, "motor catalog entry")
		cmd.Flags().StringVar(&opSet, "op-set", problem.DefaultOpSet, "operating condition set")
		cmd.Flags().StringVar(&designVec, "x", "", "comma separated design vector, decoded for --problem")
	}

	evalCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "evaluate a design",
		RunE:  evaluate,
	}
	designFlags(evalCmd)
	evalCmd.Flags().Int("curve", 0, "plot the speed-torque curve with this many samples")
	evalCmd.Flags().BoolVar(&save, "save", false, "store the run")
	evalCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "browse a design interactively",
		RunE:  inspect,
	}
	designFlags(inspectCmd)
	inspectCmd.Flags().Int("curve", 60, "speed-torque samples")
	inspectCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "export a design to " + strings.Join(export.Formats, ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  exportDesign,
	}
	designFlags(exportCmd)
	exportCmd.Flags().Int("curve", 60, "speed-torque samples")

	problemCmd := &cobra.Command{
		Use:   "problem [name]",
		Short: "show bounds and sizes of a problem",
		Args:  cobra.ExactArgs(1),
		RunE:  problemInfo,
	}

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot the output speed-torque curve of a design",
		RunE:  plotCurve,
	}
	designFlags(curveCmd)
	curveCmd.Flags().Int("curve", 40, "speed-torque samples")
	curveCmd.Flags().BoolVar(&asJSON, "json", false, "print the samples as JSON")

	batchCmd := &cobra.Command{
		Use:   "batch [problem] [vectors.csv]",
		Short: "evaluate design vectors, one per CSV row, and print F and G",
		Args:  cobra.ExactArgs(2),
		RunE:  batch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "worker count, 0 for all CPUs")

	motorsCmd := &cobra.Command{
		Use:   "motors",
		Short: "list the motor catalog",
		RunE:  listMotors,
	}

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list gear materials",
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset designs",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a design file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			return config.Save(args[0], cfg)
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset design")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the evaluation API",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "batch worker count")

	rootCmd.AddCommand(evalCmd, inspectCmd, exportCmd, problemCmd, curveCmd, batchCmd, motorsCmd, materialsCmd,
		presetsCmd, initCmd, listCmd, showCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// designRequest assembles the evaluation request from the preset, the
// design file and flags, in that order of precedence.
func designRequest(cmd *cobra.Command) (*server.EvaluateRequest, string, error) {
	curve, _ := cmd.Flags().GetInt("curve")
	req := &server.EvaluateRequest{Curve: curve}

	if designVec != "" {
		x, err := parseVector(designVec)
		if err != nil {
			return nil, "", err
		}
		req.X = x
		req.Problem = problemName
		return req, problemName, nil
	}

	cfg := config.DefaultConfig()
	name := "default"
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	if cmd.Flags().Changed("motor") {
		if cfg.Motor == nil {
			cfg.Motor = &config.MotorConfig{FillFactor: config.DefaultFillFactor, RScale: config.DefaultRScale}
		}
		cfg.Motor.Name = motorName
	}
	if cmd.Flags().Changed("op-set") {
		cfg.OpSet = opSet
		cfg.Conditions = nil
	}
	if cmd.Flags().Changed("problem") {
		cfg.Problem = problemName
	}
	req.Config = cfg
	return req, name, nil
}

func resolve(cmd *cobra.Command) (*export.Report, error) {
	req, name, err := designRequest(cmd)
	if err != nil {
		return nil, err
	}
	rep, err := server.Resolve(req)
	if err != nil {
		return nil, err
	}
	rep.Name = name
	return rep, nil
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	x := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("design vector element %d: %w", i, err)
		}
		x[i] = v
	}
	return x, nil
}

func evaluate(cmd *cobra.Command, args []string) error {
	rep, err := resolve(cmd)
	if err != nil {
		return err
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(rep.Name, rep.Problem, rep.Eval)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved run %s\n", runID)
	}

	if asJSON {
		return export.WriteJSON(os.Stdout, rep)
	}
	if err := printReport(os.Stdout, rep); err != nil {
		return err
	}
	if len(rep.Curve) > 0 {
		fmt.Println()
		fmt.Println(viz.CurvePlot(rep.Curve, 70, 12, "output torque [Nm] vs speed [rad/s]"))
	}
	return nil
}

func printReport(out io.Writer, rep *export.Report) error {
	e := rep.Eval
	a := e.Actuator

	fmt.Fprintf(out, "design: %s\n", rep.Name)
	if p := rep.Problem; p != nil {
		verdict := "infeasible"
		if p.Feasible(e) {
			verdict = "feasible"
		}
		fmt.Fprintf(out, "problem: %s (%s)\n", p.Name, verdict)
	}
	for _, line := range viz.SummaryLines(e) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "collisions: %.4g\n\n", a.InternalCollisions())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tRATIO\tHEIGHT\tCOST\tVOLUME")
	for i, c := range a.Components() {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.2f\t%.4g\t%.4g\n", i, c.Kind(), c.Ratio(), c.Height(), c.Cost(), c.Volume())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(e.Resistance) > 0 {
		fmt.Fprintln(out)
		idx, _ := a.GearPairs()
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tINTERF\tCR\tGS1\tGS2\tMIN SH\tMIN SF")
		for g, k := range e.Kinematic {
			sh, sf := minSafety(e, g)
			fmt.Fprintf(w, "%d\t%.4g\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\n", idx[g], k[0], k[1], k[2], k[3], sh, sf)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if p := rep.Problem; p != nil {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM\tVALUE\tWEIGHT")
		for i, t := range p.Objectives {
			fmt.Fprintf(w, "f %s\t%.5g\t%g\n", t.Name, e.Objectives[i], t.Weight)
		}
		for i, t := range p.Constraints {
			fmt.Fprintf(w, "g %s\t%.5g\t%g\n", t.Name, e.Constraints[i], t.Weight)
		}
		return w.Flush()
	}
	return nil
}

func minSafety(e *problem.Evaluation, g int) (flank, root float64) {
	for c, r := range e.Resistance[g] {
		f, s := min(r[0], r[1]), min(r[2], r[3])
		if c == 0 || f < flank {
			flank = f
		}
		if c == 0 || s < root {
			root = s
		}
	}
	return flank, root
}

func inspect(cmd *cobra.Command, args []string) error {
	rep, err := resolve(cmd)
	if err != nil {
		return err
	}
	m := viz.NewInspector(rep.Name, rep.Problem, rep.Eval, rep.Curve).WithTheme(theme)
	return viz.RunInspector(m)
}

func exportDesign(cmd *cobra.Command, args []string) error {
	rep, err := resolve(cmd)
	if err != nil {
		return err
	}
	if err := export.Save(args[0], rep); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func plotCurve(cmd *cobra.Command, args []string) error {
	rep, err := resolve(cmd)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.Curve)
	}

	fmt.Printf("design: %s\n\n", rep.Name)
	fmt.Println(viz.CurvePlot(rep.Curve, 70, 12, "output torque [Nm] vs speed [rad/s]"))
	fmt.Println()
	fmt.Println(viz.PowerPlot(rep.Curve, 70, 8, "power [W] (green) and current [A] (yellow)"))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPEED\tTORQUE\tCURRENT\tPOWER")
	for _, pt := range rep.Curve {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.3g\t%.4g\n", pt.Speed, pt.Torque, pt.Current, pt.Power)
	}
	return w.Flush()
}

func problemInfo(cmd *cobra.Command, args []string) error {
	p, err := problem.Get(args[0], nil)
	if err != nil {
		return err
	}
	lower, upper := p.Bounds()
	fmt.Printf("problem: %s\n", p.Name)
	fmt.Printf("stages: %d\n", p.Stages)
	fmt.Printf("bounds (nvars=%d)\n", len(lower))
	fmt.Println(lower)
	fmt.Println(upper)
	fmt.Printf("nobjs: %d %v\n", len(p.Objectives), p.Weights())
	fmt.Printf("nconsts: %d %v\n", len(p.Constraints), p.ConstraintWeights())
	fmt.Printf("ref: %v\n", p.Ref())
	return nil
}

func batch(cmd *cobra.Command, args []string) error {
	p, err := problem.Get(args[0], nil)
	if err != nil {
		return err
	}

	file, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		return err
	}

	xs := make([][]float64, len(records))
	for i, rec := range records {
		if xs[i], err = parseVector(strings.Join(rec, ",")); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	results := p.EvaluateBatch(ctx, xs, workers)

	w := csv.NewWriter(os.Stdout)
	header := []string{"row"}
	for i := range p.Objectives {
		header = append(header, fmt.Sprintf("f%d", i))
	}
	for i := range p.Constraints {
		header = append(header, fmt.Sprintf("g%d", i))
	}
	header = append(header, "feasible", "error")
	if err := w.Write(header); err != nil {
		return err
	}

	for i, res := range results {
		rec := []string{strconv.Itoa(i + 1)}
		if res.Err != nil {
			for range header[1 : len(header)-2] {
				rec = append(rec, "")
			}
			rec = append(rec, "false", res.Err.Error())
		} else {
			f, g := p.Minimized(res.Evaluation)
			for _, v := range append(f, g...) {
				rec = append(rec, strconv.FormatFloat(v, 'g', 10, 64))
			}
			rec = append(rec, strconv.FormatBool(p.Feasible(res.Evaluation)), "")
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func listMotors(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tTURNS\tR [Ohm]\tKM0\tRADIUS\tHEIGHT")
	for _, name := range motors.Names() {
		d, err := motors.Data(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%.4g\t%g\t%g\n", name, d.Nm, d.NwNom, d.RNom, d.Km0, d.MeshR, d.MeshH)
	}
	return w.Flush()
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tE [Pa]\tRHO\tNU\tCOST\tSIGMA_F_LIM\tSIGMA_H_LIM")
	for _, name := range materials.Names() {
		m := materials.MustGet(name)
		fmt.Fprintf(w, "%s\t%.3g\t%g\t%g\t%g\t%.3g\t%.3g\n", m.Name, m.E, m.Rho, m.Nu, m.Cost, m.SigmaFLim, m.SigmaHLim)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tRATIO\tVOLUME\tFEASIBLE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4g\t%t\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ratio,
			run.Volume,
			run.Feasible,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	header, rows, err := st.LoadConditions(runID)
	if err != nil {
		return err
	}
	target, output := column(header, "target_torque"), column(header, "out_torque")
	if len(rows) < 2 || target < 0 || output < 0 {
		return nil
	}

	series := [][]float64{make([]float64, len(rows)), make([]float64, len(rows))}
	for i, row := range rows {
		series[0][i], series[1][i] = row[target], row[output]
	}
	fmt.Println()
	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green),
		asciigraph.Caption("target (default) and output (green) torque per condition"),
	))
	return nil
}

func column(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func serve(cmd *cobra.Command, args []string) error {
	// .env is optional.
	_ = godotenv.Load()

	if v := os.Getenv("GEARTRAIN_ADDR"); v != "" && !cmd.Flags().Changed("addr") {
		addr = v
	}
	opts := server.Options{Workers: workers}
	if v := os.Getenv("GEARTRAIN_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GEARTRAIN_RATE: %w", err)
		}
		opts.Rate = rate.Limit(r)
	}
	if v := os.Getenv("GEARTRAIN_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GEARTRAIN_BURST: %w", err)
		}
		opts.Burst = b
	}
	if dataDir != "" {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		opts.Store = st
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return server.New(opts).ListenAndServe(ctx, addr)
}

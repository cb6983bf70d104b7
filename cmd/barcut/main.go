// Command barcut is a cutting stock optimizer for steel bars and plates.
//
// Optimize a cut list and write the reports:
//
//	barcut -stock 6000 -items cutlist.xlsx -profile UPN120 -pdf report.pdf
//	barcut -preset "Tôle 3000x1500x5" -item Gusset:900:480:4 -dxf plates.dxf
//
// Serve the HTTP API:
//
//	barcut -serve :8080
//
// Build:
//
//	go build -o barcut ./cmd/barcut
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/barcut/internal/engine"
	"github.com/piwi3910/barcut/internal/export"
	"github.com/piwi3910/barcut/internal/mip"
	"github.com/piwi3910/barcut/internal/model"
	"github.com/piwi3910/barcut/internal/project"
	"github.com/piwi3910/barcut/internal/server"
)

func main() {
	opts := parseFlags(os.Args[1:])
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "barcut:", err)
		var unfit *engine.UnfittableItemError
		if errors.As(err, &unfit) || errors.Is(err, engine.ErrInvalidInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts *cliOptions, out io.Writer) error {
	var engineOpts []engine.Option
	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(os.Stderr, "barcut: ", log.LstdFlags)
		engineOpts = append(engineOpts, engine.WithLogger(logger))
	}

	solver, err := mip.ForBackend(opts.backend)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}
	engineOpts = append(engineOpts, engine.WithSolver(solver))

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	inv, invPath, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	catalog, err := project.Catalog(inv, project.DefaultProfilesPath())
	if err != nil {
		logger.Printf("custom profiles ignored: %v", err)
	}

	handled, err := runAdmin(opts, adminState{cfg: cfg, inv: inv, invPath: invPath, catalog: catalog}, out)
	if handled || err != nil {
		return err
	}

	if opts.serve != "" {
		addr := opts.serve
		if addr == "config" {
			addr = cfg.ListenAddr
		}
		r := server.New(server.Config{
			Inventory: inv,
			Profiles:  catalog,
			Defaults:  cfg,
			Options:   engineOpts,
		})
		logger.Printf("listening on %s", addr)
		return r.Run(addr)
	}

	job, err := buildJob(opts, cfg, inv, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opts.compare {
		results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(job.Settings), job.Stock, job.Items, engineOpts...)
		printComparison(out, results)
		return nil
	}

	var profile *model.Profile
	if job.Profile != "" && !job.Stock.Is2D() {
		p, ok := model.FindProfile(catalog, job.Profile)
		if !ok {
			return fmt.Errorf("%w: unknown profile %q", engine.ErrInvalidInput, job.Profile)
		}
		profile = &p
	}

	sol, err := engine.New(job.Settings, engineOpts...).Optimize(ctx, job.Stock, job.Items)
	if err != nil {
		return err
	}
	printSolution(out, sol, profile, job.Settings.MinOffcut)

	if err := writeOutputs(opts, job, sol, profile); err != nil {
		return err
	}

	if opts.saveJob != "" {
		job.Solution = &sol
		if err := project.SaveJob(opts.saveJob, job); err != nil {
			return err
		}
		cfg.AddRecentJob(opts.saveJob)
		if err := project.SaveAppConfig(cfgPath, cfg); err != nil {
			logger.Printf("recent jobs not saved: %v", err)
		}
	}
	return nil
}

func loadConfig(path string) (model.AppConfig, string, error) {
	if path == "" {
		return project.LoadOrCreateAppConfig()
	}
	cfg, err := project.LoadAppConfig(path)
	return cfg, path, err
}

func writeOutputs(opts *cliOptions, job model.Job, sol model.Solution, profile *model.Profile) error {
	if opts.pdfPath != "" {
		ro := export.ReportOptions{Title: job.Name, Profile: profile, MinOffcut: job.Settings.MinOffcut}
		if err := export.ExportPDF(opts.pdfPath, sol, ro); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
	}
	if opts.labelsPath != "" {
		if err := export.ExportLabels(opts.labelsPath, sol); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		if err := export.ExportExcel(opts.xlsxPath, sol); err != nil {
			return fmt.Errorf("excel export: %w", err)
		}
	}
	if opts.dxfPath != "" {
		if err := export.ExportDXF(opts.dxfPath, sol); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
	}
	if opts.chartPath != "" {
		if err := writeFile(opts.chartPath, func(w io.Writer) error { return export.RenderChart(w, sol) }); err != nil {
			return fmt.Errorf("chart export: %w", err)
		}
	}
	if opts.jsonPath != "" {
		encode := func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(sol)
		}
		if opts.jsonPath == "-" {
			return encode(os.Stdout)
		}
		if err := writeFile(opts.jsonPath, encode); err != nil {
			return fmt.Errorf("json export: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSolution(out io.Writer, sol model.Solution, profile *model.Profile, minOffcut int) {
	unit := "mm"
	if sol.Stock.Is2D() {
		unit = "mm²"
	}
	fmt.Fprintf(out, "Stock:       %s\n", sol.Stock)
	est := model.CalculatePurchaseEstimate(sol.Items, sol.Stock, 0)
	fmt.Fprintf(out, "Units:       %d (material bound %d, %.2f exact)\n", sol.TotalUnits, est.UnitsMin, est.UnitsExact)
	fmt.Fprintf(out, "Waste:       %d %s (%.2f%%)\n", sol.TotalWaste, unit, sol.WastePercent())
	fmt.Fprintf(out, "Algorithm:   %s, %d patterns considered\n", sol.Algorithm, sol.PatternsConsidered)
	fmt.Fprintf(out, "Status:      %s\n", statusLine(sol))
	if profile != nil {
		m := sol.Material(*profile)
		fmt.Fprintf(out, "Weight:      %.1f kg bought, %.1f kg scrap (%s)\n", m.PurchasedWeight, m.WasteWeight, profile.Designation)
		fmt.Fprintf(out, "Surface:     %.2f m² to coat\n", m.UsedSurface)
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOUNT\tLAYOUT\tWASTE")
	for i, e := range sol.Entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", i+1, e.Count, export.Layout(sol.Items, e.Pattern), e.Pattern.Waste())
	}
	tw.Flush()

	if offcuts := model.DetectAllOffcuts(sol, minOffcut); len(offcuts) > 0 {
		fmt.Fprintf(out, "\nReusable offcuts: %d, %d %s in total\n", len(offcuts), model.TotalOffcutSize(offcuts), unit)
	}
}

func statusLine(sol model.Solution) string {
	switch {
	case sol.TimedOut:
		if sol.LowerBound > 0 {
			return fmt.Sprintf("time limit reached, best known plan (bound %.2f)", sol.LowerBound)
		}
		return "time limit reached, best known plan"
	case sol.IterationLimitReached:
		return fmt.Sprintf("iteration limit reached after %d rounds", sol.Iterations)
	case sol.Optimal:
		return "optimal"
	}
	return "feasible"
}

func printComparison(out io.Writer, results []engine.ComparisonResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tUNITS\tWASTE\tWASTE %\tOPTIMAL\tTIME")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", r.Scenario.Name, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%t\t%s\n", r.Scenario.Name, r.UnitsUsed, r.TotalWaste, r.WastePercent, r.Optimal, r.Elapsed.Round(time.Millisecond))
	}
	tw.Flush()
}

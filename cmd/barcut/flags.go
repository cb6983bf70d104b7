package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/piwi3910/barcut/internal/importer"
	"github.com/piwi3910/barcut/internal/mip"
	"github.com/piwi3910/barcut/internal/model"
	"github.com/piwi3910/barcut/internal/project"
)

type cliOptions struct {
	stockLength int
	stockWidth  int
	thickness   float64
	preset      string
	itemsPath   string
	items       itemFlags
	name        string

	algorithm string
	objective string
	demand    string
	maxIter   int
	timeout   float64
	minOffcut int
	profile   string
	backend   string

	pdfPath    string
	labelsPath string
	xlsxPath   string
	dxfPath    string
	chartPath  string
	jsonPath   string

	jobPath    string
	saveJob    string
	compare    bool
	serve      string
	configPath string
	verbose    bool

	listJobs        bool
	exportInventory string
	importInventory string
	exportProfile   string
	importProfile   string
	backup          string
	restore         string

	set map[string]bool // flags given on the command line
}

// itemFlags collects repeated -item values.
type itemFlags []string

func (f *itemFlags) String() string { return strings.Join(*f, ",") }

func (f *itemFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func parseFlags(args []string) *cliOptions {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("barcut", flag.ExitOnError)
	fs.IntVar(&opts.stockLength, "stock", 0, "stock length in mm (default from config)")
	fs.IntVar(&opts.stockWidth, "width", 0, "stock width in mm, makes the stock a plate")
	fs.Float64Var(&opts.thickness, "thickness", 0, "plate thickness in mm, used for weight")
	fs.StringVar(&opts.preset, "preset", "", "stock preset name from the inventory")
	fs.StringVar(&opts.itemsPath, "items", "", "cut list file (.csv, .xlsx, .dxf)")
	fs.Var(&opts.items, "item", "demand item label:length[:width]:qty (repeatable)")
	fs.StringVar(&opts.name, "name", "", "job name")

	fs.StringVar(&opts.algorithm, "algorithm", "", "auto, exact or dcg")
	fs.StringVar(&opts.objective, "objective", "", "units or waste")
	fs.StringVar(&opts.demand, "demand", "", "auto, exact-match or at-least")
	fs.IntVar(&opts.maxIter, "max-iter", 0, "column generation round limit")
	fs.Float64Var(&opts.timeout, "timeout", 0, "time budget in seconds, 0 for none")
	fs.IntVar(&opts.minOffcut, "min-offcut", 0, "shortest remnant worth keeping, mm")
	fs.StringVar(&opts.profile, "profile", "", "section designation for weight and surface")
	fs.StringVar(&opts.backend, "ip-backend", mip.BackendBranchBound, "integer solver: branch-and-bound or pseudo-boolean")

	fs.StringVar(&opts.pdfPath, "pdf", "", "write the cutting report PDF")
	fs.StringVar(&opts.labelsPath, "labels", "", "write piece labels PDF")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write the cut list workbook")
	fs.StringVar(&opts.dxfPath, "dxf", "", "write the pattern drawing")
	fs.StringVar(&opts.chartPath, "chart", "", "write the HTML chart page")
	fs.StringVar(&opts.jsonPath, "json", "", "write the solution as JSON, - for stdout")

	fs.StringVar(&opts.jobPath, "job", "", "load a saved job")
	fs.StringVar(&opts.saveJob, "save-job", "", "save the job and its solution")
	fs.BoolVar(&opts.compare, "compare", false, "compare what-if scenarios instead of optimizing once")
	fs.StringVar(&opts.serve, "serve", "", "serve the HTTP API on addr (\"config\" uses the configured address)")
	fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.barcut/config.json)")
	fs.BoolVar(&opts.verbose, "v", false, "log solver progress")

	fs.BoolVar(&opts.listJobs, "list-jobs", false, "list saved and recent jobs")
	fs.StringVar(&opts.exportInventory, "export-inventory", "", "write the stock inventory to a file")
	fs.StringVar(&opts.importInventory, "import-inventory", "", "merge stocks and profiles from a file")
	fs.StringVar(&opts.exportProfile, "export-profile", "", "write the -profile section to a file")
	fs.StringVar(&opts.importProfile, "import-profile", "", "add a section to the custom catalog")
	fs.StringVar(&opts.backup, "backup", "", "write config, inventory and custom profiles to one file")
	fs.StringVar(&opts.restore, "restore", "", "restore a backup into ~/.barcut")
	fs.Parse(args)

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts
}

// parseItem reads label:length:qty for bars and label:length:width:qty for plates.
func parseItem(s string) (model.DemandItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return model.DemandItem{}, fmt.Errorf("item %q: want label:length[:width]:qty", s)
	}
	nums := make([]int, 0, 3)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.DemandItem{}, fmt.Errorf("item %q: %w", s, err)
		}
		nums = append(nums, n)
	}
	label := strings.TrimSpace(parts[0])
	if len(nums) == 3 {
		return model.NewPlateItem(label, nums[0], nums[1], nums[2]), nil
	}
	return model.NewDemandItem(label, nums[0], nums[1]), nil
}

// buildJob assembles the job from a saved file or from flags. Flags given
// explicitly override the saved job and the config defaults.
func buildJob(opts *cliOptions, cfg model.AppConfig, inv model.Inventory, logger *log.Logger) (model.Job, error) {
	var job model.Job
	if opts.jobPath != "" {
		loaded, err := project.LoadJob(opts.jobPath)
		if err != nil {
			return model.Job{}, err
		}
		job = loaded
	} else {
		job = model.NewJob("barcut")
		cfg.ApplyToSettings(&job.Settings)
		job.Stock = model.NewBar("", cfg.DefaultStockLength)
		job.Profile = cfg.DefaultProfile
	}
	if opts.name != "" {
		job.Name = opts.name
	}

	if opts.preset != "" {
		p := inv.FindStockByName(opts.preset)
		if p == nil {
			return model.Job{}, fmt.Errorf("unknown stock preset %q, have %s", opts.preset, strings.Join(inv.StockNames(), ", "))
		}
		job.Stock = p.ToStockUnit()
		if p.Profile != "" {
			job.Profile = p.Profile
		}
	}
	if opts.set["stock"] {
		job.Stock.Length = opts.stockLength
	}
	if opts.set["width"] {
		job.Stock.Width = opts.stockWidth
	}
	if opts.set["thickness"] {
		job.Stock.Thickness = opts.thickness
	}
	if opts.set["profile"] {
		job.Profile = opts.profile
	}

	if opts.itemsPath != "" {
		res := importer.ImportFile(opts.itemsPath)
		for _, w := range res.Warnings {
			logger.Printf("%s: %s", opts.itemsPath, w)
		}
		if len(res.Errors) > 0 {
			return model.Job{}, fmt.Errorf("%s: %s", opts.itemsPath, strings.Join(res.Errors, "; "))
		}
		job.Items = append(job.Items, res.Items...)
	}
	for _, s := range opts.items {
		it, err := parseItem(s)
		if err != nil {
			return model.Job{}, err
		}
		job.Items = append(job.Items, it)
	}

	applySettingFlags(opts, &job.Settings)
	job.Settings = job.Settings.Normalize()
	return job, nil
}

func applySettingFlags(opts *cliOptions, s *model.Settings) {
	if opts.set["algorithm"] {
		s.Algorithm = model.Algorithm(opts.algorithm)
	}
	if opts.set["objective"] {
		s.Objective = model.Objective(opts.objective)
	}
	if opts.set["demand"] {
		s.Demand = model.DemandMode(opts.demand)
	}
	if opts.set["max-iter"] {
		s.MaxIterations = opts.maxIter
	}
	if opts.set["timeout"] {
		s.TimeoutSeconds = opts.timeout
	}
	if opts.set["min-offcut"] {
		s.MinOffcut = opts.minOffcut
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/piwi3910/barcut/internal/project"
)

// adminState is the persisted data the maintenance flags operate on.
type adminState struct {
	cfg     model.AppConfig
	inv     model.Inventory
	invPath string
	catalog []model.Profile
}

// runAdmin handles the maintenance flags. It reports whether one of them
// was given, in which case no optimization runs.
func runAdmin(opts *cliOptions, st adminState, out io.Writer) (bool, error) {
	switch {
	case opts.listJobs:
		jobs, err := project.ListJobs(project.DefaultJobsDir())
		if err != nil {
			return true, err
		}
		for _, j := range jobs {
			fmt.Fprintln(out, j)
		}
		if len(st.cfg.RecentJobs) > 0 {
			fmt.Fprintln(out, "\nRecent:")
			for _, j := range st.cfg.RecentJobs {
				fmt.Fprintln(out, " ", j)
			}
		}
		return true, nil

	case opts.exportInventory != "":
		if err := project.ExportInventory(opts.exportInventory, st.inv); err != nil {
			return true, fmt.Errorf("inventory export: %w", err)
		}
		fmt.Fprintf(out, "inventory written to %s\n", opts.exportInventory)
		return true, nil

	case opts.importInventory != "":
		merged, err := project.ImportInventory(opts.importInventory, st.inv)
		if err != nil {
			return true, fmt.Errorf("inventory import: %w", err)
		}
		if err := project.SaveInventory(st.invPath, merged); err != nil {
			return true, err
		}
		fmt.Fprintf(out, "inventory: %d stocks, %d profiles\n", len(merged.Stocks), len(merged.Profiles))
		return true, nil

	case opts.exportProfile != "":
		p, ok := model.FindProfile(st.catalog, opts.profile)
		if !ok {
			return true, fmt.Errorf("unknown profile %q", opts.profile)
		}
		if err := project.ExportProfile(opts.exportProfile, p); err != nil {
			return true, fmt.Errorf("profile export: %w", err)
		}
		fmt.Fprintf(out, "%s written to %s\n", p.Designation, opts.exportProfile)
		return true, nil

	case opts.importProfile != "":
		p, err := project.ImportProfile(opts.importProfile)
		if err != nil {
			return true, fmt.Errorf("profile import: %w", err)
		}
		custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
		if err != nil {
			return true, err
		}
		custom = project.MergeProfiles(custom, []model.Profile{p}, true)
		if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), custom); err != nil {
			return true, err
		}
		fmt.Fprintf(out, "profile %s added\n", p.Designation)
		return true, nil

	case opts.backup != "":
		custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
		if err != nil {
			return true, err
		}
		if err := project.ExportAllData(opts.backup, st.cfg, st.inv, custom); err != nil {
			return true, err
		}
		fmt.Fprintf(out, "backup written to %s\n", opts.backup)
		return true, nil

	case opts.restore != "":
		b, err := project.RestoreAllData(opts.restore, project.DefaultConfigDir())
		if err != nil {
			return true, err
		}
		fmt.Fprintf(out, "restored backup from %s (%d stocks, %d custom profiles)\n", b.CreatedAt, len(b.Inventory.Stocks), len(b.CustomProfiles))
		return true, nil
	}
	return false, nil
}

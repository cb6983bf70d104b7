package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/barcut/internal/model"
)

func sampleJob(t *testing.T) model.Job {
	t.Helper()
	job := model.NewJob("Hangar")
	job.Stock = model.NewBar("UPN100 6m", 6000)
	job.Profile = "UPN100"
	job.Items = []model.DemandItem{
		model.NewDemandItem("Post", 3000, 2),
		model.NewDemandItem("Rail", 2000, 3),
	}
	p, err := model.NewBarPattern([]int{2, 0}, job.Items, job.Stock)
	if err != nil {
		t.Fatal(err)
	}
	q, err := model.NewBarPattern([]int{0, 3}, job.Items, job.Stock)
	if err != nil {
		t.Fatal(err)
	}
	sol := model.NewSolution(job.Stock, job.Items, []model.Entry{{Pattern: p, Count: 1}, {Pattern: q, Count: 1}})
	job.Solution = &sol
	return job
}

func TestSaveAndLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hangar"+JobExtension)
	job := sampleJob(t)

	if err := SaveJob(path, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	loaded, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}

	if loaded.Name != "Hangar" || loaded.Profile != "UPN100" {
		t.Errorf("unexpected job header %+v", loaded)
	}
	if len(loaded.Items) != 2 || loaded.Items[1].Quantity != 3 {
		t.Errorf("unexpected items %+v", loaded.Items)
	}
	if loaded.Solution == nil {
		t.Fatal("expected solution to round-trip")
	}
	if loaded.Solution.TotalUnits != 2 || len(loaded.Solution.Entries) != 2 {
		t.Errorf("unexpected solution %+v", loaded.Solution)
	}
	if _, ok := loaded.Solution.Entries[1].Pattern.(model.BarPattern); !ok {
		t.Errorf("expected bar pattern, got %T", loaded.Solution.Entries[1].Pattern)
	}
}

func TestLoadJobFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal"+JobExtension)
	content := `{"name":"min","stock":{"length":6000},"items":[{"label":"A","length":1000,"quantity":2}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if job.Settings.MaxIterations != model.DefaultSettings().MaxIterations {
		t.Errorf("expected default max iterations, got %d", job.Settings.MaxIterations)
	}
	if job.Settings.Algorithm != model.AlgorithmAuto {
		t.Errorf("expected auto algorithm, got %s", job.Settings.Algorithm)
	}
}

func TestLoadJobInvalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadJob(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	noItems := filepath.Join(dir, "empty"+JobExtension)
	if err := os.WriteFile(noItems, []byte(`{"name":"x","stock":{"length":6000}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJob(noItems); err == nil {
		t.Error("expected error for job without items")
	}
}

func TestListJobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b" + JobExtension, "a" + JobExtension, "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := ListJobs(dir)
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 2 || filepath.Base(jobs[0]) != "a"+JobExtension {
		t.Errorf("unexpected jobs %v", jobs)
	}

	missing, err := ListJobs(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("expected empty list for missing dir, got %v, %v", missing, err)
	}
}

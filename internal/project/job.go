package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/barcut/internal/model"
)

// JobExtension is the file extension of saved jobs.
const JobExtension = ".barcut.json"

// DefaultJobsDir returns ~/.barcut/jobs.
func DefaultJobsDir() string {
	return filepath.Join(DefaultConfigDir(), "jobs")
}

// SaveJob writes a job, including its solution when present.
func SaveJob(path string, job model.Job) error {
	if err := writeJSON(path, job); err != nil {
		return fmt.Errorf("failed to save job %q: %w", job.Name, err)
	}
	return nil
}

// LoadJob reads and validates a saved job. Zero settings fields are filled
// with defaults so hand-written job files can omit them.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to read job: %w", err)
	}
	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job: %w", err)
	}
	job.Settings = job.Settings.Normalize()
	if err := job.Validate(); err != nil {
		return model.Job{}, fmt.Errorf("invalid job %s: %w", filepath.Base(path), err)
	}
	return job, nil
}

// ListJobs returns the saved job files in dir, sorted by name.
// A missing directory yields an empty list.
func ListJobs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	jobs := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), JobExtension) {
			jobs = append(jobs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(jobs)
	return jobs, nil
}

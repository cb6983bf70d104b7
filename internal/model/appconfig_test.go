package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultAlgorithm != defaults.Algorithm {
		t.Errorf("Algorithm mismatch: config=%s settings=%s", cfg.DefaultAlgorithm, defaults.Algorithm)
	}
	if cfg.DefaultObjective != defaults.Objective {
		t.Errorf("Objective mismatch: config=%s settings=%s", cfg.DefaultObjective, defaults.Objective)
	}
	if cfg.DefaultMaxIterations != defaults.MaxIterations {
		t.Errorf("MaxIterations mismatch: config=%d settings=%d", cfg.DefaultMaxIterations, defaults.MaxIterations)
	}
	if cfg.DefaultTimeoutSeconds != defaults.TimeoutSeconds {
		t.Errorf("TimeoutSeconds mismatch: config=%f settings=%f", cfg.DefaultTimeoutSeconds, defaults.TimeoutSeconds)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen address :8080, got %s", cfg.ListenAddr)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultAlgorithm = AlgorithmDCG
	cfg.DefaultObjective = ObjectiveWaste
	cfg.DefaultMaxIterations = 25

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Algorithm != AlgorithmDCG {
		t.Errorf("expected Algorithm=dcg, got %s", s.Algorithm)
	}
	if s.Objective != ObjectiveWaste {
		t.Errorf("expected Objective=waste, got %s", s.Objective)
	}
	if s.MaxIterations != 25 {
		t.Errorf("expected MaxIterations=25, got %d", s.MaxIterations)
	}
}

func TestAddRecentJob(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentJob("a.json")
	cfg.AddRecentJob("b.json")
	cfg.AddRecentJob("a.json")

	if len(cfg.RecentJobs) != 2 {
		t.Fatalf("expected 2 recent jobs, got %d", len(cfg.RecentJobs))
	}
	if cfg.RecentJobs[0] != "a.json" {
		t.Errorf("expected a.json first, got %s", cfg.RecentJobs[0])
	}

	for i := 0; i < 15; i++ {
		cfg.AddRecentJob(string(rune('c'+i)) + ".json")
	}
	if len(cfg.RecentJobs) != 10 {
		t.Errorf("expected recent list capped at 10, got %d", len(cfg.RecentJobs))
	}
}

package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new jobs
	DefaultAlgorithm      Algorithm  `json:"default_algorithm"`
	DefaultDemand         DemandMode `json:"default_demand"`
	DefaultObjective      Objective  `json:"default_objective"`
	DefaultMaxIterations  int        `json:"default_max_iterations"`
	DefaultTimeoutSeconds float64    `json:"default_timeout_seconds"`
	DefaultMaxPatterns    int        `json:"default_max_patterns"`
	DefaultMinOffcut      int        `json:"default_min_offcut"`
	DefaultStockLength    int        `json:"default_stock_length"` // mm
	DefaultProfile        string     `json:"default_profile"`

	// Application preferences
	ListenAddr string   `json:"listen_addr"`
	RecentJobs []string `json:"recent_jobs"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAlgorithm:      defaults.Algorithm,
		DefaultDemand:         defaults.Demand,
		DefaultObjective:      defaults.Objective,
		DefaultMaxIterations:  defaults.MaxIterations,
		DefaultTimeoutSeconds: defaults.TimeoutSeconds,
		DefaultMaxPatterns:    defaults.MaxPatterns,
		DefaultMinOffcut:      defaults.MinOffcut,
		DefaultStockLength:    6000,
		ListenAddr:            ":8080",
		RecentJobs:            []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
// This is used when creating a new job so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Algorithm = c.DefaultAlgorithm
	s.Demand = c.DefaultDemand
	s.Objective = c.DefaultObjective
	s.MaxIterations = c.DefaultMaxIterations
	s.TimeoutSeconds = c.DefaultTimeoutSeconds
	s.MaxPatterns = c.DefaultMaxPatterns
	s.MinOffcut = c.DefaultMinOffcut
}

// AddRecentJob moves path to the front of the recent list, keeping at most ten entries.
func (c *AppConfig) AddRecentJob(path string) {
	recent := []string{path}
	for _, p := range c.RecentJobs {
		if p != path && len(recent) < 10 {
			recent = append(recent, p)
		}
	}
	c.RecentJobs = recent
}

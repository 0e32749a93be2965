package srs

// Params defines the configurable parameters for the review scheduler.
type Params struct {
	// GrowthFactorDays is multiplied by the item's review count to produce
	// the next interval after a correct outcome.
	GrowthFactorDays int

	// MaxIntervalDays caps interval growth for correct outcomes.
	MaxIntervalDays int

	// LapseIntervalDays is the fixed interval applied after an incorrect
	// outcome, independent of prior history.
	LapseIntervalDays int
}

// NewDefaultParams creates a new Params instance with default values:
// intervals grow by two days per accumulated review, capped at thirty days,
// and a lapse always schedules the item one day out.
func NewDefaultParams() *Params {
	return &Params{
		GrowthFactorDays:  2,
		MaxIntervalDays:   30,
		LapseIntervalDays: 1,
	}
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	GrowthFactorDays  int
	MaxIntervalDays   int
	LapseIntervalDays int
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.GrowthFactorDays > 0 {
		params.GrowthFactorDays = config.GrowthFactorDays
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.LapseIntervalDays > 0 {
		params.LapseIntervalDays = config.LapseIntervalDays
	}

	return params
}

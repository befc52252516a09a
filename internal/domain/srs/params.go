package srs

// Params defines all configurable parameters for the review scheduling algorithm
type Params struct {
	// ReviewIntervals maps a memory level to the number of calendar days
	// until the next review at that level.
	ReviewIntervals map[int]int

	// MaxMemoryLevel caps level growth on consecutive correct answers.
	MaxMemoryLevel int

	// ResetLevel is the level a word collapses to on any wrong answer.
	ResetLevel int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	ReviewIntervals map[int]int
	MaxMemoryLevel  int
	ResetLevel      int
}

// NewDefaultParams creates a new Params instance with default values.
//
// The default interval table is the load-bearing business rule of the
// scheduler: five fixed steps of 1, 3, 7, 14 and 30 days. It is deliberately
// not a smooth SM-2 style curve; any wrong answer resets to ResetLevel and
// the word restarts the ladder from the bottom.
func NewDefaultParams() *Params {
	return &Params{
		ReviewIntervals: map[int]int{
			1: 1,
			2: 3,
			3: 7,
			4: 14,
			5: 30,
		},
		MaxMemoryLevel: 5,
		ResetLevel:     1,
	}
}

// NewParams creates a new Params instance with custom configuration.
//
// A custom ReviewIntervals table does not have to cover every level up to
// MaxMemoryLevel: levels without an entry schedule with the longest interval
// the table does configure.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.ReviewIntervals) > 0 {
		params.ReviewIntervals = config.ReviewIntervals
	}

	if config.MaxMemoryLevel > 0 {
		params.MaxMemoryLevel = config.MaxMemoryLevel
	}

	if config.ResetLevel > 0 {
		params.ResetLevel = config.ResetLevel
	}

	return params
}

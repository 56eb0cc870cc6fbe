package verify

// State is where one source stands for one reference.
type State int

const (
	NotTried State = iota
	Unavailable
	NoMatch
	Ambiguous
	Verified
)

var stateNames = [...]string{
	NotTried:    "not-tried",
	Unavailable: "unavailable",
	NoMatch:     "no-match",
	Ambiguous:   "ambiguous",
	Verified:    "verified",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the chain stops once a source reaches s.
func (s State) Terminal() bool {
	return s == Verified
}

// Thresholds split match scores into states.
type Thresholds struct {
	// Verified is the score at or above which a match is accepted.
	Verified float64 `yaml:"verified" json:"verified"`

	// NoMatch is the score below which a match counts as not found.
	NoMatch float64 `yaml:"no_match" json:"no_match"`

	// Discard drops candidates scoring below it entirely.
	Discard float64 `yaml:"discard" json:"discard"`
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Verified: 0.85, NoMatch: 0.5, Discard: 0.3}
}

// Classify maps a best-candidate score to a state.
func (t Thresholds) Classify(score float64) State {
	switch {
	case score >= t.Verified:
		return Verified
	case score >= t.NoMatch:
		return Ambiguous
	default:
		return NoMatch
	}
}

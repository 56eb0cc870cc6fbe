package reference

// Status is the final verification outcome for one reference.
type Status string

const (
	StatusVerified  Status = "verified"
	StatusAmbiguous Status = "ambiguous"
	StatusNotFound  Status = "not-found"
)

// Candidate is one record returned by a bibliographic source.
type Candidate struct {
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Year     int      `json:"year,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	URL      string   `json:"url,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Summary  string   `json:"summary,omitempty"` // short machine summary (S2 tldr)
}

// Attempt records what one source said about one reference.
type Attempt struct {
	Source string  `json:"source"`
	State  string  `json:"state"`
	Score  float64 `json:"score,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Verdict is the verification outcome for one reference.
type Verdict struct {
	RefID      string     `json:"ref_id"`
	Ordinal    int        `json:"ordinal"`
	Title      string     `json:"title,omitempty"` // as extracted
	Status     Status     `json:"status"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source,omitempty"` // source of the winning candidate
	Match      *Candidate `json:"match,omitempty"`  // canonical metadata
	Attempts   []Attempt  `json:"attempts,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Stats summarizes a set of verdicts.
type Stats struct {
	Total     int `json:"total"`
	Verified  int `json:"verified"`
	Ambiguous int `json:"ambiguous"`
	NotFound  int `json:"not_found"`
}

// VerificationResult is the output of the verification stage.
type VerificationResult struct {
	Source     string    `json:"source,omitempty"`
	References []Verdict `json:"references"`
	Stats      Stats     `json:"stats"`
}

// NewVerificationResult builds a result and its stats from verdicts.
func NewVerificationResult(verdicts []Verdict) VerificationResult {
	return VerificationResult{
		References: verdicts,
		Stats:      Tally(verdicts),
	}
}

// Tally counts verdicts by status.
func Tally(verdicts []Verdict) Stats {
	s := Stats{Total: len(verdicts)}
	for _, v := range verdicts {
		switch v.Status {
		case StatusVerified:
			s.Verified++
		case StatusAmbiguous:
			s.Ambiguous++
		default:
			s.NotFound++
		}
	}
	return s
}

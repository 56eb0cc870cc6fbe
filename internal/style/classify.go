package style

import (
	"github.com/matsen/refcheck/internal/reference"
)

// SampleSize is the number of leading entries scored when classifying.
const SampleSize = 5

// Classification is the outcome of style detection.
type Classification struct {
	Style  reference.Style             `json:"style"`
	Score  float64                     `json:"score"`
	Scores map[reference.Style]float64 `json:"scores,omitempty"`
	Forced bool                        `json:"forced,omitempty"`
}

// Classify scores a section against every style and picks the best. Each
// style's score is its mean over the first SampleSize entries. Ties go to
// the style listed first in reference.Styles.
func Classify(section string) Classification {
	samples := sampleEntries(section)
	c := Classification{Scores: make(map[reference.Style]float64, len(registry))}
	for _, p := range Parsers() {
		score := meanScore(p, samples)
		c.Scores[p.Style()] = score
		if c.Style == "" || score > c.Score {
			c.Style = p.Style()
			c.Score = score
		}
	}
	return c
}

// Resolve returns the forced style when override is set and the detected
// style otherwise. An override that names no known style fails with
// reference.ErrUnknownStyle.
func Resolve(section, override string) (Classification, error) {
	if override == "" {
		return Classify(section), nil
	}
	s, err := reference.ParseStyle(override)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Style:  s,
		Score:  meanScore(registry[s], sampleEntries(section)),
		Forced: true,
	}, nil
}

func sampleEntries(section string) []string {
	entries := genericSplit(section)
	if len(entries) > SampleSize {
		entries = entries[:SampleSize]
	}
	samples := make([]string, len(entries))
	for i, e := range entries {
		samples[i] = e.Text
	}
	return samples
}

func meanScore(p Parser, samples []string) float64 {
	if len(samples) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range samples {
		total += p.Score(s)
	}
	return total / float64(len(samples))
}

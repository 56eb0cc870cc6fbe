package export

import (
	"strings"
	"testing"

	"github.com/matsen/refcheck/internal/reference"
)

func TestEntry(t *testing.T) {
	c := reference.Candidate{
		Title:   "Deep Residual Learning for Image Recognition",
		Authors: []string{"Kaiming He", "Xiangyu Zhang"},
		Year:    2016,
		Venue:   "2016 IEEE Conference on Computer Vision and Pattern Recognition (CVPR)",
		DOI:     "10.1109/CVPR.2016.90",
	}
	got := Entry("ref_03", c, reference.StatusVerified)

	for _, want := range []string{
		"@inproceedings{ref_03,\n",
		"  author = {Kaiming He and Xiangyu Zhang},\n",
		"  booktitle = {2016 IEEE Conference",
		"  year = {2016},\n",
		"  doi = {10.1109/CVPR.2016.90},\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Entry() missing %q\n%s", want, got)
		}
	}
	if strings.HasPrefix(got, "%") {
		t.Error("verified entry marked for checking")
	}
}

func TestDetermineEntryType(t *testing.T) {
	tests := []struct {
		venue string
		want  string
	}{
		{"Nature", "article"},
		{"Proceedings of the National Academy of Sciences", "inproceedings"},
		{"NeurIPS Workshop on Things", "inproceedings"},
		{"arXiv", "article"},
		{"", "article"},
	}
	for _, tt := range tests {
		if got := determineEntryType(tt.venue); got != tt.want {
			t.Errorf("determineEntryType(%q) = %q, want %q", tt.venue, got, tt.want)
		}
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"R&D", `R\&D`},
		{"100% of $5", `100\% of \$5`},
		{"snake_case {x}", `snake\_case \{x\}`},
		{`a\b`, `a\textbackslash{}b`},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := escapeLatex(tt.in); got != tt.want {
			t.Errorf("escapeLatex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBibTeX(t *testing.T) {
	res := reference.NewVerificationResult([]reference.Verdict{
		{RefID: "ref_01", Status: reference.StatusVerified, Match: &reference.Candidate{Title: "Deep learning", Year: 2015, Venue: "Nature"}},
		{RefID: "ref_02", Status: reference.StatusAmbiguous, Match: &reference.Candidate{Title: "Near miss"}},
		{RefID: "ref_03", Status: reference.StatusNotFound, Title: "Recursive\nsandwich optimization"},
	})
	got := BibTeX(res)

	for _, want := range []string{
		"@article{ref_01,\n  title = {Deep learning},\n  journal = {Nature},\n  year = {2015},\n}\n",
		"% ambiguous match, check before citing\n@article{ref_02,",
		"% ref_03: not found (Recursive sandwich optimization)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BibTeX() missing %q\n%s", want, got)
		}
	}
}

package reference

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"ieee", StyleNumberedBracket},
		{"IEEE", StyleNumberedBracket},
		{"apa", StyleAuthorYear},
		{"vancouver", StyleNumberedSuperscript},
		{"ama", StyleNumberedSuperscript},
		{"harvard", StyleAuthorDate},
		{" chicago ", StyleNotesBibliography},
		{"numbered-bracket", StyleNumberedBracket},
		{"notes-bibliography", StyleNotesBibliography},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if err != nil {
			t.Errorf("ParseStyle(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStyle_Unknown(t *testing.T) {
	for _, in := range []string{"", "mla", "bluebook"} {
		_, err := ParseStyle(in)
		if !errors.Is(err, ErrUnknownStyle) {
			t.Errorf("ParseStyle(%q) error = %v, want ErrUnknownStyle", in, err)
		}
	}
}

func TestStyle_Aliases(t *testing.T) {
	got := StyleNumberedSuperscript.Aliases()
	want := []string{"ama", "vancouver"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aliases() = %v, want %v", got, want)
	}
	if StyleNumberedBracket.Convention() != "ieee" {
		t.Errorf("Convention() = %q, want ieee", StyleNumberedBracket.Convention())
	}
}

func TestRefID(t *testing.T) {
	if got := RefID(3); got != "ref_03" {
		t.Errorf("RefID(3) = %q, want ref_03", got)
	}
	if got := RefID(120); got != "ref_120" {
		t.Errorf("RefID(120) = %q, want ref_120", got)
	}
}

func TestReference_OptionalFieldsRoundTrip(t *testing.T) {
	ref := Reference{
		ID:      "ref_01",
		Ordinal: 1,
		Authors: []string{"Smith, J."},
		RawText: "Smith, J. Untitled draft.",
	}

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	for _, absent := range []string{`"title"`, `"year"`, `"venue"`, `"identifier"`} {
		if strings.Contains(string(data), absent) {
			t.Errorf("marshaled form contains %s for an empty field: %s", absent, data)
		}
	}

	var back Reference
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !reflect.DeepEqual(back, ref) {
		t.Errorf("round trip = %+v, want %+v", back, ref)
	}
}

func TestTally(t *testing.T) {
	verdicts := []Verdict{
		{Status: StatusVerified},
		{Status: StatusVerified},
		{Status: StatusAmbiguous},
		{Status: StatusNotFound},
	}
	got := Tally(verdicts)
	want := Stats{Total: 4, Verified: 2, Ambiguous: 1, NotFound: 1}
	if got != want {
		t.Errorf("Tally() = %+v, want %+v", got, want)
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.1038/Nature12373", "10.1038/nature12373"},
		{"https://doi.org/10.1037/ppm0000185", "10.1037/ppm0000185"},
		{"doi:10.1109/12.589235.", "10.1109/12.589235"},
		{"DOI: 10.1086/720277", "10.1086/720277"},
	}
	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindDOI(t *testing.T) {
	text := "Psychology, 8(3), 207-217. https://doi.org/10.1037/ppm0000185."
	doi, span := FindDOI(text)
	if doi != "10.1037/ppm0000185" {
		t.Fatalf("FindDOI() = %q, want 10.1037/ppm0000185", doi)
	}
	if text[span[0]:span[1]] != doi {
		t.Errorf("span covers %q, want %q", text[span[0]:span[1]], doi)
	}

	if doi, _ := FindDOI("no identifier here, 2019."); doi != "" {
		t.Errorf("FindDOI() = %q, want empty", doi)
	}
}

func TestWriteAndReadExtraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.json")
	res := ExtractionResult{
		Style:      StyleNumberedBracket,
		Extractor:  "rules/ieee",
		Confidence: 0.9,
		References: []Reference{{Ordinal: 1, Authors: []string{"G. Liu"}, Title: "TDM networks", RawText: "[1] G. Liu"}},
	}

	if err := WriteJSON(path, res); err != nil {
		t.Fatalf("WriteJSON error = %v", err)
	}
	got, err := ReadExtraction(path)
	if err != nil {
		t.Fatalf("ReadExtraction error = %v", err)
	}
	if got.References[0].ID != "ref_01" {
		t.Errorf("missing ID not filled: got %q", got.References[0].ID)
	}
	if got.Style != StyleNumberedBracket || got.References[0].Title != "TDM networks" {
		t.Errorf("ReadExtraction() = %+v", got)
	}
}

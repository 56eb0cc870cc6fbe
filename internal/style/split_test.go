package style

import (
	"strings"
	"testing"

	"github.com/matsen/refcheck/internal/reference"
)

func texts(entries []reference.RawEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func checkOrdinals(t *testing.T, entries []reference.RawEntry) {
	t.Helper()
	for i, e := range entries {
		if e.Ordinal != i+1 {
			t.Errorf("entry %d has ordinal %d", i, e.Ordinal)
		}
	}
}

func TestSplitBracketed(t *testing.T) {
	section := strings.Join([]string{
		"[1] G. Liu, K. Y. Lee, and H. F. Jordan, \"TDM and TWDM de Bruijn",
		"networks and shufflenets,\" IEEE Trans. Comp., vol. 46, pp. 695-",
		"701, Jun. 1997.",
		"12",
		"[2] T. Kaczorek, \"Minimum energy control, extending [7],\" Bull. Pol. Acad., 2016.",
		"[3] A. Author, \"Third,\" J. Things, 2001.",
	}, "\n")

	entries := (ieeeParser{}).Split(section)
	if len(entries) != 3 {
		t.Fatalf("Split() returned %d entries, want 3: %q", len(entries), texts(entries))
	}
	checkOrdinals(t, entries)

	if !strings.Contains(entries[0].Text, "de Bruijn networks") {
		t.Errorf("wrapped line not joined with a space: %q", entries[0].Text)
	}
	if !strings.Contains(entries[0].Text, "pp. 695-701") {
		t.Errorf("hyphenated break not rejoined: %q", entries[0].Text)
	}
	if strings.Contains(entries[0].Text, " 12") {
		t.Errorf("page number kept in entry: %q", entries[0].Text)
	}
	if !strings.Contains(entries[1].Text, "extending [7]") {
		t.Errorf("out-of-sequence marker split the entry: %q", entries[1].Text)
	}
}

func TestSplitNumbered_YearAtLineStart(t *testing.T) {
	section := strings.Join([]string{
		"1. Halpern SD, Ubel PA. Transplant outcomes first reported in",
		"2020. Further study of long-term cohorts. N Engl J Med. 2021;347(4):284-7.",
		"2. Rose ME, Huerbin MB. Regulation after injury. Brain Res. 2002;935(1-2):40-6.",
	}, "\n")

	entries := (vancouverParser{}).Split(section)
	if len(entries) != 2 {
		t.Fatalf("Split() returned %d entries, want 2: %q", len(entries), texts(entries))
	}
	checkOrdinals(t, entries)
	if !strings.Contains(entries[0].Text, "reported in 2020. Further study") {
		t.Errorf("first entry = %q, want the year line kept inside it", entries[0].Text)
	}
}

func TestSplitHanging_YearAtLineStart(t *testing.T) {
	section := strings.Join([]string{
		"Smith, J. (2021). Transplant outcomes first reported in",
		"2020. Further study of long-term cohorts. Nature Medicine, 26(3), 309-316.",
		"Doe, A. (2019). Another title. Journal of Things, 5, 6-7.",
	}, "\n")

	for _, p := range []Parser{apaParser{}, harvardParser{}} {
		entries := p.Split(section)
		if len(entries) != 2 {
			t.Fatalf("%s: Split() returned %d entries, want 2: %q", p.Style(), len(entries), texts(entries))
		}
		if !strings.Contains(entries[0].Text, "in 2020. Further study") {
			t.Errorf("%s: first entry = %q", p.Style(), entries[0].Text)
		}
	}
}

func TestSplitHanging_WrappedEntries(t *testing.T) {
	section := strings.Join([]string{
		"Grady, J. S., Her, M., Moreno, G., Perez, C., & Yelinek, J. (2019). Emotions in",
		"storybooks: A comparison of storybooks that represent ethnic and racial groups in the",
		"United States. Psychology of Popular Media Culture, 8(3), 207-217.",
		"https://doi.org/10.1037/ppm0000185",
		"Smith, J., & Doe, A. (2020). Machine learning in healthcare.",
		"Nature Medicine, 26(3), 309-316.",
	}, "\n")

	entries := (apaParser{}).Split(section)
	if len(entries) != 2 {
		t.Fatalf("Split() returned %d entries, want 2: %q", len(entries), texts(entries))
	}
	if !strings.HasSuffix(entries[0].Text, "ppm0000185") {
		t.Errorf("first entry = %q, want it to end with the DOI", entries[0].Text)
	}
	if !strings.HasPrefix(entries[1].Text, "Smith, J.") {
		t.Errorf("second entry = %q", entries[1].Text)
	}
	// "Nature Medicine, 26(3)" must not look like a new author.
	if !strings.HasSuffix(entries[1].Text, "309-316.") {
		t.Errorf("second entry = %q, want the venue line attached", entries[1].Text)
	}
}

func TestSplitChicago(t *testing.T) {
	section := strings.Join([]string{
		"Kwon, Hyeyoung. \"Inclusion Work: Children of Immigrants Claiming Membership in",
		"Everyday Life.\" American Journal of Sociology 127, no. 6 (2022): 1818-59.",
		"Smith, John, and Jane Doe. The Book Title. New York: Penguin Press, 2015.",
	}, "\n")

	entries := (chicagoParser{}).Split(section)
	if len(entries) != 2 {
		t.Fatalf("Split() returned %d entries, want 2: %q", len(entries), texts(entries))
	}
	if !strings.HasPrefix(entries[1].Text, "Smith, John") {
		t.Errorf("second entry = %q", entries[1].Text)
	}
}

func TestSplitParagraphsFallback(t *testing.T) {
	section := "An unusual first entry without a year\n\nAnother odd entry\nspanning two lines\n"
	entries := genericSplit(section)
	if len(entries) != 2 {
		t.Fatalf("genericSplit() returned %d entries, want 2: %q", len(entries), texts(entries))
	}
	if entries[1].Text != "Another odd entry spanning two lines" {
		t.Errorf("second entry = %q", entries[1].Text)
	}
}

func TestSplit_Empty(t *testing.T) {
	for _, p := range Parsers() {
		if got := p.Split(""); len(got) != 0 {
			t.Errorf("%s: Split(\"\") = %q, want none", p.Style(), texts(got))
		}
	}
}

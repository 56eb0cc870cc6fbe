package style

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	bracketMarker  = regexp.MustCompile(`\[(\d{1,3})\]`)
	numberedMarker = regexp.MustCompile(`^(\d{1,3})(?:[.)]\s*|\s+)`)
	pageNumberLine = regexp.MustCompile(`^(?:\d{1,3}|[Pp]age \d+(?: of \d+)?)$`)
	anyYear        = regexp.MustCompile(`\b(?:1[6-9]|20)\d{2}[a-z]?\b`)
	parenYear      = regexp.MustCompile(`\((?:1[6-9]|20)\d{2}[a-z]?(?:,[^)]{0,30})?\)|\(n\.d\.\)`)
	trailingLink   = regexp.MustCompile(`(?:https?://|doi:|10\.\d{4,9}/)\S*$`)
)

// Name particles that may begin an author's surname in lower case.
const particles = `(?:(?:van|von|de|der|den|del|da|di|du|le|la|dos)\s+)*`

var (
	surnameComma    = regexp.MustCompile(`^` + particles + `\p{Lu}[\p{L}'\-]+(?:\s+\p{Lu}[\p{L}'\-]+)?,\s`)
	surnameInitials = regexp.MustCompile(`^` + particles + `\p{Lu}[\p{L}'\-]+\s+\p{Lu}{1,3}(?:[,.]|\s|$)`)
	surnameFirst    = regexp.MustCompile(`^` + particles + `\p{Lu}[\p{L}'\-]+(?:\s+\p{Lu}[\p{L}'\-]+)?,\s+\p{Lu}`)
	groupAuthorYear = regexp.MustCompile(`^\p{Lu}[^.()]{1,80}\.?\s*\((?:1[6-9]|20)\d{2}`)
	particleStart   = regexp.MustCompile(`^(?:van|von|de|der|den|del|da|di|du|le|la|dos)\s`)
)

// Bytes of upcoming text inspected when deciding whether a line starts an
// author-date entry.
const lookaheadLen = 250

// logicalLines returns the trimmed, non-empty lines of a section with page
// breaks and bare page numbers removed.
func logicalLines(section string) []string {
	var out []string
	for _, l := range strings.Split(section, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || pageNumberLine.MatchString(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// joinLines joins wrapped lines with a space, except after a trailing hyphen
// or slash where the break fell inside a word or URL.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			prev := lines[i-1]
			if !strings.HasSuffix(prev, "-") && !strings.HasSuffix(prev, "/") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(l)
	}
	return b.String()
}

func entriesFrom(groups [][]string) []reference.RawEntry {
	entries := make([]reference.RawEntry, 0, len(groups))
	for _, g := range groups {
		text := strings.TrimSpace(joinLines(g))
		if text == "" {
			continue
		}
		entries = append(entries, reference.RawEntry{Ordinal: len(entries) + 1, Text: text})
	}
	return entries
}

// splitBracketed splits on [n] markers. A marker only starts a new entry
// when its number follows the previous marker's, so bracketed numbers inside
// an entry are left alone.
func splitBracketed(section string) []reference.RawEntry {
	text := joinLines(logicalLines(section))

	var starts []int
	next := 0
	for _, loc := range bracketMarker.FindAllStringSubmatchIndex(text, -1) {
		n, _ := strconv.Atoi(text[loc[2]:loc[3]])
		if len(starts) == 0 || n == next {
			starts = append(starts, loc[0])
			next = n + 1
		}
	}

	groups := make([][]string, 0, len(starts))
	for i, s := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		groups = append(groups, []string{text[s:end]})
	}
	return entriesFrom(groups)
}

// splitNumbered splits on "n." or "n " markers at the start of a line, again
// requiring consecutive numbers. A wrapped line that happens to begin with a
// year ("2020. Further ...") never matches because markers are at most three
// digits.
func splitNumbered(section string) []reference.RawEntry {
	var groups [][]string
	next := 0
	for _, l := range logicalLines(section) {
		if n, ok := numberedStart(l); ok && (len(groups) == 0 || n == next) {
			groups = append(groups, []string{l})
			next = n + 1
			continue
		}
		if len(groups) == 0 {
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], l)
	}
	return entriesFrom(groups)
}

func numberedStart(line string) (int, bool) {
	m := numberedMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	rest := line[len(m[0]):]
	r, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(r) && !particleStart.MatchString(rest) {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return n, true
}

// startFunc reports whether line begins a new entry. ahead is line followed
// by the next few lines.
type startFunc func(line, ahead string) bool

// splitHanging splits unnumbered lists. A line starts a new entry only when
// the entry so far could be complete (it ends a sentence or a link and
// already holds a year) and isStart accepts the line.
func splitHanging(section string, isStart startFunc) []reference.RawEntry {
	lines := logicalLines(section)
	var groups [][]string
	for i, l := range lines {
		n := len(groups)
		if n == 0 {
			groups = append(groups, []string{l})
			continue
		}
		acc := joinLines(groups[n-1])
		if canEnd(acc) && anyYear.MatchString(acc) && isStart(l, lookahead(lines, i)) {
			groups = append(groups, []string{l})
			continue
		}
		groups[n-1] = append(groups[n-1], l)
	}
	return entriesFrom(groups)
}

// splitParagraphs splits on blank lines.
func splitParagraphs(section string) []reference.RawEntry {
	var groups [][]string
	var cur []string
	for _, l := range strings.Split(section, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = nil
			}
			continue
		}
		if pageNumberLine.MatchString(l) {
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return entriesFrom(groups)
}

// splitEachLine treats every logical line as an entry.
func splitEachLine(section string) []reference.RawEntry {
	lines := logicalLines(section)
	groups := make([][]string, len(lines))
	for i, l := range lines {
		groups[i] = []string{l}
	}
	return entriesFrom(groups)
}

// genericSplit is the style-independent splitter used to sample entries
// before the style is known, and as the last resort of every parser.
func genericSplit(section string) []reference.RawEntry {
	if e := splitBracketed(section); len(e) >= 2 {
		return e
	}
	if e := splitNumbered(section); len(e) >= 2 {
		return e
	}
	if e := splitHanging(section, anyStart); len(e) >= 2 {
		return e
	}
	if e := splitParagraphs(section); len(e) >= 2 {
		return e
	}
	return splitEachLine(section)
}

func lookahead(lines []string, i int) string {
	end := i + 3
	if end > len(lines) {
		end = len(lines)
	}
	ahead := joinLines(lines[i:end])
	if len(ahead) > lookaheadLen {
		ahead = ahead[:lookaheadLen]
	}
	return ahead
}

func canEnd(acc string) bool {
	acc = strings.TrimSpace(acc)
	return strings.HasSuffix(acc, ".") || trailingLink.MatchString(acc)
}

// authorDateStart accepts a line that opens with an author block and has a
// parenthesized year close behind it.
func authorDateStart(line, ahead string) bool {
	lead := surnameComma.MatchString(line) || surnameInitials.MatchString(line) ||
		groupAuthorYear.MatchString(line)
	return lead && parenYear.MatchString(ahead)
}

// chicagoStart accepts "Surname, Given" openings and the repeated-author
// dash.
func chicagoStart(line, _ string) bool {
	return surnameFirst.MatchString(line) || strings.HasPrefix(line, "---")
}

// vancouverStart accepts "Surname AB," openings.
func vancouverStart(line, _ string) bool {
	return surnameInitials.MatchString(line)
}

func anyStart(line, ahead string) bool {
	return authorDateStart(line, ahead) || chicagoStart(line, ahead) || vancouverStart(line, ahead)
}

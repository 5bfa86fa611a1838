// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultAreaCode is used by RepairPhone for seven-digit numbers
const DefaultAreaCode = "352"

var (
	phoneExtension = regexp.MustCompile(`(?i)\s*(?:ext\.?|x)\s*(\d+)\s*$`)
	titleTokens    = regexp.MustCompile(`[A-Za-z0-9']+|[^A-Za-z0-9']+`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest. A letter after an apostrophe starts a new word, so "o'brien" becomes
// "O'Brien". Surrounding whitespace is removed.
func TitleCase(s string) string {
	s = titleWord(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if isApostrophe(runes[i-1]) && unicode.IsLetter(runes[i]) {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// titleWord title-cases s keeping the letters after an apostrophe lower
// case, as in "Dean's"
func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '\u2019'
}

// CommaSpace normalizes "Last,First" and "Last ,  First" to "Last, First".
// Empty parts are dropped, so "Doe," becomes "Doe".
func CommaSpace(s string) string {
	if !strings.Contains(s, ",") {
		return strings.Join(strings.Fields(s), " ")
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// RepairPhone formats a phone number as "(352) 392-1234", assuming the
// default area code for seven-digit numbers
func RepairPhone(s string) string {
	return RepairPhoneWithArea(s, DefaultAreaCode)
}

// RepairPhoneWithArea formats a phone number as "(ddd) ddd-dddd", keeping an
// extension as " xNNN". Numbers that cannot be recognized are returned
// trimmed but otherwise unchanged.
func RepairPhoneWithArea(s, areaCode string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	number, ext := s, ""
	if m := phoneExtension.FindStringSubmatchIndex(s); m != nil {
		number, ext = s[:m[0]], s[m[2]:m[3]]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}

	var formatted string
	switch len(digits) {
	case 10:
		formatted = fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case 7:
		formatted = fmt.Sprintf("(%s) %s-%s", areaCode, digits[:3], digits[3:])
	default:
		return s
	}

	if ext != "" {
		formatted += " x" + ext
	}
	return formatted
}

// RepairEmail returns the first address in s, lower-cased and stripped of a
// mailto: prefix and trailing punctuation
func RepairEmail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 7 && strings.EqualFold(s[:7], "mailto:") {
		s = s[7:]
	}
	if i := strings.IndexFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	}); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, ".,;:")
	s = strings.Trim(s, "<>")
	return strings.ToLower(s)
}

var jobCodeAbbreviations = map[string]string{
	"ACAD":    "Academic",
	"ADJ":     "Adjunct",
	"ADM":     "Administrative",
	"ADMIN":   "Administrative",
	"ADMR":    "Administrator",
	"ANAL":    "Analyst",
	"ANLYST":  "Analyst",
	"ASOC":    "Associate",
	"ASSOC":   "Associate",
	"ASST":    "Assistant",
	"CHR":     "Chair",
	"CLIN":    "Clinical",
	"COLL":    "College",
	"COORD":   "Coordinator",
	"CTR":     "Center",
	"DEPT":    "Department",
	"DIR":     "Director",
	"DIST":    "Distinguished",
	"EDUC":    "Education",
	"EMER":    "Emeritus",
	"ENG":     "Engineer",
	"ENGR":    "Engineer",
	"EXEC":    "Executive",
	"GRAD":    "Graduate",
	"HLTH":    "Health",
	"INFO":    "Information",
	"INSTR":   "Instructor",
	"JR":      "Junior",
	"LAB":     "Laboratory",
	"LECT":    "Lecturer",
	"MED":     "Medical",
	"MGR":     "Manager",
	"OFCR":    "Officer",
	"PGM":     "Program",
	"POSTDOC": "Postdoctoral",
	"PROF":    "Professor",
	"PROG":    "Program",
	"REP":     "Representative",
	"RES":     "Research",
	"RSCH":    "Research",
	"SCH":     "School",
	"SCI":     "Scientist",
	"SPEC":    "Specialist",
	"SPCLST":  "Specialist",
	"SR":      "Senior",
	"SUPV":    "Supervisor",
	"SUPVR":   "Supervisor",
	"SVC":     "Service",
	"SVCS":    "Services",
	"SYS":     "Systems",
	"TECH":    "Technician",
	"VIS":     "Visiting",
	"VST":     "Visiting",
}

var jobCodeSmallWords = map[string]bool{
	"A": true, "AN": true, "AND": true, "AT": true, "FOR": true,
	"IN": true, "OF": true, "ON": true, "OR": true, "THE": true, "TO": true,
}

var jobCodeUpper = map[string]bool{
	"I": true, "II": true, "III": true, "IV": true, "V": true,
	"VI": true, "VII": true, "VIII": true, "IX": true, "X": true,
	"AVP": true, "CIO": true, "CFO": true, "HR": true, "HSC": true,
	"IFAS": true, "IT": true, "MD": true, "RN": true, "UF": true, "VP": true,
}

// ImproveJobTitle expands the abbreviations of an HR job-code description
// and renders it in title case, e.g. "ASST PROF" becomes
// "Assistant Professor"
func ImproveJobTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	tokens := titleTokens.FindAllString(s, -1)
	var sb strings.Builder
	first := true
	expanded := false
	for _, tok := range tokens {
		if !isWordToken(tok) {
			// drop the period of an expanded abbreviation
			if expanded && strings.HasPrefix(tok, ".") {
				tok = tok[1:]
			}
			sb.WriteString(tok)
			expanded = false
			continue
		}

		up := strings.ToUpper(tok)
		expanded = false
		switch {
		case jobCodeAbbreviations[up] != "":
			sb.WriteString(jobCodeAbbreviations[up])
			expanded = true
		case jobCodeUpper[up]:
			sb.WriteString(up)
		case jobCodeSmallWords[up] && !first:
			sb.WriteString(strings.ToLower(tok))
		default:
			sb.WriteString(titleWord(tok))
		}
		first = false
	}

	return strings.TrimSpace(whitespace.ReplaceAllString(sb.String(), " "))
}

func isWordToken(tok string) bool {
	r := rune(tok[0])
	return r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

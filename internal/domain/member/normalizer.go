package member

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
)

// The BIJLI endpoint returns loosely-typed payloads: numbers arrive as strings,
// dates in at least three formats, and names occasionally double-encoded.
// Every function in this file is pure and total; malformed input yields the
// zero/nil value, never an error or panic.

// NormalizeString coerces a raw value to a trimmed string.
// Missing, empty-after-trim, or non-scalar values yield "".
func NormalizeString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		// JSON numbers decode as float64; integral values must not grow a ".000000"
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// ParseMoney parses a raw value as a decimal amount, tolerating thousands
// separators and surrounding whitespace. A nil result means "absent or
// unparseable", which callers must keep distinct from an explicit zero.
func ParseMoney(v any) *decimal.Decimal {
	switch n := v.(type) {
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case int:
		d := decimal.NewFromInt(int64(n))
		return &d
	case int64:
		d := decimal.NewFromInt(n)
		return &d
	case json.Number:
		return parseMoneyString(n.String())
	case string:
		return parseMoneyString(n)
	default:
		return nil
	}
}

func parseMoneyString(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// ParseDateFlexible parses the date encodings BIJLI is known to emit:
// dd/MM/yyyy, yyyy-MM-dd (optionally with a trailing time component), and
// ambiguous N/N/yyyy triplets. For the ambiguous case, a token greater than
// twelve pins the day position; otherwise preferDayFirst decides. Two-digit
// years map to 2000+yy. Out-of-range day or month is rejected, not clamped.
func ParseDateFlexible(v any, preferDayFirst bool) *time.Time {
	s := NormalizeString(v)
	if s == "" {
		return nil
	}

	// ISO form, possibly "2024-03-01T00:00:00" or "2024-03-01 00:00:00"
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return &t
		}
		return nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil
	}
	first, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	second, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	if year < 100 {
		year = 2000 + year
	}

	var day, month int
	switch {
	case first > 12:
		day, month = first, second
	case second > 12:
		day, month = second, first
	case preferDayFirst:
		day, month = first, second
	default:
		day, month = second, first
	}

	if day < 1 || day > 31 || month < 1 || month > 12 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); that counts as out of range
	if t.Day() != day || t.Month() != time.Month(month) {
		return nil
	}
	return &t
}

// mojibakeMarkers are byte patterns that appear when UTF-8 text is mistakenly
// decoded as Latin-1/Windows-1252: every multi-byte UTF-8 sequence then starts
// with one of these lead characters.
var mojibakeMarkers = []string{"Ã", "Â", "á»", "áº", "Ä", "â€"}

// FixMojibake repairs UTF-8 text that was decoded as Latin-1/Windows-1252 and
// re-encoded, the classic "Nguyá»…n" corruption. Strings without marker
// patterns pass through untouched, so applying the fix twice is a no-op.
func FixMojibake(s string) string {
	if s == "" || !hasMojibakeMarker(s) {
		return s
	}
	// Reverse the bad decode: map each rune back to its single-byte value.
	// Windows-1252 first because the 0x80-0x9F range decodes to printable
	// punctuation there; plain Latin-1 as fallback.
	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		b, err := cm.NewEncoder().Bytes([]byte(s))
		if err != nil {
			continue
		}
		if utf8.Valid(b) {
			return string(b)
		}
	}
	return s
}

func hasMojibakeMarker(s string) bool {
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// FormatVietnameseName collapses whitespace and title-cases each space- and
// hyphen-delimited token using Vietnamese casing rules.
func FormatVietnameseName(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	// Casers are stateful and not goroutine-safe; one per call.
	caser := cases.Title(language.Vietnamese)
	for i, f := range fields {
		fields[i] = titleCaseToken(caser, f)
	}
	return strings.Join(fields, " ")
}

func titleCaseToken(caser cases.Caser, tok string) string {
	if !strings.Contains(tok, "-") {
		return caser.String(tok)
	}
	parts := strings.Split(tok, "-")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "-")
}

// MapGender maps a raw gender value to the canonical enum. Unrecognized
// values are Unknown, never an error.
func MapGender(v any) Gender {
	switch strings.ToLower(NormalizeString(v)) {
	case "male", "m", "nam":
		return GenderMale
	case "female", "f", "nu", "nữ":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// NormalizeMemberNo keeps only the digit characters of a raw member number.
// Returns an error when nothing remains; the member number is the one field
// the sync pipeline cannot proceed without.
func NormalizeMemberNo(v any) (string, error) {
	s := NormalizeString(v)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no digits in member number %q", s)
	}
	return b.String(), nil
}

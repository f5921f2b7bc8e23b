package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLayout renders timestamps when the mailbox carries no usable pattern.
const DefaultLayout = "1/2/2006 3:04:05 PM"

// Default mailbox patterns used when the service omits them.
const (
	DefaultDatePattern = "M/d/yyyy"
	DefaultTimePattern = "h:mm tt"
)

// Format renders t with a mailbox date/time pattern. An empty or blank
// pattern falls back to DefaultLayout.
func Format(t time.Time, pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		return t.Format(DefaultLayout)
	}
	return translate(pattern, &t)
}

// Parse is the inverse of Format for the same pattern.
func Parse(value, pattern string, loc *time.Location) (time.Time, error) {
	layout := DefaultLayout
	if strings.TrimSpace(pattern) != "" {
		layout = Layout(pattern)
	}
	return time.ParseInLocation(layout, value, loc)
}

type dotnetToken struct {
	token  string
	layout string
}

// dotnetTokens lists pattern specifiers longest first so greedy matching works.
var dotnetTokens = []dotnetToken{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"fff", "000"},
	{"ff", "00"},
	{"f", "0"},
	{"tt", "PM"},
	{"t", "PM"},
	{"zzz", "-07:00"},
	{"zz", "-07"},
	{"K", "Z07:00"},
}

// Layout translates a .NET style date/time pattern ("M/d/yyyy h:mm tt")
// into a Go reference layout.
//
// Go layouts cannot express everything a pattern can: H becomes the padded
// "15", t becomes "PM", and quoted or escaped text that happens to spell a
// layout element ("Jan", "MST", a digit) is read as that element. Format
// renders those cases exactly; Layout and Parse keep the approximation.
func Layout(pattern string) string {
	return translate(pattern, nil)
}

// translate walks pattern. With t nil it returns the Go layout; otherwise it
// returns t rendered, writing literals and unpadded fields directly.
func translate(pattern string, t *time.Time) string {
	var out, layout strings.Builder
	flush := func() {
		if t != nil && layout.Len() > 0 {
			out.WriteString(t.Format(layout.String()))
			layout.Reset()
		}
	}
	literal := func(text string) {
		if t == nil {
			layout.WriteString(text)
			return
		}
		flush()
		out.WriteString(text)
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' || c == '"' {
			end := strings.IndexByte(pattern[i+1:], c)
			if end < 0 {
				literal(pattern[i+1:])
				break
			}
			literal(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if c == '\\' && i+1 < len(pattern) {
			literal(pattern[i+1 : i+2])
			i += 2
			continue
		}

		tok, ok := matchToken(pattern[i:])
		if !ok {
			// Separators stay in the layout so fractional seconds keep their dot.
			if c == '.' || c == ',' || t == nil {
				layout.WriteByte(c)
			} else {
				literal(pattern[i : i+1])
			}
			i++
			continue
		}
		i += len(tok.token)

		if t != nil && (tok.token == "H" || tok.token == "t") {
			flush()
			if tok.token == "H" {
				out.WriteString(strconv.Itoa(t.Hour()))
			} else {
				out.WriteString(t.Format("PM")[:1])
			}
			continue
		}
		if tok.layout == "0" || tok.layout == "00" || tok.layout == "000" {
			// Go only recognises fractional seconds after a separator.
			if l := layout.String(); !strings.HasSuffix(l, ".") && !strings.HasSuffix(l, ",") {
				layout.WriteByte('.')
			}
		}
		layout.WriteString(tok.layout)
	}

	if t == nil {
		return layout.String()
	}
	flush()
	return out.String()
}

func matchToken(s string) (dotnetToken, bool) {
	for _, tok := range dotnetTokens {
		if strings.HasPrefix(s, tok.token) {
			return tok, true
		}
	}
	return dotnetToken{}, false
}

// inputLayouts are the formats accepted for typed-in event times.
var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
}

// ParseInput parses a user supplied timestamp in loc, trying the common
// layouts in order.
func ParseInput(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date/time %q", value)
}

// graphLayout matches the dateTime strings Graph returns, e.g.
// "2024-05-01T09:30:00.0000000".
const graphLayout = "2006-01-02T15:04:05.9999999"

// ParseGraph parses a Graph dateTime value. The result carries the wall
// clock in UTC; the zone label travels separately.
func ParseGraph(value string) (time.Time, error) {
	if t, err := time.Parse(graphLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// GraphDateTime renders a wall clock in the form Graph expects alongside a
// separate time zone label.
func GraphDateTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

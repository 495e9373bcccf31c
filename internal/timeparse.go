package internal

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Absolute layouts, tried in order before the relative fallback. A
// trailing Z is a literal meaning UTC; the other layouts are naive.
var absoluteLayouts = []struct {
	layout string
	naive  bool
}{
	{"2006-01-02T15:04:05.999999999Z", false},
	{"2006-01-02T15:04:05Z", false},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
}

// Plain decimal seconds. strconv.ParseFloat alone would also accept hex floats, NaN and Inf.
var relativeSeconds = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxOffsetSeconds is the largest relative offset, about 292 years.
const maxOffsetSeconds = float64(math.MaxInt64) / float64(time.Second)

// TimeParser resolves scheduled_time strings to instants.
//
// A bare number is always an offset in seconds from now, never a UNIX
// timestamp. Absolute layouts without a zone are read in Location and the
// result is returned in UTC.
type TimeParser struct {
	Location *time.Location
}

func NewTimeParser(loc *time.Location) *TimeParser {
	if loc == nil {
		loc = time.UTC
	}
	return &TimeParser{Location: loc}
}

func (p *TimeParser) Parse(s string, now time.Time) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, l := range absoluteLayouts {
		in := time.UTC
		if l.naive {
			in = loc
		}
		t, err := time.ParseInLocation(l.layout, s, in)
		if err == nil {
			return t.UTC(), nil
		}
	}

	trimmed := strings.TrimSpace(s)
	if !relativeSeconds.MatchString(trimmed) {
		return time.Time{}, &TimeFormatError{Value: s}
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return time.Time{}, &TimeFormatError{Value: s}
	}
	// Offsets must fit in a time.Duration.
	if math.Abs(seconds) > maxOffsetSeconds {
		return time.Time{}, &TimeFormatError{Value: s}
	}
	offset := time.Duration(math.Round(seconds * float64(time.Second)))
	return now.Add(offset).UTC(), nil
}

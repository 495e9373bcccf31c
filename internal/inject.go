package internal

import (
	"cmp"
	"math"

	"github.com/Eyevinn/adbreak-tools/common"
	slices "golang.org/x/exp/slices"
)

type PlaylistSegment struct {
	URI                    string
	DurationSeconds        float64
	CumulativeStartSeconds float64
	Markers                []ScheduledCue
}

// NewPlaylistSegments lays out segments back to back starting at 0.
func NewPlaylistSegments(uris []string, durations []float64) []PlaylistSegment {
	segs := make([]PlaylistSegment, len(uris))
	start := 0.0
	for i, uri := range uris {
		segs[i] = PlaylistSegment{URI: uri, DurationSeconds: durations[i], CumulativeStartSeconds: start}
		start += durations[i]
	}
	return segs
}

// Inject attaches every cue to the first segment starting at or after the
// cue offset. Start times are compared on the 90 kHz grid. The input is
// not modified; the returned slice has the same length and order.
//
// Cues that cannot be placed are reported together as PlacementErrors while
// all placeable cues are still attached.
func Inject(segments []PlaylistSegment, cues []ScheduledCue) ([]PlaylistSegment, error) {
	out := make([]PlaylistSegment, len(segments))
	starts := make([]uint64, len(segments))
	for i, s := range segments {
		out[i] = s
		out[i].Markers = slices.Clone(s.Markers)
		starts[i] = common.SecondsToTicks(math.Max(s.CumulativeStartSeconds, 0))
	}
	total := playlistDuration(segments)
	lastStart := 0.0
	if len(segments) > 0 {
		lastStart = segments[len(segments)-1].CumulativeStartSeconds
	}

	var errs PlacementErrors
	for _, c := range cues {
		offset := c.Break.OffsetSeconds
		if math.IsNaN(offset) || math.IsInf(offset, 0) || offset < 0 {
			errs = append(errs, &PlacementError{ID: c.Break.ID, OffsetSeconds: offset, TotalSeconds: total, Reason: PlacementInvalidOffset})
			continue
		}
		idx, _ := slices.BinarySearchFunc(starts, common.SecondsToTicks(offset), func(start, target uint64) int {
			return cmp.Compare(start, target)
		})
		if idx == len(out) {
			errs = append(errs, &PlacementError{
				ID:               c.Break.ID,
				OffsetSeconds:    offset,
				LastStartSeconds: lastStart,
				TotalSeconds:     total,
				Reason:           PlacementBeyondEnd,
			})
			continue
		}
		out[idx].Markers = append(out[idx].Markers, c)
	}

	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

func playlistDuration(segments []PlaylistSegment) float64 {
	if len(segments) == 0 {
		return 0
	}
	last := segments[len(segments)-1]
	return last.CumulativeStartSeconds + last.DurationSeconds
}

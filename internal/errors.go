package internal

import (
	"fmt"
	"strings"
)

// TimeFormatError is returned when no time layout or relative offset matches.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("unrecognized time format %q", e.Value)
}

// ValidationError describes one problem with one ad-break record.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ad break %d: %s", e.Index, e.Message)
}

// ValidationErrors holds every problem found in a batch.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("ad break validation failed: %s", strings.Join(msgs, "; "))
}

func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// CueBuildError is returned when a scheduled break cannot be turned into a cue.
type CueBuildError struct {
	ID     string
	AdID   string
	Reason string
	Err    error
}

func (e *CueBuildError) Error() string {
	msg := fmt.Sprintf("building cue for ad break %q (ad_id %q): %s", e.ID, e.AdID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CueBuildError) Unwrap() error {
	return e.Err
}

type PlacementReason string

const (
	PlacementBeyondEnd     PlacementReason = "beyond_end"
	PlacementInvalidOffset PlacementReason = "invalid_offset"
)

// PlacementError reports a cue that could not be attached to any segment.
// A cue after the start of the last segment is beyond the end even when it
// is inside the playlist duration.
type PlacementError struct {
	ID               string
	OffsetSeconds    float64
	LastStartSeconds float64
	TotalSeconds     float64
	Reason           PlacementReason
}

func (e *PlacementError) Error() string {
	switch e.Reason {
	case PlacementBeyondEnd:
		if e.TotalSeconds == 0 {
			return fmt.Sprintf("cue %q at %gs cannot be placed in an empty playlist", e.ID, e.OffsetSeconds)
		}
		return fmt.Sprintf("cue %q at %gs has no segment starting at or after it (last segment starts at %gs, playlist ends at %gs)",
			e.ID, e.OffsetSeconds, e.LastStartSeconds, e.TotalSeconds)
	default:
		return fmt.Sprintf("cue %q has invalid offset %gs", e.ID, e.OffsetSeconds)
	}
}

// PlacementErrors holds every unplaceable cue of one injection.
type PlacementErrors []*PlacementError

func (errs PlacementErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d unplaceable cue(s): %s", len(errs), strings.Join(msgs, "; "))
}

func (errs PlacementErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

package internal

import (
	"fmt"
	"math"
	"time"
)

// Validate checks every record of a batch and returns all problems found as
// ValidationErrors, or nil when the batch is valid. Records are not modified.
func Validate(records []AdBreakRequest, parser *TimeParser, now time.Time) error {
	var errs ValidationErrors
	add := func(i int, field, format string, args ...any) {
		errs = append(errs, &ValidationError{Index: i, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]int)
	for i, r := range records {
		if msg, ok := r.Invalid[recordField]; ok {
			add(i, recordField, "%s", msg)
			continue
		}
		// present reports a required field that failed to decode or is
		// missing, and returns whether its value can be checked further.
		present := func(field string, set bool) bool {
			if msg, ok := r.Invalid[field]; ok {
				add(i, field, "%s", msg)
				return false
			}
			if !set {
				add(i, field, "missing '%s' field", field)
			}
			return set
		}

		if present("id", r.ID != nil) {
			if first, ok := seen[*r.ID]; ok {
				add(i, "id", "duplicate id %q (first used by ad break %d)", *r.ID, first)
			} else {
				seen[*r.ID] = i
			}
		}

		if present("scheduled_time", r.ScheduledTime != nil) {
			if _, err := parser.Parse(string(*r.ScheduledTime), now); err != nil {
				add(i, "scheduled_time", "%s", err)
			}
		}

		if present("duration", r.Duration != nil) {
			if d := *r.Duration; math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
				add(i, "duration", "duration must be positive, got %g", d)
			}
		}

		if present("ad_id", r.AdID != nil) {
			if _, err := ExtractEventID(*r.AdID); err != nil {
				add(i, "ad_id", "%s", err)
			}
		}

		for _, field := range []string{"name", "provider_id", "provider_name"} {
			if msg, ok := r.Invalid[field]; ok {
				add(i, field, "%s", msg)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

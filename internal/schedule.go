package internal

import (
	"cmp"
	"time"

	"github.com/rs/zerolog"
	slices "golang.org/x/exp/slices"
)

// ScheduledBreak is a validated ad break placed on the timeline.
type ScheduledBreak struct {
	ID              string    `json:"id"`
	ResolvedTime    time.Time `json:"resolvedTime"`
	OffsetSeconds   float64   `json:"offsetSeconds"`
	DurationSeconds float64   `json:"durationSeconds"`
	AdID            string    `json:"adId"`
	Name            string    `json:"name"`
	ProviderID      string    `json:"providerId"`
	ProviderName    string    `json:"providerName"`
}

// Schedule is the result of one scheduling run. Breaks are sorted by
// offset, PastDue holds the ids of breaks dropped because they resolved
// before the reference time.
type Schedule struct {
	Reference time.Time        `json:"reference"`
	Breaks    []ScheduledBreak `json:"breaks"`
	PastDue   []string         `json:"pastDue,omitempty"`
}

type Scheduler struct {
	parser *TimeParser
	clock  Clock
	logger zerolog.Logger
}

func NewScheduler(parser *TimeParser, clock Clock, logger zerolog.Logger) *Scheduler {
	if parser == nil {
		parser = NewTimeParser(time.UTC)
	}
	if clock == nil {
		clock = NewRealClock()
	}
	return &Scheduler{
		parser: parser,
		clock:  clock,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// ScheduleNow schedules relative to the scheduler's clock.
func (s *Scheduler) ScheduleNow(records []AdBreakRequest) (Schedule, error) {
	return s.Schedule(records, s.clock.Now())
}

// Schedule validates the batch, resolves every scheduled_time against
// reference and returns the upcoming breaks ordered by offset. Ties keep
// their input order.
func (s *Scheduler) Schedule(records []AdBreakRequest, reference time.Time) (Schedule, error) {
	reference = reference.UTC()
	if err := Validate(records, s.parser, reference); err != nil {
		return Schedule{}, err
	}

	sched := Schedule{Reference: reference, Breaks: make([]ScheduledBreak, 0, len(records))}
	for _, r := range records {
		// Validate already parsed this value.
		resolved, _ := s.parser.Parse(string(*r.ScheduledTime), reference)
		offset := resolved.Sub(reference).Seconds()
		if offset < 0 {
			s.logger.Warn().
				Str("id", *r.ID).
				Time("scheduled", resolved).
				Float64("offsetSeconds", offset).
				Msg("skipping ad break scheduled in the past")
			sched.PastDue = append(sched.PastDue, *r.ID)
			continue
		}
		sched.Breaks = append(sched.Breaks, ScheduledBreak{
			ID:              *r.ID,
			ResolvedTime:    resolved,
			OffsetSeconds:   offset,
			DurationSeconds: *r.Duration,
			AdID:            *r.AdID,
			Name:            r.name(),
			ProviderID:      r.providerID(),
			ProviderName:    r.providerName(),
		})
	}

	slices.SortStableFunc(sched.Breaks, func(a, b ScheduledBreak) int {
		return cmp.Compare(a.OffsetSeconds, b.OffsetSeconds)
	})
	s.logger.Debug().
		Int("scheduled", len(sched.Breaks)).
		Int("pastDue", len(sched.PastDue)).
		Msg("schedule computed")
	return sched, nil
}

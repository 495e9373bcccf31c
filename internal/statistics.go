package internal

import (
	"fmt"

	"github.com/Eyevinn/adbreak-tools/common"
)

type ScheduleStatistics struct {
	Reference          string  `json:"reference"`
	Scheduled          int     `json:"scheduled"`
	PastDue            int     `json:"pastDue"`
	TotalAdSeconds     float64 `json:"totalAdSeconds"`
	FirstOffsetSeconds float64 `json:"firstOffsetSeconds,omitempty"`
	LastEndSeconds     float64 `json:"lastEndSeconds,omitempty"`
	// Spacing between consecutive break starts, in ticks
	MinStep int64 `json:"minStep,omitempty"`
	MaxStep int64 `json:"maxStep,omitempty"`
	AvgStep int64 `json:"avgStep,omitempty"`
	// Warnings
	Errors []string `json:"errors,omitempty"`
}

func (p *JsonPrinter) PrintStatistics(s ScheduleStatistics, show bool) {
	p.Print(s, show)
}

func sliceMinMaxAverage(values []int64) (min, max, avg int64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	min = values[0]
	max = values[0]
	sum := int64(0)
	for _, number := range values {
		if number < min {
			min = number
		}
		if number > max {
			max = number
		}
		sum += number
	}
	avg = sum / int64(len(values))
	return min, max, avg
}

func CalculateSteps(timestamps []int64) []int64 {
	if len(timestamps) < 2 {
		return nil
	}

	steps := make([]int64, len(timestamps)-1)
	for i := 0; i < len(timestamps)-1; i++ {
		steps[i] = timestamps[i+1] - timestamps[i]
	}
	return steps
}

// CalculateStatistics summarizes a schedule and flags breaks that start
// before the previous one has ended.
func CalculateStatistics(s Schedule) ScheduleStatistics {
	stats := ScheduleStatistics{
		Reference: s.Reference.Format(sidecarTimeLayout),
		Scheduled: len(s.Breaks),
		PastDue:   len(s.PastDue),
	}
	if len(s.Breaks) == 0 {
		stats.Errors = append(stats.Errors, "no upcoming ad breaks")
		return stats
	}

	starts := make([]int64, len(s.Breaks))
	for i, b := range s.Breaks {
		starts[i] = int64(common.SecondsToTicks(b.OffsetSeconds))
		stats.TotalAdSeconds += b.DurationSeconds
		end := b.OffsetSeconds + b.DurationSeconds
		if end > stats.LastEndSeconds {
			stats.LastEndSeconds = end
		}
		if i > 0 {
			prev := s.Breaks[i-1]
			if prevEnd := prev.OffsetSeconds + prev.DurationSeconds; b.OffsetSeconds < prevEnd {
				stats.Errors = append(stats.Errors,
					fmt.Sprintf("ad break %q starts %gs before %q ends", b.ID, prevEnd-b.OffsetSeconds, prev.ID))
			}
		}
	}
	stats.FirstOffsetSeconds = s.Breaks[0].OffsetSeconds
	stats.MinStep, stats.MaxStep, stats.AvgStep = sliceMinMaxAverage(CalculateSteps(starts))
	return stats
}

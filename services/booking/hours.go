package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chairtime/models"
)

// window is a daily open interval in minutes from midnight.
type window struct {
	start int
	end   int
}

// BusinessHours is the configured daily schedule. Split schedules are
// supported: "09:00;16:00" paired with "13:00;20:00" yields two windows.
type BusinessHours struct {
	windows []window
}

// ParseBusinessHours builds a schedule from semicolon-separated start and end
// lists. The lists must pair up and every window must be non-empty.
func ParseBusinessHours(starts, ends string) (BusinessHours, error) {
	startParts := strings.Split(starts, ";")
	endParts := strings.Split(ends, ";")
	if len(startParts) != len(endParts) {
		return BusinessHours{}, fmt.Errorf("business hours mismatch: %d start times vs %d end times", len(startParts), len(endParts))
	}

	var bh BusinessHours
	for i := range startParts {
		start, err := parseClock(startParts[i])
		if err != nil {
			return BusinessHours{}, fmt.Errorf("invalid start time %q: %w", startParts[i], err)
		}
		end, err := parseClock(endParts[i])
		if err != nil {
			return BusinessHours{}, fmt.Errorf("invalid end time %q: %w", endParts[i], err)
		}
		if end <= start {
			return BusinessHours{}, fmt.Errorf("window %q-%q is empty", startParts[i], endParts[i])
		}
		bh.windows = append(bh.windows, window{start: start, end: end})
	}
	return bh, nil
}

// parseClock converts "HH:MM" into minutes from midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute")
	}
	return hour*60 + minute, nil
}

// Contains reports whether an appointment of the given duration starting at t
// fits entirely inside one of the windows.
func (bh BusinessHours) Contains(t time.Time, durationMinutes int) bool {
	minutes := t.Hour()*60 + t.Minute()
	for _, w := range bh.windows {
		if minutes >= w.start && minutes+durationMinutes <= w.end {
			return true
		}
	}
	return false
}

// ClosingTime returns the latest window end on the given day.
func (bh BusinessHours) ClosingTime(day time.Time) time.Time {
	latest := 0
	for _, w := range bh.windows {
		if w.end > latest {
			latest = w.end
		}
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(latest) * time.Minute)
}

// OpeningTime returns the earliest window start on the given day.
func (bh BusinessHours) OpeningTime(day time.Time) time.Time {
	earliest := bh.windows[0].start
	for _, w := range bh.windows {
		if w.start < earliest {
			earliest = w.start
		}
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(earliest) * time.Minute)
}

// WindowsFor materializes the daily windows as concrete time ranges.
func (bh BusinessHours) WindowsFor(day time.Time) []models.TimeRange {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	ranges := make([]models.TimeRange, 0, len(bh.windows))
	for _, w := range bh.windows {
		ranges = append(ranges, models.TimeRange{
			Start: midnight.Add(time.Duration(w.start) * time.Minute),
			End:   midnight.Add(time.Duration(w.end) * time.Minute),
		})
	}
	return ranges
}

// Describe renders the schedule for user-facing messages, e.g.
// "9:00 AM - 1:00 PM and 4:00 PM - 8:00 PM".
func (bh BusinessHours) Describe() string {
	parts := make([]string, 0, len(bh.windows))
	for _, w := range bh.windows {
		parts = append(parts, fmt.Sprintf("%s - %s", formatClock(w.start), formatClock(w.end)))
	}
	return strings.Join(parts, " and ")
}

// formatClock renders minutes from midnight as a 12-hour clock label.
func formatClock(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

// subtractBusy removes busy blocks from the open windows, returning the
// continuous free intervals.
func subtractBusy(windows []models.TimeRange, busy []models.TimeRange) []models.TimeRange {
	available := append([]models.TimeRange(nil), windows...)
	for _, block := range busy {
		var updated []models.TimeRange
		for _, iv := range available {
			if !block.End.After(iv.Start) || !block.Start.Before(iv.End) {
				updated = append(updated, iv)
				continue
			}
			if block.Start.After(iv.Start) {
				updated = append(updated, models.TimeRange{Start: iv.Start, End: block.Start})
			}
			if block.End.Before(iv.End) {
				updated = append(updated, models.TimeRange{Start: block.End, End: iv.End})
			}
		}
		available = updated
	}
	return available
}

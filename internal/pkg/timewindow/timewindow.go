package timewindow

import (
	"sort"
	"time"
)

// Window is a half-open interval [Start, End) on a single day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// ParseClock places a "15:04" clock string onto the given date in UTC.
func ParseClock(clock string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// DayStart truncates to midnight UTC of the same calendar date.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Merge sorts the windows and unions any that touch or overlap.
func Merge(windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}
	ws := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.End.After(w.Start) {
			ws = append(ws, w)
		}
	}
	if len(ws) == 0 {
		return nil
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })

	merged := ws[:1]
	for _, w := range ws[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// Subtract removes the busy windows from each free window and returns
// the remaining gaps, sorted and non-overlapping.
func Subtract(free, busy []Window) []Window {
	free = Merge(free)
	busy = Merge(busy)
	if len(free) == 0 {
		return nil
	}

	out := make([]Window, 0, len(free))
	for _, f := range free {
		cur := f.Start
		for _, b := range busy {
			if !b.End.After(cur) || !b.Start.Before(f.End) {
				continue
			}
			if b.Start.After(cur) {
				out = append(out, Window{Start: cur, End: b.Start})
			}
			if b.End.After(cur) {
				cur = b.End
			}
			if !cur.Before(f.End) {
				break
			}
		}
		if cur.Before(f.End) {
			out = append(out, Window{Start: cur, End: f.End})
		}
	}
	return out
}

// FilterMin drops windows shorter than the minimum duration.
func FilterMin(windows []Window, min time.Duration) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Duration() >= min {
			out = append(out, w)
		}
	}
	return out
}

// Contains reports whether the union of the windows fully covers w.
func Contains(windows []Window, w Window) bool {
	for _, u := range Merge(windows) {
		if !u.Start.After(w.Start) && !u.End.Before(w.End) {
			return true
		}
	}
	return false
}

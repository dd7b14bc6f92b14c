package scheduler

import (
	"sort"
	"time"
)

// Booking is one hearing slot occupying a judge, the lawyers on the case and
// optionally a courtroom.
type Booking struct {
	ID      string
	JudgeID string
	Lawyers []string
	Room    string
	Start   time.Time
	End     time.Time
}

// ConflictType describes the type of conflict detected between bookings.
type ConflictType string

const (
	// ConflictTypeJudge indicates the judge is double-booked.
	ConflictTypeJudge ConflictType = "judge"
	// ConflictTypeLawyer indicates a lawyer is double-booked.
	ConflictTypeLawyer ConflictType = "lawyer"
	// ConflictTypeRoom indicates a courtroom is double-booked.
	ConflictTypeRoom ConflictType = "room"
)

// Conflict details an overlapping booking relation.
type Conflict struct {
	WithBookingID string
	Type          ConflictType
	Lawyer        string
	Room          string
}

// Overlaps reports whether the half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Bookings with an end at or before their start
// never overlap anything.
func Overlaps(a, b Booking) bool {
	if !a.End.After(a.Start) || !b.End.After(b.Start) {
		return false
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// DetectConflicts identifies conflicts for the candidate booking against
// existing ones. A booking never conflicts with itself (same non-empty ID).
// Results are ordered by existing booking start, then by type.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	ordered := make([]Booking, len(existing))
	copy(ordered, existing)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var conflicts []Conflict
	for _, other := range ordered {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if !Overlaps(candidate, other) {
			continue
		}

		if candidate.JudgeID != "" && candidate.JudgeID == other.JudgeID {
			conflicts = append(conflicts, Conflict{WithBookingID: other.ID, Type: ConflictTypeJudge})
		}
		for _, lawyer := range candidate.Lawyers {
			if lawyer != "" && contains(other.Lawyers, lawyer) {
				conflicts = append(conflicts, Conflict{WithBookingID: other.ID, Type: ConflictTypeLawyer, Lawyer: lawyer})
			}
		}
		if candidate.Room != "" && candidate.Room == other.Room {
			conflicts = append(conflicts, Conflict{WithBookingID: other.ID, Type: ConflictTypeRoom, Room: candidate.Room})
		}
	}
	return conflicts
}

// Day bounds the bookable hours of each day.
type Day struct {
	Opens  time.Duration
	Closes time.Duration
}

// DefaultDay is a 09:00 to 17:00 sitting day.
var DefaultDay = Day{Opens: 9 * time.Hour, Closes: 17 * time.Hour}

// FirstFree returns the earliest start at or after from, aligned to step,
// where candidate (moved to that start, keeping its duration) has no
// conflicts and fits inside the sitting day. Weekends are skipped. It gives
// up after horizon days and reports false.
func FirstFree(existing []Booking, candidate Booking, from time.Time, step time.Duration, day Day, horizon int) (Booking, bool) {
	duration := candidate.End.Sub(candidate.Start)
	if duration <= 0 || step <= 0 || day.Closes-day.Opens < duration {
		return Booking{}, false
	}

	loc := from.Location()
	midnight := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for offset := 0; offset < horizon; offset++ {
		date := midnight.AddDate(0, 0, offset)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for start := date.Add(day.Opens); !start.Add(duration).After(date.Add(day.Closes)); start = start.Add(step) {
			if start.Before(from) {
				continue
			}
			probe := candidate
			probe.Start = start
			probe.End = start.Add(duration)
			if len(DetectConflicts(existing, probe)) == 0 {
				return probe, true
			}
		}
	}
	return Booking{}, false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

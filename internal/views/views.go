package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/courtdesk/internal/application"
)

const (
	// DefaultTrendDays is the trend window used when none is given.
	DefaultTrendDays = 7
	// DefaultListLimit bounds the dashboard's recent and pending lists.
	DefaultListLimit = 5
	// UnknownJudgeLabel names a judge id that is not in the judges collection.
	UnknownJudgeLabel = "Judge assigned"
)

// ScheduleEntry pairs a schedule with its case. Case is nil when the case is
// missing from the cases collection; CaseLabel is always set.
type ScheduleEntry struct {
	Schedule  application.Schedule
	Case      *application.Case
	CaseLabel string
}

// Stats are the dashboard counters.
type Stats struct {
	TotalCases     int
	TotalJudges    int
	ScheduledToday int
	PendingCases   int
}

// TrendBucket counts the cases filed on one calendar day.
type TrendBucket struct {
	Day   string
	Count int
}

// CaseLabel returns the placeholder used for a case that cannot be resolved.
func CaseLabel(id application.ID) string {
	return fmt.Sprintf("Case #%s", id)
}

func indexCases(cases []application.Case) map[application.ID]int {
	index := make(map[application.ID]int, len(cases))
	for i, c := range cases {
		if _, seen := index[c.ID]; !seen {
			index[c.ID] = i
		}
	}
	return index
}

// JudgeSchedule returns the judge's schedules joined to their cases, ordered by
// start time ascending. Schedules whose case is unknown are kept with a
// placeholder label.
func JudgeSchedule(judgeID application.ID, schedules []application.Schedule, cases []application.Case) []ScheduleEntry {
	byID := indexCases(cases)
	entries := make([]ScheduleEntry, 0)
	for _, s := range schedules {
		if judgeID.IsZero() || s.Judge != judgeID {
			continue
		}
		entries = append(entries, joinSchedule(s, cases, byID))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Schedule.StartTime.Before(entries[j].Schedule.StartTime)
	})
	return entries
}

func joinSchedule(s application.Schedule, cases []application.Case, byID map[application.ID]int) ScheduleEntry {
	entry := ScheduleEntry{Schedule: s}
	if i, ok := byID[s.Case]; ok {
		c := cases[i]
		entry.Case = &c
		entry.CaseLabel = c.CaseNumber
	}
	if entry.CaseLabel == "" {
		entry.CaseLabel = strings.TrimSpace(s.CaseNumber)
	}
	if entry.CaseLabel == "" {
		entry.CaseLabel = CaseLabel(s.Case)
	}
	return entry
}

// LawyerCases returns the cases listing lawyerID, most recently filed first.
func LawyerCases(lawyerID application.ID, cases []application.Case) []application.Case {
	out := make([]application.Case, 0)
	for _, c := range cases {
		if application.ContainsID(c.Lawyers, lawyerID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FiledIn.After(out[j].FiledIn.Time)
	})
	return out
}

// LawyerCaseCounts counts, per lawyer, the cases listing them.
func LawyerCaseCounts(lawyers []application.Lawyer, cases []application.Case) map[application.ID]int {
	counts := make(map[application.ID]int, len(lawyers))
	for _, l := range lawyers {
		counts[l.ID] = 0
	}
	for _, c := range cases {
		seen := make(map[application.ID]bool, len(c.Lawyers))
		for _, id := range c.Lawyers {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, known := counts[id]; known {
				counts[id]++
			}
		}
	}
	return counts
}

// CaseJudgeName returns the name of the case's assigned judge, UnknownJudgeLabel
// when the judge is not in the collection, and "" when unassigned.
func CaseJudgeName(c application.Case, judges []application.Judge) string {
	if c.AssignedJudge.IsZero() {
		return ""
	}
	for _, j := range judges {
		if j.ID == c.AssignedJudge {
			return j.Name
		}
	}
	return UnknownJudgeLabel
}

// ScheduledToday reports whether the schedule starts on today's local date.
// The comparison uses the raw start_time date prefix as the backend sent it.
func ScheduledToday(s application.Schedule, today time.Time) bool {
	if s.StartTime.IsZero() {
		return false
	}
	return s.StartTime.DatePrefix() == today.Format(application.DateLayout)
}

// DashboardStats computes the dashboard counters.
func DashboardStats(cases []application.Case, judges []application.Judge, schedules []application.Schedule, today time.Time) Stats {
	stats := Stats{TotalCases: len(cases), TotalJudges: len(judges)}
	for _, s := range schedules {
		if ScheduledToday(s, today) {
			stats.ScheduledToday++
		}
	}
	for _, c := range cases {
		if c.Pending() {
			stats.PendingCases++
		}
	}
	return stats
}

// Trend returns one bucket per calendar day, oldest first, ending today.
// days below one falls back to DefaultTrendDays.
func Trend(cases []application.Case, days int, today time.Time) []TrendBucket {
	if days < 1 {
		days = DefaultTrendDays
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -(days - 1))

	buckets := make([]TrendBucket, days)
	position := make(map[string]int, days)
	for i := range buckets {
		day := start.AddDate(0, 0, i).Format(application.DateLayout)
		buckets[i] = TrendBucket{Day: day}
		position[day] = i
	}
	for _, c := range cases {
		if i, ok := position[c.FiledIn.String()]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// PendingCases returns up to limit unassigned cases in collection order. A
// limit below one returns all of them.
func PendingCases(cases []application.Case, limit int) []application.Case {
	out := make([]application.Case, 0)
	for _, c := range cases {
		if !c.Pending() {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// RecentSchedules returns up to limit schedules joined to their cases, latest
// start first. A limit below one returns all of them.
func RecentSchedules(schedules []application.Schedule, cases []application.Case, limit int) []ScheduleEntry {
	byID := indexCases(cases)
	entries := make([]ScheduleEntry, 0, len(schedules))
	for _, s := range schedules {
		entries = append(entries, joinSchedule(s, cases, byID))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return latestFirst(entries[i].Schedule.StartTime, entries[j].Schedule.StartTime)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// latestFirst orders parsed start times newest first, then unparseable ones by raw value.
func latestFirst(a, b application.Timestamp) bool {
	if a.Time.IsZero() != b.Time.IsZero() {
		return !a.Time.IsZero()
	}
	if a.Time.IsZero() {
		return a.Before(b)
	}
	return b.Before(a)
}

func matches(term string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FilterCases matches term against the case number and restricts to caseType
// unless it is empty or "all".
func FilterCases(cases []application.Case, term, caseType string) []application.Case {
	caseType = strings.ToLower(strings.TrimSpace(caseType))
	out := make([]application.Case, 0, len(cases))
	for _, c := range cases {
		if caseType != "" && caseType != "all" && c.CaseType != caseType {
			continue
		}
		if matches(term, c.CaseNumber) {
			out = append(out, c)
		}
	}
	return out
}

// FilterJudges matches term against judge name and court.
func FilterJudges(judges []application.Judge, term string) []application.Judge {
	out := make([]application.Judge, 0, len(judges))
	for _, j := range judges {
		if matches(term, j.Name, j.Court) {
			out = append(out, j)
		}
	}
	return out
}

// FilterLawyers matches term against lawyer name.
func FilterLawyers(lawyers []application.Lawyer, term string) []application.Lawyer {
	out := make([]application.Lawyer, 0, len(lawyers))
	for _, l := range lawyers {
		if matches(term, l.Name) {
			out = append(out, l)
		}
	}
	return out
}

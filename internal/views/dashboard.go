package views

import (
	"time"

	"github.com/example/courtdesk/internal/application"
)

// Dashboard bundles everything the dashboard view renders for one tick.
type Dashboard struct {
	Stats           Stats
	Trend           []TrendBucket
	RecentSchedules []ScheduleEntry
	PendingCases    []application.Case
	JudgeNames      map[application.ID]string
	LawyerCaseCount map[application.ID]int
	Errors          map[string]error
	Loaded          bool
}

// Compose derives the dashboard from a refresher snapshot. Collections that
// have not loaded yet are empty, so partial snapshots render partially.
func Compose(snap application.Snapshot, today time.Time, trendDays int) Dashboard {
	names := make(map[application.ID]string, len(snap.Cases))
	for _, c := range snap.Cases {
		if name := CaseJudgeName(c, snap.Judges); name != "" {
			names[c.ID] = name
		}
	}
	return Dashboard{
		Stats:           DashboardStats(snap.Cases, snap.Judges, snap.Schedules, today),
		Trend:           Trend(snap.Cases, trendDays, today),
		RecentSchedules: RecentSchedules(snap.Schedules, snap.Cases, DefaultListLimit),
		PendingCases:    PendingCases(snap.Cases, DefaultListLimit),
		JudgeNames:      names,
		LawyerCaseCount: LawyerCaseCounts(snap.Lawyers, snap.Cases),
		Errors:          snap.Errors(),
		Loaded:          snap.Loaded(),
	}
}

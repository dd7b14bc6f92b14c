package views

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/example/courtdesk/internal/application"
)

func decode[T any](t *testing.T, raw string) []T {
	t.Helper()
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return out
}

func localDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 0, 0, 0, time.Local)
}

func TestJudgeSchedule(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[{"id": 1, "case_number": "CIV-1"}, {"id": 2, "case_number": "CRI-2"}]`)
	schedules := decode[application.Schedule](t, `[
		{"id": 10, "case": 2, "judge": "5", "start_time": "2025-01-12T09:00"},
		{"id": 11, "case": 99, "judge": 5, "start_time": "2025-01-10T14:00"},
		{"id": 12, "case": 1, "judge": 6, "start_time": "2025-01-09T09:00"},
		{"id": 13, "case": "1", "judge": 5, "start_time": "2025-01-10T10:00"}
	]`)

	orderings := [][]application.Schedule{
		schedules,
		{schedules[3], schedules[2], schedules[1], schedules[0]},
		{schedules[1], schedules[3], schedules[0], schedules[2]},
	}
	for _, input := range orderings {
		entries := JudgeSchedule("5", input, cases)
		if len(entries) != 3 {
			t.Fatalf("expected three schedules for judge 5, got %d", len(entries))
		}
		gotIDs := []application.ID{entries[0].Schedule.ID, entries[1].Schedule.ID, entries[2].Schedule.ID}
		if !reflect.DeepEqual(gotIDs, []application.ID{"13", "11", "10"}) {
			t.Fatalf("expected ascending start order, got %v", gotIDs)
		}
		if entries[1].Case != nil || entries[1].CaseLabel != "Case #99" {
			t.Fatalf("expected placeholder for missing case, got %#v", entries[1])
		}
		if entries[0].CaseLabel != "CIV-1" || entries[2].CaseLabel != "CRI-2" {
			t.Fatalf("unexpected labels %q %q", entries[0].CaseLabel, entries[2].CaseLabel)
		}
	}

	if got := JudgeSchedule("", schedules, cases); len(got) != 0 {
		t.Fatalf("expected no entries for an absent judge id")
	}
}

func TestScheduleOrderingWithUnparseableTimes(t *testing.T) {
	t.Parallel()

	schedules := decode[application.Schedule](t, `[
		{"id": 1, "case": 1, "judge": 5, "start_time": "TBA"},
		{"id": 2, "case": 1, "judge": 5, "start_time": "2025-01-12T09:00"},
		{"id": 3, "case": 1, "judge": 5, "start_time": "2024-12-01 Morning"},
		{"id": 4, "case": 1, "judge": 5, "start_time": "2025-01-10T09:00"}
	]`)
	orderings := [][]application.Schedule{
		schedules,
		{schedules[3], schedules[2], schedules[1], schedules[0]},
		{schedules[2], schedules[0], schedules[3], schedules[1]},
	}

	ids := func(entries []ScheduleEntry) []application.ID {
		out := make([]application.ID, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Schedule.ID)
		}
		return out
	}
	for _, input := range orderings {
		if got := ids(JudgeSchedule("5", input, nil)); !reflect.DeepEqual(got, []application.ID{"4", "2", "3", "1"}) {
			t.Fatalf("expected parsed starts ascending then unparseable ones, got %v", got)
		}
		if got := ids(RecentSchedules(input, nil, 0)); !reflect.DeepEqual(got, []application.ID{"2", "4", "3", "1"}) {
			t.Fatalf("expected parsed starts descending then unparseable ones, got %v", got)
		}
	}
}

func TestLawyerCases(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[
		{"id": 1, "case_number": "A", "filed_in": "2025-01-01", "lawyers": ["7"]},
		{"id": 2, "case_number": "B", "filed_in": "2025-03-01", "lawyers": [7, 8]},
		{"id": 3, "case_number": "C", "filed_in": "2025-02-01", "lawyers": [8]},
		{"id": 4, "case_number": "D", "filed_in": "2025-02-15", "lawyers": null}
	]`)

	var numeric application.ID
	if err := json.Unmarshal([]byte(`7`), &numeric); err != nil {
		t.Fatalf("decode id: %v", err)
	}

	got := LawyerCases(numeric, cases)
	if len(got) != 2 || got[0].CaseNumber != "B" || got[1].CaseNumber != "A" {
		t.Fatalf("expected B then A, got %#v", got)
	}

	counts := LawyerCaseCounts(decode[application.Lawyer](t, `[{"id": "7"}, {"id": 8}, {"id": 9}]`), cases)
	want := map[application.ID]int{"7": 2, "8": 2, "9": 0}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("LawyerCaseCounts = %v, want %v", counts, want)
	}
}

func TestCaseJudgeName(t *testing.T) {
	t.Parallel()

	judges := decode[application.Judge](t, `[{"id": 5, "name": "Rao"}]`)
	cases := decode[application.Case](t, `[{"id": 1, "assigned_judge": "5"}, {"id": 2, "assigned_judge": 6}, {"id": 3, "assigned_judge": null}]`)

	if got := CaseJudgeName(cases[0], judges); got != "Rao" {
		t.Fatalf("expected judge name, got %q", got)
	}
	if got := CaseJudgeName(cases[1], judges); got != UnknownJudgeLabel {
		t.Fatalf("expected fallback label, got %q", got)
	}
	if got := CaseJudgeName(cases[2], judges); got != "" {
		t.Fatalf("expected empty name for unassigned case, got %q", got)
	}
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[{"id": 1, "assigned_judge": null}, {"id": 2, "assigned_judge": 5}]`)
	judges := decode[application.Judge](t, `[{"id": 5}]`)
	schedules := decode[application.Schedule](t, `[{"id": 1, "start_time": "2025-01-10T10:00"}]`)

	stats := DashboardStats(cases, judges, schedules, localDay(2025, 1, 10))
	want := Stats{TotalCases: 2, TotalJudges: 1, ScheduledToday: 1, PendingCases: 1}
	if stats != want {
		t.Fatalf("DashboardStats = %#v, want %#v", stats, want)
	}
	if again := DashboardStats(cases, judges, schedules, localDay(2025, 1, 10)); again != stats {
		t.Fatalf("expected identical output for identical input")
	}

	if next := DashboardStats(cases, judges, schedules, localDay(2025, 1, 11)); next.ScheduledToday != 0 {
		t.Fatalf("expected nothing scheduled on 2025-01-11, got %d", next.ScheduledToday)
	}
}

func TestTrend(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[
		{"id": 1, "filed_in": "2025-01-10"},
		{"id": 2, "filed_in": "2025-01-10"},
		{"id": 3, "filed_in": "2025-01-04"},
		{"id": 4, "filed_in": "2025-01-03"},
		{"id": 5, "filed_in": "2025-01-11"},
		{"id": 6, "filed_in": null}
	]`)

	buckets := Trend(cases, 7, localDay(2025, 1, 10))
	if len(buckets) != 7 {
		t.Fatalf("expected seven buckets, got %d", len(buckets))
	}
	if buckets[0].Day != "2025-01-04" || buckets[6].Day != "2025-01-10" {
		t.Fatalf("unexpected window %s..%s", buckets[0].Day, buckets[6].Day)
	}
	counts := make([]int, len(buckets))
	for i, b := range buckets {
		counts[i] = b.Count
	}
	if !reflect.DeepEqual(counts, []int{1, 0, 0, 0, 0, 0, 2}) {
		t.Fatalf("unexpected counts %v", counts)
	}

	if got := Trend(nil, 0, localDay(2025, 3, 1)); len(got) != DefaultTrendDays || got[0].Day != "2025-02-23" {
		t.Fatalf("expected default window crossing the month boundary, got %#v", got)
	}
}

func TestPendingAndRecent(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[
		{"id": 1, "case_number": "A"}, {"id": 2, "case_number": "B", "assigned_judge": 1},
		{"id": 3, "case_number": "C"}, {"id": 4, "case_number": "D"}
	]`)
	pending := PendingCases(cases, 2)
	if len(pending) != 2 || pending[0].CaseNumber != "A" || pending[1].CaseNumber != "C" {
		t.Fatalf("unexpected pending cases %#v", pending)
	}
	if all := PendingCases(cases, 0); len(all) != 3 {
		t.Fatalf("expected all pending cases without a limit, got %d", len(all))
	}

	schedules := decode[application.Schedule](t, `[
		{"id": 1, "case": 1, "start_time": "2025-01-01T09:00"},
		{"id": 2, "case": 3, "start_time": "2025-01-03T09:00", "case_number": "ignored"},
		{"id": 3, "case": 42, "start_time": "2025-01-02T09:00", "case_number": "OLD-42"}
	]`)
	recent := RecentSchedules(schedules, cases, 2)
	if len(recent) != 2 || recent[0].Schedule.ID != "2" || recent[1].Schedule.ID != "3" {
		t.Fatalf("unexpected recent schedules %#v", recent)
	}
	if recent[0].CaseLabel != "C" || recent[1].CaseLabel != "OLD-42" {
		t.Fatalf("unexpected labels %q %q", recent[0].CaseLabel, recent[1].CaseLabel)
	}
}

func TestFilters(t *testing.T) {
	t.Parallel()

	cases := decode[application.Case](t, `[
		{"id": 1, "case_number": "CIV-2025-01", "case_type": "civil"},
		{"id": 2, "case_number": "CRI-2025-02", "case_type": "criminal"},
		{"id": 3, "case_number": "civ-2024-03", "case_type": "civil"}
	]`)
	if got := FilterCases(cases, "civ", "all"); len(got) != 2 {
		t.Fatalf("expected case-insensitive number search, got %d", len(got))
	}
	if got := FilterCases(cases, "2025", "criminal"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected type filter to apply, got %#v", got)
	}
	if got := FilterCases(cases, "", ""); len(got) != 3 {
		t.Fatalf("expected empty filters to keep everything")
	}

	judges := decode[application.Judge](t, `[{"id": 1, "name": "A. Rao", "court": "High Court"}, {"id": 2, "name": "B. Sen", "court": "District"}]`)
	if got := FilterJudges(judges, "district"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected court search, got %#v", got)
	}

	lawyers := decode[application.Lawyer](t, `[{"id": 1, "name": "Iyer"}, {"id": 2, "name": "Das"}]`)
	if got := FilterLawyers(lawyers, "IY"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected name search, got %#v", got)
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	snap := application.Snapshot{
		Cases:  decode[application.Case](t, `[{"id": 1, "assigned_judge": 5, "filed_in": "2025-01-10", "lawyers": [7]}, {"id": 2}]`),
		Judges: decode[application.Judge](t, `[{"id": 5, "name": "Rao"}]`),
		Status: map[string]application.ResourceStatus{
			application.ResourceCases:  {Loaded: true},
			application.ResourceJudges: {Loaded: true},
		},
	}

	dash := Compose(snap, localDay(2025, 1, 10), 3)
	if dash.Loaded {
		t.Fatalf("expected partial snapshot to report not loaded")
	}
	if dash.Stats.TotalCases != 2 || dash.Stats.PendingCases != 1 {
		t.Fatalf("unexpected stats %#v", dash.Stats)
	}
	if len(dash.Trend) != 3 || dash.Trend[2].Count != 1 {
		t.Fatalf("unexpected trend %#v", dash.Trend)
	}
	if dash.JudgeNames["1"] != "Rao" {
		t.Fatalf("expected judge name join, got %#v", dash.JudgeNames)
	}
	if len(dash.RecentSchedules) != 0 {
		t.Fatalf("expected no schedules before they load")
	}
}

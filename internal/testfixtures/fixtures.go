package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/courtdesk/internal/application"
)

var (
	caseCounter     uint64
	judgeCounter    uint64
	lawyerCounter   uint64
	scheduleCounter uint64
)

// referenceTime is a Monday morning before court opens.
var referenceTime = time.Date(2025, time.January, 6, 8, 15, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Case fixtures -----------------------------

// CaseOption configures a generated case.
type CaseOption func(*application.Case)

// NewCase returns a deterministic, unassigned, open civil case filed on the
// reference day.
func NewCase(opts ...CaseOption) application.Case {
	idx := atomic.AddUint64(&caseCounter, 1)
	c := application.Case{
		ID:                application.IDFromInt(int64(idx)),
		CaseNumber:        fmt.Sprintf("HCCC/%03d/2025", idx),
		CaseType:          application.CaseTypeCivil,
		Description:       fmt.Sprintf("Case %03d", idx),
		FiledIn:           application.NewDate(referenceTime),
		Urgency:           0.5,
		EstimatedDuration: 60,
		Lawyers:           []application.ID{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithCaseID overrides the generated id.
func WithCaseID(id application.ID) CaseOption {
	return func(c *application.Case) { c.ID = id }
}

// WithCaseNumber overrides the generated case number.
func WithCaseNumber(number string) CaseOption {
	return func(c *application.Case) { c.CaseNumber = number }
}

// WithCaseType overrides the case type.
func WithCaseType(caseType string) CaseOption {
	return func(c *application.Case) { c.CaseType = caseType }
}

// WithFiledDaysAgo files the case days before the reference day.
func WithFiledDaysAgo(days int) CaseOption {
	return func(c *application.Case) {
		c.FiledIn = application.NewDate(referenceTime.AddDate(0, 0, -days))
	}
}

// WithUrgency overrides the urgency.
func WithUrgency(urgency float64) CaseOption {
	return func(c *application.Case) { c.Urgency = urgency }
}

// WithJudge assigns the case.
func WithJudge(id application.ID) CaseOption {
	return func(c *application.Case) { c.AssignedJudge = id }
}

// WithLawyers replaces the representing lawyers.
func WithLawyers(ids ...application.ID) CaseOption {
	return func(c *application.Case) { c.Lawyers = append([]application.ID{}, ids...) }
}

// Resolved marks the case resolved.
func Resolved() CaseOption {
	return func(c *application.Case) { c.IsResolved = true }
}

// ----------------------------- Judge fixtures ----------------------------

// JudgeOption configures a generated judge.
type JudgeOption func(*application.Judge)

// NewJudge returns a deterministic judge.
func NewJudge(opts ...JudgeOption) application.Judge {
	idx := atomic.AddUint64(&judgeCounter, 1)
	j := application.Judge{
		ID:              application.IDFromInt(int64(idx)),
		Name:            fmt.Sprintf("Hon. Judge %03d", idx),
		Court:           "High Court",
		Specialization:  application.CaseTypeCivil,
		ExperienceYears: 10,
		MaxDailyCases:   5,
	}
	for _, opt := range opts {
		opt(&j)
	}
	return j
}

// WithJudgeID overrides the generated id.
func WithJudgeID(id application.ID) JudgeOption {
	return func(j *application.Judge) { j.ID = id }
}

// WithJudgeName overrides the generated name.
func WithJudgeName(name string) JudgeOption {
	return func(j *application.Judge) { j.Name = name }
}

// WithCourt overrides the court.
func WithCourt(court string) JudgeOption {
	return func(j *application.Judge) { j.Court = court }
}

// ----------------------------- Lawyer fixtures ---------------------------

// LawyerOption configures a generated lawyer.
type LawyerOption func(*application.Lawyer)

// NewLawyer returns a deterministic lawyer.
func NewLawyer(opts ...LawyerOption) application.Lawyer {
	idx := atomic.AddUint64(&lawyerCounter, 1)
	l := application.Lawyer{
		ID:              application.IDFromInt(int64(idx)),
		Name:            fmt.Sprintf("Advocate %03d", idx),
		Specialization:  application.CaseTypeCivil,
		ExperienceYears: 5,
		HourlyRate:      "150.00",
		MaxCases:        10,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// WithLawyerID overrides the generated id.
func WithLawyerID(id application.ID) LawyerOption {
	return func(l *application.Lawyer) { l.ID = id }
}

// WithLawyerName overrides the generated name.
func WithLawyerName(name string) LawyerOption {
	return func(l *application.Lawyer) { l.Name = name }
}

// ---------------------------- Schedule fixtures --------------------------

// ScheduleOption configures a generated hearing.
type ScheduleOption func(*application.Schedule)

// NewSchedule returns a one hour hearing for caseID before judgeID at 10:00 on
// the reference day.
func NewSchedule(caseID, judgeID application.ID, opts ...ScheduleOption) application.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	start := time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day(), 10, 0, 0, 0, time.UTC)
	s := application.Schedule{
		ID:        application.IDFromInt(int64(idx)),
		Case:      caseID,
		Judge:     judgeID,
		StartTime: timestamp(start),
		EndTime:   timestamp(start.Add(time.Hour)),
		Room:      "Courtroom 1",
		Version:   1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithScheduleID overrides the generated id.
func WithScheduleID(id application.ID) ScheduleOption {
	return func(s *application.Schedule) { s.ID = id }
}

// At moves the hearing to start, keeping its length.
func At(start time.Time) ScheduleOption {
	return func(s *application.Schedule) {
		length := s.EndTime.Time.Sub(s.StartTime.Time)
		s.StartTime = timestamp(start)
		s.EndTime = timestamp(start.Add(length))
	}
}

// InRoom overrides the room.
func InRoom(room string) ScheduleOption {
	return func(s *application.Schedule) { s.Room = room }
}

func timestamp(t time.Time) application.Timestamp {
	return application.ParseTimestamp(t.Format(time.RFC3339))
}

// ---------------------------- Snapshot fixtures --------------------------

// Snapshot builds a refresher snapshot in which every collection loaded at
// fetchedAt.
func Snapshot(fetchedAt time.Time, cases []application.Case, judges []application.Judge, lawyers []application.Lawyer, schedules []application.Schedule) application.Snapshot {
	snap := application.Snapshot{
		Cases:       cases,
		Judges:      judges,
		Lawyers:     lawyers,
		Schedules:   schedules,
		Status:      make(map[string]application.ResourceStatus, len(application.ResourceNames)),
		CycleID:     "fixture",
		RefreshedAt: fetchedAt,
	}
	for _, name := range application.ResourceNames {
		snap.Status[name] = application.ResourceStatus{Loaded: true, FetchedAt: fetchedAt}
	}
	return snap
}

// WithFailure marks resource as failed on its latest fetch while keeping its
// data.
func WithFailure(snap application.Snapshot, resource string, err error) application.Snapshot {
	status := snap.Status[resource]
	status.Err = err
	snap.Status[resource] = status
	return snap
}

package stubapi

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DemoUsername = "clerk"
	DemoPassword = "courtdesk-demo"
)

// Seed fills the store with a small court: three judges, three lawyers, a
// handful of cases filed over the last week and two hearings today. It also
// registers the demo account.
func Seed(store *Store, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	now := store.now().In(loc)

	if _, err := store.Register(DemoUsername, "clerk@courtdesk.example", DemoPassword, map[string]string{
		"first_name": "Court",
		"last_name":  "Clerk",
		"city":       "Nairobi",
	}); err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	hours := json.RawMessage(`{"start":"09:00","end":"17:00"}`)
	civil := store.AddJudge(JudgeRecord{Name: "Hon. Amina Odhiambo", Court: "High Court", Specialization: "civil", ExperienceYears: 14, MaxDailyCases: 5, Availability: json.RawMessage(`{}`), WorkingHours: hours})
	criminal := store.AddJudge(JudgeRecord{Name: "Hon. Peter Kamau", Court: "Magistrates Court", Specialization: "criminal", ExperienceYears: 9, MaxDailyCases: 6, Availability: json.RawMessage(`{}`), WorkingHours: hours})
	store.AddJudge(JudgeRecord{Name: "Hon. Grace Wanjiru", Court: "Family Division", Specialization: "family", ExperienceYears: 11, MaxDailyCases: 4, Availability: json.RawMessage(`{}`), WorkingHours: hours})

	l1 := store.AddLawyer(LawyerRecord{Name: "Daniel Mwangi", Specialization: "civil", ExperienceYears: 7, HourlyRate: "150.00", BusySlots: json.RawMessage(`[]`), MaxCases: 10})
	l2 := store.AddLawyer(LawyerRecord{Name: "Faith Njeri", Specialization: "criminal", ExperienceYears: 12, HourlyRate: "220.50", BusySlots: json.RawMessage(`[]`), MaxCases: 8})
	store.AddLawyer(LawyerRecord{Name: "Samuel Otieno", Specialization: "family", ExperienceYears: 3, HourlyRate: "95.00", BusySlots: json.RawMessage(`[]`), MaxCases: 12})

	day := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format(dateLayout)
	}
	civilID, criminalID := civil.ID, criminal.ID
	c1 := store.AddCase(CaseRecord{CaseNumber: "HCCC/001/2025", CaseType: "civil", Description: "Breach of supply contract", FiledIn: day(0), Urgency: 0.6, EstimatedDuration: 90, Priority: 0.7, AssignedJudge: &civilID, Lawyers: []int64{l1.ID}})
	c2 := store.AddCase(CaseRecord{CaseNumber: "CR/114/2025", CaseType: "criminal", Description: "Robbery with violence", FiledIn: day(2), Urgency: 0.9, EstimatedDuration: 120, Priority: 0.95, AssignedJudge: &criminalID, Lawyers: []int64{l2.ID}})
	store.AddCase(CaseRecord{CaseNumber: "FAM/027/2025", CaseType: "family", Description: "Custody dispute", FiledIn: day(3), Urgency: 0.5, EstimatedDuration: 60, Priority: 0.5})
	store.AddCase(CaseRecord{CaseNumber: "HCCC/009/2025", CaseType: "civil", Description: "Land boundary claim", FiledIn: day(5), Urgency: 0.3, EstimatedDuration: 60, Priority: 0.4, Lawyers: []int64{l1.ID}})
	store.AddCase(CaseRecord{CaseNumber: "MISC/003/2025", CaseType: "other", Description: "Judicial review application", FiledIn: day(9), Urgency: 0.2, EstimatedDuration: 45, Priority: 0.2, IsResolved: true})

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	for _, h := range []struct {
		c     CaseRecord
		judge int64
		at    time.Duration
	}{
		{c: c1, judge: civil.ID, at: 10 * time.Hour},
		{c: c2, judge: criminal.ID, at: 14 * time.Hour},
	} {
		start := today.Add(h.at)
		end := formatDateTime(start.Add(time.Duration(h.c.EstimatedDuration) * time.Minute))
		store.AddSchedule(ScheduleRecord{Case: h.c.ID, Judge: h.judge, StartTime: formatDateTime(start), EndTime: &end, Room: courtroom(h.judge)})
	}
	return nil
}

package stubapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/example/courtdesk/internal/scheduler"
)

const (
	defaultHearingMinutes = 60
	slotStep              = 30 * time.Minute
	bookingHorizonDays    = 30
)

// RegenerateResult lists the cases booked by one regenerate run.
type RegenerateResult struct {
	Status      string  `json:"status"`
	Scheduled   []int64 `json:"scheduled"`
	Unscheduled []int64 `json:"unscheduled"`
}

// Regenerate books every open case that has no schedule yet. Cases are taken
// by priority, then urgency, then filing date. A case keeps its assigned judge;
// otherwise the least loaded judge is used, preferring judges whose
// specialization matches the case type. Slots start at the next full hour.
func (s *Store) Regenerate(loc *time.Location) RegenerateResult {
	if loc == nil {
		loc = time.Local
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.now().In(loc).Add(time.Hour).Truncate(time.Hour)
	result := RegenerateResult{Status: "ok", Scheduled: []int64{}, Unscheduled: []int64{}}

	scheduled := make(map[int64]bool)
	var existing []scheduler.Booking
	for _, sc := range s.schedules.list() {
		scheduled[sc.Case] = true
		if booking, ok := s.bookingFor(sc, loc); ok {
			existing = append(existing, booking)
		}
	}

	load := make(map[int64]int)
	for _, c := range s.cases.list() {
		if c.AssignedJudge != nil {
			load[*c.AssignedJudge]++
		}
	}

	var pending []CaseRecord
	for _, c := range s.cases.list() {
		if !c.IsResolved && !scheduled[c.ID] {
			pending = append(pending, c)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Urgency != b.Urgency {
			return a.Urgency > b.Urgency
		}
		return a.FiledIn < b.FiledIn
	})

	judges := s.judges.list()
	for _, c := range pending {
		booked := false
		for _, judge := range s.candidateJudges(c, judges, load) {
			probe := scheduler.Booking{
				JudgeID: strconv.FormatInt(judge.ID, 10),
				Lawyers: lawyerKeys(c.Lawyers),
				Room:    courtroom(judge.ID),
				Start:   from,
				End:     from.Add(hearingLength(c)),
			}
			slot, ok := scheduler.FirstFree(existing, probe, from, slotStep, scheduler.DefaultDay, bookingHorizonDays)
			if !ok {
				continue
			}

			end := formatDateTime(slot.End)
			rec := s.schedules.insert(ScheduleRecord{
				Case:      c.ID,
				Judge:     judge.ID,
				StartTime: formatDateTime(slot.Start),
				EndTime:   &end,
				Room:      slot.Room,
				Version:   1,
			})
			slot.ID = strconv.FormatInt(rec.ID, 10)
			existing = append(existing, slot)

			if c.AssignedJudge == nil {
				id := judge.ID
				c.AssignedJudge = &id
				s.cases.replace(c.ID, c)
				load[judge.ID]++
			}
			result.Scheduled = append(result.Scheduled, c.ID)
			booked = true
			break
		}
		if !booked {
			result.Unscheduled = append(result.Unscheduled, c.ID)
		}
	}
	return result
}

func (s *Store) candidateJudges(c CaseRecord, judges []JudgeRecord, load map[int64]int) []JudgeRecord {
	if c.AssignedJudge != nil {
		if judge, ok := s.judges.get(*c.AssignedJudge); ok {
			return []JudgeRecord{judge}
		}
	}
	ordered := make([]JudgeRecord, len(judges))
	copy(ordered, judges)
	sort.SliceStable(ordered, func(i, j int) bool {
		mi, mj := ordered[i].Specialization == c.CaseType, ordered[j].Specialization == c.CaseType
		if mi != mj {
			return mi
		}
		return load[ordered[i].ID] < load[ordered[j].ID]
	})
	return ordered
}

func (s *Store) bookingFor(sc ScheduleRecord, loc *time.Location) (scheduler.Booking, bool) {
	start, ok := parseDateTime(sc.StartTime, loc)
	if !ok {
		return scheduler.Booking{}, false
	}
	end := start.Add(defaultHearingMinutes * time.Minute)
	if sc.EndTime != nil {
		if parsed, ok := parseDateTime(*sc.EndTime, loc); ok {
			end = parsed
		}
	}
	var lawyers []string
	if c, ok := s.cases.get(sc.Case); ok {
		lawyers = lawyerKeys(c.Lawyers)
	}
	return scheduler.Booking{
		ID:      strconv.FormatInt(sc.ID, 10),
		JudgeID: strconv.FormatInt(sc.Judge, 10),
		Lawyers: lawyers,
		Room:    sc.Room,
		Start:   start,
		End:     end,
	}, true
}

func hearingLength(c CaseRecord) time.Duration {
	if c.EstimatedDuration <= 0 {
		return defaultHearingMinutes * time.Minute
	}
	return time.Duration(c.EstimatedDuration) * time.Minute
}

func lawyerKeys(ids []int64) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, strconv.FormatInt(id, 10))
	}
	return keys
}

func courtroom(judgeID int64) string {
	return fmt.Sprintf("Courtroom %d", judgeID)
}

type RegenerateHandler struct {
	store     *Store
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

func NewRegenerateHandler(store *Store, loc *time.Location, logger *slog.Logger) *RegenerateHandler {
	base := defaultLogger(logger)
	return &RegenerateHandler{store: store, location: loc, responder: newResponder(base), logger: base}
}

func (h *RegenerateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "RegenerateHandler", operation, attrs...)
}

func (h *RegenerateHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	result := h.store.Regenerate(h.location)
	h.log(r.Context(), "Regenerate", "scheduled", len(result.Scheduled), "unscheduled", len(result.Unscheduled)).InfoContext(r.Context(), "schedules regenerated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *RegenerateHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok", "message": "Backend is running"})
}

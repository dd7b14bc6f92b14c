package stubapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// collection describes one CRUD resource over the store.
type collection[R identified[R]] struct {
	name    string
	table   func(*Store) *table[R]
	decode  func(body []byte, loc *time.Location) (R, fieldErrors, error)
	check   func(s *Store, rec R) fieldErrors
	merge   func(existing, updated R) R
	cascade func(s *Store, id int64)
}

func (c collection[R]) list(s *Store) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.table(s).list()
}

func (c collection[R]) get(s *Store, id int64) (R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := c.table(s).get(id)
	if !ok {
		return rec, ErrNotFound
	}
	return rec, nil
}

func (c collection[R]) create(s *Store, rec R) (R, fieldErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.check != nil {
		if errs := c.check(s, rec); !errs.empty() {
			return rec, errs
		}
	}
	return c.table(s).insert(rec), nil
}

func (c collection[R]) update(s *Store, id int64, rec R) (R, fieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := c.table(s).get(id)
	if !ok {
		return rec, nil, ErrNotFound
	}
	if c.check != nil {
		if errs := c.check(s, rec); !errs.empty() {
			return rec, errs, nil
		}
	}
	if c.merge != nil {
		rec = c.merge(existing, rec)
	}
	updated, _ := c.table(s).replace(id, rec)
	return updated, nil, nil
}

func (c collection[R]) remove(s *Store, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !c.table(s).remove(id) {
		return ErrNotFound
	}
	if c.cascade != nil {
		c.cascade(s, id)
	}
	return nil
}

func decodeWith[Req any, R any](convert func(Req) (R, fieldErrors)) func([]byte, *time.Location) (R, fieldErrors, error) {
	return func(body []byte, _ *time.Location) (R, fieldErrors, error) {
		var req Req
		if err := json.Unmarshal(body, &req); err != nil {
			var zero R
			return zero, nil, err
		}
		rec, errs := convert(req)
		return rec, errs, nil
	}
}

func doesNotExist(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

var casesCollection = collection[CaseRecord]{
	name:   "cases",
	table:  func(s *Store) *table[CaseRecord] { return s.cases },
	decode: decodeWith(caseRequest.toRecord),
	check: func(s *Store, rec CaseRecord) fieldErrors {
		errs := fieldErrors{}
		if rec.AssignedJudge != nil {
			if _, ok := s.judges.get(*rec.AssignedJudge); !ok {
				errs.add("assigned_judge", doesNotExist(*rec.AssignedJudge))
			}
		}
		for _, id := range rec.Lawyers {
			if _, ok := s.lawyers.get(id); !ok {
				errs.add("lawyers", doesNotExist(id))
			}
		}
		return errs
	},
	merge: func(existing, updated CaseRecord) CaseRecord {
		if updated.Priority == 0 {
			updated.Priority = existing.Priority
		}
		if updated.AIAnalysis == nil {
			updated.AIAnalysis = existing.AIAnalysis
		}
		return updated
	},
	cascade: func(s *Store, id int64) {
		for _, sc := range s.schedules.list() {
			if sc.Case == id {
				s.schedules.remove(sc.ID)
			}
		}
	},
}

var judgesCollection = collection[JudgeRecord]{
	name:   "judges",
	table:  func(s *Store) *table[JudgeRecord] { return s.judges },
	decode: decodeWith(judgeRequest.toRecord),
	cascade: func(s *Store, id int64) {
		for _, sc := range s.schedules.list() {
			if sc.Judge == id {
				s.schedules.remove(sc.ID)
			}
		}
		for _, c := range s.cases.list() {
			if c.AssignedJudge != nil && *c.AssignedJudge == id {
				c.AssignedJudge = nil
				s.cases.replace(c.ID, c)
			}
		}
	},
}

var lawyersCollection = collection[LawyerRecord]{
	name:   "lawyers",
	table:  func(s *Store) *table[LawyerRecord] { return s.lawyers },
	decode: decodeWith(lawyerRequest.toRecord),
	cascade: func(s *Store, id int64) {
		for _, c := range s.cases.list() {
			kept := c.Lawyers[:0:0]
			for _, l := range c.Lawyers {
				if l != id {
					kept = append(kept, l)
				}
			}
			if len(kept) != len(c.Lawyers) {
				c.Lawyers = kept
				s.cases.replace(c.ID, c)
			}
		}
	},
}

var schedulesCollection = collection[ScheduleRecord]{
	name:  "schedules",
	table: func(s *Store) *table[ScheduleRecord] { return s.schedules },
	decode: func(body []byte, loc *time.Location) (ScheduleRecord, fieldErrors, error) {
		var req scheduleRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return ScheduleRecord{}, nil, err
		}
		rec, errs := req.toRecord(loc)
		return rec, errs, nil
	},
	check: func(s *Store, rec ScheduleRecord) fieldErrors {
		errs := fieldErrors{}
		if _, ok := s.cases.get(rec.Case); !ok {
			errs.add("case", doesNotExist(rec.Case))
		}
		if _, ok := s.judges.get(rec.Judge); !ok {
			errs.add("judge", doesNotExist(rec.Judge))
		}
		return errs
	},
	merge: func(existing, updated ScheduleRecord) ScheduleRecord {
		updated.Version = existing.Version + 1
		return updated
	},
}

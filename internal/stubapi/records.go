package stubapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout        = "2006-01-02"
	compactDateLayout = "20060102"
)

var caseTypes = map[string]bool{"civil": true, "criminal": true, "family": true, "other": true}

// UserRecord is a registered account. PasswordHash never leaves the store.
type UserRecord struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	PasswordHash string            `json:"-"`
	Profile      map[string]string `json:"-"`
}

// CaseRecord mirrors the backend case serializer output.
type CaseRecord struct {
	ID                int64           `json:"id"`
	CaseNumber        string          `json:"case_number"`
	CaseType          string          `json:"case_type"`
	Description       string          `json:"description"`
	FiledIn           string          `json:"filed_in"`
	Urgency           float64         `json:"urgency"`
	EstimatedDuration int             `json:"estimated_duration"`
	Priority          float64         `json:"priority"`
	AIAnalysis        json.RawMessage `json:"ai_analysis"`
	AssignedJudge     *int64          `json:"assigned_judge"`
	Lawyers           []int64         `json:"lawyers"`
	IsResolved        bool            `json:"is_resolved"`
}

// JudgeRecord mirrors the backend judge serializer output.
type JudgeRecord struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Court           string          `json:"court"`
	Specialization  string          `json:"specialization"`
	ExperienceYears int             `json:"experience_years"`
	MaxDailyCases   int             `json:"max_daily_cases"`
	Availability    json.RawMessage `json:"availability"`
	WorkingHours    json.RawMessage `json:"working_hours"`
	PhoneNumber     string          `json:"phone_number"`
}

// LawyerRecord mirrors the backend lawyer serializer output. HourlyRate is a
// decimal rendered as a string, as Django REST framework does.
type LawyerRecord struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Specialization  string          `json:"specialization"`
	ExperienceYears int             `json:"experience_years"`
	HourlyRate      string          `json:"hourly_rate"`
	BusySlots       json.RawMessage `json:"busy_slots"`
	MaxCases        int             `json:"max_cases"`
	PhoneNumber     string          `json:"phone_number"`
}

// ScheduleRecord mirrors the backend schedule serializer output.
type ScheduleRecord struct {
	ID        int64   `json:"id"`
	Case      int64   `json:"case"`
	Judge     int64   `json:"judge"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Room      string  `json:"room"`
	Version   int     `json:"version"`
}

func (r CaseRecord) withID(id int64) CaseRecord         { r.ID = id; return r }
func (r JudgeRecord) withID(id int64) JudgeRecord       { r.ID = id; return r }
func (r LawyerRecord) withID(id int64) LawyerRecord     { r.ID = id; return r }
func (r ScheduleRecord) withID(id int64) ScheduleRecord { r.ID = id; return r }

// fieldErrors collects per-field validation messages in the shape the
// backend returns them: {"field": ["message", ...]}.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) empty() bool {
	return len(f) == 0
}

const (
	msgRequired       = "This field is required."
	msgBlank          = "This field may not be blank."
	msgNumber         = "A valid number is required."
	msgInteger        = "A valid integer is required."
	msgDateFormat     = "Date has wrong format. Use one of these formats instead: YYYYMMDD."
	msgDateTime       = "Datetime has wrong format."
	msgIncorrectPK    = "Incorrect type. Expected pk value."
	msgEndBeforeStart = "End time must be after start time."
)

// pk decodes a primary-key reference sent as a number, numeric string or null.
type pk struct {
	set   bool
	null  bool
	value int64
	bad   bool
}

func (p *pk) UnmarshalJSON(data []byte) error {
	p.set = true
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		p.null = true
		return nil
	}
	raw := string(trimmed)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		p.bad = true
		return nil
	}
	p.value = n
	return nil
}

// number decodes a JSON number or a numeric string.
type number struct {
	set   bool
	value float64
	raw   string
	bad   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	n.set = true
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		n.set = false
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		n.bad = true
		return nil
	}
	n.value = v
	n.raw = raw
	return nil
}

func (n number) asInt(field string, errs fieldErrors) int {
	if n.bad || n.value != float64(int(n.value)) {
		errs.add(field, msgInteger)
		return 0
	}
	return int(n.value)
}

type caseRequest struct {
	CaseNumber        *string         `json:"case_number"`
	CaseType          *string         `json:"case_type"`
	Description       *string         `json:"description"`
	FiledIn           *string         `json:"filed_in"`
	Urgency           number          `json:"urgency"`
	EstimatedDuration number          `json:"estimated_duration"`
	Priority          number          `json:"priority"`
	AIAnalysis        json.RawMessage `json:"ai_analysis"`
	AssignedJudge     pk              `json:"assigned_judge"`
	Lawyers           []pk            `json:"lawyers"`
	IsResolved        *bool           `json:"is_resolved"`
}

func (req caseRequest) toRecord() (CaseRecord, fieldErrors) {
	errs := fieldErrors{}
	rec := CaseRecord{EstimatedDuration: 60, Lawyers: []int64{}}

	rec.CaseNumber = requiredString("case_number", req.CaseNumber, errs)
	if ct := requiredString("case_type", req.CaseType, errs); ct != "" {
		if !caseTypes[ct] {
			errs.add("case_type", fmt.Sprintf("%q is not a valid choice.", ct))
		}
		rec.CaseType = ct
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.FiledIn == nil {
		errs.add("filed_in", msgRequired)
	} else if filed, ok := parseFiledIn(*req.FiledIn); ok {
		rec.FiledIn = filed.Format(dateLayout)
	} else {
		errs.add("filed_in", msgDateFormat)
	}

	if req.Urgency.set {
		switch {
		case req.Urgency.bad:
			errs.add("urgency", msgNumber)
		case req.Urgency.value < 0 || req.Urgency.value > 1:
			errs.add("urgency", "Ensure this value is between 0 and 1.")
		default:
			rec.Urgency = req.Urgency.value
		}
	}
	if req.EstimatedDuration.set {
		if d := req.EstimatedDuration.asInt("estimated_duration", errs); d < 0 {
			errs.add("estimated_duration", "Ensure this value is greater than or equal to 0.")
		} else {
			rec.EstimatedDuration = d
		}
	}
	if req.Priority.set {
		if req.Priority.bad {
			errs.add("priority", msgNumber)
		} else {
			rec.Priority = req.Priority.value
		}
	}
	if len(req.AIAnalysis) > 0 && !bytes.Equal(bytes.TrimSpace(req.AIAnalysis), []byte("null")) {
		rec.AIAnalysis = append(json.RawMessage(nil), req.AIAnalysis...)
	}
	if req.AssignedJudge.bad {
		errs.add("assigned_judge", msgIncorrectPK)
	} else if req.AssignedJudge.set && !req.AssignedJudge.null {
		id := req.AssignedJudge.value
		rec.AssignedJudge = &id
	}
	for _, l := range req.Lawyers {
		if l.bad || l.null {
			errs.add("lawyers", msgIncorrectPK)
			continue
		}
		rec.Lawyers = append(rec.Lawyers, l.value)
	}
	if req.IsResolved != nil {
		rec.IsResolved = *req.IsResolved
	}
	return rec, errs
}

type judgeRequest struct {
	Name            *string         `json:"name"`
	Court           *string         `json:"court"`
	Specialization  string          `json:"specialization"`
	ExperienceYears number          `json:"experience_years"`
	MaxDailyCases   number          `json:"max_daily_cases"`
	Availability    json.RawMessage `json:"availability"`
	WorkingHours    json.RawMessage `json:"working_hours"`
	PhoneNumber     string          `json:"phone_number"`
}

func (req judgeRequest) toRecord() (JudgeRecord, fieldErrors) {
	errs := fieldErrors{}
	rec := JudgeRecord{
		Name:           requiredString("name", req.Name, errs),
		Court:          requiredString("court", req.Court, errs),
		Specialization: strings.TrimSpace(req.Specialization),
		MaxDailyCases:  5,
		Availability:   jsonOrDefault(req.Availability, "{}"),
		WorkingHours:   jsonOrDefault(req.WorkingHours, `{"start":"09:00","end":"17:00"}`),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
	}
	if req.ExperienceYears.set {
		rec.ExperienceYears = req.ExperienceYears.asInt("experience_years", errs)
	}
	if req.MaxDailyCases.set {
		rec.MaxDailyCases = req.MaxDailyCases.asInt("max_daily_cases", errs)
	}
	return rec, errs
}

type lawyerRequest struct {
	Name            *string         `json:"name"`
	Specialization  string          `json:"specialization"`
	ExperienceYears number          `json:"experience_years"`
	HourlyRate      number          `json:"hourly_rate"`
	BusySlots       json.RawMessage `json:"busy_slots"`
	MaxCases        number          `json:"max_cases"`
	PhoneNumber     string          `json:"phone_number"`
}

func (req lawyerRequest) toRecord() (LawyerRecord, fieldErrors) {
	errs := fieldErrors{}
	rec := LawyerRecord{
		Name:           requiredString("name", req.Name, errs),
		Specialization: strings.TrimSpace(req.Specialization),
		HourlyRate:     "0.00",
		BusySlots:      jsonOrDefault(req.BusySlots, "[]"),
		MaxCases:       10,
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
	}
	if req.ExperienceYears.set {
		rec.ExperienceYears = req.ExperienceYears.asInt("experience_years", errs)
	}
	if req.HourlyRate.set {
		if req.HourlyRate.bad {
			errs.add("hourly_rate", msgNumber)
		} else {
			rec.HourlyRate = strconv.FormatFloat(req.HourlyRate.value, 'f', 2, 64)
		}
	}
	if req.MaxCases.set {
		rec.MaxCases = req.MaxCases.asInt("max_cases", errs)
	}
	return rec, errs
}

type scheduleRequest struct {
	Case      pk      `json:"case"`
	Judge     pk      `json:"judge"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Room      string  `json:"room"`
}

func (req scheduleRequest) toRecord(loc *time.Location) (ScheduleRecord, fieldErrors) {
	errs := fieldErrors{}
	rec := ScheduleRecord{Room: strings.TrimSpace(req.Room), Version: 1}

	rec.Case = requiredPK("case", req.Case, errs)
	rec.Judge = requiredPK("judge", req.Judge, errs)

	var start time.Time
	if req.StartTime == nil || strings.TrimSpace(*req.StartTime) == "" {
		errs.add("start_time", msgRequired)
	} else if parsed, ok := parseDateTime(*req.StartTime, loc); ok {
		start = parsed
		rec.StartTime = formatDateTime(parsed)
	} else {
		errs.add("start_time", msgDateTime)
	}
	if req.EndTime != nil && strings.TrimSpace(*req.EndTime) != "" {
		end, ok := parseDateTime(*req.EndTime, loc)
		switch {
		case !ok:
			errs.add("end_time", msgDateTime)
		case !start.IsZero() && !end.After(start):
			errs.add("end_time", msgEndBeforeStart)
		default:
			formatted := formatDateTime(end)
			rec.EndTime = &formatted
		}
	}
	return rec, errs
}

func requiredString(field string, value *string, errs fieldErrors) string {
	if value == nil {
		errs.add(field, msgRequired)
		return ""
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		errs.add(field, msgBlank)
	}
	return trimmed
}

func requiredPK(field string, value pk, errs fieldErrors) int64 {
	switch {
	case !value.set || value.null:
		errs.add(field, msgRequired)
	case value.bad:
		errs.add(field, msgIncorrectPK)
	}
	return value.value
}

func jsonOrDefault(raw json.RawMessage, fallback string) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage(fallback)
	}
	return append(json.RawMessage(nil), trimmed...)
}

func parseFiledIn(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{compactDateLayout, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseDateTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

func formatDateTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

package application

import (
	"encoding/json"
	"strings"
)

// Case types accepted by the backend.
const (
	CaseTypeCivil    = "civil"
	CaseTypeCriminal = "criminal"
	CaseTypeFamily   = "family"
	CaseTypeOther    = "other"
)

// User is the identity record returned by the auth endpoints. It is treated as
// an immutable value once received.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// Raw is the record exactly as the backend sent it.
	Raw json.RawMessage `json:"-"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// UnmarshalJSON keeps a copy of the raw record.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*u = User(decoded)
	u.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Case is a court case as exposed by the cases collection.
type Case struct {
	ID                ID              `json:"id"`
	CaseNumber        string          `json:"case_number"`
	CaseType          string          `json:"case_type"`
	Description       string          `json:"description"`
	FiledIn           Date            `json:"filed_in"`
	Urgency           float64         `json:"urgency"`
	EstimatedDuration int             `json:"estimated_duration"`
	Priority          float64         `json:"priority"`
	AIAnalysis        json.RawMessage `json:"ai_analysis,omitempty"`
	AssignedJudge     ID              `json:"assigned_judge"`
	Lawyers           []ID            `json:"lawyers"`
	IsResolved        bool            `json:"is_resolved"`
}

// Pending reports whether no judge has been assigned yet.
func (c Case) Pending() bool {
	return c.AssignedJudge.IsZero()
}

// Judge is a member of the judges collection.
type Judge struct {
	ID              ID              `json:"id"`
	Name            string          `json:"name"`
	Court           string          `json:"court"`
	Specialization  string          `json:"specialization,omitempty"`
	ExperienceYears int             `json:"experience_years"`
	MaxDailyCases   int             `json:"max_daily_cases"`
	Availability    json.RawMessage `json:"availability,omitempty"`
	WorkingHours    json.RawMessage `json:"working_hours,omitempty"`
	PhoneNumber     string          `json:"phone_number,omitempty"`
}

// Lawyer is a member of the lawyers collection.
type Lawyer struct {
	ID              ID              `json:"id"`
	Name            string          `json:"name"`
	Specialization  string          `json:"specialization,omitempty"`
	ExperienceYears int             `json:"experience_years"`
	HourlyRate      Decimal         `json:"hourly_rate"`
	BusySlots       json.RawMessage `json:"busy_slots,omitempty"`
	MaxCases        int             `json:"max_cases"`
	PhoneNumber     string          `json:"phone_number,omitempty"`
}

// Schedule books a case in front of a judge.
type Schedule struct {
	ID        ID        `json:"id"`
	Case      ID        `json:"case"`
	Judge     ID        `json:"judge"`
	StartTime Timestamp `json:"start_time"`
	EndTime   Timestamp `json:"end_time"`
	Room      string    `json:"room"`
	Version   int       `json:"version"`

	// CaseNumber is a denormalized label some producers include.
	CaseNumber string `json:"case_number,omitempty"`
}

// CaseInput is the write payload for the cases collection.
type CaseInput struct {
	CaseNumber        string
	CaseType          string
	Description       string
	FiledIn           Date
	Urgency           *float64
	EstimatedDuration *int
	AssignedJudge     ID
	Lawyers           []ID
	IsResolved        bool
}

// MarshalJSON encodes filed_in in the compact form the backend parses.
func (in CaseInput) MarshalJSON() ([]byte, error) {
	lawyers := in.Lawyers
	if lawyers == nil {
		lawyers = []ID{}
	}
	payload := struct {
		CaseNumber        string   `json:"case_number"`
		CaseType          string   `json:"case_type"`
		Description       string   `json:"description"`
		FiledIn           string   `json:"filed_in,omitempty"`
		Urgency           *float64 `json:"urgency,omitempty"`
		EstimatedDuration *int     `json:"estimated_duration,omitempty"`
		AssignedJudge     ID       `json:"assigned_judge"`
		Lawyers           []ID     `json:"lawyers"`
		IsResolved        bool     `json:"is_resolved"`
	}{
		CaseNumber:        in.CaseNumber,
		CaseType:          in.CaseType,
		Description:       in.Description,
		FiledIn:           in.FiledIn.Compact(),
		Urgency:           in.Urgency,
		EstimatedDuration: in.EstimatedDuration,
		AssignedJudge:     in.AssignedJudge,
		Lawyers:           lawyers,
		IsResolved:        in.IsResolved,
	}
	return json.Marshal(payload)
}

// JudgeInput is the write payload for the judges collection.
type JudgeInput struct {
	Name            string `json:"name"`
	Court           string `json:"court"`
	Specialization  string `json:"specialization,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty"`
	MaxDailyCases   int    `json:"max_daily_cases,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
}

// LawyerInput is the write payload for the lawyers collection.
type LawyerInput struct {
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty"`
	HourlyRate      Decimal `json:"hourly_rate,omitempty"`
	MaxCases        int     `json:"max_cases,omitempty"`
	PhoneNumber     string  `json:"phone_number,omitempty"`
}

// ScheduleInput is the write payload for the schedules collection.
type ScheduleInput struct {
	Case      ID        `json:"case"`
	Judge     ID        `json:"judge"`
	StartTime Timestamp `json:"start_time"`
	EndTime   Timestamp `json:"end_time"`
	Room      string    `json:"room,omitempty"`
}

package models

import "time"

type EmployeeRequest struct {
	RequestID   string `json:"request_id"`
	UserID      string `json:"user_id"`
	RequestType string `json:"request_type"`
	Status      string `json:"status"`

	// time_off payload
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	AllDay    bool   `json:"all_day,omitempty"`
	OffType   string `json:"off_type,omitempty"`

	// shift payload
	ShiftStartDate string `json:"shift_start_date,omitempty"`
	ShiftStartTime string `json:"shift_start_time,omitempty"`
	ShiftEndDate   string `json:"shift_end_date,omitempty"`
	ShiftEndTime   string `json:"shift_end_time,omitempty"`

	// break payload
	BreakStartTime       string `json:"break_start_time,omitempty"`
	BreakEndTime         string `json:"break_end_time,omitempty"`
	BreakDurationMinutes int    `json:"break_duration_minutes,omitempty"`
	BreakType            string `json:"break_type,omitempty"`

	TotalHours  float64 `json:"total_hours,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
	Notes       string  `json:"notes,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	// StatusDenied never persists: a denied request is deleted. The
	// constant exists for the list filter vocabulary only.
	StatusDenied = "denied"
)

const (
	TypeTimeOff = "time_off"
	TypeShift   = "shift"
	TypeBreak   = "break"
)

type TimeClockEntry struct {
	EntryID              string     `json:"entry_id"`
	UserID               string     `json:"user_id"`
	EmployeeName         string     `json:"employee_name"`
	EmployeeRole         *string    `json:"employee_role,omitempty"`
	ClockIn              time.Time  `json:"clock_in"`
	ClockOut             *time.Time `json:"clock_out,omitempty"`
	TotalHours           float64    `json:"total_hours"`
	BreakDurationMinutes int        `json:"break_duration_minutes"`
	Status               string     `json:"status"`
	Notes                string     `json:"notes,omitempty"`
	SourceRequestID      string     `json:"source_request_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

const EntryStatusCompleted = "completed"

type TeamMember struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Active      bool   `json:"active"`
}

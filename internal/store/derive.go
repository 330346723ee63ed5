package store

import (
	"time"

	"crewops/workforce-service/internal/models"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// CombineDateTime combines a stored date ("2024-01-05") and wall-clock
// time ("09:00" or "09:00:30") into a UTC timestamp. Either part missing
// or unparseable yields false.
func CombineDateTime(date, clock string) (time.Time, bool) {
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	wall, err := time.ParseInLocation(clockLayout, clock, time.UTC)
	if err != nil {
		wall, err = time.ParseInLocation(clockLayout+":05", clock, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, time.UTC), true
}

// BuildClockEntry derives the time clock entry created when a shift
// request is approved. Returns false when no entry should be created:
// non-shift requests never produce one, and a shift without a derivable
// clock-in is skipped while the approval itself still stands.
func BuildClockEntry(request models.EmployeeRequest, member models.TeamMember, notes string) (models.TimeClockEntry, bool) {
	if request.RequestType != models.TypeShift {
		return models.TimeClockEntry{}, false
	}
	clockIn, ok := CombineDateTime(request.ShiftStartDate, request.ShiftStartTime)
	if !ok {
		return models.TimeClockEntry{}, false
	}

	entry := models.TimeClockEntry{
		UserID:               request.UserID,
		EmployeeName:         member.DisplayName,
		ClockIn:              clockIn,
		TotalHours:           request.TotalHours,
		BreakDurationMinutes: request.BreakDurationMinutes,
		Status:               models.EntryStatusCompleted,
		Notes:                notes,
		SourceRequestID:      request.RequestID,
	}
	if entry.EmployeeName == "" {
		entry.EmployeeName = "Unknown"
	}
	if member.Role != "" {
		role := member.Role
		entry.EmployeeRole = &role
	}
	if clockOut, ok := CombineDateTime(request.ShiftEndDate, request.ShiftEndTime); ok {
		entry.ClockOut = &clockOut
	}
	return entry, true
}

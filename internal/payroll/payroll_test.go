package payroll

import (
	"testing"
	"time"

	"crewops/workforce-service/internal/models"
)

func entry(userID, name string, clockIn time.Time, hours float64) models.TimeClockEntry {
	return models.TimeClockEntry{
		UserID:       userID,
		EmployeeName: name,
		ClockIn:      clockIn,
		TotalHours:   hours,
		Status:       models.EntryStatusCompleted,
	}
}

func TestSummarizeFlatRate(t *testing.T) {
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	entries := []models.TimeClockEntry{
		entry("u1", "Dana Reyes", monday, 8),
		entry("u1", "Dana Reyes", monday.AddDate(0, 0, 1), 8),
	}

	summaries := Summarize(entries, Options{HourlyRate: 25, OvertimeWeekHours: 40})
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	s := summaries[0]
	if s.TotalHours != 16 || s.RegularHours != 16 || s.OvertimeHours != 0 {
		t.Fatalf("hours = %+v", s)
	}
	if s.TotalPay != 400 {
		t.Fatalf("total_pay = %v, want 400", s.TotalPay)
	}
}

func TestSummarizeOvertimePremium(t *testing.T) {
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	var entries []models.TimeClockEntry
	for day := 0; day < 5; day++ {
		entries = append(entries, entry("u1", "Dana Reyes", monday.AddDate(0, 0, day), 10))
	}

	summaries := Summarize(entries, Options{HourlyRate: 20, OvertimeWeekHours: 40})
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	s := summaries[0]
	if s.RegularHours != 40 || s.OvertimeHours != 10 {
		t.Fatalf("split = %v regular / %v overtime", s.RegularHours, s.OvertimeHours)
	}
	// 50h flat at 20 plus a half-rate premium on the 10 overtime hours.
	if s.BasePay != 1000 || s.OvertimePremium != 100 || s.TotalPay != 1100 {
		t.Fatalf("pay = %+v", s)
	}
}

func TestSummarizeSplitsWeeksIndependently(t *testing.T) {
	week1 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)
	entries := []models.TimeClockEntry{
		entry("u1", "Dana Reyes", week1, 45),
		entry("u1", "Dana Reyes", week2, 30),
	}

	summaries := Summarize(entries, Options{HourlyRate: 10, OvertimeWeekHours: 40})
	s := summaries[0]
	if s.OvertimeHours != 5 {
		t.Fatalf("overtime = %v, want 5 from week one only", s.OvertimeHours)
	}
}

func TestSummarizeSkipsIncompleteEntries(t *testing.T) {
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	open := entry("u1", "Dana Reyes", monday, 8)
	open.Status = "open"
	summaries := Summarize([]models.TimeClockEntry{open}, Options{HourlyRate: 25})
	if len(summaries) != 0 {
		t.Fatalf("got %d summaries, want 0", len(summaries))
	}
}

func TestSummarizeSortsByName(t *testing.T) {
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	entries := []models.TimeClockEntry{
		entry("u2", "Omar Valdez", monday, 8),
		entry("u1", "Alex Kim", monday, 8),
	}
	summaries := Summarize(entries, Options{HourlyRate: 25})
	if summaries[0].EmployeeName != "Alex Kim" || summaries[1].EmployeeName != "Omar Valdez" {
		t.Fatalf("order = %q, %q", summaries[0].EmployeeName, summaries[1].EmployeeName)
	}
}

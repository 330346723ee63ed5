// Package payroll computes summary pay figures from time clock entries.
// The hourly rate and overtime threshold are injected configuration.
package payroll

import (
	"sort"

	"crewops/workforce-service/internal/models"
)

type EmployeeSummary struct {
	UserID          string  `json:"user_id"`
	EmployeeName    string  `json:"employee_name"`
	TotalHours      float64 `json:"total_hours"`
	RegularHours    float64 `json:"regular_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
	BasePay         float64 `json:"base_pay"`
	OvertimePremium float64 `json:"overtime_premium"`
	TotalPay        float64 `json:"total_pay"`
}

type Options struct {
	HourlyRate        float64
	OvertimeWeekHours float64
}

// Summarize aggregates entries per employee. Hours past the weekly
// threshold earn a 0.5x premium on top of the flat rate.
func Summarize(entries []models.TimeClockEntry, options Options) []EmployeeSummary {
	threshold := options.OvertimeWeekHours
	if threshold <= 0 {
		threshold = 40
	}

	type weekKey struct {
		year int
		week int
	}
	weekly := make(map[string]map[weekKey]float64)
	names := make(map[string]string)
	for _, entry := range entries {
		if entry.Status != models.EntryStatusCompleted {
			continue
		}
		year, week := entry.ClockIn.ISOWeek()
		if weekly[entry.UserID] == nil {
			weekly[entry.UserID] = make(map[weekKey]float64)
		}
		weekly[entry.UserID][weekKey{year, week}] += entry.TotalHours
		if names[entry.UserID] == "" {
			names[entry.UserID] = entry.EmployeeName
		}
	}

	summaries := make([]EmployeeSummary, 0, len(weekly))
	for userID, weeks := range weekly {
		summary := EmployeeSummary{UserID: userID, EmployeeName: names[userID]}
		for _, hours := range weeks {
			summary.TotalHours += hours
			if hours > threshold {
				summary.RegularHours += threshold
				summary.OvertimeHours += hours - threshold
			} else {
				summary.RegularHours += hours
			}
		}
		summary.BasePay = summary.TotalHours * options.HourlyRate
		summary.OvertimePremium = summary.OvertimeHours * options.HourlyRate * 0.5
		summary.TotalPay = summary.BasePay + summary.OvertimePremium
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].EmployeeName == summaries[j].EmployeeName {
			return summaries[i].UserID < summaries[j].UserID
		}
		return summaries[i].EmployeeName < summaries[j].EmployeeName
	})
	return summaries
}

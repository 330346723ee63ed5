package store

import "crewops/workforce-service/internal/models"

const FilterAll = "all"

func ValidStatusFilter(value string) bool {
	switch value {
	case FilterAll, models.StatusPending, models.StatusApproved, models.StatusDenied:
		return true
	default:
		return false
	}
}

func ValidTypeFilter(value string) bool {
	switch value {
	case FilterAll, models.TypeTimeOff, models.TypeShift, models.TypeBreak:
		return true
	default:
		return false
	}
}

// FilterRequests returns the subset matching both filters; "all" matches
// everything. Filtering is pure, order is preserved.
func FilterRequests(requests []models.EmployeeRequest, statusFilter, typeFilter string) []models.EmployeeRequest {
	filtered := make([]models.EmployeeRequest, 0, len(requests))
	for _, request := range requests {
		if statusFilter != FilterAll && request.Status != statusFilter {
			continue
		}
		if typeFilter != FilterAll && request.RequestType != typeFilter {
			continue
		}
		filtered = append(filtered, request)
	}
	return filtered
}

package store

import "crewops/workforce-service/internal/models"

var decisionMap = map[string][]string{
	"approve": {models.StatusPending},
	"deny":    {models.StatusPending},
}

func ValidDecision(decision, fromStatus string) bool {
	allowed, ok := decisionMap[decision]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}

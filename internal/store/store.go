package store

import (
	"context"
	"encoding/json"
	"time"

	"crewops/workforce-service/internal/models"
)

type ApproveRequestInput struct {
	RequestID  string
	ReviewerID string
	Notes      string
	ReviewedAt time.Time
}

type DenyRequestInput struct {
	RequestID  string
	ReviewerID string
	Reason     string
	OccurredAt time.Time
}

type RequestStore interface {
	ListRequests(ctx context.Context) ([]models.EmployeeRequest, error)
	GetRequest(ctx context.Context, requestID string) (models.EmployeeRequest, error)
	ApproveRequest(ctx context.Context, input ApproveRequestInput) (models.EmployeeRequest, *models.TimeClockEntry, error)
	DenyRequest(ctx context.Context, input DenyRequestInput) (models.EmployeeRequest, error)
	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
	ListTimeClockEntries(ctx context.Context, userID string, from, to time.Time) ([]models.TimeClockEntry, error)
	ReconcileClockEntries(ctx context.Context, batchSize int) (int, error)
	ListOutboxEvents(ctx context.Context, after time.Time, limit int) ([]OutboxEvent, error)
}

type OutboxEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewops/workforce-service/internal/models"
	"crewops/workforce-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const requestColumns = `
	request_id, user_id, request_type, status,
	start_date, end_date, all_day, off_type,
	shift_start_date, shift_start_time, shift_end_date, shift_end_time,
	break_start_time, break_end_time, break_duration_minutes, break_type,
	total_hours, explanation, notes,
	submitted_at, reviewed_at, reviewed_by`

func (s *Store) ListRequests(ctx context.Context) ([]models.EmployeeRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM employee_requests
		ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.EmployeeRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (models.EmployeeRequest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM employee_requests
		WHERE request_id = $1
	`, requestID)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EmployeeRequest{}, store.ErrRequestNotFound
		}
		return models.EmployeeRequest{}, err
	}
	return request, nil
}

// ApproveRequest marks a pending request approved and, for shift requests
// with a derivable clock-in, inserts the payroll time clock entry in the
// same transaction. A losing concurrent reviewer gets ErrInvalidState.
func (s *Store) ApproveRequest(ctx context.Context, input store.ApproveRequestInput) (models.EmployeeRequest, *models.TimeClockEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.EmployeeRequest{}, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	reviewedAt := input.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}

	row := tx.QueryRow(ctx, `
		UPDATE employee_requests
		SET status = $2,
			notes = $3,
			reviewed_at = $4,
			reviewed_by = $5
		WHERE request_id = $1 AND status = $6
		RETURNING `+requestColumns+`
	`, input.RequestID, models.StatusApproved, input.Notes, reviewedAt, nullIfEmpty(input.ReviewerID), models.StatusPending)

	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = s.classifyMissingRow(ctx, tx, input.RequestID)
			return models.EmployeeRequest{}, nil, err
		}
		return models.EmployeeRequest{}, nil, err
	}

	var entry *models.TimeClockEntry
	if request.RequestType == models.TypeShift {
		member, lookupErr := lookupTeamMember(ctx, tx, request.UserID)
		if lookupErr != nil && !errors.Is(lookupErr, store.ErrMemberNotFound) {
			err = lookupErr
			return models.EmployeeRequest{}, nil, err
		}
		if built, ok := store.BuildClockEntry(request, member, input.Notes); ok {
			built.EntryID = uuid.NewString()
			built.CreatedAt = reviewedAt
			if err = insertClockEntry(ctx, tx, built); err != nil {
				err = fmt.Errorf("%w: %v", store.ErrClockEntryFailed, err)
				return models.EmployeeRequest{}, nil, err
			}
			if err = insertOutboxEvent(ctx, tx, "clock_entry.created", clockEntryPayload(built)); err != nil {
				return models.EmployeeRequest{}, nil, err
			}
			entry = &built
		}
	}

	if err = insertOutboxEvent(ctx, tx, "request.approved", requestPayload(request)); err != nil {
		return models.EmployeeRequest{}, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.EmployeeRequest{}, nil, err
	}
	return request, entry, nil
}

// DenyRequest hard-deletes a pending request. The deleted row snapshot is
// returned so the caller can notify the requester.
func (s *Store) DenyRequest(ctx context.Context, input store.DenyRequestInput) (models.EmployeeRequest, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.EmployeeRequest{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		DELETE FROM employee_requests
		WHERE request_id = $1 AND status = $2
		RETURNING `+requestColumns+`
	`, input.RequestID, models.StatusPending)

	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = s.classifyMissingRow(ctx, tx, input.RequestID)
			return models.EmployeeRequest{}, err
		}
		return models.EmployeeRequest{}, err
	}

	if err = insertOutboxEvent(ctx, tx, "request.denied", deniedPayload(request, input)); err != nil {
		return models.EmployeeRequest{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.EmployeeRequest{}, err
	}
	return request, nil
}

func (s *Store) classifyMissingRow(ctx context.Context, tx pgx.Tx, requestID string) error {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status FROM employee_requests WHERE request_id = $1
	`, requestID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrRequestNotFound
		}
		return err
	}
	return store.ErrInvalidState
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.user_id, m.display_name, COALESCE(m.role, ''), COALESCE(i.avatar_url, ''), m.active
		FROM team_members m
		LEFT JOIN identities i ON i.user_id = m.user_id
		WHERE m.active = TRUE
		ORDER BY m.display_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.UserID, &member.DisplayName, &member.Role, &member.AvatarURL, &member.Active); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Store) ListTimeClockEntries(ctx context.Context, userID string, from, to time.Time) ([]models.TimeClockEntry, error) {
	query := `
		SELECT entry_id, user_id, employee_name, employee_role, clock_in, clock_out,
			total_hours, break_duration_minutes, status, COALESCE(notes, ''), COALESCE(source_request_id::text, ''), created_at
		FROM time_clock_entries
		WHERE 1 = 1
	`
	args := []interface{}{}
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND clock_in >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND clock_in < $%d", len(args))
	}
	query += " ORDER BY clock_in ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeClockEntry
	for rows.Next() {
		var entry models.TimeClockEntry
		var roleNull sql.NullString
		var clockOutNull sql.NullTime
		if err := rows.Scan(&entry.EntryID, &entry.UserID, &entry.EmployeeName, &roleNull, &entry.ClockIn, &clockOutNull,
			&entry.TotalHours, &entry.BreakDurationMinutes, &entry.Status, &entry.Notes, &entry.SourceRequestID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.EmployeeRole = nullStringPtr(roleNull)
		entry.ClockOut = nullTimePtr(clockOutNull)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReconcileClockEntries backfills time clock entries for approved shift
// requests that have none, covering rows written before the approval path
// became transactional. Shifts without a derivable clock-in stay skipped.
func (s *Store) ReconcileClockEntries(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT `+prefixedRequestColumns("r")+`
		FROM employee_requests r
		LEFT JOIN time_clock_entries e ON e.source_request_id = r.request_id
		WHERE r.request_type = $1 AND r.status = $2 AND e.entry_id IS NULL
			AND r.shift_start_date IS NOT NULL AND r.shift_start_time IS NOT NULL
		ORDER BY r.reviewed_at ASC
		FOR UPDATE OF r SKIP LOCKED
		LIMIT $3
	`, models.TypeShift, models.StatusApproved, batchSize)
	if err != nil {
		return 0, err
	}

	var candidates []models.EmployeeRequest
	for rows.Next() {
		request, scanErr := scanRequest(rows)
		if scanErr != nil {
			rows.Close()
			err = scanErr
			return 0, err
		}
		candidates = append(candidates, request)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, err
	}

	created := 0
	now := time.Now().UTC()
	for _, request := range candidates {
		member, lookupErr := lookupTeamMember(ctx, tx, request.UserID)
		if lookupErr != nil && !errors.Is(lookupErr, store.ErrMemberNotFound) {
			err = lookupErr
			return 0, err
		}
		entry, ok := store.BuildClockEntry(request, member, request.Notes)
		if !ok {
			continue
		}
		entry.EntryID = uuid.NewString()
		entry.CreatedAt = now
		if err = insertClockEntry(ctx, tx, entry); err != nil {
			return 0, err
		}
		if err = insertOutboxEvent(ctx, tx, "clock_entry.created", clockEntryPayload(entry)); err != nil {
			return 0, err
		}
		created++
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return created, nil
}

func (s *Store) ListOutboxEvents(ctx context.Context, after time.Time, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT event_id, type, payload_json, created_at
		FROM outbox_events
	`
	args := []interface{}{}
	if !after.IsZero() {
		args = append(args, after)
		query += " WHERE created_at > $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.OutboxEvent
	for rows.Next() {
		var event store.OutboxEvent
		if err := rows.Scan(&event.EventID, &event.Type, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func lookupTeamMember(ctx context.Context, tx pgx.Tx, userID string) (models.TeamMember, error) {
	var member models.TeamMember
	row := tx.QueryRow(ctx, `
		SELECT user_id, display_name, COALESCE(role, ''), active
		FROM team_members
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&member.UserID, &member.DisplayName, &member.Role, &member.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TeamMember{}, store.ErrMemberNotFound
		}
		return models.TeamMember{}, err
	}
	return member, nil
}

func insertClockEntry(ctx context.Context, tx pgx.Tx, entry models.TimeClockEntry) error {
	var clockOut interface{}
	if entry.ClockOut != nil {
		clockOut = *entry.ClockOut
	}
	var role interface{}
	if entry.EmployeeRole != nil {
		role = *entry.EmployeeRole
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO time_clock_entries (
			entry_id, user_id, employee_name, employee_role, clock_in, clock_out,
			total_hours, break_duration_minutes, status, notes, source_request_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, entry.EntryID, entry.UserID, entry.EmployeeName, role, entry.ClockIn, clockOut,
		entry.TotalHours, entry.BreakDurationMinutes, entry.Status, entry.Notes, nullIfEmpty(entry.SourceRequestID), entry.CreatedAt)
	return err
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, eventType string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, type, payload_json, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), eventType, payloadJSON, time.Now().UTC())
	return err
}

func requestPayload(request models.EmployeeRequest) map[string]interface{} {
	return map[string]interface{}{
		"request_id":   request.RequestID,
		"user_id":      request.UserID,
		"request_type": request.RequestType,
		"status":       request.Status,
		"reviewed_at":  request.ReviewedAt,
		"notes":        request.Notes,
	}
}

func deniedPayload(request models.EmployeeRequest, input store.DenyRequestInput) map[string]interface{} {
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return map[string]interface{}{
		"request_id":   request.RequestID,
		"user_id":      request.UserID,
		"request_type": request.RequestType,
		"reason":       input.Reason,
		"reviewer_id":  input.ReviewerID,
		"occurred_at":  occurredAt,
	}
}

func clockEntryPayload(entry models.TimeClockEntry) map[string]interface{} {
	return map[string]interface{}{
		"entry_id":          entry.EntryID,
		"user_id":           entry.UserID,
		"clock_in":          entry.ClockIn,
		"clock_out":         entry.ClockOut,
		"total_hours":       entry.TotalHours,
		"source_request_id": entry.SourceRequestID,
	}
}

func scanRequest(row pgx.Row) (models.EmployeeRequest, error) {
	var request models.EmployeeRequest
	var startDate, endDate, offType sql.NullString
	var allDay sql.NullBool
	var shiftStartDate, shiftStartTime, shiftEndDate, shiftEndTime sql.NullString
	var breakStart, breakEnd, breakType sql.NullString
	var breakMinutes sql.NullInt64
	var totalHours sql.NullFloat64
	var explanation, notes sql.NullString
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullString

	err := row.Scan(
		&request.RequestID, &request.UserID, &request.RequestType, &request.Status,
		&startDate, &endDate, &allDay, &offType,
		&shiftStartDate, &shiftStartTime, &shiftEndDate, &shiftEndTime,
		&breakStart, &breakEnd, &breakMinutes, &breakType,
		&totalHours, &explanation, &notes,
		&request.SubmittedAt, &reviewedAt, &reviewedBy,
	)
	if err != nil {
		return models.EmployeeRequest{}, err
	}

	request.StartDate = startDate.String
	request.EndDate = endDate.String
	request.AllDay = allDay.Bool
	request.OffType = offType.String
	request.ShiftStartDate = shiftStartDate.String
	request.ShiftStartTime = shiftStartTime.String
	request.ShiftEndDate = shiftEndDate.String
	request.ShiftEndTime = shiftEndTime.String
	request.BreakStartTime = breakStart.String
	request.BreakEndTime = breakEnd.String
	request.BreakDurationMinutes = int(breakMinutes.Int64)
	request.BreakType = breakType.String
	request.TotalHours = totalHours.Float64
	request.Explanation = explanation.String
	request.Notes = notes.String
	request.ReviewedAt = nullTimePtr(reviewedAt)
	request.ReviewedBy = nullStringPtr(reviewedBy)
	return request, nil
}

func prefixedRequestColumns(alias string) string {
	return alias + `.request_id, ` + alias + `.user_id, ` + alias + `.request_type, ` + alias + `.status,
		` + alias + `.start_date, ` + alias + `.end_date, ` + alias + `.all_day, ` + alias + `.off_type,
		` + alias + `.shift_start_date, ` + alias + `.shift_start_time, ` + alias + `.shift_end_date, ` + alias + `.shift_end_time,
		` + alias + `.break_start_time, ` + alias + `.break_end_time, ` + alias + `.break_duration_minutes, ` + alias + `.break_type,
		` + alias + `.total_hours, ` + alias + `.explanation, ` + alias + `.notes,
		` + alias + `.submitted_at, ` + alias + `.reviewed_at, ` + alias + `.reviewed_by`
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

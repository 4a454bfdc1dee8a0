package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/student-records/internal/models"
)

// EventRecorder writes audit events.
type EventRecorder interface {
	CreateEvent(ctx context.Context, eventType, level, message, actor string, studentID *string) error
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	EventRecorder
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService provides business logic for the audit log.
type EventService struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message, actor string, studentID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		Actor:     actor,
		StudentID: studentID,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, actor, student_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.Actor, event.StudentID, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, actor, student_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var actor, studentID sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &actor, &studentID, &event.CreatedAt); err != nil {
			return nil, err
		}
		event.Actor = actor.String
		if studentID.Valid {
			id := studentID.String
			event.StudentID = &id
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// NotifyStudentChange records committed record mutations in the audit log.
func (s *EventService) NotifyStudentChange(ctx context.Context, change StudentChange) {
	var msg string
	switch change.Type {
	case EventStudentCreate:
		msg = fmt.Sprintf("Student '%s' created by %s.", change.ID, change.Actor)
	case EventStudentUpdate:
		msg = fmt.Sprintf("Student '%s' updated by %s.", change.ID, change.Actor)
	case EventStudentDelete:
		msg = fmt.Sprintf("Student '%s' deleted by %s.", change.ID, change.Actor)
	default:
		msg = fmt.Sprintf("Student '%s' changed by %s.", change.ID, change.Actor)
	}
	id := change.ID
	recordEvent(ctx, s, change.Type, "info", msg, change.Actor, &id)
}

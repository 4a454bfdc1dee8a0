package services

import (
	"context"

	"github.com/isdelr/student-records/internal/models"
)

// Event types recorded in the audit log and pushed to live subscribers.
const (
	EventUserRegister     = "user.register"
	EventUserLogin        = "user.login"
	EventUserLoginFail    = "user.login.fail"
	EventStudentCreate    = "student.create"
	EventStudentUpdate    = "student.update"
	EventStudentDelete    = "student.delete"
	EventBackupCreate     = "backup.create"
	EventBackupCreateFail = "backup.create.fail"
)

// StudentChange describes a committed mutation of the record store.
type StudentChange struct {
	Type    string         `json:"type"`
	Actor   string         `json:"actor"`
	ID      string         `json:"id"`
	Student models.Student `json:"student"`
}

// Notifier is told about every committed record mutation. Implementations
// must not block for long; they run on the request goroutine.
type Notifier interface {
	NotifyStudentChange(ctx context.Context, change StudentChange)
}

package services

import (
	"context"
	"fmt"

	"github.com/isdelr/student-records/internal/models"
	"github.com/isdelr/student-records/internal/storage"
	"github.com/rs/zerolog/log"
)

// StudentServiceProvider defines the interface for student record services.
type StudentServiceProvider interface {
	List(ctx context.Context, identity string) ([]models.Student, error)
	Get(ctx context.Context, identity, id string) (models.Student, error)
	Create(ctx context.Context, identity string, input models.StudentInput) (string, error)
	Update(ctx context.Context, identity, id string, patch models.StudentPatch) error
	Delete(ctx context.Context, identity, id string) error
}

// StudentRepository is the record store as seen by StudentService.
type StudentRepository interface {
	View(fn func(storage.StudentSnapshot) error) error
	Update(fn func(*storage.StudentSnapshot) (bool, error)) error
}

// StudentService provides business logic for student records.
type StudentService struct {
	students  StudentRepository
	notifiers []Notifier
}

// NewStudentService creates a new StudentService.
func NewStudentService(students StudentRepository, notifiers ...Notifier) *StudentService {
	return &StudentService{students: students, notifiers: notifiers}
}

// List returns every record ordered by id.
func (s *StudentService) List(ctx context.Context, identity string) ([]models.Student, error) {
	if identity == "" {
		return nil, ErrUnauthenticated
	}
	var out []models.Student
	err := s.students.View(func(snap storage.StudentSnapshot) error {
		out = snap.Sorted()
		return nil
	})
	return out, err
}

// Get returns a single record. Any authenticated identity may read any record.
func (s *StudentService) Get(ctx context.Context, identity, id string) (models.Student, error) {
	if identity == "" {
		return models.Student{}, ErrUnauthenticated
	}
	var st models.Student
	err := s.students.View(func(snap storage.StudentSnapshot) error {
		var ok bool
		if st, ok = snap.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
	return st, err
}

// Create stores a new record owned by identity and returns its id.
func (s *StudentService) Create(ctx context.Context, identity string, input models.StudentInput) (string, error) {
	if identity == "" {
		return "", ErrUnauthenticated
	}
	var created models.Student
	err := s.students.Update(func(snap *storage.StudentSnapshot) (bool, error) {
		id := snap.AllocateID()
		if _, exists := snap.Students[id]; exists {
			return false, fmt.Errorf("%w: %s", ErrIDCollision, id)
		}
		created = models.Student{
			ID:    id,
			Name:  input.Name,
			Major: input.Major,
			GPA:   input.GPA,
			Owner: identity,
		}
		snap.Students[id] = created
		return true, nil
	})
	if err != nil {
		return "", err
	}

	s.notify(ctx, StudentChange{Type: EventStudentCreate, Actor: identity, ID: created.ID, Student: created})
	return created.ID, nil
}

// Update merges patch into an existing record. Existence is checked before
// ownership so non-owners probing missing ids see ErrNotFound.
func (s *StudentService) Update(ctx context.Context, identity, id string, patch models.StudentPatch) error {
	if identity == "" {
		return ErrUnauthenticated
	}
	var updated models.Student
	err := s.students.Update(func(snap *storage.StudentSnapshot) (bool, error) {
		st, ok := snap.Get(id)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if !CanModify(identity, st) {
			return false, ErrForbidden
		}
		if patch.Empty() {
			updated = st
			return false, nil
		}
		patch.Apply(&st)
		snap.Students[id] = st
		updated = st
		return true, nil
	})
	if err != nil {
		return err
	}

	if !patch.Empty() {
		s.notify(ctx, StudentChange{Type: EventStudentUpdate, Actor: identity, ID: id, Student: updated})
	}
	return nil
}

// Delete removes a record, with the same check order as Update.
func (s *StudentService) Delete(ctx context.Context, identity, id string) error {
	if identity == "" {
		return ErrUnauthenticated
	}
	var deleted models.Student
	err := s.students.Update(func(snap *storage.StudentSnapshot) (bool, error) {
		st, ok := snap.Get(id)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if !CanModify(identity, st) {
			return false, ErrForbidden
		}
		delete(snap.Students, id)
		deleted = st
		return true, nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, StudentChange{Type: EventStudentDelete, Actor: identity, ID: id, Student: deleted})
	return nil
}

func (s *StudentService) notify(ctx context.Context, change StudentChange) {
	log.Info().Str("event_type", change.Type).Str("student_id", change.ID).Str("actor", change.Actor).Msg("Student record changed")
	for _, n := range s.notifiers {
		n.NotifyStudentChange(ctx, change)
	}
}

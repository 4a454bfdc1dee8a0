package storage

import (
	"sort"
	"strconv"

	"github.com/isdelr/student-records/internal/models"
)

// StudentSnapshot is the on-disk form of students.json.
type StudentSnapshot struct {
	Students map[string]models.Student `json:"students"`
	// NextID is the next id to hand out. Older files do not carry it.
	NextID int `json:"next_id,omitempty"`
}

// StudentStore is the record store.
type StudentStore = File[StudentSnapshot]

// NewStudentStore opens the record store at path.
func NewStudentStore(path string) *StudentStore {
	return NewFile(path, func(s *StudentSnapshot) {
		if s.Students == nil {
			s.Students = make(map[string]models.Student)
		}
		for id, st := range s.Students {
			st.ID = id
			s.Students[id] = st
		}
	})
}

// Get returns the record with the given id.
func (s StudentSnapshot) Get(id string) (models.Student, bool) {
	st, ok := s.Students[id]
	return st, ok
}

// Sorted returns all records ordered by id. Numeric ids compare numerically
// and sort ahead of any non-numeric ones.
func (s StudentSnapshot) Sorted() []models.Student {
	out := make([]models.Student, 0, len(s.Students))
	for _, st := range s.Students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessID(out[i].ID, out[j].ID)
	})
	return out
}

// AllocateID reserves the next record id. Ids are never reused, even after
// the record holding one is deleted.
func (s *StudentSnapshot) AllocateID() string {
	if s.NextID <= 0 {
		s.NextID = s.legacyNextID()
	}
	id := strconv.Itoa(s.NextID)
	s.NextID++
	return id
}

// legacyNextID seeds the counter for files written before it was persisted.
func (s *StudentSnapshot) legacyNextID() int {
	n := len(s.Students)
	for id := range s.Students {
		if v, err := strconv.Atoi(id); err == nil && v > n {
			n = v
		}
	}
	return n + 1
}

func lessID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

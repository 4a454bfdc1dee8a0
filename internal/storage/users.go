package storage

import "github.com/isdelr/student-records/internal/models"

// UserSnapshot is the on-disk form of users.json.
type UserSnapshot struct {
	Users []models.User `json:"users"`
}

// UserStore is the user directory.
type UserStore = File[UserSnapshot]

// NewUserStore opens the user directory at path.
func NewUserStore(path string) *UserStore {
	return NewFile(path, func(s *UserSnapshot) {
		if s.Users == nil {
			s.Users = []models.User{}
		}
	})
}

// Find returns the user with exactly the given username.
func (s UserSnapshot) Find(username string) (models.User, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

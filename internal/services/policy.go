package services

import "github.com/isdelr/student-records/internal/models"

// AdminIdentity may modify every record.
const AdminIdentity = "admin"

// CanModify reports whether identity may update or delete s.
func CanModify(identity string, s models.Student) bool {
	return identity == s.Owner || IsAdmin(identity)
}

// IsAdmin reports whether identity is the administrator.
func IsAdmin(identity string) bool {
	return identity == AdminIdentity
}

package models

// User represents an account in the user directory.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"` // Stored under "password" in users.json
}

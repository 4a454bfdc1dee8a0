package services

import (
	"testing"

	"github.com/isdelr/student-records/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	rec := models.Student{ID: "1", Owner: "alice"}

	tests := []struct {
		identity string
		want     bool
	}{
		{identity: "alice", want: true},
		{identity: "admin", want: true},
		{identity: "bob", want: false},
		{identity: "Admin", want: false},
		{identity: "", want: false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CanModify(tc.identity, rec), "identity %q", tc.identity)
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin("admin"))
	assert.False(t, IsAdmin("alice"))
}

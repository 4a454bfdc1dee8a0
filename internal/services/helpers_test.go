package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/database"
	"github.com/isdelr/student-records/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUserService(t *testing.T, events EventRecorder) (*UserService, *storage.UserStore, *auth.TokenManager) {
	t.Helper()
	users := storage.NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(users, BcryptHasher{Cost: bcrypt.MinCost}, tokens, events), users, tokens
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []StudentChange
}

func (n *recordingNotifier) NotifyStudentChange(_ context.Context, change StudentChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, c := range n.changes {
		out = append(out, c.Type)
	}
	return out
}

type recordedEvent struct {
	Type, Level, Actor string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeEvents) CreateEvent(_ context.Context, eventType, level, _, actor string, _ *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: eventType, Level: level, Actor: actor})
	return f.err
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/isdelr/student-records/internal/models"
	"github.com/isdelr/student-records/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudentService(t *testing.T) (*StudentService, *storage.StudentStore, *recordingNotifier) {
	t.Helper()
	store := storage.NewStudentStore(filepath.Join(t.TempDir(), "students.json"))
	n := &recordingNotifier{}
	return NewStudentService(store, n), store, n
}

func ptr[T any](v T) *T { return &v }

func TestCreate_AssignsSequentialIDsAndOwner(t *testing.T) {
	svc, _, n := newTestStudentService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "S" + strconv.Itoa(i), Major: "CS", GPA: 3.0})
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), id)
	}

	st, err := svc.Get(ctx, "bob", "2")
	require.NoError(t, err)
	assert.Equal(t, models.Student{ID: "2", Name: "S2", Major: "CS", GPA: 3.0, Owner: "alice"}, st)
	assert.Equal(t, []string{EventStudentCreate, EventStudentCreate, EventStudentCreate}, n.types())
}

func TestCreate_DoesNotReuseDeletedIDs(t *testing.T) {
	svc, _, _ := newTestStudentService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "alice", models.StudentInput{Name: "x"})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, "alice", "2"))

	id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "y"})
	require.NoError(t, err)
	assert.Equal(t, "4", id)
}

func TestCreate_IDCollision(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	require.NoError(t, store.Save(storage.StudentSnapshot{
		Students: map[string]models.Student{"5": {Name: "taken", Owner: "bob"}},
		NextID:   5,
	}))

	_, err := svc.Create(context.Background(), "alice", models.StudentInput{Name: "x"})
	require.ErrorIs(t, err, ErrIDCollision)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Students, 1)
	assert.Equal(t, "bob", snap.Students["5"].Owner)
}

func TestCreate_ConcurrentCreatesYieldDistinctIDs(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	const n = 20

	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.Create(context.Background(), "user"+strconv.Itoa(i), models.StudentInput{Name: "x"})
			assert.NoError(t, err)
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Students, n)
}

func TestList_OrderedByID(t *testing.T) {
	svc, _, _ := newTestStudentService(t)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		_, err := svc.Create(ctx, "alice", models.StudentInput{Name: "x"})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 11)
	for i, st := range list {
		assert.Equal(t, strconv.Itoa(i+1), st.ID)
	}
}

func TestRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestStudentService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Get(ctx, "", "1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Create(ctx, "", models.StudentInput{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.Update(ctx, "", "1", models.StudentPatch{}), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Delete(ctx, "", "1"), ErrUnauthenticated)
}

func TestGet_NotFoundOnEmptyStore(t *testing.T) {
	svc, _, _ := newTestStudentService(t)

	_, err := svc.Get(context.Background(), "alice", "999")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrForbidden)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner merges fields", func(t *testing.T) {
		svc, _, n := newTestStudentService(t)
		id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann", Major: "Math", GPA: 3.1})
		require.NoError(t, err)

		require.NoError(t, svc.Update(ctx, "alice", id, models.StudentPatch{GPA: ptr(3.9)}))

		st, err := svc.Get(ctx, "alice", id)
		require.NoError(t, err)
		assert.Equal(t, models.Student{ID: id, Name: "Ann", Major: "Math", GPA: 3.9, Owner: "alice"}, st)
		assert.Equal(t, []string{EventStudentCreate, EventStudentUpdate}, n.types())
	})

	t.Run("admin may update", func(t *testing.T) {
		svc, _, _ := newTestStudentService(t)
		id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
		require.NoError(t, err)

		require.NoError(t, svc.Update(ctx, "admin", id, models.StudentPatch{Name: ptr("Anne")}))

		st, err := svc.Get(ctx, "admin", id)
		require.NoError(t, err)
		assert.Equal(t, "Anne", st.Name)
		assert.Equal(t, "alice", st.Owner)
	})

	t.Run("non owner forbidden", func(t *testing.T) {
		svc, _, _ := newTestStudentService(t)
		id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
		require.NoError(t, err)

		err = svc.Update(ctx, "bob", id, models.StudentPatch{Name: ptr("Bob's")})
		require.ErrorIs(t, err, ErrForbidden)

		st, err := svc.Get(ctx, "bob", id)
		require.NoError(t, err)
		assert.Equal(t, "Ann", st.Name)
	})

	t.Run("missing id is not found before ownership", func(t *testing.T) {
		svc, _, _ := newTestStudentService(t)
		_, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
		require.NoError(t, err)

		err = svc.Update(ctx, "bob", "999", models.StudentPatch{Name: ptr("x")})
		require.ErrorIs(t, err, ErrNotFound)
		require.NotErrorIs(t, err, ErrForbidden)
	})

	t.Run("empty patch writes nothing", func(t *testing.T) {
		svc, store, n := newTestStudentService(t)
		id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
		require.NoError(t, err)
		before, err := os.ReadFile(store.Path())
		require.NoError(t, err)

		require.NoError(t, svc.Update(ctx, "alice", id, models.StudentPatch{}))

		after, err := os.ReadFile(store.Path())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, []string{EventStudentCreate}, n.types())
	})
}

func TestUpdate_OwnerCannotBeOverwrittenFromJSON(t *testing.T) {
	svc, _, _ := newTestStudentService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
	require.NoError(t, err)

	var patch models.StudentPatch
	require.NoError(t, jsonUnmarshal(`{"owner":"mallory","major":"Law"}`, &patch))
	require.NoError(t, svc.Update(ctx, "alice", id, patch))

	st, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "alice", st.Owner)
	assert.Equal(t, "Law", st.Major)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newTestStudentService(t)

	id, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Ann"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, "alice", models.StudentInput{Name: "Bea"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, "bob", "999"), ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "bob", id), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, "alice", id))
	_, err = svc.Get(ctx, "alice", id)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "admin", other))
	require.ErrorIs(t, svc.Delete(ctx, "alice", id), ErrNotFound)

	assert.Equal(t, []string{EventStudentCreate, EventStudentCreate, EventStudentDelete, EventStudentDelete}, n.types())
}

func TestStorageErrorsPropagate(t *testing.T) {
	svc, store, _ := newTestStudentService(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not json"), 0o644))
	ctx := context.Background()

	_, err := svc.List(ctx, "alice")
	assert.ErrorIs(t, err, storage.ErrStorageRead)
	_, err = svc.Create(ctx, "alice", models.StudentInput{})
	assert.ErrorIs(t, err, storage.ErrStorageRead)
	assert.ErrorIs(t, svc.Delete(ctx, "alice", "1"), storage.ErrStorageRead)
}

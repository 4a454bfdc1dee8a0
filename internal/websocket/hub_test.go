package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/student-records/internal/models"
	"github.com/isdelr/student-records/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case raw, ok := <-ch:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_BroadcastsStudentChanges(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{hub: hub, Send: make(chan []byte, 4), Username: "alice"}
	b := &Client{hub: hub, Send: make(chan []byte, 4), Username: "bob"}
	hub.Register <- a
	hub.Register <- b

	hub.NotifyStudentChange(context.Background(), services.StudentChange{
		Type:    services.EventStudentCreate,
		Actor:   "alice",
		ID:      "1",
		Student: models.Student{ID: "1", Name: "Ann", Major: "Math", GPA: 3.5, Owner: "alice"},
	})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c.Send)
		assert.Equal(t, services.EventStudentCreate, msg.Action)
		payload, ok := msg.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "1", payload["id"])
		assert.Equal(t, "Ann", payload["name"])
		assert.Equal(t, "alice", payload["owner"])
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{hub: hub, Send: make(chan []byte, 1), Username: "alice"}
	hub.Register <- c
	hub.Unregister <- c

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	hub.Broadcast = make(chan []byte)
	go hub.Run()
	defer hub.Stop()

	// A client whose buffer is already full cannot take the broadcast.
	slow := &Client{hub: hub, Send: make(chan []byte, 1), Username: "slow"}
	slow.Send <- []byte("backlog")
	hub.Register <- slow

	hub.Broadcast <- NewMessage(services.EventStudentDelete, nil)
	// Run handles one case at a time, so once this registration is accepted
	// the broadcast above has been fully processed.
	probe := &Client{hub: hub, Send: make(chan []byte, 1), Username: "probe"}
	hub.Register <- probe

	raw, ok := <-slow.Send
	require.True(t, ok)
	assert.Equal(t, "backlog", string(raw))
	_, ok = <-slow.Send
	assert.False(t, ok, "slow client should have been dropped")
}

func TestNewErrorMessage(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewErrorMessage("nope"), &msg))
	assert.Equal(t, "error", msg.Action)
}

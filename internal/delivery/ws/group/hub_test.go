package ws_group

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type HubSuite struct {
	suite.Suite
}

type resources struct {
	hub    *Hub
	server *httptest.Server
}

// initResources serves a bare upgrade handler that subscribes every
// connection to the group named in the path.
func initResources(t provider.T) *resources {
	hub := New(slog.Default())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groupID, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, groupID)
		hub.RegisterClient(client)
		go hub.StartClientReading(client)
		go hub.StartClientWriting(client)
	}))
	t.Cleanup(server.Close)

	return &resources{hub: hub, server: server}
}

func (r *resources) dial(t provider.T, groupID uuid.UUID) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(r.server.URL, "http") + "/" + groupID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (r *resources) waitForClients(t provider.T, groupID uuid.UUID, n int) {
	require.Eventually(t, func() bool {
		return r.hub.ClientCount(groupID) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func readEvent(t provider.T, conn *websocket.Conn) Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func (s *HubSuite) TestBroadcast(t provider.T) {
	t.Parallel()

	t.Run("Should deliver events to every client of the group", func(t provider.T) {
		r := initResources(t)
		groupID := uuid.New()
		first := r.dial(t, groupID)
		second := r.dial(t, groupID)
		r.waitForClients(t, groupID, 2)

		roundID := uuid.New()
		r.hub.Broadcast(groupID, RoundCreated, map[string]any{"round_id": roundID.String()})

		for _, conn := range []*websocket.Conn{first, second} {
			e := readEvent(t, conn)
			assert.Equal(t, RoundCreated, e.Type)
			assert.Equal(t, groupID, e.GroupID)
			assert.Equal(t, roundID.String(), e.Data["round_id"])
		}
	})

	t.Run("Should not leak events across groups", func(t provider.T) {
		r := initResources(t)
		ours, theirs := uuid.New(), uuid.New()
		conn := r.dial(t, ours)
		r.dial(t, theirs)
		r.waitForClients(t, ours, 1)
		r.waitForClients(t, theirs, 1)

		r.hub.Broadcast(theirs, VoteCast, nil)
		r.hub.Broadcast(ours, RoundStatusChanged, map[string]any{"status": "closed"})

		e := readEvent(t, conn)
		assert.Equal(t, RoundStatusChanged, e.Type)
		assert.Equal(t, "closed", e.Data["status"])
	})

	t.Run("Should ignore groups without listeners", func(t provider.T) {
		r := initResources(t)

		assert.NotPanics(t, func() {
			r.hub.Broadcast(uuid.New(), RatingSubmitted, nil)
		})
	})
}

func (s *HubSuite) TestRemoveClient(t provider.T) {
	t.Parallel()

	t.Run("Should unregister a client whose connection closed", func(t provider.T) {
		r := initResources(t)
		groupID := uuid.New()
		conn := r.dial(t, groupID)
		r.waitForClients(t, groupID, 1)

		require.NoError(t, conn.Close())

		r.waitForClients(t, groupID, 0)
	})

	t.Run("Should tolerate removing a client twice", func(t provider.T) {
		hub := New(nil)
		client := &Client{Hub: hub, Send: make(chan []byte, 1), GroupID: uuid.New()}
		hub.RegisterClient(client)

		hub.RemoveClient(client)

		assert.NotPanics(t, func() { hub.RemoveClient(client) })
		assert.Zero(t, hub.ClientCount(client.GroupID))
	})

	t.Run("Should drop a client whose buffer is full", func(t provider.T) {
		hub := New(nil)
		client := &Client{Hub: hub, Send: make(chan []byte, 1), GroupID: uuid.New()}
		hub.RegisterClient(client)

		hub.Broadcast(client.GroupID, VoteCast, nil)
		hub.Broadcast(client.GroupID, VoteCast, nil)

		assert.Zero(t, hub.ClientCount(client.GroupID))
		_, open := <-client.Send
		assert.True(t, open)
		_, open = <-client.Send
		assert.False(t, open)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(HubSuite))
}

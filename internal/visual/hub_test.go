package visual

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/movement"
)

type received struct {
	Event string          `json:"event"`
	Tick  uint64          `json:"tick"`
	Data  json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg received
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHubBroadcast(t *testing.T) {
	hub, conn := startHub(t)

	hub.SetTick(12)
	hub.Publish("hello", map[string]int{"n": 1})

	msg := readMessage(t, conn)
	assert.Equal(t, "hello", msg.Event)
	assert.Equal(t, uint64(12), msg.Tick)
	assert.JSONEq(t, `{"n":1}`, string(msg.Data))
}

func TestVisualizerMessages(t *testing.T) {
	hub, conn := startHub(t)
	vis := NewVisualizer(hub)
	agent := &movement.Agent{ID: 3, Name: "scout"}

	vis.ShowPath(agent, []mgl32.Vec3{{0, 0, 0}, {1, 0, 2}})
	vis.ClearMarkers(agent, 1)
	vis.ClearPath(agent)

	msg := readMessage(t, conn)
	assert.Equal(t, EventShowPath, msg.Event)
	assert.JSONEq(t, `{"agent":3,"name":"scout","points":[[0,0,0],[1,0,2]]}`, string(msg.Data))

	msg = readMessage(t, conn)
	assert.Equal(t, EventClearMarkers, msg.Event)
	assert.JSONEq(t, `{"agent":3,"up_to":1}`, string(msg.Data))

	msg = readMessage(t, conn)
	assert.Equal(t, EventClearPath, msg.Event)
	assert.JSONEq(t, `{"agent":3}`, string(msg.Data))
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub, conn := startHub(t)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutRunnerDrops(t *testing.T) {
	hub := NewHub(zap.NewNop())
	for i := 0; i < broadcastBuffer+5; i++ {
		hub.Publish("tick", nil)
	}
	assert.Equal(t, uint64(5), hub.Dropped())
}
